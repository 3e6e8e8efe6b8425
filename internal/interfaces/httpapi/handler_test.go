package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type staticVerifier map[string]user.Principal

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	p, ok := v[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return p, nil
}

type routeCounter struct {
	routes []string
}

func (c *routeCounter) ObserveHTTPRequest(method, route string, status int) {
	c.routes = append(c.routes, fmt.Sprintf("%s %s %d", method, route, status))
}

type routeEnvelope struct {
	Data  map[string]any `json:"data"`
	Error *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (http.Handler, *routeCounter) {
	t.Helper()

	store := memory.NewStore(memory.SeedDataset())
	logger := logging.NewNop()
	engine := usecase.NewEvaluationEngine(store, usecase.EvaluationEngineConfig{Workers: 2})
	evaluationService := usecase.NewEvaluationService(engine, nil, nil, nil, nil, logger, usecase.EvaluationServiceConfig{})
	handler := NewHandler(
		evaluationService,
		usecase.NewLeaderboardService(memory.NewLeagueRepository(store), memory.NewLeaderboardRepository(store)),
		usecase.NewBetResultService(store, nil),
		usecase.NewRankingService(store),
		logger,
	)

	verifier := staticVerifier{
		"admin-token":  {UserID: 1, Roles: []string{user.RoleAdmin}},
		"member-token": {UserID: 101, Roles: []string{"member"}},
	}
	counter := &routeCounter{}
	router := NewRouter(handler, verifier, counter, logger, RouterConfig{
		CORSAllowedOrigins: []string{"*"},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
	})
	return router, counter
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) (int, routeEnvelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out routeEnvelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal response body: %v", err)
		}
	}
	return rec.Code, out
}

func TestEvaluateBet_AuthAndValidation(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	tests := []struct {
		name       string
		path       string
		token      string
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "missing token", path: "/v1/admin/evaluations/match", body: `{"betInstanceId":1}`, wantStatus: http.StatusUnauthorized, wantError: "UNAUTHENTICATED"},
		{name: "unknown token", path: "/v1/admin/evaluations/match", token: "nope", body: `{"betInstanceId":1}`, wantStatus: http.StatusUnauthorized, wantError: "UNAUTHENTICATED"},
		{name: "member role", path: "/v1/admin/evaluations/match", token: "member-token", body: `{"betInstanceId":1}`, wantStatus: http.StatusForbidden, wantError: "PERMISSION_DENIED"},
		{name: "unknown category", path: "/v1/admin/evaluations/tennis", token: "admin-token", body: `{"betInstanceId":1}`, wantStatus: http.StatusBadRequest, wantError: "INVALID_ARGUMENT"},
		{name: "missing bet id", path: "/v1/admin/evaluations/match", token: "admin-token", body: `{}`, wantStatus: http.StatusBadRequest, wantError: "INVALID_ARGUMENT"},
		{name: "unknown field", path: "/v1/admin/evaluations/match", token: "admin-token", body: `{"betInstanceId":1,"force":true}`, wantStatus: http.StatusBadRequest, wantError: "INVALID_ARGUMENT"},
		{name: "unknown bet", path: "/v1/admin/evaluations/match", token: "admin-token", body: `{"betInstanceId":999}`, wantStatus: http.StatusNotFound, wantError: "NOT_FOUND"},
		{name: "result not recorded", path: "/v1/admin/evaluations/series", token: "admin-token", body: `{"betInstanceId":1}`, wantStatus: http.StatusBadRequest, wantError: "INVALID_ARGUMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, router, http.MethodPost, tt.path, tt.token, tt.body)
			if status != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, status)
			}
			if body.Error == nil || body.Error.Status != tt.wantError {
				t.Fatalf("expected error status %s, got %+v", tt.wantError, body.Error)
			}
		})
	}
}

func TestEvaluateBet_UpdatesLeaderboardAndResults(t *testing.T) {
	t.Parallel()

	router, counter := newTestRouter(t)

	status, body := doRequest(t, router, http.MethodPost, "/v1/admin/evaluations/match", "admin-token", `{"betInstanceId":1}`)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%+v)", status, body.Error)
	}
	if got := body.Data["success"]; got != true {
		t.Fatalf("expected success=true, got %v", got)
	}
	if got, _ := body.Data["totalUsersEvaluated"].(float64); got != 3 {
		t.Fatalf("expected 3 users evaluated, got %v", body.Data["totalUsersEvaluated"])
	}

	status, body = doRequest(t, router, http.MethodGet, "/v1/bets/match/1/results", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	if body.Data["isEvaluated"] != true {
		t.Fatalf("expected bet to be marked evaluated, got %v", body.Data["isEvaluated"])
	}

	status, body = doRequest(t, router, http.MethodGet, "/v1/leagues/1/leaderboard", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	entries, _ := body.Data["entries"].([]any)
	if len(entries) != 3 {
		t.Fatalf("expected 3 leaderboard entries, got %d", len(entries))
	}
	wantPoints := []float64{15, 15, 2}
	wantRanks := []float64{1, 1, 3}
	for i, raw := range entries {
		entry := raw.(map[string]any)
		if entry["points"] != wantPoints[i] || entry["rank"] != wantRanks[i] {
			t.Fatalf("unexpected entry %d: %+v", i, entry)
		}
	}

	want := "POST /v1/admin/evaluations/{category} 200"
	if len(counter.routes) == 0 || counter.routes[0] != want {
		t.Fatalf("expected first metric %q, got %v", want, counter.routes)
	}
}

func TestReadRoutes_Errors(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "unknown league", path: "/v1/leagues/42/leaderboard", wantStatus: http.StatusNotFound},
		{name: "bad league id", path: "/v1/leagues/abc/leaderboard", wantStatus: http.StatusBadRequest},
		{name: "unknown category", path: "/v1/bets/tennis/1/results", wantStatus: http.StatusBadRequest},
		{name: "unknown bet", path: "/v1/bets/question/77/results", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doRequest(t, router, http.MethodGet, tt.path, "", "")
			if status != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, status)
			}
		})
	}
}

func TestGetRankingAt(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	path := fmt.Sprintf("/v1/admin/leagues/%d/rankings/%d?at=2026-06-14T18:00:00Z", memory.LeagueIDDemo, memory.PlayerIDStriker)

	status, _ := doRequest(t, router, http.MethodGet, path, "member-token", "")
	if status != http.StatusForbidden {
		t.Fatalf("expected status 403 for member, got %d", status)
	}

	status, body := doRequest(t, router, http.MethodGet, path, "admin-token", "")
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	if body.Data["ranking"] != float64(1) {
		t.Fatalf("expected ranking 1, got %v", body.Data["ranking"])
	}

	before := fmt.Sprintf("/v1/admin/leagues/%d/rankings/%d?at=2025-06-01T00:00:00Z", memory.LeagueIDDemo, memory.PlayerIDStriker)
	status, body = doRequest(t, router, http.MethodGet, before, "admin-token", "")
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	if body.Data["ranking"] != nil {
		t.Fatalf("expected null ranking before the first version, got %v", body.Data["ranking"])
	}

	status, _ = doRequest(t, router, http.MethodGet, path[:strings.Index(path, "?")]+"?at=yesterday", "admin-token", "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad timestamp, got %d", status)
	}
}

func TestSystemRoutes(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	status, body := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	if status != http.StatusOK || body.Data["status"] != "ok" {
		t.Fatalf("unexpected healthz response: %d %+v", status, body)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "# metrics" {
		t.Fatalf("unexpected metrics response: %d %q", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected docs to be disabled, got %d", rec.Code)
	}
}

func TestNewRouter_NilVerifierRejectsAdminRoutes(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil, nil, nil, nil, logging.NewNop())
	router := NewRouter(handler, nil, nil, logging.NewNop(), RouterConfig{})

	status, body := doRequest(t, router, http.MethodPost, "/v1/admin/evaluations/match", "anything", `{"betInstanceId":1}`)
	if status != http.StatusUnauthorized || body.Error == nil {
		t.Fatalf("expected 401 without a configured verifier, got %d", status)
	}
}
