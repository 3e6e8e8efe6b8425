package httpapi

import (
	"net/http"

	"github.com/riskibarqy/prediction-league/internal/domain/user"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}
	if !cfg.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/bets/{category}/{betID}/results", handler.GetBetResults)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, adminRole string) {
	if adminRole == "" {
		adminRole = user.RoleAdmin
	}
	// The evaluation action checks the role itself so rejections show up in
	// evaluation metrics.
	mux.Handle("POST /v1/admin/evaluations/{category}", RequireAuth(verifier, http.HandlerFunc(handler.EvaluateBet)))
	mux.Handle("GET /v1/admin/leagues/{leagueID}/rankings/{participantID}",
		RequireAuth(verifier, RequireRole(adminRole, http.HandlerFunc(handler.GetRankingAt))))
}
