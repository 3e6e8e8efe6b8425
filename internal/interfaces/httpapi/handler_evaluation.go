package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type evaluateBetRequest struct {
	BetInstanceID int64  `json:"betInstanceId" validate:"required,gt=0"`
	UserID        *int64 `json:"userId" validate:"omitempty,gt=0"`
}

// EvaluateBet runs the evaluation action for one bet instance. The response
// data is the action result; failures use the error envelope.
func (h *Handler) EvaluateBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EvaluateBet")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req evaluateBetRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	category := strings.TrimSpace(r.PathValue("category"))
	result := h.evaluationService.Execute(ctx, principal, usecase.EvaluateInput{
		Category:      category,
		BetInstanceID: req.BetInstanceID,
		UserID:        req.UserID,
	})
	if err := result.Err(); err != nil {
		h.logger.WarnContext(ctx, "evaluate bet failed",
			"category", category,
			"bet_id", req.BetInstanceID,
			"user_id", principal.UserID,
			"code", result.Code,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetRankingAt(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRankingAt")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	participantID, err := pathID(r, "participantID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var at time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("at")); raw != "" {
		at, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: at must be an RFC3339 timestamp", usecase.ErrInvalidInput))
			return
		}
	}

	lookup, err := h.rankingService.RankingAt(ctx, leagueID, participantID, at)
	if err != nil {
		h.logger.WarnContext(ctx, "ranking lookup failed",
			"league_id", leagueID,
			"participant_id", participantID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rankingToDTO(lookup))
}
