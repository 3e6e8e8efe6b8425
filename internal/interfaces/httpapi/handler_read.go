package httpapi

import (
	"net/http"
	"strconv"
	"strings"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.leaderboardService.ListByLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list leaderboard failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(leagueID, entries))
}

func (h *Handler) GetBetResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBetResults")
	defer span.End()

	betID, err := pathID(r, "betID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	results, err := h.betResultService.Get(ctx, strings.TrimSpace(r.PathValue("category")), betID)
	if err != nil {
		h.logger.WarnContext(ctx, "get bet results failed",
			"category", r.PathValue("category"),
			"bet_id", strconv.FormatInt(betID, 10),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, betResultsToDTO(results))
}
