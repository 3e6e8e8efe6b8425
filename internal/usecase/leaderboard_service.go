package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"go.opentelemetry.io/otel/attribute"
)

type LeaderboardService struct {
	leagueRepo      league.Repository
	leaderboardRepo leaderboard.Repository
}

func NewLeaderboardService(leagueRepo league.Repository, leaderboardRepo leaderboard.Repository) *LeaderboardService {
	return &LeaderboardService{
		leagueRepo:      leagueRepo,
		leaderboardRepo: leaderboardRepo,
	}
}

func (s *LeaderboardService) ListByLeague(ctx context.Context, leagueID int64) ([]leaderboard.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.ListByLeague", attribute.Int64("league.id", leagueID))
	defer span.End()

	if leagueID <= 0 {
		return nil, fmt.Errorf("%w: league id must be a positive integer", ErrInvalidInput)
	}

	_, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%d", ErrNotFound, leagueID)
	}

	totals, err := s.leaderboardRepo.ListLeagueTotals(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list league totals: %w", err)
	}

	return leaderboard.Rank(totals), nil
}
