package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/evaluation"
	"go.opentelemetry.io/otel/attribute"
)

type RankingLookup struct {
	LeagueID      int64
	ParticipantID int64
	At            time.Time
	Ranking       int
	Found         bool
}

// RankingService answers point-in-time ranking questions for administrators.
type RankingService struct {
	store evaluation.Store
	now   func() time.Time
}

func NewRankingService(store evaluation.Store) *RankingService {
	return &RankingService{store: store, now: time.Now}
}

// RankingAt resolves the participant's tier at the given time. A zero at means now.
func (s *RankingService) RankingAt(ctx context.Context, leagueID, participantID int64, at time.Time) (RankingLookup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.RankingAt", attribute.Int64("participant.id", participantID))
	defer span.End()

	if leagueID <= 0 || participantID <= 0 {
		return RankingLookup{}, fmt.Errorf("%w: league id and participant id must be positive integers", ErrInvalidInput)
	}
	if at.IsZero() {
		at = s.now()
	}

	out := RankingLookup{LeagueID: leagueID, ParticipantID: participantID, At: at.UTC()}
	err := s.store.View(ctx, func(ctx context.Context, tx evaluation.Tx) error {
		tier, found, err := tx.Rankings().RankingAt(ctx, leagueID, participantID, out.At)
		if err != nil {
			return err
		}
		out.Ranking = tier
		out.Found = found
		return nil
	})
	if err != nil {
		return RankingLookup{}, fmt.Errorf("resolve ranking: %w", err)
	}
	return out, nil
}
