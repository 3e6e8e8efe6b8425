package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
	"github.com/riskibarqy/prediction-league/internal/domain/participant"
	"github.com/riskibarqy/prediction-league/internal/domain/ranking"
)

type evaluatorRepository struct {
	data *Dataset
}

func (r *evaluatorRepository) ListByLeague(_ context.Context, leagueID int64) ([]evaluator.Config, error) {
	out := make([]evaluator.Config, 0)
	for _, cfg := range r.data.Evaluators {
		if cfg.LeagueID == leagueID {
			out = append(out, cfg)
		}
	}
	return out, nil
}

type rankingRepository struct {
	data *Dataset
}

func (r *rankingRepository) RankingAt(_ context.Context, leagueID, participantID int64, at time.Time) (int, bool, error) {
	versions := make([]ranking.Version, 0)
	for _, v := range r.data.Rankings {
		if v.LeagueID == leagueID && v.ParticipantID == participantID {
			versions = append(versions, v)
		}
	}
	tier, ok := ranking.Resolve(versions, at)
	return tier, ok, nil
}

func (r *rankingRepository) RankingsAt(_ context.Context, leagueID int64, at time.Time) (map[int64]int, error) {
	versions := make([]ranking.Version, 0)
	for _, v := range r.data.Rankings {
		if v.LeagueID == leagueID {
			versions = append(versions, v)
		}
	}
	return ranking.ResolveAll(versions, at), nil
}

type participantRepository struct {
	data *Dataset
}

func (r *participantRepository) PositionsByIDs(_ context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	for _, id := range ids {
		p, ok := r.data.Participants[id]
		if !ok || p.Position == "" {
			continue
		}
		out[id] = p.Position
	}
	return out, nil
}

var _ participant.Repository = (*participantRepository)(nil)
