package bet

import (
	"context"
	"time"
)

// Repository is the persistence contract shared by all four bet categories.
// I is the bet instance type and P the matching user prediction type.
type Repository[I any, P any] interface {
	Get(ctx context.Context, id int64) (I, bool, error)
	// ListPredictions returns every non-deleted prediction for the instance ordered by id.
	ListPredictions(ctx context.Context, id int64) ([]P, error)
	SavePoints(ctx context.Context, id int64, updates []PointsUpdate, scoredAt time.Time) error
	MarkEvaluated(ctx context.Context, id int64, at time.Time) error
	// ListPendingIDs returns, in id order, instances with ids above afterID whose
	// outcome is recorded but which are not yet evaluated.
	ListPendingIDs(ctx context.Context, scheduledBefore time.Time, afterID int64, limit int) ([]int64, error)
}

type (
	MatchRepository     = Repository[Match, UserMatchBet]
	SeriesRepository    = Repository[Series, UserSeriesBet]
	SingleBetRepository = Repository[SingleBet, UserSingleBet]
	QuestionRepository  = Repository[Question, UserQuestionBet]
)
