package audit

import (
	"context"
	"time"
)

const ActionEvaluate = "evaluate"

// Entry records one evaluation event. Individual point computations are not
// logged.
type Entry struct {
	ID                  string
	AdminUserID         int64
	Action              string
	Category            string
	BetInstanceID       int64
	TotalUsersEvaluated int
	SumOfPoints         int
	DurationMs          int64
	CreatedAt           time.Time
}

// Sink receives audit entries. Callers treat failures as non-fatal.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

type Repository interface {
	Insert(ctx context.Context, entry Entry) error
}
