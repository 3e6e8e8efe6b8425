package scheduler

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

// Runner wraps robfig/cron with a base context and the service logger.
// Jobs never overlap with themselves and panics are recovered and logged.
type Runner struct {
	cron    *cron.Cron
	logger  *logging.Logger
	baseCtx context.Context
}

func New(baseCtx context.Context, logger *logging.Logger) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if logger == nil {
		logger = logging.Default()
	}

	cronLogger := cronLogAdapter{logger: logger}
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(
				cron.Recover(cronLogger),
				cron.SkipIfStillRunning(cronLogger),
			),
		),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

func (r *Runner) Add(name, spec string, job func(context.Context)) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() {
		job(r.baseCtx)
	})
	if err != nil {
		return 0, err
	}
	r.logger.Info("cron job registered", "job", name, "spec", spec)
	return id, nil
}

func (r *Runner) Start() {
	r.logger.Info("cron started", "jobs", len(r.cron.Entries()))
	r.cron.Start()
}

func (r *Runner) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		r.logger.Warn("cron stop timed out waiting for running jobs")
		return
	}
	r.logger.Info("cron stopped")
}

var specParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSpec reports whether spec is accepted by Add.
func ValidateSpec(spec string) error {
	_, err := specParser.Parse(spec)
	return err
}

type cronLogAdapter struct {
	logger *logging.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error(msg, append(keysAndValues, "error", err)...)
}
