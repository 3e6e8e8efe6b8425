package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/riskibarqy/prediction-league/internal/domain/audit"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluation"
	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/auditsink"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/auth"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/invalidation"
	cacherepo "github.com/riskibarqy/prediction-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/prediction-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/prediction-league/internal/observability"
	basecache "github.com/riskibarqy/prediction-league/internal/platform/cache"
	idgen "github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/riskibarqy/prediction-league/internal/platform/scheduler"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const jobRunTimeout = 2 * time.Minute

// App owns the HTTP server and the background workers started with it.
type App struct {
	Server *http.Server

	logger     *logging.Logger
	cron       *scheduler.Runner
	background context.CancelFunc
	closers    []func() error
}

type storage struct {
	store       evaluation.Store
	leagues     league.Repository
	leaderboard leaderboard.Repository
	audit       audit.Repository
	db          *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	a := &App{logger: logger, background: cancel}

	st, err := newStorage(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, err
	}
	if st.db != nil {
		a.closers = append(a.closers, st.db.Close)
	}

	var (
		readCache   usecase.ReadCache
		invalidator usecase.CacheInvalidator
	)
	leagueRepo := st.leagues
	leaderboardRepo := st.leaderboard
	if cfg.CacheEnabled {
		cacheStore := basecache.NewStore(cfg.CacheTTL)
		leagueRepo = cacherepo.NewLeagueRepository(leagueRepo, cacheStore)
		leaderboardRepo = cacherepo.NewLeaderboardRepository(leaderboardRepo, cacheStore)
		readCache = cacheStore

		local := invalidation.NewLocal(cacheStore)
		invalidator = local
		if cfg.RedisEnabled {
			broadcaster, closeRedis, err := newRedisInvalidator(cfg, local, logger)
			if err != nil {
				cancel()
				a.close()
				return nil, err
			}
			a.closers = append(a.closers, closeRedis)
			invalidator = broadcaster
			go func() {
				if err := broadcaster.Listen(bgCtx); err != nil {
					logger.Warn("cache invalidation listener stopped", "error", err)
				}
			}()
		}
	}

	sink, err := newAuditSink(cfg, st.audit, logger)
	if err != nil {
		cancel()
		a.close()
		return nil, err
	}

	var (
		evalMetrics usecase.EvaluationMetrics
		httpMetrics httpapi.HTTPMetrics
		metricsPage http.Handler
	)
	if cfg.MetricsEnabled {
		m := observability.NewMetrics()
		evalMetrics = m
		httpMetrics = m
		metricsPage = m.Handler()
	}

	var verifier httpapi.TokenVerifier
	if cfg.AuthJWTSecret != "" {
		jwtVerifier, err := auth.NewJWTVerifier(auth.VerifierConfig{
			Secret:   []byte(cfg.AuthJWTSecret),
			Issuer:   cfg.AuthJWTIssuer,
			CacheTTL: cfg.AuthTokenCacheTTL,
		})
		if err != nil {
			cancel()
			a.close()
			return nil, fmt.Errorf("build jwt verifier: %w", err)
		}
		verifier = jwtVerifier
	} else {
		logger.Warn("AUTH_JWT_SECRET is empty, admin routes reject every token")
	}

	engine := usecase.NewEvaluationEngine(st.store, usecase.EvaluationEngineConfig{
		Workers: cfg.EvaluationBatchWorkers,
	})
	evaluationSvc := usecase.NewEvaluationService(
		engine,
		sink,
		invalidator,
		evalMetrics,
		idgen.NewUUIDGenerator(),
		logger,
		usecase.EvaluationServiceConfig{
			AdminRole: cfg.AuthAdminRole,
			Retry: resilience.RetryConfig{
				MaxRetries: cfg.EvaluationMaxRetries,
				Backoff:    cfg.EvaluationRetryBackoff,
			},
		},
	)

	handler := httpapi.NewHandler(
		evaluationSvc,
		usecase.NewLeaderboardService(leagueRepo, leaderboardRepo),
		usecase.NewBetResultService(st.store, readCache),
		usecase.NewRankingService(st.store),
		logger,
	)
	router := httpapi.NewRouter(handler, verifier, httpMetrics, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminRole:          cfg.AuthAdminRole,
		MetricsHandler:     metricsPage,
		Trace: httpapi.TraceOptions{
			CaptureRequestBody: cfg.UptraceCaptureRequestBody,
			MaxBodyBytes:       cfg.UptraceRequestBodyMaxBytes,
		},
	})

	if cfg.EvaluationJobEnabled {
		job := usecase.NewEvaluationJob(st.store, evaluationSvc, logger, cfg.EvaluationJobBatchSize)
		a.cron = scheduler.New(bgCtx, logger)
		if _, err := a.cron.Add("evaluate-pending-bets", cfg.EvaluationJobCron, func(ctx context.Context) {
			runCtx, cancelRun := context.WithTimeout(ctx, jobRunTimeout)
			defer cancelRun()
			result, err := job.Run(runCtx)
			if err != nil {
				logger.WarnContext(runCtx, "pending evaluation job failed", "error", err)
				return
			}
			logger.InfoContext(runCtx, "pending evaluation job finished",
				"evaluated", result.Evaluated,
				"skipped", result.Skipped,
				"failed", result.Failed,
			)
		}); err != nil {
			cancel()
			a.close()
			return nil, fmt.Errorf("register evaluation job: %w", err)
		}
	}

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return a, nil
}

// Start launches background jobs. The caller runs Server.ListenAndServe.
func (a *App) Start() {
	if a.cron != nil {
		a.cron.Start()
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if a.cron != nil {
		a.cron.Stop(ctx)
	}
	a.background()
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (storage, error) {
	if cfg.UsesMemoryStore() {
		logger.Info("DB_URL is empty, using the in-memory demo store")
		store := memory.NewStore(memory.SeedDataset())
		return storage{
			store:       store,
			leagues:     memory.NewLeagueRepository(store),
			leaderboard: memory.NewLeaderboardRepository(store),
			audit:       memory.NewAuditRepository(store),
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return storage{}, err
	}
	if cfg.DBBootstrapSeed {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			_ = db.Close()
			return storage{}, fmt.Errorf("bootstrap seed: %w", err)
		}
		logger.Info("bootstrap seed checked")
	}

	return storage{
		store:       postgres.NewStore(db),
		leagues:     postgres.NewLeagueRepository(db),
		leaderboard: postgres.NewLeaderboardRepository(db),
		audit:       postgres.NewAuditRepository(db),
		db:          db,
	}, nil
}

func newRedisInvalidator(cfg config.Config, local *invalidation.Local, logger *logging.Logger) (*invalidation.Redis, func() error, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	origin, err := idgen.NewUUIDGenerator().NewID()
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("generate invalidation origin: %w", err)
	}
	return invalidation.NewRedis(client, cfg.RedisInvalidationChannel, origin, local, logger), client.Close, nil
}

func newAuditSink(cfg config.Config, repo audit.Repository, logger *logging.Logger) (audit.Sink, error) {
	sinks := auditsink.MultiSink{
		auditsink.NewLogSink(logger),
		auditsink.NewRepositorySink(repo),
	}
	if cfg.AuditWebhookURL == "" {
		return sinks, nil
	}

	webhook, err := auditsink.NewWebhookSink(auditsink.WebhookConfig{
		URL:     cfg.AuditWebhookURL,
		Token:   cfg.AuditWebhookToken,
		Timeout: cfg.AuditWebhookTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AuditCircuitEnabled,
			FailureThreshold: cfg.AuditCircuitFailureCount,
			OpenTimeout:      cfg.AuditCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AuditCircuitHalfOpenMaxReq,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build audit webhook sink: %w", err)
	}
	return append(sinks, webhook), nil
}
