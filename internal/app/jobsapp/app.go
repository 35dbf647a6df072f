package jobsapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/config"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/infra/httpclient"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/infra/inference"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/infra/snapshot"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/jobs/lifecycle"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
	redisrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/redis"
	scoringsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/scoring"
)

type job interface {
	Run(ctx context.Context) error
}

// App runs the match lifecycle workers on timers: queue generation,
// proposal promotion, expiry finalization, queue cleanup and metrics
// sampling.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	postgres *pgxpool.Pool
	redis    *goredis.Client

	generator *lifecycle.Generator
	creator   *lifecycle.ProposalCreator
	expirer   *lifecycle.Expirer
	cleanup   *lifecycle.Cleanup
	metrics   *lifecycle.Metrics
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	var redisClient *goredis.Client
	if c, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("redis init failed, metrics snapshot cache disabled", zap.Error(err))
	} else {
		redisClient = c
	}

	profileRepo := pgrepo.NewProfileRepo(pool)
	queueRepo := pgrepo.NewQueueRepo(pool)
	proposalRepo := pgrepo.NewProposalRepo(pool)
	voterRepo := pgrepo.NewVoterRepo(pool)
	metricsRepo := pgrepo.NewMetricsRepo(pool)

	var inferDep scoringsvc.Inference
	if cfg.Inference.Endpoint != "" {
		c, err := inference.NewClient(httpclient.New(cfg.Inference.Timeout), inference.Config{
			Endpoint:    cfg.Inference.Endpoint,
			Model:       cfg.Inference.Model,
			Temperature: cfg.Inference.Temperature,
			MaxTokens:   cfg.Inference.MaxTokens,
		})
		if err != nil {
			log.Warn("inference init failed, scoring falls back to heuristics", zap.Error(err))
		} else {
			inferDep = c
		}
	}
	scoringService := scoringsvc.NewService(scoringsvc.Dependencies{
		Inference: inferDep,
		Logger:    log,
	}, scoringsvc.Config{
		CandidateCap: cfg.Lifecycle.RankCandidateCap,
	})

	snapshotClient := snapshot.NewClient(httpclient.New(cfg.Inference.Timeout), cfg.Snapshot.Hub, cfg.Snapshot.Space)

	var metricsCache lifecycle.MetricCache
	if redisClient != nil {
		metricsCache = redisrepo.NewCacheRepo(redisClient)
	}

	return &App{
		cfg:      cfg,
		logger:   log,
		postgres: pool,
		redis:    redisClient,
		generator: lifecycle.NewGenerator(queueRepo, proposalRepo, profileRepo, scoringService, lifecycle.GeneratorConfig{
			MinDepth:    cfg.Lifecycle.QueueMinDepth,
			TargetDepth: cfg.Lifecycle.QueueTargetDepth,
		}, log),
		creator: lifecycle.NewProposalCreator(proposalRepo, queueRepo, voterRepo, profileRepo, snapshotClient, lifecycle.CreatorConfig{
			ActiveVotingMin:    cfg.Lifecycle.ActiveVotingMin,
			ActiveVotingTarget: cfg.Lifecycle.ActiveVotingTarget,
			VotingDuration:     cfg.Lifecycle.VotingDuration,
			VotersPerProposal:  cfg.Lifecycle.VotersPerProposal,
			ApprovalThreshold:  cfg.Lifecycle.ApprovalThreshold,
		}, log),
		expirer: lifecycle.NewExpirer(proposalRepo, log),
		cleanup: lifecycle.NewCleanup(queueRepo, cfg.Lifecycle.QueueRetention, log),
		metrics: lifecycle.NewMetrics(queueRepo, proposalRepo, metricsRepo, metricsCache, log),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("lifecycle workers started")

	errCh := make(chan error, 5)
	go func() { errCh <- a.runLoop(ctx, "generator", a.generator, a.cfg.Lifecycle.GeneratorInterval, 5*time.Minute) }()
	go func() { errCh <- a.runLoop(ctx, "creator", a.creator, a.cfg.Lifecycle.CreatorInterval, time.Minute) }()
	go func() { errCh <- a.runLoop(ctx, "expirer", a.expirer, a.cfg.Lifecycle.ExpirerInterval, time.Minute) }()
	go func() { errCh <- a.runLoop(ctx, "cleanup", a.cleanup, a.cfg.Lifecycle.CleanupInterval, 24*time.Hour) }()
	go func() { errCh <- a.runLoop(ctx, "metrics", a.metrics, a.cfg.Lifecycle.MetricsInterval, 5*time.Minute) }()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("lifecycle workers stopped")
			return nil
		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}
	}
}

// runLoop runs the job immediately and then on every tick until the
// context ends. A failed pass is logged and the loop keeps ticking, so
// a transient store outage in one worker never tears the others down.
func (a *App) runLoop(ctx context.Context, name string, j job, interval, fallback time.Duration) error {
	if interval <= 0 {
		interval = fallback
	}

	a.runPass(ctx, name, j)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.runPass(ctx, name, j)
		}
	}
}

func (a *App) runPass(ctx context.Context, name string, j job) {
	if err := j.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Warn("lifecycle pass failed",
			zap.String("job", name),
			zap.Error(err),
		)
	}
}

func (a *App) Shutdown(context.Context) error {
	var shutdownErr error

	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}
