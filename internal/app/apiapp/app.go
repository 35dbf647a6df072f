package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/config"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/infra/httpclient"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/infra/inference"
	s3infra "github.com/RithvikReddySiddenki/ChainedTogether/internal/infra/s3"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/infra/snapshot"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/jobs/lifecycle"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
	redisrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/redis"
	authsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/auth"
	convsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/conversations"
	intakesvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/intake"
	mediasvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/media"
	profilesvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/profiles"
	proposalsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/proposals"
	ratesvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/rate"
	scoringsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/scoring"
	votesvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/votes"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/handlers"
)

// voteBurstLimit caps votes within the 10-second burst window.
const voteBurstLimit = 10

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	var redisClient *goredis.Client
	if c, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("redis init failed, continuing in degraded mode", zap.Error(err))
	} else {
		redisClient = c
	}

	profileRepo := pgrepo.NewProfileRepo(pool)
	queueRepo := pgrepo.NewQueueRepo(pool)
	proposalRepo := pgrepo.NewProposalRepo(pool)
	voterRepo := pgrepo.NewVoterRepo(pool)
	conversationRepo := pgrepo.NewConversationRepo(pool)
	intakeRepo := pgrepo.NewIntakeRepo(pool)
	metricsRepo := pgrepo.NewMetricsRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager)
	profileService := profilesvc.NewService(profileRepo)
	intakeService := intakesvc.NewService(intakeRepo)
	conversationService := convsvc.NewService(conversationRepo)
	proposalFeedService := proposalsvc.NewService(proposalRepo, profileRepo)

	var inferClient *inference.Client
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
			inferClient = c
		}
	}

	var inferDep scoringsvc.Inference
	if inferClient != nil {
		inferDep = inferClient
	}
	scoringService := scoringsvc.NewService(scoringsvc.Dependencies{
		Inference: inferDep,
		Logger:    log,
	}, scoringsvc.Config{
		CandidateCap: cfg.Lifecycle.RankCandidateCap,
	})

	snapshotClient := snapshot.NewClient(httpclient.New(cfg.Inference.Timeout), cfg.Snapshot.Hub, cfg.Snapshot.Space)

	var voteLimiter votesvc.RateLimiter
	if redisClient != nil {
		voteLimiter = ratesvc.NewLimiter(
			redisrepo.NewRateRepo(redisClient),
			cfg.Lifecycle.VoteMaxPerMinute,
			voteBurstLimit,
		)
	}
	voteService := votesvc.NewService(votesvc.Dependencies{
		Proposals:   proposalRepo,
		Assignments: voterRepo,
		Limiter:     voteLimiter,
		Relay:       snapshotClient,
		Logger:      log,
	})

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(profileRepo, mediaStorage)

	generator := lifecycle.NewGenerator(queueRepo, proposalRepo, profileRepo, scoringService, lifecycle.GeneratorConfig{
		MinDepth:    cfg.Lifecycle.QueueMinDepth,
		TargetDepth: cfg.Lifecycle.QueueTargetDepth,
	}, log)
	creator := lifecycle.NewProposalCreator(proposalRepo, queueRepo, voterRepo, profileRepo, snapshotClient, lifecycle.CreatorConfig{
		ActiveVotingMin:    cfg.Lifecycle.ActiveVotingMin,
		ActiveVotingTarget: cfg.Lifecycle.ActiveVotingTarget,
		VotingDuration:     cfg.Lifecycle.VotingDuration,
		VotersPerProposal:  cfg.Lifecycle.VotersPerProposal,
		ApprovalThreshold:  cfg.Lifecycle.ApprovalThreshold,
	}, log)
	expirer := lifecycle.NewExpirer(proposalRepo, log)

	var metricsCache handlers.MetricsCache
	if redisClient != nil {
		metricsCache = redisrepo.NewCacheRepo(redisClient)
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:         authService,
		IntakeService:       intakeService,
		ProfileService:      profileService,
		MediaService:        mediaService,
		ProposalFeedService: proposalFeedService,
		VoteService:         voteService,
		ConversationService: conversationService,
		MetricsCache:        metricsCache,
		MetricsSource:       metricsRepo,
		GeneratorJob:        generator,
		CreatorJob:          creator,
		ExpirerJob:          expirer,
		Logger:              log,
		Config:              cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
