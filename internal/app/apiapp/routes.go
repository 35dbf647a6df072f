package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/config"
	authsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/auth"
	convsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/conversations"
	intakesvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/intake"
	mediasvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/media"
	profilesvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/profiles"
	proposalsvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/proposals"
	votesvc "github.com/RithvikReddySiddenki/ChainedTogether/internal/services/votes"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService         *authsvc.Service
	IntakeService       *intakesvc.Service
	ProfileService      *profilesvc.Service
	MediaService        *mediasvc.Service
	ProposalFeedService *proposalsvc.Service
	VoteService         *votesvc.Service
	ConversationService *convsvc.Service
	MetricsCache        handlers.MetricsCache
	MetricsSource       handlers.MetricsSource
	GeneratorJob        handlers.LifecycleJob
	CreatorJob          handlers.LifecycleJob
	ExpirerJob          handlers.LifecycleJob
	Logger              *zap.Logger
	Config              config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	intakeHandler := handlers.NewIntakeHandler(deps.IntakeService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	proposalsHandler := handlers.NewProposalsHandler(deps.ProposalFeedService, deps.VoteService)
	conversationsHandler := handlers.NewConversationsHandler(deps.ConversationService)
	metricsHandler := handlers.NewMetricsHandler(deps.MetricsCache, deps.MetricsSource)
	adminHandler := handlers.NewAdminHandler(deps.GeneratorJob, deps.CreatorJob, deps.ExpirerJob)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/wallet", authHandler.Wallet)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/wallet", authHandler.Wallet)

		r.With(authMW).Post("/intake/start", intakeHandler.Start)
		r.With(authMW).Post("/intake/reply", intakeHandler.Reply)

		r.With(authMW).Get("/profile", profileHandler.Me)
		r.With(authMW).Put("/profile", profileHandler.Save)
		r.With(authMW).Get("/profiles/{address}", profileHandler.Card)
		r.With(authMW).Post("/media/image", mediaHandler.ImageUpload)

		r.With(authMW).Get("/proposals/feed", proposalsHandler.Feed)
		r.With(authMW).Get("/proposals/{id}", proposalsHandler.Get)
		r.With(authMW).Post("/proposals/{id}/vote", proposalsHandler.Vote)

		r.With(authMW).Get("/conversations", conversationsHandler.List)
		r.With(authMW).Post("/conversations/{id}/respond", conversationsHandler.Respond)
		r.With(authMW).Get("/conversations/{id}/messages", conversationsHandler.Messages)
		r.With(authMW).Post("/conversations/{id}/messages", conversationsHandler.Send)

		r.With(authMW).Post("/matches/generate", adminHandler.GenerateOnDemand)

		r.Get("/metrics", metricsHandler.Dashboard)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/lifecycle/generate", adminHandler.GenerateMatches)
		r.Post("/lifecycle/promote", adminHandler.PromoteProposals)
		r.Post("/lifecycle/expire", adminHandler.ExpireProposals)
	})
}
