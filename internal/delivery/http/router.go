package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/soulbond-app/soulbond-backend/internal/delivery/http/handler"
	"github.com/soulbond-app/soulbond-backend/internal/delivery/http/middleware"
	"github.com/soulbond-app/soulbond-backend/internal/scoring"
)

type Router struct {
	authHandler       *handler.AuthHandler
	profileHandler    *handler.ProfileHandler
	discoveryHandler  *handler.DiscoveryHandler
	connectionHandler *handler.ConnectionHandler
	revelationHandler *handler.RevelationHandler
	messageHandler    *handler.MessageHandler
	feedbackHandler   *handler.FeedbackHandler
	authMiddleware    *middleware.AuthMiddleware
	log               zerolog.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	discoveryHandler *handler.DiscoveryHandler,
	connectionHandler *handler.ConnectionHandler,
	revelationHandler *handler.RevelationHandler,
	messageHandler *handler.MessageHandler,
	feedbackHandler *handler.FeedbackHandler,
	authMiddleware *middleware.AuthMiddleware,
	log zerolog.Logger,
) *Router {
	return &Router{
		authHandler:       authHandler,
		profileHandler:    profileHandler,
		discoveryHandler:  discoveryHandler,
		connectionHandler: connectionHandler,
		revelationHandler: revelationHandler,
		messageHandler:    messageHandler,
		feedbackHandler:   feedbackHandler,
		authMiddleware:    authMiddleware,
		log:               log,
	}
}

func (r *Router) Setup() *gin.Engine {
	registerValidators()

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.log))
	router.Use(middleware.Recovery(r.log))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/logout", r.authMiddleware.RequireAuth(), r.authHandler.Logout)
			auth.GET("/me", r.authMiddleware.RequireAuth(), r.authHandler.Me)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			// Profile routes
			profile := protected.Group("/profile")
			{
				profile.GET("/me", r.profileHandler.GetMyProfile)
				profile.PUT("/me", r.profileHandler.UpdateMyProfile)
				profile.POST("/complete-onboarding", r.profileHandler.CompleteOnboarding)
				profile.GET("/:user_id", r.profileHandler.GetProfileByUserID)
			}

			// Discovery
			protected.GET("/discovery", r.discoveryHandler.Discover)

			// Connection lifecycle
			connections := protected.Group("/connections")
			{
				connections.POST("", r.connectionHandler.Create)
				connections.GET("", r.connectionHandler.List)
				connections.GET("/:id", r.connectionHandler.Get)
				connections.PUT("/:id/consent", r.connectionHandler.SetConsent)
				connections.POST("/:id/pause", r.connectionHandler.Pause)
				connections.POST("/:id/resume", r.connectionHandler.Resume)
				connections.POST("/:id/end", r.connectionHandler.End)
				connections.POST("/:id/dinner/schedule", r.connectionHandler.ScheduleDinner)
				connections.POST("/:id/dinner/complete", r.connectionHandler.CompleteDinner)
				connections.GET("/:id/insight", r.connectionHandler.Insight)

				// Revelation pacing
				connections.POST("/:id/revelations", r.revelationHandler.Submit)
				connections.GET("/:id/revelations", r.revelationHandler.List)
				connections.GET("/:id/revelations/prompt", r.revelationHandler.Prompt)
				connections.POST("/:id/revelations/:revelation_id/read", r.revelationHandler.MarkRead)
				connections.POST("/:id/advance-day", r.revelationHandler.AdvanceDay)

				// Messages
				connections.POST("/:id/messages", r.messageHandler.Send)
				connections.GET("/:id/messages", r.messageHandler.List)

				// Outcome feedback
				connections.POST("/:id/outcome", r.feedbackHandler.RecordOutcome)
			}

			// Accuracy feedback
			protected.GET("/feedback/calibration", r.feedbackHandler.ListCalibration)
		}
	}

	return router
}

// registerValidators adds the custom binding tags request structs use.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("communication_style", func(fl validator.FieldLevel) bool {
		style := fl.Field().String()
		for _, s := range scoring.CommunicationStyles {
			if style == s {
				return true
			}
		}
		return false
	})
}
