package container

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/soulbond-app/soulbond-backend/internal/config"
	httpdelivery "github.com/soulbond-app/soulbond-backend/internal/delivery/http"
	"github.com/soulbond-app/soulbond-backend/internal/delivery/http/handler"
	"github.com/soulbond-app/soulbond-backend/internal/delivery/http/middleware"
	"github.com/soulbond-app/soulbond-backend/internal/infrastructure/database"
	"github.com/soulbond-app/soulbond-backend/internal/infrastructure/gemini"
	"github.com/soulbond-app/soulbond-backend/internal/infrastructure/server"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
	"github.com/soulbond-app/soulbond-backend/internal/repository/memory"
	"github.com/soulbond-app/soulbond-backend/internal/repository/postgres"
	"github.com/soulbond-app/soulbond-backend/internal/scoring"
	"github.com/soulbond-app/soulbond-backend/internal/usecase/auth"
	"github.com/soulbond-app/soulbond-backend/internal/usecase/connection"
	"github.com/soulbond-app/soulbond-backend/internal/usecase/discovery"
	"github.com/soulbond-app/soulbond-backend/internal/usecase/feedback"
	"github.com/soulbond-app/soulbond-backend/internal/usecase/message"
	"github.com/soulbond-app/soulbond-backend/internal/usecase/profile"
	"github.com/soulbond-app/soulbond-backend/internal/usecase/revelation"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Log    zerolog.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
	Gemini *gemini.Client
}

type repositories struct {
	users       repository.UserRepository
	profiles    repository.ProfileRepository
	sessions    repository.SessionRepository
	connections repository.ConnectionRepository
	revelations repository.RevelationRepository
	messages    repository.MessageRepository
	accuracy    repository.AccuracyRepository
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Log: log}

	repos, err := c.buildRepositories()
	if err != nil {
		return nil, err
	}

	// Redis is optional; without it session and discovery caches are
	// simply skipped.
	if cfg.Redis.Host != "" {
		redisClient, err := database.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		} else {
			c.Redis = redisClient
		}
	}

	// Gemini is optional; without it prompt and insight endpoints return
	// canned or empty text.
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := gemini.NewClient(cfg.GeminiAPIKey)
		if err != nil {
			log.Warn().Err(err).Msg("gemini unavailable, continuing without AI features")
		} else {
			c.Gemini = geminiClient
		}
	}

	scorer := scoring.New(cfg.Scoring.AlgorithmVersion, cfg.Scoring.Weights)

	// Initialize use cases
	authUseCase := auth.NewAuthUseCase(
		repos.users,
		repos.sessions,
		c.Redis,
		cfg.JWT.AccessSecret,
		cfg.JWT.AccessExpiryMin,
		cfg.JWT.SessionTTLDays,
	)

	profileUseCase := profile.NewProfileUseCase(
		repos.profiles,
		repos.users,
		repos.connections,
	)

	discoveryUseCase := discovery.NewDiscoveryUseCase(
		repos.profiles,
		repos.users,
		repos.connections,
		scorer,
		c.Redis,
		cfg.Discovery,
		log,
	)

	connectionUseCase := connection.NewConnectionUseCase(
		repos.connections,
		repos.profiles,
		repos.accuracy,
		scorer,
		c.Gemini,
		log,
	)

	revelationUseCase := revelation.NewRevelationUseCase(
		repos.connections,
		repos.revelations,
		cfg.Pacing,
		c.Gemini,
		log,
	)

	messageUseCase := message.NewMessageUseCase(
		repos.connections,
		repos.messages,
	)

	feedbackUseCase := feedback.NewFeedbackUseCase(
		repos.connections,
		repos.revelations,
		repos.messages,
		repos.accuracy,
		cfg.Pacing,
		log,
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUseCase)
	profileHandler := handler.NewProfileHandler(profileUseCase)
	discoveryHandler := handler.NewDiscoveryHandler(discoveryUseCase)
	connectionHandler := handler.NewConnectionHandler(connectionUseCase)
	revelationHandler := handler.NewRevelationHandler(revelationUseCase)
	messageHandler := handler.NewMessageHandler(messageUseCase)
	feedbackHandler := handler.NewFeedbackHandler(feedbackUseCase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authUseCase)

	// Initialize router
	router := httpdelivery.NewRouter(
		authHandler,
		profileHandler,
		discoveryHandler,
		connectionHandler,
		revelationHandler,
		messageHandler,
		feedbackHandler,
		authMiddleware,
		log,
	)

	c.Server = server.NewServer(&cfg.Server, router.Setup(), log)

	return c, nil
}

// buildRepositories selects the persistence backend from configuration.
func (c *Container) buildRepositories() (*repositories, error) {
	switch c.Config.Storage.Type {
	case "memory":
		store := memory.NewStore()
		return &repositories{
			users:       memory.NewUserRepository(store),
			profiles:    memory.NewProfileRepository(store),
			sessions:    memory.NewSessionRepository(store),
			connections: memory.NewConnectionRepository(store),
			revelations: memory.NewRevelationRepository(store),
			messages:    memory.NewMessageRepository(store),
			accuracy:    memory.NewAccuracyRepository(store),
		}, nil
	case "postgres":
		db, err := database.NewPostgresDB(&c.Config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		return &repositories{
			users:       postgres.NewUserRepository(db),
			profiles:    postgres.NewProfileRepository(db),
			sessions:    postgres.NewSessionRepository(db),
			connections: postgres.NewConnectionRepository(db),
			revelations: postgres.NewRevelationRepository(db),
			messages:    postgres.NewMessageRepository(db),
			accuracy:    postgres.NewAccuracyRepository(db),
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", c.Config.Storage.Type)
	}
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Gemini != nil {
		c.Gemini.Close()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn().Err(err).Msg("error closing redis")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
