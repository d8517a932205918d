package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Storage      StorageConfig
	Logging      LoggingConfig
	Pacing       PacingConfig
	Scoring      ScoringConfig
	Discovery    DiscoveryConfig
	GeminiAPIKey string
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiryMin int
	SessionTTLDays  int
}

// StorageConfig selects the persistence backend: "postgres" or "memory".
type StorageConfig struct {
	Type string
}

type LoggingConfig struct {
	Level string
}

// PacingConfig governs the staged-disclosure schedule.
type PacingConfig struct {
	// ConsentDay is the reveal day that must be completed before the
	// connection moves to mutual_consent_pending.
	ConsentDay int
	// RevelationsPerDay is how many revelations each participant is
	// expected to send per day, used for completion-rate outcomes.
	RevelationsPerDay int
}

type ScoringConfig struct {
	AlgorithmVersion string
	// Weights maps dimension name to weight; empty means defaults.
	Weights map[string]float64
}

type DiscoveryConfig struct {
	DefaultMaxResults int
	MaxResults        int
	CacheTTL          time.Duration
}

// Load reads configuration from environment variables or a .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("STORAGE_TYPE", "postgres")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_ACCESS_EXPIRY_MIN", 60)
	viper.SetDefault("SESSION_TTL_DAYS", 30)
	viper.SetDefault("PACING_CONSENT_DAY", 7)
	viper.SetDefault("PACING_REVELATIONS_PER_DAY", 1)
	viper.SetDefault("SCORING_ALGORITHM_VERSION", "v1")
	viper.SetDefault("DISCOVERY_DEFAULT_MAX_RESULTS", 20)
	viper.SetDefault("DISCOVERY_MAX_RESULTS", 100)
	viper.SetDefault("DISCOVERY_CACHE_TTL_SEC", 60)

	// Missing .env is fine, environment variables still apply.
	_ = viper.ReadInConfig()

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			AccessSecret:    viper.GetString("JWT_ACCESS_SECRET"),
			AccessExpiryMin: viper.GetInt("JWT_ACCESS_EXPIRY_MIN"),
			SessionTTLDays:  viper.GetInt("SESSION_TTL_DAYS"),
		},
		Storage: StorageConfig{
			Type: viper.GetString("STORAGE_TYPE"),
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Pacing: PacingConfig{
			ConsentDay:        viper.GetInt("PACING_CONSENT_DAY"),
			RevelationsPerDay: viper.GetInt("PACING_REVELATIONS_PER_DAY"),
		},
		Scoring: ScoringConfig{
			AlgorithmVersion: viper.GetString("SCORING_ALGORITHM_VERSION"),
			Weights:          parseWeights(viper.GetStringMapString("SCORING_WEIGHTS")),
		},
		Discovery: DiscoveryConfig{
			DefaultMaxResults: viper.GetInt("DISCOVERY_DEFAULT_MAX_RESULTS"),
			MaxResults:        viper.GetInt("DISCOVERY_MAX_RESULTS"),
			CacheTTL:          time.Duration(viper.GetInt("DISCOVERY_CACHE_TTL_SEC")) * time.Second,
		},
		GeminiAPIKey: viper.GetString("GEMINI_API_KEY"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// parseWeights converts a string map (e.g. from
// SCORING_WEIGHTS=shared_interests=0.25,shared_values=0.30) into
// dimension weights. Unparseable entries are skipped; an empty result
// means the scorer falls back to its defaults.
func parseWeights(raw map[string]string) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	weights := make(map[string]float64, len(raw))
	for dim, v := range raw {
		var w float64
		if _, err := fmt.Sscanf(v, "%f", &w); err == nil && w > 0 {
			weights[dim] = w
		}
	}
	if len(weights) == 0 {
		return nil
	}
	return weights
}

// Validate validates critical configuration values.
func (c *Config) Validate() error {
	if c.Storage.Type != "postgres" && c.Storage.Type != "memory" {
		return fmt.Errorf("storage type must be postgres or memory, got %q", c.Storage.Type)
	}
	if c.Storage.Type == "postgres" {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	}
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT access secret is required")
	}
	if len(c.JWT.AccessSecret) < 32 {
		return fmt.Errorf("JWT access secret must be at least 32 characters")
	}
	if c.Pacing.ConsentDay < 1 {
		return fmt.Errorf("consent day threshold must be at least 1")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns the Redis address.
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
