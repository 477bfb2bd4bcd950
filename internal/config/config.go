package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Search     SearchConfig
	Retrieval  RetrievalConfig
	Session    SessionConfig
	Redis      RedisConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string `env:"DATABASE_URL" env-default:""` // full connection string, used when set
	Host               string `env:"PG_HOST" env-default:"localhost"`
	Port               int    `env:"PG_PORT" env-default:"5432"`
	User               string `env:"PG_USER" env-default:"postgres"`
	Password           string `env:"PG_PASSWORD" env-default:""`
	Database           string `env:"PG_DATABASE" env-default:"styleme"`
	SSLMode            string `env:"PG_SSLMODE" env-default:"disable"`
	MaxConnections     int    `env:"PG_MAX_CONNECTIONS" env-default:"25"`
	MaxIdleConnections int    `env:"PG_MAX_IDLE_CONNECTIONS" env-default:"5"`
	AutoMigrate        bool   `env:"PG_AUTO_MIGRATE" env-default:"false"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int    `env:"SERVER_PORT" env-default:"8080"`
	Host           string `env:"SERVER_HOST" env-default:"0.0.0.0"`
	GinMode        string `env:"GIN_MODE" env-default:"release"`
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	StaticDir      string `env:"STATIC_DIR" env-default:"./web"`
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	PageSize        int           `env:"SEARCH_PAGE_SIZE" env-default:"12"`
	FallbackLimit   int           `env:"SEARCH_FALLBACK_LIMIT" env-default:"20"`
	ChatLimit       int           `env:"CHAT_PRODUCT_LIMIT" env-default:"6"`
	MaxDisplayScore int           `env:"SEARCH_MAX_DISPLAY_SCORE" env-default:"50"`
	VocabularyTTL   time.Duration `env:"CATALOG_VOCABULARY_TTL" env-default:"60s"`
}

// RetrievalConfig holds settings for the external retrieval (RAG) service
type RetrievalConfig struct {
	BaseURL        string        `env:"RAG_SERVICE_URL" env-default:"http://localhost:5000"`
	ConnectTimeout time.Duration `env:"RAG_CONNECT_TIMEOUT" env-default:"5s"`
	Timeout        time.Duration `env:"RAG_TIMEOUT" env-default:"10s"`
	RatePerSecond  float64       `env:"RAG_RATE_PER_SECOND" env-default:"5"`
	Burst          int           `env:"RAG_RATE_BURST" env-default:"10"`
	Enabled        bool          `env:"RAG_ENABLED" env-default:"true"`
}

// SessionConfig holds browser session cookie configuration
type SessionConfig struct {
	Secret string `env:"SESSION_SECRET" env-default:"styleme-dev-session-secret"`
	MaxAge int    `env:"SESSION_MAX_AGE" env-default:"86400"`
	Secure bool   `env:"SESSION_SECURE" env-default:"false"`
}

// RedisConfig holds Redis configuration for conversation state.
// An empty address keeps conversations in process memory.
type RedisConfig struct {
	Addr            string        `env:"REDIS_ADDR" env-default:""`
	Password        string        `env:"REDIS_PASSWORD" env-default:""`
	DB              int           `env:"REDIS_DB" env-default:"0"`
	ConversationTTL time.Duration `env:"CHAT_CONVERSATION_TTL" env-default:"24h"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make the search pipeline misbehave
func (c *Config) Validate() error {
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("SEARCH_PAGE_SIZE must be positive, got %d", c.Search.PageSize)
	}
	if c.Search.FallbackLimit <= 0 {
		return fmt.Errorf("SEARCH_FALLBACK_LIMIT must be positive, got %d", c.Search.FallbackLimit)
	}
	if c.Search.ChatLimit <= 0 {
		return fmt.Errorf("CHAT_PRODUCT_LIMIT must be positive, got %d", c.Search.ChatLimit)
	}
	if c.Search.MaxDisplayScore <= 0 {
		return fmt.Errorf("SEARCH_MAX_DISPLAY_SCORE must be positive, got %d", c.Search.MaxDisplayScore)
	}
	if c.Retrieval.Timeout <= 0 {
		return fmt.Errorf("RAG_TIMEOUT must be positive, got %s", c.Retrieval.Timeout)
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}
