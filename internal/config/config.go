package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Upstream   UpstreamConfig
	Search     SearchConfig
	Ranking    RankingConfig
	Session    SessionConfig
	Reference  ReferenceConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration.
// An empty DSN and host disables the durable session store.
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins []string
}

// UpstreamConfig points at the property backend and the place-name API.
type UpstreamConfig struct {
	BackendAPIBase string
	PlacesAPIBase  string
	Timeout        time.Duration
	SearchTimeout  time.Duration
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	PageLimit    int
	DisplayLimit int
}

// RankingConfig holds ranking weights configuration
type RankingConfig struct {
	WeightPrice    float64
	WeightArea     float64
	WeightPosition float64
	Reorder        bool
}

// SessionConfig controls session expiry.
type SessionConfig struct {
	TTL time.Duration
}

// ReferenceConfig holds the optional offline reference snapshot.
type ReferenceConfig struct {
	SnapshotPath string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", ""),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "guidechat"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 7861),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5000")),
		},
		Upstream: UpstreamConfig{
			BackendAPIBase: strings.TrimRight(getEnv("BACKEND_API_BASE", "http://localhost:5000/api"), "/"),
			PlacesAPIBase:  strings.TrimRight(getEnv("PLACES_API_BASE", "https://vietnamlabs.com/api"), "/"),
			Timeout:        time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT", 5)) * time.Second,
			SearchTimeout:  time.Duration(getEnvAsInt("SEARCH_TIMEOUT", 10)) * time.Second,
		},
		Search: SearchConfig{
			PageLimit:    getEnvAsInt("SEARCH_PAGE_LIMIT", 20),
			DisplayLimit: getEnvAsInt("SEARCH_DISPLAY_LIMIT", 8),
		},
		Ranking: RankingConfig{
			WeightPrice:    getEnvAsFloat("RANK_WEIGHT_PRICE", 0.5),
			WeightArea:     getEnvAsFloat("RANK_WEIGHT_AREA", 0.3),
			WeightPosition: getEnvAsFloat("RANK_WEIGHT_POSITION", 0.2),
			Reorder:        getEnvAsBool("RANK_REORDER", false),
		},
		Session: SessionConfig{
			TTL: time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 120)) * time.Minute,
		},
		Reference: ReferenceConfig{
			SnapshotPath: getEnv("REFERENCE_SNAPSHOT_PATH", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Search.PageLimit <= 0 {
		return nil, fmt.Errorf("SEARCH_PAGE_LIMIT must be positive, got %d", cfg.Search.PageLimit)
	}
	if cfg.Search.DisplayLimit <= 0 {
		return nil, fmt.Errorf("SEARCH_DISPLAY_LIMIT must be positive, got %d", cfg.Search.DisplayLimit)
	}

	return cfg, nil
}

// PostgresEnabled reports whether a durable session store was configured.
func (c *Config) PostgresEnabled() bool {
	return c.PostgreSQL.DSN != "" || c.PostgreSQL.Host != ""
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

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid bool value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
