package config

import (
	"fmt"  // Error formatting
	"time" // Durations

	"github.com/caarlos0/env/v11" // Typed environment parsing
	"github.com/joho/godotenv"    // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string `env:"APP_PORT" envDefault:"8080"`     // Application port
	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"`   // mysql or postgres
	DBUser     string `env:"DB_USER"`                        // Database user
	DBPassword string `env:"DB_PASSWORD"`                    // Database password
	DBHost     string `env:"DB_HOST" envDefault:"127.0.0.1"` // Database host
	DBPort     string `env:"DB_PORT"`                        // Database port
	DBName     string `env:"DB_NAME" envDefault:"matchday"`  // Database name

	JWTSecret  string        `env:"JWT_SECRET"`                   // JWT secret key
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"` // Session token lifetime

	RedisAddr string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"` // Redis server address
	RedisPass string `env:"REDIS_PASS"`                             // Redis password
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`                // Redis database number

	IsProd   bool   `env:"IS_PROD" envDefault:"false"`  // Is production environment
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"` // Logrus level

	SportMonksToken   string `env:"SPORTMONKS_TOKEN"` // Server-held fixtures API token
	SportMonksBaseURL string `env:"SPORTMONKS_BASE_URL" envDefault:"https://api.sportmonks.com/v3/football"`
	SofaScoreBaseURL  string `env:"SOFASCORE_BASE_URL" envDefault:"https://api.sofascore.com/api/v1"`

	MaxScore      int   `env:"MAX_SCORE" envDefault:"20"`        // Highest score a match wager may predict
	StartingCoins int64 `env:"STARTING_COINS" envDefault:"1000"` // Balance granted on registration

	SettlementRPS         float64 `env:"SETTLEMENT_RPS" envDefault:"10"`        // Provider calls per second during settlement
	SettlementConcurrency int     `env:"SETTLEMENT_CONCURRENCY" envDefault:"4"` // Predictions resolved in parallel
	SettlementSweepSpec   string  `env:"SETTLEMENT_SWEEP_SPEC"`                 // Cron spec for the global sweep, empty disables

	LeaderboardSize int `env:"LEADERBOARD_SIZE" envDefault:"50"` // Default leaderboard length
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	if c.DBDriver != "mysql" && c.DBDriver != "postgres" {
		return fmt.Errorf("DB_DRIVER must be mysql or postgres, got %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProd && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required in production", len(c.JWTSecret))
	}
	if c.MaxScore < 0 {
		return fmt.Errorf("MAX_SCORE must not be negative")
	}
	if c.SettlementConcurrency < 1 {
		return fmt.Errorf("SETTLEMENT_CONCURRENCY must be at least 1")
	}
	return nil
}

// DSN returns the Data Source Name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port)
	}
	port := c.DBPort
	if port == "" {
		port = "3306"
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
}
