// Package config loads server configuration from environment variables, with
// a .env file fallback for local development.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret      string   `mapstructure:"JWT_SECRET"`
	JWTIssuer      string   `mapstructure:"JWT_ISSUER"`
	TokenTTL       int      `mapstructure:"TOKEN_TTL_MINUTES"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string   `mapstructure:"BODY_LIMIT"`
	RequestTimeout int      `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	MigrationsDir  string   `mapstructure:"MIGRATIONS_DIR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("JWT_ISSUER", "careflow")
	v.SetDefault("TOKEN_TTL_MINUTES", 60)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("MIGRATIONS_DIR", "migrations")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("JWT_ISSUER")
	v.BindEnv("TOKEN_TTL_MINUTES")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("BODY_LIMIT")
	v.BindEnv("REQUEST_TIMEOUT_SECONDS")
	v.BindEnv("MIGRATIONS_DIR")

	// Try reading .env, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active; unauthenticated requests get admin access.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// TokenTTLDuration returns the access token lifetime.
func (c *Config) TokenTTLDuration() time.Duration {
	return time.Duration(c.TokenTTL) * time.Minute
}

// RequestTimeoutDuration returns the per-request deadline.
func (c *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Validate checks that the configuration is safe to run. Outside development
// a strong JWT secret is mandatory.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when ENV is not development")
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(c.JWTSecret))
		}
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive, got %d", c.TokenTTL)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}
