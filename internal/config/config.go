package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	Env      string `mapstructure:"BLOG_ENV"`
	HTTPAddr string `mapstructure:"BLOG_HTTP_ADDR"`

	Database DBConfig       `mapstructure:",squash"`
	JWT      JWTConfig      `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
}

type DBConfig struct {
	Backend     string `mapstructure:"BLOG_DB_BACKEND"` // "memory", "postgres"
	PostgresDSN string `mapstructure:"BLOG_POSTGRES_DSN"`
}

type JWTConfig struct {
	Key           string `mapstructure:"BLOG_JWT_KEY"`
	Issuer        string `mapstructure:"BLOG_JWT_ISSUER"`
	Audience      string `mapstructure:"BLOG_JWT_AUDIENCE"`
	ExpireMinutes int    `mapstructure:"BLOG_JWT_EXPIRE_MINUTES"`
}

type SecurityConfig struct {
	RateLimitRPM       int      `mapstructure:"BLOG_RATE_LIMIT_RPM"`
	CORSAllowedOrigins []string `mapstructure:"BLOG_CORS_ALLOWED_ORIGINS"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
	}

	seen := make(map[string]struct{})
	for _, path := range candidates {
		abs := path
		if resolved, err := filepath.Abs(path); err == nil {
			abs = resolved
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // env vars already set take precedence
		}
	}
}

func Load() (*Config, error) {
	loadDotEnvFiles()

	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("BLOG_ENV", "dev")
	viper.SetDefault("BLOG_HTTP_ADDR", ":8080")
	viper.SetDefault("BLOG_DB_BACKEND", "memory")
	viper.SetDefault("BLOG_POSTGRES_DSN", "")
	viper.SetDefault("BLOG_JWT_ISSUER", "blog-api")
	viper.SetDefault("BLOG_JWT_AUDIENCE", "blog-clients")
	viper.SetDefault("BLOG_JWT_EXPIRE_MINUTES", 60)
	viper.SetDefault("BLOG_RATE_LIMIT_RPM", 120)
	viper.SetDefault("BLOG_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	// Handle array parsing for comma-separated values
	if origins := viper.GetString("BLOG_CORS_ALLOWED_ORIGINS"); origins != "" {
		viper.Set("BLOG_CORS_ALLOWED_ORIGINS", strings.Split(origins, ","))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	// An unsigned token service is not a degraded mode, it is a broken
	// deployment: refuse to start without a key.
	if strings.TrimSpace(c.JWT.Key) == "" {
		return fmt.Errorf("BLOG_JWT_KEY is required")
	}
	if c.JWT.ExpireMinutes <= 0 {
		return fmt.Errorf("BLOG_JWT_EXPIRE_MINUTES must be positive")
	}
	switch c.Database.Backend {
	case "memory":
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("BLOG_POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("invalid BLOG_DB_BACKEND %q (must be memory or postgres)", c.Database.Backend)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// TokenTTL returns the configured token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpireMinutes) * time.Minute
}
