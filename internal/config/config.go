package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET,required,notEmpty"`
	GoogleCallbackURL  string        `env:"GOOGLE_CALLBACK_URL,required,notEmpty"`
	OAuthStateTTL      time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`

	FrontendURL string   `env:"FRONTEND_URL,required,notEmpty"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// Optional; OAuth states are kept in process memory when empty.
	RedisURL string `env:"REDIS_URL"`

	Debug bool `env:"DEBUG"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using system environment variables")
	}
	return Parse()
}

// Parse builds a Config from the process environment and validates it.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.CORSOrigins) == 0 {
		u, _ := url.Parse(cfg.FrontendURL)
		cfg.CORSOrigins = []string{u.Scheme + "://" + u.Host}
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.OAuthStateTTL <= 0 {
		return errors.New("OAUTH_STATE_TTL must be positive")
	}
	for name, raw := range map[string]string{
		"FRONTEND_URL":        c.FrontendURL,
		"GOOGLE_CALLBACK_URL": c.GoogleCallbackURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", name)
		}
	}
	for _, origin := range c.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS_ORIGINS: bad origin %q", origin)
		}
	}
	return nil
}
