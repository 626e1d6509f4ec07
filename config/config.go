package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL  string `env:"DATABASE_URL,required" validate:"required"`
	DatabaseConn int32  `env:"DATABASE_MAX_CONNS" envDefault:"10" validate:"min=1,max=100"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0" validate:"required,url"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret string        `env:"JWT_SECRET,required" validate:"required,min=32"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h" validate:"min=1m"`
	CipherKey string        `env:"CIPHER_KEY,required" validate:"required,len=64,hexadecimal"`

	Registry Registry `envPrefix:"REGISTRY_"`
}

// Registry configures the public company registry client.
type Registry struct {
	BaseURL      string        `env:"BASE_URL" envDefault:"https://api.insee.fr" validate:"required,url"`
	ClientID     string        `env:"CLIENT_ID"`
	ClientSecret string        `env:"CLIENT_SECRET"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"10s" validate:"min=1s"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Database is the subset the admin CLI needs.
type Database struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
}

func LoadDatabase() (*Database, error) {
	cfg := &Database{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CipherKeyBytes decodes CIPHER_KEY. Load has already checked its shape.
func (c *Config) CipherKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.CipherKey)
	if err != nil {
		return nil, fmt.Errorf("decode cipher key: %w", err)
	}
	return key, nil
}
