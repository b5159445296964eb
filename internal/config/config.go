package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "learnhub/libs/config"
)

// Config defines learnhub service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"LEARNHUB_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"LEARNHUB_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"LEARNHUB_REDIS_ADDR"`
		Password string `yaml:"password" env:"LEARNHUB_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"LEARNHUB_REDIS_DB"`
		GrantTTL int    `yaml:"grantTtlSeconds" env:"LEARNHUB_REDIS_GRANT_TTL"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret  string `yaml:"jwtSecret" env:"LEARNHUB_JWT_SECRET"`
		TokenTTL   int    `yaml:"tokenTtlSeconds" env:"LEARNHUB_TOKEN_TTL"`
		BcryptCost int    `yaml:"bcryptCost" env:"LEARNHUB_BCRYPT_COST"`
	} `yaml:"auth"`
	Notifier struct {
		BaseURL string `yaml:"baseUrl" env:"LEARNHUB_NOTIFIER_URL"`
	} `yaml:"notifier"`
}

// Load reads configuration via the shared helper and validates required keys.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.GrantTTL = 60
	cfg.Auth.TokenTTL = 86400

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// GrantTTL returns the access-grant cache TTL as a duration.
func (c *Config) GrantTTL() time.Duration {
	if c.Redis.GrantTTL <= 0 {
		return time.Minute
	}
	return time.Duration(c.Redis.GrantTTL) * time.Second
}

// TokenTTL returns the JWT lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Auth.TokenTTL) * time.Second
}
