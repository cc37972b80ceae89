package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "evcharge/libs/config"
)

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"EVCHARGE_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"EVCHARGE_POSTGRES_DSN"`
	} `yaml:"database"`
	JWT struct {
		Secret           string `yaml:"secret" env:"EVCHARGE_JWT_SECRET"`
		ExpiresInMinutes int    `yaml:"expiresInMinutes" env:"EVCHARGE_JWT_EXPIRES_MINUTES"`
	} `yaml:"jwt"`
	Redis struct {
		Addr              string `yaml:"addr" env:"EVCHARGE_REDIS_ADDR"`
		Password          string `yaml:"password" env:"EVCHARGE_REDIS_PASSWORD"`
		MetricsTTLSeconds int    `yaml:"metricsTtlSeconds" env:"EVCHARGE_REDIS_METRICS_TTL"`
	} `yaml:"redis"`
	Scheduler struct {
		Enabled         bool `yaml:"enabled" env:"EVCHARGE_SCHEDULER_ENABLED"`
		IntervalSeconds int  `yaml:"intervalSeconds" env:"EVCHARGE_SCHEDULER_INTERVAL"`
	} `yaml:"scheduler"`
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.JWT.ExpiresInMinutes = 60
	cfg.Redis.MetricsTTLSeconds = 30
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.IntervalSeconds = 60

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	if cfg.Database.DSN == "" {
		return nil, errors.New("config: database DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("config: jwt secret is required")
	}
	if cfg.JWT.ExpiresInMinutes <= 0 {
		cfg.JWT.ExpiresInMinutes = 60
	}
	if cfg.Scheduler.IntervalSeconds <= 0 {
		cfg.Scheduler.IntervalSeconds = 60
	}
	if cfg.Redis.MetricsTTLSeconds <= 0 {
		cfg.Redis.MetricsTTLSeconds = 30
	}

	return cfg, nil
}

// HTTPAddress ensures we always return host:port formatted string.
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

// JWTExpiration converts configured expiry to duration.
func (c *Config) JWTExpiration() time.Duration {
	if c.JWT.ExpiresInMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWT.ExpiresInMinutes) * time.Minute
}

// SchedulerInterval returns the sweep cadence.
func (c *Config) SchedulerInterval() time.Duration {
	if c.Scheduler.IntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Scheduler.IntervalSeconds) * time.Second
}

// MetricsTTL returns how long cached metrics snapshots stay fresh.
func (c *Config) MetricsTTL() time.Duration {
	if c.Redis.MetricsTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Redis.MetricsTTLSeconds) * time.Second
}
