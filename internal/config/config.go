// Package config defines the service configuration.
package config

import (
	"fmt"
	"time"

	"tabula/pkg/config"
)

// EnvPrefix is the environment variable prefix for all settings.
const EnvPrefix = "TABULA_"

// Cache backend selectors.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Config is the root service configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// CacheConfig selects and configures the result cache backend.
type CacheConfig struct {
	// Backend is one of file, redis, none.
	Backend string        `mapstructure:"backend"`
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// FetchConfig bounds remote resource fetches.
type FetchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from the environment and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(EnvPrefix, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	switch cfg.Cache.Backend {
	case CacheBackendFile, CacheBackendRedis, CacheBackendNone:
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendFile
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "/tmp/tabula-cache"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
}
