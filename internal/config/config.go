// Package config loads server settings from an optional YAML file with
// environment overrides. Env always wins so container deployments need
// no file at all.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"sweepnav/internal/logging"
)

type Config struct {
	Addr        string         `yaml:"addr"`
	DatabaseURL string         `yaml:"databaseUrl"`
	RedisURL    string         `yaml:"redisUrl"`
	Log         logging.Config `yaml:"log"`

	// Rate limiting for the optimize endpoints.
	RateLimitRPS   float64 `yaml:"rateLimitRps"`
	RateLimitBurst int     `yaml:"rateLimitBurst"`

	// Default solver wall-clock budget applied at the API edge.
	SolverTimeLimitMs int `yaml:"solverTimeLimitMs"`

	// Result cache TTL in seconds; 0 selects the cache default.
	CacheTTLSec int `yaml:"cacheTtlSec"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:              ":8080",
		Log:               logging.Config{Level: "info", Format: "json"},
		RateLimitRPS:      20,
		RateLimitBurst:    40,
		SolverTimeLimitMs: 15000,
	}
}

// Load reads the YAML file when path is non-empty, then applies env
// overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitBurst = n
		}
	}
	if v := os.Getenv("SOLVER_TIME_LIMIT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SolverTimeLimitMs = n
		}
	}
	if v := os.Getenv("CACHE_TTL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CacheTTLSec = n
		}
	}
}
