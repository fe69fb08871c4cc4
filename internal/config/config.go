package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port           int    `yaml:"port"`
	MetricsPort    int    `yaml:"metrics_port"`
	AdminToken     string `yaml:"admin_token"`
	RateLimit      int    `yaml:"rate_limit"`
	MaxRequestSize int64  `yaml:"max_request_bytes"`
	// CORSOrigins enables CORS for the listed origins. Empty disables it.
	CORSOrigins []string `yaml:"cors_origins"`
}

// DatabaseConfig selects the run store. An empty URL keeps runs in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type EngineConfig struct {
	Workers           int     `yaml:"workers"`
	Tolerance         float64 `yaml:"tolerance"`
	TickIntervalMs    int     `yaml:"tick_interval_ms"`
	StaleRunTimeoutMs int     `yaml:"stale_run_timeout_ms"`
	BatchSize         int     `yaml:"batch_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Engine.TickIntervalMs) * time.Millisecond
}

func (c *Config) StaleRunTimeout() time.Duration {
	return time.Duration(c.Engine.StaleRunTimeoutMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           8700,
			MetricsPort:    8701,
			RateLimit:      120,
			MaxRequestSize: 8 << 20,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Engine: EngineConfig{
			Tolerance:         1e-9,
			TickIntervalMs:    2000,
			StaleRunTimeoutMs: 300000,
			BatchSize:         10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PROMETHEE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("PROMETHEE_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("PROMETHEE_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("PROMETHEE_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("PROMETHEE_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Server.CORSOrigins = append(cfg.Server.CORSOrigins, o)
			}
		}
	}
	if v := os.Getenv("PROMETHEE_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("PROMETHEE_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("PROMETHEE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.Workers = n
		}
	}
	if v := os.Getenv("PROMETHEE_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.Tolerance = f
		}
	}
	if v := os.Getenv("PROMETHEE_TICK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.TickIntervalMs = n
		}
	}
	if v := os.Getenv("PROMETHEE_STALE_RUN_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.StaleRunTimeoutMs = n
		}
	}
	if v := os.Getenv("PROMETHEE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PROMETHEE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
