package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader loads configuration with priority: defaults, YAML file, environment.
type Loader struct {
	configPath string
	envPrefix  string
}

// NewLoader creates a loader with no config file and the COACHFLOW env prefix.
func NewLoader() *Loader {
	return &Loader{envPrefix: "COACHFLOW"}
}

// WithConfigPath sets the YAML config file path. The file is optional; a
// missing file is not an error, a malformed one is.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// Load builds the final configuration and validates it.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		data, err := os.ReadFile(l.configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", l.configPath, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", l.configPath, err)
		}
	}

	l.applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func (l *Loader) applyEnv(cfg *Config) {
	l.envString("REDIS_ADDR", &cfg.Redis.Addr)
	l.envString("REDIS_PASSWORD", &cfg.Redis.Password)
	l.envInt("REDIS_DB", &cfg.Redis.DB)
	l.envBool("REDIS_ENABLED", &cfg.Redis.Enabled)

	l.envString("DATABASE_DRIVER", &cfg.Database.Driver)
	l.envString("DATABASE_DSN", &cfg.Database.DSN)

	l.envString("EMBEDDING_BASE_URL", &cfg.Embedding.BaseURL)
	l.envString("EMBEDDING_API_KEY", &cfg.Embedding.APIKey)
	l.envString("EMBEDDING_MODEL", &cfg.Embedding.Model)
	l.envInt("EMBEDDING_DIMENSIONS", &cfg.Embedding.Dimensions)

	l.envInt("ENGINE_MAX_RESULTS", &cfg.Engine.MaxResults)
	l.envDuration("ENGINE_EXPERT_TIMEOUT", &cfg.Engine.ExpertTimeout)
	l.envDuration("ENGINE_RESOLVE_TIMEOUT", &cfg.Engine.ResolveTimeout)

	l.envString("LOG_LEVEL", &cfg.Log.Level)
	l.envString("LOG_FORMAT", &cfg.Log.Format)

	l.envBool("TELEMETRY_ENABLED", &cfg.Telemetry.Enabled)
	l.envString("TELEMETRY_OTLP_ENDPOINT", &cfg.Telemetry.OTLPEndpoint)
	l.envString("TELEMETRY_SERVICE_NAME", &cfg.Telemetry.ServiceName)
}

func (l *Loader) lookup(key string) (string, bool) {
	return os.LookupEnv(l.envPrefix + "_" + key)
}

func (l *Loader) envString(key string, dest *string) {
	if v, ok := l.lookup(key); ok {
		*dest = v
	}
}

func (l *Loader) envInt(key string, dest *int) {
	if v, ok := l.lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dest = n
		}
	}
}

func (l *Loader) envBool(key string, dest *bool) {
	if v, ok := l.lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dest = b
		}
	}
}

func (l *Loader) envDuration(key string, dest *time.Duration) {
	if v, ok := l.lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dest = d
		}
	}
}
