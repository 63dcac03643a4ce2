// Package config provides unified configuration loading for CoachFlow:
// defaults, YAML file, then environment overrides, in that priority order.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("COACHFLOW").
//	    Load()
package config

import (
	"fmt"
	"time"
)

// Config is the complete CoachFlow configuration.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Redis     RedisConfig     `yaml:"redis"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// EngineConfig bounds the per-turn pipeline.
type EngineConfig struct {
	// MaxResults caps memories returned per retrieval.
	MaxResults int `yaml:"max_results"`

	// ExpertTimeout bounds each expert invocation independently.
	ExpertTimeout time.Duration `yaml:"expert_timeout"`

	// ResolveTimeout is the parent deadline for a whole resolve call. On
	// expiry the arbiter proceeds with whatever candidates completed.
	ResolveTimeout time.Duration `yaml:"resolve_timeout"`

	// RetrievalCacheTTL controls how long retrieval results stay cached.
	RetrievalCacheTTL time.Duration `yaml:"retrieval_cache_ttl"`

	// DispatchRPS and DispatchBurst throttle expert dispatch.
	DispatchRPS   float64 `yaml:"dispatch_rps"`
	DispatchBurst int     `yaml:"dispatch_burst"`
}

// RedisConfig configures the retrieval cache backend.
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DefaultTTL   time.Duration `yaml:"default_ttl"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
}

// DatabaseConfig configures the durable memory store.
type DatabaseConfig struct {
	// Driver is sqlite or postgres.
	Driver string `yaml:"driver"`

	// DSN is the driver-specific connection string. For sqlite this is the
	// database file path ("file::memory:?cache=shared" for tests).
	DSN string `yaml:"dsn"`

	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`

	// Dimensions is the fixed embedding length for the deployment. Every
	// stored memory must carry a vector of exactly this length.
	Dimensions int `yaml:"dimensions"`

	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig configures zap.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format: json or console.
	Format string `yaml:"format"`
}

// TelemetryConfig configures the OTel SDK.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	ServiceName  string  `yaml:"service_name"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func (c *Config) Validate() error {
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Engine.MaxResults <= 0 {
		return fmt.Errorf("engine.max_results must be positive, got %d", c.Engine.MaxResults)
	}
	if c.Engine.ExpertTimeout <= 0 || c.Engine.ResolveTimeout <= 0 {
		return fmt.Errorf("engine timeouts must be positive")
	}
	if c.Engine.ExpertTimeout > c.Engine.ResolveTimeout {
		return fmt.Errorf("engine.expert_timeout %v exceeds resolve_timeout %v",
			c.Engine.ExpertTimeout, c.Engine.ResolveTimeout)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	return nil
}
