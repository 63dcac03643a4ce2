// CoachFlow command-line entry point.
//
// Usage:
//
//	coachflow turn --user alice --text "yeah but that never works"
//	coachflow turn --config config.yaml --user alice --text "..." --stage 2
//	coachflow health --config config.yaml
//	coachflow version
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/coachflow"
	"github.com/BaSui01/coachflow/config"
	"github.com/BaSui01/coachflow/embedding"
	"github.com/BaSui01/coachflow/ensemble"
	"github.com/BaSui01/coachflow/internal/cache"
	"github.com/BaSui01/coachflow/internal/database"
	"github.com/BaSui01/coachflow/internal/telemetry"
	"github.com/BaSui01/coachflow/memory"
	"github.com/BaSui01/coachflow/types"
)

// Version information, injected at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "turn":
		runTurn(os.Args[2:])
	case "health":
		runHealth(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runTurn(args []string) {
	fs := flag.NewFlagSet("turn", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	user := fs.String("user", "", "User identifier")
	text := fs.String("text", "", "Utterance text")
	stage := fs.Int("stage", 1, "Progression stage (1-5)")
	fs.Parse(args)

	if *user == "" || *text == "" {
		fmt.Fprintln(os.Stderr, "turn requires --user and --text")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("telemetry init failed", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(ctx)
	}()

	eng, cleanup, err := buildEngine(cfg, logger)
	if err != nil {
		logger.Fatal("engine setup failed", zap.Error(err))
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Engine.ResolveTimeout+10*time.Second)
	defer cancel()

	decision, err := eng.Process(ctx, &coachflow.Request{
		UserID:    *user,
		Utterance: *text,
		Stage:     *stage,
	})
	if err != nil {
		logger.Fatal("turn failed", zap.Error(err))
	}

	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		logger.Fatal("encoding decision failed", zap.Error(err))
	}
	fmt.Println(string(out))
}

func runHealth(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	healthy := true

	if cfg.Redis.Enabled {
		c, err := cache.NewRedisCache(cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, zap.NewNop())
		if err != nil {
			fmt.Printf("redis: FAIL (%v)\n", err)
			healthy = false
		} else {
			fmt.Println("redis: OK")
			_ = c.Close()
		}
	}

	if cfg.Database.DSN != "" {
		pool, err := database.Open(cfg.Database, zap.NewNop())
		if err != nil {
			fmt.Printf("database: FAIL (%v)\n", err)
			healthy = false
		} else {
			if err := pool.Ping(ctx); err != nil {
				fmt.Printf("database: FAIL (%v)\n", err)
				healthy = false
			} else {
				fmt.Println("database: OK")
			}
			_ = pool.Close()
		}
	}

	if !healthy {
		os.Exit(1)
	}
	fmt.Println("OK")
}

// buildEngine wires a full engine from the configuration: durable store when
// a DSN is configured, redis retrieval cache when enabled, the OpenAI
// embedding provider when an API key is present, and the built-in demo
// experts.
func buildEngine(cfg *config.Config, logger *zap.Logger) (*coachflow.Engine, func(), error) {
	cleanups := make([]func(), 0, 2)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var store memory.Store
	if cfg.Database.DSN != "" {
		pool, err := database.Open(cfg.Database, logger)
		if err != nil {
			return nil, cleanup, fmt.Errorf("open database: %w", err)
		}
		cleanups = append(cleanups, func() { _ = pool.Close() })

		gs, err := memory.NewGormStore(pool, memory.GormStoreConfig{Dimension: cfg.Embedding.Dimensions}, logger)
		if err != nil {
			return nil, cleanup, fmt.Errorf("init memory store: %w", err)
		}
		store = gs
	} else {
		store = memory.NewInMemoryStore(memory.InMemoryStoreConfig{Dimension: cfg.Embedding.Dimensions}, logger)
	}

	var retrievalCache cache.Cache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(cache.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DefaultTTL:   cfg.Engine.RetrievalCacheTTL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, logger)
		if err != nil {
			logger.Warn("redis unavailable, retrieval cache disabled", zap.Error(err))
		} else {
			cleanups = append(cleanups, func() { _ = rc.Close() })
			retrievalCache = rc
		}
	}

	var embedder embedding.Provider
	if cfg.Embedding.APIKey != "" {
		embedder = embedding.NewOpenAIProvider(cfg.Embedding)
	} else {
		logger.Warn("no embedding api key configured, retrieval will degrade to importance ranking")
	}

	retriever := memory.NewRetriever(store, embedder, retrievalCache, nil, memory.RetrieverConfig{
		Dimension: cfg.Embedding.Dimensions,
		CacheTTL:  cfg.Engine.RetrievalCacheTTL,
	}, logger)

	eng, err := coachflow.NewEngine(
		coachflow.WithRetriever(retriever),
		coachflow.WithConfig(cfg.Engine),
		coachflow.WithLogger(logger),
		coachflow.WithExperts(demoExperts()...),
	)
	if err != nil {
		return nil, cleanup, err
	}
	return eng, cleanup, nil
}

func demoExperts() []ensemble.Expert {
	return []ensemble.Expert{
		newDemoExpert(types.ExpertPattern, 0.75, "Here is the pattern I notice in what you said: %q keeps the same loop running."),
		newDemoExpert(types.ExpertAccountability, 0.7, "You said %q. What is the one commitment you can make before we talk next?"),
		newDemoExpert(types.ExpertCompassion, 0.8, "Saying %q takes honesty. Whatever you feel about it right now is allowed."),
		newDemoExpert(types.ExpertGrounding, 0.7, "Before anything else about %q: pause, one slow breath, feet on the floor."),
		newDemoExpert(types.ExpertSystems, 0.7, "Zooming out from %q: which part of your week feeds this, and which part drains it?"),
		newDemoExpert(types.ExpertBreakthrough, 0.75, "Hold on to %q. Name what changed so you can find your way back here."),
	}
}

func printVersion() {
	fmt.Printf("CoachFlow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`CoachFlow - retrieval-augmented coaching engine

Usage:
  coachflow <command> [options]

Commands:
  turn      Run a single coaching turn
  health    Check redis/database connectivity
  version   Show version information
  help      Show this help message

Options for 'turn':
  --config <path>   Path to configuration file (YAML)
  --user <id>       User identifier (required)
  --text <string>   Utterance text (required)
  --stage <n>       Progression stage, 1-5 (default 1)

Examples:
  coachflow turn --user alice --text "yeah but that never works for me"
  coachflow health --config /etc/coachflow/config.yaml
  coachflow version`)
}

func loadConfig(path string) *config.Config {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoding = "console"
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      encoding == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
