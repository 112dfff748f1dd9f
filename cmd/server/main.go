package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/analyzer"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/config"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/handlers"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/llm"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/loader"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/mapper"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/memory"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/observability"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/reviewer"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/transport"
)

func main() {
	// Load .env file if it exists (for development)
	envErr := godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: cfg.Service.Name,
	})
	if envErr != nil {
		logger.Debug().Msg("no .env file found, using environment variables")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("service stopped with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("model", cfg.Anthropic.Model).
		Str("nats_url", cfg.NATS.URL).
		Str("http_addr", cfg.HTTP.Addr).
		Msg("starting assistant service")

	store := newStore(cfg.Redis, logger)
	memoryManager := memory.NewManager(store, logger, memory.WithHistoryWindow(cfg.Assistant.HistoryWindow))
	defer memoryManager.Close()

	generator, err := newGenerator(cfg.Anthropic, logger)
	if err != nil {
		return err
	}

	dataLoader, closeDB, err := newLoader(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	chatHandler := handlers.NewChatHandler(handlers.Dependencies{
		Analyzer:  analyzer.NewAnalyzer(),
		Mapper:    mapper.NewMapper(),
		Loader:    dataLoader,
		Generator: generator,
		Reviewer: reviewer.NewReviewer(
			reviewer.WithMaxContextBytes(cfg.Assistant.MaxContextBytes),
			reviewer.WithMaxResponseBytes(cfg.Assistant.MaxResponseBytes),
		),
		Memory: memoryManager,
		Logger: logger,
	}, handlers.Settings{
		MaxReprocessAttempts: cfg.Assistant.MaxReprocessAttempts,
		MaxQueryRunes:        cfg.Assistant.MaxQueryRunes,
	})

	natsTransport, err := transport.NewNATSTransport(cfg.NATS, cfg.Service.Name, chatHandler, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("NATS unavailable, serving HTTP only")
	} else {
		defer natsTransport.Close()
		if err := natsTransport.Start(); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      transport.NewHTTPRouter(chatHandler, cfg.Service.Name, cfg.HTTP.RequestTimeout, logger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	logger.Info().Str("addr", cfg.HTTP.Addr).Msg("assistant service is running")

	err = transport.Serve(ctx, srv, cfg.HTTP.GracefulShutdown)
	logger.Info().Int("active_sessions", memoryManager.ActiveSessionCount()).Msg("shutting down")
	return err
}

// newStore prefers Redis and keeps an in-process store behind it. Without
// Redis, sessions live in process memory only.
func newStore(cfg config.RedisConfig, logger zerolog.Logger) memory.Store {
	local := memory.NewMemoryStore(cfg.TTL)

	redisStore, err := memory.NewRedisStore(cfg.URL, cfg.TTL, cfg.KeyPrefix)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, using in-memory sessions")
		return local
	}
	logger.Info().Msg("Redis connected")
	return memory.NewFallbackStore(redisStore, local, logger)
}

func newGenerator(cfg config.AnthropicConfig, logger zerolog.Logger) (llm.Generator, error) {
	settings := llm.AnthropicConfig{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}

	primary, err := llm.NewAnthropicGenerator(settings)
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}

	opts := []llm.ResilientOption{
		llm.WithRetries(cfg.MaxRetries, cfg.RetryDelay),
		llm.WithTimeout(cfg.Timeout),
	}
	if cfg.FallbackModel != "" {
		settings.Model = cfg.FallbackModel
		fallback, err := llm.NewAnthropicGenerator(settings)
		if err != nil {
			return nil, fmt.Errorf("init fallback generator: %w", err)
		}
		opts = append(opts, llm.WithFallback(fallback))
		logger.Info().Str("fallback_model", cfg.FallbackModel).Msg("fallback generator enabled")
	}

	return llm.NewResilientGenerator(primary, logger, opts...), nil
}

// newLoader opens the logistics database when a DSN is configured. Queries
// from the config replace the built-in ones per domain.
func newLoader(cfg config.DatabaseConfig, logger zerolog.Logger) (loader.Loader, func(), error) {
	if cfg.DSN == "" {
		logger.Warn().Msg("no database configured, answers will have no data")
		return loader.EmptyLoader{}, func() {}, nil
	}

	db, err := loader.OpenDatabase(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("init data loader: %w", err)
	}

	queries := loader.DefaultQueries()
	for domain, q := range cfg.Queries {
		queries[domain] = q
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}
	logger.Info().Str("driver", cfg.Driver).Int("queries", len(queries)).Msg("data loader ready")
	return loader.NewSQLLoader(db, queries, loader.WithMaxRows(cfg.MaxRows)), closeDB, nil
}
