package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prinsight/impactrank/internal/adapters/http/api"
	"github.com/prinsight/impactrank/internal/adapters/repository"
	"github.com/prinsight/impactrank/internal/adapters/source"
	"github.com/prinsight/impactrank/internal/app"
	"github.com/prinsight/impactrank/internal/config"
	"github.com/prinsight/impactrank/internal/domain/classify"
	"github.com/prinsight/impactrank/internal/domain/normalize"
	"github.com/prinsight/impactrank/internal/domain/rank"
	"github.com/prinsight/impactrank/internal/domain/scoring"
	"github.com/prinsight/impactrank/internal/engine"
	"github.com/prinsight/impactrank/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	eng := engine.New(
		engine.WithWorkerCount(cfg.WorkerCount),
		engine.WithWindowDays(cfg.WindowDays),
		engine.WithNormalizer(normalize.New(
			normalize.WithBotEngineers(cfg.BotEngineers),
		)),
		engine.WithClassifier(classify.New(
			classify.WithInfraPathPrefixes(cfg.InfraPathPrefixes),
			classify.WithInfraLabels(cfg.InfraLabels),
			classify.WithInfraTitleKeywords(cfg.InfraTitleKeywords),
			classify.WithMinFeatureSize(cfg.MinFeatureSize),
		)),
		engine.WithPolicy(scoring.New(
			scoring.WithWeightMap(cfg.Weights),
		)),
		engine.WithRanker(rank.New(
			rank.WithTopN(cfg.TopN),
		)),
		engine.WithLogger(log.Named("engine")),
	)

	// Batch mode: score one dataset file and emit the result on stdout.
	if cfg.DatasetPath != "" {
		if err := runBatch(ctx, eng, cfg.DatasetPath); err != nil {
			log.Error(ctx, "batch run failed", logger.Error(err))
			os.Exit(1)
		}
		return
	}

	store := repository.NewRunStore(
		repository.WithHistorySize(cfg.RunHistory),
	)

	svc, err := app.New(
		app.WithEngine(eng),
		app.WithStore(store),
		app.WithLogger(log.Named("app")),
	)
	if err != nil {
		os.Stderr.WriteString("failed to build service: " + err.Error() + "\n")
		os.Exit(1)
	}

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc,
		api.WithRateLimit(float64(cfg.RateLimitRPS), cfg.RateLimitBurst),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// runBatch loads one dataset file, scores it, and writes the result as
// indented JSON on stdout.
func runBatch(ctx context.Context, eng *engine.Engine, path string) error {
	ds, err := source.NewLoader().LoadFile(path)
	if err != nil {
		return err
	}

	result, err := eng.Run(ctx, ds)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
