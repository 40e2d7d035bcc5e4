package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/matchlog/internal/adapters/export"
	"github.com/okian/matchlog/internal/adapters/store"
	"github.com/okian/matchlog/internal/config"
	"github.com/okian/matchlog/internal/engine"
	"github.com/okian/matchlog/pkg/logger"
)

// File and HTTP server constants.
const (
	outputFilePermission = 0o600
	readHeaderTimeout    = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optional Prometheus endpoint for long batch sessions.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	eng, err := engine.New(
		engine.WithSeed(cfg.Seed),
		engine.WithDuration(cfg.DurationMinutes),
		engine.WithFormations(cfg.HomeFormation, cfg.AwayFormation),
		engine.WithKickoffTime(cfg.Kickoff()),
		engine.WithLogger(log.Named("engine")),
	)
	if err != nil {
		log.Error(ctx, "failed to build match", logger.Error(err))
		os.Exit(1)
	}

	result, err := eng.Run(ctx)
	if err != nil {
		log.Error(ctx, "match failed", logger.Error(err))
		os.Exit(1)
	}

	stats := engine.ComputeStats(result.Records)
	log.Info(ctx, "final whistle",
		logger.Int("matchID", result.MatchID),
		logger.Int("homeScore", stats.HomeScore),
		logger.Int("awayScore", stats.AwayScore),
		logger.Int("events", stats.TotalEvents),
		logger.Int("homePossessions", stats.Possessions["Home"]),
		logger.Int("awayPossessions", stats.Possessions["Away"]),
		logger.Float64("homeXG", stats.HomeXG),
		logger.Float64("awayXG", stats.AwayXG),
	)

	csvData, xesData, err := export.Export(result.Records)
	if err != nil {
		log.Error(ctx, "export failed", logger.Error(err))
		os.Exit(1)
	}

	base := filepath.Join(cfg.OutputDir, fmt.Sprintf("match_%d", result.MatchID))
	outputs := []struct {
		suffix string
		data   []byte
	}{
		{".csv", csvData},
		{".xes", xesData},
	}
	for _, out := range outputs {
		path := base + out.suffix
		data := out.data
		if err := os.WriteFile(path, data, outputFilePermission); err != nil {
			log.Error(ctx, "failed to write export", logger.String("path", path), logger.Error(err))
			os.Exit(1)
		}
		log.Info(ctx, "log exported", logger.String("path", path), logger.Int("bytes", len(data)))
	}

	if cfg.SQLitePath != "" {
		if err := persist(ctx, cfg.SQLitePath, result); err != nil {
			log.Error(ctx, "failed to persist match", logger.Error(err))
			os.Exit(1)
		}
		log.Info(ctx, "match persisted", logger.String("path", cfg.SQLitePath))
	}
}

// persist saves the match log to the configured SQLite database.
func persist(ctx context.Context, path string, result *engine.Result) error {
	st, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return st.SaveMatch(ctx, result.MatchID, result.Records)
}

// serveMetrics exposes /metrics until the context is canceled.
func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Get().Warn(ctx, "metrics server stopped", logger.Error(err))
	}
}
