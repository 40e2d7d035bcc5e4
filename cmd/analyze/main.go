package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/matchlog/internal/analysis"
	"github.com/okian/matchlog/internal/domain/model"
	"github.com/okian/matchlog/pkg/logger"
)

func main() {
	matches := flag.Int("matches", 10, "number of matches to simulate")
	workers := flag.Int("workers", 0, "concurrent workers (default: CPU cores)")
	seed := flag.Int64("seed", 1, "base seed; match i uses seed+i")
	duration := flag.Int("duration", 90, "match duration in minutes")
	home := flag.String("home", "4-4-2", "home formation")
	away := flag.String("away", "4-3-3", "away formation")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := analysis.Run(ctx, analysis.Config{
		Matches:         *matches,
		Workers:         *workers,
		BaseSeed:        *seed,
		DurationMinutes: *duration,
		HomeFormation:   *home,
		AwayFormation:   *away,
	})
	if err != nil {
		log.Error(ctx, "batch failed", logger.Error(err))
		os.Exit(1)
	}

	log.Info(ctx, "batch report",
		logger.String("runID", report.RunID),
		logger.Int("matches", len(report.Matches)),
		logger.Int("totalGoals", report.TotalGoals),
		logger.Float64("avgGoals", report.AvgGoals),
		logger.Float64("avgPossessions", report.AvgPossessions),
		logger.Float64("avgPossessionLength", report.AvgPossessionLength),
	)
	for _, action := range []model.Action{model.ActionPass, model.ActionDribble, model.ActionShot} {
		split := report.ByPressure[action]
		log.Info(ctx, "pressure split",
			logger.String("action", string(action)),
			logger.Float64("successNoPressure", split.Rate(0)),
			logger.Float64("successUnderPressure", split.Rate(1)),
		)
	}
}
