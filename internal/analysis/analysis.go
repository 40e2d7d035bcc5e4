// Package analysis runs batches of matches and aggregates their event logs.
// Each match is internally single-threaded and deterministic; the batch
// fans matches out across a worker pool, seeded base+index, so the same
// base seed always produces the same report.
package analysis

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchlog/internal/domain/model"
	"github.com/okian/matchlog/internal/engine"
	"github.com/okian/matchlog/pkg/logger"
)

// Config controls one batch run.
type Config struct {
	Matches         int
	Workers         int
	BaseSeed        int64
	DurationMinutes int
	HomeFormation   string
	AwayFormation   string
}

// normalize fills defaults for zero fields.
func (c *Config) normalize() {
	if c.Matches <= 0 {
		c.Matches = 10
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Workers > c.Matches {
		c.Workers = c.Matches
	}
	if c.DurationMinutes <= 0 {
		c.DurationMinutes = 90
	}
}

// MatchSummary is the per-match slice of a report.
type MatchSummary struct {
	Seed        int64
	MatchID     int
	HomeScore   int
	AwayScore   int
	Events      int
	Possessions int
	HomeXG      float64
	AwayXG      float64
}

// PressureSplit compares an action's success rate with and without pressure.
type PressureSplit struct {
	Attempts  [2]int // indexed by the pressure flag
	Successes [2]int
}

// Rate returns the success rate under the given pressure flag.
func (p PressureSplit) Rate(pressure int) float64 {
	if p.Attempts[pressure] == 0 {
		return 0
	}
	return float64(p.Successes[pressure]) / float64(p.Attempts[pressure])
}

// Report aggregates a batch of matches.
type Report struct {
	RunID   string
	Elapsed time.Duration

	Matches []MatchSummary

	TotalGoals          int
	AvgGoals            float64
	AvgPossessions      float64
	AvgPossessionLength float64 // events per possession episode

	// ByPressure splits on-ball action outcomes by the pressure flag.
	ByPressure map[model.Action]*PressureSplit
}

// Run simulates cfg.Matches matches and aggregates their logs.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	cfg.normalize()
	log := logger.Get().Named("analysis")
	started := time.Now()

	report := &Report{
		RunID: uuid.NewString(),
		ByPressure: map[model.Action]*PressureSplit{
			model.ActionPass:    {},
			model.ActionDribble: {},
			model.ActionShot:    {},
		},
	}

	log.Info(ctx, "batch starting",
		logger.String("runID", report.RunID),
		logger.Int("matches", cfg.Matches),
		logger.Int("workers", cfg.Workers),
		logger.Int64("baseSeed", cfg.BaseSeed),
	)

	type outcome struct {
		summary MatchSummary
		records []model.EventRecord
		err     error
	}

	seeds := make(chan int64, cfg.Matches)
	results := make(chan outcome, cfg.Matches)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seed := range seeds {
				summary, records, err := runOne(ctx, cfg, seed)
				results <- outcome{summary: summary, records: records, err: err}
			}
		}()
	}

	for i := 0; i < cfg.Matches; i++ {
		seeds <- cfg.BaseSeed + int64(i)
	}
	close(seeds)
	wg.Wait()
	close(results)

	totalEvents := 0
	totalPossessions := 0
	for res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("match with seed %d: %w", res.summary.Seed, res.err)
		}
		report.Matches = append(report.Matches, res.summary)
		report.TotalGoals += res.summary.HomeScore + res.summary.AwayScore
		totalEvents += res.summary.Events
		totalPossessions += res.summary.Possessions
		accumulatePressure(report.ByPressure, res.records)
	}

	// Result order depends on scheduling; sort for stable reports.
	sort.Slice(report.Matches, func(i, j int) bool {
		return report.Matches[i].Seed < report.Matches[j].Seed
	})

	n := float64(len(report.Matches))
	report.AvgGoals = float64(report.TotalGoals) / n
	report.AvgPossessions = float64(totalPossessions) / n
	if totalPossessions > 0 {
		report.AvgPossessionLength = float64(totalEvents) / float64(totalPossessions)
	}
	report.Elapsed = time.Since(started)

	log.Info(ctx, "batch finished",
		logger.String("runID", report.RunID),
		logger.Int("matches", len(report.Matches)),
		logger.Int("totalGoals", report.TotalGoals),
		logger.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// runOne simulates a single seeded match.
func runOne(ctx context.Context, cfg Config, seed int64) (MatchSummary, []model.EventRecord, error) {
	eng, err := engine.New(
		engine.WithSeed(seed),
		engine.WithDuration(cfg.DurationMinutes),
		engine.WithFormations(cfg.HomeFormation, cfg.AwayFormation),
	)
	if err != nil {
		return MatchSummary{Seed: seed}, nil, err
	}
	res, err := eng.Run(ctx)
	if err != nil {
		return MatchSummary{Seed: seed}, nil, err
	}
	stats := engine.ComputeStats(res.Records)
	return MatchSummary{
		Seed:        seed,
		MatchID:     res.MatchID,
		HomeScore:   res.HomeScore,
		AwayScore:   res.AwayScore,
		Events:      len(res.Records),
		Possessions: res.Possessions,
		HomeXG:      stats.HomeXG,
		AwayXG:      stats.AwayXG,
	}, res.Records, nil
}

// accumulatePressure folds one match's on-ball outcomes into the splits.
func accumulatePressure(splits map[model.Action]*PressureSplit, records []model.EventRecord) {
	for _, rec := range records {
		split, ok := splits[rec.Action]
		if !ok {
			continue
		}
		split.Attempts[rec.Pressure]++
		if rec.Outcome == model.OutcomeSuccess {
			split.Successes[rec.Pressure]++
		}
	}
}
