package serve

import (
	"context"
	"time"

	"github.com/sig-0/fxboard/dash"
	"github.com/sig-0/fxboard/rates/cache"
	"github.com/sig-0/fxboard/rates/types"
	"github.com/sig-0/fxboard/refresh"
)

// warmJob re-runs a dashboard lookup through the cached source.
// Expired entries get re-fetched, still-valid ones cost nothing
type warmJob struct {
	run      func(ctx context.Context) error
	name     string
	interval time.Duration
}

func (j *warmJob) Name() string {
	return j.name
}

func (j *warmJob) Interval() time.Duration {
	return j.interval
}

func (j *warmJob) Refresh(ctx context.Context) error {
	return j.run(ctx)
}

// defaultJobs returns the default cache-warming jobs:
// the symbol listing, the default base's latest rates, and the
// default pair's recent history
func defaultJobs(service *dash.Service, cfg *dash.Config) []refresh.Job {
	return []refresh.Job{
		&warmJob{
			name:     "symbols",
			interval: cache.DefaultSymbolsTTL,
			run: func(ctx context.Context) error {
				_, err := service.Symbols(ctx)

				return err
			},
		},
		&warmJob{
			name:     "latest " + cfg.DefaultBase.String(),
			interval: cache.DefaultLatestTTL,
			run: func(ctx context.Context) error {
				_, err := service.Snapshot(ctx, cfg.DefaultBase)

				return err
			},
		},
		&warmJob{
			name:     "history " + cfg.DefaultBase.String() + "/" + cfg.DefaultTarget.String(),
			interval: cache.DefaultSeriesTTL,
			run: func(ctx context.Context) error {
				end := types.DateOf(time.Now())

				_, err := service.History(
					ctx,
					cfg.DefaultBase,
					cfg.DefaultTarget,
					end.AddDays(-30),
					end,
				)

				return err
			},
		},
	}
}
