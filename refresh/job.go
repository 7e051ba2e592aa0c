package refresh

import (
	"context"
	"time"
)

// Job is a single registered cache-warming job
type Job interface {
	// Name returns the human-readable name of the job
	Name() string

	// Interval returns the interval at which the job should run
	Interval() time.Duration

	// Refresh is the job's main work, re-warming rate data
	Refresh(context.Context) error
}
