package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"
)

var (
	errInvalidJob      = errors.New("invalid job")
	errInvalidInterval = errors.New("invalid interval")
)

// retryInterval is how soon a failed job run is retried
const retryInterval = time.Second * 10

// Scheduler periodically re-runs registered cache-warming jobs.
// It sits outside the request path, warmed lookups go through the
// regular cached source, so still-valid entries cost nothing
type Scheduler struct {
	logger *slog.Logger

	registeredJobs sync.Map

	q             iq.Queue[scheduledRefresh]
	queryInterval time.Duration
	qMux          sync.Mutex
}

// New creates a new Scheduler instance
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		q:             iq.NewQueue[scheduledRefresh](),
		queryInterval: time.Second, // every second
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register registers a new job with the scheduler.
// The job is immediately queued up for execution
func (s *Scheduler) Register(j Job) error {
	if j == nil || j.Name() == "" {
		return errInvalidJob
	}

	if j.Interval() <= 0 {
		return errInvalidInterval
	}

	// Register the job
	id := xid.New()
	s.registeredJobs.Store(id, j)

	s.logger.Info(
		"registered new refresh job",
		"name", j.Name(),
	)

	// Schedule the run
	s.scheduleRefresh(
		time.Now().UTC(),
		id,
		j,
	)

	return nil
}

// Start starts the refresh scheduling service loop [BLOCKING]
func (s *Scheduler) Start(ctx context.Context) error {
	collectorCh := make(chan *workerResponse, 100)

	// Start a listener for monitoring jobs
	ticker := time.NewTicker(s.queryInterval)
	defer ticker.Stop()

	// handleDue initializes all job runs that are executable (due)
	handleDue := func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				nextSR := s.nextRefresh()
				if nextSR == nil {
					return // nothing to schedule anymore
				}

				s.logger.Info(
					"scheduling refresh",
					"name", nextSR.job.Name(),
				)

				// Spawn worker
				info := &workerInfo{
					job:   nextSR.job,
					jobID: nextSR.jobID,
					resCh: collectorCh,
				}

				go handleJob(ctx, info)
			}
		}
	}

	// Initialize the first set of due runs (on boot)
	handleDue()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresh scheduler shut down")
			close(collectorCh)

			return nil
		case <-ticker.C:
			handleDue()
		case response := <-collectorCh:
			now := time.Now().UTC()

			rjRaw, ok := s.registeredJobs.Load(response.jobID)

			if !ok {
				s.logger.Error(
					"unable to load registered job",
					"id", response.jobID.String(),
				)

				continue
			}

			rj, _ := rjRaw.(Job)

			if response.error != nil {
				s.logger.Error(
					"error encountered during refresh",
					"id", response.jobID.String(),
					"err", response.error.Error(),
				)

				// Retry the run soon
				s.scheduleRefresh(
					now.Add(retryInterval),
					response.jobID,
					rj,
				)

				continue
			}

			s.logger.Info(
				"refresh job completed",
				"name", rj.Name(),
			)

			// Schedule the next run for this job
			s.scheduleRefresh(
				now.Add(rj.Interval()),
				response.jobID,
				rj,
			)
		}
	}
}

// scheduleRefresh schedules a new job run
func (s *Scheduler) scheduleRefresh(
	at time.Time,
	jobID xid.ID,
	job Job,
) {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	futureSR := scheduledRefresh{
		at:    at,
		jobID: jobID,
		job:   job,
	}

	s.q.Push(futureSR)
}

// nextRefresh fetches the next due job run, as of the moment of calling
func (s *Scheduler) nextRefresh() *scheduledRefresh {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	now := time.Now().UTC()

	// Check if anything needs to be scheduled
	if s.q.Len() == 0 {
		return nil // nothing to schedule, all jobs are running
	}

	// Check if the top element is due
	if s.q.Index(0).at.After(now) {
		return nil // nothing to schedule, latest run is in the future
	}

	// Grab the next run
	nextSR := s.q.PopFront()

	return nextSR
}
