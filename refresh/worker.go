package refresh

import (
	"context"
	"time"

	"github.com/rs/xid"
)

// scheduledRefresh is a single scheduled Job run
type scheduledRefresh struct {
	at    time.Time
	job   Job
	jobID xid.ID
}

// Less is utilized to sort scheduled runs by their due-time (latest == first)
func (a scheduledRefresh) Less(b scheduledRefresh) bool {
	return a.at.Before(b.at)
}

// workerInfo is the work context for the job routine
type workerInfo struct {
	job   Job
	resCh chan<- *workerResponse
	jobID xid.ID
}

// workerResponse is the job routine response
type workerResponse struct {
	error error  // encountered error, if any
	jobID xid.ID // the job ID
}

// handleJob runs the refresh job
func handleJob(
	ctx context.Context,
	info *workerInfo,
) {
	err := info.job.Refresh(ctx)

	response := &workerResponse{
		error: err,
		jobID: info.jobID,
	}

	select {
	case <-ctx.Done():
	case info.resCh <- response:
	}
}
