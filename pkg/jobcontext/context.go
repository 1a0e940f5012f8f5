package jobcontext

import (
	"context"
	"time"
)

type contextKey string

const keyMetadata contextKey = "job_metadata"

// Metadata identifies one job execution. Retry control deliberately does
// not live here; the worker runtime interprets the stage's returned
// decision instead of inspecting context values or error text.
type Metadata struct {
	JobID          string
	Stage          string
	ConversationID string
	WorkerID       int
	Attempt        int
	StartTime      time.Time
}

// Begin derives a job-scoped context carrying the metadata and bounded by
// the given timeout.
func Begin(parent context.Context, timeout time.Duration, meta Metadata) (context.Context, context.CancelFunc) {
	if meta.StartTime.IsZero() {
		meta.StartTime = time.Now()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	return context.WithValue(ctx, keyMetadata, meta), cancel
}

// Get extracts the job metadata, if any.
func Get(ctx context.Context) (Metadata, bool) {
	meta, ok := ctx.Value(keyMetadata).(Metadata)
	return meta, ok
}

// Elapsed reports how long the job has been running. Zero when the
// context carries no job metadata.
func Elapsed(ctx context.Context) time.Duration {
	meta, ok := Get(ctx)
	if !ok {
		return 0
	}
	return time.Since(meta.StartTime)
}
