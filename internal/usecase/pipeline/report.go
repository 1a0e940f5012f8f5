package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
)

// stuckLister is the read surface the reporter needs. Implemented by
// repository.ConversationRepository.
type stuckLister interface {
	ListConversationsByStatus(ctx context.Context, statuses []entities.ConversationStatus, limit int) ([]entities.Conversation, error)
}

// StuckReporter periodically logs conversations that have sat in an
// in-progress status longer than the threshold. Nothing reclaims them
// automatically; a worker crash between the claim and the commit leaves
// the row where it is, and this report is how operators find out.
type StuckReporter struct {
	repo      stuckLister
	threshold time.Duration
	interval  time.Duration
	logger    *zap.Logger
}

// NewStuckReporter creates a stuck-status reporter
func NewStuckReporter(repo stuckLister, threshold, interval time.Duration, logger *zap.Logger) *StuckReporter {
	return &StuckReporter{
		repo:      repo,
		threshold: threshold,
		interval:  interval,
		logger:    logger,
	}
}

// Run reports until ctx is cancelled.
func (r *StuckReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report(ctx)
		}
	}
}

func (r *StuckReporter) report(ctx context.Context) {
	statuses := []entities.ConversationStatus{
		entities.ConversationStatusTranscribing,
		entities.ConversationStatusSummarizing,
	}
	conversations, err := r.repo.ListConversationsByStatus(ctx, statuses, 100)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("failed to list in-progress conversations", zap.Error(err))
		}
		return
	}

	cutoff := time.Now().Add(-r.threshold)
	for _, c := range conversations {
		if c.UpdatedAt.After(cutoff) {
			continue
		}
		r.logger.Warn("conversation stuck in in-progress status",
			zap.String("conversation_id", c.ID.String()),
			zap.String("status", string(c.Status)),
			zap.Time("since", c.UpdatedAt))
	}
}
