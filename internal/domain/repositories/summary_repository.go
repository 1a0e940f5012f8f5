package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
)

// SummaryRepository defines the interface for summary data access
type SummaryRepository interface {
	// CreateSummary creates a new summary
	CreateSummary(ctx context.Context, summary *entities.Summary) error

	// GetSummaryByConversationID retrieves a conversation's summary
	GetSummaryByConversationID(ctx context.Context, conversationID uuid.UUID) (*entities.Summary, error)

	// DeleteSummaryByConversationID deletes a conversation's summary
	DeleteSummaryByConversationID(ctx context.Context, conversationID uuid.UUID) error
}
