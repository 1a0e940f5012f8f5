package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
)

// TranscriptRepository defines the interface for transcript data access
type TranscriptRepository interface {
	// CreateTranscript creates a new transcript
	CreateTranscript(ctx context.Context, transcript *entities.Transcript) error

	// GetTranscriptByConversationID retrieves a conversation's transcript
	GetTranscriptByConversationID(ctx context.Context, conversationID uuid.UUID) (*entities.Transcript, error)

	// DeleteTranscriptByConversationID deletes a conversation's transcript
	DeleteTranscriptByConversationID(ctx context.Context, conversationID uuid.UUID) error
}
