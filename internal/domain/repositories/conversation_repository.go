package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
)

// ConversationRepository defines the interface for conversation data access
type ConversationRepository interface {
	// CreateConversation creates a new conversation
	CreateConversation(ctx context.Context, conversation *entities.Conversation) error

	// GetConversationByID retrieves a conversation by its ID
	GetConversationByID(ctx context.Context, id uuid.UUID) (*entities.Conversation, error)

	// ListConversationsByUser retrieves a user's conversations newest first
	ListConversationsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entities.Conversation, int64, error)

	// ListConversationsByStatus retrieves conversations in the given statuses
	ListConversationsByStatus(ctx context.Context, statuses []entities.ConversationStatus, limit int) ([]entities.Conversation, error)

	// UpdateConversation updates an existing conversation
	UpdateConversation(ctx context.Context, conversation *entities.Conversation) error
}
