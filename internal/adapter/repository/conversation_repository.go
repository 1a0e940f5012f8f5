package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
)

// ConversationRepository handles conversation data operations
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// CreateConversation creates a new conversation
func (r *ConversationRepository) CreateConversation(ctx context.Context, conversation *entities.Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return entities.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetConversationByID retrieves a conversation by ID
func (r *ConversationRepository) GetConversationByID(ctx context.Context, id uuid.UUID) (*entities.Conversation, error) {
	var conversation entities.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// ListConversationsByUser retrieves a user's conversations newest first
func (r *ConversationRepository) ListConversationsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entities.Conversation, int64, error) {
	var conversations []entities.Conversation
	var total int64

	base := r.db.WithContext(ctx).Model(&entities.Conversation{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := base.Order("created_at DESC").Limit(limit).Offset(offset).Find(&conversations).Error; err != nil {
		return nil, 0, err
	}
	return conversations, total, nil
}

// ListConversationsByStatus retrieves conversations currently in the given
// statuses, oldest first. Used by the stuck-status reporter.
func (r *ConversationRepository) ListConversationsByStatus(ctx context.Context, statuses []entities.ConversationStatus, limit int) ([]entities.Conversation, error) {
	var conversations []entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("updated_at ASC").
		Limit(limit).
		Find(&conversations).Error; err != nil {
		return nil, err
	}
	return conversations, nil
}

// UpdateConversation updates a conversation
func (r *ConversationRepository) UpdateConversation(ctx context.Context, conversation *entities.Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}
	return r.db.WithContext(ctx).Save(conversation).Error
}
