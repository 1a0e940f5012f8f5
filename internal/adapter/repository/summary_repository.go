package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
)

// SummaryRepository handles summary data operations
type SummaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// CreateSummary creates a new summary. A second summary for the same
// conversation returns entities.ErrAlreadyExists.
func (r *SummaryRepository) CreateSummary(ctx context.Context, summary *entities.Summary) error {
	if summary == nil {
		return errors.New("summary cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(summary).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return entities.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetSummaryByConversationID retrieves a summary by conversation ID
func (r *SummaryRepository) GetSummaryByConversationID(ctx context.Context, conversationID uuid.UUID) (*entities.Summary, error) {
	var summary entities.Summary
	if err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&summary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

// DeleteSummaryByConversationID deletes a conversation's summary
func (r *SummaryRepository) DeleteSummaryByConversationID(ctx context.Context, conversationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&entities.Summary{}).Error
}
