package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
)

// TranscriptRepository handles transcript data operations
type TranscriptRepository struct {
	db *gorm.DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// CreateTranscript creates a new transcript. A second transcript for the
// same conversation returns entities.ErrAlreadyExists.
func (r *TranscriptRepository) CreateTranscript(ctx context.Context, transcript *entities.Transcript) error {
	if transcript == nil {
		return errors.New("transcript cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(transcript).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return entities.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetTranscriptByConversationID retrieves a transcript by conversation ID
func (r *TranscriptRepository) GetTranscriptByConversationID(ctx context.Context, conversationID uuid.UUID) (*entities.Transcript, error) {
	var transcript entities.Transcript
	if err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&transcript).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transcript, nil
}

// DeleteTranscriptByConversationID deletes a conversation's transcript
func (r *TranscriptRepository) DeleteTranscriptByConversationID(ctx context.Context, conversationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&entities.Transcript{}).Error
}
