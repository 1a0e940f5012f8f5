package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
)

// PipelineStore persists pipeline stage effects. Every status write is
// guarded by the expected predecessor status so duplicate or stale job
// deliveries cannot move a conversation backwards.
type PipelineStore struct {
	db *gorm.DB
}

// NewPipelineStore creates a new pipeline store
func NewPipelineStore(db *gorm.DB) *PipelineStore {
	return &PipelineStore{db: db}
}

// GetConversation retrieves a conversation by ID
func (s *PipelineStore) GetConversation(ctx context.Context, id uuid.UUID) (*entities.Conversation, error) {
	var conversation entities.Conversation
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// GetTranscript retrieves a transcript by conversation ID
func (s *PipelineStore) GetTranscript(ctx context.Context, conversationID uuid.UUID) (*entities.Transcript, error) {
	var transcript entities.Transcript
	if err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&transcript).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transcript, nil
}

// GetSummary retrieves a summary by conversation ID
func (s *PipelineStore) GetSummary(ctx context.Context, conversationID uuid.UUID) (*entities.Summary, error) {
	var summary entities.Summary
	if err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&summary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

// TransitionStatus moves a conversation from one status to another.
// Returns false without error when the row is not in the expected
// predecessor status, which is how a competing worker loses the claim.
func (s *PipelineStore) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entities.ConversationStatus) (bool, error) {
	if !entities.CanTransition(from, to) {
		return false, entities.ErrIllegalTransition
	}
	res := s.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CreateTranscriptAndTransition stores a transcript and advances the
// conversation in one transaction. Either both happen or neither does. A
// duplicate transcript returns entities.ErrAlreadyExists; a conversation
// no longer in the expected status returns entities.ErrIllegalTransition.
func (s *PipelineStore) CreateTranscriptAndTransition(ctx context.Context, transcript *entities.Transcript, from, to entities.ConversationStatus) error {
	if transcript == nil {
		return errors.New("transcript cannot be nil")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transcript).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return entities.ErrAlreadyExists
			}
			return err
		}
		return advanceStatus(tx, transcript.ConversationID, from, to)
	})
}

// CreateSummaryAndTransition stores a summary and advances the
// conversation in one transaction, with the same error contract as
// CreateTranscriptAndTransition.
func (s *PipelineStore) CreateSummaryAndTransition(ctx context.Context, summary *entities.Summary, from, to entities.ConversationStatus) error {
	if summary == nil {
		return errors.New("summary cannot be nil")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(summary).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return entities.ErrAlreadyExists
			}
			return err
		}
		return advanceStatus(tx, summary.ConversationID, from, to)
	})
}

func advanceStatus(tx *gorm.DB, id uuid.UUID, from, to entities.ConversationStatus) error {
	res := tx.Model(&entities.Conversation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entities.ErrIllegalTransition
	}
	return nil
}

// MarkStageFailed records a terminal stage failure with a truncated error
// detail. The write is guarded by the in-progress predecessor status, so a
// worker that lost its claim to a concurrently succeeding delivery cannot
// overwrite the winner's result; losing the guard is a no-op.
func (s *PipelineStore) MarkStageFailed(ctx context.Context, id uuid.UUID, status entities.ConversationStatus, detail string) error {
	var from entities.ConversationStatus
	switch status {
	case entities.ConversationStatusFailed:
		from = entities.ConversationStatusTranscribing
	case entities.ConversationStatusSummarizationFailed:
		from = entities.ConversationStatusSummarizing
	default:
		return entities.ErrIllegalTransition
	}

	truncated := entities.TruncateErrorDetail(detail)
	return s.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":       status,
			"error_detail": truncated,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// ResetForRetry moves a failed conversation back to a runnable status and
// clears its error detail. Returns false when the conversation is not in
// the expected failed status.
func (s *PipelineStore) ResetForRetry(ctx context.Context, id uuid.UUID, from, to entities.ConversationStatus) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":       to,
			"error_detail": nil,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteTranscript removes a conversation's transcript ahead of a forced
// re-run of the transcription stage.
func (s *PipelineStore) DeleteTranscript(ctx context.Context, conversationID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&entities.Transcript{}).Error
}

// DeleteSummary removes a conversation's summary ahead of a forced re-run
func (s *PipelineStore) DeleteSummary(ctx context.Context, conversationID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&entities.Summary{}).Error
}
