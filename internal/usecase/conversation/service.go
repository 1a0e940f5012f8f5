package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
	"github.com/LakshmanTurlapati/LinkLess/internal/domain/repositories"
	"github.com/LakshmanTurlapati/LinkLess/internal/infrastructure/queue"
)

var (
	// ErrConversationNotFound is returned when the conversation does not
	// exist or belongs to another user.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrNotAwaitingUpload is returned when confirm-upload is called on a
	// conversation that is past pending.
	ErrNotAwaitingUpload = errors.New("conversation is not awaiting upload confirmation")

	// ErrNotRetryable is returned when force-retry is called on a
	// conversation that is not in a terminal failure status.
	ErrNotRetryable = errors.New("conversation is not in a failed status")

	// ErrRetryInFlight is returned when a force-retry job for this
	// conversation is already queued or running.
	ErrRetryInFlight = errors.New("a retry is already in flight for this conversation")
)

// Detail bundles a conversation with whatever artifacts exist for it.
type Detail struct {
	Conversation *entities.Conversation
	Transcript   *entities.Transcript
	Summary      *entities.Summary
}

// CreateOutput carries the new conversation and the presigned URL the
// client uploads audio to.
type CreateOutput struct {
	Conversation *entities.Conversation
	UploadURL    string
}

// Service defines the interface for conversation use case
type Service interface {
	// CreateConversation creates a pending conversation and issues an
	// upload URL for its audio object
	CreateConversation(ctx context.Context, userID uuid.UUID, peerUserID *uuid.UUID) (*CreateOutput, error)

	// ConfirmUpload marks the audio as uploaded and enqueues transcription
	ConfirmUpload(ctx context.Context, conversationID, userID uuid.UUID) (*entities.Conversation, error)

	// GetConversation retrieves a conversation with its artifacts
	GetConversation(ctx context.Context, conversationID, userID uuid.UUID) (*Detail, error)

	// ListConversations retrieves a user's conversations newest first
	ListConversations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entities.Conversation, int64, error)

	// ForceRetry resets a failed conversation and re-enqueues the failed
	// stage with a deduplicated job ID
	ForceRetry(ctx context.Context, conversationID, userID uuid.UUID) (*entities.Conversation, error)
}

// StatusStore is the guarded status-write surface the service needs.
// Implemented by repository.PipelineStore.
type StatusStore interface {
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entities.ConversationStatus) (bool, error)
	ResetForRetry(ctx context.Context, id uuid.UUID, from, to entities.ConversationStatus) (bool, error)
	DeleteTranscript(ctx context.Context, conversationID uuid.UUID) error
	DeleteSummary(ctx context.Context, conversationID uuid.UUID) error
}

// JobQueue is the queue surface the service needs.
type JobQueue interface {
	Enqueue(ctx context.Context, job queue.Job) error
	InFlight(ctx context.Context, jobID string) (bool, error)
}

// UploadSigner issues presigned upload URLs for audio objects.
type UploadSigner interface {
	UploadURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

type service struct {
	conversations repositories.ConversationRepository
	transcripts   repositories.TranscriptRepository
	summaries     repositories.SummaryRepository
	store         StatusStore
	queue         JobQueue
	storage       UploadSigner
	uploadTTL     time.Duration
	logger        *zap.Logger
}

// NewService creates a new conversation service
func NewService(
	conversations repositories.ConversationRepository,
	transcripts repositories.TranscriptRepository,
	summaries repositories.SummaryRepository,
	store StatusStore,
	jobQueue JobQueue,
	storage UploadSigner,
	uploadTTL time.Duration,
	logger *zap.Logger,
) Service {
	return &service{
		conversations: conversations,
		transcripts:   transcripts,
		summaries:     summaries,
		store:         store,
		queue:         jobQueue,
		storage:       storage,
		uploadTTL:     uploadTTL,
		logger:        logger,
	}
}

func (s *service) CreateConversation(ctx context.Context, userID uuid.UUID, peerUserID *uuid.UUID) (*CreateOutput, error) {
	conversation := entities.NewConversation(userID, "")
	conversation.PeerUserID = peerUserID
	conversation.AudioStorageKey = fmt.Sprintf("conversations/%s.m4a", conversation.ID)

	uploadURL, err := s.storage.UploadURL(ctx, conversation.AudioStorageKey, s.uploadTTL)
	if err != nil {
		return nil, fmt.Errorf("issue upload URL: %w", err)
	}
	if err := s.conversations.CreateConversation(ctx, conversation); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	s.logger.Info("conversation created",
		zap.String("conversation_id", conversation.ID.String()),
		zap.String("user_id", userID.String()))

	return &CreateOutput{Conversation: conversation, UploadURL: uploadURL}, nil
}

func (s *service) ConfirmUpload(ctx context.Context, conversationID, userID uuid.UUID) (*entities.Conversation, error) {
	conversation, err := s.ownedConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if conversation.Status != entities.ConversationStatusPending {
		return nil, ErrNotAwaitingUpload
	}

	moved, err := s.store.TransitionStatus(ctx, conversationID,
		entities.ConversationStatusPending, entities.ConversationStatusUploaded)
	if err != nil {
		return nil, fmt.Errorf("confirm upload: %w", err)
	}
	if !moved {
		return nil, ErrNotAwaitingUpload
	}
	conversation.Status = entities.ConversationStatusUploaded

	// The enqueue is best-effort; a failure here leaves the conversation
	// uploaded, where a force-retry or a re-submitted job picks it up.
	job := queue.Job{Stage: queue.StageTranscription, ConversationID: conversationID}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Error("failed to enqueue transcription job",
			zap.String("conversation_id", conversationID.String()),
			zap.Error(err))
	}
	return conversation, nil
}

func (s *service) GetConversation(ctx context.Context, conversationID, userID uuid.UUID) (*Detail, error) {
	conversation, err := s.ownedConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Conversation: conversation}
	if detail.Transcript, err = s.transcripts.GetTranscriptByConversationID(ctx, conversationID); err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	if detail.Summary, err = s.summaries.GetSummaryByConversationID(ctx, conversationID); err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}
	return detail, nil
}

func (s *service) ListConversations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entities.Conversation, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.conversations.ListConversationsByUser(ctx, userID, limit, offset)
}

// retryJobID deduplicates concurrent force-retry submissions per
// conversation.
func retryJobID(conversationID uuid.UUID) string {
	return "retranscribe:" + conversationID.String()
}

func (s *service) ForceRetry(ctx context.Context, conversationID, userID uuid.UUID) (*entities.Conversation, error) {
	conversation, err := s.ownedConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	var (
		resetTo entities.ConversationStatus
		stage   queue.Stage
	)
	switch conversation.Status {
	case entities.ConversationStatusFailed:
		resetTo = entities.ConversationStatusUploaded
		stage = queue.StageTranscription
	case entities.ConversationStatusSummarizationFailed:
		resetTo = entities.ConversationStatusTranscribed
		stage = queue.StageSummarization
	default:
		return nil, ErrNotRetryable
	}

	jobID := retryJobID(conversationID)
	inFlight, err := s.queue.InFlight(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("check in-flight retry: %w", err)
	}
	if inFlight {
		return nil, ErrRetryInFlight
	}

	// A full re-run discards stale artifacts; a summarization-only retry
	// keeps the transcript.
	if stage == queue.StageTranscription {
		if err := s.store.DeleteTranscript(ctx, conversationID); err != nil {
			return nil, fmt.Errorf("clear transcript: %w", err)
		}
	}
	if err := s.store.DeleteSummary(ctx, conversationID); err != nil {
		return nil, fmt.Errorf("clear summary: %w", err)
	}

	moved, err := s.store.ResetForRetry(ctx, conversationID, conversation.Status, resetTo)
	if err != nil {
		return nil, fmt.Errorf("reset conversation: %w", err)
	}
	if !moved {
		return nil, ErrNotRetryable
	}
	conversation.Status = resetTo
	conversation.ErrorDetail = nil

	job := queue.Job{ID: jobID, Stage: stage, ConversationID: conversationID}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		if errors.Is(err, queue.ErrDuplicateJob) {
			return nil, ErrRetryInFlight
		}
		return nil, fmt.Errorf("enqueue retry: %w", err)
	}

	s.logger.Info("conversation re-enqueued",
		zap.String("conversation_id", conversationID.String()),
		zap.String("stage", string(stage)))
	return conversation, nil
}

func (s *service) ownedConversation(ctx context.Context, conversationID, userID uuid.UUID) (*entities.Conversation, error) {
	conversation, err := s.conversations.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conversation == nil || conversation.UserID != userID {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}
