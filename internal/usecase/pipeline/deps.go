package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
	"github.com/LakshmanTurlapati/LinkLess/internal/infrastructure/queue"
	"github.com/LakshmanTurlapati/LinkLess/pkg/ai"
)

// Store is the persistence surface the stages need. Implemented by
// repository.PipelineStore; tests substitute an in-memory fake.
type Store interface {
	GetConversation(ctx context.Context, id uuid.UUID) (*entities.Conversation, error)
	GetTranscript(ctx context.Context, conversationID uuid.UUID) (*entities.Transcript, error)
	GetSummary(ctx context.Context, conversationID uuid.UUID) (*entities.Summary, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entities.ConversationStatus) (bool, error)
	CreateTranscriptAndTransition(ctx context.Context, transcript *entities.Transcript, from, to entities.ConversationStatus) error
	CreateSummaryAndTransition(ctx context.Context, summary *entities.Summary, from, to entities.ConversationStatus) error
	MarkStageFailed(ctx context.Context, id uuid.UUID, status entities.ConversationStatus, detail string) error
}

// Enqueuer submits follow-up jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
	EnqueueIn(ctx context.Context, job queue.Job, delay time.Duration) error
}

// URLSigner issues time-limited download URLs for stored audio objects.
type URLSigner interface {
	DownloadURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

// AudioPreparer fetches and validates an audio object, returning bytes
// ready to hand to a transcription provider.
type AudioPreparer interface {
	Prepare(ctx context.Context, url string) ([]byte, error)
}

// Deps carries every collaborator a stage needs. It is built once at
// worker startup and passed by reference; nothing is pulled from ambient
// state inside a job.
type Deps struct {
	Store         Store
	Queue         Enqueuer
	Storage       URLSigner
	Audio         AudioPreparer
	Transcription *ai.FallbackChain[ai.Transcriber]
	Summarization *ai.FallbackChain[ai.Summarizer]

	TranscriptionRetry RetryPolicy
	SummarizationRetry RetryPolicy

	DownloadTTL     time.Duration
	MinSummaryWords int

	Logger *zap.Logger
}
