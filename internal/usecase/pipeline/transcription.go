package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
	"github.com/LakshmanTurlapati/LinkLess/internal/infrastructure/queue"
	"github.com/LakshmanTurlapati/LinkLess/pkg/ai"
)

// RunTranscription executes one transcription attempt for a conversation.
// The returned Decision tells the worker runtime whether to ack, retry
// after a delay, or record a terminal failure.
func (d *Deps) RunTranscription(ctx context.Context, conversationID uuid.UUID, attempt int) Decision {
	log := d.Logger.With(
		zap.String("stage", "transcription"),
		zap.String("conversation_id", conversationID.String()),
		zap.Int("attempt", attempt),
	)

	// A transcript already on disk means a duplicate delivery; nothing
	// left to do.
	existing, err := d.Store.GetTranscript(ctx, conversationID)
	if err != nil {
		return d.failTranscription(ctx, log, conversationID, attempt, err)
	}
	if existing != nil {
		log.Info("transcript already exists, skipping")
		return Success()
	}

	conversation, err := d.Store.GetConversation(ctx, conversationID)
	if err != nil {
		return d.failTranscription(ctx, log, conversationID, attempt, err)
	}
	if conversation == nil {
		log.Warn("conversation not found, skipping")
		return Success()
	}
	if conversation.Status != entities.ConversationStatusUploaded &&
		conversation.Status != entities.ConversationStatusTranscribing {
		log.Info("conversation not awaiting transcription, skipping",
			zap.String("status", string(conversation.Status)))
		return Success()
	}

	// Claim the conversation before doing any work so progress is
	// visible and a competing worker loses cleanly.
	if conversation.Status == entities.ConversationStatusUploaded {
		claimed, err := d.Store.TransitionStatus(ctx, conversationID,
			entities.ConversationStatusUploaded, entities.ConversationStatusTranscribing)
		if err != nil {
			return d.failTranscription(ctx, log, conversationID, attempt, err)
		}
		if !claimed {
			log.Info("conversation claimed by another worker, skipping")
			return Success()
		}
	}

	result, err := d.transcribe(ctx, conversation)
	if err != nil {
		log.Warn("transcription attempt failed", zap.Error(err))
		return d.failTranscription(ctx, log, conversationID, attempt, err)
	}

	transcript := entities.NewTranscript(conversationID)
	transcript.Content = result.FullText
	transcript.Provider = result.Provider
	transcript.WordCount = result.WordCount
	if result.Language != "" {
		transcript.Language = result.Language
	}
	transcript.Utterances = datatypes.JSONSlice[entities.Utterance](toEntityUtterances(result.Utterances))

	err = d.Store.CreateTranscriptAndTransition(ctx, transcript,
		entities.ConversationStatusTranscribing, entities.ConversationStatusTranscribed)
	switch {
	case errors.Is(err, entities.ErrAlreadyExists):
		log.Info("transcript written by a concurrent worker, skipping")
		return Success()
	case errors.Is(err, entities.ErrIllegalTransition):
		log.Warn("conversation moved on before transcript commit, skipping")
		return Success()
	case err != nil:
		return d.failTranscription(ctx, log, conversationID, attempt, err)
	}

	log.Info("transcription completed",
		zap.String("provider", result.Provider),
		zap.Int("word_count", result.WordCount))

	// Enqueued strictly after the commit above so summarization always
	// observes a stored transcript.
	job := queue.Job{Stage: queue.StageSummarization, ConversationID: conversationID}
	if err := d.Queue.Enqueue(ctx, job); err != nil {
		log.Error("failed to enqueue summarization job", zap.Error(err))
	}
	return Success()
}

// transcribe resolves the audio to bytes and runs the provider chain.
func (d *Deps) transcribe(ctx context.Context, conversation *entities.Conversation) (*ai.TranscriptionResult, error) {
	url, err := d.Storage.DownloadURL(ctx, conversation.AudioStorageKey, d.DownloadTTL)
	if err != nil {
		return nil, err
	}
	audio, err := d.Audio.Prepare(ctx, url)
	if err != nil {
		return nil, err
	}
	result, provider, err := ai.Execute(ctx, d.Transcription,
		func(ctx context.Context, t ai.Transcriber) (*ai.TranscriptionResult, error) {
			return t.Transcribe(ctx, audio)
		})
	if err != nil {
		return nil, err
	}
	result.Provider = provider
	return result, nil
}

// failTranscription routes an attempt error through the retry policy. On
// the last attempt it records the terminal status first, on a context
// detached from the attempt so the write survives the job deadline.
func (d *Deps) failTranscription(ctx context.Context, log *zap.Logger, conversationID uuid.UUID, attempt int, cause error) Decision {
	if !d.TranscriptionRetry.Exhausted(attempt) {
		return RetryAfter(d.TranscriptionRetry.Delay)
	}

	wctx := context.WithoutCancel(ctx)
	if err := d.Store.MarkStageFailed(wctx, conversationID,
		entities.ConversationStatusFailed, cause.Error()); err != nil {
		log.Error("failed to record terminal transcription failure", zap.Error(err))
	}
	log.Error("transcription failed permanently", zap.Error(cause))
	return TerminalFailure(cause)
}

func toEntityUtterances(in []ai.Utterance) []entities.Utterance {
	if len(in) == 0 {
		return nil
	}
	out := make([]entities.Utterance, len(in))
	for i, u := range in {
		out[i] = entities.Utterance{
			Speaker:    u.Speaker,
			Text:       u.Text,
			Start:      u.Start,
			End:        u.End,
			Confidence: u.Confidence,
		}
	}
	return out
}
