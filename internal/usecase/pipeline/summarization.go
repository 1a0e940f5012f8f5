package pipeline

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
	"github.com/LakshmanTurlapati/LinkLess/pkg/ai"
)

const (
	// placeholderShort is stored when the transcript is too short to be
	// worth a model call.
	placeholderShort = "Brief or empty conversation"
	// placeholderFailed is stored when the provider answered but its
	// output could not be parsed.
	placeholderFailed = "Summary generation failed"

	placeholderProvider = "none"

	summarizationErrorPrefix = "Summarization: "
	summarizationDetailLimit = 480
)

// RunSummarization executes one summarization attempt for a conversation.
func (d *Deps) RunSummarization(ctx context.Context, conversationID uuid.UUID, attempt int) Decision {
	log := d.Logger.With(
		zap.String("stage", "summarization"),
		zap.String("conversation_id", conversationID.String()),
		zap.Int("attempt", attempt),
	)

	existing, err := d.Store.GetSummary(ctx, conversationID)
	if err != nil {
		return d.failSummarization(ctx, log, conversationID, attempt, err)
	}
	if existing != nil {
		log.Info("summary already exists, skipping")
		return Success()
	}

	conversation, err := d.Store.GetConversation(ctx, conversationID)
	if err != nil {
		return d.failSummarization(ctx, log, conversationID, attempt, err)
	}
	if conversation == nil {
		log.Warn("conversation not found, skipping")
		return Success()
	}
	if conversation.Status != entities.ConversationStatusTranscribed &&
		conversation.Status != entities.ConversationStatusSummarizing {
		log.Info("conversation not awaiting summarization, skipping",
			zap.String("status", string(conversation.Status)))
		return Success()
	}

	transcript, err := d.Store.GetTranscript(ctx, conversationID)
	if err != nil {
		return d.failSummarization(ctx, log, conversationID, attempt, err)
	}
	if transcript == nil {
		// There is nothing to retry against; the predecessor stage has
		// not stored its artifact.
		log.Warn("transcript missing, skipping")
		return Success()
	}

	if conversation.Status == entities.ConversationStatusTranscribed {
		claimed, err := d.Store.TransitionStatus(ctx, conversationID,
			entities.ConversationStatusTranscribed, entities.ConversationStatusSummarizing)
		if err != nil {
			return d.failSummarization(ctx, log, conversationID, attempt, err)
		}
		if !claimed {
			log.Info("conversation claimed by another worker, skipping")
			return Success()
		}
	}

	if transcript.WordCount < d.MinSummaryWords {
		log.Info("transcript below minimum word count, storing placeholder",
			zap.Int("word_count", transcript.WordCount))
		return d.storeSummary(ctx, log, conversationID, attempt,
			placeholderShort, nil, placeholderProvider)
	}

	result, provider, err := ai.Execute(ctx, d.Summarization,
		func(ctx context.Context, s ai.Summarizer) (*ai.SummaryResult, error) {
			return s.Summarize(ctx, transcript.Content)
		})
	if err != nil {
		// A response the provider delivered but we cannot parse will
		// not get better on retry; resolve it with a placeholder and
		// move the conversation forward.
		if errors.Is(err, ai.ErrMalformedResponse) {
			log.Warn("provider returned an unparsable summary, storing placeholder", zap.Error(err))
			return d.storeSummary(ctx, log, conversationID, attempt,
				placeholderFailed, nil, placeholderProvider)
		}
		log.Warn("summarization attempt failed", zap.Error(err))
		return d.failSummarization(ctx, log, conversationID, attempt, err)
	}

	return d.storeSummary(ctx, log, conversationID, attempt,
		result.Summary, result.KeyTopics, provider)
}

func (d *Deps) storeSummary(ctx context.Context, log *zap.Logger, conversationID uuid.UUID, attempt int, content string, topics []string, provider string) Decision {
	summary := entities.NewSummary(conversationID)
	summary.Content = content
	summary.Provider = provider
	if topics != nil {
		summary.KeyTopics = datatypes.JSONSlice[string](topics)
	}

	err := d.Store.CreateSummaryAndTransition(ctx, summary,
		entities.ConversationStatusSummarizing, entities.ConversationStatusCompleted)
	switch {
	case errors.Is(err, entities.ErrAlreadyExists):
		log.Info("summary written by a concurrent worker, skipping")
		return Success()
	case errors.Is(err, entities.ErrIllegalTransition):
		log.Warn("conversation moved on before summary commit, skipping")
		return Success()
	case err != nil:
		return d.failSummarization(ctx, log, conversationID, attempt, err)
	}

	log.Info("summarization completed", zap.String("provider", provider))
	return Success()
}

func (d *Deps) failSummarization(ctx context.Context, log *zap.Logger, conversationID uuid.UUID, attempt int, cause error) Decision {
	if !d.SummarizationRetry.Exhausted(attempt) {
		return RetryAfter(d.SummarizationRetry.Delay)
	}

	msg := cause.Error()
	if len(msg) > summarizationDetailLimit {
		cut := summarizationDetailLimit
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	wctx := context.WithoutCancel(ctx)
	if err := d.Store.MarkStageFailed(wctx, conversationID,
		entities.ConversationStatusSummarizationFailed, summarizationErrorPrefix+msg); err != nil {
		log.Error("failed to record terminal summarization failure", zap.Error(err))
	}
	log.Error("summarization failed permanently", zap.Error(cause))
	return TerminalFailure(cause)
}
