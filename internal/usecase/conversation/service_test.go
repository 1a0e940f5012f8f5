package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
	"github.com/LakshmanTurlapati/LinkLess/internal/infrastructure/queue"
)

type fakeConversationRepo struct {
	conversations map[uuid.UUID]*entities.Conversation
	createErr     error
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[uuid.UUID]*entities.Conversation)}
}

func (r *fakeConversationRepo) CreateConversation(_ context.Context, c *entities.Conversation) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.conversations[c.ID] = c
	return nil
}

func (r *fakeConversationRepo) GetConversationByID(_ context.Context, id uuid.UUID) (*entities.Conversation, error) {
	return r.conversations[id], nil
}

func (r *fakeConversationRepo) ListConversationsByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]entities.Conversation, int64, error) {
	var out []entities.Conversation
	for _, c := range r.conversations {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeConversationRepo) ListConversationsByStatus(_ context.Context, _ []entities.ConversationStatus, _ int) ([]entities.Conversation, error) {
	return nil, nil
}

func (r *fakeConversationRepo) UpdateConversation(_ context.Context, c *entities.Conversation) error {
	r.conversations[c.ID] = c
	return nil
}

type fakeTranscriptRepo struct {
	transcripts map[uuid.UUID]*entities.Transcript
}

func (r *fakeTranscriptRepo) CreateTranscript(_ context.Context, t *entities.Transcript) error {
	r.transcripts[t.ConversationID] = t
	return nil
}

func (r *fakeTranscriptRepo) GetTranscriptByConversationID(_ context.Context, id uuid.UUID) (*entities.Transcript, error) {
	return r.transcripts[id], nil
}

func (r *fakeTranscriptRepo) DeleteTranscriptByConversationID(_ context.Context, id uuid.UUID) error {
	delete(r.transcripts, id)
	return nil
}

type fakeSummaryRepo struct {
	summaries map[uuid.UUID]*entities.Summary
}

func (r *fakeSummaryRepo) CreateSummary(_ context.Context, s *entities.Summary) error {
	r.summaries[s.ConversationID] = s
	return nil
}

func (r *fakeSummaryRepo) GetSummaryByConversationID(_ context.Context, id uuid.UUID) (*entities.Summary, error) {
	return r.summaries[id], nil
}

func (r *fakeSummaryRepo) DeleteSummaryByConversationID(_ context.Context, id uuid.UUID) error {
	delete(r.summaries, id)
	return nil
}

// fakeStatusStore shares backing maps with the fake repositories so
// deletes through either surface are visible to both.
type fakeStatusStore struct {
	conversations map[uuid.UUID]*entities.Conversation
	transcripts   map[uuid.UUID]*entities.Transcript
	summaries     map[uuid.UUID]*entities.Summary

	transcriptDeletes int
	summaryDeletes    int
}

func (s *fakeStatusStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to entities.ConversationStatus) (bool, error) {
	c, ok := s.conversations[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (s *fakeStatusStore) ResetForRetry(_ context.Context, id uuid.UUID, from, to entities.ConversationStatus) (bool, error) {
	c, ok := s.conversations[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	c.ErrorDetail = nil
	return true, nil
}

func (s *fakeStatusStore) DeleteTranscript(_ context.Context, id uuid.UUID) error {
	delete(s.transcripts, id)
	s.transcriptDeletes++
	return nil
}

func (s *fakeStatusStore) DeleteSummary(_ context.Context, id uuid.UUID) error {
	delete(s.summaries, id)
	s.summaryDeletes++
	return nil
}

type fakeJobQueue struct {
	enqueued   []queue.Job
	inFlight   map[string]bool
	enqueueErr error
}

func (q *fakeJobQueue) Enqueue(_ context.Context, job queue.Job) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

func (q *fakeJobQueue) InFlight(_ context.Context, jobID string) (bool, error) {
	return q.inFlight[jobID], nil
}

type fakeUploadSigner struct{}

func (fakeUploadSigner) UploadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.example/upload/" + objectKey, nil
}

type serviceFixture struct {
	service       Service
	conversations *fakeConversationRepo
	transcripts   *fakeTranscriptRepo
	summaries     *fakeSummaryRepo
	store         *fakeStatusStore
	queue         *fakeJobQueue
}

func newFixture() *serviceFixture {
	conversations := newFakeConversationRepo()
	transcripts := &fakeTranscriptRepo{transcripts: make(map[uuid.UUID]*entities.Transcript)}
	summaries := &fakeSummaryRepo{summaries: make(map[uuid.UUID]*entities.Summary)}
	store := &fakeStatusStore{
		conversations: conversations.conversations,
		transcripts:   transcripts.transcripts,
		summaries:     summaries.summaries,
	}
	jobQueue := &fakeJobQueue{inFlight: make(map[string]bool)}

	svc := NewService(conversations, transcripts, summaries, store, jobQueue, fakeUploadSigner{}, 15*time.Minute, zap.NewNop())
	return &serviceFixture{
		service:       svc,
		conversations: conversations,
		transcripts:   transcripts,
		summaries:     summaries,
		store:         store,
		queue:         jobQueue,
	}
}

func (f *serviceFixture) seed(userID uuid.UUID, status entities.ConversationStatus) *entities.Conversation {
	c := entities.NewConversation(userID, "")
	c.AudioStorageKey = "conversations/" + c.ID.String() + ".m4a"
	c.Status = status
	f.conversations.conversations[c.ID] = c
	return c
}

func TestCreateConversation(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	out, err := f.service.CreateConversation(context.Background(), userID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Conversation.Status != entities.ConversationStatusPending {
		t.Fatalf("expected pending, got %s", out.Conversation.Status)
	}
	wantKey := "conversations/" + out.Conversation.ID.String() + ".m4a"
	if out.Conversation.AudioStorageKey != wantKey {
		t.Fatalf("unexpected storage key %q", out.Conversation.AudioStorageKey)
	}
	if !strings.Contains(out.UploadURL, wantKey) {
		t.Fatalf("upload URL must target the audio object, got %q", out.UploadURL)
	}
	if f.conversations.conversations[out.Conversation.ID] == nil {
		t.Fatal("conversation must be persisted")
	}
}

func TestConfirmUpload(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	c := f.seed(userID, entities.ConversationStatusPending)

	updated, err := f.service.ConfirmUpload(context.Background(), c.ID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != entities.ConversationStatusUploaded {
		t.Fatalf("expected uploaded, got %s", updated.Status)
	}
	if len(f.queue.enqueued) != 1 {
		t.Fatalf("expected one job, got %d", len(f.queue.enqueued))
	}
	job := f.queue.enqueued[0]
	if job.Stage != queue.StageTranscription || job.ConversationID != c.ID {
		t.Fatalf("unexpected job %+v", job)
	}
}

func TestConfirmUploadWrongStatus(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	c := f.seed(userID, entities.ConversationStatusTranscribed)

	_, err := f.service.ConfirmUpload(context.Background(), c.ID, userID)
	if !errors.Is(err, ErrNotAwaitingUpload) {
		t.Fatalf("expected ErrNotAwaitingUpload, got %v", err)
	}
	if len(f.queue.enqueued) != 0 {
		t.Fatal("no job may be enqueued")
	}
}

func TestConfirmUploadSurvivesEnqueueFailure(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	c := f.seed(userID, entities.ConversationStatusPending)
	f.queue.enqueueErr = errors.New("redis down")

	updated, err := f.service.ConfirmUpload(context.Background(), c.ID, userID)
	if err != nil {
		t.Fatalf("enqueue failure must not fail the confirm: %v", err)
	}
	if updated.Status != entities.ConversationStatusUploaded {
		t.Fatalf("expected uploaded, got %s", updated.Status)
	}
}

func TestGetConversationOwnership(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	c := f.seed(owner, entities.ConversationStatusCompleted)

	if _, err := f.service.GetConversation(context.Background(), c.ID, owner); err != nil {
		t.Fatalf("owner must see the conversation: %v", err)
	}
	if _, err := f.service.GetConversation(context.Background(), c.ID, uuid.New()); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("other users must get not-found, got %v", err)
	}
	if _, err := f.service.GetConversation(context.Background(), uuid.New(), owner); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("missing conversation must be not-found, got %v", err)
	}
}

func TestForceRetryTranscription(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	c := f.seed(userID, entities.ConversationStatusFailed)
	detail := "transcription: all providers failed"
	c.ErrorDetail = &detail
	f.transcripts.transcripts[c.ID] = entities.NewTranscript(c.ID)
	f.summaries.summaries[c.ID] = entities.NewSummary(c.ID)

	updated, err := f.service.ForceRetry(context.Background(), c.ID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != entities.ConversationStatusUploaded {
		t.Fatalf("expected uploaded, got %s", updated.Status)
	}
	if updated.ErrorDetail != nil {
		t.Fatal("error detail must be cleared")
	}
	if f.transcripts.transcripts[c.ID] != nil {
		t.Fatal("stale transcript must be cleared")
	}
	if f.summaries.summaries[c.ID] != nil {
		t.Fatal("stale summary must be cleared")
	}

	if len(f.queue.enqueued) != 1 {
		t.Fatalf("expected one job, got %d", len(f.queue.enqueued))
	}
	job := f.queue.enqueued[0]
	if job.Stage != queue.StageTranscription {
		t.Fatalf("unexpected stage %s", job.Stage)
	}
	if job.ID != "retranscribe:"+c.ID.String() {
		t.Fatalf("unexpected job ID %q", job.ID)
	}
}

func TestForceRetrySummarizationKeepsTranscript(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	c := f.seed(userID, entities.ConversationStatusSummarizationFailed)
	f.transcripts.transcripts[c.ID] = entities.NewTranscript(c.ID)

	updated, err := f.service.ForceRetry(context.Background(), c.ID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != entities.ConversationStatusTranscribed {
		t.Fatalf("expected transcribed, got %s", updated.Status)
	}
	if f.transcripts.transcripts[c.ID] == nil {
		t.Fatal("transcript must be kept for a summarization-only retry")
	}
	if f.store.transcriptDeletes != 0 {
		t.Fatal("transcript delete must not be called")
	}
	if f.queue.enqueued[0].Stage != queue.StageSummarization {
		t.Fatalf("unexpected stage %s", f.queue.enqueued[0].Stage)
	}
}

func TestForceRetryNonFailedStatus(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	for _, status := range []entities.ConversationStatus{
		entities.ConversationStatusPending,
		entities.ConversationStatusUploaded,
		entities.ConversationStatusTranscribing,
		entities.ConversationStatusCompleted,
	} {
		c := f.seed(userID, status)
		if _, err := f.service.ForceRetry(context.Background(), c.ID, userID); !errors.Is(err, ErrNotRetryable) {
			t.Fatalf("status %s: expected ErrNotRetryable, got %v", status, err)
		}
	}
	if len(f.queue.enqueued) != 0 {
		t.Fatal("no jobs may be enqueued")
	}
}

func TestForceRetryAlreadyInFlight(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	c := f.seed(userID, entities.ConversationStatusFailed)
	f.queue.inFlight["retranscribe:"+c.ID.String()] = true

	_, err := f.service.ForceRetry(context.Background(), c.ID, userID)
	if !errors.Is(err, ErrRetryInFlight) {
		t.Fatalf("expected ErrRetryInFlight, got %v", err)
	}
	if f.store.summaryDeletes != 0 {
		t.Fatal("artifacts must not be touched while a retry is in flight")
	}
}

func TestForceRetryDuplicateEnqueue(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	c := f.seed(userID, entities.ConversationStatusFailed)
	f.queue.enqueueErr = queue.ErrDuplicateJob

	_, err := f.service.ForceRetry(context.Background(), c.ID, userID)
	if !errors.Is(err, ErrRetryInFlight) {
		t.Fatalf("expected ErrRetryInFlight, got %v", err)
	}
}

func TestForceRetryOwnership(t *testing.T) {
	f := newFixture()
	c := f.seed(uuid.New(), entities.ConversationStatusFailed)

	_, err := f.service.ForceRetry(context.Background(), c.ID, uuid.New())
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestListConversationsClampsPaging(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	f.seed(userID, entities.ConversationStatusCompleted)

	conversations, total, err := f.service.ListConversations(context.Background(), userID, -5, -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(conversations) != 1 {
		t.Fatalf("expected the seeded conversation, got %d/%d", len(conversations), total)
	}
}
