package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
	conversationUsecase "github.com/LakshmanTurlapati/LinkLess/internal/usecase/conversation"
	pkgvalidator "github.com/LakshmanTurlapati/LinkLess/pkg/validator"
)

// fakeService returns canned results per method.
type fakeService struct {
	createOutput *conversationUsecase.CreateOutput
	conversation *entities.Conversation
	detail       *conversationUsecase.Detail
	err          error
}

func (s *fakeService) CreateConversation(_ context.Context, _ uuid.UUID, _ *uuid.UUID) (*conversationUsecase.CreateOutput, error) {
	return s.createOutput, s.err
}

func (s *fakeService) ConfirmUpload(_ context.Context, _, _ uuid.UUID) (*entities.Conversation, error) {
	return s.conversation, s.err
}

func (s *fakeService) GetConversation(_ context.Context, _, _ uuid.UUID) (*conversationUsecase.Detail, error) {
	return s.detail, s.err
}

func (s *fakeService) ListConversations(_ context.Context, _ uuid.UUID, _, _ int) ([]entities.Conversation, int64, error) {
	return nil, 0, s.err
}

func (s *fakeService) ForceRetry(_ context.Context, _, _ uuid.UUID) (*entities.Conversation, error) {
	return s.conversation, s.err
}

func newTestContext(t *testing.T, method, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = pkgvalidator.New()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

func TestCreateConversationHandler(t *testing.T) {
	userID := uuid.New()
	conv := entities.NewConversation(userID, "conversations/x.m4a")
	h := NewConversationHandler(&fakeService{
		createOutput: &conversationUsecase.CreateOutput{
			Conversation: conv,
			UploadURL:    "https://storage.example/upload",
		},
	}, zap.NewNop())

	c, rec := newTestContext(t, http.MethodPost, "/v1/conversations", `{}`)
	c.Set("user_id", userID)

	if err := h.CreateConversation(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["upload_url"] != "https://storage.example/upload" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestCreateConversationRejectsBadPeerID(t *testing.T) {
	h := NewConversationHandler(&fakeService{}, zap.NewNop())

	c, rec := newTestContext(t, http.MethodPost, "/v1/conversations", `{"peer_user_id":"not-a-uuid"}`)
	c.Set("user_id", uuid.New())

	if err := h.CreateConversation(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateConversationUnauthenticated(t *testing.T) {
	h := NewConversationHandler(&fakeService{}, zap.NewNop())

	c, rec := newTestContext(t, http.MethodPost, "/v1/conversations", `{}`)

	if err := h.CreateConversation(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		want string
	}{
		{"not found", conversationUsecase.ErrConversationNotFound, http.StatusNotFound, "conversation_not_found"},
		{"not awaiting upload", conversationUsecase.ErrNotAwaitingUpload, http.StatusConflict, "not_awaiting_upload"},
		{"not retryable", conversationUsecase.ErrNotRetryable, http.StatusBadRequest, "not_retryable"},
		{"retry in flight", conversationUsecase.ErrRetryInFlight, http.StatusConflict, "retry_in_flight"},
	}

	conversationID := uuid.New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewConversationHandler(&fakeService{err: tc.err}, zap.NewNop())

			c, rec := newTestContext(t, http.MethodPost, "/v1/conversations/"+conversationID.String()+"/retranscribe", "")
			c.SetParamNames("id")
			c.SetParamValues(conversationID.String())
			c.Set("user_id", uuid.New())

			if err := h.Retranscribe(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if body := decodeBody(t, rec); body["error"] != tc.want {
				t.Fatalf("expected error code %q, got %v", tc.want, body["error"])
			}
		})
	}
}

func TestRetranscribeAccepted(t *testing.T) {
	userID := uuid.New()
	conv := entities.NewConversation(userID, "conversations/x.m4a")
	conv.Status = entities.ConversationStatusUploaded
	h := NewConversationHandler(&fakeService{conversation: conv}, zap.NewNop())

	c, rec := newTestContext(t, http.MethodPost, "/v1/conversations/"+conv.ID.String()+"/retranscribe", "")
	c.SetParamNames("id")
	c.SetParamValues(conv.ID.String())
	c.Set("user_id", userID)

	if err := h.Retranscribe(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
}

func TestPathUUIDRejected(t *testing.T) {
	h := NewConversationHandler(&fakeService{}, zap.NewNop())

	c, _ := newTestContext(t, http.MethodGet, "/v1/conversations/nope", "")
	c.SetParamNames("id")
	c.SetParamValues("nope")
	c.Set("user_id", uuid.New())

	err := h.GetConversation(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", httpErr.Code)
	}
}

func TestUserIdentityMiddleware(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	mw := UserIdentity()(next)

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
		rec := httptest.NewRecorder()
		if err := mw(e.NewContext(req, rec)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("bad header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
		req.Header.Set("X-User-ID", "not-a-uuid")
		rec := httptest.NewRecorder()
		if err := mw(e.NewContext(req, rec)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("valid header", func(t *testing.T) {
		userID := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
		req.Header.Set("X-User-ID", userID.String())
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got, ok := c.Get("user_id").(uuid.UUID); !ok || got != userID {
			t.Fatalf("expected user_id %s on context, got %v", userID, c.Get("user_id"))
		}
	})
}
