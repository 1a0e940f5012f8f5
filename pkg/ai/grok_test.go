package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LakshmanTurlapati/LinkLess/pkg/config"
)

func grokServer(t *testing.T, handler http.HandlerFunc) (*GrokProvider, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	provider := NewGrokProvider(&config.GrokConfig{
		APIKey:  "test-key",
		BaseURL: ts.URL,
	})
	return provider, ts
}

func TestGrokSummarize_Success(t *testing.T) {
	provider, ts := grokServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected Authorization header %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("expected system+user messages, got %d", len(req.Messages))
		}

		content := `{"summary": "You caught up about the trip.", "topics": ["trip", "flights"]}`
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	})
	defer ts.Close()

	result, err := provider.Summarize(context.Background(), "long enough transcript")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary != "You caught up about the trip." {
		t.Fatalf("unexpected summary %q", result.Summary)
	}
	if len(result.KeyTopics) != 2 {
		t.Fatalf("unexpected topics %v", result.KeyTopics)
	}
	if result.Provider != "grok" {
		t.Fatalf("unexpected provider %q", result.Provider)
	}
}

func TestGrokSummarize_UnparsableBodyIsMalformed(t *testing.T) {
	provider, ts := grokServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("this is not json at all"))
	})
	defer ts.Close()

	_, err := provider.Summarize(context.Background(), "transcript")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGrokSummarize_UnparsableContentIsMalformed(t *testing.T) {
	provider, ts := grokServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Sure, here's what they said!"}},
			},
		})
	})
	defer ts.Close()

	_, err := provider.Summarize(context.Background(), "transcript")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGrokSummarize_ServerErrorIsNotMalformed(t *testing.T) {
	provider, ts := grokServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer ts.Close()

	_, err := provider.Summarize(context.Background(), "transcript")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("HTTP status failure must stay retryable, got %v", err)
	}
}

func TestGrokSummarize_NetworkErrorIsNotMalformed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	provider := NewGrokProvider(&config.GrokConfig{APIKey: "k", BaseURL: ts.URL})
	_, err := provider.Summarize(context.Background(), "transcript")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("transport failure must stay retryable, got %v", err)
	}
}
