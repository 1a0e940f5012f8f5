package ai

import (
	"errors"
	"testing"
)

func TestParseSummaryPayload(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantText   string
		wantTopics []string
		wantErr    bool
	}{
		{
			name:       "plain json",
			raw:        `{"summary": "You talked about lunch.", "topics": ["lunch", "plans"]}`,
			wantText:   "You talked about lunch.",
			wantTopics: []string{"lunch", "plans"},
		},
		{
			name:       "markdown fenced",
			raw:        "```json\n{\"summary\": \"Quick chat.\", \"topics\": [\"catch-up\"]}\n```",
			wantText:   "Quick chat.",
			wantTopics: []string{"catch-up"},
		},
		{
			name:       "topics capped at three",
			raw:        `{"summary": "s", "topics": ["a", "b", "c", "d", "e"]}`,
			wantText:   "s",
			wantTopics: []string{"a", "b", "c"},
		},
		{
			name:     "non-string topics stringified",
			raw:      `{"summary": "s", "topics": [1, 2]}`,
			wantText: "s",
			// Numbers survive as their literal text.
			wantTopics: []string{"1", "2"},
		},
		{
			name:    "not json",
			raw:     "Sure! Here's a summary of the conversation.",
			wantErr: true,
		},
		{
			name:    "empty object",
			raw:     `{}`,
			wantErr: true,
		},
		{
			name:    "empty summary",
			raw:     `{"summary": "  ", "topics": []}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, topics, err := parseSummaryPayload(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text != tt.wantText {
				t.Fatalf("expected summary %q, got %q", tt.wantText, text)
			}
			if len(topics) != len(tt.wantTopics) {
				t.Fatalf("expected topics %v, got %v", tt.wantTopics, topics)
			}
			for i := range topics {
				if topics[i] != tt.wantTopics[i] {
					t.Fatalf("expected topics %v, got %v", tt.wantTopics, topics)
				}
			}
		})
	}
}
