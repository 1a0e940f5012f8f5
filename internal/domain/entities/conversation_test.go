package entities

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCanTransition(t *testing.T) {
	legal := []struct {
		from, to ConversationStatus
	}{
		{ConversationStatusPending, ConversationStatusUploaded},
		{ConversationStatusUploaded, ConversationStatusTranscribing},
		{ConversationStatusTranscribing, ConversationStatusTranscribed},
		{ConversationStatusTranscribing, ConversationStatusFailed},
		{ConversationStatusTranscribed, ConversationStatusSummarizing},
		{ConversationStatusSummarizing, ConversationStatusCompleted},
		{ConversationStatusSummarizing, ConversationStatusSummarizationFailed},
		{ConversationStatusFailed, ConversationStatusUploaded},
		{ConversationStatusSummarizationFailed, ConversationStatusTranscribed},
	}
	for _, tt := range legal {
		if !CanTransition(tt.from, tt.to) {
			t.Errorf("expected %s -> %s to be legal", tt.from, tt.to)
		}
	}

	illegal := []struct {
		from, to ConversationStatus
	}{
		{ConversationStatusPending, ConversationStatusTranscribing},
		{ConversationStatusUploaded, ConversationStatusTranscribed},
		{ConversationStatusTranscribed, ConversationStatusTranscribing},
		{ConversationStatusCompleted, ConversationStatusSummarizing},
		{ConversationStatusCompleted, ConversationStatusUploaded},
		{ConversationStatusFailed, ConversationStatusTranscribing},
		{ConversationStatusSummarizationFailed, ConversationStatusSummarizing},
		{ConversationStatusSummarizing, ConversationStatusFailed},
		{ConversationStatusTranscribing, ConversationStatusSummarizationFailed},
	}
	for _, tt := range illegal {
		if CanTransition(tt.from, tt.to) {
			t.Errorf("expected %s -> %s to be illegal", tt.from, tt.to)
		}
	}
}

func TestIsTerminalFailure(t *testing.T) {
	if !ConversationStatusFailed.IsTerminalFailure() {
		t.Error("failed must be a terminal failure")
	}
	if !ConversationStatusSummarizationFailed.IsTerminalFailure() {
		t.Error("summarization_failed must be a terminal failure")
	}
	if ConversationStatusCompleted.IsTerminalFailure() {
		t.Error("completed is not a failure")
	}
	if ConversationStatusTranscribing.IsTerminalFailure() {
		t.Error("transcribing is not terminal")
	}
}

func TestTruncateErrorDetail(t *testing.T) {
	long := strings.Repeat("x", MaxErrorDetailLen+250)
	got := TruncateErrorDetail(long)
	if len(got) != MaxErrorDetailLen {
		t.Fatalf("expected %d chars, got %d", MaxErrorDetailLen, len(got))
	}
	if got != long[:MaxErrorDetailLen] {
		t.Fatal("truncation must keep the leading context")
	}

	short := "connection refused"
	if TruncateErrorDetail(short) != short {
		t.Fatal("short messages must pass through unchanged")
	}

	// A multi-byte rune straddling the bound is dropped whole; the
	// stored detail must stay valid UTF-8 or the database rejects it.
	multibyte := strings.Repeat("a", MaxErrorDetailLen-1) + "é" + strings.Repeat("b", 100)
	got = TruncateErrorDetail(multibyte)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: % x", got[len(got)-4:])
	}
	if len(got) != MaxErrorDetailLen-1 {
		t.Fatalf("expected the split rune dropped whole, got %d bytes", len(got))
	}
	if !strings.HasSuffix(got, "a") {
		t.Fatalf("unexpected trailing bytes % x", got[len(got)-4:])
	}
}
