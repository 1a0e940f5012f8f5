package presenter

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
)

func TestSanitizeErrorDetail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain message untouched",
			in:   "transcription: all providers failed: context deadline exceeded",
			want: "transcription: all providers failed: context deadline exceeded",
		},
		{
			name: "goroutine dump stripped",
			in: "runtime error: invalid memory address\n" +
				"goroutine 42 [running]:\n" +
				"main.process(0x0)\n" +
				"\t/app/internal/usecase/pipeline/transcription.go:88 +0x1a\n" +
				"provider unreachable",
			want: "runtime error: invalid memory address\nmain.process(0x0)\nprovider unreachable",
		},
		{
			name: "java style frames stripped",
			in:   "upstream failed\n    at com.example.Worker.run(Worker.java:10)",
			want: "upstream failed",
		},
		{
			name: "python traceback stripped",
			in: "Traceback (most recent call last):\n" +
				"  File \"worker.py\", line 3, in run\n" +
				"ConnectionError: refused",
			want: "ConnectionError: refused",
		},
		{
			name: "only trace lines leaves empty string",
			in:   "goroutine 1 [running]:\n\tmain.main() app.go:12 +0x2f",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeErrorDetail(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestToConversationResponseSanitizesDetail(t *testing.T) {
	c := entities.NewConversation(uuid.New(), "conversations/x.m4a")
	c.Status = entities.ConversationStatusFailed
	detail := "Summarization: connection refused\ngoroutine 7 [running]:"
	c.ErrorDetail = &detail

	resp := ToConversationResponse(c)
	if resp.ErrorDetail == nil {
		t.Fatal("expected an error detail")
	}
	if strings.Contains(*resp.ErrorDetail, "goroutine") {
		t.Fatalf("stack fragment leaked: %q", *resp.ErrorDetail)
	}
	if *resp.ErrorDetail != "Summarization: connection refused" {
		t.Fatalf("unexpected detail %q", *resp.ErrorDetail)
	}
}

func TestToConversationResponseNil(t *testing.T) {
	if ToConversationResponse(nil) != nil {
		t.Fatal("nil entity must map to nil response")
	}
}
