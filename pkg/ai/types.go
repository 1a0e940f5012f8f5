package ai

import (
	"context"
	"errors"
	"strings"
)

// ErrMalformedResponse marks a response the provider returned successfully
// but that does not parse into the expected structure. Callers must not
// retry it; there is no recovery value in re-sending the same input.
var ErrMalformedResponse = errors.New("provider returned an unparsable response")

// Utterance is one speaker-attributed segment of a transcription result.
// Times are in seconds.
type Utterance struct {
	Speaker    int     `json:"speaker"`
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// TranscriptionResult is the normalized output of any transcription
// provider, regardless of the underlying transport.
type TranscriptionResult struct {
	Utterances []Utterance
	FullText   string
	Provider   string
	Language   string
	WordCount  int
}

// SummaryResult is the normalized output of any summarization provider.
type SummaryResult struct {
	Summary   string
	KeyTopics []string
	Provider  string
}

// Transcriber converts recorded audio into a normalized transcript.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte) (*TranscriptionResult, error)
}

// Summarizer produces a short recap and topic labels from transcript text.
type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, transcript string) (*SummaryResult, error)
}

// WordCount counts whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
