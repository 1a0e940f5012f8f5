package ai

import (
	"bytes"
	"context"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"

	"github.com/LakshmanTurlapati/LinkLess/pkg/config"
)

// AssemblyAIProvider transcribes audio through the official AssemblyAI SDK
// with speaker diarization enabled.
type AssemblyAIProvider struct {
	client  *aai.Client
	timeout time.Duration
}

// NewAssemblyAIProvider creates an AssemblyAI transcription provider.
func NewAssemblyAIProvider(cfg *config.AssemblyAIConfig) *AssemblyAIProvider {
	return &AssemblyAIProvider{
		client:  aai.NewClient(cfg.APIKey),
		timeout: 3 * time.Minute,
	}
}

// Name implements Transcriber.
func (p *AssemblyAIProvider) Name() string { return "assemblyai" }

// Transcribe uploads the audio bytes and waits for the finished transcript.
// The submission is retried briefly with exponential backoff before the
// error is handed to the caller.
func (p *AssemblyAIProvider) Transcribe(ctx context.Context, audio []byte) (*TranscriptionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &aai.TranscriptOptionalParams{
		SpeakerLabels:     aai.Bool(true),
		LanguageDetection: aai.Bool(true),
	}

	var transcript aai.Transcript
	submitFn := func() error {
		var err error
		transcript, err = p.client.Transcripts.TranscribeFromReader(ctx, bytes.NewReader(audio), params)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	result := &TranscriptionResult{
		Provider: p.Name(),
		Language: "en",
	}

	if transcript.Text != nil {
		result.FullText = *transcript.Text
	}
	if transcript.LanguageCode != "" {
		result.Language = string(transcript.LanguageCode)
	}
	result.WordCount = WordCount(result.FullText)

	// AssemblyAI labels speakers "A", "B", ...; normalize to ordinals in
	// order of first appearance.
	speakerIndex := make(map[string]int)
	for _, utt := range transcript.Utterances {
		u := Utterance{}
		if utt.Speaker != nil {
			label := *utt.Speaker
			if _, ok := speakerIndex[label]; !ok {
				speakerIndex[label] = len(speakerIndex)
			}
			u.Speaker = speakerIndex[label]
		}
		if utt.Text != nil {
			u.Text = *utt.Text
		}
		if utt.Start != nil {
			u.Start = float64(*utt.Start) / 1000.0 // ms to seconds
		}
		if utt.End != nil {
			u.End = float64(*utt.End) / 1000.0
		}
		if utt.Confidence != nil {
			u.Confidence = *utt.Confidence
		}
		result.Utterances = append(result.Utterances, u)
	}

	return result, nil
}
