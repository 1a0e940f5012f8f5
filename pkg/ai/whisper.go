package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/LakshmanTurlapati/LinkLess/pkg/config"
)

// WhisperProvider transcribes audio through an OpenAI-compatible
// /v1/audio/transcriptions endpoint. It produces segment timestamps but
// no speaker diarization, so every utterance is attributed to speaker 0.
type WhisperProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewWhisperProvider creates a Whisper transcription provider.
func NewWhisperProvider(cfg *config.WhisperConfig) *WhisperProvider {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.openai.com"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-transcribe"
	}
	return &WhisperProvider{
		apiKey:  cfg.APIKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: 3 * time.Minute},
	}
}

// Name implements Transcriber.
func (p *WhisperProvider) Name() string { return "whisper" }

// whisperResponse is the verbose_json response shape.
type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Text       string  `json:"text"`
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		AvgLogprob float64 `json:"avg_logprob"`
	} `json:"segments"`
}

// Transcribe uploads the audio as a multipart form and parses the
// verbose_json response.
func (p *WhisperProvider) Transcribe(ctx context.Context, audio []byte) (*TranscriptionResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.m4a")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := writer.WriteField("model", p.model); err != nil {
		return nil, err
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	endpoint := p.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("whisper returned status %d: %s", resp.StatusCode, msg)
	}

	var wr whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}

	result := &TranscriptionResult{
		FullText:  wr.Text,
		Provider:  p.Name(),
		Language:  wr.Language,
		WordCount: WordCount(wr.Text),
	}
	if result.Language == "" {
		result.Language = "en"
	}
	for _, seg := range wr.Segments {
		result.Utterances = append(result.Utterances, Utterance{
			Speaker:    0,
			Text:       seg.Text,
			Start:      seg.Start,
			End:        seg.End,
			Confidence: seg.AvgLogprob,
		})
	}

	return result, nil
}
