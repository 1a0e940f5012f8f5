package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/LakshmanTurlapati/LinkLess/pkg/config"
)

// GrokProvider summarizes transcripts through the xAI Grok
// OpenAI-compatible chat completions API.
type GrokProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewGrokProvider creates a Grok summarization provider.
func NewGrokProvider(cfg *config.GrokConfig) *GrokProvider {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.x.ai"
	}
	model := cfg.Model
	if model == "" {
		model = "grok-4-1-fast-non-reasoning"
	}
	return &GrokProvider{
		apiKey:  cfg.APIKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Name implements Summarizer.
func (p *GrokProvider) Name() string { return "grok" }

// chatRequest is the shape for chat completion requests
type chatRequest struct {
	Model          string              `json:"model,omitempty"`
	Messages       []map[string]string `json:"messages,omitempty"`
	ResponseFormat map[string]string   `json:"response_format,omitempty"`
	Temperature    float64             `json:"temperature,omitempty"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
}

// chatResponse is a minimal response shape
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize sends the transcript to Grok and parses the structured JSON
// reply. Transport and HTTP-status failures return plain errors; a reply
// that arrived but does not parse wraps ErrMalformedResponse.
func (p *GrokProvider) Summarize(ctx context.Context, transcript string) (*SummaryResult, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []map[string]string{
			{"role": "system", "content": summarizationPrompt},
			{"role": "user", "content": "Transcript:\n" + transcript},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.3,
		MaxTokens:      500,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := p.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("grok returned status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode grok response: %v: %w", err, ErrMalformedResponse)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("empty grok response: %w", ErrMalformedResponse)
	}

	summary, topics, err := parseSummaryPayload(cr.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &SummaryResult{
		Summary:   summary,
		KeyTopics: topics,
		Provider:  p.Name(),
	}, nil
}
