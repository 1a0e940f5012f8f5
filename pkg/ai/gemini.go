package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/LakshmanTurlapati/LinkLess/pkg/config"
)

// GeminiProvider summarizes transcripts through the Google Gemini API.
type GeminiProvider struct {
	apiKey string
	model  string
}

// NewGeminiProvider creates a Gemini summarization provider.
func NewGeminiProvider(cfg *config.GeminiConfig) *GeminiProvider {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{
		apiKey: cfg.APIKey,
		model:  model,
	}
}

// Name implements Summarizer.
func (p *GeminiProvider) Name() string { return "gemini" }

// Summarize sends the transcript to Gemini and parses the structured JSON
// reply. The same parse rules as the Grok provider apply, including
// stripping markdown code fences around the JSON body.
func (p *GeminiProvider) Summarize(ctx context.Context, transcript string) (*SummaryResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	prompt := summarizationPrompt + "\n\nTranscript:\n" + transcript

	result, err := client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty gemini response: %w", ErrMalformedResponse)
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	summary, topics, err := parseSummaryPayload(text)
	if err != nil {
		return nil, err
	}

	return &SummaryResult{
		Summary:   summary,
		KeyTopics: topics,
		Provider:  p.Name(),
	}, nil
}
