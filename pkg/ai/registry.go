package ai

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/LakshmanTurlapati/LinkLess/pkg/config"
)

// BuildTranscriptionChain assembles the transcription fallback chain from
// the configured provider order. Selection happens once here, at process
// configuration time; unknown names are a startup error.
func BuildTranscriptionChain(cfg *config.Config, logger *zap.Logger) (*FallbackChain[Transcriber], error) {
	chain := NewFallbackChain[Transcriber]("transcription", logger)
	for _, name := range cfg.Pipeline.TranscriptionProviders {
		switch name {
		case "assemblyai":
			chain.Add(name, NewAssemblyAIProvider(&cfg.Assembly))
		case "whisper":
			chain.Add(name, NewWhisperProvider(&cfg.Whisper))
		default:
			return nil, fmt.Errorf("unknown transcription provider %q", name)
		}
	}
	return chain, nil
}

// BuildSummarizationChain assembles the summarization fallback chain from
// the configured provider order.
func BuildSummarizationChain(cfg *config.Config, logger *zap.Logger) (*FallbackChain[Summarizer], error) {
	chain := NewFallbackChain[Summarizer]("summarization", logger)
	for _, name := range cfg.Pipeline.SummarizationProviders {
		switch name {
		case "grok":
			chain.Add(name, NewGrokProvider(&cfg.Grok))
		case "gemini":
			chain.Add(name, NewGeminiProvider(&cfg.Gemini))
		default:
			return nil, fmt.Errorf("unknown summarization provider %q", name)
		}
	}
	return chain, nil
}
