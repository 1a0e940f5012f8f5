package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// summarizationPrompt instructs the model to return a strict JSON object.
// Both chat-based summarization providers share it so results stay
// interchangeable across the fallback chain.
const summarizationPrompt = "You summarize conversations like a friend giving a casual recap. " +
	"Given a transcript of a conversation between two people, produce a JSON " +
	"object with exactly two fields:\n" +
	"- \"summary\": A brief, casual recap of what was discussed (1-2 sentences, " +
	"like you're telling a friend what they talked about). Example tone: " +
	"'You talked about weekend plans and the new project.'\n" +
	"- \"topics\": A list of up to 3 short, free-form topic labels that would " +
	"help someone find this conversation later (e.g., 'weekend plans', " +
	"'CS 101 homework', 'job interview prep').\n" +
	"Respond ONLY with valid JSON. No extra text."

// maxKeyTopics bounds the topic list stored on a summary.
const maxKeyTopics = 3

// summaryPayload is the JSON object the prompt asks for.
type summaryPayload struct {
	Summary json.RawMessage `json:"summary"`
	Topics  json.RawMessage `json:"topics"`
}

// parseSummaryPayload parses a model response into summary text and topic
// labels. Any failure to parse wraps ErrMalformedResponse: the provider
// answered, the content is unusable, and re-sending the same input has no
// recovery value.
func parseSummaryPayload(raw string) (string, []string, error) {
	raw = extractJSON(raw)

	var payload summaryPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", nil, fmt.Errorf("parse summary JSON: %v: %w", err, ErrMalformedResponse)
	}

	var summary string
	if len(payload.Summary) > 0 {
		if err := json.Unmarshal(payload.Summary, &summary); err != nil {
			// Tolerate non-string summary values the way a lenient
			// reader would: stringify them.
			summary = strings.Trim(string(payload.Summary), "\"")
		}
	}

	var topics []string
	if len(payload.Topics) > 0 {
		var rawTopics []json.RawMessage
		if err := json.Unmarshal(payload.Topics, &rawTopics); err == nil {
			for _, rt := range rawTopics {
				var topic string
				if err := json.Unmarshal(rt, &topic); err != nil {
					topic = strings.Trim(string(rt), "\"")
				}
				if topic != "" {
					topics = append(topics, topic)
				}
			}
		}
	}
	if len(topics) > maxKeyTopics {
		topics = topics[:maxKeyTopics]
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", nil, fmt.Errorf("summary field missing or empty: %w", ErrMalformedResponse)
	}

	return summary, topics, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
