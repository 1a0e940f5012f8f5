package presenter

import (
	"regexp"
	"strings"

	conversationDTO "github.com/LakshmanTurlapati/LinkLess/internal/adapter/dto/conversation"
	"github.com/LakshmanTurlapati/LinkLess/internal/domain/entities"
)

// stackTraceLine matches lines that look like fragments of a stack trace
// rather than a human-readable error message.
var stackTraceLine = regexp.MustCompile(`(^\s+at\s)|(^goroutine\s\d)|(\.go:\d+)|(^Traceback\b)|(^\s+File\s")`)

// SanitizeErrorDetail strips stack-trace-looking lines from a stored
// error detail before it reaches a client.
func SanitizeErrorDetail(detail string) string {
	lines := strings.Split(detail, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if stackTraceLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// ToConversationResponse converts a Conversation entity to its DTO
func ToConversationResponse(c *entities.Conversation) *conversationDTO.ConversationResponse {
	if c == nil {
		return nil
	}

	response := &conversationDTO.ConversationResponse{
		ID:              c.ID.String(),
		UserID:          c.UserID.String(),
		Status:          string(c.Status),
		StartedAt:       c.StartedAt,
		EndedAt:         c.EndedAt,
		DurationSeconds: c.DurationSeconds,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.PeerUserID != nil {
		peer := c.PeerUserID.String()
		response.PeerUserID = &peer
	}
	if c.ErrorDetail != nil {
		sanitized := SanitizeErrorDetail(*c.ErrorDetail)
		response.ErrorDetail = &sanitized
	}
	return response
}

// ToConversationResponses converts a slice of conversations
func ToConversationResponses(conversations []entities.Conversation) []*conversationDTO.ConversationResponse {
	responses := make([]*conversationDTO.ConversationResponse, len(conversations))
	for i := range conversations {
		responses[i] = ToConversationResponse(&conversations[i])
	}
	return responses
}

// ToTranscriptResponse converts a Transcript entity to its DTO
func ToTranscriptResponse(t *entities.Transcript) *conversationDTO.TranscriptResponse {
	if t == nil {
		return nil
	}

	utterances := make([]conversationDTO.UtteranceResponse, len(t.Utterances))
	for i, u := range t.Utterances {
		utterances[i] = conversationDTO.UtteranceResponse{
			Speaker:    u.Speaker,
			Text:       u.Text,
			Start:      u.Start,
			End:        u.End,
			Confidence: u.Confidence,
		}
	}
	if len(utterances) == 0 {
		utterances = nil
	}

	return &conversationDTO.TranscriptResponse{
		Content:    t.Content,
		Utterances: utterances,
		Provider:   t.Provider,
		Language:   t.Language,
		WordCount:  t.WordCount,
		CreatedAt:  t.CreatedAt,
	}
}

// ToSummaryResponse converts a Summary entity to its DTO
func ToSummaryResponse(s *entities.Summary) *conversationDTO.SummaryResponse {
	if s == nil {
		return nil
	}
	return &conversationDTO.SummaryResponse{
		Content:   s.Content,
		KeyTopics: []string(s.KeyTopics),
		Provider:  s.Provider,
		CreatedAt: s.CreatedAt,
	}
}
