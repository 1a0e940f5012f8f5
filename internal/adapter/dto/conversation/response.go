package conversation

import "time"

// ConversationResponse represents a conversation in API responses
type ConversationResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	PeerUserID      *string    `json:"peer_user_id,omitempty"`
	Status          string     `json:"status"`
	ErrorDetail     *string    `json:"error_detail,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// UtteranceResponse is one speaker-attributed transcript segment
type UtteranceResponse struct {
	Speaker    int     `json:"speaker"`
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// TranscriptResponse represents a stored transcript
type TranscriptResponse struct {
	Content    string              `json:"content"`
	Utterances []UtteranceResponse `json:"utterances,omitempty"`
	Provider   string              `json:"provider"`
	Language   string              `json:"language"`
	WordCount  int                 `json:"word_count"`
	CreatedAt  time.Time           `json:"created_at"`
}

// SummaryResponse represents a stored summary
type SummaryResponse struct {
	Content   string    `json:"content"`
	KeyTopics []string  `json:"key_topics"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateConversationResponse is returned from POST /conversations
type CreateConversationResponse struct {
	Conversation *ConversationResponse `json:"conversation"`
	UploadURL    string                `json:"upload_url"`
}

// DetailResponse is returned from GET /conversations/:id
type DetailResponse struct {
	Conversation *ConversationResponse `json:"conversation"`
	Transcript   *TranscriptResponse   `json:"transcript,omitempty"`
	Summary      *SummaryResponse      `json:"summary,omitempty"`
}

// ListResponse is returned from GET /conversations
type ListResponse struct {
	Conversations []*ConversationResponse `json:"conversations"`
	Total         int64                   `json:"total"`
	Page          int                     `json:"page"`
	PageSize      int                     `json:"page_size"`
}
