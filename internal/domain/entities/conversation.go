package entities

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ConversationStatus represents the processing state of a conversation
type ConversationStatus string

const (
	ConversationStatusPending             ConversationStatus = "pending"              // Created, audio not uploaded yet
	ConversationStatusUploaded            ConversationStatus = "uploaded"             // Audio upload confirmed, awaiting transcription
	ConversationStatusTranscribing        ConversationStatus = "transcribing"         // Transcription stage in progress
	ConversationStatusTranscribed         ConversationStatus = "transcribed"          // Transcript stored, awaiting summarization
	ConversationStatusSummarizing         ConversationStatus = "summarizing"          // Summarization stage in progress
	ConversationStatusCompleted           ConversationStatus = "completed"            // Both artifacts stored
	ConversationStatusFailed              ConversationStatus = "failed"               // Transcription exhausted its retry budget
	ConversationStatusSummarizationFailed ConversationStatus = "summarization_failed" // Summarization exhausted its retry budget, transcript preserved
)

// MaxErrorDetailLen bounds the stored error_detail text.
const MaxErrorDetailLen = 500

// legalTransitions is the authoritative transition table. The two failure
// states are terminal for the pipeline itself; only an external reset
// re-enters them (failed -> uploaded, summarization_failed -> transcribed).
var legalTransitions = map[ConversationStatus][]ConversationStatus{
	ConversationStatusPending:             {ConversationStatusUploaded},
	ConversationStatusUploaded:            {ConversationStatusTranscribing},
	ConversationStatusTranscribing:        {ConversationStatusTranscribed, ConversationStatusFailed},
	ConversationStatusTranscribed:         {ConversationStatusSummarizing},
	ConversationStatusSummarizing:         {ConversationStatusCompleted, ConversationStatusSummarizationFailed},
	ConversationStatusCompleted:           {},
	ConversationStatusFailed:              {ConversationStatusUploaded},
	ConversationStatusSummarizationFailed: {ConversationStatusTranscribed},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to ConversationStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalFailure reports whether the status is one the pipeline will not
// recover from on its own.
func (s ConversationStatus) IsTerminalFailure() bool {
	return s == ConversationStatusFailed || s == ConversationStatusSummarizationFailed
}

// Conversation represents one recorded exchange between two users.
// Once upload is confirmed the pipeline owns the status field; the
// pipeline never deletes conversations.
type Conversation struct {
	ID              uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID          uuid.UUID          `json:"user_id" gorm:"type:uuid;not null;index"`
	PeerUserID      *uuid.UUID         `json:"peer_user_id,omitempty" gorm:"type:uuid"`
	AudioStorageKey string             `json:"audio_storage_key" gorm:"type:varchar(512)"`
	Status          ConversationStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'pending'"`
	ErrorDetail     *string            `json:"error_detail,omitempty" gorm:"type:varchar(500)"`
	StartedAt       time.Time          `json:"started_at" gorm:"type:timestamptz"`
	EndedAt         *time.Time         `json:"ended_at,omitempty" gorm:"type:timestamptz"`
	DurationSeconds *int               `json:"duration_seconds,omitempty" gorm:"type:integer"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewConversation creates a conversation in the pending state.
func NewConversation(userID uuid.UUID, audioKey string) *Conversation {
	return &Conversation{
		ID:              uuid.New(),
		UserID:          userID,
		AudioStorageKey: audioKey,
		Status:          ConversationStatusPending,
		StartedAt:       time.Now(),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

// TruncateErrorDetail bounds an error message to MaxErrorDetailLen bytes,
// keeping the leading context. The cut never splits a multi-byte rune;
// the stored text stays valid UTF-8.
func TruncateErrorDetail(msg string) string {
	if len(msg) <= MaxErrorDetailLen {
		return msg
	}
	cut := MaxErrorDetailLen
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}

// TableName specifies the table name for GORM
func (Conversation) TableName() string {
	return "conversations"
}
