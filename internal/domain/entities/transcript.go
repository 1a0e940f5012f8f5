package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Utterance is one speaker-attributed segment of a transcript.
// Times are in seconds from the start of the recording.
type Utterance struct {
	Speaker    int     `json:"speaker"`
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Transcript stores the transcribed text for a conversation. At most one
// exists per conversation (unique constraint on conversation_id). Content
// is the canonical plain-text transcript; the per-utterance breakdown is
// kept separately so both stages read the same text form.
type Transcript struct {
	ID             uuid.UUID                      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ConversationID uuid.UUID                      `json:"conversation_id" gorm:"type:uuid;not null;uniqueIndex"`
	Content        string                         `json:"content" gorm:"type:text;not null"`
	Utterances     datatypes.JSONSlice[Utterance] `json:"utterances,omitempty" gorm:"type:jsonb"`
	Provider       string                         `json:"provider" gorm:"type:varchar(50);not null"`
	Language       string                         `json:"language" gorm:"type:varchar(10);default:'en'"`
	WordCount      int                            `json:"word_count" gorm:"type:integer"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewTranscript creates a transcript for a conversation.
func NewTranscript(conversationID uuid.UUID) *Transcript {
	return &Transcript{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Language:       "en",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

// TableName specifies the table name for GORM
func (Transcript) TableName() string {
	return "transcripts"
}
