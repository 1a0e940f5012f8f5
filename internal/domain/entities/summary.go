package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Summary stores the AI-generated recap for a conversation. At most one
// exists per conversation (unique constraint on conversation_id).
type Summary struct {
	ID             uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ConversationID uuid.UUID                   `json:"conversation_id" gorm:"type:uuid;not null;uniqueIndex"`
	Content        string                      `json:"content" gorm:"type:text;not null"`
	KeyTopics      datatypes.JSONSlice[string] `json:"key_topics" gorm:"type:jsonb"`
	Provider       string                      `json:"provider" gorm:"type:varchar(50);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewSummary creates a summary for a conversation.
func NewSummary(conversationID uuid.UUID) *Summary {
	return &Summary{
		ID:             uuid.New(),
		ConversationID: conversationID,
		KeyTopics:      datatypes.JSONSlice[string]{},
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

// TableName specifies the table name for GORM
func (Summary) TableName() string {
	return "summaries"
}
