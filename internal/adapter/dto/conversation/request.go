package conversation

// CreateConversationRequest is the payload for POST /conversations
type CreateConversationRequest struct {
	PeerUserID *string `json:"peer_user_id,omitempty" validate:"omitempty,uuid"`
}

// ListConversationsRequest captures pagination query parameters
type ListConversationsRequest struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}
