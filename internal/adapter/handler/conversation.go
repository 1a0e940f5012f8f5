package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/LakshmanTurlapati/LinkLess/errors"
	"github.com/LakshmanTurlapati/LinkLess/internal/adapter/dto/common"
	conversationDTO "github.com/LakshmanTurlapati/LinkLess/internal/adapter/dto/conversation"
	"github.com/LakshmanTurlapati/LinkLess/internal/adapter/presenter"
	conversationUsecase "github.com/LakshmanTurlapati/LinkLess/internal/usecase/conversation"
)

// Conversation handles conversation-related HTTP requests
type Conversation struct {
	service conversationUsecase.Service
	logger  *zap.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(service conversationUsecase.Service, logger *zap.Logger) *Conversation {
	return &Conversation{
		service: service,
		logger:  logger,
	}
}

// CreateConversation handles POST /conversations
func (h *Conversation) CreateConversation(c echo.Context) error {
	var req conversationDTO.CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return unauthorized(c)
	}

	var peerUserID *uuid.UUID
	if req.PeerUserID != nil {
		peer, err := uuid.Parse(*req.PeerUserID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error":   "invalid_peer_user_id",
				"message": "peer_user_id must be a valid UUID",
			})
		}
		peerUserID = &peer
	}

	output, err := h.service.CreateConversation(c.Request().Context(), userID, peerUserID)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(http.StatusCreated, &conversationDTO.CreateConversationResponse{
		Conversation: presenter.ToConversationResponse(output.Conversation),
		UploadURL:    output.UploadURL,
	})
}

// ConfirmUpload handles POST /conversations/:id/confirm-upload
func (h *Conversation) ConfirmUpload(c echo.Context) error {
	conversationID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return unauthorized(c)
	}

	updated, err := h.service.ConfirmUpload(c.Request().Context(), conversationID, userID)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, presenter.ToConversationResponse(updated))
}

// GetConversation handles GET /conversations/:id
func (h *Conversation) GetConversation(c echo.Context) error {
	conversationID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return unauthorized(c)
	}

	detail, err := h.service.GetConversation(c.Request().Context(), conversationID, userID)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, &conversationDTO.DetailResponse{
		Conversation: presenter.ToConversationResponse(detail.Conversation),
		Transcript:   presenter.ToTranscriptResponse(detail.Transcript),
		Summary:      presenter.ToSummaryResponse(detail.Summary),
	})
}

// ListConversations handles GET /conversations
func (h *Conversation) ListConversations(c echo.Context) error {
	var req conversationDTO.ListConversationsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return unauthorized(c)
	}

	conversations, total, err := h.service.ListConversations(
		c.Request().Context(), userID, req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, &conversationDTO.ListResponse{
		Conversations: presenter.ToConversationResponses(conversations),
		Total:         total,
		Page:          req.Page,
		PageSize:      req.PageSize,
	})
}

// Retranscribe handles POST /conversations/:id/retranscribe
func (h *Conversation) Retranscribe(c echo.Context) error {
	conversationID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return unauthorized(c)
	}

	updated, err := h.service.ForceRetry(c.Request().Context(), conversationID, userID)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusAccepted, presenter.ToConversationResponse(updated))
}

// serviceError maps use case errors onto the AppError envelope
func (h *Conversation) serviceError(c echo.Context, err error) error {
	var appErr apperrors.AppError
	switch {
	case errors.Is(err, conversationUsecase.ErrConversationNotFound):
		appErr = apperrors.ErrConversationNotFound(err)
	case errors.Is(err, conversationUsecase.ErrNotAwaitingUpload):
		appErr = apperrors.ErrNotAwaitingUpload(err)
	case errors.Is(err, conversationUsecase.ErrNotRetryable):
		appErr = apperrors.ErrNotRetryable(err)
	case errors.Is(err, conversationUsecase.ErrRetryInFlight):
		appErr = apperrors.ErrRetryInFlight(err)
	default:
		h.logger.Error("conversation request failed",
			zap.String("path", c.Path()),
			zap.Error(err))
		appErr = apperrors.ErrInternal(err)
	}

	return c.JSON(appErr.HTTPCode, common.ErrorResponse{
		Error:   string(appErr.Code),
		Message: appErr.Message,
	})
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be a valid UUID")
	}
	return id, nil
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]interface{}{
		"error":   "unauthorized",
		"message": "user not authenticated",
	})
}
