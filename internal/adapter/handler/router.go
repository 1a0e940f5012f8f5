package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LakshmanTurlapati/LinkLess/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg                 *config.Config
	conversationHandler *Conversation
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, conversationHandler *Conversation) *Router {
	return &Router{
		cfg:                 cfg,
		conversationHandler: conversationHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1", UserIdentity())

	rt.setupConversationRoutes(v1)
}

// setupConversationRoutes configures conversation routes
func (rt *Router) setupConversationRoutes(g *echo.Group) {
	conversations := g.Group("/conversations")

	conversations.POST("", rt.conversationHandler.CreateConversation)
	conversations.GET("", rt.conversationHandler.ListConversations)
	conversations.GET("/:id", rt.conversationHandler.GetConversation)
	conversations.POST("/:id/confirm-upload", rt.conversationHandler.ConfirmUpload)

	// Manual re-run of a failed pipeline, only exposed on debug builds.
	if rt.cfg.DebugMode {
		conversations.POST("/:id/retranscribe", rt.conversationHandler.Retranscribe)
	}
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
