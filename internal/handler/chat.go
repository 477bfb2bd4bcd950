package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"styleme/internal/config"
	"styleme/internal/model"
)

// Session cookie name and value keys
const (
	SessionName           = "styleme_session"
	SessionConversationID = "conversation_id"
	SessionUserID         = "user_id"
)

// ChatResponder answers assistant messages for a conversation
type ChatResponder interface {
	Chat(ctx context.Context, conversationID string, userID int64, message string) (*model.ChatResponse, string)
	ClearContext(ctx context.Context, conversationID string) *model.ChatResponse
	SmartSuggestions() *model.ChatResponse
}

// NewSessionStore creates the signed cookie store holding the conversation id.
// The user id is written by the storefront login and only read here.
func NewSessionStore(cfg *config.SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// ChatHandler handles chat assistant HTTP requests
type ChatHandler struct {
	chat     ChatResponder
	sessions sessions.Store
	logger   *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatResponder, store sessions.Store, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, sessions: store, logger: logger}
}

// Handle handles POST /api/v1/chat
func (h *ChatHandler) Handle(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ChatResponse{Message: "Invalid request: " + err.Error()})
		return
	}

	session, err := h.sessions.Get(c.Request, SessionName)
	if err != nil {
		// a tampered or stale cookie yields a fresh session
		h.logger.Debug("Discarding unreadable chat session", zap.Error(err))
	}
	conversationID, _ := session.Values[SessionConversationID].(string)
	userID, _ := session.Values[SessionUserID].(int64)

	switch req.Action {
	case "", model.ChatActionChat:
		resp, id := h.chat.Chat(c.Request.Context(), conversationID, userID, req.Message)
		if id != "" && id != conversationID {
			session.Values[SessionConversationID] = id
			h.saveSession(c, session)
		}
		c.JSON(http.StatusOK, resp)
	case model.ChatActionGetSuggestions:
		c.JSON(http.StatusOK, h.chat.SmartSuggestions())
	case model.ChatActionClearContext:
		resp := h.chat.ClearContext(c.Request.Context(), conversationID)
		if resp.Success && conversationID != "" {
			delete(session.Values, SessionConversationID)
			h.saveSession(c, session)
		}
		c.JSON(http.StatusOK, resp)
	default:
		c.JSON(http.StatusBadRequest, model.ChatResponse{Message: "Invalid action"})
	}
}

func (h *ChatHandler) saveSession(c *gin.Context, session *sessions.Session) {
	if err := session.Save(c.Request, c.Writer); err != nil {
		h.logger.Warn("Failed to save chat session", zap.Error(err))
	}
}
