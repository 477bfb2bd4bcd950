package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"styleme/internal/model"
)

// FeedbackLogger records shopper actions against a logged search
type FeedbackLogger interface {
	LogFeedback(ctx context.Context, searchID string, productID int64, action string) error
}

var validActions = map[string]bool{
	"click":        true,
	"view_details": true,
	"add_to_cart":  true,
	"wishlist":     true,
}

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	feedback FeedbackLogger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedback FeedbackLogger) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.FeedbackResponse{Message: "Invalid request: " + err.Error()})
		return
	}

	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, model.FeedbackResponse{
			Message: "Invalid action. Must be one of: click, view_details, add_to_cart, wishlist",
		})
		return
	}

	err := h.feedback.LogFeedback(c.Request.Context(), req.SearchID, req.ProductID, req.Action)
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, model.FeedbackResponse{Message: "Search not found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, model.FeedbackResponse{Message: "Failed to log feedback"})
		return
	}

	c.JSON(http.StatusOK, model.FeedbackResponse{Success: true, Message: "Feedback logged successfully"})
}
