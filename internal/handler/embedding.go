package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"styleme/internal/model"
	"styleme/internal/repository"
)

// EmbeddingUpdater stores product embeddings
type EmbeddingUpdater interface {
	UpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
}

// EmbeddingHandler handles embedding-related HTTP requests
type EmbeddingHandler struct {
	updater EmbeddingUpdater
}

// NewEmbeddingHandler creates a new embedding handler
func NewEmbeddingHandler(updater EmbeddingUpdater) *EmbeddingHandler {
	return &EmbeddingHandler{updater: updater}
}

// BatchUpdate handles POST /api/v1/embeddings/batch
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	var req model.EmbeddingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Embeddings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No embeddings provided"})
		return
	}

	// Validate embedding dimensions
	for i, item := range req.Embeddings {
		if len(item.Embedding) != repository.EmbeddingDimensions {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": fmt.Sprintf("Invalid embedding dimension at index %d, expected %d", i, repository.EmbeddingDimensions),
			})
			return
		}
	}

	success, errs := h.updater.UpdateEmbeddings(c.Request.Context(), req.Embeddings)

	response := model.EmbeddingBatchResponse{
		Success: success,
		Failed:  len(req.Embeddings) - success,
		Errors:  errs,
	}

	if len(errs) > 0 {
		c.JSON(http.StatusPartialContent, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}
