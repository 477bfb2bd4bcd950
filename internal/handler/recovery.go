package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"styleme/internal/service"
)

// Recovery converts panics into the JSON failure body with HTTP 200, so an
// endpoint never answers with a non-JSON body
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Recovered from panic",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusOK, service.ErrorResponse(service.MsgInternalError))
	})
}
