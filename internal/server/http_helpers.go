package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vibe-in-the-dark/internal/game"
	"vibe-in-the-dark/internal/logger"
)

func statusFor(kind game.Kind) int {
	switch kind {
	case game.KindValidation:
		return http.StatusBadRequest
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindPrecondition:
		return http.StatusConflict
	case game.KindRateLimited:
		return http.StatusTooManyRequests
	case game.KindExternal:
		return http.StatusBadGateway
	case game.KindContention:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error", "code"}. Non-domain errors are logged
// and reported without detail.
func writeError(c *gin.Context, err error) {
	kind := game.KindOf(err)
	message := "internal error"
	var derr *game.Error
	if errors.As(err, &derr) {
		message = derr.Message
	} else {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(statusFor(kind), gin.H{"error": message, "code": game.CodeOf(err)})
}
