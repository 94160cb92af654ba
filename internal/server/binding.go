package server

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"vibe-in-the-dark/internal/game"
)

type bindMessages map[string]map[string]string

func bindJSON(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, game.Invalid("invalid_request", resolveBindError(err, messages, fallback)))
		return false
	}
	return true
}

type codeURI struct {
	Code string `uri:"code" binding:"required,gamecode"`
}

// bindCode reads the :code path parameter. Malformed codes cannot name a game.
func bindCode(c *gin.Context) (string, bool) {
	var uri codeURI
	if err := c.ShouldBindUri(&uri); err != nil {
		writeError(c, game.ErrGameNotFound)
		return "", false
	}
	return game.NormalizeCode(uri.Code), true
}

func resolveBindError(err error, messages bindMessages, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if fieldMsgs, ok := messages[verr.Field()]; ok {
				if msg, ok := fieldMsgs[verr.Tag()]; ok {
					return msg
				}
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "invalid request"
}
