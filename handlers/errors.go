package handlers

import (
	"errors"
	"net/http"

	"food-rescue-api/apperr"
	"food-rescue-api/logger"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicateIdentity):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrInvalidRole):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrStaleState):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError renders err with the status its kind maps to. Unexpected
// errors are logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.WithCtx(c.Request.Context()).Error("request failed", "error", err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindError answers 400 for a body that does not decode.
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
