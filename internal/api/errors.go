package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"restaurant-pos-backend/internal/auth"
	"restaurant-pos-backend/internal/pos"
)

// respondError maps a domain error onto its HTTP status and a short
// machine-readable reason. Every handler funnels failures through here so
// the taxonomy stays in one place.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	reason := "internal"

	switch {
	case errors.Is(err, pos.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		status, reason = http.StatusNotFound, "not_found"
	case errors.Is(err, pos.ErrConflict):
		status, reason = http.StatusConflict, "conflict"
	case errors.Is(err, pos.ErrInvalidTransition):
		status, reason = http.StatusBadRequest, "invalid_transition"
	case errors.Is(err, pos.ErrValidation):
		status, reason = http.StatusBadRequest, "validation"
	case errors.Is(err, auth.ErrUnauthenticated):
		status, reason = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, auth.ErrForbidden):
		status, reason = http.StatusForbidden, "forbidden"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		// Never leak storage internals to the caller.
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message, "reason": reason})
}
