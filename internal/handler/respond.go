package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub008/pkg/apperr"
)

// pathID parses the :id (or other named) path parameter. A zero return
// means the 400 response has already been written.
func pathID(c *gin.Context, name string) int {
	raw := c.Param(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0
	}
	return id
}

// respondErr maps the service error taxonomy onto HTTP status codes and
// logs server-side failures.
func respondErr(c *gin.Context, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrIneligible):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// actorID returns the authenticated user's id set by the auth middleware.
func actorID(c *gin.Context) int {
	return c.GetInt("user_id")
}
