package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"boxing-arena-api/internal/arena"
	"boxing-arena-api/internal/logger"
	"boxing-arena-api/internal/models"
	"boxing-arena-api/internal/random"

	"github.com/gin-gonic/gin"
)

// statusFor maps core errors to HTTP status codes: bad input, capacity and
// roster-size problems are 400, unknown ids are 404, everything else
// (store or randomness transport failures) is 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, arena.ErrCapacityExceeded),
		errors.Is(err, arena.ErrInsufficientCombatants):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorKind is a short metrics label for err.
func errorKind(err error) string {
	switch {
	case errors.Is(err, arena.ErrInsufficientCombatants):
		return "insufficient"
	case errors.Is(err, arena.ErrCapacityExceeded):
		return "capacity"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, random.ErrTransport), errors.Is(err, random.ErrMalformed):
		return "transport"
	default:
		return "internal"
	}
}

func respondError(c *gin.Context, log logger.Logger, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(c.Request.Context(), msg, logger.Error(err), logger.String("path", c.FullPath()))
		c.JSON(status, gin.H{"error": msg, "details": err.Error()})
		return
	}
	log.Warn(c.Request.Context(), msg, logger.Error(err), logger.String("path", c.FullPath()))
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID: " + raw})
		return 0, false
	}
	return uint(id), true
}
