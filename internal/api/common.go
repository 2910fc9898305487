package api

import (
	"net/http"
	"strconv"

	"go-fairway/internal/apperr"
	"go-fairway/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userIDValue, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return 0, false
	}
	userID, ok := userIDValue.(uint)
	if !ok || userID == 0 {
		logger.L.Error("Invalid userID in context", zap.Any("userIDValue", userIDValue))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user ID in context"})
		return 0, false
	}
	return userID, true
}

func getUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || value == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(value), true
}

func getPagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// respondError translates the service error taxonomy into an HTTP
// response. Unknown errors become a 500 without leaking the message.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	var status int
	switch kind {
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Forbidden:
		status = http.StatusForbidden
	case apperr.InvalidState, apperr.Conflict, apperr.Full:
		status = http.StatusConflict
	case apperr.InvalidInput:
		status = http.StatusBadRequest
	case apperr.Precondition:
		status = http.StatusPreconditionFailed
	default:
		logger.L.Error("Unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
