package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive integer path parameter, answering 400 itself
// on failure.
func parseIDParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// parseLimit reads the limit query parameter. Absent means the endpoint's
// default; non-positive or malformed values are rejected with 400.
func parseLimit(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	return limit, true
}

// parseTimeCursor reads an optional RFC3339 cursor query parameter.
func parseTimeCursor(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("cursor")
	if raw == "" {
		return nil, true
	}
	cursor, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cursor must be an RFC3339 timestamp"})
		return nil, false
	}
	return &cursor, true
}

// parseIntCursor reads an optional integer cursor query parameter.
func parseIntCursor(c *gin.Context) (*int, bool) {
	raw := c.Query("cursor")
	if raw == "" {
		return nil, true
	}
	cursor, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cursor must be an integer"})
		return nil, false
	}
	return &cursor, true
}
