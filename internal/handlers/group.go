package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"session-service/internal/cache"
	"session-service/internal/repositories"
)

// GroupHandler manages group creation; sessions hang off groups.
type GroupHandler struct {
	groups      repositories.GroupRepository
	memberships *cache.MembershipCache
}

// NewGroupHandler builds a GroupHandler.
func NewGroupHandler(groups repositories.GroupRepository, memberships *cache.MembershipCache) *GroupHandler {
	return &GroupHandler{groups: groups, memberships: memberships}
}

// CreateGroup creates a group with the caller as owner plus the given members.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		MemberIDs []int  `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	group, err := h.groups.CreateGroup(c.Request.Context(), userID, req.Name, req.MemberIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
		return
	}

	// Stale verdicts would deny the new members until the TTL lapses.
	h.memberships.InvalidateGroup(c.Request.Context(), group.ID)

	c.JSON(http.StatusCreated, group)
}
