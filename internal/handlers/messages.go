package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/timepass/backend/internal/errors"
	"github.com/timepass/backend/internal/metrics"
)

// OpenConversationRequest names the other participant
type OpenConversationRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// OpenConversation finds or creates the two-party conversation
func (h *Handlers) OpenConversation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req OpenConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierrors.BadRequest("user_id is required"))
		return
	}

	conv, err := h.chat.OpenConversation(c.Request.Context(), user.ID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// GetConversations lists the caller's conversations by recent activity
func (h *Handlers) GetConversations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	convs, err := h.chat.Conversations(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// SendMessageRequest carries the message text
type SendMessageRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}

// SendMessage appends a message and bumps the receiver's unread count
func (h *Handlers) SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierrors.BadRequest("message text is required"))
		return
	}

	msg, err := h.chat.Send(c.Request.Context(), c.Param("id"), user, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.Get().MessagesSentTotal.Inc()
	c.JSON(http.StatusCreated, msg)
}

// GetMessages returns a conversation's messages oldest-first
func (h *Handlers) GetMessages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	msgs, err := h.chat.Messages(c.Request.Context(), c.Param("id"), user.ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// MarkConversationRead zeroes the caller's unread counter
func (h *Handlers) MarkConversationRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.chat.MarkRead(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// GetUnreadCount sums unread messages across the caller's conversations
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	total, err := h.chat.TotalUnread(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": total})
}
