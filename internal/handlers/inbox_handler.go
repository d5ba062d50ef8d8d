package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brainself/internal/services"
)

type InboxHandler struct {
	inbox services.InboxService
}

func NewInboxHandler(inbox services.InboxService) *InboxHandler {
	return &InboxHandler{inbox: inbox}
}

// POST /api/contact - форма связи с администрацией, вход не нужен
func (h *InboxHandler) ContactAdmins(c *gin.Context) {
	var req services.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.inbox.BroadcastToAdmins(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Your message has been sent", "delivered": n})
}

// GET /api/messages
func (h *InboxHandler) List(c *gin.Context) {
	inbox, err := h.inbox.List(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inbox)
}

// GET /api/messages/unread
func (h *InboxHandler) UnreadCount(c *gin.Context) {
	n, err := h.inbox.UnreadCount(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

// PUT /api/messages/:id/read
func (h *InboxHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.inbox.MarkRead(c.Request.Context(), SessionFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// PUT /api/messages/read
func (h *InboxHandler) MarkAllRead(c *gin.Context) {
	n, err := h.inbox.MarkAllRead(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// DELETE /api/messages/:id
func (h *InboxHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.inbox.Delete(c.Request.Context(), SessionFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
