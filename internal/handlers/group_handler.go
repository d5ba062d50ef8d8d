package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brainself/internal/services"
)

type GroupHandler struct{ svc services.GroupService }

func NewGroupHandler(svc services.GroupService) *GroupHandler { return &GroupHandler{svc: svc} }

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req services.GroupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	g, err := h.svc.Create(c.Request.Context(), SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": g})
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	gs, err := h.svc.List(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": gs})
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	gid, ok := paramID(c, "id")
	if !ok {
		return
	}
	g, err := h.svc.Get(c.Request.Context(), SessionFrom(c), gid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": g})
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	gid, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), SessionFrom(c), gid); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *GroupHandler) MyGroups(c *gin.Context) {
	ms, err := h.svc.MyGroups(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memberships": ms})
}

// EligibleMembers список учеников для выбора участников с учетом тегов
func (h *GroupHandler) EligibleMembers(c *gin.Context) {
	gid, ok := paramID(c, "id")
	if !ok {
		return
	}
	ps, err := h.svc.EligibleMembers(c.Request.Context(), SessionFrom(c), gid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": ps})
}

func (h *GroupHandler) ListMembers(c *gin.Context) {
	gid, ok := paramID(c, "id")
	if !ok {
		return
	}
	ms, err := h.svc.ListMembers(c.Request.Context(), SessionFrom(c), gid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": ms})
}

type memberReq struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	gid, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req memberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.svc.AddMember(c.Request.Context(), SessionFrom(c), gid, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": m})
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	gid, ok := paramID(c, "id")
	if !ok {
		return
	}
	uid, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if err := h.svc.RemoveMember(c.Request.Context(), SessionFrom(c), gid, uid); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
