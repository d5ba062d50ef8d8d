package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brainself/internal/models"
	"brainself/internal/repository"
	"brainself/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GET /api/profile
func (h *ProfileHandler) GetMe(c *gin.Context) {
	p, err := h.profiles.Me(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// PUT /api/profile
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.profiles.UpdateMe(c.Request.Context(), SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// GET /api/teacher/students
func (h *ProfileHandler) ListStudents(c *gin.Context) {
	students, err := h.profiles.ListStudents(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

// GET /api/admin/users?q=&role=&limit=
func (h *ProfileHandler) ListUsers(c *gin.Context) {
	filter := repository.ProfileFilter{Query: c.Query("q")}
	if r := c.Query("role"); r != "" {
		role, err := models.ParseRole(r)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.Role = &role
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		filter.Limit = l
	}

	users, err := h.profiles.ListUsers(c.Request.Context(), SessionFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type roleReq struct {
	Role string `json:"role" binding:"required,app_role"`
}

// PUT /api/admin/users/:id/role
func (h *ProfileHandler) UpdateRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req roleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.profiles.UpdateRole(c.Request.Context(), SessionFrom(c), id, models.AppRole(req.Role)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type bulkRoleReq struct {
	ProfileIDs []uuid.UUID `json:"profile_ids" binding:"required,min=1"`
	Role       string      `json:"role" binding:"required,app_role"`
}

// PUT /api/admin/users/role
func (h *ProfileHandler) BulkUpdateRole(c *gin.Context) {
	var req bulkRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.profiles.BulkUpdateRole(c.Request.Context(), SessionFrom(c), req.ProfileIDs, models.AppRole(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// GET /api/admin/stats
func (h *ProfileHandler) RoleStats(c *gin.Context) {
	stats, err := h.profiles.RoleStats(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
