package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brainself/internal/services"
)

type SchoolTagHandler struct {
	tags services.SchoolTagService
}

func NewSchoolTagHandler(tags services.SchoolTagService) *SchoolTagHandler {
	return &SchoolTagHandler{tags: tags}
}

// GET /api/school-tags (публичный: нужен форме регистрации)
func (h *SchoolTagHandler) List(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// POST /api/admin/school-tags
func (h *SchoolTagHandler) Create(c *gin.Context) {
	var req services.SchoolTagInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tag, err := h.tags.Create(c.Request.Context(), SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// PUT /api/admin/school-tags/:id
func (h *SchoolTagHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.SchoolTagInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tag, err := h.tags.Update(c.Request.Context(), SessionFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// DELETE /api/admin/school-tags/:id
func (h *SchoolTagHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.tags.Delete(c.Request.Context(), SessionFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type tagAssignReq struct {
	ProfileID uuid.UUID `json:"profile_id" binding:"required"`
}

// POST /api/admin/school-tags/:id/users
func (h *SchoolTagHandler) Assign(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req tagAssignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.tags.Assign(c.Request.Context(), SessionFrom(c), req.ProfileID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "assigned"})
}

// DELETE /api/admin/school-tags/:id/users/:profile_id
func (h *SchoolTagHandler) Unassign(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	profileID, ok := paramID(c, "profile_id")
	if !ok {
		return
	}
	if err := h.tags.Unassign(c.Request.Context(), SessionFrom(c), profileID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// GET /api/users/:profile_id/school-tags
func (h *SchoolTagHandler) ListForUser(c *gin.Context) {
	profileID, ok := paramID(c, "profile_id")
	if !ok {
		return
	}
	tags, err := h.tags.ListForUser(c.Request.Context(), SessionFrom(c), profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
