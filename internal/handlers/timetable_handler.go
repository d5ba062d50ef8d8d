package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brainself/internal/services"
)

type TimetableHandler struct {
	timetable services.TimetableService
}

func NewTimetableHandler(timetable services.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetable: timetable}
}

// GET /api/timetable
func (h *TimetableHandler) List(c *gin.Context) {
	entries, err := h.timetable.List(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// POST /api/timetable
func (h *TimetableHandler) Create(c *gin.Context) {
	var req services.TimetableInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := h.timetable.Create(c.Request.Context(), SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// PUT /api/timetable/:id
func (h *TimetableHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.TimetableInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := h.timetable.Update(c.Request.Context(), SessionFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// DELETE /api/timetable/:id
func (h *TimetableHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.timetable.Delete(c.Request.Context(), SessionFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
