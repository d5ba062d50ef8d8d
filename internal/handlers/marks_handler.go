package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"brainself/internal/models"
	"brainself/internal/repository"
	"brainself/internal/services"
)

type MarksHandler struct {
	marks services.MarksService
}

func NewMarksHandler(marks services.MarksService) *MarksHandler {
	return &MarksHandler{marks: marks}
}

// POST /api/teacher/marks
func (h *MarksHandler) Add(c *gin.Context) {
	var req services.MarkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	mark, err := h.marks.AddMark(c.Request.Context(), SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"mark": mark})
}

// PUT /api/teacher/marks/:id
func (h *MarksHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.MarkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	mark, err := h.marks.UpdateMark(c.Request.Context(), SessionFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mark": mark})
}

// DELETE /api/teacher/marks/:id
func (h *MarksHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.marks.DeleteMark(c.Request.Context(), SessionFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GET /api/marks
func (h *MarksHandler) Mine(c *gin.Context) {
	list, err := h.marks.MyMarks(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/teacher/marks?subject=&grade=&term=&year=
func (h *MarksHandler) List(c *gin.Context) {
	filter := repository.MarkFilter{
		Subject:    c.Query("subject"),
		GradeLevel: c.Query("grade"),
	}
	if t := c.Query("term"); t != "" {
		term := models.Term(t)
		if !term.Valid() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown term " + t})
			return
		}
		filter.Term = term
	}
	if y := c.Query("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "year must be a number"})
			return
		}
		filter.Year = year
	}

	list, err := h.marks.ListMarks(c.Request.Context(), SessionFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
