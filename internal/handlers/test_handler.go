package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brainself/internal/models"
	"brainself/internal/services"
)

type TestHandler struct {
	tests services.TestService
}

func NewTestHandler(tests services.TestService) *TestHandler {
	return &TestHandler{tests: tests}
}

// GET /api/tests?grade=
func (h *TestHandler) List(c *gin.Context) {
	tests, err := h.tests.List(c.Request.Context(), SessionFrom(c), c.Query("grade"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tests": tests})
}

// GET /api/tests/:id/questions
func (h *TestHandler) Questions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	qs, err := h.tests.Questions(c.Request.Context(), SessionFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": qs})
}

// POST /api/tests/:id/attempts
func (h *TestHandler) Start(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	state, err := h.tests.Start(c.Request.Context(), SessionFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

type saveAnswerReq struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Answer     string    `json:"answer" binding:"required"`
}

// PUT /api/attempts/:id/answers
func (h *TestHandler) SaveAnswer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req saveAnswerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.tests.SaveAnswer(c.Request.Context(), SessionFrom(c), id, req.QuestionID, req.Answer); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

type submitReq struct {
	Answers models.AnswerMap `json:"answers"`
}

// POST /api/attempts/:id/submit
func (h *TestHandler) Submit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req submitReq
	// пустое тело допустимо: тогда засчитываются сохраненные ответы
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	result, err := h.tests.Submit(c.Request.Context(), SessionFrom(c), id, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/attempts/:id/card
func (h *TestHandler) ExportResultCard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	path, err := h.tests.ExportResultCard(c.Request.Context(), SessionFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
