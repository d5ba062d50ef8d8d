package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"brainself/pkg/notegen"
	"brainself/pkg/papers"
)

// NoteGenerator генерирует учебную заметку по теме
type NoteGenerator interface {
	Generate(ctx context.Context, topic string) (string, error)
}

// ContentHandler учебные материалы: прошлые работы и заметки
type ContentHandler struct {
	papers *papers.Catalog
	notes  NoteGenerator
}

func NewContentHandler(catalog *papers.Catalog, notes NoteGenerator) *ContentHandler {
	return &ContentHandler{papers: catalog, notes: notes}
}

// GET /api/papers?grade=&subject=&term=
func (h *ContentHandler) ListPapers(c *gin.Context) {
	var q papers.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	grades, subjects, terms := h.papers.Options()

	items := make([]gin.H, 0)
	for _, p := range h.papers.Filter(q) {
		items = append(items, gin.H{
			"grade":    p.Grade,
			"subject":  p.Subject,
			"term":     p.Term,
			"file":     p.File,
			"download": "/api/papers/" + filepath.Base(p.File),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"papers": items,
		"options": gin.H{
			"grades":   grades,
			"subjects": subjects,
			"terms":    terms,
		},
	})
}

// GET /api/papers/:file
func (h *ContentHandler) DownloadPaper(c *gin.Context) {
	name := c.Param("file")
	for _, p := range h.papers.Filter(papers.Query{}) {
		if filepath.Base(p.File) != name {
			continue
		}
		path := h.papers.Path(p)
		if _, err := os.Stat(path); err != nil {
			logger(c).Warn("paper file missing", slog.String("path", path))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "paper file is not available", "not_found": true})
			return
		}
		c.FileAttachment(path, p.DownloadName())
		return
	}
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "paper not found", "not_found": true})
}

type notesReq struct {
	Topic string `json:"topic" binding:"required"`
}

// POST /api/notes - Заметка от генератора. Ответ всегда содержит понятный пользователю текст.
func (h *ContentHandler) GenerateNotes(c *gin.Context) {
	var req notesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Please enter a topic."})
		return
	}

	note, err := h.notes.Generate(c.Request.Context(), req.Topic)
	if err != nil {
		var apiErr *notegen.APIError
		switch {
		case errors.Is(err, notegen.ErrMissingCredential):
			logger(c).Warn("note generator is not configured")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Note generation is not configured. Please contact an administrator."})
		case errors.As(err, &apiErr):
			logger(c).Error("note generator rejected request", slog.Int("status", apiErr.Status), slog.String("error", apiErr.Message))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Note generation failed: " + apiErr.Message})
		case errors.Is(err, notegen.ErrNoContent):
			c.JSON(http.StatusBadGateway, gin.H{"error": "The generator returned an empty note. Please try again."})
		default:
			logger(c).Error("note generation failed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Could not reach the note generator. Please try again later."})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": req.Topic, "note": note})
}
