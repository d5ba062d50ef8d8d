package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brainself/internal/services"
)

// StudentHandler личный кабинет: сводка и достижения
type StudentHandler struct {
	dashboard    services.DashboardService
	achievements services.AchievementService
}

func NewStudentHandler(dashboard services.DashboardService, achievements services.AchievementService) *StudentHandler {
	return &StudentHandler{
		dashboard:    dashboard,
		achievements: achievements,
	}
}

// GET /api/dashboard - Сводка текущего пользователя
func (h *StudentHandler) Dashboard(c *gin.Context) {
	d, err := h.dashboard.Get(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /api/achievements/catalog - Все достижения
func (h *StudentHandler) AchievementCatalog(c *gin.Context) {
	list, err := h.achievements.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"achievements": list})
}

// GET /api/achievements - Прогресс по достижениям
func (h *StudentHandler) Achievements(c *gin.Context) {
	overview, err := h.achievements.Progress(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
