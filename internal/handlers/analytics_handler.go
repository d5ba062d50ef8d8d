package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brainself/internal/analytics"
	"brainself/internal/services"
)

type AnalyticsHandler struct {
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(svc services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: svc}
}

// GET /api/teacher/analytics?search=&grade=&performance=
func (h *AnalyticsHandler) Report(c *gin.Context) {
	filter := analytics.Filter{
		Search:      c.Query("search"),
		GradeLevel:  c.Query("grade"),
		Performance: analytics.Performance(c.Query("performance")),
	}
	switch filter.Performance {
	case analytics.PerformanceAll, analytics.PerformanceExcellent, analytics.PerformanceGood,
		analytics.PerformanceAverage, analytics.PerformanceAtRisk, analytics.PerformanceNoData:
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown performance filter"})
		return
	}

	report, err := h.analytics.Report(c.Request.Context(), SessionFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /api/teacher/analytics/students/:nickname
func (h *AnalyticsHandler) StudentAnalysis(c *gin.Context) {
	result, err := h.analytics.StudentAnalysis(c.Request.Context(), SessionFrom(c), c.Param("nickname"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
