package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brainself/internal/access"
	"brainself/internal/services"
	"brainself/pkg/notegen"
)

const loggerKey = "logger"

// statusOf сопоставляет ошибку сервиса и HTTP статус
func statusOf(err error) int {
	switch {
	case errors.Is(err, access.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, access.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, access.ErrRoleLoading):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, notegen.ErrMissingCredential):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError отвечает клиенту по типу ошибки. Неизвестные ошибки уходят в лог, клиент видит общий текст.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	body := gin.H{"error": err.Error()}

	switch {
	case errors.Is(err, access.ErrNotAuthenticated):
		body["error"] = "login required"
	case errors.Is(err, access.ErrForbidden):
		body["error"] = "access denied"
		body["message"] = "You do not have permission to view this page."
	case errors.Is(err, services.ErrNotFound):
		body["not_found"] = true
	case errors.Is(err, services.ErrPartialFailure):
		body["incomplete"] = true
		logger(c).Error("partial failure", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	case status == http.StatusInternalServerError:
		logger(c).Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		body["error"] = "something went wrong"
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func logger(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}

// paramID разбирает uuid из параметра пути
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
