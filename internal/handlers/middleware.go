package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brainself/internal/access"
)

const (
	sessionKey = "session"
	tokenKey   = "token"
)

// TokenVerifier проверяет токен и возвращает identity
type TokenVerifier interface {
	CurrentUser(ctx context.Context, token string) (uuid.UUID, error)
}

// SessionResolver определяет роль identity
type SessionResolver interface {
	Resolve(ctx context.Context, identity *uuid.UUID) access.Session
}

// bearerToken достает токен из заголовка Authorization или cookie
func bearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie("jwt"); err == nil {
		return cookie
	}
	// браузерный websocket не умеет ставить заголовки
	if c.IsWebsocket() {
		return c.Query("token")
	}
	return ""
}

// SessionMiddleware определяет сессию для каждого запроса.
// Без токена или с недействительным токеном сессия анонимная; решение принимает Gate.
func SessionMiddleware(tokens TokenVerifier, resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := access.Anonymous()
		if token := bearerToken(c); token != "" {
			userID, err := tokens.CurrentUser(c.Request.Context(), token)
			if err == nil {
				session = resolver.Resolve(c.Request.Context(), &userID)
				c.Set(tokenKey, token)
			} else {
				logger(c).Debug("token rejected", slog.String("error", err.Error()))
			}
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// SessionFrom возвращает сессию запроса
func SessionFrom(c *gin.Context) access.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(access.Session); ok {
			return s
		}
	}
	return access.Anonymous()
}

// Gate пропускает запрос дальше только при достаточной роли.
// Отказ происходит до обработчика, поэтому данные не запрашиваются.
func Gate(req access.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch access.Check(SessionFrom(c), req) {
		case access.Allow:
			c.Next()
		case access.Pending:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "role is still loading"})
		case access.LoginRequired:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "access denied",
				"message":  "You do not have permission to view this page.",
				"required": req.String(),
			})
		}
	}
}

// RequestLogger пишет каждый запрос в slog и кладет логгер в контекст
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(loggerKey, log)
		c.Next()

		level := slog.LevelInfo
		switch status := c.Writer.Status(); {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		log.Log(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
		)
	}
}

// originSet множество разрешенных доменов; "*" или пустой список дают пустое множество
func originSet(allowed []string) map[string]struct{} {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return map[string]struct{}{}
		}
		set[o] = struct{}{}
	}
	return set
}

// CORSMiddleware создает middleware для CORS. Пустой список разрешает все домены.
func CORSMiddleware(allowed []string) gin.HandlerFunc {
	allowedSet := originSet(allowed)
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case len(allowedSet) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := allowedSet[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer-when-downgrade")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
