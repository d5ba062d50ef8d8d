package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brainself/internal/services"
)

// AuthHandler представляет обработчик авторизации
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler создает новый обработчик авторизации
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// SignUpRequest представляет запрос регистрации
type SignUpRequest struct {
	Email         string     `json:"email" binding:"required,email"`
	Password      string     `json:"password" binding:"required,min=6"`
	Nickname      string     `json:"nickname" binding:"required"`
	ContactNumber *string    `json:"contact_number"`
	ContactEmail  *string    `json:"contact_email" binding:"omitempty,email"`
	SchoolTagID   *uuid.UUID `json:"school_tag_id"`
}

// SignInRequest представляет запрос входа
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest представляет запрос смены пароля
type ChangePasswordRequest struct {
	Current string `json:"current_password" binding:"required"`
	Next    string `json:"new_password" binding:"required,min=6"`
}

// SignUp регистрирует пользователя с ролью ученика
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.authService.SignUp(c.Request.Context(), services.SignUpInput{
		Email:         req.Email,
		Password:      req.Password,
		Nickname:      req.Nickname,
		ContactNumber: req.ContactNumber,
		ContactEmail:  req.ContactEmail,
		SchoolTagID:   req.SchoolTagID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// SignIn выдает токен по email и паролю
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SignOut отзывает текущий токен
func (h *AuthHandler) SignOut(c *gin.Context) {
	token := c.GetString(tokenKey)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	if err := h.authService.SignOut(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// Refresh меняет текущий токен на новый
func (h *AuthHandler) Refresh(c *gin.Context) {
	result, err := h.authService.Refresh(c.Request.Context(), c.GetString(tokenKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ChangePassword меняет пароль текущего пользователя
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session := SessionFrom(c)
	if err := h.authService.ChangePassword(c.Request.Context(), session.UserID, req.Current, req.Next); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// GetSession возвращает текущую роль; анонимный запрос получает role = none
func (h *AuthHandler) GetSession(c *gin.Context) {
	s := SessionFrom(c)
	role := "none"
	if s.IsAuthenticated() {
		role = string(s.Role)
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": s.IsAuthenticated(),
		"role":          role,
		"is_teacher":    s.IsTeacher(),
		"is_admin":      s.IsAdmin(),
		"profile":       s.Profile,
	})
}
