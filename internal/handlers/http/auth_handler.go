package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/core/services"
	apperrors "teleconsult/pkg/errors"
	"teleconsult/pkg/validation"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService    services.AuthService
	accessTokenTTL time.Duration
}

func NewAuthHandler(authService services.AuthService, accessTokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		accessTokenTTL: accessTokenTTL,
	}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/auth")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/refresh", h.RefreshToken)
	}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,max=254"`
	Password  string `json:"password" binding:"required,max=128"`
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name" binding:"required,max=50"`
	Role      string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required,max=2048"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInput("invalid request format"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if err := validation.ValidateEmail(req.Email); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}
	if err := validation.ValidateName(req.FirstName, "first_name"); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}
	if err := validation.ValidateName(req.LastName, "last_name"); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}

	role := domain.UserRole(req.Role)
	if role != domain.RoleDoctor && role != domain.RolePatient {
		c.Error(apperrors.NewInvalidInput("role must be doctor or patient"))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName, role)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			c.Error(apperrors.NewConflict("email already registered"))
			return
		}
		c.Error(apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to register user", http.StatusInternalServerError))
		return
	}

	h.respondWithTokens(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInput("invalid request format"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.Error(apperrors.NewUnauthorized("invalid email or password"))
			return
		}
		c.Error(apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to log in", http.StatusInternalServerError))
		return
	}

	h.respondWithTokens(c, http.StatusOK, user)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInput("invalid request format"))
		return
	}

	claims, err := h.authService.ValidateToken(req.RefreshToken)
	if err != nil {
		c.Error(apperrors.NewUnauthorized("invalid refresh token"))
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), req.RefreshToken)
	if err != nil || user.ID != claims.UserID {
		c.Error(apperrors.NewUnauthorized("invalid refresh token"))
		return
	}

	accessToken, err := h.authService.GenerateToken(user)
	if err != nil {
		c.Error(apperrors.NewInternal("failed to generate token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"expires_in":   int(h.accessTokenTTL / time.Second),
	})
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, status int, user *domain.User) {
	accessToken, err := h.authService.GenerateToken(user)
	if err != nil {
		c.Error(apperrors.NewInternal("failed to generate token"))
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken(user.ID)
	if err != nil {
		c.Error(apperrors.NewInternal("failed to generate refresh token"))
		return
	}

	c.JSON(status, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"role":       user.Role,
		},
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(h.accessTokenTTL / time.Second),
	})
}
