package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/core/services"
	"teleconsult/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService := services.NewAuthService("test-secret", 15*time.Minute, time.Hour, memory.NewMemoryUserRepository())
	user, err := authService.Register(context.Background(), "alice@example.com", "password123", "Alice", "Adams", domain.RolePatient)
	require.NoError(t, err)
	token, err := authService.GenerateToken(user)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", AuthMiddleware(authService), func(c *gin.Context) {
		id, ok := UserIDFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	router.GET("/doctors-only", AuthMiddleware(authService), RequireRole(domain.RoleDoctor), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router, token
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router, token := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router, token := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	router, token := setupAuthRouter(t)

	// The registered user is a patient; the doctors-only route refuses them.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/doctors-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
