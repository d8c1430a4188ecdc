package http

import (
	"net/http"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/core/ports"
	"teleconsult/internal/core/services"
	"teleconsult/internal/infrastructure/middleware"
	apperrors "teleconsult/pkg/errors"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications ports.NotificationRepository
	authService   services.AuthService
}

func NewNotificationHandler(notifications ports.NotificationRepository, authService services.AuthService) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		authService:   authService,
	}
}

func (h *NotificationHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/notifications")
	api.Use(middleware.AuthMiddleware(h.authService))
	{
		api.GET("", h.List)
		api.POST("/:id/read", h.MarkRead)
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.Error(apperrors.NewUnauthorized("authentication required"))
		return
	}

	list, err := h.notifications.ListByRecipient(c.Request.Context(), userID)
	if err != nil {
		c.Error(apperrors.NewInternal("failed to load notifications"))
		return
	}

	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": list,
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.Error(apperrors.NewUnauthorized("authentication required"))
		return
	}

	id := domain.NotificationID(c.Param("id"))
	if err := h.notifications.MarkRead(c.Request.Context(), id, userID); err != nil {
		c.Error(apperrors.NewNotFound("notification"))
		return
	}

	c.Status(http.StatusNoContent)
}
