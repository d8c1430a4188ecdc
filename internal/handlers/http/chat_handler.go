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

// ChatHandler serves chat history over REST. Live delivery happens over the
// WebSocket relay; this endpoint exists for clients catching up after a
// reconnect.
type ChatHandler struct {
	messages     ports.MessageRepository
	appointments services.AppointmentService
	authService  services.AuthService
}

func NewChatHandler(messages ports.MessageRepository, appointments services.AppointmentService, authService services.AuthService) *ChatHandler {
	return &ChatHandler{
		messages:     messages,
		appointments: appointments,
		authService:  authService,
	}
}

func (h *ChatHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/appointments/:id/messages")
	api.Use(middleware.AuthMiddleware(h.authService))
	{
		api.GET("", h.History)
		api.POST("/read", h.MarkRead)
	}
}

func (h *ChatHandler) History(c *gin.Context) {
	userID, apptID, ok := h.authorize(c)
	if !ok {
		return
	}

	msgs, err := h.messages.ListByAppointment(c.Request.Context(), apptID)
	if err != nil {
		c.Error(apperrors.NewInternal("failed to load messages"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"appointment_id": apptID,
		"messages":       msgs,
		"requested_by":   userID,
	})
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, apptID, ok := h.authorize(c)
	if !ok {
		return
	}

	if err := h.messages.MarkRead(c.Request.Context(), apptID, userID); err != nil {
		c.Error(apperrors.NewInternal("failed to mark messages read"))
		return
	}

	c.Status(http.StatusNoContent)
}

// authorize resolves the caller and checks they participate in the
// appointment the route names. A miss is reported as not found so the
// endpoint does not reveal which appointments exist.
func (h *ChatHandler) authorize(c *gin.Context) (domain.UserID, domain.AppointmentID, bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.Error(apperrors.NewUnauthorized("authentication required"))
		return "", "", false
	}

	apptID := domain.AppointmentID(c.Param("id"))
	participant, err := h.appointments.IsParticipant(c.Request.Context(), apptID, userID)
	if err != nil || !participant {
		c.Error(apperrors.NewNotFound("appointment"))
		return "", "", false
	}
	return userID, apptID, true
}
