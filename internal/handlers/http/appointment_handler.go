package http

import (
	"errors"
	"net/http"
	"time"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/core/services"
	"teleconsult/internal/infrastructure/middleware"
	apperrors "teleconsult/pkg/errors"
	"teleconsult/pkg/validation"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	appointments services.AppointmentService
	authService  services.AuthService
}

func NewAppointmentHandler(appointments services.AppointmentService, authService services.AuthService) *AppointmentHandler {
	return &AppointmentHandler{
		appointments: appointments,
		authService:  authService,
	}
}

func (h *AppointmentHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/appointments")
	api.Use(middleware.AuthMiddleware(h.authService))
	{
		api.POST("", h.Book)
		api.GET("", h.List)
		api.GET("/:id", h.Get)
		api.PATCH("/:id/status", h.UpdateStatus)
	}
}

type BookAppointmentRequest struct {
	DoctorID        string    `json:"doctor_id" binding:"required,max=100"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=5,max=180"`
	Symptoms        string    `json:"symptoms" binding:"max=2000"`
	ConsultationFee int       `json:"consultation_fee" binding:"omitempty,min=0"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AppointmentHandler) Book(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.Error(apperrors.NewUnauthorized("authentication required"))
		return
	}

	var req BookAppointmentRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInput("invalid request format"))
		return
	}
	if err := validation.ValidateID(req.DoctorID, "doctor_id"); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}

	appt, err := h.appointments.Book(c.Request.Context(),
		userID,
		domain.UserID(req.DoctorID),
		req.ScheduledAt,
		time.Duration(req.DurationMinutes)*time.Minute,
		req.Symptoms,
		req.ConsultationFee,
	)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.Error(apperrors.NewNotFound("doctor"))
			return
		}
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, appointmentResponse(appt))
}

func (h *AppointmentHandler) List(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.Error(apperrors.NewUnauthorized("authentication required"))
		return
	}

	appts, err := h.appointments.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(apperrors.NewInternal("failed to list appointments"))
		return
	}

	out := make([]gin.H, 0, len(appts))
	for _, a := range appts {
		out = append(out, appointmentResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"appointments": out})
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.Error(apperrors.NewUnauthorized("authentication required"))
		return
	}

	apptID := domain.AppointmentID(c.Param("id"))
	appt, err := h.appointments.GetAppointment(c.Request.Context(), apptID)
	if err != nil {
		c.Error(apperrors.NewNotFound("appointment"))
		return
	}
	if !appt.HasParticipant(userID) {
		// Do not leak whether the appointment exists.
		c.Error(apperrors.NewNotFound("appointment"))
		return
	}

	c.JSON(http.StatusOK, appointmentResponse(appt))
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.Error(apperrors.NewUnauthorized("authentication required"))
		return
	}

	var req UpdateStatusRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInput("invalid request format"))
		return
	}

	status := domain.AppointmentStatus(req.Status)
	switch status {
	case domain.AppointmentConfirmed, domain.AppointmentCompleted, domain.AppointmentCancelled:
	default:
		c.Error(apperrors.NewInvalidInput("status must be confirmed, completed or cancelled"))
		return
	}

	appt, err := h.appointments.UpdateStatus(c.Request.Context(), domain.AppointmentID(c.Param("id")), userID, status)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			c.Error(apperrors.NewNotFound("appointment"))
			return
		}
		if errors.Is(err, domain.ErrNotParticipant) {
			c.Error(apperrors.NewForbidden("not a participant of this appointment"))
			return
		}
		c.Error(apperrors.NewInternal("failed to update appointment"))
		return
	}

	c.JSON(http.StatusOK, appointmentResponse(appt))
}

func appointmentResponse(a *domain.Appointment) gin.H {
	return gin.H{
		"id":               a.ID,
		"patient_id":       a.PatientID,
		"doctor_id":        a.DoctorID,
		"scheduled_at":     a.ScheduledAt,
		"duration_minutes": int(a.Duration / time.Minute),
		"status":           a.Status,
		"symptoms":         a.Symptoms,
		"notes":            a.Notes,
		"consultation_fee": a.ConsultationFee,
		"created_at":       a.CreatedAt,
		"updated_at":       a.UpdatedAt,
	}
}
