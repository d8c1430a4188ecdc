package services

import (
	"context"
	"fmt"
	"time"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/core/ports"

	"go.uber.org/zap"
)

// Template holds the rendered text for one notification type.
type Template struct {
	Title        string
	Message      string
	EmailSubject string
}

// RenderTemplate produces title, message and email subject for a
// notification type. Unknown types get a generic template.
func RenderTemplate(typ domain.NotificationType, data map[string]string) Template {
	get := func(key string) string { return data[key] }

	switch typ {
	case domain.NotificationAppointmentRequest:
		return Template{
			Title:        "New Appointment Request",
			Message:      fmt.Sprintf("%s has requested an appointment for %s. Please review and respond to this request.", get("patient_name"), get("appointment_date")),
			EmailSubject: "New Appointment Request - TeleConsult",
		}
	case domain.NotificationAppointmentConfirmed:
		return Template{
			Title:        "Appointment Confirmed",
			Message:      fmt.Sprintf("Your appointment with Dr. %s has been confirmed for %s. You will receive a reminder before your consultation.", get("doctor_name"), get("appointment_date")),
			EmailSubject: "Appointment Confirmed - TeleConsult",
		}
	case domain.NotificationAppointmentCancelled:
		return Template{
			Title:        "Appointment Cancelled",
			Message:      fmt.Sprintf("Your appointment scheduled for %s has been cancelled. If you need to reschedule, please book a new appointment.", get("appointment_date")),
			EmailSubject: "Appointment Cancelled - TeleConsult",
		}
	case domain.NotificationAppointmentCompleted:
		return Template{
			Title:        "Consultation Completed",
			Message:      "Your consultation has been completed successfully. Prescription and consultation notes are now available in your dashboard.",
			EmailSubject: "Consultation Completed - TeleConsult",
		}
	case domain.NotificationNewMessage:
		return Template{
			Title:        "New Message",
			Message:      fmt.Sprintf("You have a new message from %s. Please check your messages for details.", get("sender_name")),
			EmailSubject: "New Message - TeleConsult",
		}
	case domain.NotificationVideoCallRequest:
		return Template{
			Title:        "Incoming Video Call",
			Message:      fmt.Sprintf("%s is requesting a video consultation. Please join the call when ready.", get("caller_name")),
			EmailSubject: "Video Call Request - TeleConsult",
		}
	case domain.NotificationPrescriptionAdded:
		return Template{
			Title:        "New Prescription Available",
			Message:      fmt.Sprintf("Dr. %s has added a prescription to your consultation. Please review the medication details and instructions.", get("doctor_name")),
			EmailSubject: "New Prescription - TeleConsult",
		}
	}

	return Template{
		Title:        "Notification",
		Message:      "You have a new notification.",
		EmailSubject: "Notification - TeleConsult",
	}
}

// emailedTypes lists notification types that also go out by email. Chat
// messages and call invites are real-time only.
var emailedTypes = map[domain.NotificationType]bool{
	domain.NotificationAppointmentRequest:   true,
	domain.NotificationAppointmentConfirmed: true,
	domain.NotificationAppointmentCancelled: true,
	domain.NotificationAppointmentCompleted: true,
	domain.NotificationPrescriptionAdded:    true,
}

type notificationService struct {
	notifications ports.NotificationRepository
	users         ports.UserRepository
	mailer        ports.Mailer
	logger        *zap.SugaredLogger
}

func NewNotificationService(notifications ports.NotificationRepository, users ports.UserRepository, mailer ports.Mailer, logger *zap.SugaredLogger) ports.Notifier {
	return &notificationService{
		notifications: notifications,
		users:         users,
		mailer:        mailer,
		logger:        logger,
	}
}

func (s *notificationService) Notify(ctx context.Context, recipient, sender domain.UserID, typ domain.NotificationType, data map[string]string) (*domain.Notification, error) {
	tpl := RenderTemplate(typ, data)

	n := &domain.Notification{
		ID:          domain.NotificationID(newID()),
		RecipientID: recipient,
		SenderID:    sender,
		Type:        typ,
		Title:       tpl.Title,
		Message:     tpl.Message,
		Data:        data,
		CreatedAt:   time.Now(),
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.mailer != nil && emailedTypes[typ] {
		if err := s.sendEmail(ctx, n, tpl); err != nil {
			// The notification is already persisted; email failure is
			// logged and not propagated.
			s.logger.Warnw("failed to send notification email",
				"notification_id", n.ID,
				"type", typ,
				"error", err,
			)
		} else {
			n.EmailSent = true
			if err := s.notifications.Update(ctx, n); err != nil {
				s.logger.Warnw("failed to record email delivery", "notification_id", n.ID, "error", err)
			}
		}
	}

	return n, nil
}

func (s *notificationService) sendEmail(ctx context.Context, n *domain.Notification, tpl Template) error {
	user, err := s.users.GetByID(ctx, n.RecipientID)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, user.Email, tpl.EmailSubject, tpl.Message)
}
