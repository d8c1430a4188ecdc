package ports

import (
	"context"

	"teleconsult/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.UserRole) ([]*domain.User, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error)
	Update(ctx context.Context, appt *domain.Appointment) error
	ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.Appointment, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByAppointment(ctx context.Context, id domain.AppointmentID) ([]*domain.Message, error)
	MarkRead(ctx context.Context, id domain.AppointmentID, reader domain.UserID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	Update(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, id domain.UserID) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id domain.NotificationID, recipient domain.UserID) error
}
