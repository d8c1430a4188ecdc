package ports

import (
	"context"

	"teleconsult/internal/core/domain"
)

// Authenticator resolves a presented credential to a user. It is the gate a
// connection must pass before any registry state is created for it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// ParticipantChecker answers whether a user belongs to a consultation. Room
// subscriptions are refused for non-participants.
type ParticipantChecker interface {
	IsParticipant(ctx context.Context, apptID domain.AppointmentID, userID domain.UserID) (bool, error)
	GetAppointment(ctx context.Context, apptID domain.AppointmentID) (*domain.Appointment, error)
}

// Notifier raises persisted notifications as a side effect of relay events
// (new chat message, incoming call). Failures are logged, never propagated
// to the relay.
type Notifier interface {
	Notify(ctx context.Context, recipient, sender domain.UserID, typ domain.NotificationType, data map[string]string) (*domain.Notification, error)
}

// Mailer delivers a rendered notification by email, best effort.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
