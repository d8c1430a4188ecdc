package services

import (
	"context"
	"fmt"
	"time"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/core/ports"
)

type AppointmentService interface {
	Book(ctx context.Context, patientID, doctorID domain.UserID, scheduledAt time.Time, duration time.Duration, symptoms string, fee int) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, apptID domain.AppointmentID, actor domain.UserID, status domain.AppointmentStatus) (*domain.Appointment, error)
	ListForUser(ctx context.Context, userID domain.UserID) ([]*domain.Appointment, error)
	GetAppointment(ctx context.Context, apptID domain.AppointmentID) (*domain.Appointment, error)
	IsParticipant(ctx context.Context, apptID domain.AppointmentID, userID domain.UserID) (bool, error)
}

type appointmentService struct {
	appointments ports.AppointmentRepository
	users        ports.UserRepository
	notifier     ports.Notifier
}

func NewAppointmentService(appointments ports.AppointmentRepository, users ports.UserRepository, notifier ports.Notifier) AppointmentService {
	return &appointmentService{
		appointments: appointments,
		users:        users,
		notifier:     notifier,
	}
}

func (s *appointmentService) Book(ctx context.Context, patientID, doctorID domain.UserID, scheduledAt time.Time, duration time.Duration, symptoms string, fee int) (*domain.Appointment, error) {
	patient, err := s.users.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	doctor, err := s.users.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != domain.RoleDoctor {
		return nil, fmt.Errorf("user %s is not a doctor", doctorID)
	}

	if duration <= 0 {
		duration = 30 * time.Minute
	}

	appt := &domain.Appointment{
		ID:              domain.AppointmentID(newID()),
		PatientID:       patientID,
		DoctorID:        doctorID,
		ScheduledAt:     scheduledAt,
		Duration:        duration,
		Status:          domain.AppointmentPending,
		Symptoms:        symptoms,
		ConsultationFee: fee,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		// Best effort; booking succeeds even if the notification fails.
		_, _ = s.notifier.Notify(ctx, doctorID, patientID, domain.NotificationAppointmentRequest, map[string]string{
			"appointment_id":   string(appt.ID),
			"patient_name":     patient.FullName(),
			"appointment_date": scheduledAt.Format(time.RFC1123),
		})
	}

	return appt, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, apptID domain.AppointmentID, actor domain.UserID, status domain.AppointmentStatus) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if !appt.HasParticipant(actor) {
		return nil, domain.ErrNotParticipant
	}

	appt.Status = status
	appt.UpdatedAt = time.Now()
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		recipient := appt.OtherParticipant(actor)
		var typ domain.NotificationType
		switch status {
		case domain.AppointmentConfirmed:
			typ = domain.NotificationAppointmentConfirmed
		case domain.AppointmentCancelled:
			typ = domain.NotificationAppointmentCancelled
		case domain.AppointmentCompleted:
			typ = domain.NotificationAppointmentCompleted
		}
		if typ != "" {
			actorUser, uerr := s.users.GetByID(ctx, actor)
			data := map[string]string{
				"appointment_id":   string(appt.ID),
				"appointment_date": appt.ScheduledAt.Format(time.RFC1123),
			}
			if uerr == nil {
				data["doctor_name"] = actorUser.FullName()
			}
			_, _ = s.notifier.Notify(ctx, recipient, actor, typ, data)
		}
	}

	return appt, nil
}

func (s *appointmentService) ListForUser(ctx context.Context, userID domain.UserID) ([]*domain.Appointment, error) {
	return s.appointments.ListByUser(ctx, userID)
}

func (s *appointmentService) GetAppointment(ctx context.Context, apptID domain.AppointmentID) (*domain.Appointment, error) {
	return s.appointments.GetByID(ctx, apptID)
}

func (s *appointmentService) IsParticipant(ctx context.Context, apptID domain.AppointmentID, userID domain.UserID) (bool, error) {
	appt, err := s.appointments.GetByID(ctx, apptID)
	if err != nil {
		return false, err
	}
	return appt.HasParticipant(userID), nil
}
