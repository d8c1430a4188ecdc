package domain

import "time"

type AppointmentID string

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is the consultation record that scopes one chat room and at
// most one call between its two participants.
type Appointment struct {
	ID              AppointmentID
	PatientID       UserID
	DoctorID        UserID
	ScheduledAt     time.Time
	Duration        time.Duration
	Status          AppointmentStatus
	Symptoms        string
	Notes           string
	ConsultationFee int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasParticipant reports whether id is one of the two designated
// participants of the consultation.
func (a *Appointment) HasParticipant(id UserID) bool {
	return a.PatientID == id || a.DoctorID == id
}

// OtherParticipant returns the counterpart of id, or empty if id is not a
// participant.
func (a *Appointment) OtherParticipant(id UserID) UserID {
	switch id {
	case a.PatientID:
		return a.DoctorID
	case a.DoctorID:
		return a.PatientID
	}
	return ""
}
