package services

import (
	"context"
	"testing"
	"time"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type appointmentFixture struct {
	svc     AppointmentService
	patient *domain.User
	doctor  *domain.User
	inbox   *memory.MemoryNotificationRepository
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	ctx := context.Background()

	users := memory.NewMemoryUserRepository()
	patient := &domain.User{ID: "patient-1", Email: "p@example.com", FirstName: "Alice", LastName: "Adams", Role: domain.RolePatient}
	doctor := &domain.User{ID: "doctor-1", Email: "d@example.com", FirstName: "Bob", LastName: "Brown", Role: domain.RoleDoctor}
	require.NoError(t, users.Create(ctx, patient))
	require.NoError(t, users.Create(ctx, doctor))

	notifications := memory.NewMemoryNotificationRepository().(*memory.MemoryNotificationRepository)
	notifier := NewNotificationService(notifications, users, nil, zap.NewNop().Sugar())

	return &appointmentFixture{
		svc:     NewAppointmentService(memory.NewMemoryAppointmentRepository(), users, notifier),
		patient: patient,
		doctor:  doctor,
		inbox:   notifications,
	}
}

func TestAppointmentService_Book(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()
	when := time.Now().Add(24 * time.Hour)

	appt, err := f.svc.Book(ctx, f.patient.ID, f.doctor.ID, when, time.Hour, "headache", 50)
	require.NoError(t, err)

	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, domain.AppointmentPending, appt.Status)
	assert.Equal(t, time.Hour, appt.Duration)

	// The doctor is notified of the request.
	inbox, err := f.inbox.ListByRecipient(ctx, f.doctor.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationAppointmentRequest, inbox[0].Type)
}

func TestAppointmentService_BookDefaultsDuration(t *testing.T) {
	f := newAppointmentFixture(t)

	appt, err := f.svc.Book(context.Background(), f.patient.ID, f.doctor.ID, time.Now(), 0, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, appt.Duration)
}

func TestAppointmentService_BookRejectsNonDoctor(t *testing.T) {
	f := newAppointmentFixture(t)

	_, err := f.svc.Book(context.Background(), f.doctor.ID, f.patient.ID, time.Now(), time.Hour, "", 0)
	assert.Error(t, err)
}

func TestAppointmentService_UpdateStatus(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.patient.ID, f.doctor.ID, time.Now().Add(time.Hour), time.Hour, "", 0)
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(ctx, appt.ID, f.doctor.ID, domain.AppointmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentConfirmed, updated.Status)

	// The patient hears about the confirmation.
	inbox, err := f.inbox.ListByRecipient(ctx, f.patient.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationAppointmentConfirmed, inbox[0].Type)
}

func TestAppointmentService_UpdateStatusRejectsOutsider(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.patient.ID, f.doctor.ID, time.Now(), time.Hour, "", 0)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, appt.ID, "stranger", domain.AppointmentCancelled)
	assert.ErrorIs(t, err, domain.ErrNotParticipant)
}

func TestAppointmentService_IsParticipant(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.patient.ID, f.doctor.ID, time.Now(), time.Hour, "", 0)
	require.NoError(t, err)

	for _, id := range []domain.UserID{f.patient.ID, f.doctor.ID} {
		ok, err := f.svc.IsParticipant(ctx, appt.ID, id)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := f.svc.IsParticipant(ctx, appt.ID, "stranger")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.IsParticipant(ctx, "missing", f.patient.ID)
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
}

func TestAppointmentService_ListForUser(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	first, err := f.svc.Book(ctx, f.patient.ID, f.doctor.ID, time.Now().Add(2*time.Hour), time.Hour, "", 0)
	require.NoError(t, err)
	second, err := f.svc.Book(ctx, f.patient.ID, f.doctor.ID, time.Now().Add(time.Hour), time.Hour, "", 0)
	require.NoError(t, err)

	list, err := f.svc.ListForUser(ctx, f.patient.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Sorted by scheduled time, soonest first.
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}
