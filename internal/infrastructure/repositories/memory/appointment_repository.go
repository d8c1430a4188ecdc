package memory

import (
	"context"
	"sort"
	"sync"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/core/ports"
)

type MemoryAppointmentRepository struct {
	appointments map[domain.AppointmentID]*domain.Appointment
	mu           sync.RWMutex
}

func NewMemoryAppointmentRepository() ports.AppointmentRepository {
	return &MemoryAppointmentRepository{
		appointments: make(map[domain.AppointmentID]*domain.Appointment),
	}
}

func (r *MemoryAppointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.appointments[appt.ID] = appt
	return nil
}

func (r *MemoryAppointmentRepository) GetByID(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, exists := r.appointments[id]
	if !exists {
		return nil, domain.ErrAppointmentNotFound
	}
	return appt, nil
}

func (r *MemoryAppointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.appointments[appt.ID]; !exists {
		return domain.ErrAppointmentNotFound
	}
	r.appointments[appt.ID] = appt
	return nil
}

func (r *MemoryAppointmentRepository) ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Appointment
	for _, a := range r.appointments {
		if a.HasParticipant(userID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}
