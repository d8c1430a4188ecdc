package memory

import (
	"context"
	"sync"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/core/ports"
)

type MemoryMessageRepository struct {
	byAppointment map[domain.AppointmentID][]*domain.Message
	mu            sync.RWMutex
}

func NewMemoryMessageRepository() ports.MessageRepository {
	return &MemoryMessageRepository{
		byAppointment: make(map[domain.AppointmentID][]*domain.Message),
	}
}

func (r *MemoryMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byAppointment[msg.AppointmentID] = append(r.byAppointment[msg.AppointmentID], msg)
	return nil
}

func (r *MemoryMessageRepository) ListByAppointment(ctx context.Context, id domain.AppointmentID) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.byAppointment[id]
	out := make([]*domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (r *MemoryMessageRepository) MarkRead(ctx context.Context, id domain.AppointmentID, reader domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.byAppointment[id] {
		if m.RecipientID == reader {
			m.Read = true
		}
	}
	return nil
}
