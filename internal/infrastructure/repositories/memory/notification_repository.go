package memory

import (
	"context"
	"sort"
	"sync"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/core/ports"
)

type MemoryNotificationRepository struct {
	notifications map[domain.NotificationID]*domain.Notification
	mu            sync.RWMutex
}

func NewMemoryNotificationRepository() ports.NotificationRepository {
	return &MemoryNotificationRepository{
		notifications: make(map[domain.NotificationID]*domain.Notification),
	}
}

func (r *MemoryNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications[n.ID] = n
	return nil
}

func (r *MemoryNotificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notifications[n.ID]; !exists {
		return domain.ErrNotificationNotFound
	}
	r.notifications[n.ID] = n
	return nil
}

func (r *MemoryNotificationRepository) ListByRecipient(ctx context.Context, id domain.UserID) ([]*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Notification
	for _, n := range r.notifications {
		if n.RecipientID == id {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryNotificationRepository) MarkRead(ctx context.Context, id domain.NotificationID, recipient domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, exists := r.notifications[id]
	if !exists || n.RecipientID != recipient {
		return domain.ErrNotificationNotFound
	}
	n.Read = true
	return nil
}
