package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// RedisNotificationRepository stores each notification as a JSON document
// with a per-recipient index set.
type RedisNotificationRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisNotificationRepository(client *redis.Client) ports.NotificationRepository {
	return &RedisNotificationRepository{
		client: client,
		prefix: "teleconsult:notification:",
	}
}

func (r *RedisNotificationRepository) key(id domain.NotificationID) string {
	return r.prefix + string(id)
}

func (r *RedisNotificationRepository) recipientKey(id domain.UserID) string {
	return r.prefix + "recipient:" + string(id)
}

func (r *RedisNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := r.client.Set(ctx, r.key(n.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set notification in Redis: %w", err)
	}
	if err := r.client.SAdd(ctx, r.recipientKey(n.RecipientID), string(n.ID)).Err(); err != nil {
		return fmt.Errorf("failed to index notification in Redis: %w", err)
	}
	return nil
}

func (r *RedisNotificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	exists, err := r.client.Exists(ctx, r.key(n.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check notification in Redis: %w", err)
	}
	if exists == 0 {
		return domain.ErrNotificationNotFound
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := r.client.Set(ctx, r.key(n.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update notification in Redis: %w", err)
	}
	return nil
}

func (r *RedisNotificationRepository) get(ctx context.Context, id domain.NotificationID) (*domain.Notification, error) {
	data, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification from Redis: %w", err)
	}

	var n domain.Notification
	if err := json.Unmarshal([]byte(data), &n); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	return &n, nil
}

func (r *RedisNotificationRepository) ListByRecipient(ctx context.Context, id domain.UserID) ([]*domain.Notification, error) {
	ids, err := r.client.SMembers(ctx, r.recipientKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications from Redis: %w", err)
	}

	out := make([]*domain.Notification, 0, len(ids))
	for _, nid := range ids {
		n, err := r.get(ctx, domain.NotificationID(nid))
		if err != nil {
			if err == domain.ErrNotificationNotFound {
				continue
			}
			return nil, err
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *RedisNotificationRepository) MarkRead(ctx context.Context, id domain.NotificationID, recipient domain.UserID) error {
	n, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != recipient {
		return domain.ErrNotificationNotFound
	}
	n.Read = true
	return r.Update(ctx, n)
}
