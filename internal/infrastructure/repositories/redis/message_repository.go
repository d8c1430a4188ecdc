package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// RedisMessageRepository stores chat history as a per-appointment list of
// JSON documents.
type RedisMessageRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisMessageRepository(client *redis.Client) ports.MessageRepository {
	return &RedisMessageRepository{
		client: client,
		prefix: "teleconsult:messages:",
	}
}

func (r *RedisMessageRepository) listKey(id domain.AppointmentID) string {
	return r.prefix + string(id)
}

func (r *RedisMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := r.client.RPush(ctx, r.listKey(msg.AppointmentID), data).Err(); err != nil {
		return fmt.Errorf("failed to append message in Redis: %w", err)
	}
	return nil
}

func (r *RedisMessageRepository) ListByAppointment(ctx context.Context, id domain.AppointmentID) ([]*domain.Message, error) {
	raw, err := r.client.LRange(ctx, r.listKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages from Redis: %w", err)
	}

	out := make([]*domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		out = append(out, &msg)
	}
	return out, nil
}

func (r *RedisMessageRepository) MarkRead(ctx context.Context, id domain.AppointmentID, reader domain.UserID) error {
	key := r.listKey(id)
	raw, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read messages from Redis: %w", err)
	}

	for i, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return fmt.Errorf("failed to unmarshal message: %w", err)
		}
		if msg.RecipientID != reader || msg.Read {
			continue
		}
		msg.Read = true
		data, err := json.Marshal(&msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		if err := r.client.LSet(ctx, key, int64(i), data).Err(); err != nil {
			return fmt.Errorf("failed to update message in Redis: %w", err)
		}
	}
	return nil
}
