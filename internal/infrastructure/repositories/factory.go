package repositories

import (
	"context"

	"teleconsult/internal/core/ports"
	"teleconsult/internal/infrastructure/repositories/memory"
	redisrepo "teleconsult/internal/infrastructure/repositories/redis"
	"teleconsult/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories, preferring Redis for the
// persistence collaborators (messages, notifications) when configured, with
// fallback to memory. User and appointment stores are memory regardless;
// presence and call state never touch a repository.
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories for messages and notifications")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

func (f *RepositoryFactory) CreateUserRepository() ports.UserRepository {
	return memory.NewMemoryUserRepository()
}

func (f *RepositoryFactory) CreateAppointmentRepository() ports.AppointmentRepository {
	return memory.NewMemoryAppointmentRepository()
}

func (f *RepositoryFactory) CreateMessageRepository() ports.MessageRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisMessageRepository(f.redisClient)
	}
	return memory.NewMemoryMessageRepository()
}

func (f *RepositoryFactory) CreateNotificationRepository() ports.NotificationRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisNotificationRepository(f.redisClient)
	}
	return memory.NewMemoryNotificationRepository()
}

// Close closes the Redis connection if used.
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks Redis connection health.
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
