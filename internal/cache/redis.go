package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/sagoresarker/cabletrace/internal/config"
	"github.com/sagoresarker/cabletrace/internal/models"
)

// RedisStore shares cached runs between server instances.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisStore(client, cfg.KeyPrefix, ttl, logger), nil
}

func newRedisStore(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisStore) key(target string) string {
	return s.prefix + Key(target)
}

func (s *RedisStore) Get(ctx context.Context, target string) (models.Run, error) {
	data, err := s.client.Get(ctx, s.key(target)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Run{}, ErrNotFound
	}
	if err != nil {
		return models.Run{}, fmt.Errorf("failed to read cached run: %w", err)
	}

	var run models.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return models.Run{}, fmt.Errorf("failed to unmarshal cached run: %w", err)
	}
	return run, nil
}

func (s *RedisStore) Set(ctx context.Context, target string, run models.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := s.client.Set(ctx, s.key(target), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache run: %w", err)
	}
	s.logger.Debug("cached run", zap.String("target", Key(target)), zap.Int("hops", len(run.Hops)))
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// New picks the backend named in cfg.
func New(cfg config.CacheConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(cfg.Redis, cfg.TTL, logger)
	case "memory", "":
		return NewMemoryStore(cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
