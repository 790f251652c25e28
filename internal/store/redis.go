package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"embruns/internal/models"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "embruns:session"

// RedisSessionRepository stores sessions as JSON values whose Redis TTL
// matches the session expiry, so expired sessions disappear on their own.
type RedisSessionRepository struct {
	rc *redis.Client
}

func NewRedisSessionRepository(rc *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{rc: rc}
}

func (r *RedisSessionRepository) key(role models.SessionRole, id string) string {
	return fmt.Sprintf("%s:%s:%s", sessionKeyPrefix, role, id)
}

func (r *RedisSessionRepository) Create(ctx context.Context, s *models.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	bytes, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.rc.Set(ctx, r.key(s.Role, s.ID), bytes, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) Get(ctx context.Context, role models.SessionRole, id string) (*models.Session, error) {
	result, err := r.rc.Get(ctx, r.key(role, id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal([]byte(result), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, role models.SessionRole, id string) error {
	if err := r.rc.Del(ctx, r.key(role, id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rc := redis.NewClient(opts)
	if err := rc.Ping(ctx).Err(); err != nil {
		rc.Close()
		return nil, fmt.Errorf("redis not reachable: %w", err)
	}
	return rc, nil
}
