package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/presencematic/whatsapp-orders/internal/models"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps sessions in Redis so several bot instances can share them.
// Expiry is delegated to Redis key TTLs.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore wraps an existing Redis client
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (r *RedisSessionStore) Get(ctx context.Context, sender string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+sender).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (r *RedisSessionStore) Set(ctx context.Context, sender string, session *models.Session) error {
	stored := session.Clone()
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now()
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	// A zero ttl means the key never expires
	if err := r.client.Set(ctx, sessionKeyPrefix+sender, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, sender string) error {
	return r.client.Del(ctx, sessionKeyPrefix+sender).Err()
}

// Expire is a no-op: Redis evicts keys itself once their TTL runs out
func (r *RedisSessionStore) Expire(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

func (r *RedisSessionStore) Count(ctx context.Context) (int, error) {
	count := 0
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}
	return count, nil
}
