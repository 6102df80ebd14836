package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"darbot/internal/booking"
)

// RedisStore keeps sessions in redis as JSON with a TTL, so dialogs survive
// bot restarts and expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("darbot:session:%d", userID)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (*booking.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session %d: %w", userID, err)
	}

	var s booking.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", userID, err)
	}
	return &s, nil
}

func (r *RedisStore) Set(ctx context.Context, session *booking.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", session.UserID, err)
	}
	if err := r.client.Set(ctx, sessionKey(session.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %d: %w", session.UserID, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete session %d: %w", userID, err)
	}
	return nil
}

// Ping verifies connectivity at startup.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
