package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-recipe-book/internal/logger"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
)

// SessionRedisRepository keeps sessions in Redis, expiring them with the key TTL
type SessionRedisRepository struct {
	client *redis.Client
}

// NewSessionRedisRepository creates a new repository instance
func NewSessionRedisRepository(client *redis.Client) *SessionRedisRepository {
	return &SessionRedisRepository{client: client}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("session:%s", id)
}

// Save stores the session until its ExpiresAt.
func (r *SessionRedisRepository) Save(ctx context.Context, s models.Session) error {
	key := sessionKey(s.ID)

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", s.ID)
	}

	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, b, ttl).Err()

	logger.Log.Infow(
		"key", key,
		"ttl", ttl,
		"result", "ok",
		"error", err,
	)

	return err
}

// Get returns the session with the given id, or nil if it is missing or expired.
func (r *SessionRedisRepository) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	key := sessionKey(id)

	b, err := r.client.Get(ctx, key).Bytes()

	logger.Log.Infow(
		"key", key,
		"found", err == nil,
		"error", err,
	)

	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s models.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (r *SessionRedisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	key := sessionKey(id)
	err := r.client.Del(ctx, key).Err()

	logger.Log.Infow(
		"key", key,
		"result", "deleted",
		"error", err,
	)

	return err
}
