package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"autoserve/models"

	"github.com/go-redis/redis/v8"
)

// SessionStore persists diagnosis session state between turns. Sessions are
// short-lived conversational state, not durable records, so the default
// implementation keeps them in Redis with a TTL.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.DiagnosisSession, error)
	Save(ctx context.Context, session *models.DiagnosisSession) error
	Delete(ctx context.Context, sessionID string) error
}

const sessionKeyPrefix = "diagnosis:"

// RedisSessionStore implements SessionStore on a Redis client.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.DiagnosisSession, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load diagnosis session: %w", err)
	}

	var session models.DiagnosisSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to parse diagnosis session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.DiagnosisSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnosis session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.SessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store diagnosis session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete diagnosis session: %w", err)
	}
	return nil
}
