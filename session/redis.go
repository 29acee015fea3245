package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	coreconfig "github.com/m3rciful/fishbot/core/config"
)

var _ Store = (*RedisStore)(nil)

// RedisStore persists sessions in Redis under one key per chat id.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies connectivity.
// A zero ttl keeps sessions until evicted by the server.
func NewRedisStore(ctx context.Context, cfg coreconfig.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	if cfg.DialTimeoutSeconds > 0 {
		opts.DialTimeout = time.Duration(cfg.DialTimeoutSeconds) * time.Second
	}
	if cfg.ReadTimeoutSeconds > 0 {
		opts.ReadTimeout = time.Duration(cfg.ReadTimeoutSeconds) * time.Second
	}
	if cfg.WriteTimeoutSeconds > 0 {
		opts.WriteTimeout = time.Duration(cfg.WriteTimeoutSeconds) * time.Second
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("session:%d", chatID)
}

// Get loads the session for a chat, mapping missing keys to ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, chatID int64) (Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("session get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}, fmt.Errorf("session decode: %w", err)
	}
	sess.ChatID = chatID
	return sess, nil
}

// Put stores the session and refreshes its TTL.
func (s *RedisStore) Put(ctx context.Context, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ChatID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
