package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore persists themes in Redis so preferences survive gateway
// restarts. Keys are prefs:<userID>, values the JSON-encoded theme.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping verifies connectivity at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (Theme, error) {
	data, err := s.client.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return Defaults(), nil
	}
	if err != nil {
		return Theme{}, fmt.Errorf("failed to read theme: %w", err)
	}

	var theme Theme
	if err := json.Unmarshal([]byte(data), &theme); err != nil {
		return Theme{}, fmt.Errorf("failed to decode theme: %w", err)
	}
	return theme, nil
}

func (s *RedisStore) Set(ctx context.Context, userID int64, theme Theme) error {
	data, err := json.Marshal(theme)
	if err != nil {
		return fmt.Errorf("failed to encode theme: %w", err)
	}
	if err := s.client.Set(ctx, key(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

func (s *RedisStore) Reset(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to reset theme: %w", err)
	}
	return nil
}

func key(userID int64) string {
	return fmt.Sprintf("prefs:%d", userID)
}
