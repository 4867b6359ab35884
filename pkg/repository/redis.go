package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/config"
	"github.com/example/stockdesk/pkg/models"
	"github.com/go-redis/redis/v8"
)

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

// GetJSON returns models.ErrNotFound when the key does not exist.
func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.ErrNotFound
		}
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func userKey(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("revoked:%s", tokenID)
}

// CacheUser stores the resolved identity so the access gate can skip the
// user lookup on every request.
func (r *RedisRepository) CacheUser(ctx context.Context, who auth.Identity) error {
	return r.SetJSON(ctx, userKey(who.UserID.Hex()), who, r.config.UserTTL)
}

func (r *RedisRepository) GetUserCache(ctx context.Context, userID string) (*auth.Identity, error) {
	var who auth.Identity
	if err := r.GetJSON(ctx, userKey(userID), &who); err != nil {
		return nil, err
	}
	return &who, nil
}

func (r *RedisRepository) InvalidateUser(ctx context.Context, userID string) error {
	return r.Del(ctx, userKey(userID))
}

// RevokeToken blacklists a token id for the rest of its lifetime.
func (r *RedisRepository) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err()
}

func (r *RedisRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
