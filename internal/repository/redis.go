package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mailcast/mailcast/internal/model"
)

const (
	// redisKeysKey holds the registry as a list in registration order.
	redisKeysKey = "mailcast:api_keys"
	// redisTenantsKey holds one JSON record per tenant, keyed by API key.
	redisTenantsKey = "mailcast:tenants"
)

// Redis stores keys and tenants in Redis.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis backend from a redis:// URL.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Redis{client: client}, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// LoadKeys returns the registry in registration order.
func (r *Redis) LoadKeys(ctx context.Context) ([]model.APIKey, error) {
	values, err := r.client.LRange(ctx, redisKeysKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load API keys: %w", err)
	}

	keys := make([]model.APIKey, 0, len(values))
	for _, v := range values {
		keys = append(keys, model.APIKey(v))
	}
	return keys, nil
}

// SaveKeys replaces the registry atomically (MULTI/EXEC).
func (r *Redis) SaveKeys(ctx context.Context, keys []model.APIKey) error {
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = string(k)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKeysKey)
		if len(values) > 0 {
			pipe.RPush(ctx, redisKeysKey, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save API keys: %w", err)
	}
	return nil
}

// LoadTenants returns all tenants ordered by key.
func (r *Redis) LoadTenants(ctx context.Context) ([]model.Tenant, error) {
	raw, err := r.client.HGetAll(ctx, redisTenantsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}

	records := make(map[string]tenantRecord, len(raw))
	for key, data := range raw {
		var rec tenantRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode tenant record: %w", err)
		}
		records[key] = rec
	}
	return tenantsFromRecords(records), nil
}

// SaveTenants replaces the directory atomically (MULTI/EXEC).
func (r *Redis) SaveTenants(ctx context.Context, tenants []model.Tenant) error {
	fields := make(map[string]any, len(tenants))
	for _, t := range tenants {
		data, err := json.Marshal(toRecord(t))
		if err != nil {
			return fmt.Errorf("failed to encode tenant record: %w", err)
		}
		fields[string(t.APIKey)] = string(data)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisTenantsKey)
		if len(fields) > 0 {
			pipe.HSet(ctx, redisTenantsKey, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save tenants: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
