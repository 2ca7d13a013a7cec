package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Service is a JSON-valued Redis cache.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error

	// Generation returns the counter stored at key, 0 when absent.
	Generation(ctx context.Context, key string) (int64, error)
	// Bump increments the counter at key and refreshes its TTL.
	Bump(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// SetIfGeneration stores value only while the counter at genKey still
	// equals gen. It reports whether the value was written.
	SetIfGeneration(ctx context.Context, genKey string, gen int64, key string, value interface{}, ttl time.Duration) (bool, error)
}

// KEYS[1] generation counter, KEYS[2] value key
// ARGV[1] expected generation, ARGV[2] payload, ARGV[3] ttl in ms
var setIfGenerationScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
	current = '0'
end
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

type service struct {
	client redis.UniversalClient
}

func NewService(client redis.UniversalClient) Service {
	return &service{client: client}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}

	return nil
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	// string keeps the stored value readable from redis-cli and matchable in redismock
	if err := s.client.Set(ctx, key, string(data), ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}

	return nil
}

func (s *service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (s *service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *service) Generation(ctx context.Context, key string) (int64, error) {
	gen, err := s.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("cache generation error: %w", err)
	}
	return gen, nil
}

func (s *service) Bump(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	gen, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache bump error: %w", err)
	}
	if ttl > 0 {
		if err := s.client.PExpire(ctx, key, ttl).Err(); err != nil {
			return gen, fmt.Errorf("cache bump expire error: %w", err)
		}
	}
	return gen, nil
}

func (s *service) SetIfGeneration(ctx context.Context, genKey string, gen int64, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("cache marshal error: %w", err)
	}

	stored, err := setIfGenerationScript.Run(ctx, s.client, []string{genKey, key},
		strconv.FormatInt(gen, 10), string(data), ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("cache guarded set error: %w", err)
	}
	return stored == 1, nil
}
