package coldstore

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rxtech-lab/tradelog/pkg/errors"
)

// Sequence hands out monotonically increasing archive version numbers per
// scope key (kind:bot:date).
type Sequence interface {
	Next(ctx context.Context, key string) (int64, error)
}

// LocalSequence is an in-process counter seeded at 1 per process lifetime.
// Restarts reset the numbering: this is a soft dedup aid, not a consistency
// guarantee. Deployments needing strict dedup use the Redis or hot-store
// backed sequence instead.
type LocalSequence struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewLocalSequence creates an empty in-process sequence.
func NewLocalSequence() *LocalSequence {
	return &LocalSequence{counters: make(map[string]int64)}
}

// Next implements Sequence.
func (s *LocalSequence) Next(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[key]++

	return s.counters[key], nil
}

// RedisSequence is a Redis INCR-backed sequence: strictly monotonic across
// restarts and concurrent processes.
type RedisSequence struct {
	client *redis.Client
	prefix string
}

// NewRedisSequence connects a sequence to Redis. Keys are namespaced under
// the given prefix.
func NewRedisSequence(addr, password string, db int, prefix string) *RedisSequence {
	return &RedisSequence{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: prefix,
	}
}

// Next implements Sequence.
func (s *RedisSequence) Next(ctx context.Context, key string) (int64, error) {
	value, err := s.client.Incr(ctx, s.prefix+key).Result()
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeSequenceFailed, err, "failed to increment sequence %s", key)
	}

	return value, nil
}

// Close releases the Redis connection.
func (s *RedisSequence) Close() error {
	return s.client.Close()
}
