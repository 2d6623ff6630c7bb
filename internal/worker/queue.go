package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned by Pop when nothing arrived within the timeout.
var ErrQueueEmpty = errors.New("queue empty")

// Queue is a FIFO of raw event payloads.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	Push(ctx context.Context, raw []byte) error
}

// RedisQueue is a Queue backed by a Redis list (RPUSH / BLPOP).
type RedisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedisQueue creates a RedisQueue on the given list key.
func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	item, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, err
	}
	if len(item) < 2 {
		return nil, ErrQueueEmpty
	}
	return []byte(item[1]), nil
}

func (q *RedisQueue) Push(ctx context.Context, raw []byte) error {
	return q.rdb.RPush(ctx, q.key, raw).Err()
}

// Len reports the backlog, used by the readiness probe.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
