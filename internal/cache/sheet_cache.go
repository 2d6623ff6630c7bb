// Package cache keeps grading sheets and submission events in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/lms-backend/internal/config"
	"github.com/stemsi/lms-backend/internal/grading"
)

var (
	// ErrCacheMiss is returned when a sheet is not cached.
	ErrCacheMiss = errors.New("cache miss")
	// ErrStaleSheet is returned by Set when the quiz changed after the sheet's
	// version was read.
	ErrStaleSheet = errors.New("sheet version changed")
)

// setIfVersion stores the sheet only while the version counter (missing
// counts as 0) equals the caller's version. ARGV[3] is the TTL in ms, 0 for none.
var setIfVersion = redis.NewScript(`
local v = redis.call('GET', KEYS[1]) or '0'
if v ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// SheetCache stores grading sheets so repeated submissions skip the question
// and option queries.
type SheetCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSheetCache creates a SheetCache. A zero ttl keeps entries until invalidated.
func NewSheetCache(rdb *redis.Client, ttl time.Duration) *SheetCache {
	return &SheetCache{rdb: rdb, ttl: ttl}
}

// Get loads a cached sheet.
func (c *SheetCache) Get(ctx context.Context, quizID uuid.UUID) (*grading.Sheet, error) {
	data, err := c.rdb.Get(ctx, config.CacheKey.QuizSheetKey(quizID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("get sheet: %w", err)
	}

	var sheet grading.Sheet
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("unmarshal sheet: %w", err)
	}
	return &sheet, nil
}

// Version returns the quiz's sheet version, 0 when it was never invalidated.
func (c *SheetCache) Version(ctx context.Context, quizID uuid.UUID) (int64, error) {
	v, err := c.rdb.Get(ctx, config.CacheKey.QuizSheetVersionKey(quizID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get sheet version: %w", err)
	}
	return v, nil
}

// Set caches a sheet built from data read at the given version. It returns
// ErrStaleSheet without writing when the quiz has been invalidated since.
func (c *SheetCache) Set(ctx context.Context, sheet *grading.Sheet, version int64) error {
	data, err := json.Marshal(sheet)
	if err != nil {
		return fmt.Errorf("marshal sheet: %w", err)
	}
	keys := []string{
		config.CacheKey.QuizSheetVersionKey(sheet.QuizID),
		config.CacheKey.QuizSheetKey(sheet.QuizID),
	}
	stored, err := setIfVersion.Run(ctx, c.rdb, keys, strconv.FormatInt(version, 10), data, c.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("set sheet: %w", err)
	}
	if stored == 0 {
		return ErrStaleSheet
	}
	return nil
}

// Invalidate bumps the quiz's sheet version and drops the cached sheet, so
// loads that started before the change cannot write their result back.
func (c *SheetCache) Invalidate(ctx context.Context, quizID uuid.UUID) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, config.CacheKey.QuizSheetVersionKey(quizID))
		pipe.Del(ctx, config.CacheKey.QuizSheetKey(quizID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate sheet: %w", err)
	}
	return nil
}
