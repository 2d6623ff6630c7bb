package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/lms-backend/internal/config"
	"github.com/stemsi/lms-backend/internal/model"
)

// ResultPublisher announces graded submissions: live monitors receive them
// over PubSub and the stats worker consumes them from a list.
type ResultPublisher struct {
	rdb *redis.Client
}

// NewResultPublisher creates a ResultPublisher.
func NewResultPublisher(rdb *redis.Client) *ResultPublisher {
	return &ResultPublisher{rdb: rdb}
}

// Publish sends the event to the quiz channel and the stats queue in one pipeline.
func (p *ResultPublisher) Publish(ctx context.Context, ev model.SubmissionEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := p.rdb.Pipeline()
	pipe.Publish(ctx, config.CacheKey.QuizResultsChannel(ev.QuizID), raw)
	pipe.RPush(ctx, config.WorkerKey.QuizStatsQueue, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
