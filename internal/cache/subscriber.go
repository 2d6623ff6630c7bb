package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/lms-backend/internal/config"
)

// ResultSubscriber follows the live result channel of a quiz.
type ResultSubscriber struct {
	rdb *redis.Client
}

// NewResultSubscriber creates a ResultSubscriber.
func NewResultSubscriber(rdb *redis.Client) *ResultSubscriber {
	return &ResultSubscriber{rdb: rdb}
}

// Subscribe returns raw SubmissionEvent JSON payloads published for the quiz.
// The channel closes once ctx is done; the caller must invoke the returned
// close function.
func (s *ResultSubscriber) Subscribe(ctx context.Context, quizID uuid.UUID) (<-chan []byte, func() error, error) {
	pubsub := s.rdb.Subscribe(ctx, config.CacheKey.QuizResultsChannel(quizID))
	// Wait for the subscription confirmation so no event published after
	// this call returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe results: %w", err)
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, pubsub.Close, nil
}
