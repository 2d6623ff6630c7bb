package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/lms-backend/internal/model"
)

const (
	StatsBatchSize    = 50
	StatsBatchTimeout = 2 * time.Second
	StatsPollTimeout  = 1 * time.Second
	// StatsMaxRetries bounds how often a rejected event is requeued before it is dropped.
	StatsMaxRetries = 5
)

// queuedEvent is a queue payload: a SubmissionEvent plus the number of times
// the worker already requeued it. Fresh events from the publisher carry no count.
type queuedEvent struct {
	model.SubmissionEvent
	Retries int `json:"retries,omitempty"`
}

// StatsSink persists aggregate quiz statistics.
type StatsSink interface {
	ApplyBatch(ctx context.Context, events []model.SubmissionEvent) error
	Apply(ctx context.Context, e model.SubmissionEvent) error
}

// StatsWorker folds graded submission events into per-quiz statistics.
type StatsWorker struct {
	queue Queue
	sink  StatsSink
	log   zerolog.Logger
}

// NewStatsWorker creates a new StatsWorker.
func NewStatsWorker(queue Queue, sink StatsSink, log zerolog.Logger) *StatsWorker {
	return &StatsWorker{
		queue: queue,
		sink:  sink,
		log:   log.With().Str("component", "stats_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start consumes the queue until ctx is cancelled, then flushes what it holds.
func (w *StatsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("StatsWorker started")

	batch := make([]queuedEvent, 0, StatsBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= StatsBatchSize || time.Since(lastFlush) >= StatsBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			raw, err := w.queue.Pop(ctx, StatsPollTimeout)
			if err != nil {
				if !errors.Is(err, ErrQueueEmpty) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("Queue pop error")
					// Back off so a dead Redis does not spin the loop.
					sleep(ctx, StatsPollTimeout)
				}
				continue
			}

			var ev queuedEvent
			if err := json.Unmarshal(raw, &ev); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, ev)
			if len(batch) == 1 {
				lastFlush = time.Now()
			}
		}
	}
}

// ----------------------------------------------------------------
// Batch upsert with per-row fallback
// ----------------------------------------------------------------

func (w *StatsWorker) flushSafe(ctx context.Context, batch []queuedEvent) {
	if len(batch) == 0 {
		return
	}

	events := make([]model.SubmissionEvent, len(batch))
	for i := range batch {
		events[i] = batch[i].SubmissionEvent
	}

	if err := w.sink.ApplyBatch(ctx, events); err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("Bulk stats upsert failed, using fallback")

		for _, ev := range batch {
			if err := w.sink.Apply(ctx, ev.SubmissionEvent); err != nil {
				w.requeue(ctx, ev, err)
			}
		}
		return
	}

	w.log.Debug().Int("size", len(batch)).Msg("Stats batch applied")
}

// requeue pushes a rejected event back with its retry count bumped, or drops
// it once StatsMaxRetries is reached.
func (w *StatsWorker) requeue(ctx context.Context, ev queuedEvent, cause error) {
	logEv := w.log.With().Err(cause).Str("result_id", ev.ResultID.String()).Int("retries", ev.Retries).Logger()
	if ev.Retries >= StatsMaxRetries {
		logEv.Error().Msg("Single stats upsert failed too often, event dropped")
		return
	}

	ev.Retries++
	raw, err := json.Marshal(ev)
	if err != nil {
		logEv.Error().Err(err).Msg("Requeue marshal failed, event dropped")
		return
	}
	if err := w.queue.Push(ctx, raw); err != nil {
		logEv.Error().Err(err).Msg("Requeue failed, event dropped")
		return
	}
	logEv.Warn().Msg("Single stats upsert failed, requeued")
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
