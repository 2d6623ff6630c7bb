package repository

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/lms-backend/internal/model"
)

// QuizStatsRepository maintains per-quiz aggregate statistics.
type QuizStatsRepository struct {
	pool *pgxpool.Pool
}

// NewQuizStatsRepository creates a new QuizStatsRepository.
func NewQuizStatsRepository(pool *pgxpool.Pool) *QuizStatsRepository {
	return &QuizStatsRepository{pool: pool}
}

// ApplyBatch folds a batch of submission events into quiz_stats with a single
// statement. Events are grouped per quiz first because ON CONFLICT cannot touch
// the same row twice.
func (r *QuizStatsRepository) ApplyBatch(ctx context.Context, events []model.SubmissionEvent) error {
	n := len(events)
	if n == 0 {
		return nil
	}

	quizIDs := make([]uuid.UUID, n)
	passed := make([]bool, n)
	percentages := make([]float64, n)
	for i, e := range events {
		quizIDs[i] = e.QuizID
		passed[i] = e.Passed
		percentages[i] = e.Percentage
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO quiz_stats AS s (quiz_id, attempts, passes, percentage_sum, best_percentage, updated_at)
		SELECT
			u.quiz_id,
			COUNT(*),
			COUNT(*) FILTER (WHERE u.passed),
			SUM(u.percentage),
			MAX(u.percentage),
			NOW()
		FROM UNNEST(
			$1::uuid[],
			$2::bool[],
			$3::float8[]
		) AS u (quiz_id, passed, percentage)
		GROUP BY u.quiz_id
		ON CONFLICT (quiz_id) DO UPDATE
		SET attempts        = s.attempts + EXCLUDED.attempts,
		    passes          = s.passes + EXCLUDED.passes,
		    percentage_sum  = s.percentage_sum + EXCLUDED.percentage_sum,
		    best_percentage = GREATEST(s.best_percentage, EXCLUDED.best_percentage),
		    updated_at      = NOW()`,
		quizIDs, passed, percentages,
	)
	return err
}

// Apply folds a single event into quiz_stats.
func (r *QuizStatsRepository) Apply(ctx context.Context, e model.SubmissionEvent) error {
	passes := 0
	if e.Passed {
		passes = 1
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO quiz_stats AS s (quiz_id, attempts, passes, percentage_sum, best_percentage, updated_at)
		VALUES ($1, 1, $2, $3, $3, NOW())
		ON CONFLICT (quiz_id) DO UPDATE
		SET attempts        = s.attempts + 1,
		    passes          = s.passes + EXCLUDED.passes,
		    percentage_sum  = s.percentage_sum + EXCLUDED.percentage_sum,
		    best_percentage = GREATEST(s.best_percentage, EXCLUDED.best_percentage),
		    updated_at      = NOW()`,
		e.QuizID, passes, e.Percentage,
	)
	return err
}

// GetByQuiz returns the aggregate for a quiz. A quiz without graded attempts
// yields zeroed stats rather than an error.
func (r *QuizStatsRepository) GetByQuiz(ctx context.Context, quizID uuid.UUID) (*model.QuizStats, error) {
	stats := &model.QuizStats{QuizID: quizID}
	var sum float64
	var updatedAt *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(attempts), 0), COALESCE(MAX(passes), 0),
		        COALESCE(MAX(percentage_sum), 0), COALESCE(MAX(best_percentage), 0), MAX(updated_at)
		 FROM quiz_stats WHERE quiz_id = $1`, quizID,
	).Scan(&stats.Attempts, &stats.Passes, &sum, &stats.BestPercentage, &updatedAt)
	if err != nil {
		return nil, err
	}
	if stats.Attempts > 0 {
		stats.AveragePercentage = math.Round(sum/float64(stats.Attempts)*100) / 100
	}
	if updatedAt != nil {
		stats.UpdatedAt = *updatedAt
	}
	return stats, nil
}
