package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/lms-backend/internal/model"
)

// QuizRepository handles quiz data access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

// GetByID retrieves a quiz by its UUID.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, module_id, title, description, pass_percentage,
		        time_limit_minutes, attempts_allowed, created_at, updated_at
		 FROM quizzes WHERE id = $1`, id,
	).Scan(&q.ID, &q.CourseID, &q.ModuleID, &q.Title, &q.Description, &q.PassPercentage,
		&q.TimeLimitMinutes, &q.AttemptsAllowed, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Create inserts a new quiz.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (course_id, module_id, title, description, pass_percentage, time_limit_minutes, attempts_allowed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		q.CourseID, q.ModuleID, q.Title, q.Description, q.PassPercentage, q.TimeLimitMinutes, q.AttemptsAllowed,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// ListByCourse retrieves all quizzes of a course, newest first.
func (r *QuizRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, module_id, title, description, pass_percentage,
		        time_limit_minutes, attempts_allowed, created_at, updated_at
		 FROM quizzes WHERE course_id = $1
		 ORDER BY created_at DESC`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		var q model.Quiz
		if err := rows.Scan(&q.ID, &q.CourseID, &q.ModuleID, &q.Title, &q.Description, &q.PassPercentage,
			&q.TimeLimitMinutes, &q.AttemptsAllowed, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}
