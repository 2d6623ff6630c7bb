package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/lms-backend/internal/model"
)

const resultColumns = `id, quiz_id, student_id, course_id, module_id, total_score, max_score,
		        percentage, passed, attempt_number, time_taken_minutes, started_at, completed_at`

// ResultRepository handles grading result data access. Results are append-only.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// CountByQuizAndStudent returns how many results a student already has for a quiz.
func (r *ResultRepository) CountByQuizAndStudent(ctx context.Context, quizID, studentID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_results WHERE quiz_id = $1 AND student_id = $2`,
		quizID, studentID,
	).Scan(&n)
	return n, err
}

// Insert reserves the next attempt number for (quiz, student) and stores the
// result with its answers, all in one transaction. The reservation is a
// conditional increment, so two concurrent submissions can never both take
// the last allowed attempt. Returns ErrAttemptLimitReached when no attempt is
// left. On success res.ID and res.AttemptNumber are set.
func (r *ResultRepository) Insert(ctx context.Context, res *model.GradingResult, attemptsAllowed int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var attempt int
	err = tx.QueryRow(ctx,
		`INSERT INTO quiz_attempt_counters (quiz_id, student_id, last_attempt)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (quiz_id, student_id) DO UPDATE
		 SET last_attempt = quiz_attempt_counters.last_attempt + 1
		 WHERE quiz_attempt_counters.last_attempt < $3
		 RETURNING last_attempt`,
		res.QuizID, res.StudentID, attemptsAllowed,
	).Scan(&attempt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAttemptLimitReached
		}
		return fmt.Errorf("reserve attempt: %w", err)
	}
	res.AttemptNumber = attempt

	err = tx.QueryRow(ctx,
		`INSERT INTO quiz_results (quiz_id, student_id, course_id, module_id, total_score, max_score,
		                           percentage, passed, attempt_number, time_taken_minutes, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		res.QuizID, res.StudentID, res.CourseID, res.ModuleID, res.TotalScore, res.MaxScore,
		res.Percentage, res.Passed, res.AttemptNumber, res.TimeTakenMinutes, res.StartedAt, res.CompletedAt,
	).Scan(&res.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAttemptLimitReached
		}
		return fmt.Errorf("insert result: %w", err)
	}

	if len(res.Answers) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"quiz_result_answers"},
			[]string{"result_id", "position", "question_id", "selected_option_id", "text_answer", "is_correct", "points_earned"},
			pgx.CopyFromSlice(len(res.Answers), func(i int) ([]any, error) {
				a := res.Answers[i]
				return []any{res.ID, i, a.QuestionID, a.SelectedOptionID, a.TextAnswer, a.IsCorrect, a.PointsEarned}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByID retrieves a result and its answers.
func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.GradingResult, error) {
	res := &model.GradingResult{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM quiz_results WHERE id = $1`, id,
	).Scan(resultDest(res)...)
	if err != nil {
		return nil, err
	}

	answers, err := r.listAnswers(ctx, []uuid.UUID{res.ID})
	if err != nil {
		return nil, err
	}
	res.Answers = answers[res.ID]
	if res.Answers == nil {
		res.Answers = []model.ResultAnswer{}
	}
	return res, nil
}

// List retrieves results matching the filter, newest first, with their answers.
func (r *ResultRepository) List(ctx context.Context, filter model.ResultFilter) ([]model.GradingResult, error) {
	query := `SELECT ` + resultColumns + ` FROM quiz_results WHERE TRUE`
	var args []any

	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		query += fmt.Sprintf(" AND student_id = $%d", len(args))
	}
	if filter.QuizID != nil {
		args = append(args, *filter.QuizID)
		query += fmt.Sprintf(" AND quiz_id = $%d", len(args))
	}
	if filter.CourseID != nil {
		args = append(args, *filter.CourseID)
		query += fmt.Sprintf(" AND course_id = $%d", len(args))
	}
	query += " ORDER BY completed_at DESC, attempt_number DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.GradingResult
	for rows.Next() {
		var res model.GradingResult
		if err := rows.Scan(resultDest(&res)...); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return results, nil
	}

	ids := make([]uuid.UUID, len(results))
	for i := range results {
		ids[i] = results[i].ID
	}
	answers, err := r.listAnswers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Answers = answers[results[i].ID]
		if results[i].Answers == nil {
			results[i].Answers = []model.ResultAnswer{}
		}
	}
	return results, nil
}

func (r *ResultRepository) listAnswers(ctx context.Context, resultIDs []uuid.UUID) (map[uuid.UUID][]model.ResultAnswer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT result_id, question_id, selected_option_id, text_answer, is_correct, points_earned
		 FROM quiz_result_answers WHERE result_id = ANY($1)
		 ORDER BY result_id, position`, resultIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]model.ResultAnswer, len(resultIDs))
	for rows.Next() {
		var resultID uuid.UUID
		var a model.ResultAnswer
		if err := rows.Scan(&resultID, &a.QuestionID, &a.SelectedOptionID, &a.TextAnswer, &a.IsCorrect, &a.PointsEarned); err != nil {
			return nil, err
		}
		out[resultID] = append(out[resultID], a)
	}
	return out, rows.Err()
}

func resultDest(res *model.GradingResult) []any {
	return []any{
		&res.ID, &res.QuizID, &res.StudentID, &res.CourseID, &res.ModuleID, &res.TotalScore, &res.MaxScore,
		&res.Percentage, &res.Passed, &res.AttemptNumber, &res.TimeTakenMinutes, &res.StartedAt, &res.CompletedAt,
	}
}
