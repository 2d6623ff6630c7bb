package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/lms-backend/internal/model"
)

// QuestionRepository handles question and option data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByQuiz retrieves all questions for a quiz, ordered by order_num.
// Options are not attached.
func (r *QuestionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, question_text, question_type, score, order_num
		 FROM questions WHERE quiz_id = $1
		 ORDER BY order_num, id`, quizID,
	)
	if err != nil {
		return nil, err
	}
	return scanQuestions(rows)
}

// ListByIDs retrieves the questions with the given IDs. Missing IDs are skipped.
func (r *QuestionRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, question_text, question_type, score, order_num
		 FROM questions WHERE id = ANY($1)
		 ORDER BY order_num, id`, ids,
	)
	if err != nil {
		return nil, err
	}
	return scanQuestions(rows)
}

// ListOptionsByQuestions retrieves the options of several questions in one round trip.
func (r *QuestionRepository) ListOptionsByQuestions(ctx context.Context, questionIDs []uuid.UUID) ([]model.Option, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_id, option_text, is_correct
		 FROM question_options WHERE question_id = ANY($1)
		 ORDER BY question_id, order_num, id`, questionIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []model.Option
	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// CreateWithOptions inserts a question and its options in one transaction.
// IDs are written back into q and q.Options.
func (r *QuestionRepository) CreateWithOptions(ctx context.Context, q *model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO questions (quiz_id, question_text, question_type, score, order_num)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		q.QuizID, q.QuestionText, q.QuestionType, q.Score, q.OrderNum,
	).Scan(&q.ID)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}

	for i := range q.Options {
		o := &q.Options[i]
		o.QuestionID = q.ID
		if err := tx.QueryRow(ctx,
			`INSERT INTO question_options (question_id, option_text, is_correct, order_num)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			o.QuestionID, o.Text, o.IsCorrect, i,
		).Scan(&o.ID); err != nil {
			return fmt.Errorf("insert option %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

func scanQuestions(rows pgx.Rows) ([]model.Question, error) {
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.QuestionText, &q.QuestionType, &q.Score, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
