package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/lms-backend/internal/grading"
	"github.com/stemsi/lms-backend/internal/model"
)

// QuizStore is the quiz definition store.
type QuizStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	Create(ctx context.Context, q *model.Quiz) error
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Quiz, error)
}

// QuestionStore is the question and option store.
type QuestionStore interface {
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.Question, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error)
	ListOptionsByQuestions(ctx context.Context, questionIDs []uuid.UUID) ([]model.Option, error)
	CreateWithOptions(ctx context.Context, q *model.Question) error
}

// ResultStore is the append-only attempt ledger.
type ResultStore interface {
	CountByQuizAndStudent(ctx context.Context, quizID, studentID uuid.UUID) (int, error)
	Insert(ctx context.Context, res *model.GradingResult, attemptsAllowed int) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.GradingResult, error)
	List(ctx context.Context, filter model.ResultFilter) ([]model.GradingResult, error)
}

// StatsStore reads aggregate quiz statistics.
type StatsStore interface {
	GetByQuiz(ctx context.Context, quizID uuid.UUID) (*model.QuizStats, error)
}

// SheetCache caches grading sheets. Set only stores a sheet when the quiz's
// version still equals the one read before the sheet was built.
type SheetCache interface {
	Get(ctx context.Context, quizID uuid.UUID) (*grading.Sheet, error)
	Version(ctx context.Context, quizID uuid.UUID) (int64, error)
	Set(ctx context.Context, sheet *grading.Sheet, version int64) error
	Invalidate(ctx context.Context, quizID uuid.UUID) error
}

// EventPublisher announces graded submissions.
type EventPublisher interface {
	Publish(ctx context.Context, ev model.SubmissionEvent) error
}

// attachOptions loads the options of the given questions and attaches them in place.
func attachOptions(ctx context.Context, store QuestionStore, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}
	options, err := store.ListOptionsByQuestions(ctx, ids)
	if err != nil {
		return err
	}
	byQuestion := make(map[uuid.UUID][]model.Option, len(questions))
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}
	for i := range questions {
		questions[i].Options = byQuestion[questions[i].ID]
		if questions[i].Options == nil {
			questions[i].Options = []model.Option{}
		}
	}
	return nil
}
