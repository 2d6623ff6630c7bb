package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/lms-backend/internal/model"
	"github.com/stemsi/lms-backend/internal/service"
)

// Grader is the part of service.GradingService the handlers use.
type Grader interface {
	SubmitQuiz(ctx context.Context, in service.SubmitInput) (*service.SubmitOutput, error)
	GetStudentQuizResults(ctx context.Context, filter model.ResultFilter) ([]model.GradingResult, error)
	GetQuizResultDetails(ctx context.Context, resultID uuid.UUID) (*model.ResultDetails, error)
}

// QuizManager is the part of service.QuizService the handlers use.
type QuizManager interface {
	CreateQuiz(ctx context.Context, req *model.CreateQuizRequest) (*model.Quiz, error)
	GetQuiz(ctx context.Context, quizID uuid.UUID) (*model.QuizDetail, error)
	ListQuizzes(ctx context.Context, courseID uuid.UUID) ([]model.Quiz, error)
	AddQuestion(ctx context.Context, quizID uuid.UUID, req *model.AddQuestionRequest) (*model.Question, error)
	GetQuizPaper(ctx context.Context, quizID uuid.UUID) (*model.QuizPaper, error)
	GetQuizStats(ctx context.Context, quizID uuid.UUID) (*model.QuizStats, error)
}

// ResultFeed streams raw result events of a quiz.
type ResultFeed interface {
	Subscribe(ctx context.Context, quizID uuid.UUID) (<-chan []byte, func() error, error)
}
