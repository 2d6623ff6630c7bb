package handler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/stemsi/lms-backend/internal/model"
	"github.com/stemsi/lms-backend/internal/service"
)

type stubGrader struct {
	mu      sync.Mutex
	submits []service.SubmitInput
	out     *service.SubmitOutput
	results []model.GradingResult
	details *model.ResultDetails
	filter  model.ResultFilter
	err     error
}

func (g *stubGrader) SubmitQuiz(_ context.Context, in service.SubmitInput) (*service.SubmitOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submits = append(g.submits, in)
	if g.err != nil {
		return nil, g.err
	}
	return g.out, nil
}

func (g *stubGrader) GetStudentQuizResults(_ context.Context, f model.ResultFilter) ([]model.GradingResult, error) {
	g.filter = f
	if g.err != nil {
		return nil, g.err
	}
	return g.results, nil
}

func (g *stubGrader) GetQuizResultDetails(_ context.Context, id uuid.UUID) (*model.ResultDetails, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.details, nil
}

type stubQuizzes struct {
	quiz     *model.Quiz
	detail   *model.QuizDetail
	paper    *model.QuizPaper
	stats    *model.QuizStats
	question *model.Question
	err      error
	// onStats runs at the start of every GetQuizStats call.
	onStats func()
}

func (s *stubQuizzes) CreateQuiz(_ context.Context, req *model.CreateQuizRequest) (*model.Quiz, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Quiz{ID: uuid.New(), CourseID: req.CourseID, Title: req.Title, AttemptsAllowed: req.AttemptsAllowed}, nil
}

func (s *stubQuizzes) GetQuiz(context.Context, uuid.UUID) (*model.QuizDetail, error) {
	return s.detail, s.err
}

func (s *stubQuizzes) ListQuizzes(context.Context, uuid.UUID) ([]model.Quiz, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []model.Quiz{*s.quiz}, nil
}

func (s *stubQuizzes) AddQuestion(_ context.Context, _ uuid.UUID, req *model.AddQuestionRequest) (*model.Question, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Question{ID: uuid.New(), QuestionText: req.QuestionText, QuestionType: model.QuestionType(req.QuestionType)}, nil
}

func (s *stubQuizzes) GetQuizPaper(context.Context, uuid.UUID) (*model.QuizPaper, error) {
	return s.paper, s.err
}

func (s *stubQuizzes) GetQuizStats(_ context.Context, id uuid.UUID) (*model.QuizStats, error) {
	if s.onStats != nil {
		s.onStats()
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.stats != nil {
		return s.stats, nil
	}
	return &model.QuizStats{QuizID: id}, nil
}

type stubFeed struct {
	events     chan []byte
	closed     chan struct{}
	err        error
	subscribed atomic.Bool
}

func newStubFeed() *stubFeed {
	return &stubFeed{events: make(chan []byte, 4), closed: make(chan struct{})}
}

func (f *stubFeed) Subscribe(context.Context, uuid.UUID) (<-chan []byte, func() error, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	f.subscribed.Store(true)
	var once sync.Once
	return f.events, func() error {
		once.Do(func() { close(f.closed) })
		return nil
	}, nil
}
