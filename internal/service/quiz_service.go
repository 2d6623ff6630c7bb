package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-backend/internal/model"
)

// QuizService handles quiz authoring and the student quiz paper.
type QuizService struct {
	quizzes   QuizStore
	questions QuestionStore
	stats     StatsStore
	sheets    SheetCache
	log       zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizzes QuizStore, questions QuestionStore, stats StatsStore, sheets SheetCache, log zerolog.Logger) *QuizService {
	return &QuizService{
		quizzes:   quizzes,
		questions: questions,
		stats:     stats,
		sheets:    sheets,
		log:       log.With().Str("component", "quiz_service").Logger(),
	}
}

// CreateQuiz stores a new quiz.
func (s *QuizService) CreateQuiz(ctx context.Context, req *model.CreateQuizRequest) (*model.Quiz, error) {
	quiz := &model.Quiz{
		CourseID:         req.CourseID,
		ModuleID:         req.ModuleID,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		PassPercentage:   req.PassPercentage,
		TimeLimitMinutes: req.TimeLimitMinutes,
		AttemptsAllowed:  req.AttemptsAllowed,
	}
	if quiz.Title == "" {
		return nil, &ValidationError{Fields: map[string]string{"title": "title is required"}}
	}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, internal("create quiz", err)
	}
	return quiz, nil
}

// GetQuiz returns a quiz with its questions and answer keys.
func (s *QuizService) GetQuiz(ctx context.Context, quizID uuid.UUID) (*model.QuizDetail, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.loadQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return &model.QuizDetail{Quiz: quiz, Questions: questions}, nil
}

// ListQuizzes returns the quizzes of a course.
func (s *QuizService) ListQuizzes(ctx context.Context, courseID uuid.UUID) ([]model.Quiz, error) {
	quizzes, err := s.quizzes.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, internal("list quizzes", err)
	}
	if quizzes == nil {
		quizzes = []model.Quiz{}
	}
	return quizzes, nil
}

// AddQuestion adds a question with its options. Choice questions need exactly
// one correct option; true/false questions exactly two options; fill-in-blank
// questions exactly one option, which is the accepted answer.
func (s *QuizService) AddQuestion(ctx context.Context, quizID uuid.UUID, req *model.AddQuestionRequest) (*model.Question, error) {
	qType := model.QuestionType(req.QuestionType)
	if msg := checkOptions(qType, req.Options); msg != "" {
		return nil, &ValidationError{Fields: map[string]string{"options": msg}}
	}

	if _, err := s.getQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	q := &model.Question{
		QuizID:       quizID,
		QuestionText: req.QuestionText,
		QuestionType: qType,
		Score:        req.Score,
		OrderNum:     req.OrderNum,
		Options:      make([]model.Option, len(req.Options)),
	}
	for i, o := range req.Options {
		q.Options[i] = model.Option{Text: o.Text, IsCorrect: o.IsCorrect}
	}
	if qType == model.QuestionTypeFillBlank {
		q.Options[0].IsCorrect = true
	}

	if err := s.questions.CreateWithOptions(ctx, q); err != nil {
		return nil, internal("create question", err)
	}

	if err := s.sheets.Invalidate(ctx, quizID); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Failed to invalidate sheet cache")
	}
	return q, nil
}

// GetQuizPaper returns the quiz as a student sees it, without answer keys.
func (s *QuizService) GetQuizPaper(ctx context.Context, quizID uuid.UUID) (*model.QuizPaper, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.loadQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	paper := &model.QuizPaper{
		QuizID:           quiz.ID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		PassPercentage:   quiz.PassPercentage,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		AttemptsAllowed:  quiz.AttemptsAllowed,
		Questions:        make([]model.QuestionForStudent, len(questions)),
	}
	for i, q := range questions {
		sq := model.QuestionForStudent{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			Score:        q.Score,
			Options:      []model.OptionForStudent{},
		}
		if q.QuestionType != model.QuestionTypeFillBlank {
			for _, o := range q.Options {
				sq.Options = append(sq.Options, model.OptionForStudent{ID: o.ID, Text: o.Text})
			}
		}
		paper.Questions[i] = sq
	}
	return paper, nil
}

// GetQuizStats returns aggregate statistics for a quiz.
func (s *QuizService) GetQuizStats(ctx context.Context, quizID uuid.UUID) (*model.QuizStats, error) {
	if _, err := s.getQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	stats, err := s.stats.GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, internal("get stats", err)
	}
	return stats, nil
}

func (s *QuizService) getQuiz(ctx context.Context, quizID uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "quiz", ID: quizID.String()}
		}
		return nil, internal("get quiz", err)
	}
	return quiz, nil
}

func (s *QuizService) loadQuestions(ctx context.Context, quizID uuid.UUID) ([]model.Question, error) {
	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, internal("list questions", err)
	}
	if err := attachOptions(ctx, s.questions, questions); err != nil {
		return nil, internal("list options", err)
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, nil
}

// checkOptions returns a message describing why the options do not fit the
// question type, or "" when they do.
func checkOptions(t model.QuestionType, options []model.OptionInput) string {
	correct := 0
	for _, o := range options {
		if strings.TrimSpace(o.Text) == "" {
			return "option text must not be blank"
		}
		if o.IsCorrect {
			correct++
		}
	}

	switch t {
	case model.QuestionTypeMCQ:
		if len(options) < 2 {
			return "multiple-choice questions need at least two options"
		}
	case model.QuestionTypeTrueFalse:
		if len(options) != 2 {
			return "true/false questions need exactly two options"
		}
	case model.QuestionTypeFillBlank:
		if len(options) != 1 {
			return "fill-in-blank questions need exactly one option holding the accepted answer"
		}
		return ""
	default:
		return "unsupported question type"
	}

	if correct != 1 {
		return "exactly one option must be marked correct"
	}
	return ""
}
