package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-backend/internal/cache"
	"github.com/stemsi/lms-backend/internal/grading"
	"github.com/stemsi/lms-backend/internal/model"
	"github.com/stemsi/lms-backend/internal/repository"
)

const (
	MessagePassed = "Congratulations! You passed the quiz."
	MessageFailed = "You did not pass the quiz. Keep practicing!"
)

// SubmitInput is one quiz submission.
type SubmitInput struct {
	QuizID           uuid.UUID
	StudentID        uuid.UUID
	CourseID         uuid.UUID
	ModuleID         uuid.UUID
	Answers          []model.SubmittedAnswer
	TimeTakenMinutes int
	StartedAt        *time.Time
}

// SubmitOutput is the persisted result and a pass/fail message.
type SubmitOutput struct {
	Result  *model.GradingResult `json:"result"`
	Message string               `json:"message"`
}

// GradingService grades quiz submissions and serves result history.
type GradingService struct {
	quizzes   QuizStore
	questions QuestionStore
	results   ResultStore
	sheets    SheetCache
	events    EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewGradingService creates a new GradingService.
func NewGradingService(
	quizzes QuizStore,
	questions QuestionStore,
	results ResultStore,
	sheets SheetCache,
	events EventPublisher,
	log zerolog.Logger,
) *GradingService {
	return &GradingService{
		quizzes:   quizzes,
		questions: questions,
		results:   results,
		sheets:    sheets,
		events:    events,
		log:       log.With().Str("component", "grading_service").Logger(),
		now:       time.Now,
	}
}

// SubmitQuiz grades a submission and stores it as the student's next attempt.
// Nothing is written unless grading succeeds and an attempt is still available.
func (s *GradingService) SubmitQuiz(ctx context.Context, in SubmitInput) (*SubmitOutput, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}

	// 1. Quiz.
	quiz, err := s.quizzes.GetByID(ctx, in.QuizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "quiz", ID: in.QuizID.String()}
		}
		return nil, internal("get quiz", err)
	}

	// 2. Early attempt check; the insert re-checks atomically.
	count, err := s.results.CountByQuizAndStudent(ctx, quiz.ID, in.StudentID)
	if err != nil {
		return nil, internal("count attempts", err)
	}
	if count+1 > quiz.AttemptsAllowed {
		return nil, &AttemptLimitExceededError{Allowed: quiz.AttemptsAllowed}
	}

	// 3-5. Sheet, per-question scoring and aggregation.
	sheet, err := s.loadSheet(ctx, quiz)
	if err != nil {
		return nil, internal("load questions", err)
	}
	outcome, err := grading.Grade(sheet, in.Answers)
	if err != nil {
		return nil, internal("grade submission", err)
	}

	// 6. Persist.
	now := s.now().UTC()
	startedAt := now
	if in.StartedAt != nil && !in.StartedAt.IsZero() {
		startedAt = in.StartedAt.UTC()
	}
	result := &model.GradingResult{
		QuizID:           quiz.ID,
		StudentID:        in.StudentID,
		CourseID:         in.CourseID,
		ModuleID:         in.ModuleID,
		Answers:          outcome.Answers,
		TotalScore:       outcome.TotalScore,
		MaxScore:         outcome.MaxScore,
		Percentage:       outcome.Percentage,
		Passed:           outcome.Passed,
		AttemptNumber:    count + 1,
		TimeTakenMinutes: in.TimeTakenMinutes,
		StartedAt:        startedAt,
		CompletedAt:      now,
	}
	if err := s.results.Insert(ctx, result, quiz.AttemptsAllowed); err != nil {
		if errors.Is(err, repository.ErrAttemptLimitReached) {
			return nil, &AttemptLimitExceededError{Allowed: quiz.AttemptsAllowed}
		}
		return nil, internal("store result", err)
	}

	s.publish(ctx, result)

	s.log.Info().
		Str("quiz_id", quiz.ID.String()).
		Str("student_id", in.StudentID.String()).
		Int("attempt", result.AttemptNumber).
		Float64("percentage", result.Percentage).
		Bool("passed", result.Passed).
		Msg("Quiz graded")

	// 7. Respond.
	msg := MessageFailed
	if result.Passed {
		msg = MessagePassed
	}
	return &SubmitOutput{Result: result, Message: msg}, nil
}

// GetStudentQuizResults lists results matching the filter, newest first.
func (s *GradingService) GetStudentQuizResults(ctx context.Context, filter model.ResultFilter) ([]model.GradingResult, error) {
	results, err := s.results.List(ctx, filter)
	if err != nil {
		return nil, internal("list results", err)
	}
	if results == nil {
		results = []model.GradingResult{}
	}
	return results, nil
}

// GetQuizResultDetails loads a result with, for every recorded answer, the
// question it answered and that question's full option set.
func (s *GradingService) GetQuizResultDetails(ctx context.Context, resultID uuid.UUID) (*model.ResultDetails, error) {
	if resultID == uuid.Nil {
		return nil, &ValidationError{Fields: map[string]string{"id": "id is required"}}
	}

	result, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "result", ID: resultID.String()}
		}
		return nil, internal("get result", err)
	}

	ids := make([]uuid.UUID, len(result.Answers))
	for i, a := range result.Answers {
		ids[i] = a.QuestionID
	}
	questions, err := s.questions.ListByIDs(ctx, ids)
	if err != nil {
		return nil, internal("list questions", err)
	}
	if err := attachOptions(ctx, s.questions, questions); err != nil {
		return nil, internal("list options", err)
	}

	byID := make(map[uuid.UUID]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	reviews := make([]model.QuestionReview, len(result.Answers))
	for i, a := range result.Answers {
		review := model.QuestionReview{Answer: a, Options: []model.Option{}}
		if q, ok := byID[a.QuestionID]; ok {
			review.Question = q
			review.Options = q.Options
		}
		reviews[i] = review
	}

	return &model.ResultDetails{Result: result, Reviews: reviews}, nil
}

// loadSheet returns the quiz's grading sheet from cache, rebuilding it from the
// stores on a miss. Cache failures only cost performance.
func (s *GradingService) loadSheet(ctx context.Context, quiz *model.Quiz) (*grading.Sheet, error) {
	sheet, err := s.sheets.Get(ctx, quiz.ID)
	if err == nil {
		sheet.PassPercentage = quiz.PassPercentage
		return sheet, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn().Err(err).Str("quiz_id", quiz.ID.String()).Msg("Sheet cache read failed, falling back to database")
	}

	// The version is read before the queries so a question added meanwhile
	// makes the write below a no-op instead of caching a stale sheet.
	version, verErr := s.sheets.Version(ctx, quiz.ID)
	if verErr != nil {
		s.log.Warn().Err(verErr).Str("quiz_id", quiz.ID.String()).Msg("Sheet version read failed, skipping cache write")
	}

	questions, err := s.questions.ListByQuiz(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}
	if err := attachOptions(ctx, s.questions, questions); err != nil {
		return nil, err
	}

	sheet = grading.NewSheet(quiz, questions)
	if verErr != nil {
		return sheet, nil
	}
	switch err := s.sheets.Set(ctx, sheet, version); {
	case errors.Is(err, cache.ErrStaleSheet):
		s.log.Debug().Str("quiz_id", quiz.ID.String()).Msg("Quiz changed while loading sheet, not caching")
	case err != nil:
		s.log.Warn().Err(err).Str("quiz_id", quiz.ID.String()).Msg("Sheet cache write failed")
	}
	return sheet, nil
}

// publish announces the result. The result is already stored, so a failure is only logged.
func (s *GradingService) publish(ctx context.Context, r *model.GradingResult) {
	ev := model.SubmissionEvent{
		ResultID:      r.ID,
		QuizID:        r.QuizID,
		StudentID:     r.StudentID,
		AttemptNumber: r.AttemptNumber,
		TotalScore:    r.TotalScore,
		MaxScore:      r.MaxScore,
		Percentage:    r.Percentage,
		Passed:        r.Passed,
		CompletedAt:   r.CompletedAt,
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("result_id", r.ID.String()).Msg("Failed to publish submission event")
	}
}

func validateSubmit(in SubmitInput) error {
	fields := make(map[string]string)
	if in.QuizID == uuid.Nil {
		fields["quiz_id"] = "quiz_id is required"
	}
	if in.StudentID == uuid.Nil {
		fields["student_id"] = "student_id is required"
	}
	if in.CourseID == uuid.Nil {
		fields["course_id"] = "course_id is required"
	}
	if in.ModuleID == uuid.Nil {
		fields["module_id"] = "module_id is required"
	}
	if in.Answers == nil {
		fields["answers"] = "answers must be an array"
	}
	for i, a := range in.Answers {
		if a.QuestionID == uuid.Nil {
			fields["answers"] = "answers[" + strconv.Itoa(i) + "].question_id is required"
			break
		}
	}
	if in.TimeTakenMinutes < 0 {
		fields["time_taken_minutes"] = "time_taken_minutes must be 0 or greater"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
