package model

import (
	"time"

	"github.com/google/uuid"
)

// Quiz holds the grading policy of an assessment attached to a course module.
type Quiz struct {
	ID               uuid.UUID `json:"id"`
	CourseID         uuid.UUID `json:"course_id"`
	ModuleID         uuid.UUID `json:"module_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	PassPercentage   float64   `json:"pass_percentage"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	AttemptsAllowed  int       `json:"attempts_allowed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreateQuizRequest is the payload for creating a quiz.
type CreateQuizRequest struct {
	CourseID         uuid.UUID `json:"course_id" binding:"required"`
	ModuleID         uuid.UUID `json:"module_id" binding:"required"`
	Title            string    `json:"title" binding:"required,min=1,max=255"`
	Description      string    `json:"description" binding:"omitempty,max=5000"`
	PassPercentage   float64   `json:"pass_percentage" binding:"min=0,max=100"`
	TimeLimitMinutes int       `json:"time_limit_minutes" binding:"required,min=1,max=1440"`
	AttemptsAllowed  int       `json:"attempts_allowed" binding:"required,min=1,max=100"`
}

// QuizPaper is the student-facing view of a quiz. It never carries correctness data.
type QuizPaper struct {
	QuizID           uuid.UUID            `json:"quiz_id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	PassPercentage   float64              `json:"pass_percentage"`
	TimeLimitMinutes int                  `json:"time_limit_minutes"`
	AttemptsAllowed  int                  `json:"attempts_allowed"`
	Questions        []QuestionForStudent `json:"questions"`
}

// QuestionForStudent is a question without its answer key.
// Fill-in-blank questions carry no options since the option text is the answer.
type QuestionForStudent struct {
	ID           uuid.UUID          `json:"id"`
	QuestionText string             `json:"question_text"`
	QuestionType QuestionType       `json:"question_type"`
	Score        int                `json:"score"`
	Options      []OptionForStudent `json:"options"`
}

// OptionForStudent is a selectable option without its correctness flag.
type OptionForStudent struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

// QuizStats aggregates graded attempts for a quiz.
type QuizStats struct {
	QuizID            uuid.UUID `json:"quiz_id"`
	Attempts          int       `json:"attempts"`
	Passes            int       `json:"passes"`
	AveragePercentage float64   `json:"average_percentage"`
	BestPercentage    float64   `json:"best_percentage"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// QuizDetail is a quiz with its questions and their options, answer keys included.
type QuizDetail struct {
	Quiz      *Quiz      `json:"quiz"`
	Questions []Question `json:"questions"`
}
