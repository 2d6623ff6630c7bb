package model

import (
	"time"

	"github.com/google/uuid"
)

// SubmittedAnswer is one answer in a quiz submission. Choice questions use
// SelectedOptionID, fill-in-blank questions use TextAnswer.
type SubmittedAnswer struct {
	QuestionID       uuid.UUID `json:"question_id" binding:"required"`
	SelectedOptionID *string   `json:"selected_option_id" binding:"omitempty,max=64"`
	TextAnswer       *string   `json:"text_answer" binding:"omitempty,max=2000"`
}

// SubmitQuizRequest is the payload a student posts to submit a quiz.
// Answers must be present but may be empty.
type SubmitQuizRequest struct {
	CourseID         uuid.UUID         `json:"course_id" binding:"required"`
	ModuleID         uuid.UUID         `json:"module_id" binding:"required"`
	Answers          []SubmittedAnswer `json:"answers" binding:"required,dive"`
	TimeTakenMinutes int               `json:"time_taken_minutes" binding:"min=0"`
	StartedAt        *time.Time        `json:"started_at"`
}

// GradingResult is the immutable record of one graded attempt.
type GradingResult struct {
	ID               uuid.UUID      `json:"id"`
	QuizID           uuid.UUID      `json:"quiz_id"`
	StudentID        uuid.UUID      `json:"student_id"`
	CourseID         uuid.UUID      `json:"course_id"`
	ModuleID         uuid.UUID      `json:"module_id"`
	Answers          []ResultAnswer `json:"answers"`
	TotalScore       int            `json:"total_score"`
	MaxScore         int            `json:"max_score"`
	Percentage       float64        `json:"percentage"`
	Passed           bool           `json:"passed"`
	AttemptNumber    int            `json:"attempt_number"`
	TimeTakenMinutes int            `json:"time_taken_minutes"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      time.Time      `json:"completed_at"`
}

// ResultAnswer is the graded outcome of a single question within a result.
type ResultAnswer struct {
	QuestionID       uuid.UUID `json:"question_id"`
	SelectedOptionID *string   `json:"selected_option_id,omitempty"`
	TextAnswer       *string   `json:"text_answer,omitempty"`
	IsCorrect        bool      `json:"is_correct"`
	PointsEarned     int       `json:"points_earned"`
}

// ResultFilter narrows a results query. Nil fields do not filter.
type ResultFilter struct {
	StudentID *uuid.UUID
	QuizID    *uuid.UUID
	CourseID  *uuid.UUID
}

// ResultDetails is a result enriched with the reviewed questions.
type ResultDetails struct {
	Result  *GradingResult   `json:"result"`
	Reviews []QuestionReview `json:"reviews"`
}

// QuestionReview pairs a recorded answer with its originating question and
// full option set. Question is nil when the question has since been removed.
type QuestionReview struct {
	Answer   ResultAnswer `json:"answer"`
	Question *Question    `json:"question"`
	Options  []Option     `json:"options"`
}

// SubmissionEvent announces a freshly graded result to monitors and the stats worker.
type SubmissionEvent struct {
	ResultID      uuid.UUID `json:"result_id"`
	QuizID        uuid.UUID `json:"quiz_id"`
	StudentID     uuid.UUID `json:"student_id"`
	AttemptNumber int       `json:"attempt_number"`
	TotalScore    int       `json:"total_score"`
	MaxScore      int       `json:"max_score"`
	Percentage    float64   `json:"percentage"`
	Passed        bool      `json:"passed"`
	CompletedAt   time.Time `json:"completed_at"`
}
