package model

import (
	"github.com/google/uuid"
)

// QuestionType enumerates how a question is answered and graded.
type QuestionType string

const (
	QuestionTypeMCQ       QuestionType = "mcq"
	QuestionTypeTrueFalse QuestionType = "true_false"
	QuestionTypeFillBlank QuestionType = "fill_blank"
)

// Question is a single gradable item of a quiz.
type Question struct {
	ID           uuid.UUID    `json:"id"`
	QuizID       uuid.UUID    `json:"quiz_id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	Score        int          `json:"score"`
	OrderNum     int          `json:"order_num"`
	Options      []Option     `json:"options,omitempty"`
}

// Option belongs to a question. For fill-in-blank questions the text of the
// correct option is the accepted answer.
type Option struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
	IsCorrect  bool      `json:"is_correct"`
}

// AddQuestionRequest is the payload for adding a question with its options to a quiz.
type AddQuestionRequest struct {
	QuestionText string        `json:"question_text" binding:"required,min=1,max=2000"`
	QuestionType string        `json:"question_type" binding:"required,oneof=mcq true_false fill_blank"`
	Score        int           `json:"score" binding:"required,min=1,max=1000"`
	OrderNum     int           `json:"order_num" binding:"min=0"`
	Options      []OptionInput `json:"options" binding:"required,min=1,max=20,dive"`
}

// OptionInput is a single option in an AddQuestionRequest.
type OptionInput struct {
	Text      string `json:"text" binding:"required,min=1,max=1000"`
	IsCorrect bool   `json:"is_correct"`
}
