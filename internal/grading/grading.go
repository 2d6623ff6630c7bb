// Package grading scores quiz submissions against an answer sheet.
// It performs no I/O; loading sheets and persisting outcomes is the caller's job.
package grading

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/stemsi/lms-backend/internal/model"
)

// Key is the authoritative grading data for one question.
// Correct is nil when no option of the question is flagged correct.
type Key struct {
	QuestionID uuid.UUID          `json:"question_id"`
	Type       model.QuestionType `json:"type"`
	Score      int                `json:"score"`
	Correct    *model.Option      `json:"correct,omitempty"`
}

// Sheet is everything needed to grade a quiz.
type Sheet struct {
	QuizID         uuid.UUID `json:"quiz_id"`
	PassPercentage float64   `json:"pass_percentage"`
	Keys           []Key     `json:"keys"`
}

// MaxScore is the sum of all question scores.
func (s *Sheet) MaxScore() int {
	total := 0
	for _, k := range s.Keys {
		total += k.Score
	}
	return total
}

// NewSheet builds a sheet from a quiz and its questions. Questions must have
// their options attached; the first option flagged correct becomes the key.
func NewSheet(quiz *model.Quiz, questions []model.Question) *Sheet {
	sheet := &Sheet{
		QuizID:         quiz.ID,
		PassPercentage: quiz.PassPercentage,
		Keys:           make([]Key, 0, len(questions)),
	}
	for _, q := range questions {
		key := Key{QuestionID: q.ID, Type: q.QuestionType, Score: q.Score}
		for i := range q.Options {
			if q.Options[i].IsCorrect {
				opt := q.Options[i]
				key.Correct = &opt
				break
			}
		}
		sheet.Keys = append(sheet.Keys, key)
	}
	return sheet
}

// Outcome is the result of grading one submission.
type Outcome struct {
	Answers    []model.ResultAnswer
	TotalScore int
	MaxScore   int
	Percentage float64
	Passed     bool
}

// Grade scores every question of the sheet, answered or not. An unanswered
// question earns nothing. When a question is answered more than once the
// first answer counts.
func Grade(sheet *Sheet, answers []model.SubmittedAnswer) (*Outcome, error) {
	byQuestion := make(map[uuid.UUID]model.SubmittedAnswer, len(answers))
	for _, a := range answers {
		if _, seen := byQuestion[a.QuestionID]; !seen {
			byQuestion[a.QuestionID] = a
		}
	}

	out := &Outcome{
		Answers:  make([]model.ResultAnswer, 0, len(sheet.Keys)),
		MaxScore: sheet.MaxScore(),
	}

	for _, key := range sheet.Keys {
		scorer, err := ScorerFor(key.Type)
		if err != nil {
			return nil, fmt.Errorf("question %s: %w", key.QuestionID, err)
		}

		ra := model.ResultAnswer{QuestionID: key.QuestionID}
		submitted, ok := byQuestion[key.QuestionID]
		if ok {
			ra.SelectedOptionID = submitted.SelectedOptionID
			ra.TextAnswer = submitted.TextAnswer
			if scorer.Correct(key, submitted) {
				ra.IsCorrect = true
				ra.PointsEarned = key.Score
				out.TotalScore += key.Score
			}
		}
		out.Answers = append(out.Answers, ra)
	}

	out.Percentage = Percentage(out.TotalScore, out.MaxScore)
	out.Passed = Passed(out.Percentage, sheet.PassPercentage)
	return out, nil
}

// Percentage returns total/max*100 rounded half-up to two decimals, or 0 when max is 0.
func Percentage(total, max int) float64 {
	if max <= 0 {
		return 0
	}
	return math.Round(float64(total)/float64(max)*100*100) / 100
}

// Passed reports whether a percentage meets the pass threshold.
func Passed(percentage, passPercentage float64) bool {
	return percentage >= passPercentage
}
