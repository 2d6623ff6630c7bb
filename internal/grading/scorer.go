package grading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stemsi/lms-backend/internal/model"
)

// ErrUnknownQuestionType is returned when a question carries a type no scorer handles.
var ErrUnknownQuestionType = errors.New("unknown question type")

// Scorer decides whether a submitted answer matches a question's key.
type Scorer interface {
	Correct(key Key, answer model.SubmittedAnswer) bool
}

// ChoiceScorer grades mcq and true_false questions by comparing the selected
// option ID against the correct option's ID in canonical form.
type ChoiceScorer struct{}

func (ChoiceScorer) Correct(key Key, answer model.SubmittedAnswer) bool {
	if key.Correct == nil || answer.SelectedOptionID == nil {
		return false
	}
	return CanonicalID(*answer.SelectedOptionID) == key.Correct.ID.String()
}

// TextScorer grades fill_blank questions. The comparison ignores surrounding
// whitespace and letter case.
type TextScorer struct{}

func (TextScorer) Correct(key Key, answer model.SubmittedAnswer) bool {
	if key.Correct == nil || answer.TextAnswer == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(*answer.TextAnswer), strings.TrimSpace(key.Correct.Text))
}

// ScorerFor returns the scorer for a question type.
func ScorerFor(t model.QuestionType) (Scorer, error) {
	switch t {
	case model.QuestionTypeMCQ, model.QuestionTypeTrueFalse:
		return ChoiceScorer{}, nil
	case model.QuestionTypeFillBlank:
		return TextScorer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionType, t)
	}
}

// CanonicalID normalizes an option identifier. Well-formed UUIDs are rendered
// in their lower-case hyphenated form; anything else is only trimmed.
func CanonicalID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if id, err := uuid.Parse(trimmed); err == nil {
		return id.String()
	}
	return trimmed
}
