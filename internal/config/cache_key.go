package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

// QuizSheetKey returns the cache key holding a quiz's grading sheet.
func (CacheKeyStruct) QuizSheetKey(quizID uuid.UUID) string {
	return fmt.Sprintf("quiz:%s:sheet", quizID)
}

// QuizSheetVersionKey returns the counter bumped whenever a quiz's questions change.
func (CacheKeyStruct) QuizSheetVersionKey(quizID uuid.UUID) string {
	return fmt.Sprintf("quiz:%s:sheet_ver", quizID)
}

// QuizResultsChannel returns the PubSub channel on which graded results for a quiz are announced.
func (CacheKeyStruct) QuizResultsChannel(quizID uuid.UUID) string {
	return fmt.Sprintf("quiz:%s:results", quizID)
}

var CacheKey = CacheKeyStruct{}
