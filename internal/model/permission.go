package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionQuizzesRead allows viewing quiz definitions including answer keys.
	PermissionQuizzesRead Permission = "quizzes:read"

	// PermissionQuizzesWrite allows creating quizzes and authoring their questions.
	PermissionQuizzesWrite Permission = "quizzes:write"

	// PermissionResultsRead allows viewing any student's results and quiz statistics.
	PermissionResultsRead Permission = "results:read"
)
