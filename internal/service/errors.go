package service

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports caller input that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError reports that a referenced resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// AttemptLimitExceededError rejects a submission beyond the quiz's allowed attempts.
type AttemptLimitExceededError struct {
	Allowed int
}

func (e *AttemptLimitExceededError) Error() string {
	return fmt.Sprintf("maximum attempts (%d) exceeded for this quiz", e.Allowed)
}

// InternalError wraps a store failure or unexpected condition.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *InternalError) Unwrap() error { return e.Err }

func internal(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}
