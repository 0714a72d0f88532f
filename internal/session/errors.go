package session

import (
	"errors"
	"fmt"
)

// Errors returned, wrapped in *ValidationError, by Controller operations.
// The session is left unchanged whenever one of them is returned.
var (
	ErrInvalidGrade        = errors.New("grade must be one of again, hard, good or easy")
	ErrAlreadyGraded       = errors.New("item has already been graded in this session")
	ErrItemNotCurrent      = errors.New("item is not the one being presented")
	ErrNotRevealed         = errors.New("answer must be revealed before grading")
	ErrSessionCompleted    = errors.New("session is completed")
	ErrSessionNotCompleted = errors.New("session is not completed")
)

// ValidationError reports a rejected controller operation.
type ValidationError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(op string, err error) error {
	return &ValidationError{Op: op, Err: err}
}
