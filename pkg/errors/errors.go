package errors

import (
	"errors"
	"fmt"
)

var (
	ErrConfigurationMissing = errors.New("storage configuration missing")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrMissingField         = errors.New("required field missing")
	ErrInvalidSubmission    = errors.New("invalid submission")
	ErrBackend              = errors.New("storage backend error")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrInvalidLessonSheet   = errors.New("invalid lesson sheet")
)

// Kind classifies a failed filing attempt for the caller.
type Kind string

const (
	KindConfigurationMissing Kind = "ConfigurationMissing"
	KindAuthenticationFailed Kind = "AuthenticationFailed"
	KindMissingField         Kind = "MissingField"
	KindInvalidSubmission    Kind = "InvalidSubmission"
	KindBackendError         Kind = "BackendError"
)

type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field '%s' is empty", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

type InvalidSubmissionError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *InvalidSubmissionError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

func (e *InvalidSubmissionError) Is(target error) bool {
	return target == ErrInvalidSubmission
}

// Wrap tags err with a sentinel so KindOf can classify it later.
func Wrap(sentinel error, err error, message string) error {
	if err == nil {
		return fmt.Errorf("%w: %s", sentinel, message)
	}
	return fmt.Errorf("%w: %s: %v", sentinel, message, err)
}

// KindOf maps an error to its Kind. Anything unrecognised is a backend error.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrConfigurationMissing):
		return KindConfigurationMissing
	case errors.Is(err, ErrAuthenticationFailed):
		return KindAuthenticationFailed
	case errors.Is(err, ErrMissingField):
		return KindMissingField
	case errors.Is(err, ErrInvalidSubmission):
		return KindInvalidSubmission
	default:
		return KindBackendError
	}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
