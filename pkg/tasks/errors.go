package tasks

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// ValidationError reports an empty or malformed required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ProtectedEntityError reports an attempt to delete a seed entity.
type ProtectedEntityError struct {
	Kind string
	ID   string
}

func (e *ProtectedEntityError) Error() string {
	return fmt.Sprintf("%s %q is protected and cannot be deleted", e.Kind, e.ID)
}

// PersistenceError wraps a local storage read/write failure. It is logged,
// never surfaced to the user.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// RemoteOperationError wraps a failed call against the record service.
type RemoteOperationError struct {
	Op  string
	Err error
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *RemoteOperationError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether err should be shown to the user as a
// notification rather than treated as an internal fault.
func IsUserError(err error) bool {
	var ve *ValidationError
	var pe *ProtectedEntityError
	var re *RemoteOperationError
	return errors.As(err, &ve) || errors.As(err, &pe) || errors.As(err, &re) ||
		errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrCategoryNotFound)
}
