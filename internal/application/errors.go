package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrNotImplemented     = errors.New("not implemented")
	ErrTreeNotLoaded      = errors.New("collection tree not loaded")
	ErrInvalidTransition  = errors.New("invalid workflow transition")
	ErrUnknownApplication = errors.New("unknown application")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// AdapterError wraps a failure reported by a library adapter
type AdapterError struct {
	Application string
	Op          string
	Err         error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Application, e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// StorageError wraps a link store fault
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("link store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// TransitionError reports a stage handler that tried to move backwards
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot go from %s back to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
