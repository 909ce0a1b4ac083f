// Package services implements the org membership workflow.
package services

import (
	"errors"
	"fmt"
)

// Domain errors returned by the MembershipService.
var (
	ErrForbidden    = errors.New("user is not authorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflicting request")
	ErrNotFound     = errors.New("not found")
)

// PersistenceError wraps a failed save or find against the document store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
