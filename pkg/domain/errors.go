package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a reference to a record that is absent or soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate code or an illegal state transition.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument marks malformed caller input such as a negative page size.
	ErrInvalidArgument = errors.New("invalid argument")
)

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Entity EntityType
	ID     int
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// Is lets errors.Is match ErrNotFound.
func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError is returned when an operation would break a business rule.
type ConflictError struct {
	Entity EntityType
	ID     int
	Reason string
}

func (e ConflictError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("%s %d conflict: %s", e.Entity, e.ID, e.Reason)
}

// Is lets errors.Is match ErrConflict.
func (e ConflictError) Is(target error) bool { return target == ErrConflict }
