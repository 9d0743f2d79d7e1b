package entityset

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateIdentity is returned by Set.Add when the identity is already present.
	ErrDuplicateIdentity = errors.New("entityset: duplicate identity")
	// ErrOperationCancelled is returned when the caller's context is done before an advance.
	ErrOperationCancelled = errors.New("entityset: operation cancelled")
	// ErrInvalidState is returned when an enumerator is used after Close.
	ErrInvalidState = errors.New("entityset: invalid state")
	// ErrInvalidArgument is the panic value (wrapped) for malformed query composition.
	ErrInvalidArgument = errors.New("entityset: invalid argument")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
