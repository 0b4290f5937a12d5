package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed client input. Nothing has been
	// written when it is returned.
	ErrValidation = errors.New("validation error")

	// ErrStorage marks a failure of the persistence layer.
	ErrStorage = errors.New("storage error")

	// ErrInternal marks a turn that could not produce a reply for reasons other
	// than storage.
	ErrInternal = errors.New("internal error")

	ErrSessionIDTooLong = fmt.Errorf("%w: sessionId must be at most %d bytes", ErrValidation, MaxSessionIDLength)
)
