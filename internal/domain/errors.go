package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrExpired            = errors.New("expired")
	ErrExhausted          = errors.New("attempts exhausted")
	ErrAlreadyConsumed    = errors.New("already consumed")
	ErrAlreadyUsed        = errors.New("already used")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidMetadata    = errors.New("invalid metadata")
	ErrCredentialMismatch = errors.New("credential mismatch")
	ErrInvalidCode        = errors.New("invalid code")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// InvalidCodeError carries the attempts the caller has left. It matches
// ErrInvalidCode under errors.Is.
type InvalidCodeError struct {
	Remaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid code (%d attempts remaining)", e.Remaining)
}

func (e *InvalidCodeError) Is(target error) bool { return target == ErrInvalidCode }
