package impl

import "errors"

var (
	ErrEmptyIdentifier = errors.New("empty identifier")
	ErrEmptyCode       = errors.New("empty code")
	ErrInvalidPurpose  = errors.New("invalid purpose")
	ErrInvalidUserID   = errors.New("invalid userId")
	ErrInvalidType     = errors.New("invalid type")
	ErrInvalidDecision = errors.New("invalid decision")
	ErrEmptyActor      = errors.New("empty actor")
)
