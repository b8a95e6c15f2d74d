package service

import "context"

// Notifier delivers codes and push payloads out-of-band. Implementations
// (SMS/email/web-push gateways) live outside this module.
type Notifier interface {
	SendCode(ctx context.Context, identifier, countryCode, code string) error
	SendPush(ctx context.Context, userID string, payload PushPayload) error
}

type PushPayload struct {
	RequestID string
	Challenge string
	Purpose   string
	Location  string
}

// Hasher is the salted one-way hash used for stored OTP codes.
type Hasher interface {
	Hash(code string) (hash, salt []byte, err error)
	// Compare must run in constant time with respect to the code.
	Compare(code string, hash, salt []byte) bool
}

// CodeSource produces cryptographically secure random material.
type CodeSource interface {
	// Digits returns a numeric code of n digits.
	Digits(n int) (string, error)
	// Bytes returns n random bytes.
	Bytes(n int) ([]byte, error)
}
