// Package guard holds the shared attempt/expiry/rate-window policy used by
// every challenge manager. It is pure: callers pass in the timestamps.
package guard

import "time"

// IsExpired reports whether a record is past its deadline. Expiry is
// fail-closed: the record is expired the instant now reaches expiresAt.
func IsExpired(expiresAt, now time.Time) bool {
	return !now.Before(expiresAt)
}

// RemainingAttempts returns how many verification attempts are left,
// never negative.
func RemainingAttempts(attempts, max int) int {
	if attempts >= max {
		return 0
	}
	return max - attempts
}

// CanIssue reports whether a new challenge may be issued given the last
// issuance time. A zero lastIssuedAt means nothing was issued before.
func CanIssue(lastIssuedAt, now time.Time, window time.Duration) bool {
	if lastIssuedAt.IsZero() {
		return true
	}
	return !now.Before(lastIssuedAt.Add(window))
}
