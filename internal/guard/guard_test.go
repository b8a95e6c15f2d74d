package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"before deadline", now.Add(time.Second), false},
		{"exactly at deadline", now, true},
		{"past deadline", now.Add(-time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpired(tt.expiresAt, now))
		})
	}
}

func TestRemainingAttempts(t *testing.T) {
	assert.Equal(t, 5, RemainingAttempts(0, 5))
	assert.Equal(t, 1, RemainingAttempts(4, 5))
	assert.Equal(t, 0, RemainingAttempts(5, 5))
	assert.Equal(t, 0, RemainingAttempts(7, 5))
}

func TestCanIssue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 60 * time.Second

	assert.True(t, CanIssue(time.Time{}, now, window), "no prior issuance")
	assert.False(t, CanIssue(now.Add(-30*time.Second), now, window), "inside window")
	assert.True(t, CanIssue(now.Add(-window), now, window), "window boundary")
	assert.True(t, CanIssue(now.Add(-2*window), now, window), "outside window")
}
