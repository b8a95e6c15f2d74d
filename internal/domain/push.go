package domain

import "time"

type PushStatus string

const (
	PushPending   PushStatus = "PENDING"
	PushApproved  PushStatus = "APPROVED"
	PushDenied    PushStatus = "DENIED"
	PushExpired   PushStatus = "EXPIRED"
	PushCancelled PushStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transition.
func (s PushStatus) Terminal() bool { return s != PushPending }

type PushPurpose string

const (
	PushPurposeSignIn   PushPurpose = "signin"
	PushPurposeMFA      PushPurpose = "mfa"
	PushPurposeRecovery PushPurpose = "recovery"
)

// PushAuthRequest is one sign-in-via-push attempt. PENDING is the only
// initial state; every other status is terminal.
type PushAuthRequest struct {
	ID          RequestID   `gorm:"type:uuid;primaryKey" db:"id"`
	UserID      UserID      `gorm:"type:uuid;index" db:"user_id"`
	Challenge   string      `gorm:"type:text;uniqueIndex:ux_push_challenge" db:"challenge"`
	Status      PushStatus  `gorm:"type:text;not null;index" db:"status"`
	Purpose     PushPurpose `gorm:"type:text;not null" db:"purpose"`
	IP          string      `gorm:"type:text" db:"ip"`
	Location    string      `gorm:"type:text" db:"location"`
	UserAgent   string      `gorm:"type:text" db:"user_agent"`
	RespondedBy string      `gorm:"type:text" db:"responded_by"`
	RespondedAt *time.Time  `db:"responded_at"`
	ExpiresAt   time.Time   `gorm:"not null;index" db:"expires_at"`
	CreatedAt   time.Time   `gorm:"not null" db:"created_at"`
}

func (PushAuthRequest) TableName() string { return "push_auth_requests" }
