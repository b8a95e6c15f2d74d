package domain

import "time"

type ChallengeType string

const (
	ChallengeRegistration   ChallengeType = "REGISTRATION"
	ChallengeAuthentication ChallengeType = "AUTHENTICATION"
)

func (t ChallengeType) Valid() bool {
	return t == ChallengeRegistration || t == ChallengeAuthentication
}

// PasskeyChallenge is a single-use WebAuthn ceremony challenge. For
// authentication-type challenges CredentialID may pin the credential that
// is expected to respond.
type PasskeyChallenge struct {
	ID           ChallengeID   `gorm:"type:uuid;primaryKey" db:"id"`
	Challenge    string        `gorm:"type:text;not null" db:"challenge"`
	UserID       UserID        `gorm:"type:uuid;index" db:"user_id"`
	SessionID    *SessionID    `gorm:"type:uuid" db:"session_id"`
	CredentialID string        `gorm:"type:text" db:"credential_id"`
	Type         ChallengeType `gorm:"type:text;not null" db:"type"`
	Used         bool          `gorm:"not null;default:false" db:"used"`
	ExpiresAt    time.Time     `gorm:"not null;index" db:"expires_at"`
	CreatedAt    time.Time     `gorm:"not null" db:"created_at"`
}

func (PasskeyChallenge) TableName() string { return "passkey_challenges" }
