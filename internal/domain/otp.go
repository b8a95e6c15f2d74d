package domain

import "time"

type OtpPurpose string

const (
	PurposeRegistration   OtpPurpose = "REGISTRATION"
	PurposeAuthentication OtpPurpose = "AUTHENTICATION"
)

func (p OtpPurpose) Valid() bool {
	return p == PurposeRegistration || p == PurposeAuthentication
}

// OtpSession is one issued one-time code. Only the salted hash of the code
// is ever stored.
type OtpSession struct {
	ID          SessionID  `gorm:"type:uuid;primaryKey" db:"id"`
	Identifier  string     `gorm:"type:text;not null;index:idx_otp_identifier_purpose" db:"identifier"`
	CountryCode string     `gorm:"type:text" db:"country_code"`
	UserID      *UserID    `gorm:"type:uuid" db:"user_id"`
	Purpose     OtpPurpose `gorm:"type:text;not null;index:idx_otp_identifier_purpose" db:"purpose"`
	CodeHash    []byte     `gorm:"type:bytea;not null" db:"code_hash"`
	CodeSalt    []byte     `gorm:"type:bytea;not null" db:"code_salt"`
	Attempts    int        `gorm:"not null;default:0" db:"attempts"`
	MaxAttempts int        `gorm:"not null" db:"max_attempts"`
	Verified    bool       `gorm:"not null;default:false" db:"verified"`
	ExpiresAt   time.Time  `gorm:"not null;index" db:"expires_at"`
	CreatedAt   time.Time  `gorm:"not null" db:"created_at"`
}

func (OtpSession) TableName() string { return "otp_sessions" }
