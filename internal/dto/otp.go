package dto

import "time"

type OtpIssueRequest struct {
	Identifier  string `json:"identifier"`
	CountryCode string `json:"countryCode,omitempty"`
	Purpose     string `json:"purpose"`
	UserID      string `json:"userId,omitempty"`
}

type OtpIssueResponse struct {
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type OtpVerifyRequest struct {
	SessionID string `json:"sessionId"`
	Code      string `json:"code"`
}

type OtpVerifyResponse struct {
	Verified          bool `json:"verified"`
	RemainingAttempts int  `json:"remainingAttempts"`
}
