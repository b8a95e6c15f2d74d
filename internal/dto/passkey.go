package dto

import "time"

type PasskeyChallengeRequest struct {
	UserID       string `json:"userId"`
	Type         string `json:"type"`
	SessionID    string `json:"sessionId,omitempty"`
	CredentialID string `json:"credentialId,omitempty"`
}

type PasskeyChallengeResponse struct {
	ChallengeID string    `json:"challengeId"`
	Challenge   string    `json:"challenge"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type PasskeyConsumeRequest struct {
	ChallengeID  string `json:"challengeId"`
	CredentialID string `json:"credentialId"`
}
