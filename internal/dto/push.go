package dto

import "time"

type PushCreateRequest struct {
	UserID    string `json:"userId"`
	Purpose   string `json:"purpose,omitempty"`
	IP        string `json:"-"`
	Location  string `json:"location,omitempty"`
	UserAgent string `json:"-"`
}

type PushCreateResponse struct {
	RequestID string    `json:"requestId"`
	Challenge string    `json:"challenge"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type PushRespondRequest struct {
	RequestID string `json:"requestId,omitempty"`
	Challenge string `json:"challenge,omitempty"`
	UserID    string `json:"userId"`
	Decision  string `json:"decision"`
	DeviceID  string `json:"deviceId,omitempty"`
}

type PushStatusResponse struct {
	RequestID   string     `json:"requestId"`
	Status      string     `json:"status"`
	Purpose     string     `json:"purpose"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
	ExpiresAt   time.Time  `json:"expiresAt"`
}
