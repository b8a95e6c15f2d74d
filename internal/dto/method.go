package dto

import "time"

// MethodMetadataPayload is the union of the fields a caller may supply at
// enrollment; the registry picks the ones its method type requires.
type MethodMetadataPayload struct {
	CredentialID   string `json:"credentialId,omitempty"`
	PublicKey      string `json:"publicKey,omitempty"`
	SecretKey      string `json:"secretKey,omitempty"`
	Identifier     string `json:"identifier,omitempty"`
	CountryCode    string `json:"countryCode,omitempty"`
	Provider       string `json:"provider,omitempty"`
	ProviderUserID string `json:"providerUserId,omitempty"`
}

type RegisterMethodRequest struct {
	UserID      string                `json:"userId"`
	Type        string                `json:"type"`
	DisplayName string                `json:"displayName,omitempty"`
	Metadata    MethodMetadataPayload `json:"metadata"`
}

// MethodView is the caller-facing projection of an authentication method:
// identifier masked, security level and configuration state precomputed.
type MethodView struct {
	ID               string     `json:"id"`
	Type             string     `json:"type"`
	DisplayName      string     `json:"displayName"`
	MaskedIdentifier string     `json:"maskedIdentifier"`
	SecurityLevel    string     `json:"securityLevel"`
	Configured       bool       `json:"configured"`
	Enabled          bool       `json:"enabled"`
	LastUsedAt       *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type TotpProvisionResponse struct {
	MethodID   string `json:"methodId"`
	SecretKey  string `json:"secretKey"`
	OtpauthURL string `json:"otpauthUrl"`
}
