package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type MethodType string

const (
	MethodPasskey  MethodType = "PASSKEY"
	MethodTOTP     MethodType = "TOTP"
	MethodSMSOTP   MethodType = "SMS_OTP"
	MethodEmailOTP MethodType = "EMAIL_OTP"

	MethodOAuthGoogle    MethodType = "OAUTH_GOOGLE"
	MethodOAuthGitHub    MethodType = "OAUTH_GITHUB"
	MethodOAuthMicrosoft MethodType = "OAUTH_MICROSOFT"
	MethodOAuthFacebook  MethodType = "OAUTH_FACEBOOK"
	MethodOAuthLinkedIn  MethodType = "OAUTH_LINKEDIN"
	MethodOAuthTwitter   MethodType = "OAUTH_TWITTER"
)

func (t MethodType) IsOAuth() bool { return strings.HasPrefix(string(t), "OAUTH_") }

func (t MethodType) Valid() bool {
	switch t {
	case MethodPasskey, MethodTOTP, MethodSMSOTP, MethodEmailOTP,
		MethodOAuthGoogle, MethodOAuthGitHub, MethodOAuthMicrosoft,
		MethodOAuthFacebook, MethodOAuthLinkedIn, MethodOAuthTwitter:
		return true
	}
	return false
}

type SecurityLevel string

const (
	SecurityHigh   SecurityLevel = "HIGH"
	SecurityMedium SecurityLevel = "MEDIUM"
	SecurityLow    SecurityLevel = "LOW"
)

type AuthenticationMethod struct {
	ID          MethodID   `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	UserID      UserID     `gorm:"type:uuid;index" db:"user_id" json:"userId"`
	Type        MethodType `gorm:"type:text;not null" db:"type" json:"type"`
	DisplayName string     `gorm:"type:text" db:"display_name" json:"displayName"`
	Enabled     bool       `gorm:"not null;default:true" db:"enabled" json:"enabled"`
	LastUsedAt  *time.Time `db:"last_used_at" json:"lastUsedAt,omitempty"`
	Metadata    []byte     `gorm:"type:jsonb" db:"metadata" json:"-"`
	CreatedAt   time.Time  `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (AuthenticationMethod) TableName() string { return "authentication_methods" }

// Meta decodes the stored metadata into its typed variant.
func (m *AuthenticationMethod) Meta() (MethodMetadata, error) {
	return DecodeMetadata(m.Type, m.Metadata)
}

// MethodMetadata is the tagged union of per-type metadata. Constructing a
// variant through its New* function enforces the required fields, so a
// decoded value that round-trips through a constructor is always complete.
type MethodMetadata interface {
	MethodType() MethodType
	// Configured reports whether the method holds everything it needs to
	// be usable for authentication.
	Configured() bool
}

type PasskeyMetadata struct {
	CredentialID   string `json:"credentialId"`
	PublicKey      string `json:"publicKey"`
	SignCount      uint32 `json:"signCount"`
	AAGUID         string `json:"aaguid,omitempty"`
	DeviceName     string `json:"deviceName,omitempty"`
	BackupEligible bool   `json:"backupEligible,omitempty"`
}

func NewPasskeyMetadata(credentialID, publicKey string) (*PasskeyMetadata, error) {
	if credentialID == "" || publicKey == "" {
		return nil, fmt.Errorf("%w: passkey requires credentialId and publicKey", ErrInvalidMetadata)
	}
	return &PasskeyMetadata{CredentialID: credentialID, PublicKey: publicKey}, nil
}

func (m *PasskeyMetadata) MethodType() MethodType { return MethodPasskey }
func (m *PasskeyMetadata) Configured() bool       { return m.CredentialID != "" && m.PublicKey != "" }

type TotpMetadata struct {
	SecretKey string `json:"secretKey"`
	Algorithm string `json:"algorithm,omitempty"`
	Digits    int    `json:"digits,omitempty"`
	Period    int    `json:"period,omitempty"`
	Verified  bool   `json:"verified"`
}

func NewTotpMetadata(secretKey string) (*TotpMetadata, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("%w: totp requires secretKey", ErrInvalidMetadata)
	}
	return &TotpMetadata{SecretKey: secretKey, Digits: 6, Period: 30}, nil
}

func (m *TotpMetadata) MethodType() MethodType { return MethodTOTP }
func (m *TotpMetadata) Configured() bool       { return m.SecretKey != "" && m.Verified }

// OtpMetadata backs both SMS_OTP and EMAIL_OTP methods; the identifier is a
// phone number in E.164 form or an email address.
type OtpMetadata struct {
	Kind        MethodType `json:"kind"`
	Identifier  string     `json:"identifier"`
	CountryCode string     `json:"countryCode,omitempty"`
	Verified    bool       `json:"verified"`
}

func NewOtpMetadata(kind MethodType, identifier, countryCode string) (*OtpMetadata, error) {
	if kind != MethodSMSOTP && kind != MethodEmailOTP {
		return nil, fmt.Errorf("%w: %s is not an otp method type", ErrInvalidMetadata, kind)
	}
	if identifier == "" {
		return nil, fmt.Errorf("%w: %s requires identifier", ErrInvalidMetadata, kind)
	}
	if kind == MethodSMSOTP && !strings.HasPrefix(identifier, "+") {
		return nil, fmt.Errorf("%w: phone number must be E.164", ErrInvalidMetadata)
	}
	if kind == MethodEmailOTP && !strings.Contains(identifier, "@") {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalidMetadata)
	}
	return &OtpMetadata{Kind: kind, Identifier: identifier, CountryCode: countryCode}, nil
}

func (m *OtpMetadata) MethodType() MethodType { return m.Kind }
func (m *OtpMetadata) Configured() bool       { return m.Identifier != "" && m.Verified }

type OAuthMetadata struct {
	Provider       string `json:"provider"`
	ProviderUserID string `json:"providerUserId"`
	Email          string `json:"email,omitempty"`
	Verified       bool   `json:"verified"`
}

func NewOAuthMetadata(provider, providerUserID string) (*OAuthMetadata, error) {
	if provider == "" || providerUserID == "" {
		return nil, fmt.Errorf("%w: oauth requires provider and providerUserId", ErrInvalidMetadata)
	}
	return &OAuthMetadata{Provider: provider, ProviderUserID: providerUserID}, nil
}

func (m *OAuthMetadata) MethodType() MethodType {
	return MethodType("OAUTH_" + strings.ToUpper(m.Provider))
}
func (m *OAuthMetadata) Configured() bool {
	return m.Provider != "" && m.ProviderUserID != "" && m.Verified
}

func EncodeMetadata(meta MethodMetadata) ([]byte, error) {
	if meta == nil {
		return nil, ErrInvalidMetadata
	}
	return json.Marshal(meta)
}

func DecodeMetadata(t MethodType, raw []byte) (MethodMetadata, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty metadata for %s", ErrInvalidMetadata, t)
	}
	var meta MethodMetadata
	switch {
	case t == MethodPasskey:
		meta = &PasskeyMetadata{}
	case t == MethodTOTP:
		meta = &TotpMetadata{}
	case t == MethodSMSOTP, t == MethodEmailOTP:
		meta = &OtpMetadata{}
	case t.IsOAuth():
		meta = &OAuthMetadata{}
	default:
		return nil, fmt.Errorf("%w: unknown method type %s", ErrInvalidMetadata, t)
	}
	if err := json.Unmarshal(raw, meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	return meta, nil
}
