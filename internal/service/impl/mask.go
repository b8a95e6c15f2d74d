package impl

import (
	"strings"

	"authcore/internal/domain"
)

// MaskPhone keeps the last four digits and replaces the rest with a fixed
// glyph pattern: +15551234567 -> "+• (•••) •••-1234".
func MaskPhone(phone string) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return "•••"
	}
	last4 := string(digits[len(digits)-4:])
	return "+• (•••) •••-" + last4
}

// MaskEmail keeps the first two local-part characters and the full domain.
// Local parts of two characters or fewer are masked entirely.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return "••"
	}
	local, dom := email[:at], email[at+1:]
	if len(local) <= 2 {
		return "••@" + dom
	}
	return local[:2] + "••@" + dom
}

// maskToken shortens a challenge/session token for log output.
func maskToken(tok string) string {
	if len(tok) < 8 {
		return "****"
	}
	return tok[:4] + "***" + tok[len(tok)-4:]
}

func methodLabel(t domain.MethodType) string {
	switch t {
	case domain.MethodPasskey:
		return "Passkey"
	case domain.MethodTOTP:
		return "Authenticator App"
	case domain.MethodSMSOTP:
		return "Text Message"
	case domain.MethodEmailOTP:
		return "Email"
	}
	if t.IsOAuth() {
		provider := strings.TrimPrefix(string(t), "OAUTH_")
		if len(provider) > 1 {
			return provider[:1] + strings.ToLower(provider[1:])
		}
		return provider
	}
	return string(t)
}

// MaskedIdentifier produces the privacy-preserving display string for a
// method: masked phone/email for OTP types, the human label otherwise.
func MaskedIdentifier(m *domain.AuthenticationMethod) string {
	meta, err := m.Meta()
	if err != nil {
		return methodLabel(m.Type)
	}
	if otp, ok := meta.(*domain.OtpMetadata); ok {
		switch m.Type {
		case domain.MethodSMSOTP:
			return MaskPhone(otp.Identifier)
		case domain.MethodEmailOTP:
			return MaskEmail(otp.Identifier)
		}
	}
	return methodLabel(m.Type)
}

// SecurityLevelFor classifies a method type for step-up decisions.
func SecurityLevelFor(t domain.MethodType) domain.SecurityLevel {
	switch {
	case t == domain.MethodPasskey:
		return domain.SecurityHigh
	case t == domain.MethodTOTP, t.IsOAuth():
		return domain.SecurityMedium
	default:
		return domain.SecurityLow
	}
}
