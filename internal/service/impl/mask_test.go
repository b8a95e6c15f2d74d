package impl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"authcore/internal/domain"
)

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "+• (•••) •••-4567", MaskPhone("+15551234567"))
	assert.Equal(t, "+• (•••) •••-0199", MaskPhone("+442071830199"))
	assert.Equal(t, "•••", MaskPhone("+1"))
	assert.Equal(t, "•••", MaskPhone(""))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "ab••@x.com", MaskEmail("abcdef@x.com"))
	assert.Equal(t, "••@example.com", MaskEmail("ab@example.com"))
	assert.Equal(t, "••@example.com", MaskEmail("a@example.com"))
	assert.Equal(t, "••", MaskEmail("not-an-email"))
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "abcd***wxyz", maskToken("abcdefgh-stuvwxyz"))
	assert.Equal(t, "****", maskToken("short"))
}

func TestSecurityLevelFor(t *testing.T) {
	assert.Equal(t, domain.SecurityHigh, SecurityLevelFor(domain.MethodPasskey))
	assert.Equal(t, domain.SecurityMedium, SecurityLevelFor(domain.MethodTOTP))
	assert.Equal(t, domain.SecurityMedium, SecurityLevelFor(domain.MethodOAuthGitHub))
	assert.Equal(t, domain.SecurityLow, SecurityLevelFor(domain.MethodSMSOTP))
	assert.Equal(t, domain.SecurityLow, SecurityLevelFor(domain.MethodEmailOTP))
}

func TestMethodLabel(t *testing.T) {
	assert.Equal(t, "Passkey", methodLabel(domain.MethodPasskey))
	assert.Equal(t, "Authenticator App", methodLabel(domain.MethodTOTP))
	assert.Equal(t, "Google", methodLabel(domain.MethodOAuthGoogle))
	assert.Equal(t, "Linkedin", methodLabel(domain.MethodOAuthLinkedIn))
}
