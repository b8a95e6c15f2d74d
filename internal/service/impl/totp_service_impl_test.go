package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"authcore/internal/domain"
)

func newTotpTestService() (*TotpServiceImpl, *memMethodStore) {
	methods := newMemMethodStore()
	svc := &TotpServiceImpl{
		cfg:     TotpConfig{Issuer: "authcore-test"},
		methods: methods,
		now:     func() time.Time { return time.Now().UTC() },
	}
	return svc, methods
}

func TestTotpProvisionAndVerify(t *testing.T) {
	svc, methods := newTotpTestService()
	ctx := context.Background()
	userID := uuid.New()

	prov, err := svc.Provision(ctx, userID, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, prov.SecretKey)
	require.True(t, strings.HasPrefix(prov.OtpauthURL, "otpauth://totp/"))
	require.Contains(t, prov.OtpauthURL, "authcore-test")

	code, err := totp.GenerateCode(prov.SecretKey, time.Now())
	require.NoError(t, err)

	require.NoError(t, svc.Verify(ctx, userID, code))

	// The first successful check marks the method verified.
	methodID, err := uuid.Parse(prov.MethodID)
	require.NoError(t, err)
	stored, err := methods.Get(ctx, userID, methodID)
	require.NoError(t, err)
	meta, err := stored.Meta()
	require.NoError(t, err)
	require.True(t, meta.Configured())
	require.NotNil(t, stored.LastUsedAt)
}

func TestTotpVerifyWrongCode(t *testing.T) {
	svc, _ := newTotpTestService()
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Provision(ctx, userID, "user@example.com")
	require.NoError(t, err)

	err = svc.Verify(ctx, userID, "000000")
	require.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestTotpVerifyNoMethod(t *testing.T) {
	svc, _ := newTotpTestService()
	ctx := context.Background()

	err := svc.Verify(ctx, uuid.New(), "123456")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTotpVerifySkipsDisabledMethod(t *testing.T) {
	svc, methods := newTotpTestService()
	ctx := context.Background()
	userID := uuid.New()

	prov, err := svc.Provision(ctx, userID, "user@example.com")
	require.NoError(t, err)
	methodID, err := uuid.Parse(prov.MethodID)
	require.NoError(t, err)
	require.NoError(t, methods.SetEnabled(ctx, userID, methodID, false, time.Now().UTC()))

	code, err := totp.GenerateCode(prov.SecretKey, time.Now())
	require.NoError(t, err)
	err = svc.Verify(ctx, userID, code)
	require.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestTotpProvisionRequiresAccountName(t *testing.T) {
	svc, _ := newTotpTestService()
	_, err := svc.Provision(context.Background(), uuid.New(), "  ")
	require.ErrorIs(t, err, ErrEmptyIdentifier)
}
