package impl

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"authcore/internal/domain"
	"authcore/internal/dto"
)

func newMethodTestService() (*MethodServiceImpl, *memMethodStore, *testClock) {
	methods := newMemMethodStore()
	clock := newTestClock()
	svc := &MethodServiceImpl{
		methods: methods,
		now:     clock.Now,
	}
	return svc, methods, clock
}

func TestRegisterSmsMethod(t *testing.T) {
	svc, _, _ := newMethodTestService()
	ctx := context.Background()
	userID := uuid.New()

	view, err := svc.Register(ctx, dto.RegisterMethodRequest{
		UserID: userID.String(),
		Type:   string(domain.MethodSMSOTP),
		Metadata: dto.MethodMetadataPayload{
			Identifier:  "+15551234567",
			CountryCode: "+1",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "+• (•••) •••-4567", view.MaskedIdentifier)
	require.Equal(t, string(domain.SecurityLow), view.SecurityLevel)
	require.Equal(t, "Text Message", view.DisplayName)
	// Unverified until the first successful challenge.
	require.False(t, view.Configured)
	require.True(t, view.Enabled)
}

func TestRegisterPasskeyMethod(t *testing.T) {
	svc, _, _ := newMethodTestService()
	ctx := context.Background()

	view, err := svc.Register(ctx, dto.RegisterMethodRequest{
		UserID:      uuid.NewString(),
		Type:        string(domain.MethodPasskey),
		DisplayName: "MacBook Touch ID",
		Metadata: dto.MethodMetadataPayload{
			CredentialID: "cred-1",
			PublicKey:    "pk-1",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "MacBook Touch ID", view.DisplayName)
	require.Equal(t, string(domain.SecurityHigh), view.SecurityLevel)
	require.True(t, view.Configured)
}

func TestRegisterRejectsIncompleteMetadata(t *testing.T) {
	svc, _, _ := newMethodTestService()
	ctx := context.Background()

	cases := []dto.RegisterMethodRequest{
		{UserID: uuid.NewString(), Type: string(domain.MethodPasskey), Metadata: dto.MethodMetadataPayload{CredentialID: "cred-1"}},
		{UserID: uuid.NewString(), Type: string(domain.MethodTOTP)},
		{UserID: uuid.NewString(), Type: string(domain.MethodSMSOTP), Metadata: dto.MethodMetadataPayload{Identifier: "not-a-phone"}},
		{UserID: uuid.NewString(), Type: string(domain.MethodEmailOTP), Metadata: dto.MethodMetadataPayload{Identifier: "no-at-sign"}},
		{UserID: uuid.NewString(), Type: string(domain.MethodOAuthGoogle), Metadata: dto.MethodMetadataPayload{Provider: "google"}},
		{UserID: uuid.NewString(), Type: "CARRIER_PIGEON"},
	}
	for _, req := range cases {
		_, err := svc.Register(ctx, req)
		require.ErrorIs(t, err, domain.ErrInvalidMetadata, "type %s", req.Type)
	}
}

func TestListProjectsMaskedViews(t *testing.T) {
	svc, _, _ := newMethodTestService()
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Register(ctx, dto.RegisterMethodRequest{
		UserID:   userID.String(),
		Type:     string(domain.MethodEmailOTP),
		Metadata: dto.MethodMetadataPayload{Identifier: "abcdef@x.com"},
	})
	require.NoError(t, err)
	_, err = svc.Register(ctx, dto.RegisterMethodRequest{
		UserID:   userID.String(),
		Type:     string(domain.MethodTOTP),
		Metadata: dto.MethodMetadataPayload{SecretKey: "JBSWY3DPEHPK3PXP"},
	})
	require.NoError(t, err)

	views, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byType := map[string]dto.MethodView{}
	for _, v := range views {
		byType[v.Type] = v
	}
	require.Equal(t, "ab••@x.com", byType[string(domain.MethodEmailOTP)].MaskedIdentifier)
	require.Equal(t, "Authenticator App", byType[string(domain.MethodTOTP)].MaskedIdentifier)
	require.Equal(t, string(domain.SecurityMedium), byType[string(domain.MethodTOTP)].SecurityLevel)
}

func TestSetEnabled(t *testing.T) {
	svc, methods, _ := newMethodTestService()
	ctx := context.Background()
	userID := uuid.New()

	view, err := svc.Register(ctx, dto.RegisterMethodRequest{
		UserID:   userID.String(),
		Type:     string(domain.MethodSMSOTP),
		Metadata: dto.MethodMetadataPayload{Identifier: "+15551234567"},
	})
	require.NoError(t, err)
	methodID, err := uuid.Parse(view.ID)
	require.NoError(t, err)

	require.NoError(t, svc.SetEnabled(ctx, userID, methodID, false))
	stored, err := methods.Get(ctx, userID, methodID)
	require.NoError(t, err)
	require.False(t, stored.Enabled)

	// Another user cannot toggle it.
	err = svc.SetEnabled(ctx, uuid.New(), methodID, true)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordUseByIdentifierVerifiesOnFirstUse(t *testing.T) {
	svc, methods, clock := newMethodTestService()
	ctx := context.Background()
	userID := uuid.New()

	view, err := svc.Register(ctx, dto.RegisterMethodRequest{
		UserID:   userID.String(),
		Type:     string(domain.MethodSMSOTP),
		Metadata: dto.MethodMetadataPayload{Identifier: "+15551234567"},
	})
	require.NoError(t, err)
	require.False(t, view.Configured)

	clock.Advance(time.Minute)
	require.NoError(t, svc.RecordUseByIdentifier(ctx, userID, domain.MethodSMSOTP, "+15551234567"))

	views, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.True(t, views[0].Configured)
	require.NotNil(t, views[0].LastUsedAt)

	methodID, err := uuid.Parse(view.ID)
	require.NoError(t, err)
	stored, err := methods.Get(ctx, userID, methodID)
	require.NoError(t, err)
	meta, err := stored.Meta()
	require.NoError(t, err)
	require.True(t, meta.(*domain.OtpMetadata).Verified)

	// Unknown identifier resolves to nothing.
	err = svc.RecordUseByIdentifier(ctx, userID, domain.MethodSMSOTP, "+15550000000")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordUseByCredential(t *testing.T) {
	svc, _, _ := newMethodTestService()
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Register(ctx, dto.RegisterMethodRequest{
		UserID:   userID.String(),
		Type:     string(domain.MethodPasskey),
		Metadata: dto.MethodMetadataPayload{CredentialID: "cred-1", PublicKey: "pk-1"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.RecordUseByCredential(ctx, userID, "cred-1"))

	views, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, views[0].LastUsedAt)

	err = svc.RecordUseByCredential(ctx, userID, "cred-unknown")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
