package impl

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"authcore/internal/domain"
	"authcore/internal/dto"
)

func newPasskeyTestService() (*PasskeyServiceImpl, *memPasskeyStore, *stubRecorder, *testClock) {
	challenges := newMemPasskeyStore()
	recorder := &stubRecorder{}
	clock := newTestClock()
	svc := &PasskeyServiceImpl{
		challenges: challenges,
		methods:    recorder,
		codes:      &fixedCodes{},
		cfg:        DefaultPasskeyConfig(),
		now:        clock.Now,
	}
	return svc, challenges, recorder, clock
}

func TestPasskeyIssueAndConsume(t *testing.T) {
	svc, _, recorder, _ := newPasskeyTestService()
	ctx := context.Background()

	issued, err := svc.Issue(ctx, dto.PasskeyChallengeRequest{
		UserID:       uuid.NewString(),
		Type:         string(domain.ChallengeAuthentication),
		CredentialID: "cred-1",
	})
	require.NoError(t, err)

	// At least 16 bytes of entropy in the encoded challenge.
	raw, err := base64.RawURLEncoding.DecodeString(issued.Challenge)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), 16)

	err = svc.Consume(ctx, dto.PasskeyConsumeRequest{
		ChallengeID:  issued.ChallengeID,
		CredentialID: "cred-1",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"cred-1"}, recorder.credentialCalls)
}

func TestPasskeyConsumeTwice(t *testing.T) {
	svc, _, _, _ := newPasskeyTestService()
	ctx := context.Background()

	issued, err := svc.Issue(ctx, dto.PasskeyChallengeRequest{
		UserID: uuid.NewString(),
		Type:   string(domain.ChallengeRegistration),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Consume(ctx, dto.PasskeyConsumeRequest{ChallengeID: issued.ChallengeID}))
	err = svc.Consume(ctx, dto.PasskeyConsumeRequest{ChallengeID: issued.ChallengeID})
	require.ErrorIs(t, err, domain.ErrAlreadyUsed)
}

func TestPasskeyConsumeExpired(t *testing.T) {
	svc, _, _, clock := newPasskeyTestService()
	ctx := context.Background()

	issued, err := svc.Issue(ctx, dto.PasskeyChallengeRequest{
		UserID: uuid.NewString(),
		Type:   string(domain.ChallengeAuthentication),
	})
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	err = svc.Consume(ctx, dto.PasskeyConsumeRequest{ChallengeID: issued.ChallengeID})
	require.ErrorIs(t, err, domain.ErrExpired)
}

func TestPasskeyCredentialMismatch(t *testing.T) {
	svc, challenges, _, _ := newPasskeyTestService()
	ctx := context.Background()

	issued, err := svc.Issue(ctx, dto.PasskeyChallengeRequest{
		UserID:       uuid.NewString(),
		Type:         string(domain.ChallengeAuthentication),
		CredentialID: "cred-1",
	})
	require.NoError(t, err)

	err = svc.Consume(ctx, dto.PasskeyConsumeRequest{
		ChallengeID:  issued.ChallengeID,
		CredentialID: "cred-2",
	})
	require.ErrorIs(t, err, domain.ErrCredentialMismatch)

	// The failed attempt must not burn the challenge.
	id, err := uuid.Parse(issued.ChallengeID)
	require.NoError(t, err)
	stored, err := challenges.Get(ctx, id)
	require.NoError(t, err)
	require.False(t, stored.Used)
}

func TestPasskeyIssueValidation(t *testing.T) {
	svc, _, _, _ := newPasskeyTestService()
	ctx := context.Background()

	_, err := svc.Issue(ctx, dto.PasskeyChallengeRequest{UserID: "nope", Type: string(domain.ChallengeAuthentication)})
	require.ErrorIs(t, err, ErrInvalidUserID)

	_, err = svc.Issue(ctx, dto.PasskeyChallengeRequest{UserID: uuid.NewString(), Type: "OTHER"})
	require.ErrorIs(t, err, ErrInvalidType)

	// Credential binding only makes sense for authentication ceremonies.
	_, err = svc.Issue(ctx, dto.PasskeyChallengeRequest{
		UserID:       uuid.NewString(),
		Type:         string(domain.ChallengeRegistration),
		CredentialID: "cred-1",
	})
	require.ErrorIs(t, err, ErrInvalidType)
}

func TestPasskeyConsumeNotFound(t *testing.T) {
	svc, _, _, _ := newPasskeyTestService()
	ctx := context.Background()

	err := svc.Consume(ctx, dto.PasskeyConsumeRequest{ChallengeID: uuid.NewString()})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
