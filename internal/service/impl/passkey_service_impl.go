package impl

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"authcore/internal/domain"
	"authcore/internal/dto"
	"authcore/internal/guard"
	"authcore/internal/observability/metrics"
	"authcore/internal/service"
	"authcore/internal/store"
)

var _ service.PasskeyService = (*PasskeyServiceImpl)(nil)

type PasskeyConfig struct {
	TTL           time.Duration
	ChallengeSize int // bytes of entropy, >= 16
}

func DefaultPasskeyConfig() PasskeyConfig {
	return PasskeyConfig{
		TTL:           5 * time.Minute,
		ChallengeSize: 32,
	}
}

type passkeyChallengeStore interface {
	Create(ctx context.Context, ch *domain.PasskeyChallenge) error
	Get(ctx context.Context, id domain.ChallengeID) (*domain.PasskeyChallenge, error)
	Consume(ctx context.Context, id domain.ChallengeID, now time.Time) error
}

type credentialRecorder interface {
	RecordUseByCredential(ctx context.Context, userID domain.UserID, credentialID string) error
}

type PasskeyServiceImpl struct {
	challenges passkeyChallengeStore
	methods    credentialRecorder
	codes      service.CodeSource
	cfg        PasskeyConfig
	now        func() time.Time
}

func NewPasskeyService(st *store.Store, methods credentialRecorder, codes service.CodeSource, cfg PasskeyConfig) *PasskeyServiceImpl {
	return &PasskeyServiceImpl{
		challenges: st.PasskeyChallenges(),
		methods:    methods,
		codes:      codes,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (p *PasskeyServiceImpl) Issue(ctx context.Context, req dto.PasskeyChallengeRequest) (*dto.PasskeyChallengeResponse, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, ErrInvalidUserID
	}
	chType := domain.ChallengeType(req.Type)
	if !chType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}
	if req.CredentialID != "" && chType != domain.ChallengeAuthentication {
		return nil, fmt.Errorf("%w: credential binding is authentication-only", ErrInvalidType)
	}

	var sessionID *domain.SessionID
	if req.SessionID != "" {
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("invalid sessionId: %w", err)
		}
		sessionID = &parsed
	}

	raw, err := p.codes.Bytes(p.cfg.ChallengeSize)
	if err != nil {
		return nil, fmt.Errorf("generate challenge: %w", err)
	}
	challenge := base64.RawURLEncoding.EncodeToString(raw)

	now := p.now()
	ch := &domain.PasskeyChallenge{
		ID:           uuid.New(),
		Challenge:    challenge,
		UserID:       userID,
		SessionID:    sessionID,
		CredentialID: req.CredentialID,
		Type:         chType,
		Used:         false,
		ExpiresAt:    now.Add(p.cfg.TTL),
		CreatedAt:    now,
	}
	if err := p.challenges.Create(ctx, ch); err != nil {
		return nil, err
	}

	metrics.PasskeyChallengesTotal.WithLabelValues("issued").Inc()
	slog.Info("passkey challenge issued",
		"challenge_id", ch.ID,
		"user_id", userID,
		"type", chType,
	)
	return &dto.PasskeyChallengeResponse{
		ChallengeID: ch.ID.String(),
		Challenge:   challenge,
		ExpiresAt:   ch.ExpiresAt,
	}, nil
}

func (p *PasskeyServiceImpl) Consume(ctx context.Context, req dto.PasskeyConsumeRequest) error {
	challengeID, err := uuid.Parse(strings.TrimSpace(req.ChallengeID))
	if err != nil {
		return domain.ErrNotFound
	}

	ch, err := p.challenges.Get(ctx, challengeID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			metrics.PasskeyChallengesTotal.WithLabelValues("not_found").Inc()
			return domain.ErrNotFound
		}
		return err
	}

	now := p.now()
	if err := p.challengeState(ch, now); err != nil {
		metrics.PasskeyChallengesTotal.WithLabelValues(resultLabel(err)).Inc()
		return err
	}
	if ch.Type == domain.ChallengeAuthentication && ch.CredentialID != "" && ch.CredentialID != req.CredentialID {
		metrics.PasskeyChallengesTotal.WithLabelValues("credential_mismatch").Inc()
		slog.Warn("passkey credential mismatch",
			"challenge_id", ch.ID,
			"user_id", ch.UserID,
		)
		return domain.ErrCredentialMismatch
	}

	if err := p.challenges.Consume(ctx, challengeID, now); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// A replayed ceremony response or the expiry boundary beat us.
			fresh, gerr := p.challenges.Get(ctx, challengeID)
			if gerr != nil {
				if errors.Is(gerr, store.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return gerr
			}
			if serr := p.challengeState(fresh, now); serr != nil {
				metrics.PasskeyChallengesTotal.WithLabelValues(resultLabel(serr)).Inc()
				return serr
			}
			return domain.ErrAlreadyUsed
		}
		return err
	}

	if p.methods != nil && req.CredentialID != "" && ch.Type == domain.ChallengeAuthentication {
		if err := p.methods.RecordUseByCredential(ctx, ch.UserID, req.CredentialID); err != nil {
			slog.Warn("record passkey use failed",
				"user_id", ch.UserID,
				"error", err,
			)
		}
	}

	metrics.PasskeyChallengesTotal.WithLabelValues("consumed").Inc()
	slog.Info("passkey challenge consumed",
		"challenge_id", ch.ID,
		"user_id", ch.UserID,
		"type", ch.Type,
	)
	return nil
}

func (p *PasskeyServiceImpl) challengeState(ch *domain.PasskeyChallenge, now time.Time) error {
	switch {
	case ch.Used:
		return domain.ErrAlreadyUsed
	case guard.IsExpired(ch.ExpiresAt, now):
		return domain.ErrExpired
	}
	return nil
}
