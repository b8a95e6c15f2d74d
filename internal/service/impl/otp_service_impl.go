package impl

import (
	"context"
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

var _ service.OtpService = (*OtpServiceImpl)(nil)

type OtpConfig struct {
	TTL          time.Duration
	MaxAttempts  int
	ResendWindow time.Duration
	CodeLength   int
}

func DefaultOtpConfig() OtpConfig {
	return OtpConfig{
		TTL:          5 * time.Minute,
		MaxAttempts:  5,
		ResendWindow: 60 * time.Second,
		CodeLength:   6,
	}
}

type otpSessionStore interface {
	CreateIfNoneSince(ctx context.Context, session *domain.OtpSession, since time.Time) error
	Get(ctx context.Context, id domain.SessionID) (*domain.OtpSession, error)
	IncrementAttempts(ctx context.Context, id domain.SessionID, expectedAttempts int) error
	MarkVerified(ctx context.Context, id domain.SessionID, now time.Time) error
}

// methodRecorder is the registry hook the managers call on terminal
// success; never invoked for anonymous pre-auth sessions.
type methodRecorder interface {
	RecordUseByIdentifier(ctx context.Context, userID domain.UserID, t domain.MethodType, identifier string) error
}

type OtpServiceImpl struct {
	sessions otpSessionStore
	methods  methodRecorder
	hasher   service.Hasher
	notifier service.Notifier
	codes    service.CodeSource
	cfg      OtpConfig
	now      func() time.Time
}

func NewOtpService(st *store.Store, methods methodRecorder, hasher service.Hasher, notifier service.Notifier, codes service.CodeSource, cfg OtpConfig) *OtpServiceImpl {
	return &OtpServiceImpl{
		sessions: st.OtpSessions(),
		methods:  methods,
		hasher:   hasher,
		notifier: notifier,
		codes:    codes,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (o *OtpServiceImpl) Issue(ctx context.Context, req dto.OtpIssueRequest) (*dto.OtpIssueResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return nil, ErrEmptyIdentifier
	}
	purpose := domain.OtpPurpose(req.Purpose)
	if !purpose.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPurpose, req.Purpose)
	}
	var userID *domain.UserID
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			return nil, ErrInvalidUserID
		}
		userID = &parsed
	}

	code, err := o.codes.Digits(o.cfg.CodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	hash, salt, err := o.hasher.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("hash code: %w", err)
	}

	now := o.now()
	session := &domain.OtpSession{
		ID:          uuid.New(),
		Identifier:  identifier,
		CountryCode: req.CountryCode,
		UserID:      userID,
		Purpose:     purpose,
		CodeHash:    hash,
		CodeSalt:    salt,
		Attempts:    0,
		MaxAttempts: o.cfg.MaxAttempts,
		Verified:    false,
		ExpiresAt:   now.Add(o.cfg.TTL),
		CreatedAt:   now,
	}

	if err := o.sessions.CreateIfNoneSince(ctx, session, now.Add(-o.cfg.ResendWindow)); err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.OtpIssuedTotal.WithLabelValues("rate_limited").Inc()
			return nil, fmt.Errorf("%w: re-issuance within %s", domain.ErrRateLimited, o.cfg.ResendWindow)
		}
		return nil, err
	}

	if err := o.notifier.SendCode(ctx, identifier, req.CountryCode, code); err != nil {
		metrics.OtpIssuedTotal.WithLabelValues("send_failed").Inc()
		slog.Warn("otp delivery failed",
			"session_id", session.ID,
			"identifier", maskIdentifier(identifier),
			"error", err,
		)
		return nil, fmt.Errorf("send code: %w", err)
	}

	metrics.OtpIssuedTotal.WithLabelValues("issued").Inc()
	slog.Info("otp issued",
		"session_id", session.ID,
		"identifier", maskIdentifier(identifier),
		"purpose", purpose,
	)
	return &dto.OtpIssueResponse{
		SessionID: session.ID.String(),
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (o *OtpServiceImpl) Verify(ctx context.Context, req dto.OtpVerifyRequest) (*dto.OtpVerifyResponse, error) {
	sessionID, err := uuid.Parse(strings.TrimSpace(req.SessionID))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	if req.Code == "" {
		return nil, ErrEmptyCode
	}

	session, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			metrics.OtpVerificationsTotal.WithLabelValues("not_found").Inc()
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	now := o.now()
	if err := o.sessionState(session, now); err != nil {
		metrics.OtpVerificationsTotal.WithLabelValues(resultLabel(err)).Inc()
		return nil, err
	}

	if !o.hasher.Compare(req.Code, session.CodeHash, session.CodeSalt) {
		return o.recordMismatch(ctx, session, now)
	}

	if err := o.sessions.MarkVerified(ctx, sessionID, now); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Lost the conditional write: re-read to learn what beat us.
			return nil, o.classifyConflict(ctx, sessionID, now)
		}
		return nil, err
	}

	o.recordUse(ctx, session)
	metrics.OtpVerificationsTotal.WithLabelValues("verified").Inc()
	slog.Info("otp verified",
		"session_id", session.ID,
		"identifier", maskIdentifier(session.Identifier),
		"purpose", session.Purpose,
	)
	return &dto.OtpVerifyResponse{
		Verified:          true,
		RemainingAttempts: guard.RemainingAttempts(session.Attempts, session.MaxAttempts),
	}, nil
}

// sessionState rejects sessions that are no longer open for verification.
// Consumed wins over expired so a completed session keeps answering
// AlreadyConsumed for the rest of its life.
func (o *OtpServiceImpl) sessionState(session *domain.OtpSession, now time.Time) error {
	switch {
	case session.Verified:
		return domain.ErrAlreadyConsumed
	case guard.IsExpired(session.ExpiresAt, now):
		return domain.ErrExpired
	case guard.RemainingAttempts(session.Attempts, session.MaxAttempts) == 0:
		return domain.ErrExhausted
	}
	return nil
}

func (o *OtpServiceImpl) recordMismatch(ctx context.Context, session *domain.OtpSession, now time.Time) (*dto.OtpVerifyResponse, error) {
	err := o.sessions.IncrementAttempts(ctx, session.ID, session.Attempts)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, o.classifyConflict(ctx, session.ID, now)
		}
		return nil, err
	}

	remaining := guard.RemainingAttempts(session.Attempts+1, session.MaxAttempts)
	if remaining == 0 {
		metrics.OtpVerificationsTotal.WithLabelValues("exhausted").Inc()
		slog.Warn("otp attempts exhausted",
			"session_id", session.ID,
			"identifier", maskIdentifier(session.Identifier),
		)
		return nil, domain.ErrExhausted
	}
	metrics.OtpVerificationsTotal.WithLabelValues("invalid_code").Inc()
	return nil, &domain.InvalidCodeError{Remaining: remaining}
}

// classifyConflict resolves a lost conditional write into the typed
// failure the winning writer left behind.
func (o *OtpServiceImpl) classifyConflict(ctx context.Context, id domain.SessionID, now time.Time) error {
	session, err := o.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	if err := o.sessionState(session, now); err != nil {
		metrics.OtpVerificationsTotal.WithLabelValues(resultLabel(err)).Inc()
		return err
	}
	// Still open: a concurrent mismatch bumped the counter first.
	metrics.OtpVerificationsTotal.WithLabelValues("invalid_code").Inc()
	return &domain.InvalidCodeError{
		Remaining: guard.RemainingAttempts(session.Attempts, session.MaxAttempts),
	}
}

func (o *OtpServiceImpl) recordUse(ctx context.Context, session *domain.OtpSession) {
	if o.methods == nil || session.UserID == nil {
		return
	}
	t := domain.MethodSMSOTP
	if strings.Contains(session.Identifier, "@") {
		t = domain.MethodEmailOTP
	}
	if err := o.methods.RecordUseByIdentifier(ctx, *session.UserID, t, session.Identifier); err != nil {
		// The verification itself already committed; losing the lastUsedAt
		// bump is harmless.
		slog.Warn("record method use failed",
			"user_id", session.UserID,
			"type", t,
			"error", err,
		)
	}
}

func maskIdentifier(identifier string) string {
	if strings.Contains(identifier, "@") {
		return MaskEmail(identifier)
	}
	return MaskPhone(identifier)
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyConsumed):
		return "already_consumed"
	case errors.Is(err, domain.ErrExpired):
		return "expired"
	case errors.Is(err, domain.ErrExhausted):
		return "exhausted"
	case errors.Is(err, domain.ErrAlreadyUsed):
		return "already_used"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
