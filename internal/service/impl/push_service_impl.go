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
	"authcore/internal/netutil"
	"authcore/internal/observability/metrics"
	"authcore/internal/service"
	"authcore/internal/store"
)

var _ service.PushService = (*PushServiceImpl)(nil)

type PushConfig struct {
	TTL           time.Duration
	ChallengeSize int
	MaxPending    int
}

func DefaultPushConfig() PushConfig {
	return PushConfig{
		TTL:           5 * time.Minute,
		ChallengeSize: 32,
		MaxPending:    3,
	}
}

type pushRequestStore interface {
	Create(ctx context.Context, req *domain.PushAuthRequest) error
	Get(ctx context.Context, id domain.RequestID) (*domain.PushAuthRequest, error)
	GetByChallenge(ctx context.Context, challenge string) (*domain.PushAuthRequest, error)
	ListPendingByUser(ctx context.Context, userID domain.UserID) ([]domain.PushAuthRequest, error)
	Transition(ctx context.Context, id domain.RequestID, to domain.PushStatus, respondedBy string, at time.Time) error
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	CancelPendingForUser(ctx context.Context, userID domain.UserID, at time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type PushServiceImpl struct {
	requests pushRequestStore
	notifier service.Notifier
	codes    service.CodeSource
	cfg      PushConfig
	now      func() time.Time
}

func NewPushService(st *store.Store, notifier service.Notifier, codes service.CodeSource, cfg PushConfig) *PushServiceImpl {
	return &PushServiceImpl{
		requests: st.PushRequests(),
		notifier: notifier,
		codes:    codes,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (p *PushServiceImpl) Create(ctx context.Context, req dto.PushCreateRequest) (*dto.PushCreateResponse, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, ErrInvalidUserID
	}
	purpose := domain.PushPurpose(req.Purpose)
	if purpose == "" {
		purpose = domain.PushPurposeSignIn
	}
	switch purpose {
	case domain.PushPurposeSignIn, domain.PushPurposeMFA, domain.PushPurposeRecovery:
	default:
		return nil, fmt.Errorf("%w: push purpose %q", ErrInvalidPurpose, req.Purpose)
	}

	now := p.now()
	if err := p.capPending(ctx, userID, now); err != nil {
		return nil, err
	}

	raw, err := p.codes.Bytes(p.cfg.ChallengeSize)
	if err != nil {
		return nil, fmt.Errorf("generate challenge: %w", err)
	}
	challenge := base64.RawURLEncoding.EncodeToString(raw)

	ip, _ := netutil.NormalizeIP(req.IP)
	request := &domain.PushAuthRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Challenge: challenge,
		Status:    domain.PushPending,
		Purpose:   purpose,
		IP:        ip,
		Location:  netutil.TruncateLocation(req.Location),
		UserAgent: netutil.TruncateUserAgent(req.UserAgent),
		ExpiresAt: now.Add(p.cfg.TTL),
		CreatedAt: now,
	}
	if err := p.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	if err := p.notifier.SendPush(ctx, userID.String(), service.PushPayload{
		RequestID: request.ID.String(),
		Challenge: challenge,
		Purpose:   string(purpose),
		Location:  req.Location,
	}); err != nil {
		slog.Warn("push delivery failed",
			"request_id", request.ID,
			"user_id", userID,
			"error", err,
		)
	}

	metrics.PushRequestsTotal.WithLabelValues("created").Inc()
	slog.Info("push auth request created",
		"request_id", request.ID,
		"user_id", userID,
		"purpose", purpose,
		"challenge", maskToken(challenge),
	)
	return &dto.PushCreateResponse{
		RequestID: request.ID.String(),
		Challenge: challenge,
		ExpiresAt: request.ExpiresAt,
	}, nil
}

// capPending cancels the oldest outstanding requests so the user never has
// more than MaxPending pending at once.
func (p *PushServiceImpl) capPending(ctx context.Context, userID domain.UserID, now time.Time) error {
	if p.cfg.MaxPending <= 0 {
		return nil
	}
	pending, err := p.requests.ListPendingByUser(ctx, userID)
	if err != nil {
		return err
	}
	excess := len(pending) - p.cfg.MaxPending + 1
	for i := 0; i < excess; i++ {
		err := p.requests.Transition(ctx, pending[i].ID, domain.PushCancelled, "", now)
		if err != nil && !errors.Is(err, store.ErrConflict) {
			return err
		}
		if err == nil {
			metrics.PushRequestsTotal.WithLabelValues("cancelled").Inc()
			slog.Info("cancelled oldest pending push request",
				"request_id", pending[i].ID,
				"user_id", userID,
			)
		}
	}
	return nil
}

func (p *PushServiceImpl) Respond(ctx context.Context, req dto.PushRespondRequest) (*dto.PushStatusResponse, error) {
	var to domain.PushStatus
	switch strings.ToLower(strings.TrimSpace(req.Decision)) {
	case "approve":
		to = domain.PushApproved
	case "deny":
		to = domain.PushDenied
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, req.Decision)
	}
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, ErrInvalidUserID
	}

	request, err := p.lookup(ctx, req.RequestID, req.Challenge)
	if err != nil {
		return nil, err
	}
	if request.UserID != userID {
		// Do not reveal whether the request exists to the wrong user.
		return nil, domain.ErrNotFound
	}

	now := p.now()
	if request.Status.Terminal() {
		return nil, domain.ErrInvalidTransition
	}
	if guard.IsExpired(request.ExpiresAt, now) {
		// Let the conditional write settle it: if the sweep has not run
		// yet, expire the request ourselves.
		if err := p.requests.Transition(ctx, request.ID, domain.PushExpired, "", now); err == nil {
			metrics.PushRequestsTotal.WithLabelValues("expired").Inc()
		}
		return nil, domain.ErrExpired
	}

	if err := p.requests.Transition(ctx, request.ID, to, req.DeviceID, now); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, domain.ErrInvalidTransition
		}
		return nil, err
	}

	metrics.PushRequestsTotal.WithLabelValues(strings.ToLower(string(to))).Inc()
	slog.Info("push auth request resolved",
		"request_id", request.ID,
		"user_id", userID,
		"status", to,
		"challenge", maskToken(request.Challenge),
	)

	request.Status = to
	request.RespondedAt = &now
	return statusView(request), nil
}

func (p *PushServiceImpl) lookup(ctx context.Context, requestID, challenge string) (*domain.PushAuthRequest, error) {
	var (
		request *domain.PushAuthRequest
		err     error
	)
	switch {
	case requestID != "":
		id, perr := uuid.Parse(strings.TrimSpace(requestID))
		if perr != nil {
			return nil, domain.ErrNotFound
		}
		request, err = p.requests.Get(ctx, id)
	case challenge != "":
		request, err = p.requests.GetByChallenge(ctx, challenge)
	default:
		return nil, domain.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return request, nil
}

func (p *PushServiceImpl) Poll(ctx context.Context, requestID domain.RequestID) (*dto.PushStatusResponse, error) {
	request, err := p.requests.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	now := p.now()
	if request.Status == domain.PushPending && guard.IsExpired(request.ExpiresAt, now) {
		if err := p.requests.Transition(ctx, request.ID, domain.PushExpired, "", now); err == nil {
			metrics.PushRequestsTotal.WithLabelValues("expired").Inc()
			request.Status = domain.PushExpired
		} else if !errors.Is(err, store.ErrConflict) {
			return nil, err
		} else if fresh, gerr := p.requests.Get(ctx, requestID); gerr == nil {
			request = fresh
		}
	}
	return statusView(request), nil
}

func (p *PushServiceImpl) CancelPendingForUser(ctx context.Context, userID domain.UserID, actor string) (int64, error) {
	if actor == "" {
		return 0, ErrEmptyActor
	}
	count, err := p.requests.CancelPendingForUser(ctx, userID, p.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		metrics.PushRequestsTotal.WithLabelValues("cancelled").Add(float64(count))
		slog.Info("cancelled pending push requests",
			"user_id", userID,
			"actor", actor,
			"count", count,
		)
	}
	return count, nil
}

func (p *PushServiceImpl) ExpireSweep(ctx context.Context, now time.Time) (int64, error) {
	count, err := p.requests.MarkExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		metrics.PushRequestsTotal.WithLabelValues("expired").Add(float64(count))
	}
	return count, nil
}

func (p *PushServiceImpl) DeleteOldRequests(ctx context.Context, olderThan time.Duration) (int64, error) {
	return p.requests.DeleteOlderThan(ctx, p.now().Add(-olderThan))
}

func statusView(request *domain.PushAuthRequest) *dto.PushStatusResponse {
	return &dto.PushStatusResponse{
		RequestID:   request.ID.String(),
		Status:      string(request.Status),
		Purpose:     string(request.Purpose),
		RespondedAt: request.RespondedAt,
		ExpiresAt:   request.ExpiresAt,
	}
}
