// Package sweeper runs the periodic housekeeping pass: expiring overdue
// push requests and deleting finished challenge records. Every action it
// takes is also safe to race with a concurrent request handler, so the
// sweep never needs a lock.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"authcore/internal/observability/metrics"
	"authcore/internal/service"
	"authcore/internal/store"
)

type Config struct {
	Interval  time.Duration
	Retention time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:  time.Minute,
		Retention: 24 * time.Hour,
	}
}

type finishedDeleter interface {
	DeleteFinished(ctx context.Context, now time.Time) (int64, error)
}

type pushSweeper interface {
	ExpireSweep(ctx context.Context, now time.Time) (int64, error)
	DeleteOldRequests(ctx context.Context, olderThan time.Duration) (int64, error)
}

type Sweeper struct {
	cfg      Config
	otps     finishedDeleter
	passkeys finishedDeleter
	push     pushSweeper
	now      func() time.Time
}

func New(cfg Config, st *store.Store, push service.PushService) *Sweeper {
	return &Sweeper{
		cfg:      cfg,
		otps:     st.OtpSessions(),
		passkeys: st.PasskeyChallenges(),
		push:     push,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run blocks until the context is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs a single housekeeping pass. Errors are logged and do not
// abort the remaining steps; a failed step is simply retried on the next
// tick.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.now()

	if n, err := s.push.ExpireSweep(ctx, now); err != nil {
		slog.Error("push expiry sweep failed", "error", err)
	} else if n > 0 {
		metrics.SweepRecordsTotal.WithLabelValues("push_request", "expired").Add(float64(n))
		slog.Info("push requests expired", "count", n)
	}

	if n, err := s.push.DeleteOldRequests(ctx, s.cfg.Retention); err != nil {
		slog.Error("push retention sweep failed", "error", err)
	} else if n > 0 {
		metrics.SweepRecordsTotal.WithLabelValues("push_request", "deleted").Add(float64(n))
	}

	if n, err := s.otps.DeleteFinished(ctx, now); err != nil {
		slog.Error("otp session sweep failed", "error", err)
	} else if n > 0 {
		metrics.SweepRecordsTotal.WithLabelValues("otp_session", "deleted").Add(float64(n))
	}

	if n, err := s.passkeys.DeleteFinished(ctx, now); err != nil {
		slog.Error("passkey challenge sweep failed", "error", err)
	} else if n > 0 {
		metrics.SweepRecordsTotal.WithLabelValues("passkey_challenge", "deleted").Add(float64(n))
	}
}
