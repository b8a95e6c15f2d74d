package sweeper

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"authcore/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	metrics.MustRegister("test")
	os.Exit(m.Run())
}

type fakeDeleter struct {
	n     int64
	err   error
	calls int
}

func (f *fakeDeleter) DeleteFinished(ctx context.Context, now time.Time) (int64, error) {
	f.calls++
	return f.n, f.err
}

type fakePush struct {
	expired   int64
	deleted   int64
	expireErr error
}

func (f *fakePush) ExpireSweep(ctx context.Context, now time.Time) (int64, error) {
	return f.expired, f.expireErr
}

func (f *fakePush) DeleteOldRequests(ctx context.Context, olderThan time.Duration) (int64, error) {
	return f.deleted, nil
}

func newTestSweeper(push *fakePush, otps, passkeys *fakeDeleter) *Sweeper {
	return &Sweeper{
		cfg:      DefaultConfig(),
		otps:     otps,
		passkeys: passkeys,
		push:     push,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func TestSweepRunsAllSteps(t *testing.T) {
	otps := &fakeDeleter{n: 2}
	passkeys := &fakeDeleter{n: 1}
	push := &fakePush{expired: 3, deleted: 4}

	s := newTestSweeper(push, otps, passkeys)
	s.Sweep(context.Background())

	require.Equal(t, 1, otps.calls)
	require.Equal(t, 1, passkeys.calls)
}

func TestSweepContinuesPastFailures(t *testing.T) {
	otps := &fakeDeleter{err: errors.New("db down")}
	passkeys := &fakeDeleter{n: 1}
	push := &fakePush{expireErr: errors.New("db down")}

	s := newTestSweeper(push, otps, passkeys)
	s.Sweep(context.Background())

	// A failed step must not stop the remaining steps.
	require.Equal(t, 1, otps.calls)
	require.Equal(t, 1, passkeys.calls)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestSweeper(&fakePush{}, &fakeDeleter{}, &fakeDeleter{})
	s.cfg.Interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
