package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"authcore/internal/domain"
)

// Transient storage failures get a short bounded retry before surfacing as
// ErrStorageUnavailable. Not-found and lost conditional updates are
// outcomes, not faults, and pass through untouched.
func run(ctx context.Context, op func() error) error {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(50*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound),
			errors.Is(err, ErrRecordNotFound),
			errors.Is(err, ErrConflict),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			return retry.RetryableError(err)
		}
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	if errors.Is(err, ErrRecordNotFound) || errors.Is(err, ErrConflict) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
}
