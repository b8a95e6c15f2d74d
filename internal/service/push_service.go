package service

import (
	"context"
	"time"

	"authcore/internal/domain"
	"authcore/internal/dto"
)

type PushService interface {
	Create(ctx context.Context, req dto.PushCreateRequest) (*dto.PushCreateResponse, error)
	Respond(ctx context.Context, req dto.PushRespondRequest) (*dto.PushStatusResponse, error)
	Poll(ctx context.Context, requestID domain.RequestID) (*dto.PushStatusResponse, error)
	// CancelPendingForUser cancels every outstanding request for the user,
	// invoked when the user completes authentication through another
	// method. The actor names who triggered the cancellation.
	CancelPendingForUser(ctx context.Context, userID domain.UserID, actor string) (int64, error)
	// ExpireSweep and DeleteOldRequests are invoked by the housekeeping
	// worker, never by request handlers.
	ExpireSweep(ctx context.Context, now time.Time) (int64, error)
	DeleteOldRequests(ctx context.Context, olderThan time.Duration) (int64, error)
}
