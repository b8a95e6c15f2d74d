package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"authcore/internal/domain"
)

type PushRequestStore struct{ db *gorm.DB }

func (s *Store) PushRequests() *PushRequestStore { return &PushRequestStore{db: s.DB} }

func (pr *PushRequestStore) Create(ctx context.Context, req *domain.PushAuthRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	return run(ctx, func() error {
		return pr.db.WithContext(ctx).Create(req).Error
	})
}

func (pr *PushRequestStore) Get(ctx context.Context, id domain.RequestID) (*domain.PushAuthRequest, error) {
	var req domain.PushAuthRequest
	err := run(ctx, func() error {
		return pr.db.WithContext(ctx).First(&req, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (pr *PushRequestStore) GetByChallenge(ctx context.Context, challenge string) (*domain.PushAuthRequest, error) {
	var req domain.PushAuthRequest
	err := run(ctx, func() error {
		return pr.db.WithContext(ctx).First(&req, "challenge = ?", challenge).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (pr *PushRequestStore) ListPendingByUser(ctx context.Context, userID domain.UserID) ([]domain.PushAuthRequest, error) {
	var reqs []domain.PushAuthRequest
	err := run(ctx, func() error {
		return pr.db.WithContext(ctx).
			Where("user_id = ? AND status = ?", userID, domain.PushPending).
			Order("created_at ASC").
			Find(&reqs).Error
	})
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// Transition moves a request from PENDING to a terminal status. First
// committer wins; the loser observes ErrConflict and must re-read to learn
// the status that beat it.
func (pr *PushRequestStore) Transition(ctx context.Context, id domain.RequestID, to domain.PushStatus, respondedBy string, at time.Time) error {
	return run(ctx, func() error {
		tx := pr.db.WithContext(ctx).
			Model(&domain.PushAuthRequest{}).
			Where("id = ? AND status = ?", id, domain.PushPending).
			Updates(map[string]any{
				"status":       to,
				"responded_by": respondedBy,
				"responded_at": at,
			})
		if tx.Error != nil {
			return tx.Error
		}
		if tx.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
}

// MarkExpired transitions every overdue PENDING request to EXPIRED.
// Idempotent; requests already terminal are untouched.
func (pr *PushRequestStore) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	var affected int64
	err := run(ctx, func() error {
		tx := pr.db.WithContext(ctx).
			Model(&domain.PushAuthRequest{}).
			Where("status = ? AND expires_at <= ?", domain.PushPending, now).
			Update("status", domain.PushExpired)
		affected = tx.RowsAffected
		return tx.Error
	})
	return affected, err
}

// CancelPendingForUser cancels every currently-PENDING request for the
// user and returns how many were cancelled.
func (pr *PushRequestStore) CancelPendingForUser(ctx context.Context, userID domain.UserID, at time.Time) (int64, error) {
	var affected int64
	err := run(ctx, func() error {
		tx := pr.db.WithContext(ctx).
			Model(&domain.PushAuthRequest{}).
			Where("user_id = ? AND status = ?", userID, domain.PushPending).
			Updates(map[string]any{
				"status":       domain.PushCancelled,
				"responded_at": at,
			})
		affected = tx.RowsAffected
		return tx.Error
	})
	return affected, err
}

// DeleteOlderThan removes terminal requests created before the cutoff.
// PENDING requests inside their TTL are never touched.
func (pr *PushRequestStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var affected int64
	err := run(ctx, func() error {
		tx := pr.db.WithContext(ctx).
			Where("status <> ? AND created_at < ?", domain.PushPending, cutoff).
			Delete(&domain.PushAuthRequest{})
		affected = tx.RowsAffected
		return tx.Error
	})
	return affected, err
}
