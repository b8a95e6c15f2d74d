package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"authcore/internal/domain"
)

type PasskeyChallengeStore struct{ db *gorm.DB }

func (s *Store) PasskeyChallenges() *PasskeyChallengeStore {
	return &PasskeyChallengeStore{db: s.DB}
}

func (ps *PasskeyChallengeStore) Create(ctx context.Context, ch *domain.PasskeyChallenge) error {
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	return run(ctx, func() error {
		return ps.db.WithContext(ctx).Create(ch).Error
	})
}

func (ps *PasskeyChallengeStore) Get(ctx context.Context, id domain.ChallengeID) (*domain.PasskeyChallenge, error) {
	var ch domain.PasskeyChallenge
	err := run(ctx, func() error {
		return ps.db.WithContext(ctx).First(&ch, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// Consume marks the challenge used, guarded on it being unused and still
// inside its TTL. A replayed ceremony response loses the conditional write
// and gets ErrConflict.
func (ps *PasskeyChallengeStore) Consume(ctx context.Context, id domain.ChallengeID, now time.Time) error {
	return run(ctx, func() error {
		tx := ps.db.WithContext(ctx).
			Model(&domain.PasskeyChallenge{}).
			Where("id = ? AND used = ? AND expires_at > ?", id, false, now).
			Update("used", true)
		if tx.Error != nil {
			return tx.Error
		}
		if tx.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
}

func (ps *PasskeyChallengeStore) DeleteFinished(ctx context.Context, now time.Time) (int64, error) {
	var affected int64
	err := run(ctx, func() error {
		tx := ps.db.WithContext(ctx).
			Where("used = ? OR expires_at <= ?", true, now).
			Delete(&domain.PasskeyChallenge{})
		affected = tx.RowsAffected
		return tx.Error
	})
	return affected, err
}
