package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"authcore/internal/domain"
)

type MethodStore struct{ db *gorm.DB }

func (s *Store) Methods() *MethodStore { return &MethodStore{db: s.DB} }

func (ms *MethodStore) Create(ctx context.Context, m *domain.AuthenticationMethod) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return run(ctx, func() error {
		return ms.db.WithContext(ctx).Create(m).Error
	})
}

func (ms *MethodStore) Get(ctx context.Context, userID domain.UserID, id domain.MethodID) (*domain.AuthenticationMethod, error) {
	var m domain.AuthenticationMethod
	err := run(ctx, func() error {
		return ms.db.WithContext(ctx).First(&m, "id = ? AND user_id = ?", id, userID).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (ms *MethodStore) ListByUser(ctx context.Context, userID domain.UserID) ([]domain.AuthenticationMethod, error) {
	var methods []domain.AuthenticationMethod
	err := run(ctx, func() error {
		return ms.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("created_at ASC").
			Find(&methods).Error
	})
	if err != nil {
		return nil, err
	}
	return methods, nil
}

func (ms *MethodStore) ListByUserAndType(ctx context.Context, userID domain.UserID, t domain.MethodType) ([]domain.AuthenticationMethod, error) {
	var methods []domain.AuthenticationMethod
	err := run(ctx, func() error {
		return ms.db.WithContext(ctx).
			Where("user_id = ? AND type = ?", userID, t).
			Find(&methods).Error
	})
	if err != nil {
		return nil, err
	}
	return methods, nil
}

func (ms *MethodStore) MarkUsed(ctx context.Context, id domain.MethodID, at time.Time) error {
	return run(ctx, func() error {
		return ms.db.WithContext(ctx).
			Model(&domain.AuthenticationMethod{}).
			Where("id = ?", id).
			Updates(map[string]any{"last_used_at": at, "updated_at": at}).Error
	})
}

func (ms *MethodStore) SetEnabled(ctx context.Context, userID domain.UserID, id domain.MethodID, enabled bool, at time.Time) error {
	return run(ctx, func() error {
		tx := ms.db.WithContext(ctx).
			Model(&domain.AuthenticationMethod{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(map[string]any{"enabled": enabled, "updated_at": at})
		if tx.Error != nil {
			return tx.Error
		}
		if tx.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

// UpdateMetadata replaces the stored metadata document, used when a method
// moves to verified after its first successful challenge.
func (ms *MethodStore) UpdateMetadata(ctx context.Context, id domain.MethodID, metadata []byte, at time.Time) error {
	return run(ctx, func() error {
		tx := ms.db.WithContext(ctx).
			Model(&domain.AuthenticationMethod{}).
			Where("id = ?", id).
			Updates(map[string]any{"metadata": metadata, "updated_at": at})
		if tx.Error != nil {
			return tx.Error
		}
		if tx.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}
