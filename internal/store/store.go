package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrRecordNotFound = errors.New("record not found")

	// ErrConflict means a conditional update matched zero rows: the
	// record's current state no longer satisfies the guard, typically
	// because a concurrent writer committed first.
	ErrConflict = errors.New("conditional update conflict")
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

// AutoMigrate creates the schema for every entity this service owns.
func (s *Store) AutoMigrate(models ...any) error {
	return s.DB.AutoMigrate(models...)
}
