package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"authcore/internal/domain"
)

type OtpSessionStore struct{ db *gorm.DB }

func (s *Store) OtpSessions() *OtpSessionStore { return &OtpSessionStore{db: s.DB} }

func (os *OtpSessionStore) Create(ctx context.Context, session *domain.OtpSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return run(ctx, func() error {
		return os.db.WithContext(ctx).Create(session).Error
	})
}

func (os *OtpSessionStore) Get(ctx context.Context, id domain.SessionID) (*domain.OtpSession, error) {
	var session domain.OtpSession
	err := run(ctx, func() error {
		return os.db.WithContext(ctx).First(&session, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateIfNoneSince inserts the session only if no session for the same
// identifier and purpose was created after `since`. The rate-limit check
// and the insert are one statement, so two concurrent issuance attempts
// inside the window cannot both pass the gate.
func (os *OtpSessionStore) CreateIfNoneSince(ctx context.Context, session *domain.OtpSession, since time.Time) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return run(ctx, func() error {
		tx := os.db.WithContext(ctx).Exec(`
INSERT INTO otp_sessions
	(id, identifier, country_code, user_id, purpose, code_hash, code_salt,
	 attempts, max_attempts, verified, expires_at, created_at)
SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
WHERE NOT EXISTS (
	SELECT 1 FROM otp_sessions
	WHERE identifier = ? AND purpose = ? AND created_at > ?
)`,
			session.ID, session.Identifier, session.CountryCode, session.UserID,
			session.Purpose, session.CodeHash, session.CodeSalt,
			session.Attempts, session.MaxAttempts, session.Verified,
			session.ExpiresAt, session.CreatedAt,
			session.Identifier, session.Purpose, since)
		if tx.Error != nil {
			return tx.Error
		}
		if tx.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
}

// LatestByIdentifier returns the most recently issued session for the
// identifier and purpose, or ErrRecordNotFound.
func (os *OtpSessionStore) LatestByIdentifier(ctx context.Context, identifier string, purpose domain.OtpPurpose) (*domain.OtpSession, error) {
	var session domain.OtpSession
	err := run(ctx, func() error {
		return os.db.WithContext(ctx).
			Where("identifier = ? AND purpose = ?", identifier, purpose).
			Order("created_at DESC").
			First(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// IncrementAttempts bumps the attempt counter if and only if the session
// still holds the expected count, is unverified and has attempts left.
// Returns ErrConflict when a concurrent writer got there first.
func (os *OtpSessionStore) IncrementAttempts(ctx context.Context, id domain.SessionID, expectedAttempts int) error {
	return run(ctx, func() error {
		tx := os.db.WithContext(ctx).
			Model(&domain.OtpSession{}).
			Where("id = ? AND verified = ? AND attempts = ? AND attempts < max_attempts", id, false, expectedAttempts).
			Update("attempts", gorm.Expr("attempts + 1"))
		if tx.Error != nil {
			return tx.Error
		}
		if tx.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
}

// MarkVerified flips the session to verified exactly once. The guard keeps
// a racing expiry sweep or a second verifier from committing the same
// transition; the loser observes ErrConflict.
func (os *OtpSessionStore) MarkVerified(ctx context.Context, id domain.SessionID, now time.Time) error {
	return run(ctx, func() error {
		tx := os.db.WithContext(ctx).
			Model(&domain.OtpSession{}).
			Where("id = ? AND verified = ? AND attempts < max_attempts AND expires_at > ?", id, false, now).
			Update("verified", true)
		if tx.Error != nil {
			return tx.Error
		}
		if tx.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
}

// DeleteFinished purges sessions that are verified, exhausted or past
// expiry. Housekeeping only; correctness never depends on it.
func (os *OtpSessionStore) DeleteFinished(ctx context.Context, now time.Time) (int64, error) {
	var affected int64
	err := run(ctx, func() error {
		tx := os.db.WithContext(ctx).
			Where("verified = ? OR attempts >= max_attempts OR expires_at <= ?", true, now).
			Delete(&domain.OtpSession{})
		affected = tx.RowsAffected
		return tx.Error
	})
	return affected, err
}
