// Package auth handles SMS-code phone authentication and the session token
// lifecycle around it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Code is a one-time SMS verification code record.
type Code struct {
	ID        string
	Phone     string
	Code      string
	CreatedAt time.Time
	UsedAt    *time.Time
}

// Repository handles SMS code persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new auth Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// InsertCode stores a freshly issued code. Older codes for the phone stay in
// place; lookups always pick the newest unused one.
func (r *Repository) InsertCode(ctx context.Context, phone, code string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sms_codes (phone, code) VALUES ($1, $2)`,
		phone, code,
	)
	if err != nil {
		return fmt.Errorf("insert sms code: %w", err)
	}
	return nil
}

// LatestUnused returns the most recently created unused record matching
// phone and code, regardless of age; expiry is the service's concern.
func (r *Repository) LatestUnused(ctx context.Context, phone, code string) (*Code, error) {
	c := &Code{}
	err := r.db.QueryRow(ctx,
		`SELECT id, phone, code, created_at, used_at
		 FROM sms_codes
		 WHERE phone = $1 AND code = $2 AND used_at IS NULL
		 ORDER BY created_at DESC
		 LIMIT 1`,
		phone, code,
	).Scan(&c.ID, &c.Phone, &c.Code, &c.CreatedAt, &c.UsedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest unused code: %w", err)
	}
	return c, nil
}

// Consume marks the code used with a conditional update. When two logins race
// on the same code, exactly one update matches; the loser gets ErrCodeConsumed.
func (r *Repository) Consume(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sms_codes SET used_at = now()
		 WHERE id = $1 AND used_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("consume sms code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCodeConsumed
	}
	return nil
}
