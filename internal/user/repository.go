// Package user manages user accounts and their persistence.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User represents a registered account, keyed by phone number.
type User struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Nickname  *string   `json:"nickname,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

const userColumns = `id, phone, nickname, avatar_url, created_at, updated_at`

// Repository handles all user database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetOrCreateByPhone returns the user for phone, inserting a fresh record if
// none exists. The upsert makes concurrent first logins converge on one row.
func (r *Repository) GetOrCreateByPhone(ctx context.Context, phone string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (phone) VALUES ($1)
		 ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
		 RETURNING `+userColumns,
		phone,
	).Scan(&u.ID, &u.Phone, &u.Nickname, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create user: %w", err)
	}
	return u, nil
}

// GetByID fetches a user by their UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Phone, &u.Nickname, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByPhone fetches a user by their phone number.
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone = $1`,
		phone,
	).Scan(&u.ID, &u.Phone, &u.Nickname, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by phone: %w", err)
	}
	return u, nil
}

// UpdateProfile sets the fields that are non-nil and returns the updated record.
func (r *Repository) UpdateProfile(ctx context.Context, id string, nickname, avatarURL *string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx,
		`UPDATE users
		 SET nickname   = COALESCE($2, nickname),
		     avatar_url = COALESCE($3, avatar_url),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, nickname, avatarURL,
	).Scan(&u.ID, &u.Phone, &u.Nickname, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
