// Package token issues and verifies signed session tokens. It owns the
// access/refresh pair lifecycle so the rest of the code never touches JWT
// internals directly.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates access tokens from refresh tokens.
type Kind string

// Token kinds carried in the "typ" claim.
const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// ErrExpired is returned when a token's expiry has passed.
var ErrExpired = errors.New("token expired")

// ErrInvalid is returned for malformed tokens, bad signatures, and kind mismatches.
var ErrInvalid = errors.New("token invalid")

// Subject identifies the authenticated principal a token was issued for.
type Subject struct {
	UserID string
	Phone  string
}

// Pair holds a freshly minted access/refresh token pair.
type Pair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// Config controls signing and lifetimes.
type Config struct {
	Secret        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	RotateRefresh bool
}

// Service mints and verifies HS256 tokens.
type Service struct {
	cfg Config
}

// NewService creates a token Service.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// AccessTTL returns the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.cfg.AccessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

// Issue mints a new access/refresh pair for the subject.
func (s *Service) Issue(sub Subject) (*Pair, error) {
	access, err := s.sign(sub, KindAccess, s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(sub, KindRefresh, s.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &Pair{Access: access, Refresh: refresh}, nil
}

// Verify parses raw, checks the signature, expiry, and that the token is of
// the expected kind, and returns the subject it was issued for.
func (s *Service) Verify(raw string, kind Kind) (*Subject, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tok.Valid {
		return nil, ErrInvalid
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}
	if typ, _ := claims["typ"].(string); typ != string(kind) {
		return nil, ErrInvalid
	}

	userID, _ := claims["sub"].(string)
	phone, _ := claims["phone"].(string)
	if userID == "" {
		return nil, ErrInvalid
	}
	return &Subject{UserID: userID, Phone: phone}, nil
}

// Refresh exchanges a valid refresh token for a new pair. When rotation is
// disabled the original refresh token is carried over unchanged.
func (s *Service) Refresh(raw string) (*Pair, error) {
	sub, err := s.Verify(raw, KindRefresh)
	if err != nil {
		return nil, err
	}

	access, err := s.sign(*sub, KindAccess, s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh := raw
	if s.cfg.RotateRefresh {
		refresh, err = s.sign(*sub, KindRefresh, s.cfg.RefreshTTL)
		if err != nil {
			return nil, fmt.Errorf("rotate refresh token: %w", err)
		}
	}
	return &Pair{Access: access, Refresh: refresh}, nil
}

func (s *Service) sign(sub Subject, kind Kind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   sub.UserID,
		"phone": sub.Phone,
		"typ":   string(kind),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(s.cfg.Secret))
}
