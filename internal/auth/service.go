package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/circleband/backend/internal/config"
	"github.com/circleband/backend/internal/sms"
	"github.com/circleband/backend/internal/token"
	"github.com/circleband/backend/internal/user"
)

// ErrCodeNotFound is returned when no unused code matches the phone and code.
var ErrCodeNotFound = errors.New("verification code not found")

// ErrCodeExpired is returned when the matching code is older than the TTL.
var ErrCodeExpired = errors.New("verification code expired")

// ErrCodeConsumed is returned when a concurrent login won the race for the
// same code.
var ErrCodeConsumed = errors.New("verification code already used")

// CodeStore is the persistence contract the service needs for codes.
type CodeStore interface {
	InsertCode(ctx context.Context, phone, code string) error
	LatestUnused(ctx context.Context, phone, code string) (*Code, error)
	Consume(ctx context.Context, id string) error
}

// UserProvider resolves accounts by phone, creating them on first login.
type UserProvider interface {
	GetOrCreateByPhone(ctx context.Context, phone string) (*user.User, error)
}

// LoginResult holds the outcome of a successful login.
type LoginResult struct {
	User   *user.User
	Tokens *token.Pair
}

// Service contains the business logic for phone-based authentication.
type Service struct {
	codes  CodeStore
	users  UserProvider
	sender sms.Sender
	tokens *token.Service
	cfg    *config.Config
}

// NewService creates a new auth Service.
func NewService(codes CodeStore, users UserProvider, sender sms.Sender, tokens *token.Service, cfg *config.Config) *Service {
	return &Service{codes: codes, users: users, sender: sender, tokens: tokens, cfg: cfg}
}

// SendCode generates a verification code, persists it, and sends it to the
// phone. In test mode the code is the configured fixed value and no SMS goes
// out, so automated clients can log in deterministically.
func (s *Service) SendCode(ctx context.Context, phone string, isTest bool) error {
	code := s.cfg.SMSTestCode
	if !isTest {
		var err error
		code, err = generateCode(s.cfg.SMSCodeLength)
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
	}

	if err := s.codes.InsertCode(ctx, phone, code); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	if isTest {
		return nil
	}

	if !s.cfg.IsProduction() {
		log.Printf("[SMS-CODE] phone=%s code=%s", phone, code)
	}
	if err := s.sender.Send(ctx, phone, fmt.Sprintf("Your verification code is %s", code)); err != nil {
		return fmt.Errorf("send code: %w", err)
	}
	return nil
}

// Login validates the code for the phone and, on success, consumes it,
// resolves the user (created on first login), and issues a token pair.
//
// A code is expired strictly after created_at+TTL: verification at exactly
// the TTL boundary still succeeds.
func (s *Service) Login(ctx context.Context, phone, code string) (*LoginResult, error) {
	rec, err := s.codes.LatestUnused(ctx, phone, code)
	if err != nil {
		return nil, err
	}

	if expired(rec.CreatedAt, time.Now(), s.cfg.SMSCodeTTL) {
		return nil, ErrCodeExpired
	}

	if err := s.codes.Consume(ctx, rec.ID); err != nil {
		return nil, err
	}

	u, err := s.users.GetOrCreateByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	pair, err := s.tokens.Issue(token.Subject{UserID: u.ID, Phone: u.Phone})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	return &LoginResult{User: u, Tokens: pair}, nil
}

// Refresh exchanges a refresh token for a new pair.
func (s *Service) Refresh(refreshToken string) (*token.Pair, error) {
	return s.tokens.Refresh(refreshToken)
}

// expired reports whether a code created at createdAt is past its TTL at now.
// A code at exactly createdAt+ttl is still valid.
func expired(createdAt, now time.Time, ttl time.Duration) bool {
	return now.After(createdAt.Add(ttl))
}

// generateCode returns a cryptographically random numeric code of n digits.
func generateCode(n int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
