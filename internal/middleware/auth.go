package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/circleband/backend/internal/response"
	"github.com/circleband/backend/internal/token"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// UserIDKey is the context key for the authenticated user's ID.
const UserIDKey contextKey = "userID"

// UserPhoneKey is the context key for the authenticated user's phone.
const UserPhoneKey contextKey = "userPhone"

// AccessTokenCookie is the cookie carrying the access token.
const AccessTokenCookie = "access_token"

// RequireAuth returns middleware that validates an access token from the
// Authorization header or the access_token cookie and injects the subject
// into the request context.
func RequireAuth(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := extractToken(r)
			if !ok {
				response.Unauthorized(w, "authentication required")
				return
			}

			sub, err := tokens.Verify(raw, token.KindAccess)
			if err == token.ErrExpired {
				response.Unauthorized(w, "token expired")
				return
			}
			if err != nil {
				response.Unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, sub.UserID)
			ctx = context.WithValue(ctx, UserPhoneKey, sub.Phone)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken prefers a Bearer header and falls back to the auth cookie.
func extractToken(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", false
		}
		return parts[1], true
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}
