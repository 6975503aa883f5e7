package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/circleband/backend/internal/config"
	"github.com/circleband/backend/internal/middleware"
	"github.com/circleband/backend/internal/response"
	"github.com/circleband/backend/internal/token"
)

// phoneRegex matches 11-digit mobile numbers.
var phoneRegex = regexp.MustCompile(`^[0-9]{11}$`)

// RefreshTokenCookie is the cookie carrying the refresh token.
const RefreshTokenCookie = "refresh_token"

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
	cfg *config.Config
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service, cfg *config.Config) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

type sendCodeRequest struct {
	Phone  string `json:"phone" example:"13800000000"`
	IsTest bool   `json:"is_test,omitempty"`
}

type loginRequest struct {
	Phone string `json:"phone" example:"13800000000"`
	Code  string `json:"code"  example:"123456"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SendSMSCode godoc
//
//	@Summary		Send SMS verification code
//	@Description	Generate and send a 6-digit code to the given phone. With is_test the code is the fixed test value and no SMS is sent.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sendCodeRequest	true	"Phone number"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/send-sms-code [post]
func (h *Handler) SendSMSCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !phoneRegex.MatchString(req.Phone) {
		response.BadRequest(w, "invalid phone number format")
		return
	}

	if err := h.svc.SendCode(r.Context(), req.Phone, req.IsTest); err != nil {
		response.InternalError(w, err)
		return
	}

	response.OK(w, "verification code sent", map[string]string{"phone": req.Phone})
}

// Login godoc
//
//	@Summary		Log in with an SMS code
//	@Description	Validates the code, creates the account on first login, and returns access/refresh tokens. Tokens are also set as HTTP-only cookies.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Phone and code"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !phoneRegex.MatchString(req.Phone) {
		response.BadRequest(w, "invalid phone number format")
		return
	}
	if len(req.Code) != h.cfg.SMSCodeLength {
		response.BadRequest(w, "invalid code length")
		return
	}

	result, err := h.svc.Login(r.Context(), req.Phone, req.Code)
	switch {
	case errors.Is(err, ErrCodeExpired):
		response.BadRequest(w, "verification code expired")
		return
	case errors.Is(err, ErrCodeNotFound), errors.Is(err, ErrCodeConsumed):
		response.BadRequest(w, "verification code incorrect or already used")
		return
	case err != nil:
		response.InternalError(w, err)
		return
	}

	h.setAuthCookies(w, result.Tokens)
	response.OK(w, "login successful", map[string]interface{}{
		"user":          result.User,
		"access_token":  result.Tokens.Access,
		"refresh_token": result.Tokens.Refresh,
	})
}

// Logout godoc
//
//	@Summary		Log out
//	@Description	Clears the auth cookies.
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	response.Envelope
//	@Router			/login [delete]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearAuthCookies(w)
	response.OK(w, "logout successful", nil)
}

// RefreshToken godoc
//
//	@Summary		Refresh the access token
//	@Description	Reads the refresh token from the cookie or the request body and issues a new access token. The refresh token rotates when rotation is enabled.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Router			/refresh-token [post]
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	raw := ""
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		raw = c.Value
	}
	if raw == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			raw = req.RefreshToken
		}
	}
	if raw == "" {
		response.Unauthorized(w, "refresh token missing")
		return
	}

	pair, err := h.svc.Refresh(raw)
	if err != nil {
		response.Unauthorized(w, "refresh token invalid or expired")
		return
	}

	h.setAuthCookies(w, pair)
	response.OK(w, "token refreshed", map[string]string{
		"access_token": pair.Access,
	})
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, pair *token.Pair) {
	http.SetCookie(w, h.authCookie(middleware.AccessTokenCookie, pair.Access, h.cfg.AccessTokenTTL))
	http.SetCookie(w, h.authCookie(RefreshTokenCookie, pair.Refresh, h.cfg.RefreshTokenTTL))
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		c := h.authCookie(name, "", 0)
		c.Expires = time.Unix(0, 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (h *Handler) authCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  time.Now().Add(ttl),
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Secure:   h.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: sameSite(h.cfg.CookieSameSite),
	}
}

func sameSite(v string) http.SameSite {
	switch v {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
