package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/circleband/backend/internal/token"
)

func newTestHandler() (*Handler, *fakeCodeStore) {
	store := &fakeCodeStore{}
	cfg := testConfig()
	cfg.CookiePath = "/"
	cfg.CookieSameSite = "lax"
	cfg.AccessTokenTTL = time.Minute
	cfg.RefreshTokenTTL = time.Hour

	tokens := token.NewService(token.Config{
		Secret:     "test-secret",
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	svc := NewService(store, fakeUsers{}, &recordingSender{}, tokens, cfg)
	return NewHandler(svc, cfg), store
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSendSMSCodeEndpoint(t *testing.T) {
	h, store := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/send-sms-code",
		strings.NewReader(`{"phone":"13800000000","is_test":true}`))
	rec := httptest.NewRecorder()

	h.SendSMSCode(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if len(store.codes) != 1 || store.codes[0].Code != "123456" {
		t.Errorf("unexpected stored codes: %+v", store.codes)
	}
}

func TestSendSMSCodeInvalidPhone(t *testing.T) {
	h, _ := newTestHandler()

	tests := []string{
		`{"phone":"12345"}`,
		`{"phone":"1380000000a"}`,
		`{"phone":""}`,
		`garbage`,
	}
	for _, body := range tests {
		req := httptest.NewRequest(http.MethodPost, "/send-sms-code", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.SendSMSCode(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status %d, want 400", body, rec.Code)
		}
	}
}

func TestLoginSetsAuthCookies(t *testing.T) {
	h, _ := newTestHandler()

	send := httptest.NewRequest(http.MethodPost, "/send-sms-code",
		strings.NewReader(`{"phone":"13800000000","is_test":true}`))
	h.SendSMSCode(httptest.NewRecorder(), send)

	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"phone":"13800000000","code":"123456"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	access := findCookie(cookies, "access_token")
	refresh := findCookie(cookies, "refresh_token")
	if access == nil || access.Value == "" {
		t.Fatal("access_token cookie not set")
	}
	if refresh == nil || refresh.Value == "" {
		t.Fatal("refresh_token cookie not set")
	}
	if !access.HttpOnly || !refresh.HttpOnly {
		t.Error("auth cookies must be HTTP-only")
	}
	if access.Path != "/" {
		t.Errorf("access cookie path %q", access.Path)
	}
}

func TestLoginWrongCodeIs400(t *testing.T) {
	h, _ := newTestHandler()

	send := httptest.NewRequest(http.MethodPost, "/send-sms-code",
		strings.NewReader(`{"phone":"13800000000","is_test":true}`))
	h.SendSMSCode(httptest.NewRecorder(), send)

	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"phone":"13800000000","code":"654321"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestLogoutClearsCookies(t *testing.T) {
	h, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodDelete, "/login", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	for _, name := range []string{"access_token", "refresh_token"} {
		c := findCookie(rec.Result().Cookies(), name)
		if c == nil {
			t.Fatalf("%s cookie not cleared", name)
		}
		if c.Value != "" || c.MaxAge >= 0 {
			t.Errorf("%s cookie not expired: value=%q maxage=%d", name, c.Value, c.MaxAge)
		}
	}
}

func TestRefreshTokenFromCookie(t *testing.T) {
	h, _ := newTestHandler()

	send := httptest.NewRequest(http.MethodPost, "/send-sms-code",
		strings.NewReader(`{"phone":"13800000000","is_test":true}`))
	h.SendSMSCode(httptest.NewRecorder(), send)

	login := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"phone":"13800000000","code":"123456"}`))
	loginRec := httptest.NewRecorder()
	h.Login(loginRec, login)
	refresh := findCookie(loginRec.Result().Cookies(), "refresh_token")
	if refresh == nil {
		t.Fatal("no refresh cookie from login")
	}

	req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
	req.AddCookie(refresh)
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if c := findCookie(rec.Result().Cookies(), "access_token"); c == nil || c.Value == "" {
		t.Error("refresh must set a new access cookie")
	}
}

func TestRefreshTokenMissing(t *testing.T) {
	h, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/refresh-token", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", rec.Code)
	}
}

func TestRefreshTokenInvalid(t *testing.T) {
	h, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/refresh-token",
		strings.NewReader(`{"refresh_token":"bogus"}`))
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", rec.Code)
	}
}
