package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestCSRF_SafeMethodSetsToken(t *testing.T) {
	csrf := NewCSRF(true)
	var seen string
	handler := csrf.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("CSRF cookie not set on GET request")
	}
	if cookie.Value == "" {
		t.Error("CSRF cookie value is empty")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("SameSite = %v, want Strict", cookie.SameSite)
	}
	if !cookie.Secure {
		t.Error("Secure = false, want true")
	}
	if seen != cookie.Value {
		t.Errorf("TokenFromContext = %q, want cookie value %q", seen, cookie.Value)
	}
}

func TestCSRF_InsecureCookie(t *testing.T) {
	csrf := NewCSRF(false)
	handler := csrf.Middleware(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookieName && c.Secure {
			t.Error("Secure = true, want false")
		}
	}
}

func TestCSRF_UnsafeMethodWithoutToken(t *testing.T) {
	csrf := NewCSRF(false)
	handler := csrf.Middleware(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestCSRF_UnsafeMethodWithValidHeaderToken(t *testing.T) {
	csrf := NewCSRF(false)
	token := csrf.generate()
	handler := csrf.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/actions", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	req.Header.Set(csrfTokenHeader, token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestCSRF_UnsafeMethodWithValidFormToken(t *testing.T) {
	csrf := NewCSRF(false)
	token := csrf.generate()
	handler := csrf.Middleware(okHandler())

	form := url.Values{CSRFFormField: {token}, "text": {"daft"}}
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestCSRF_TokenMustMatchCookie(t *testing.T) {
	csrf := NewCSRF(false)
	a := csrf.generate()
	b := csrf.generate()
	handler := csrf.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: a})
	req.Header.Set(csrfTokenHeader, b)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestCSRF_UnsafeMethodWithUnknownToken(t *testing.T) {
	csrf := NewCSRF(false)
	handler := csrf.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "bogus-token"})
	req.Header.Set(csrfTokenHeader, "bogus-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestCSRF_ExistingValidCookieNotReplaced(t *testing.T) {
	csrf := NewCSRF(false)
	token := csrf.generate()
	handler := csrf.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookieName {
			t.Error("should not re-set cookie when valid token exists")
		}
	}
}

func TestCSRF_ExpiredTokenRejectedAndSwept(t *testing.T) {
	csrf := NewCSRF(false)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	csrf.now = func() time.Time { return now }
	token := csrf.generate()

	now = now.Add(csrfTokenTTL)
	handler := csrf.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	req.Header.Set(csrfTokenHeader, token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if got := csrf.Sweep(); got != 1 {
		t.Errorf("Sweep() = %d, want 1", got)
	}
}

func TestCSRF_HeadAndOptionsAreSafe(t *testing.T) {
	handler := NewCSRF(false).Middleware(okHandler())

	for _, method := range []string{http.MethodHead, http.MethodOptions} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(method, "/", nil))

		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", method, w.Code, http.StatusOK)
		}
	}
}
