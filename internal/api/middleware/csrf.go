package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

const csrfTokenHeader = "X-CSRF-Token" //nolint:gosec // G101: not a credential, this is an HTTP header name
const csrfCookieName = "csrf_token"

// CSRFFormField is the hidden form input carrying the token.
const CSRFFormField = "csrf_token"

// csrfTokenTTL bounds how long an issued token stays valid.
const csrfTokenTTL = 24 * time.Hour

type csrfKey struct{}

// CSRF provides double-submit token protection for form posts and the JSON
// action endpoint. A request is accepted when the token it submits equals
// its csrf cookie and was issued by this process.
type CSRF struct {
	mu     sync.Mutex
	tokens map[string]time.Time // token -> issued at
	secure bool
	now    func() time.Time
}

// NewCSRF creates a CSRF middleware instance. secure marks the cookie
// Secure, which requires TLS.
func NewCSRF(secure bool) *CSRF {
	return &CSRF{tokens: make(map[string]time.Time), secure: secure, now: time.Now}
}

// Middleware returns the CSRF handler that validates tokens on unsafe methods.
func (c *CSRF) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			token := c.ensureToken(w, r)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
			return
		}

		cookie, err := r.Cookie(csrfCookieName)
		if err != nil || cookie.Value == "" {
			http.Error(w, `{"error":"missing CSRF cookie"}`, http.StatusForbidden)
			return
		}

		token := r.Header.Get(csrfTokenHeader)
		if token == "" {
			token = r.PostFormValue(CSRFFormField)
		}

		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cookie.Value)) != 1 || !c.valid(token) {
			http.Error(w, `{"error":"invalid CSRF token"}`, http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
	})
}

// TokenFromContext returns the CSRF token for the current request, for
// embedding in rendered forms.
func TokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(csrfKey{}).(string)
	return v
}

// Sweep forgets expired tokens and returns how many were removed.
func (c *CSRF) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for token, issued := range c.tokens {
		if c.now().Sub(issued) >= csrfTokenTTL {
			delete(c.tokens, token)
			removed++
		}
	}
	return removed
}

func (c *CSRF) ensureToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" && c.valid(cookie.Value) {
		return cookie.Value
	}

	token := c.generate()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false, // page script reads it for the JSON API header
		SameSite: http.SameSiteStrictMode,
		Secure:   c.secure,
		MaxAge:   int(csrfTokenTTL / time.Second),
	})
	return token
}

func (c *CSRF) generate() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	token := hex.EncodeToString(b)

	c.mu.Lock()
	c.tokens[token] = c.now()
	c.mu.Unlock()

	return token
}

func (c *CSRF) valid(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	issued, ok := c.tokens[token]
	return ok && c.now().Sub(issued) < csrfTokenTTL
}
