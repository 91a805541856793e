// Package session provides cookie-backed server-side sessions.
package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/avereyes/promptdesk/internal/domain"
	"github.com/avereyes/promptdesk/internal/store"
	"github.com/google/uuid"
)

const (
	// CookieName carries the opaque session token.
	CookieName = "promptdesk_session"

	cookieMaxAge = 24 * time.Hour
)

type contextKey int

const sessionKey contextKey = iota

// FromContext extracts the authenticated session from the request
// context. Returns nil when the request carries no valid session.
func FromContext(ctx context.Context) *domain.Session {
	if s, ok := ctx.Value(sessionKey).(*domain.Session); ok {
		return s
	}
	return nil
}

// NewToken issues an opaque session token.
func NewToken() string {
	return uuid.NewString()
}

// SetCookie writes the session cookie on a response.
func SetCookie(w http.ResponseWriter, token string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		Expires:  time.Now().Add(cookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// ClearCookie expires the session cookie on a response.
func ClearCookie(w http.ResponseWriter, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// Middleware resolves the session cookie to a stored session and
// injects it into the request context. Requests without a valid
// session pass through with no session attached; RequireAuth decides
// what to do about that.
func Middleware(repo store.Repository, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(CookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := repo.GetSession(r.Context(), c.Value)
			if err != nil || sess == nil || !sess.LoggedIn || sess.Expired(ttl) {
				next.ServeHTTP(w, r)
				return
			}

			// Best-effort activity bump; a failed touch never blocks
			// the request.
			_ = repo.TouchSession(r.Context(), sess.Token, time.Now())

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth guards protected routes. HTML flows are redirected to
// the login page; API flows get a 403 JSON error.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"not logged in"}`))
			return
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}
