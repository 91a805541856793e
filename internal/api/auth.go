package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/avereyes/promptdesk/internal/domain"
	"github.com/avereyes/promptdesk/internal/session"
)

// LoginPage renders the shared-password login form. Already
// authenticated browsers skip straight to the dashboard.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()) != nil {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, "login", map[string]any{})
}

// Login checks the shared password and establishes a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	data := requestData(r)
	password := data["password"]

	if subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.Password)) != 1 {
		h.renderer.Render(w, "login", map[string]any{
			"Error": "Incorrect password. Please try again.",
		})
		return
	}

	now := time.Now()
	sess := &domain.Session{
		Token:      session.NewToken(),
		LoggedIn:   true,
		State:      domain.StateIdle,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := h.repo.CreateSession(r.Context(), sess); err != nil {
		slog.Error("failed to create session", "error", err)
		h.renderer.Render(w, "login", map[string]any{
			"Error": "Something went wrong. Please try again.",
		})
		return
	}

	session.SetCookie(w, sess.Token, h.cfg.IsDevelopment())
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// Logout destroys the session and returns to the login page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := session.FromContext(r.Context()); sess != nil {
		if err := h.repo.DeleteSession(r.Context(), sess.Token); err != nil {
			slog.Warn("failed to delete session on logout", "error", err)
		}
	}
	session.ClearCookie(w, h.cfg.IsDevelopment())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Home renders the dashboard with the most recent prompt history.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "home", map[string]any{
		"LoggedIn":   true,
		"ActivePage": "home",
		"History":    h.history.ReadRecent(10),
	})
}
