package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	h := CORS("https://tools.example.com")(okHandler())

	r := httptest.NewRequest(http.MethodGet, "/api/ask", nil)
	r.Header.Set("Origin", "https://tools.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "https://tools.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSRejectsOtherOrigins(t *testing.T) {
	h := CORS("https://tools.example.com")(okHandler())

	r := httptest.NewRequest(http.MethodGet, "/api/ask", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSEmptyConfigAddsNothing(t *testing.T) {
	h := CORS("")(okHandler())

	r := httptest.NewRequest(http.MethodGet, "/home", nil)
	r.Header.Set("Origin", "https://anywhere.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSShortCircuitsPreflight(t *testing.T) {
	called := false
	h := CORS("https://tools.example.com")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodOptions, "/api/ask", nil)
	r.Header.Set("Origin", "https://tools.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, called)
}
