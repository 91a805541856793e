// Package api provides HTTP handlers for the PromptDesk web surface.
package api

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/avereyes/promptdesk/internal/config"
	"github.com/avereyes/promptdesk/internal/conversation"
	"github.com/avereyes/promptdesk/internal/domain"
	"github.com/avereyes/promptdesk/internal/gateway"
	"github.com/avereyes/promptdesk/internal/history"
	"github.com/avereyes/promptdesk/internal/prompts"
	"github.com/avereyes/promptdesk/internal/session"
	"github.com/avereyes/promptdesk/internal/store"
	"github.com/avereyes/promptdesk/web"
	"github.com/go-chi/chi/v5"
)

// maxRequestBodySize caps JSON request bodies (1MB).
const maxRequestBodySize = 1 << 20

// Handler serves every page and API endpoint.
type Handler struct {
	repo     store.Repository
	renderer *web.Renderer
	engine   *conversation.Engine
	gw       gateway.Client
	prompts  prompts.Set
	history  *history.Log
	cfg      *config.Config
}

// NewHandler creates a Handler with its dependencies.
func NewHandler(repo store.Repository, renderer *web.Renderer, engine *conversation.Engine, gw gateway.Client, set prompts.Set, log *history.Log, cfg *config.Config) *Handler {
	return &Handler{
		repo:     repo,
		renderer: renderer,
		engine:   engine,
		gw:       gw,
		prompts:  set,
		history:  log,
		cfg:      cfg,
	}
}

// RegisterRoutes registers all routes. Everything except the login
// flow sits behind the auth guard.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(session.RequireAuth)

		r.Get("/home", h.Home)
		r.Get("/prompt_builder", h.PromptBuilderPage)
		r.Post("/prompt_builder", h.QuickBuild)
		r.Get("/teach_me", h.TeachMePage)
		r.Post("/teach_me", h.TeachMe)
		r.Get("/learn/{app}", h.Learn)
		r.Post("/learn/{app}", h.Learn)
		r.Get("/help", h.HelpPage)
		r.Post("/help", h.Help)
		r.Get("/ask_help", h.AskHelpPage)
		r.Post("/ask_help", h.AskHelp)
		r.Get("/troubleshooter", h.TroubleshooterPage)
		r.Post("/troubleshooter", h.Troubleshoot)

		r.Route("/api", func(r chi.Router) {
			r.Post("/builder/start", h.BuilderStart)
			r.Post("/builder/reply", h.BuilderReply)
			r.Post("/builder/finalize", h.BuilderFinalize)
			r.Post("/ask", h.Ask)
			r.Post("/manual", h.Manual)
			r.Post("/explain_question", h.ExplainQuestion)
			r.Post("/explain_prompt", h.ExplainPrompt)
		})
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// requestData merges a JSON body and form fields into one map, JSON
// winning on conflicts. String values are trimmed. The original UI
// posts some endpoints as forms and some as JSON; accepting both
// keeps every caller working.
func requestData(r *http.Request) map[string]string {
	data := make(map[string]string)

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodySize)
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err == nil {
			for k, v := range raw {
				if s, ok := v.(string); ok {
					data[k] = strings.TrimSpace(s)
				}
			}
		}
		return data
	}

	if err := r.ParseForm(); err == nil {
		for k := range r.PostForm {
			if _, exists := data[k]; !exists {
				data[k] = strings.TrimSpace(r.PostForm.Get(k))
			}
		}
	}
	return data
}

// viewCard adapts a domain card for template rendering. Card text is
// escaped by the formatting layer already; re-escaping it here would
// double-encode entities.
type viewCard struct {
	Number  int
	Text    template.HTML
	Flagged bool
}

func toViewCards(cards []domain.Card) []viewCard {
	out := make([]viewCard, len(cards))
	for i, c := range cards {
		out[i] = viewCard{Number: c.Number, Text: template.HTML(c.Text), Flagged: c.Flagged}
	}
	return out
}
