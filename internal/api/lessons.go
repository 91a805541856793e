package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/avereyes/promptdesk/internal/domain"
	"github.com/avereyes/promptdesk/internal/gateway"
	"github.com/go-chi/chi/v5"
)

// validApps maps the lesson-mode allow-list to display names.
var validApps = map[string]string{
	"word":       "Word",
	"excel":      "Excel",
	"outlook":    "Outlook",
	"teams":      "Teams",
	"powerpoint": "PowerPoint",
}

const degradedLessonMsg = "Sorry, we couldn't load your lesson right now. Please try again later."

// TeachMePage renders the lesson picker.
func (h *Handler) TeachMePage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "teach_me", map[string]any{
		"LoggedIn":   true,
		"ActivePage": "teach_me",
	})
}

// TeachMe generates a beginner lesson for the selected app.
func (h *Handler) TeachMe(w http.ResponseWriter, r *http.Request) {
	data := requestData(r)
	app := data["app"]

	view := map[string]any{
		"LoggedIn":   true,
		"ActivePage": "teach_me",
	}

	if app != "" {
		lesson, err := h.gw.Complete(r.Context(), gateway.CompletionRequest{
			Messages: []domain.Turn{
				{Role: domain.RoleSystem, Content: h.prompts.LessonSystem},
				{Role: domain.RoleUser, Content: fmt.Sprintf("Give me a beginner-friendly lesson on how to use %s.", app)},
			},
			Temperature: 0.4,
		})
		if err != nil {
			slog.Warn("lesson generation failed", "app", app, "error", err)
			lesson = degradedLessonMsg
		}
		view["Lesson"] = lesson
	}

	h.renderer.Render(w, "teach_me", view)
}

// Learn renders the full lesson mode for one app, optionally
// tailored to a topic submitted via POST.
func (h *Handler) Learn(w http.ResponseWriter, r *http.Request) {
	appSlug := strings.ToLower(chi.URLParam(r, "app"))
	appName, ok := validApps[appSlug]
	if !ok {
		http.NotFound(w, r)
		return
	}

	topic := ""
	if r.Method == http.MethodPost {
		topic = requestData(r)["topic"]
	}

	var userPrompt string
	if topic != "" {
		userPrompt = fmt.Sprintf(
			"You are teaching a total beginner how to use Microsoft %s to do this:\n'%s'\n\n"+
				"Use a step-by-step format with super simple explanations, plain language, and zero technical jargon. "+
				"Make it feel like a helpful live training session for someone who has never used the app before.",
			appName, topic)
	} else {
		userPrompt = fmt.Sprintf(
			"You're teaching a brand new employee how to use Microsoft %s from scratch. "+
				"Assume they have zero experience. Walk them through it slowly, like a beginner class. "+
				"Use very plain language, examples, and short, clear steps. No technical terms.",
			appName)
	}

	lesson, err := h.gw.Complete(r.Context(), gateway.CompletionRequest{
		Messages: []domain.Turn{
			{Role: domain.RoleSystem, Content: h.prompts.LearnSystem},
			{Role: domain.RoleUser, Content: userPrompt},
		},
		Temperature: 0.6,
		MaxTokens:   900,
	})
	if err != nil {
		slog.Warn("learn lesson failed", "app", appSlug, "error", err)
		lesson = degradedLessonMsg
	}

	h.renderer.Render(w, "learn", map[string]any{
		"LoggedIn":   true,
		"ActivePage": "learn",
		"App":        appName,
		"AppSlug":    appSlug,
		"Topic":      topic,
		"Lesson":     lesson,
	})
}
