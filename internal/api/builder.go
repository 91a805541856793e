package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avereyes/promptdesk/internal/conversation"
	"github.com/avereyes/promptdesk/internal/domain"
	"github.com/avereyes/promptdesk/internal/gateway"
	"github.com/avereyes/promptdesk/internal/session"
)

// degradedBuilderMsg is shown whenever the gateway fails mid-flow.
const degradedBuilderMsg = "We could not generate that right now. Please try again in a moment."

// PromptBuilderPage renders the interactive builder.
func (h *Handler) PromptBuilderPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "prompt_builder", map[string]any{
		"LoggedIn":    true,
		"ActivePage":  "prompt_builder",
		"AppSelected": "Word",
	})
}

// QuickBuild assembles a Copilot prompt from the form fields alone,
// without any AI round trip. The result is still logged to history.
func (h *Handler) QuickBuild(w http.ResponseWriter, r *http.Request) {
	data := requestData(r)
	app := data["app"]
	if app == "" {
		app = "Word"
	}
	task := data["task"]
	tone := data["tone"]
	if tone == "" {
		tone = "professional"
	}

	lines := []string{
		fmt.Sprintf("You are Copilot inside Microsoft %s.", app),
	}
	if task != "" {
		lines = append(lines, "Goal: "+task)
	} else {
		lines = append(lines, "Goal: Help me accomplish a task in this app.")
	}
	if v := data["outcome"]; v != "" {
		lines = append(lines, "Desired outcome: "+v+".")
	}
	if v := data["audience"]; v != "" {
		lines = append(lines, "Audience: "+v+".")
	}
	lines = append(lines, "Tone: "+tone+".")
	if v := data["format_pref"]; v != "" {
		lines = append(lines, "Output format: "+v+".")
	}
	if v := data["constraints"]; v != "" {
		lines = append(lines, "Constraints or notes: "+v+".")
	}
	lines = append(lines,
		"Instructions: Provide clear, numbered steps in beginner friendly language. "+
			"Offer a short example if helpful. End with a quick checklist of what the user should verify.",
		"Safety: Do not include any workplace-sensitive, personal, or confidential information. "+
			"Use generic placeholders instead of real names, emails, or files.",
	)
	promptText := strings.Join(lines, "\n")

	if err := h.history.Append(domain.HistoryEntry{
		Timestamp: time.Now(),
		App:       app,
		Task:      task,
		Context:   "quick build",
		Prompt:    promptText,
	}); err != nil {
		slog.Warn("failed to log quick-build prompt", "error", err)
	}

	h.renderer.Render(w, "prompt_builder", map[string]any{
		"LoggedIn":    true,
		"ActivePage":  "prompt_builder",
		"AppSelected": app,
		"PromptText":  promptText,
	})
}

// BuilderStart seeds a new builder conversation for this session.
func (h *Handler) BuilderStart(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	data := requestData(r)
	app := data["app"]
	goal := data["goal"]

	if app == "" || goal == "" {
		Error(w, http.StatusBadRequest, "missing app or goal")
		return
	}

	result, err := h.engine.Start(r.Context(), app, goal)
	if err != nil {
		h.builderError(w, err)
		return
	}

	sess.SelectedApp = app
	sess.OriginalTask = goal
	h.saveBuilderState(r, sess, result, 1)
	h.writeBuilderResult(w, result)
}

// BuilderReply feeds the user's answer into the clarification loop.
func (h *Handler) BuilderReply(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	data := requestData(r)
	message := data["message"]

	if message == "" {
		Error(w, http.StatusBadRequest, "missing message")
		return
	}
	if sess.State == domain.StateFinalized {
		Error(w, http.StatusBadRequest, "conversation already finalized")
		return
	}
	if sess.State != domain.StateAwaitingAnswer && sess.State != domain.StateSeeded {
		Error(w, http.StatusBadRequest, "no conversation in progress")
		return
	}

	transcript, err := h.repo.GetTurns(r.Context(), sess.Token)
	if err != nil {
		slog.Error("failed to load transcript", "error", err)
		Error(w, http.StatusInternalServerError, "could not load conversation")
		return
	}

	result, err := h.engine.Advance(r.Context(), transcript, message, sess.SelectedApp, sess.OriginalTask, sess.Clarifications)
	if err != nil {
		h.builderError(w, err)
		return
	}

	h.saveBuilderState(r, sess, result, sess.Clarifications+1)
	h.writeBuilderResult(w, result)
}

// BuilderFinalize forces the structured result for the current
// conversation regardless of the gating decision.
func (h *Handler) BuilderFinalize(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	if sess.State == domain.StateFinalized {
		Error(w, http.StatusBadRequest, "conversation already finalized")
		return
	}
	if sess.State != domain.StateAwaitingAnswer && sess.State != domain.StateSeeded {
		Error(w, http.StatusBadRequest, "no conversation in progress")
		return
	}

	transcript, err := h.repo.GetTurns(r.Context(), sess.Token)
	if err != nil {
		slog.Error("failed to load transcript", "error", err)
		Error(w, http.StatusInternalServerError, "could not load conversation")
		return
	}

	result, err := h.engine.Finalize(r.Context(), transcript, sess.SelectedApp, sess.OriginalTask)
	if err != nil {
		h.builderError(w, err)
		return
	}

	h.saveBuilderState(r, sess, result, sess.Clarifications)
	h.writeBuilderResult(w, result)
}

// saveBuilderState persists the updated transcript and session
// bookkeeping. Failures are logged; the user still gets their result.
func (h *Handler) saveBuilderState(r *http.Request, sess *domain.Session, result *conversation.Result, clarifications int) {
	if err := h.repo.ReplaceTurns(r.Context(), sess.Token, result.Transcript); err != nil {
		slog.Warn("failed to persist transcript", "error", err)
	}
	sess.State = result.State
	sess.Clarifications = clarifications
	if err := h.repo.UpdateSession(r.Context(), sess); err != nil {
		slog.Warn("failed to persist session state", "error", err)
	}
}

func (h *Handler) writeBuilderResult(w http.ResponseWriter, result *conversation.Result) {
	if result.NeedMore {
		JSON(w, http.StatusOK, map[string]any{
			"need_more": true,
			"question":  result.Question,
		})
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"need_more":   false,
		"prompt":      result.Prompt,
		"explanation": result.Explanation,
	})
}

// builderError maps engine failures onto the response contract:
// validation problems are 400s, gateway trouble degrades politely.
func (h *Handler) builderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, conversation.ErrEmptyGoal),
		errors.Is(err, conversation.ErrEmptyAnswer):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, conversation.ErrFinalized):
		Error(w, http.StatusBadRequest, "conversation already finalized")
	case gateway.IsGatewayError(err):
		slog.Warn("gateway failure in builder", "error", err)
		// Degraded but valid: the page shows the message, the session
		// stays usable, and the client is free to retry.
		JSON(w, http.StatusOK, map[string]string{"error": degradedBuilderMsg})
	default:
		slog.Error("builder failure", "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
