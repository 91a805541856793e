package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/avereyes/promptdesk/internal/domain"
	"github.com/avereyes/promptdesk/internal/gateway"
	"github.com/avereyes/promptdesk/internal/session"
)

// Ask answers any Microsoft 365 question. Body: {"question": "..."}.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	data := requestData(r)
	question := data["question"]
	if question == "" {
		JSON(w, http.StatusOK, map[string]string{"answer": "Please enter a question."})
		return
	}

	answer, err := h.gw.Complete(r.Context(), gateway.CompletionRequest{
		Messages: []domain.Turn{
			{Role: domain.RoleSystem, Content: h.prompts.AskSystem},
			{Role: domain.RoleUser, Content: question},
		},
		Temperature: 0.5,
		MaxTokens:   300,
	})
	if err != nil {
		slog.Warn("ask generation failed", "error", err)
		answer = "Failed to respond. Try again later."
	}

	JSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// Manual returns beginner manual instructions for doing a task by
// hand. Body: {"task": "...", "context": "...", "app_selected": "..."}.
func (h *Handler) Manual(w http.ResponseWriter, r *http.Request) {
	data := requestData(r)
	task := data["task"]
	taskContext := data["context"]
	app := data["app_selected"]
	if app == "" {
		app = "a Microsoft 365 app"
	}
	if task == "" {
		Error(w, http.StatusBadRequest, "missing task")
		return
	}

	steps, err := h.gw.Complete(r.Context(), gateway.CompletionRequest{
		Messages: []domain.Turn{
			{Role: domain.RoleSystem, Content: h.prompts.ManualSystem},
			{Role: domain.RoleUser, Content: fmt.Sprintf(
				"The user wants to manually complete this task in Microsoft %s:\n\nTask: %s\n\nContext:\n%s",
				app, task, taskContext)},
		},
		Temperature: 0.6,
		MaxTokens:   700,
	})
	if err != nil {
		slog.Warn("manual steps generation failed", "error", err)
		steps = "Manual instructions unavailable. Please try again later."
	}

	JSON(w, http.StatusOK, map[string]string{"manual_steps": steps})
}

// ExplainQuestion explains why a clarifying question matters, in
// plain terms. Body: {"question": "..."} plus optional app/task.
func (h *Handler) ExplainQuestion(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	data := requestData(r)
	question := data["question"]
	app := data["app"]
	task := data["task"]
	if app == "" && sess != nil {
		app = sess.SelectedApp
	}
	if task == "" && sess != nil {
		task = sess.OriginalTask
	}
	if app == "" {
		app = "Microsoft 365"
	}

	if question == "" {
		JSON(w, http.StatusOK, map[string]string{
			"explanation": "This follow-up is asking for more detail so the prompt is precise. If you're not sure, you can skip it.",
		})
		return
	}

	explanation, err := h.gw.Complete(r.Context(), gateway.CompletionRequest{
		Messages: []domain.Turn{
			{Role: domain.RoleSystem, Content: h.prompts.ExplainQuestion},
			{Role: domain.RoleUser, Content: fmt.Sprintf(
				"Microsoft 365 app: %s\nTask: %s\nFollow-up question to explain: %s",
				app, task, question)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		slog.Warn("explain_question generation failed", "error", err)
		explanation = fmt.Sprintf(
			"This question is asking about: '%s'. Think of it in simple terms. "+
				"Example: if it asks for 'version of Word', it means something like Word 2016 or Word 365. "+
				"You can skip this question if you want.", question)
	}

	JSON(w, http.StatusOK, map[string]string{"explanation": explanation})
}

// ExplainPrompt explains a finished Copilot prompt in beginner
// terms. Body: {"prompt": "..."}.
func (h *Handler) ExplainPrompt(w http.ResponseWriter, r *http.Request) {
	data := requestData(r)
	promptText := data["prompt"]
	if promptText == "" {
		JSON(w, http.StatusOK, map[string]string{"explanation": "No prompt provided to explain."})
		return
	}

	explanation, err := h.gw.Complete(r.Context(), gateway.CompletionRequest{
		Messages: []domain.Turn{
			{Role: domain.RoleSystem, Content: h.prompts.ExplainPrompt},
			{Role: domain.RoleUser, Content: "Explain this Copilot prompt:\n" + promptText},
		},
		Temperature: 0.3,
	})
	if err != nil {
		slog.Warn("explain_prompt generation failed", "error", err)
		explanation = "Sorry, we couldn't explain that prompt right now."
	}

	JSON(w, http.StatusOK, map[string]string{"explanation": explanation})
}
