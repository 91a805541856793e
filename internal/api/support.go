package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/avereyes/promptdesk/internal/domain"
	"github.com/avereyes/promptdesk/internal/format"
	"github.com/avereyes/promptdesk/internal/gateway"
)

const (
	degradedHelpMsg = "Sorry, there was an error fetching help. Please try again."

	// Section labels of the troubleshooter's two-part answer.
	labelFixSteps      = "Step-by-Step Fix"
	labelCopilotPrompt = "Copilot Prompt"
)

// networkKeywords flags problem descriptions that are likely
// connectivity issues IT has to handle, not the user.
var networkKeywords = []string{
	"network", "offline", "no internet", "cannot connect", "connection lost",
	"proxy", "vpn", "firewall", "gateway", "dns", "ssl", "tls", "server unreachable",
	"status.microsoft", "service health", "outage",
}

func looksNetworkRelated(text string) bool {
	text = strings.ToLower(text)
	for _, k := range networkKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// HelpPage renders the one-box help desk.
func (h *Handler) HelpPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "help", map[string]any{
		"LoggedIn":   true,
		"ActivePage": "help",
	})
}

// Help answers a free-form question with numbered beginner steps.
func (h *Handler) Help(w http.ResponseWriter, r *http.Request) {
	data := requestData(r)
	question := data["question"]

	view := map[string]any{
		"LoggedIn":   true,
		"ActivePage": "help",
		"Question":   question,
	}

	if question != "" {
		answer, err := h.gw.Complete(r.Context(), gateway.CompletionRequest{
			Messages: []domain.Turn{
				{Role: domain.RoleSystem, Content: h.prompts.HelpSystem},
				{Role: domain.RoleUser, Content: question},
			},
			Temperature: 0.4,
			MaxTokens:   700,
		})
		if err != nil {
			slog.Warn("help desk generation failed", "error", err)
			view["Answer"] = degradedHelpMsg
		} else {
			view["Answer"] = answer
			view["Cards"] = toViewCards(format.StepsToCards(answer))
		}
	}

	h.renderer.Render(w, "help", view)
}

// AskHelpPage renders the app+problem troubleshooting form.
func (h *Handler) AskHelpPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "ask_help", map[string]any{
		"LoggedIn":    true,
		"ActivePage":  "ask_help",
		"AppSelected": "Word",
	})
}

// AskHelp returns short numbered steps for a named app and problem.
func (h *Handler) AskHelp(w http.ResponseWriter, r *http.Request) {
	data := requestData(r)
	app := data["app"]
	problem := data["problem"]

	view := map[string]any{
		"LoggedIn":    true,
		"ActivePage":  "ask_help",
		"AppSelected": app,
		"Problem":     problem,
	}
	if app == "" {
		view["AppSelected"] = "Word"
	}

	if app == "" || problem == "" {
		view["Error"] = "Please select an app and describe the problem."
		h.renderer.Render(w, "ask_help", view)
		return
	}

	result, err := h.gw.Complete(r.Context(), gateway.CompletionRequest{
		Messages: []domain.Turn{
			{Role: domain.RoleSystem, Content: h.prompts.AskHelpSystem},
			{Role: domain.RoleUser, Content: fmt.Sprintf(
				"App: %s\nProblem: %s\nGive a short diagnosis first, then numbered steps to fix it. Keep it simple.",
				app, problem)},
		},
		Temperature: 0.3,
		MaxTokens:   550,
	})
	if err != nil {
		slog.Warn("ask_help generation failed", "error", err)
		view["Error"] = "Sorry, we could not generate help right now. Try again."
		h.renderer.Render(w, "ask_help", view)
		return
	}

	view["Cards"] = toViewCards(format.StepsToCards(result))
	h.renderer.Render(w, "ask_help", view)
}

// TroubleshooterPage renders the troubleshooter form.
func (h *Handler) TroubleshooterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "troubleshooter", map[string]any{
		"LoggedIn":   true,
		"ActivePage": "troubleshooter",
	})
}

// Troubleshoot produces a step-by-step fix plus a pasteable Copilot
// prompt from an app, error code, and description.
func (h *Handler) Troubleshoot(w http.ResponseWriter, r *http.Request) {
	data := requestData(r)
	app := data["m365_app"]
	errorCode := data["error_code"]
	description := data["description"]
	if app == "" {
		app = "Auto-detect"
	}

	view := map[string]any{
		"LoggedIn":    true,
		"ActivePage":  "troubleshooter",
		"ChosenApp":   app,
		"ErrorCode":   errorCode,
		"Description": description,
	}

	if looksNetworkRelated(app + " " + errorCode + " " + description) {
		view["NetworkNote"] = "This may be a network or connectivity issue. Please contact your IT support desk."
	}

	userPrompt := fmt.Sprintf("App: %s\nError Code: %s\nDescription: %s",
		app, orNone(errorCode), orNone(description))

	text, err := h.gw.Complete(r.Context(), gateway.CompletionRequest{
		Messages: []domain.Turn{
			{Role: domain.RoleSystem, Content: h.prompts.TroubleshootSystem},
			{Role: domain.RoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		slog.Warn("troubleshooter generation failed", "error", err)
		view["Error"] = "Sorry, something went wrong generating steps. Please try again."
		h.renderer.Render(w, "troubleshooter", view)
		return
	}

	sections := format.SplitLabeledSections(text, []string{labelFixSteps, labelCopilotPrompt}, labelFixSteps)
	view["Cards"] = toViewCards(format.StepsToCards(sections[labelFixSteps]))
	view["CopilotPrompt"] = sections[labelCopilotPrompt]

	h.renderer.Render(w, "troubleshooter", view)
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
