// Package conversation drives the prompt-builder clarification loop:
// seed a goal, gather detail one question at a time, and finalize
// into a structured prompt plus explanation.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avereyes/promptdesk/internal/domain"
	"github.com/avereyes/promptdesk/internal/gateway"
	"github.com/avereyes/promptdesk/internal/prompts"
)

// HistorySink receives finalized prompts for the audit log.
type HistorySink interface {
	Append(entry domain.HistoryEntry) error
}

// Result is the outcome of one engine step.
type Result struct {
	NeedMore    bool
	Question    string
	Prompt      string
	Explanation string
	State       domain.ConversationState
	Transcript  []domain.Turn
}

// Engine decides, turn by turn, whether to ask one more clarifying
// question or emit the final structured result.
type Engine struct {
	gw       gateway.Client
	prompts  prompts.Set
	history  HistorySink
	maxTurns int
}

// NewEngine creates an engine. maxTurns caps clarification rounds;
// once exceeded the engine finalizes instead of asking again, so a
// stuck gateway cannot loop forever.
func NewEngine(gw gateway.Client, set prompts.Set, history HistorySink, maxTurns int) *Engine {
	if maxTurns <= 0 {
		maxTurns = 5
	}
	return &Engine{gw: gw, prompts: set, history: history, maxTurns: maxTurns}
}

// Start seeds a new conversation with the app context and goal, then
// runs the first decision step. An empty goal fails before any
// gateway call.
func (e *Engine) Start(ctx context.Context, appContext, goal string) (*Result, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, ErrEmptyGoal
	}
	if appContext == "" {
		appContext = "Microsoft 365"
	}

	transcript := []domain.Turn{
		{Role: domain.RoleSystem, Content: e.prompts.BuilderSystem},
		{Role: domain.RoleUser, Content: fmt.Sprintf("App: %s\nGoal: %s", appContext, goal)},
	}

	return e.decide(ctx, transcript, appContext, goal)
}

// Advance appends the user's answer and runs the next decision step.
// rounds is how many clarification rounds have already completed.
func (e *Engine) Advance(ctx context.Context, transcript []domain.Turn, answer, appContext, goal string, rounds int) (*Result, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	transcript = append(transcript, domain.Turn{Role: domain.RoleUser, Content: answer})

	if rounds >= e.maxTurns {
		slog.Info("Clarification cap reached, forcing finalize", "rounds", rounds)
		return e.Finalize(ctx, transcript, appContext, goal)
	}

	return e.decide(ctx, transcript, appContext, goal)
}

// decide asks the gating question and either finalizes or requests
// exactly one clarifying instruction. The gating probe is not
// persisted into the transcript.
func (e *Engine) decide(ctx context.Context, transcript []domain.Turn, appContext, goal string) (*Result, error) {
	probe := append(cloneTurns(transcript), domain.Turn{Role: domain.RoleUser, Content: e.prompts.GatingQuestion})

	verdict, err := e.gw.Complete(ctx, gateway.CompletionRequest{Messages: probe})
	if err != nil {
		return nil, fmt.Errorf("gating check: %w", err)
	}

	// Exact normalized equality only. Near-matches ("yes, I think
	// so") keep asking rather than risk a premature finalize.
	if normalize(verdict) == prompts.GatingToken {
		return e.Finalize(ctx, transcript, appContext, goal)
	}

	ask := append(cloneTurns(transcript), domain.Turn{Role: domain.RoleUser, Content: e.prompts.ClarifyInstruction})
	question, err := e.gw.Complete(ctx, gateway.CompletionRequest{Messages: ask})
	if err != nil {
		return nil, fmt.Errorf("clarifying question: %w", err)
	}

	transcript = append(transcript, domain.Turn{Role: domain.RoleAssistant, Content: question})

	return &Result{
		NeedMore:   true,
		Question:   question,
		State:      domain.StateAwaitingAnswer,
		Transcript: transcript,
	}, nil
}

// Finalize requests the two-section output and splits it on the
// second delimiter. A missing delimiter degrades to prompt-only
// output; it is never an error. The finalized prompt is appended to
// the history log best-effort.
func (e *Engine) Finalize(ctx context.Context, transcript []domain.Turn, appContext, goal string) (*Result, error) {
	req := append(cloneTurns(transcript), domain.Turn{Role: domain.RoleUser, Content: e.prompts.FinalizeInstruction})

	raw, err := e.gw.Complete(ctx, gateway.CompletionRequest{Messages: req})
	if err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}

	transcript = append(transcript, domain.Turn{Role: domain.RoleAssistant, Content: raw})

	promptText, explanation := splitFinal(raw)

	if e.history != nil {
		entry := domain.HistoryEntry{
			Timestamp: time.Now(),
			App:       appContext,
			Task:      goal,
			Context:   gatheredContext(transcript),
			Prompt:    promptText,
		}
		if err := e.history.Append(entry); err != nil {
			slog.Warn("failed to log finalized prompt", "error", err)
		}
	}

	return &Result{
		NeedMore:    false,
		Prompt:      promptText,
		Explanation: explanation,
		State:       domain.StateFinalized,
		Transcript:  transcript,
	}, nil
}

// splitFinal recovers the two labeled sections from a finalized
// response.
func splitFinal(raw string) (promptText, explanation string) {
	before, after, found := strings.Cut(raw, prompts.DelimExplanation)
	promptText = strings.TrimSpace(strings.ReplaceAll(before, prompts.DelimPrompt, ""))
	if found {
		explanation = strings.TrimSpace(after)
	}
	return promptText, explanation
}

// gatheredContext summarizes the user's clarification answers for the
// audit log. The seeded goal turn is excluded.
func gatheredContext(transcript []domain.Turn) string {
	var answers []string
	seenGoal := false
	for _, t := range transcript {
		if t.Role != domain.RoleUser {
			continue
		}
		if !seenGoal {
			seenGoal = true
			continue
		}
		answers = append(answers, t.Content)
	}
	return strings.Join(answers, "; ")
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cloneTurns(turns []domain.Turn) []domain.Turn {
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}
