// Package prompts holds the instruction templates sent to the AI
// gateway and the fixed output contract the conversation engine
// depends on.
package prompts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Output contract, format version 1. The delimiters are reserved
// tokens that cannot legally appear in generated prose; the gating
// token is matched by exact normalized string equality.
const (
	FormatVersion = 1

	// GatingToken is the only reply that finalizes a clarification
	// round. Compared after trimming and lower-casing.
	GatingToken = "yes"

	// DelimPrompt and DelimExplanation bound the two sections of a
	// finalized result.
	DelimPrompt      = "===PROMPT==="
	DelimExplanation = "===EXPLANATION==="
)

// Set carries every instruction template the application uses. Empty
// fields in an override file keep their built-in defaults.
type Set struct {
	BuilderSystem       string `yaml:"builder_system"`
	GatingQuestion      string `yaml:"gating_question"`
	ClarifyInstruction  string `yaml:"clarify_instruction"`
	FinalizeInstruction string `yaml:"finalize_instruction"`

	LessonSystem        string `yaml:"lesson_system"`
	LearnSystem         string `yaml:"learn_system"`
	HelpSystem          string `yaml:"help_system"`
	AskHelpSystem       string `yaml:"ask_help_system"`
	TroubleshootSystem  string `yaml:"troubleshoot_system"`
	ExplainQuestion     string `yaml:"explain_question_system"`
	ExplainPrompt       string `yaml:"explain_prompt_system"`
	ManualSystem        string `yaml:"manual_system"`
	AskSystem           string `yaml:"ask_system"`
}

// Defaults returns the built-in prompt set.
func Defaults() Set {
	return Set{
		BuilderSystem: "You are an assistant that helps office employees build effective Microsoft Copilot prompts. " +
			"Ask smart, beginner-friendly follow-up questions in plain language. Keep them clear and simple. " +
			"Ask exactly one question at a time. Do NOT finalize until explicitly asked. " +
			"When asked to finalize, output exactly two sections:\n\n" +
			DelimPrompt + "\nThe final Copilot prompt.\n\n" +
			DelimExplanation + "\nA short, plain-language explanation of what the prompt does.",

		GatingQuestion: "Considering everything above, do you now have enough detail to write an excellent Copilot prompt? " +
			"Answer with exactly one word: YES or NO. Do not add anything else.",

		ClarifyInstruction: "Ask the single most useful clarifying question to improve the prompt. " +
			"Keep it short, beginner-friendly, and free of jargon. Ask only one question.",

		FinalizeInstruction: "Finalize now. IMPORTANT: Provide output in exactly two sections:\n\n" +
			DelimPrompt + "\nOnly the Copilot prompt.\n\n" +
			DelimExplanation + "\nOnly a short beginner-friendly explanation.",

		LessonSystem: "You are a friendly Microsoft 365 instructor for office employees. " +
			"Always explain in plain, simple language with short sentences and step-by-step instructions. " +
			"Avoid technical jargon unless you explain it first. " +
			"Imagine teaching someone who has never used this app before.",

		LearnSystem: "You are a Microsoft 365 trainer for beginners. " +
			"Keep your tone extremely simple, helpful, and non-technical.",

		HelpSystem: "You are a friendly Microsoft 365 help assistant. " +
			"When given a question about Microsoft Word, Excel, Outlook, Teams, or PowerPoint, " +
			"explain the answer in clear, numbered, step-by-step instructions. " +
			"Avoid technical jargon, and if you must use a term, explain it briefly in plain language. " +
			"Do not include or request any sensitive information.",

		AskHelpSystem: "You are a Microsoft 365 support expert. Provide short, numbered, beginner steps. Avoid jargon.",

		TroubleshootSystem: "You are a Microsoft 365 troubleshooter for beginner users. " +
			"Output two sections:\n" +
			"Step-by-Step Fix: Numbered, plain-language instructions with short steps. Avoid jargon. " +
			"Warning before any step that could risk data loss.\n" +
			"Copilot Prompt: A single prompt the user can paste into Microsoft 365 Copilot.",

		ExplainQuestion: "You are a patient Microsoft 365 coach. " +
			"Explain the follow-up question in simple, friendly terms. " +
			"Give 1-2 short examples. End with a note that the user can skip the question.",

		ExplainPrompt: "You explain Microsoft Copilot prompts to beginners. " +
			"Write a short, friendly explanation that covers what the prompt will make Copilot do, " +
			"what information it assumes, any workplace data-safety cautions, " +
			"and 2-3 optional tweaks to improve it. Use plain language and short bullet points.",

		ManualSystem: "You are an AI writing step-by-step guides for Microsoft 365 beginners. " +
			"Write detailed, beginner-friendly instructions with plain language.",

		AskSystem: "You are a helpful assistant supporting Microsoft 365 users.",
	}
}

// Load returns the defaults, optionally overridden field-by-field
// from a YAML file. An empty path returns the defaults unchanged.
func Load(path string) (Set, error) {
	set := Defaults()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read prompts file: %w", err)
	}

	var override Set
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Set{}, fmt.Errorf("parse prompts file: %w", err)
	}

	set.merge(override)
	return set, nil
}

func (s *Set) merge(o Set) {
	fields := []struct {
		dst *string
		src string
	}{
		{&s.BuilderSystem, o.BuilderSystem},
		{&s.GatingQuestion, o.GatingQuestion},
		{&s.ClarifyInstruction, o.ClarifyInstruction},
		{&s.FinalizeInstruction, o.FinalizeInstruction},
		{&s.LessonSystem, o.LessonSystem},
		{&s.LearnSystem, o.LearnSystem},
		{&s.HelpSystem, o.HelpSystem},
		{&s.AskHelpSystem, o.AskHelpSystem},
		{&s.TroubleshootSystem, o.TroubleshootSystem},
		{&s.ExplainQuestion, o.ExplainQuestion},
		{&s.ExplainPrompt, o.ExplainPrompt},
		{&s.ManualSystem, o.ManualSystem},
		{&s.AskSystem, o.AskSystem},
	}
	for _, f := range fields {
		if f.src != "" {
			*f.dst = f.src
		}
	}
}
