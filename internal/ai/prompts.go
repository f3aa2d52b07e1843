package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jakoblorz/go-codebuilder/internal/highlight"
	"github.com/jakoblorz/go-codebuilder/internal/models"
)

// Action is one of the assistant requests
type Action string

const (
	ActionSuggest Action = "suggest"
	ActionExplain Action = "explain"
	ActionFix     Action = "fix"
)

// ParseAction validates an action name
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(s)); a {
	case ActionSuggest, ActionExplain, ActionFix:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q (want suggest, explain or fix)", s)
}

// LanguageFor guesses the language of a file from its name
func LanguageFor(filePath string) string {
	return highlight.Language(filePath)
}

// SuggestMessages builds the prompt for a code change request
func SuggestMessages(code, prompt, language string) []Message {
	return []Message{
		{
			Role:    "system",
			Content: fmt.Sprintf("You are an expert %s developer. Help improve and write code based on user requests. Return only the code without explanations unless asked.", language),
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("Current code:\n```%s\n%s\n```\n\nRequest: %s", language, code, prompt),
		},
	}
}

// ExplainMessages builds the prompt for a code explanation
func ExplainMessages(code, language string) []Message {
	return []Message{
		{
			Role:    "system",
			Content: "You are a helpful coding tutor. Explain code clearly and concisely.",
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("Explain this %s code:\n```%s\n%s\n```", language, language, code),
		},
	}
}

// FixMessages builds the prompt for fixing code that fails with errText
func FixMessages(code, errText, language string) []Message {
	return []Message{
		{
			Role:    "system",
			Content: "You are an expert debugger. Fix code errors and return the corrected code.",
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("Fix this %s code that has an error:\n\nCode:\n```%s\n%s\n```\n\nError: %s", language, language, code, errText),
		},
	}
}

// Suggest asks for a change to code
func (c *Client) Suggest(ctx context.Context, code, prompt, language string) (string, error) {
	return c.Chat(ctx, SuggestMessages(code, prompt, language))
}

// Explain asks for an explanation of code
func (c *Client) Explain(ctx context.Context, code, language string) (string, error) {
	return c.Chat(ctx, ExplainMessages(code, language))
}

// Fix asks for a corrected version of code
func (c *Client) Fix(ctx context.Context, code, errText, language string) (string, error) {
	return c.Chat(ctx, FixMessages(code, errText, language))
}

// Request is an assistant request against one file
type Request struct {
	Action Action
	Path   string
	Code   string
	// Prompt is the change request for suggest and the error text for fix
	Prompt string
}

// Do checks the preconditions of req in order (API key, file, prompt) and
// sends it
func (c *Client) Do(ctx context.Context, req Request) (string, error) {
	if !c.IsConfigured() {
		return "", models.NewError(models.KindMissingCredential, "", "Please set your OpenRouter API key in settings")
	}
	if req.Path == "" {
		return "", models.NewError(models.KindNoActiveFile, "", "Please select a file first")
	}

	language := LanguageFor(req.Path)
	switch req.Action {
	case ActionSuggest:
		if strings.TrimSpace(req.Prompt) == "" {
			return "", models.NewError(models.KindInvalidFormat, "", "Please enter a prompt")
		}
		return c.Suggest(ctx, req.Code, req.Prompt, language)
	case ActionExplain:
		return c.Explain(ctx, req.Code, language)
	case ActionFix:
		errText := req.Prompt
		if strings.TrimSpace(errText) == "" {
			errText = "Unknown error"
		}
		return c.Fix(ctx, req.Code, errText, language)
	}
	return "", fmt.Errorf("unknown action %q", req.Action)
}

var fencedBlock = regexp.MustCompile("(?s)```\\w*\\n(.*?)```")

// ExtractCode returns the body of the first fenced code block in text, or
// the whole text trimmed when there is none
func ExtractCode(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}
