// Package llm talks to the language models that write summaries: a local
// OpenAI-compatible server (LM Studio) and, optionally, the Gemini API.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Mode selects the LM Studio endpoint(s) used for a request.
type Mode string

const (
	// ModeAuto tries chat completions first and falls back to plain completions.
	ModeAuto Mode = "auto"
	// ModeChat only uses /v1/chat/completions.
	ModeChat Mode = "chat"
	// ModeCompletions only uses /v1/completions with a merged prompt.
	ModeCompletions Mode = "completions"
)

// ParseMode maps a configuration value onto a Mode. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAuto, "":
		return ModeAuto, nil
	case ModeChat:
		return ModeChat, nil
	case ModeCompletions:
		return ModeCompletions, nil
	default:
		return "", fmt.Errorf("unknown api mode: %s", s)
	}
}

// Request is one generation request.
type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	Mode         Mode
}

// Completer turns a Request into generated text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Status describes whether the server answers and which models it serves.
type Status struct {
	Reachable bool
	Models    []string
	Err       error
}

// String renders the status the way the status command prints it.
func (s Status) String() string {
	switch {
	case !s.Reachable:
		return fmt.Sprintf("not connected: %v", s.Err)
	case s.Err != nil:
		return fmt.Sprintf("connected with error: %v", s.Err)
	case len(s.Models) == 0:
		return "connected (no model loaded)"
	default:
		return fmt.Sprintf("connected (%d model(s))", len(s.Models))
	}
}

// Client is the LM Studio client.
type Client interface {
	Completer
	// ListModels returns the ids of the models the server exposes.
	ListModels(ctx context.Context) ([]string, error)
	// Status never fails; problems are reported in the returned Status.
	Status(ctx context.Context) Status
}
