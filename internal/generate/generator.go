// Package generate produces candidate argument replies: via the external
// backend when configured, via deterministic canned sets otherwise.
package generate

import (
	"context"
	"log/slog"

	"github.com/levibean95-hub/keyboard-warrior/internal/prompt"
	"github.com/levibean95-hub/keyboard-warrior/internal/style"
	"github.com/levibean95-hub/keyboard-warrior/internal/tone"
)

// ResponseCount is the fixed size of every generated candidate set.
const ResponseCount = 3

// Request describes one generation call. At least one of Context or the
// OpponentPosition/UserPosition pair must be present.
type Request struct {
	Context               string    `json:"context,omitempty"`
	OpponentPosition      string    `json:"opponentPosition,omitempty"`
	UserPosition          string    `json:"userPosition,omitempty"`
	AdditionalContext     string    `json:"additionalContext,omitempty"`
	Tone                  tone.Tone `json:"tone"`
	CustomToneDescription string    `json:"customToneDescription,omitempty"`
	StyleExamples         []string  `json:"styleExamples,omitempty"`
	ArgumentID            string    `json:"argumentId,omitempty"`
}

func (r Request) promptInput() prompt.Input {
	return prompt.Input{
		Context:               r.Context,
		OpponentPosition:      r.OpponentPosition,
		UserPosition:          r.UserPosition,
		AdditionalContext:     r.AdditionalContext,
		Tone:                  r.Tone,
		CustomToneDescription: r.CustomToneDescription,
	}
}

// Chatter is the interface the orchestrator needs from the backend client.
type Chatter interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Configured() bool
}

// Generator orchestrates prompt building, the backend call, parsing, and
// fallback substitution. Safe for concurrent use; all tables it reads are
// immutable after init.
type Generator struct {
	client Chatter
	logger *slog.Logger
}

// NewGenerator creates a Generator. client may be nil (or unconfigured), in
// which case every call takes the fallback path without touching the network.
func NewGenerator(client Chatter) *Generator {
	return &Generator{client: client, logger: slog.Default()}
}

// Configured reports whether the external backend will be used.
func (g *Generator) Configured() bool {
	return g.client != nil && g.client.Configured()
}

// Generate returns exactly three non-empty response candidates for the
// request. The only error it surfaces is prompt.ErrInsufficientInput;
// backend failures degrade to the context-aware canned set.
func (g *Generator) Generate(ctx context.Context, req Request) ([]string, error) {
	// Validate the content source up front so malformed input fails the
	// same way on both branches, before any network attempt.
	if _, err := prompt.DetectMode(req.promptInput()); err != nil {
		return nil, err
	}

	if !g.Configured() {
		g.logger.Info("generation backend not configured, using canned responses", "tone", req.Tone)
		return Contextual(req), nil
	}

	descriptor := style.Analyze(req.StyleExamples)
	p, err := prompt.Build(req.promptInput(), descriptor)
	if err != nil {
		return nil, err
	}

	raw, err := g.client.Complete(ctx, p.System, p.User)
	if err != nil {
		g.logger.Warn("generation backend call failed, degrading to canned responses",
			"tone", req.Tone, "error", err)
		return Contextual(req), nil
	}

	responses := Parse(raw)
	if len(responses) < ResponseCount {
		g.logger.Info("backend under-delivered, padding from canned set",
			"got", len(responses), "tone", req.Tone)
		pad := Canned(req.Tone)
		for len(responses) < ResponseCount && len(pad) > 0 {
			responses = append(responses, pad[0])
			pad = pad[1:]
		}
	}

	return responses[:ResponseCount], nil
}
