package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/levibean95-hub/keyboard-warrior/internal/generate"
	"github.com/levibean95-hub/keyboard-warrior/internal/style"
	"github.com/levibean95-hub/keyboard-warrior/internal/tone"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Generator *generate.Generator
}

// NewMCPServer creates an MCP server exposing generation, the tone catalog,
// style analysis, and fallacy detection as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"keyboard-warrior",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("keyboard-warrior generates tone-keyed reply options for text arguments."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("generate_responses",
			mcp.WithDescription("Generate three reply options for an argument in a chosen tone."),
			mcp.WithString("context", mcp.Description("Free-form description of the argument")),
			mcp.WithString("opponent_position", mcp.Description("What the opponent is arguing")),
			mcp.WithString("user_position", mcp.Description("What the user is arguing")),
			mcp.WithString("additional_context", mcp.Description("Extra background for the argument")),
			mcp.WithString("tone", mcp.Description("Tone key, e.g. casual, aggressive, calm-collected"), mcp.Required()),
			mcp.WithString("custom_tone_description", mcp.Description("Free-form tone description, overrides the tone key")),
			mcp.WithArray("style_examples", mcp.Description("Sample messages in the user's own voice")),
		),
		mcpGenerateResponses(deps),
	)

	s.AddTool(
		mcp.NewTool("list_tones",
			mcp.WithDescription("List the available tones with their descriptions."),
		),
		mcpListTones(deps),
	)

	s.AddTool(
		mcp.NewTool("analyze_style",
			mcp.WithDescription("Derive a prose writing-style descriptor from sample messages."),
			mcp.WithArray("examples", mcp.Description("Sample messages to analyze"), mcp.Required()),
		),
		mcpAnalyzeStyle(deps),
	)

	s.AddTool(
		mcp.NewTool("detect_fallacy",
			mcp.WithDescription("Label the most likely logical fallacy in a piece of argument text."),
			mcp.WithString("text", mcp.Description("The opponent's argument text"), mcp.Required()),
		),
		mcpDetectFallacy(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"tones://catalog",
			"Tone Catalog",
			mcp.WithResourceDescription("All tones with descriptions and trait scores"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceTones(),
	)

	s.AddResource(
		mcp.NewResource(
			"fallacies://catalog",
			"Fallacy Catalog",
			mcp.WithResourceDescription("Reference catalog of logical fallacies with detection hints"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceFallacies(),
	)

	return s
}

func mcpGenerateResponses(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toneKey, err := req.RequireString("tone")
		if err != nil {
			return mcpError("tone is required"), nil
		}

		genReq := generate.Request{
			Context:               req.GetString("context", ""),
			OpponentPosition:      req.GetString("opponent_position", ""),
			UserPosition:          req.GetString("user_position", ""),
			AdditionalContext:     req.GetString("additional_context", ""),
			Tone:                  tone.Tone(toneKey),
			CustomToneDescription: req.GetString("custom_tone_description", ""),
			StyleExamples:         req.GetStringSlice("style_examples", nil),
		}

		responses, err := deps.Generator.Generate(ctx, genReq)
		if err != nil {
			return mcpError(fmt.Sprintf("generation failed: %v", err)), nil
		}

		var b strings.Builder
		for i, resp := range responses {
			fmt.Fprintf(&b, "%d. %s\n", i+1, resp)
		}
		return mcpText(b.String()), nil
	}
}

func mcpListTones(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		type toneEntry struct {
			Tone        string `json:"tone"`
			Description string `json:"description"`
		}

		entries := make([]toneEntry, len(tone.All))
		for i, t := range tone.All {
			entries[i] = toneEntry{
				Tone:        string(t),
				Description: tone.Describe(t),
			}
		}

		b, err := json.Marshal(entries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal tones: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAnalyzeStyle(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		examples := req.GetStringSlice("examples", nil)
		if len(examples) == 0 {
			return mcpError("examples is required"), nil
		}

		descriptor := style.Analyze(examples)
		if descriptor == "" {
			return mcpText("no style signal detected"), nil
		}
		return mcpText(descriptor), nil
	}
}

func mcpDetectFallacy(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}

		f, ok := tone.DetectFallacy(text)
		if !ok {
			return mcpText("no fallacy detected"), nil
		}

		b, err := json.Marshal(map[string]string{
			"name":        f.Name,
			"description": f.Description,
			"detection":   f.Detection,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal fallacy: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceTones() server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		type toneRecord struct {
			Tone                  string `json:"tone"`
			Description           string `json:"description"`
			FallacyDetectionSkill int    `json:"fallacyDetectionSkill"`
			TacticalSubtlety      int    `json:"tacticalSubtlety"`
			EmotionalControl      int    `json:"emotionalControl"`
			AnalyticalThinking    int    `json:"analyticalThinking"`
		}

		records := make([]toneRecord, len(tone.All))
		for i, t := range tone.All {
			traits := tone.GetTraits(t)
			records[i] = toneRecord{
				Tone:                  string(t),
				Description:           tone.Describe(t),
				FallacyDetectionSkill: traits.FallacyDetectionSkill,
				TacticalSubtlety:      traits.TacticalSubtlety,
				EmotionalControl:      traits.EmotionalControl,
				AnalyticalThinking:    traits.AnalyticalThinking,
			}
		}

		b, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tone catalog: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceFallacies() server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		type fallacyRecord struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Example     string `json:"example"`
			Detection   string `json:"detection"`
		}

		records := make([]fallacyRecord, len(tone.Fallacies))
		for i, f := range tone.Fallacies {
			records[i] = fallacyRecord{
				Name:        f.Name,
				Description: f.Description,
				Example:     f.Example,
				Detection:   f.Detection,
			}
		}

		b, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal fallacy catalog: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
