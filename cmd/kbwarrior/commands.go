package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/levibean95-hub/keyboard-warrior/internal/config"
	"github.com/levibean95-hub/keyboard-warrior/internal/tone"
)

// --- tones ---

var tonesCmd = &cobra.Command{
	Use:   "tones",
	Short: "List the available tones",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, t := range tone.All {
			fmt.Printf("%s\n  %s\n\n", colorize(colorBold, string(t)), tone.Describe(t))
		}
		return nil
	},
}

// --- generate ---

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate reply options against a running server",
	Long: `Generate reply options against a running server.

Examples:
  kbwarrior generate --context "my roommate says I never do the dishes" --tone casual
  kbwarrior generate --opponent "pineapple belongs on pizza" --position "it does not" --tone aggressive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		contextStr, _ := cmd.Flags().GetString("context")
		opponent, _ := cmd.Flags().GetString("opponent")
		position, _ := cmd.Flags().GetString("position")
		additional, _ := cmd.Flags().GetString("additional")
		toneStr, _ := cmd.Flags().GetString("tone")
		styleStr, _ := cmd.Flags().GetString("style")
		argumentID, _ := cmd.Flags().GetString("argument")

		if contextStr == "" && (opponent == "" || position == "") {
			return fmt.Errorf("provide --context, or both --opponent and --position")
		}

		req := map[string]any{
			"tone": toneStr,
		}
		if contextStr != "" {
			req["context"] = contextStr
		}
		if opponent != "" {
			req["opponentPosition"] = opponent
		}
		if position != "" {
			req["userPosition"] = position
		}
		if additional != "" {
			req["additionalContext"] = additional
		}
		if styleStr != "" {
			examples := strings.Split(styleStr, ",")
			for i := range examples {
				examples[i] = strings.TrimSpace(examples[i])
			}
			req["styleExamples"] = examples
		}
		if argumentID != "" {
			req["argumentId"] = argumentID
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/generate-responses", req)
		if err != nil {
			return err
		}

		var result struct {
			Responses []string `json:"responses"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		for i, r := range result.Responses {
			fmt.Printf("\n%s %s\n", colorize(colorCyan, fmt.Sprintf("%d.", i+1)), r)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().String("context", "", "free-form description of the argument")
	generateCmd.Flags().String("opponent", "", "what the opponent is arguing")
	generateCmd.Flags().String("position", "", "what you are arguing")
	generateCmd.Flags().String("additional", "", "extra background for the argument")
	generateCmd.Flags().String("tone", "casual", "tone for the responses (see 'kbwarrior tones')")
	generateCmd.Flags().String("style", "", "comma-separated sample messages in your own voice")
	generateCmd.Flags().String("argument", "", "saved argument ID to record responses against")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
