// commands.go contains the cobra command definitions and their flag
// configurations. Each builder creates a command and wires it to its handler.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildRootCmd creates the root command with all subcommands attached. This is
// separated from main() to facilitate testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "easel",
		Short: "Easel - AI whiteboard command server",
		Long: `Easel turns natural-language commands into whiteboard actions.

Commands are translated by an LLM provider (Anthropic or OpenAI) into a closed
action vocabulary - create shapes and text, move, resize, arrange - then
applied to server-held boards and streamed to connected viewers.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		// SilenceUsage prevents printing usage on every error.
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildServeCmd(),
		buildTranslateCmd(),
		buildConfigCmd(),
		buildVersionCmd(),
	)

	return rootCmd
}

// =============================================================================
// Serve Command
// =============================================================================

func buildServeCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the easel command server",
		Long: `Start the HTTP server serving the /ai-command translation endpoint,
board management routes, and the board event stream.

Graceful shutdown is handled on SIGINT/SIGTERM signals.`,
		Example: `  # Start with defaults (in-memory store, anthropic provider)
  easel serve

  # Start with a config file
  easel serve --config easel.yaml

  # Start with debug logging
  easel serve --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Path to YAML or JSON5 configuration file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false,
		"Enable debug logging (verbose output)")

	return cmd
}

// =============================================================================
// Translate Command
// =============================================================================

func buildTranslateCmd() *cobra.Command {
	var (
		configPath  string
		provider    string
		contextPath string
		serverURL   string
	)

	cmd := &cobra.Command{
		Use:   "translate [command text]",
		Short: "Translate one command and print the resulting actions as JSON",
		Long: `Translate a single natural-language command into whiteboard actions.

By default the command goes straight to the configured LLM provider. With
--server it is submitted to a running easel server's /ai-command endpoint
instead. Pronouns like "it" or "the red circle" resolve against the session
history, which is empty for a one-shot run.`,
		Example: `  easel translate "create a red circle in the center"
  easel translate --provider openai "create a login form"
  easel translate --server http://localhost:8080 "add a yellow star"
  easel translate --context board.json "move it to the corner"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), translateOptions{
				configPath:  configPath,
				provider:    provider,
				contextPath: contextPath,
				serverURL:   serverURL,
				args:        args,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Path to YAML or JSON5 configuration file")
	cmd.Flags().StringVarP(&provider, "provider", "p", "",
		"LLM provider override: openai or anthropic")
	cmd.Flags().StringVar(&contextPath, "context", "",
		"Path to a JSON file holding the canvas context to send")
	cmd.Flags().StringVarP(&serverURL, "server", "s", "",
		"Submit to a running easel server instead of calling the provider directly")

	return cmd
}

// =============================================================================
// Config Command
// =============================================================================

func buildConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	cmd.AddCommand(buildConfigSchemaCmd())
	return cmd
}

func buildConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON Schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSchema(cmd)
		},
	}
}

// =============================================================================
// Version Command
// =============================================================================

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("easel %s\ncommit: %s\nbuilt:  %s\n", version, commit, date)
		},
	}
}
