// Package main provides the CLI entry point for easel, an AI whiteboard
// command server.
//
// Easel translates natural-language commands ("create a red circle", "arrange
// them in a grid") into a closed set of whiteboard actions via an LLM backend,
// applies them to server-held boards, and streams the changes to connected
// viewers.
//
// # Basic Usage
//
// Start the server:
//
//	easel serve --config easel.yaml
//
// Translate a single command without a server:
//
//	easel translate "create a login form"
//
// # Environment Variables
//
//   - ANTHROPIC_API_KEY: Anthropic API key (default provider)
//   - OPENAI_API_KEY: OpenAI API key
//
// A .env file in the working directory is loaded before the config file is
// read, so keys may live there instead.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Build information - populated by ldflags during build.
//
// Example build command:
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse HEAD) -X main.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version = "dev"     // Semantic version (e.g., "v1.0.0")
	commit  = "none"    // Git commit SHA
	date    = "unknown" // Build timestamp
)

func main() {
	// A missing .env is the normal case, not an error.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
