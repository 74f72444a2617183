// handlers.go implements the command logic behind the cobra definitions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/easel/internal/board"
	"github.com/haasonsaas/easel/internal/commandbar"
	"github.com/haasonsaas/easel/internal/config"
	"github.com/haasonsaas/easel/internal/observability"
	"github.com/haasonsaas/easel/internal/server"
	"github.com/haasonsaas/easel/internal/translate"
	"github.com/haasonsaas/easel/pkg/actions"
)

// =============================================================================
// Serve Command Handler
// =============================================================================

func runServe(ctx context.Context, configPath string, debug bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if debug {
		cfg.Logging.Level = "debug"
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.Info("starting easel",
		"version", version,
		"commit", commit,
		"provider", cfg.LLM.Provider,
		"store", cfg.Store.Driver,
		"debug", debug,
	)

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	tracer, shutdownTracer := observability.NewTracer(observability.TraceConfig{
		ServiceName:    "easel",
		ServiceVersion: version,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       true,
	})
	defer func() { _ = shutdownTracer(context.Background()) }()

	// Cancel on shutdown signals; the preamble watcher and server share this
	// lifetime.
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	manager := board.NewManager(store, board.NewHub(), board.NewMetrics(), slog.Default())

	preamble, err := buildPreamble(ctx, cfg)
	if err != nil {
		return err
	}
	if preamble != nil {
		defer preamble.Close()
	}

	translator, err := buildTranslator(cfg, preamble)
	if err != nil {
		return err
	}

	srv := server.New(
		server.Config{Host: cfg.Server.Host, Port: cfg.Server.Port},
		translator,
		manager,
		logger,
		observability.NewHTTPMetrics(),
		tracer,
	)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	slog.Info("shutting down")
	return srv.Shutdown(nil)
}

func buildStore(cfg *config.Config) (board.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		store, err := board.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return board.NewMemoryStore(), func() {}, nil
	}
}

func buildPreamble(ctx context.Context, cfg *config.Config) (*translate.PreambleLoader, error) {
	if cfg.Prompt.PreambleFile == "" {
		return nil, nil
	}
	loader, err := translate.NewPreambleLoader(cfg.Prompt.PreambleFile, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("load preamble: %w", err)
	}
	if cfg.Prompt.Watch {
		if err := loader.Watch(ctx); err != nil {
			loader.Close()
			return nil, fmt.Errorf("watch preamble: %w", err)
		}
	}
	return loader, nil
}

func buildTranslator(cfg *config.Config, preamble *translate.PreambleLoader) (translate.Translator, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return translate.NewOpenAITranslator(translate.OpenAIConfig{
			APIKey:     cfg.LLM.OpenAI.APIKey,
			BaseURL:    cfg.LLM.OpenAI.BaseURL,
			Model:      cfg.LLM.OpenAI.Model,
			Timeout:    cfg.LLM.Timeout.Std(),
			MaxRetries: cfg.LLM.MaxRetries,
			RetryDelay: cfg.LLM.RetryDelay.Std(),
			Preamble:   preamble,
			Logger:     slog.Default(),
		})
	case config.ProviderAnthropic:
		return translate.NewAnthropicTranslator(translate.AnthropicConfig{
			APIKey:     cfg.LLM.Anthropic.APIKey,
			BaseURL:    cfg.LLM.Anthropic.BaseURL,
			Model:      cfg.LLM.Anthropic.Model,
			Timeout:    cfg.LLM.Timeout.Std(),
			MaxRetries: cfg.LLM.MaxRetries,
			RetryDelay: cfg.LLM.RetryDelay.Std(),
			Preamble:   preamble,
			Logger:     slog.Default(),
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// =============================================================================
// Translate Command Handler
// =============================================================================

type translateOptions struct {
	configPath  string
	provider    string
	contextPath string
	serverURL   string
	args        []string
}

// providerSubmitter adapts a translator to the command bar's submit interface
// for direct-to-provider runs.
type providerSubmitter struct {
	translator translate.Translator
}

func (p providerSubmitter) Submit(ctx context.Context, command string, canvasContext json.RawMessage) (*translate.Result, error) {
	return p.translator.Translate(ctx, translate.Request{Command: command, CanvasContext: canvasContext})
}

func runTranslate(ctx context.Context, opts translateOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.provider != "" {
		cfg.LLM.Provider = opts.provider
	}

	var submitter commandbar.Submitter
	if opts.serverURL != "" {
		submitter = commandbar.NewClient(opts.serverURL, cfg.LLM.Timeout.Std())
	} else {
		translator, err := buildTranslator(cfg, nil)
		if err != nil {
			return err
		}
		submitter = providerSubmitter{translator: translator}
	}

	canvasContext, err := readCanvasContext(opts.contextPath)
	if err != nil {
		return err
	}

	var printErr error
	bar := commandbar.New(
		submitter,
		commandbar.NewHistory(commandbar.DefaultHistorySize),
		func(result *translate.Result, originalText string) {
			list := result.Actions
			if list == nil {
				list = []actions.Action{}
			}
			encoded, err := json.MarshalIndent(list, "", "  ")
			if err != nil {
				printErr = fmt.Errorf("encode actions: %w", err)
				return
			}
			fmt.Println(string(encoded))
		},
		slog.Default(),
	)

	bar.Open()
	bar.SetText(strings.Join(opts.args, " "))
	if err := bar.Submit(ctx, canvasContext); err != nil {
		return err
	}
	return printErr
}

func readCanvasContext(path string) (json.RawMessage, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read context file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("context file %s is not valid JSON", path)
	}
	return json.RawMessage(data), nil
}

// =============================================================================
// Config Command Handlers
// =============================================================================

func runConfigSchema(cmd *cobra.Command) error {
	schema, err := config.JSONSchema()
	if err != nil {
		return err
	}
	cmd.Println(string(schema))
	return nil
}
