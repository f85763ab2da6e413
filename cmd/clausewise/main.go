// Command clausewise analyses legal documents from the terminal: document
// analysis, clause simplification and document chat, printed as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"clausewise/internal/app"
	"clausewise/internal/assistant"
	"clausewise/internal/config"
	"clausewise/internal/llm"
	"clausewise/internal/logger"
	"clausewise/internal/parser"
	"clausewise/internal/pipeline"
)

const (
	Version = "0.1.0"
	appName = "clausewise"
)

// builder wires dependencies; tests swap it for one backed by mocks.
type builder func(cfg config.Config, log *slog.Logger) (app.Deps, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd(app.BuildWith).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type options struct {
	logLevel    string
	host        string
	model       string
	maxTokens   int
	temperature float64
}

func rootCmd(build builder) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Legal document analysis",
		Long: `ClauseWise splits legal documents into clauses, extracts entities,
classifies the document type, rewrites clauses in plain English and answers
questions about a document using a local Ollama model or an OpenAI-compatible API.

Configuration comes from the environment (and .env); flags override it.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.host, "host", "", "Ollama host URL")
	flags.StringVar(&opts.model, "model", "", "Model name")
	flags.IntVar(&opts.maxTokens, "max-tokens", 0, "Maximum tokens to generate")
	flags.Float64Var(&opts.temperature, "temperature", 0, "Sampling temperature (0-2)")

	cmd.AddCommand(
		analyzeCmd(build, &opts),
		simplifyCmd(build, &opts),
		chatCmd(build, &opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

// setup builds dependencies and the effective model settings for cmd.
func setup(cmd *cobra.Command, build builder, opts *options) (app.Deps, llm.Settings, error) {
	if err := app.LoadDotEnv(); err != nil {
		return app.Deps{}, llm.Settings{}, err
	}
	cfg := config.Load()
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	deps, err := build(cfg, logger.NewWriter(cmd.ErrOrStderr(), cfg.LogLevel))
	if err != nil {
		return app.Deps{}, llm.Settings{}, err
	}

	s := cfg.Settings()
	flags := cmd.Flags()
	if flags.Changed("host") {
		s.Host = opts.host
	}
	if flags.Changed("model") {
		s.Model = opts.model
	}
	if flags.Changed("max-tokens") {
		s.MaxTokens = opts.maxTokens
	}
	if flags.Changed("temperature") {
		if opts.temperature < 0 || opts.temperature > 2 {
			_ = deps.Close()
			return app.Deps{}, llm.Settings{}, fmt.Errorf("temperature must be between 0 and 2, got %v", opts.temperature)
		}
		s.Temperature = opts.temperature
	}
	return deps, s, nil
}

func analyzeCmd(build builder, opts *options) *cobra.Command {
	var text bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Classify a document, extract entities and split it into clauses",
		Example: `  clausewise analyze lease.pdf
  clausewise analyze --text "1. The Tenant shall pay rent..."`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, s, err := setup(cmd, build, opts)
			if err != nil {
				return err
			}
			defer deps.Close()

			req := pipeline.Request{Settings: s}
			if text {
				req.Text = args[0]
			} else {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				req.Filename = args[0]
				req.Data = data
			}

			report, err := pipeline.Submit(cmd.Context(), deps.Queue, req, deps.Config.QueueAttempts, deps.Config.QueueBackoff)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "Treat the argument as document text instead of a path")
	return cmd
}

func simplifyCmd(build builder, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "simplify <clause>",
		Short: "Rewrite a clause in plain English",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, s, err := setup(cmd, build, opts)
			if err != nil {
				return err
			}
			defer deps.Close()

			res, cached := deps.Simplifier.Simplify(cmd.Context(), strings.Join(args, " "), s)
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"simplified": res.String(),
				"ok":         res.OK(),
				"cached":     cached,
			})
		},
	}
}

func chatCmd(build builder, opts *options) *cobra.Command {
	var historyPath string

	cmd := &cobra.Command{
		Use:   "chat <file> <question>",
		Short: "Ask a question about a document",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, s, err := setup(cmd, build, opts)
			if err != nil {
				return err
			}
			defer deps.Close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			document, _, err := parser.NewRegistry().Extract(parser.RawDocument{Filename: args[0], Data: data})
			if err != nil {
				return err
			}
			history, err := readHistory(historyPath)
			if err != nil {
				return err
			}

			res := deps.Chat.Respond(cmd.Context(), strings.Join(args[1:], " "), document, history, s)
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"response": res.String(),
				"ok":       res.OK(),
			})
		},
	}
	cmd.Flags().StringVar(&historyPath, "history", "", `JSON file with prior turns: [{"user": "...", "assistant": "..."}]`)
	return cmd
}

func readHistory(path string) ([]assistant.Turn, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var turns []assistant.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", path, err)
	}
	return turns, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
