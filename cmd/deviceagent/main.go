// Package main provides the deviceagent binary entry point.
// Deviceagent is a conversational agent that plans and executes
// multi-step tool workflows from natural-language requests.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	// Register LLM providers via init()
	_ "github.com/100xA/deviceagent/llm/providers"

	"github.com/100xA/deviceagent/config"
	"github.com/100xA/deviceagent/confirm"
	"github.com/100xA/deviceagent/memory"
	"github.com/100xA/deviceagent/scenario"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "deviceagent"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Conversational planning agent",
		Long: `Deviceagent turns natural-language requests into multi-step tool
plans and executes them with dependency ordering, parameter
validation, and confirmation gating for outward-facing actions.

Plans are synthesized by deterministic clause rules first; a local
model backfills steps the rules did not recognize and answers
conversational turns.`,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(chatCmd(&configPath, &logLevel))
	cmd.AddCommand(runCmd(&configPath, &logLevel))
	cmd.AddCommand(scenarioCmd(&configPath, &logLevel))
	cmd.AddCommand(logsCmd(&configPath, &logLevel))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func chatCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdin := newLineSource(os.Stdin)
			app, err := newApp(*configPath, *logLevel, terminalConfirmer{input: stdin})
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			fmt.Printf("%s v%s (type /quit to exit)\n", appName, Version)
			for {
				fmt.Print("> ")
				raw, ok, err := stdin.ReadLine(ctx)
				if err != nil || !ok {
					break
				}
				line := strings.TrimSpace(raw)
				if line == "" {
					continue
				}
				if line == "/quit" || line == "/exit" {
					break
				}
				if err := app.runtime.ProcessInput(ctx, line); err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
				}
				if ctx.Err() != nil {
					break
				}
			}
			return nil
		},
	}
}

func runCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run [request]",
		Short: "Process a single request and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(*configPath, *logLevel, terminalConfirmer{input: newLineSource(os.Stdin)})
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return app.runtime.ProcessInput(ctx, strings.Join(args, " "))
		},
	}
}

func scenarioCmd(configPath, logLevel *string) *cobra.Command {
	var (
		scenarioFile string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Run benchmark scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Benchmarks approve every plan so risky steps never block
			// on a prompt and timings stay comparable across runs.
			app, err := newApp(*configPath, *logLevel, confirm.Auto{})
			if err != nil {
				return err
			}
			defer app.Close()

			scenarios := scenario.Defaults()
			if scenarioFile != "" {
				scenarios, err = scenario.LoadFile(scenarioFile)
				if err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			results := app.scenarioRunner().RunAll(ctx, scenarios)
			switch format {
			case "csv":
				fmt.Print(scenario.CSV(results))
			default:
				fmt.Println(scenario.MarkdownTable(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scenarioFile, "file", "f", "", "Scenario YAML file (default: built-in scenarios)")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format (markdown, csv)")
	return cmd
}

func logsCmd(configPath, logLevel *string) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "logs [request]",
		Short: "Process a request and dump captured log records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(*configPath, *logLevel, terminalConfirmer{input: newLineSource(os.Stdin)})
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := app.runtime.ProcessInput(ctx, strings.Join(args, " ")); err != nil {
				return err
			}

			entries := app.ring.Entries()
			if category != "" {
				entries = app.ring.EntriesByCategory(category)
			}
			for _, e := range entries {
				fmt.Printf("%s %-5s [%s] %s", e.Time.Format("15:04:05.000"), e.Level, e.Category, e.Message)
				for k, v := range e.Context {
					fmt.Printf(" %s=%s", k, v)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only show records from this category")
	return cmd
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}
	return config.NewLoader(logger).Load()
}

func printTranscriptMessage(msg memory.Message) {
	switch msg.Role {
	case memory.RoleAssistant:
		fmt.Printf("agent: %s\n", msg.Content)
	case memory.RoleToolCall:
		fmt.Printf("  [tool] %s\n", msg.Content)
	case memory.RoleToolResult:
		fmt.Printf("  [result] %s\n", msg.Content)
	}
}
