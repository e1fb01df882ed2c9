package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beyondtyping/beyond/internal/beyond/app"
)

func newRunCmd() *cobra.Command {
	cfg := app.LoadConfig()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Listen for commands and carry them out",
		Long: `Runs the command loop on the configured transport. Every flag defaults to
its BEYOND_* environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runApp(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Transport, "transport", cfg.Transport, "input/output transport (console, matrix)")
	f.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "intent classifier artifact")
	f.StringVar(&cfg.RulesPath, "rules", cfg.RulesPath, "static rule table overriding the built-in one")
	f.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database for the cycle journal")
	f.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "address for /health, /status, /cycles and /metrics")
	f.StringVar(&cfg.Home, "home", cfg.Home, "folder navigation starts here")
	f.DurationVar(&cfg.ListenTimeout, "listen-timeout", cfg.ListenTimeout, "wait for one command")
	f.DurationVar(&cfg.ClarifyTimeout, "clarify-timeout", cfg.ClarifyTimeout, "wait for a clarification answer")
	f.Float64Var(&cfg.MinConfidence, "min-confidence", cfg.MinConfidence, "classifier predictions below this fall back to the rules")
	return cmd
}

func runApp(ctx context.Context, cfg app.Config) error {
	a, err := app.New(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	err = a.Run(ctx)
	slog.Info("Beyond stopped", "uptime", time.Since(start).Round(time.Second))
	return err
}
