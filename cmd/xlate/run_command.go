package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"xlate/internal/backend"
	"xlate/internal/logging"
	"xlate/internal/pipeline"
	"xlate/internal/services"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var backendFlag string
	var sourceFlag string
	var targetFlag string
	var styleFlag string
	var contextFlag string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Translate every file in the input directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			// Credentials may live in a .env next to the invocation.
			_ = godotenv.Load()

			if v := strings.TrimSpace(sourceFlag); v != "" {
				cfg.Processing.SourceLanguage = v
			}
			if v := strings.TrimSpace(targetFlag); v != "" {
				cfg.Processing.TargetLanguage = v
			}
			if v := strings.TrimSpace(styleFlag); v != "" {
				cfg.Processing.Style = v
			}
			if v := strings.TrimSpace(contextFlag); v != "" {
				cfg.Processing.Context = v
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logPath := filepath.Join(cfg.Paths.LogDir, "xlate.log")
			logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
				logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "*.log", Exclude: []string{logPath}},
			)

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "xlate.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return services.Wrap(services.ErrConfiguration, "run", "lock", "another xlate run is already active", nil)
			}
			defer func() {
				_ = lock.Unlock()
			}()

			runCtx := services.WithRunID(signalCtx, uuid.NewString())

			backendLogger := logging.NewComponentLogger(logger, "backend")
			backends, err := backend.FromConfig(cfg, backendLogger, backendFlag)
			if err != nil {
				return err
			}
			defer backend.CloseAll(backends, backendLogger)

			p, err := pipeline.New(cfg, backends, pipeline.WithLogger(logging.NewComponentLogger(logger, "pipeline")))
			if err != nil {
				return err
			}

			summary, err := p.Run(runCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Files", "Translated", "Failed", "Skipped", "Duration"},
				[][]string{{
					strconv.Itoa(summary.Files),
					strconv.Itoa(summary.Translated),
					strconv.Itoa(summary.Failed),
					strconv.Itoa(summary.Skipped),
					summary.Duration.Round(10 * time.Millisecond).String(),
				}},
				1, 2, 3,
			))
			if summary.Failed > 0 {
				fmt.Fprintf(out, "%d file(s) failed; see the log for details\n", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backendFlag, "backend", "", "Restrict the run to one configured backend")
	cmd.Flags().StringVar(&sourceFlag, "source", "", "Override the source language")
	cmd.Flags().StringVar(&targetFlag, "target", "", "Override the target language")
	cmd.Flags().StringVar(&styleFlag, "style", "", "Override the style hint or named preset style")
	cmd.Flags().StringVar(&contextFlag, "context", "", "Override the context hint")
	return cmd
}
