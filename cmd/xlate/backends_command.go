package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"xlate/internal/backend"
)

const (
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiDim    = "\x1b[2m"
	ansiReset  = "\x1b[0m"
)

func newBackendsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List configured translation backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_ = godotenv.Load()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			rows := make([][]string, 0, len(cfg.Backends))
			for _, entry := range cfg.Backends {
				status := backendStatus(entry.Name, entry.Enabled, colorize)
				contextSize := "-"
				if entry.ContextSize > 0 {
					contextSize = strconv.Itoa(entry.ContextSize)
				}
				rows = append(rows, []string{entry.Name, entry.Model, contextSize, status})
			}

			fmt.Fprintln(out, renderTable([]string{"Name", "Model", "Context", "Status"}, rows, 2))
			return nil
		},
	}
}

func backendStatus(name string, enabled bool, colorize bool) string {
	paint := func(color, label string) string {
		if !colorize {
			return label
		}
		return color + label + ansiReset
	}

	if !enabled {
		return paint(ansiDim, "disabled")
	}
	envVar, known := backend.CredentialEnv(name)
	if !known {
		return paint(ansiYellow, "unknown backend")
	}
	if strings.TrimSpace(os.Getenv(envVar)) == "" {
		return paint(ansiYellow, "missing "+envVar)
	}
	return paint(ansiGreen, "ready")
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
