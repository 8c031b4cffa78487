package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"media-merger/internal/diagnostics"
	"media-merger/internal/domain"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

func newDoctorCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check ffmpeg and the configured directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.resolveSettings(cmd)
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			checker := diagnostics.NewChecker()
			report := checker.Run(cmd.Context(), settings)

			out := cmd.OutOrStdout()
			colorize := false
			if f, ok := out.(*os.File); ok {
				colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
			}

			for _, item := range report.Items {
				fmt.Fprintln(out, renderCheckLine(item, colorize))
				if item.Hint != "" && item.Status == domain.DiagnosticStatusFail {
					fmt.Fprintf(out, "       %s\n", item.Hint)
				}
			}

			if report.HasFailures {
				return fmt.Errorf("diagnostics reported failures")
			}
			return nil
		},
	}
}

func renderCheckLine(item domain.DiagnosticItem, colorize bool) string {
	label := "PASS"
	color := ansiGreen
	if item.Status == domain.DiagnosticStatusFail {
		label = "FAIL"
		color = ansiRed
	}
	if colorize {
		label = color + label + ansiReset
	}
	return fmt.Sprintf("[%s] %-18s %s", label, item.Name, item.Message)
}
