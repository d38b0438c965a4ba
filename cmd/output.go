package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/conneroisu/ngvet/internal/config"
	"github.com/conneroisu/ngvet/internal/report"
)

// writeReport renders a report to stdout in the configured format.
func writeReport(cfg *config.Config, rep *report.Report) error {
	formatter, err := report.NewFormatter(cfg.Output.Format, resolveColor(cfg.Output.Color))
	if err != nil {
		return err
	}
	if err := formatter.Format(os.Stdout, rep); err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}
	return nil
}

// resolveColor turns the configured color mode into a concrete
// decision for the current stdout.
func resolveColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
}
