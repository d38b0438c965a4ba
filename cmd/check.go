package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/ngvet/internal/config"
	"github.com/conneroisu/ngvet/internal/di"
	ngerrors "github.com/conneroisu/ngvet/internal/errors"
	"github.com/conneroisu/ngvet/internal/report"
)

// errFindings signals a clean run that still found problems at or
// above the fail-on threshold. The report has already been printed, so
// main only translates it into the exit code.
var errFindings = errors.New("findings at or above the fail-on threshold")

var checkCmd = &cobra.Command{
	Use:     "check [path...]",
	Aliases: []string{"c"},
	Short:   "Check sources against the styleguide",
	Long: `Check TypeScript and template sources against the styleguide rules.
Paths given as arguments override the configured include paths.

The command exits 0 when no finding reaches the fail-on threshold and
1 otherwise, so it slots directly into CI pipelines.

Examples:
  ngvet check                     # Check configured include paths
  ngvet check src/app             # Check one directory
  ngvet check -f json             # Machine-readable output
  ngvet check --fail-on error     # Only errors fail the run
  ngvet check -f github           # Annotations for GitHub Actions`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("format", "f", "text", "Output format (text|json|yaml|checkstyle|github)")
	checkCmd.Flags().String("fail-on", "warning", "Severity that fails the run (info|warning|error|off)")
	checkCmd.Flags().String("color", "auto", "Colorize text output (auto|always|never)")

	viper.BindPFlag("output.format", checkCmd.Flags().Lookup("format"))
	viper.BindPFlag("severity.fail-on", checkCmd.Flags().Lookup("fail-on"))
	viper.BindPFlag("output.color", checkCmd.Flags().Lookup("color"))

	AddFlagValidation(checkCmd, "format", ValidateOutputFormat)
	AddFlagValidation(checkCmd, "fail-on", ValidateFailOn)
	AddFlagValidation(checkCmd, "color", oneOfValidator("color mode", "auto", "always", "never"))
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	paths := cfg.Paths.Include
	if len(args) > 0 {
		if err := validateTargetPaths(args); err != nil {
			return err
		}
		paths = args
	}

	logger := newLogger()
	container := di.NewContainer(cfg, logger)
	defer func() {
		if shutdownErr := container.Shutdown(context.Background()); shutdownErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: shutdown error: %v\n", shutdownErr)
		}
	}()

	rep, err := runLint(context.Background(), container, paths)
	if err != nil {
		return err
	}

	if err := writeReport(cfg, rep); err != nil {
		return err
	}

	if rep.HasFailures(cfg.FailOn()) {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errFindings
	}
	return nil
}

// runLint walks every target path into the shared registry and runs
// the rule engine once over the result.
func runLint(ctx context.Context, container *di.Container, paths []string) (*report.Report, error) {
	w := container.Walker()

	for _, path := range paths {
		stats, err := w.WalkRoot(path)
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
		for _, unreadable := range stats.Unreadable {
			fmt.Fprintf(os.Stderr, "Warning: could not read %s\n", unreadable)
		}
	}

	eng, err := container.Engine()
	if err != nil {
		return nil, fmt.Errorf("creating rule engine: %w", err)
	}

	rep, err := eng.Run(ctx, rootLabel(paths))
	if err != nil {
		return nil, fmt.Errorf("lint run failed: %w", err)
	}
	return rep, nil
}

// rootLabel names the checked tree in the report header.
func rootLabel(paths []string) string {
	if len(paths) == 1 {
		return paths[0]
	}
	return "."
}

// loadConfig loads configuration and dresses failures up with
// actionable suggestions.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		var enhanced *ngerrors.EnhancedError
		if errors.As(err, &enhanced) {
			return nil, err
		}
		suggestions := ngerrors.ConfigSuggestions(err.Error(), config.DefaultFileName)
		return nil, ngerrors.NewEnhancedError("Failed to load configuration", err, suggestions)
	}
	return cfg, nil
}
