package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/ngvet/internal/mdcheck"
	"github.com/conneroisu/ngvet/internal/report"
)

var docsCmd = &cobra.Command{
	Use:   "docs [file...]",
	Short: "Check the styleguide document for broken anchors",
	Long: `Check Markdown documents for broken internal links, missing link
targets and duplicate headings. Without arguments the configured
styleguide document is checked.

Findings use the same formats and exit semantics as check, so docs
runs slot into the same CI pipelines.

Examples:
  ngvet docs                      # Check the configured document
  ngvet docs STYLEGUIDE.md        # Check a specific document
  ngvet docs -f json docs/*.md    # Machine-readable output`,
	RunE: runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)

	docsCmd.Flags().StringP("format", "f", "text", "Output format (text|json|yaml|checkstyle|github)")
	docsCmd.Flags().String("fail-on", "warning", "Severity that fails the run (info|warning|error|off)")

	viper.BindPFlag("output.format", docsCmd.Flags().Lookup("format"))
	viper.BindPFlag("severity.fail-on", docsCmd.Flags().Lookup("fail-on"))

	AddFlagValidation(docsCmd, "format", ValidateOutputFormat)
	AddFlagValidation(docsCmd, "fail-on", ValidateFailOn)
}

func runDocs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files := []string{cfg.Docs.File}
	if len(args) > 0 {
		if err := validateTargetPaths(args); err != nil {
			return err
		}
		files = args
	}

	checker := mdcheck.NewChecker()
	collector := report.NewCollector()

	for _, file := range files {
		result, err := checker.CheckFile(file)
		if err != nil {
			return err
		}
		collector.AddAll(result.Findings())
		collector.FileChecked()
	}

	rep := collector.Finalize(rootLabel(files))
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
