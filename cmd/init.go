package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/conneroisu/ngvet/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"i"},
	Short:   "Create a starter .ngvet.yml",
	Long: `Create a starter .ngvet.yml in the current directory.

The generated file documents every section with commented examples.
Interactive mode walks through the common choices instead.

Examples:
  ngvet init                      # Write the default config
  ngvet init --interactive        # Answer a few questions first
  ngvet init --force              # Overwrite an existing config`,
	RunE: runInit,
}

var (
	initForce       bool
	initInteractive bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Configure interactively")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()

	if initInteractive {
		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("interactive mode requires a terminal; rerun without --interactive")
		}

		wizardCfg, err := config.NewWizard().Run()
		if err != nil {
			return fmt.Errorf("wizard failed: %w", err)
		}
		cfg = wizardCfg
	}

	if err := config.WriteFile(config.DefaultFileName, cfg, initForce); err != nil {
		return err
	}

	fmt.Printf("✅ Wrote %s\n", config.DefaultFileName)
	fmt.Println("\nNext steps:")
	fmt.Println("   1. Review the generated configuration")
	fmt.Println("   2. Run 'ngvet check' to check your project")
	fmt.Println("   3. Run 'ngvet rules' to see what gets checked")

	return nil
}
