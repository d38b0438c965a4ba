// Package cmd provides the command-line interface for ngvet with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --format, etc.) - highest priority
//	2. NGVET_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (NGVET_SERVER_PORT, etc.)
//	4. Configuration files (.ngvet.yml) - lowest priority
//
// Environment Variables:
//
//	NGVET_CONFIG_FILE: Path to custom configuration file
//	NGVET_SERVER_PORT: Override dashboard port
//	NGVET_SEVERITY_FAIL_ON: Override the failure threshold
//	NGVET_OUTPUT_FORMAT: Override the report format
//	And many more following the NGVET_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/ngvet/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ngvet",
	Short: "A styleguide linter for Angular-style TypeScript projects",
	Long: `ngvet checks Angular-style TypeScript projects against the styleguide:
file naming, single responsibility, member ordering, dependency
injection conventions, and template hygiene.

Key Features:
  • Dotted-suffix file naming and folder structure checks
  • Class, selector and member convention checks
  • Dependency injection parameter checks
  • Template binding checks for .html companions
  • Watch mode with incremental re-checking
  • Live findings dashboard over WebSocket

Quick Start:
  ngvet init                      Create a starter .ngvet.yml
  ngvet check                     Check the current project
  ngvet watch                     Re-check on file changes
  ngvet serve                     Start the findings dashboard
  ngvet rules                     List all rules

Command Aliases (for faster typing):
  check (c), watch (w), serve (s), rules (r), explain (e), init (i)

Documentation: https://github.com/conneroisu/ngvet`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .ngvet.yml, can also use NGVET_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "warn", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system with support for multiple config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. NGVET_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .ngvet.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("NGVET_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ngvet")
	}

	// Enable automatic environment variable binding with NGVET_ prefix
	// Examples: NGVET_SERVER_PORT, NGVET_SEVERITY_FAIL_ON
	viper.SetEnvPrefix("NGVET")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// If the config file is missing, Viper falls back to defaults.
	// An explicitly requested file that fails to parse surfaces later
	// through config.Load.
	if err := viper.ReadInConfig(); err == nil && verboseConfig() {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// verboseConfig reports whether config loading chatter should print.
// Only debug level surfaces it so report output stays clean.
func verboseConfig() bool {
	return logging.ParseLevel(viper.GetString("log-level")) == logging.LevelDebug
}

// newLogger builds the process logger from the persistent log-level
// flag. Logs go to stderr so stdout stays parseable.
func newLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: "text",
		Output: os.Stderr,
	})
}
