// Package config provides configuration management for ngvet using Viper
// for flexible configuration loading from files, environment variables,
// and command-line flags.
//
// The configuration system supports YAML files (.ngvet.yml), environment
// variable overrides with the NGVET_ prefix, validation, and security
// checks. It manages lint paths, per-rule severity overrides, output
// settings, watch debouncing, and the dashboard server.
package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/ngvet/internal/errors"
	"github.com/conneroisu/ngvet/internal/report"
	"github.com/conneroisu/ngvet/internal/rules"
)

// DefaultFileName is the config file ngvet looks for in the working
// directory.
const DefaultFileName = ".ngvet.yml"

type Config struct {
	Paths    PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Rules    map[string]string `yaml:"rules" mapstructure:"rules"`
	Options  OptionsConfig     `yaml:"options" mapstructure:"options"`
	Severity SeverityConfig    `yaml:"severity" mapstructure:"severity"`
	Output   OutputConfig      `yaml:"output" mapstructure:"output"`
	Watch    WatchConfig       `yaml:"watch" mapstructure:"watch"`
	Server   ServerConfig      `yaml:"server" mapstructure:"server"`
	Docs     DocsConfig        `yaml:"docs" mapstructure:"docs"`
}

type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"`
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
}

type OptionsConfig struct {
	FileNaming FileNamingOptions `yaml:"file-naming" mapstructure:"file-naming"`
}

type FileNamingOptions struct {
	ExtraTypes []string `yaml:"extra-types" mapstructure:"extra-types"`
}

type SeverityConfig struct {
	FailOn string `yaml:"fail-on" mapstructure:"fail-on"`
}

type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Color  string `yaml:"color" mapstructure:"color"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

type ServerConfig struct {
	Host           string   `yaml:"host" mapstructure:"host"`
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed-origins" mapstructure:"allowed-origins"`
}

type DocsConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// SetDefaults registers every configuration key with its default value.
// Registering keys up front also makes NGVET_ environment overrides
// visible to Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("paths.include", []string{"."})
	v.SetDefault("paths.exclude", []string{})
	v.SetDefault("options.file-naming.extra-types", []string{})
	v.SetDefault("severity.fail-on", "warning")
	v.SetDefault("output.format", "text")
	v.SetDefault("output.color", "auto")
	v.SetDefault("watch.debounce", 300*time.Millisecond)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 7878)
	v.SetDefault("server.allowed-origins", []string{})
	v.SetDefault("docs.file", "STYLEGUIDE.md")
}

func Load() (*Config, error) {
	SetDefaults(viper.GetViper())

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "unmarshal configuration")
	}

	// Workaround for viper map handling: per-key overrides set via
	// viper.Set or environment variables do not land in the struct map.
	if viper.IsSet("rules") {
		overrides := viper.GetStringMapString("rules")
		if len(overrides) > 0 && len(config.Rules) == 0 {
			config.Rules = overrides
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the configuration ngvet runs with when no file or
// overrides are present.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{"."},
		},
		Severity: SeverityConfig{FailOn: "warning"},
		Output:   OutputConfig{Format: "text", Color: "auto"},
		Watch:    WatchConfig{Debounce: 300 * time.Millisecond},
		Server:   ServerConfig{Host: "localhost", Port: 7878},
		Docs:     DocsConfig{File: "STYLEGUIDE.md"},
	}
}

// FailOn returns the parsed failure threshold.
func (c *Config) FailOn() report.Severity {
	if sev, ok := report.ParseSeverity(c.Severity.FailOn); ok {
		return sev
	}
	return report.SeverityWarning
}

// SeverityOverrides returns the per-rule overrides parsed into severities.
// Load has already validated both rule IDs and severity names.
func (c *Config) SeverityOverrides() map[string]report.Severity {
	if len(c.Rules) == 0 {
		return nil
	}
	overrides := make(map[string]report.Severity, len(c.Rules))
	for id, name := range c.Rules {
		if sev, ok := report.ParseSeverity(name); ok {
			overrides[id] = sev
		}
	}
	return overrides
}

// RuleOptions returns the rule options derived from the configuration.
func (c *Config) RuleOptions() rules.Options {
	return rules.Options{
		ExtraTypes: c.Options.FileNaming.ExtraTypes,
	}
}

// validateConfig validates configuration values for security and
// correctness.
func validateConfig(config *Config) error {
	if err := validatePathsConfig(&config.Paths); err != nil {
		return fmt.Errorf("paths config: %w", err)
	}

	if err := validateRuleOverrides(config.Rules); err != nil {
		return err
	}

	if err := validateSeverityConfig(&config.Severity); err != nil {
		return fmt.Errorf("severity config: %w", err)
	}

	if err := validateOutputConfig(&config.Output); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if config.Watch.Debounce < 0 {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("watch debounce must not be negative, got %s", config.Watch.Debounce))
	}

	return nil
}

// validatePathsConfig validates include paths and exclude globs.
func validatePathsConfig(config *PathsConfig) error {
	if len(config.Include) == 0 {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid, "paths.include must not be empty")
	}

	for _, path := range config.Include {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid include path %q: %w", path, err)
		}
	}

	for _, pattern := range config.Exclude {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return errors.NewConfigError(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("invalid exclude pattern %q: %v", pattern, err))
		}
	}

	return nil
}

// validateRuleOverrides checks the rules section against the registered
// rule set. Unknown IDs get actionable suggestions.
func validateRuleOverrides(overrides map[string]string) error {
	if len(overrides) == 0 {
		return nil
	}

	known := rules.IDs()
	knownSet := make(map[string]bool, len(known))
	for _, id := range known {
		knownSet[id] = true
	}

	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	collection := &errors.ValidationErrorCollection{}
	for _, id := range ids {
		if !knownSet[id] {
			return errors.NewEnhancedError(
				fmt.Sprintf("Unknown rule %q in rules section", id),
				errors.ErrUnknownRule(id, known),
				errors.UnknownRuleSuggestions(id, known),
			)
		}
		if _, ok := report.ParseSeverity(overrides[id]); !ok {
			collection.AddField("rules."+id, overrides[id],
				"severity must be one of: off, info, warning, error")
		}
	}

	if collection.HasErrors() {
		return collection.ToLintError()
	}
	return nil
}

// validateSeverityConfig validates the failure threshold.
func validateSeverityConfig(config *SeverityConfig) error {
	if config.FailOn == "" {
		return nil
	}
	// off is a valid threshold: report findings without failing the run
	if _, ok := report.ParseSeverity(config.FailOn); !ok {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("fail-on must be one of info, warning, error, off, got %q", config.FailOn))
	}
	return nil
}

// validateOutputConfig validates output format and color mode.
func validateOutputConfig(config *OutputConfig) error {
	if config.Format != "" {
		valid := report.ValidFormats()
		found := false
		for _, format := range valid {
			if config.Format == format {
				found = true
				break
			}
		}
		if !found {
			return errors.ErrUnknownFormat(config.Format, valid)
		}
	}

	switch config.Color {
	case "", "auto", "always", "never":
	default:
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("color must be one of auto, always, never, got %q", config.Color))
	}

	return nil
}

// validateServerConfig validates server configuration values.
func validateServerConfig(config *ServerConfig) error {
	// Port 0 is allowed for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port))
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return errors.NewSecurityError(errors.ErrCodeConfigInvalid,
					fmt.Sprintf("host contains dangerous character: %s", char))
			}
		}
	}

	for _, origin := range config.AllowedOrigins {
		if origin == "" {
			return errors.NewConfigError(errors.ErrCodeConfigInvalid, "allowed-origins must not contain empty entries")
		}
	}

	return nil
}

// validatePath validates a file path for security.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return errors.ErrPathTraversal(path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
