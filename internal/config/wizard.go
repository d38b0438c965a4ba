package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/conneroisu/ngvet/internal/errors"
)

// Wizard walks a user through initial project setup and produces a
// configuration ready to be written as .ngvet.yml.
type Wizard struct {
	sourceRoot string
	strictness string
	port       string
}

// NewWizard creates a wizard seeded with the default answers.
func NewWizard() *Wizard {
	return &Wizard{
		sourceRoot: "./src",
		strictness: "standard",
		port:       "7878",
	}
}

// Run executes the interactive form and returns the resulting
// configuration.
func (w *Wizard) Run() (*Config, error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Source root").
				Description("Directory ngvet walks for TypeScript sources and templates").
				Value(&w.sourceRoot).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("source root must not be empty")
					}
					return validatePath(s)
				}),
			huh.NewSelect[string]().
				Title("Strictness").
				Description("How hard the styleguide rules push back").
				Options(
					huh.NewOption("Relaxed: naming and DI typing only", "relaxed"),
					huh.NewOption("Standard: recommended defaults", "standard"),
					huh.NewOption("Strict: every convention fails the build", "strict"),
				).
				Value(&w.strictness),
			huh.NewInput().
				Title("Dashboard port").
				Description("Port for ngvet serve").
				Value(&w.port).
				Validate(func(s string) error {
					port, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("port must be a number")
					}
					if port < 1 || port > 65535 {
						return fmt.Errorf("port must be between 1 and 65535")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	config := Default()
	config.Paths.Include = []string{w.sourceRoot}
	config.Rules = Preset(w.strictness)

	port, err := strconv.Atoi(strings.TrimSpace(w.port))
	if err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "parse dashboard port")
	}
	config.Server.Port = port

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Preset returns the rule severity overrides for a named strictness
// level. Standard returns nil so the registered defaults apply.
func Preset(strictness string) map[string]string {
	switch strictness {
	case "relaxed":
		return map[string]string{
			"di-parameter-order": "off",
			"member-order":       "off",
			"spec-location":      "off",
			"one-time-binding":   "info",
		}
	case "strict":
		return map[string]string{
			"di-parameter-order": "error",
			"member-order":       "error",
			"spec-location":      "error",
			"one-time-binding":   "error",
			"template-naming":    "error",
		}
	default:
		return nil
	}
}

// FileTemplate renders a commented .ngvet.yml for the given
// configuration. Sections left at their defaults are emitted as
// commented examples so the file documents itself.
func FileTemplate(config *Config) string {
	var builder strings.Builder

	builder.WriteString("# ngvet configuration\n")
	builder.WriteString("# Run `ngvet rules` for the full rule list and `ngvet explain <rule>` for details.\n\n")

	builder.WriteString("paths:\n")
	builder.WriteString("  include:\n")
	for _, path := range config.Paths.Include {
		builder.WriteString(fmt.Sprintf("    - %q\n", path))
	}
	if len(config.Paths.Exclude) > 0 {
		builder.WriteString("  exclude:\n")
		for _, pattern := range config.Paths.Exclude {
			builder.WriteString(fmt.Sprintf("    - %q\n", pattern))
		}
	} else {
		builder.WriteString("  # exclude:\n")
		builder.WriteString("  #   - \"*.gen.ts\"\n")
	}
	builder.WriteString("\n")

	builder.WriteString("# Per-rule severity overrides: off, info, warning, error.\n")
	if len(config.Rules) > 0 {
		builder.WriteString("rules:\n")
		ids := make([]string, 0, len(config.Rules))
		for id := range config.Rules {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			builder.WriteString(fmt.Sprintf("  %s: %s\n", id, config.Rules[id]))
		}
	} else {
		builder.WriteString("# rules:\n")
		builder.WriteString("#   di-parameter-order: off\n")
		builder.WriteString("#   member-order: error\n")
	}
	builder.WriteString("\n")

	builder.WriteString("# Extra recognized file type suffixes beyond the built-in set.\n")
	if len(config.Options.FileNaming.ExtraTypes) > 0 {
		builder.WriteString("options:\n")
		builder.WriteString("  file-naming:\n")
		builder.WriteString("    extra-types:\n")
		for _, suffix := range config.Options.FileNaming.ExtraTypes {
			builder.WriteString(fmt.Sprintf("      - %q\n", suffix))
		}
	} else {
		builder.WriteString("# options:\n")
		builder.WriteString("#   file-naming:\n")
		builder.WriteString("#     extra-types: [\"store\", \"gateway\"]\n")
	}
	builder.WriteString("\n")

	builder.WriteString("severity:\n")
	builder.WriteString(fmt.Sprintf("  fail-on: %s\n\n", config.Severity.FailOn))

	builder.WriteString("output:\n")
	builder.WriteString(fmt.Sprintf("  format: %s\n", config.Output.Format))
	builder.WriteString(fmt.Sprintf("  color: %s\n\n", config.Output.Color))

	builder.WriteString("watch:\n")
	builder.WriteString(fmt.Sprintf("  debounce: %s\n\n", config.Watch.Debounce))

	builder.WriteString("server:\n")
	builder.WriteString(fmt.Sprintf("  host: %s\n", config.Server.Host))
	builder.WriteString(fmt.Sprintf("  port: %d\n", config.Server.Port))
	if len(config.Server.AllowedOrigins) > 0 {
		builder.WriteString("  allowed-origins:\n")
		for _, origin := range config.Server.AllowedOrigins {
			builder.WriteString(fmt.Sprintf("    - %q\n", origin))
		}
	} else {
		builder.WriteString("  # allowed-origins: [\"http://localhost:4200\"]\n")
	}
	builder.WriteString("\n")

	builder.WriteString("docs:\n")
	builder.WriteString(fmt.Sprintf("  file: %s\n", config.Docs.File))

	return builder.String()
}

// WriteFile writes the rendered configuration to path. Existing files
// are preserved unless force is set.
func WriteFile(path string, config *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.NewConfigError(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("%s already exists, pass --force to overwrite", path))
		}
	}

	if err := os.WriteFile(path, []byte(FileTemplate(config)), 0o644); err != nil {
		return errors.WrapIO(err, errors.ErrCodePermissionDenied, "write configuration file")
	}
	return nil
}
