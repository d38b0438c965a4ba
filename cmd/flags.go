package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/ngvet/internal/report"
)

// AddFlagValidation wraps a flag's value so bad input is rejected at parse
// time instead of surfacing later as a config error.
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	// Store original value setter
	originalSet := flag.Value.Set

	// Create wrapper that validates
	flag.Value = &validatingValue{
		Value:       flag.Value,
		validator:   validator,
		originalSet: originalSet,
	}
}

type validatingValue struct {
	pflag.Value
	validator   func(string) error
	originalSet func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.originalSet(val)
}

// ValidateOutputFormat checks a report format name against the supported set.
func ValidateOutputFormat(format string) error {
	for _, valid := range report.ValidFormats() {
		if format == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %s, must be one of: %s",
		format, strings.Join(report.ValidFormats(), ", "))
}

// ValidateFailOn checks a fail-on threshold name.
func ValidateFailOn(value string) error {
	if _, ok := report.ParseSeverity(value); !ok {
		return fmt.Errorf("invalid fail-on threshold %s, must be one of: off, info, warning, error", value)
	}
	return nil
}

// ValidatePort checks a TCP port number.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}

	return nil
}

// oneOfValidator builds a validator for flags with a closed value set.
func oneOfValidator(what string, allowed ...string) func(string) error {
	return func(val string) error {
		for _, a := range allowed {
			if val == a {
				return nil
			}
		}
		return fmt.Errorf("invalid %s %s, must be one of: %s", what, val, strings.Join(allowed, ", "))
	}
}
