package errors

import (
	"fmt"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error
type ErrorSuggestion struct {
	Title       string
	Description string
	Command     string
	Example     string
}

// UnknownRuleSuggestions generates suggestions for unknown rule IDs
func UnknownRuleSuggestions(ruleID string, known []string) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{
		{
			Title:       "List all rules",
			Description: "See every rule and its default severity",
			Command:     "ngvet rules",
		},
	}

	if len(known) > 0 {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Available rules",
			Description: "These rules are currently registered: " + strings.Join(known, ", "),
		})

		// Suggest similar rule IDs
		for _, id := range known {
			if strings.Contains(strings.ToLower(id), strings.ToLower(ruleID)) ||
				strings.Contains(strings.ToLower(ruleID), strings.ToLower(id)) {
				suggestions = append(suggestions, ErrorSuggestion{
					Title:       "Did you mean '" + id + "'?",
					Description: "Similar rule found",
					Command:     "ngvet explain " + id,
				})
				break
			}
		}
	}

	suggestions = append(suggestions, ErrorSuggestion{
		Title:       "Check your configuration",
		Description: "Rule IDs under the rules: key must match registered rules exactly",
		Example:     "rules:\n  file-naming: error\n  di-parameter-order: warning",
	})

	return suggestions
}

// ServerStartSuggestions generates suggestions for server startup failures
func ServerStartSuggestions(err error, port int) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{}

	errStr := err.Error()

	if strings.Contains(errStr, "address already in use") || strings.Contains(errStr, "bind") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Port already in use",
			Description: fmt.Sprintf("Port %d is already being used by another process", port),
			Command:     fmt.Sprintf("lsof -i :%d", port),
		})

		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Use a different port",
			Description: "Start the server on a different port",
			Command:     fmt.Sprintf("ngvet serve --port %d", port+1000),
		})
	}

	if strings.Contains(errStr, "permission denied") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Permission denied",
			Description: "You don't have permission to bind to this port",
		})

		if port < 1024 {
			suggestions = append(suggestions, ErrorSuggestion{
				Title:       "Use unprivileged port",
				Description: "Ports below 1024 require root privileges",
				Command:     "ngvet serve --port 7878",
			})
		}
	}

	return suggestions
}

// ConfigSuggestions generates suggestions for configuration issues
func ConfigSuggestions(configError string, configPath string) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{
		{
			Title:       "Check configuration file",
			Description: "Verify your .ngvet.yml file exists and has valid syntax",
			Command:     "cat " + configPath,
		},
		{
			Title:       "Run the doctor",
			Description: "Use the doctor command to check for configuration issues",
			Command:     "ngvet doctor",
		},
	}

	if strings.Contains(configError, "yaml") || strings.Contains(configError, "unmarshal") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Fix YAML syntax",
			Description: "There's a syntax error in your YAML configuration",
			Example:     "Use proper indentation and avoid tabs",
		})
	}

	if strings.Contains(configError, "path") || strings.Contains(configError, "directory") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Check include paths",
			Description: "Verify all paths in your configuration exist",
			Command:     "ls -la",
		})
	}

	return suggestions
}

// FormatSuggestions formats suggestions into a user-friendly string
func FormatSuggestions(title string, suggestions []ErrorSuggestion) string {
	if len(suggestions) == 0 {
		return title
	}

	var output strings.Builder
	output.WriteString(title + "\n\n")
	output.WriteString("Suggestions:\n")

	for i, suggestion := range suggestions {
		output.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion.Title))
		if suggestion.Description != "" {
			output.WriteString(fmt.Sprintf("     %s\n", suggestion.Description))
		}
		if suggestion.Command != "" {
			output.WriteString(fmt.Sprintf("     Run: %s\n", suggestion.Command))
		}
		if suggestion.Example != "" {
			output.WriteString(fmt.Sprintf("     Example: %s\n", suggestion.Example))
		}
		output.WriteString("\n")
	}

	return output.String()
}

// EnhancedError wraps an error with suggestions
type EnhancedError struct {
	OriginalError error
	Title         string
	Suggestions   []ErrorSuggestion
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	return FormatSuggestions(e.Title, e.Suggestions)
}

// Unwrap returns the original error
func (e *EnhancedError) Unwrap() error {
	return e.OriginalError
}

// NewEnhancedError creates a new enhanced error with suggestions
func NewEnhancedError(title string, originalError error, suggestions []ErrorSuggestion) *EnhancedError {
	return &EnhancedError{
		OriginalError: originalError,
		Title:         title,
		Suggestions:   suggestions,
	}
}
