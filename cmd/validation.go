package cmd

import (
	"fmt"
	"strings"
)

// validateTargetPath validates a path argument for security before it
// reaches the walker. This is shared by check, watch and docs.
func validateTargetPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	// Reject arguments containing shell metacharacters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	// Reject path traversal attempts
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal attempt detected")
	}

	return nil
}

// validateTargetPaths validates a slice of path arguments.
func validateTargetPaths(paths []string) error {
	for _, path := range paths {
		if err := validateTargetPath(path); err != nil {
			return fmt.Errorf("invalid path %q: %w", path, err)
		}
	}
	return nil
}
