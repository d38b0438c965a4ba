package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating a LintError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *LintError {
	if err == nil {
		return nil
	}

	// If it's already a LintError, preserve its properties but update the message
	var le *LintError
	if errors.As(err, &le) {
		return &LintError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       le,
			Context:     le.Context,
			Rule:        le.Rule,
			FilePath:    le.FilePath,
			Line:        le.Line,
			Column:      le.Column,
			Recoverable: le.Recoverable,
		}
	}

	return &LintError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeParse,
	}
}

// WrapValidation wraps an error as a validation error
func WrapValidation(err error, code, message string) *LintError {
	return Wrap(err, ErrorTypeValidation, code, message)
}

// WrapParse wraps an error as a parse error with file context
func WrapParse(err error, code, message, filePath string) *LintError {
	lintErr := Wrap(err, ErrorTypeParse, code, message)
	if lintErr != nil {
		lintErr.FilePath = filePath
	}
	return lintErr
}

// WrapSecurity wraps an error as a security error (non-recoverable)
func WrapSecurity(err error, code, message string) *LintError {
	lintErr := Wrap(err, ErrorTypeSecurity, code, message)
	if lintErr != nil {
		lintErr.Recoverable = false
	}
	return lintErr
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *LintError {
	lintErr := Wrap(err, ErrorTypeIO, code, message)
	if lintErr != nil {
		lintErr.Recoverable = false
	}
	return lintErr
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *LintError {
	lintErr := Wrap(err, ErrorTypeConfig, code, message)
	if lintErr != nil {
		lintErr.Recoverable = false
	}
	return lintErr
}

// WrapInternal wraps an error as an internal error
func WrapInternal(err error, code, message string) *LintError {
	lintErr := Wrap(err, ErrorTypeInternal, code, message)
	if lintErr != nil {
		lintErr.Recoverable = false
	}
	return lintErr
}

// FormatError formats an error for user display
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var le *LintError
	if errors.As(err, &le) {
		return le.Error()
	}

	return err.Error()
}

// FormatErrorWithSuggestions formats an error with suggestions for ValidationError types
func FormatErrorWithSuggestions(err error) string {
	if err == nil {
		return ""
	}

	var ve ValidationError
	if errors.As(err, &ve) {
		result := ve.Error()
		suggestions := ve.Suggestions()
		if len(suggestions) > 0 {
			result += "\n\nSuggestions:"
			for _, suggestion := range suggestions {
				result += fmt.Sprintf("\n  • %s", suggestion)
			}
		}
		return result
	}

	return FormatError(err)
}

// ExtractCause extracts the root cause from a wrapped error
func ExtractCause(err error) error {
	for err != nil {
		var le *LintError
		if errors.As(err, &le) {
			if le.Cause == nil {
				return le
			}
			err = le.Cause
		} else {
			return err
		}
	}
	return nil
}

// FirstError returns the first non-nil error from a list
func FirstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
