package tsparse

import (
	"bytes"
	"strings"
)

// disableNextLine is the marker recognized in line and HTML comments.
const disableNextLine = "ngvet-disable-next-line"

// Suppression is one ngvet-disable-next-line comment. It applies to
// findings reported on the line directly below it. An empty Rules
// list suppresses every rule.
type Suppression struct {
	Line  int
	Rules []string
}

// Covers reports whether the suppression silences the given rule on
// the given line.
func (s Suppression) Covers(rule string, line int) bool {
	if line != s.Line+1 {
		return false
	}
	if len(s.Rules) == 0 {
		return true
	}
	for _, r := range s.Rules {
		if r == rule {
			return true
		}
	}
	return false
}

// Suppressed reports whether any suppression in the list covers the
// rule at the given line.
func Suppressed(suppressions []Suppression, rule string, line int) bool {
	for _, s := range suppressions {
		if s.Covers(rule, line) {
			return true
		}
	}
	return false
}

// ParseSuppressions scans source for disable comments. Both the
// TypeScript and the HTML comment forms are recognized:
//
//	// ngvet-disable-next-line di-parameter-order, member-order
//	<!-- ngvet-disable-next-line template-naming -->
func ParseSuppressions(content []byte) []Suppression {
	var suppressions []Suppression

	for i, line := range bytes.Split(content, []byte("\n")) {
		text := string(line)
		idx := strings.Index(text, disableNextLine)
		if idx < 0 {
			continue
		}

		// The marker must open a line or HTML comment, not sit inside
		// a string literal.
		prefix := strings.TrimSpace(text[:idx])
		if !strings.HasSuffix(prefix, "//") && !strings.HasSuffix(prefix, "<!--") {
			continue
		}

		rest := text[idx+len(disableNextLine):]
		if end := strings.Index(rest, "-->"); end >= 0 {
			rest = rest[:end]
		}

		suppressions = append(suppressions, Suppression{
			Line:  i + 1,
			Rules: splitRules(rest),
		})
	}

	return suppressions
}

func splitRules(s string) []string {
	var rules []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			rules = append(rules, part)
		}
	}
	return rules
}
