// Package template scans Angular companion templates for the facts
// template rules inspect: {{ }} interpolations, ng-* attribute
// bindings and disable comments. Positions come from the tokenizer's
// raw byte spans, so findings point at the offending markup.
package template

import (
	"bytes"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/conneroisu/ngvet/internal/tsparse"
)

// Interpolation is one {{ expr }} occurrence in text or an attribute
// value.
type Interpolation struct {
	Expr    string
	Line    int
	Col     int
	OneTime bool
}

// Binding is one ng-* or data-ng-* attribute with its expression.
type Binding struct {
	Attr    string
	Expr    string
	Line    int
	Col     int
	OneTime bool
}

// ScanResult is the extraction result for one template file.
type ScanResult struct {
	Path           string
	Interpolations []Interpolation
	Bindings       []Binding
	Suppressions   []tsparse.Suppression
}

// Scan tokenizes a template and collects its bindings. Malformed
// markup never fails the scan; the tokenizer recovers and emits what
// it can.
func Scan(path string, content []byte) *ScanResult {
	result := &ScanResult{
		Path:         path,
		Suppressions: tsparse.ParseSuppressions(content),
	}

	lines := lineOffsets(content)
	tokenizer := html.NewTokenizer(bytes.NewReader(content))
	offset := 0

	for {
		token := tokenizer.Next()
		raw := tokenizer.Raw()
		start := offset
		offset += len(raw)

		switch token {
		case html.ErrorToken:
			return result
		case html.TextToken:
			result.Interpolations = append(result.Interpolations,
				scanInterpolations(raw, start, lines)...)
		case html.StartTagToken, html.SelfClosingTagToken:
			scanTag(tokenizer, raw, start, lines, result)
		}
	}
}

// scanTag walks a tag's attributes for ng-* bindings and embedded
// interpolations.
func scanTag(tokenizer *html.Tokenizer, raw []byte, start int, lines []int, result *ScanResult) {
	_, hasAttr := tokenizer.TagName()

	for more := hasAttr; more; {
		var key, val []byte
		key, val, more = tokenizer.TagAttr()

		// Locate the attribute inside the raw tag text for its
		// position; fall back to the tag start when escaping gets in
		// the way.
		pos := start
		if idx := bytes.Index(raw, key); idx >= 0 {
			pos = start + idx
		}
		line, col := position(lines, pos)

		name := string(key)
		if isBindingAttr(name) {
			expr := strings.TrimSpace(string(val))
			result.Bindings = append(result.Bindings, Binding{
				Attr:    name,
				Expr:    expr,
				Line:    line,
				Col:     col,
				OneTime: strings.HasPrefix(expr, "::"),
			})
		}

		if bytes.Contains(val, []byte("{{")) {
			base := pos
			if idx := bytes.Index(raw, val); idx >= 0 {
				base = start + idx
			}
			result.Interpolations = append(result.Interpolations,
				scanInterpolations(val, base, lines)...)
		}
	}
}

func isBindingAttr(name string) bool {
	return strings.HasPrefix(name, "ng-") || strings.HasPrefix(name, "data-ng-")
}

// scanInterpolations finds {{ expr }} spans in one text region. An
// unterminated {{ runs to the end of the region.
func scanInterpolations(text []byte, base int, lines []int) []Interpolation {
	var found []Interpolation

	for i := 0; i < len(text); {
		open := bytes.Index(text[i:], []byte("{{"))
		if open < 0 {
			break
		}
		open += i

		exprStart := open + 2
		exprEnd := len(text)
		if end := bytes.Index(text[exprStart:], []byte("}}")); end >= 0 {
			exprEnd = exprStart + end
			i = exprEnd + 2
		} else {
			i = len(text)
		}

		expr := strings.TrimSpace(string(text[exprStart:exprEnd]))
		line, col := position(lines, base+open)
		found = append(found, Interpolation{
			Expr:    expr,
			Line:    line,
			Col:     col,
			OneTime: strings.HasPrefix(expr, "::"),
		})
	}

	return found
}

// lineOffsets records the byte offset of each line start.
func lineOffsets(content []byte) []int {
	offsets := []int{0}
	for i, b := range content {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// position converts a byte offset into a 1-based line and column.
func position(lineStarts []int, offset int) (line, col int) {
	idx := sort.Search(len(lineStarts), func(i int) bool {
		return lineStarts[i] > offset
	}) - 1
	return idx + 1, offset - lineStarts[idx] + 1
}
