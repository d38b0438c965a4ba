// Package mdcheck validates intra-document links in Markdown files.
//
// Headings are collected and turned into GitHub-style anchors, then
// every fragment link is resolved against them. Links into sibling
// Markdown files are followed and resolved against the target's
// anchors. External URLs are ignored. Fragment matching is exact:
// GitHub anchors are lowercase, so a mixed-case fragment that only
// matches case-insensitively is still a broken link.
package mdcheck

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/conneroisu/ngvet/internal/errors"
	"github.com/conneroisu/ngvet/internal/report"
)

// Rule identifiers for documentation problems.
const (
	RuleUnresolvedLink   = "docs-unresolved-link"
	RuleDuplicateHeading = "docs-duplicate-heading"
	RuleMissingFile      = "docs-missing-file"
)

// Heading is one Markdown heading with its derived anchor.
type Heading struct {
	Level  int
	Title  string
	Anchor string
	Line   int
}

// Problem is a single documentation defect.
type Problem struct {
	Rule     string
	Severity report.Severity
	File     string
	Line     int
	Message  string
}

// Result holds everything collected from one document.
type Result struct {
	File     string
	Headings []Heading
	Problems []Problem
}

// Findings converts the problems into report findings so docs runs
// share the formatters and exit semantics of lint runs.
func (r *Result) Findings() []report.Finding {
	findings := make([]report.Finding, 0, len(r.Problems))
	for _, p := range r.Problems {
		findings = append(findings, report.Finding{
			Rule:     p.Rule,
			Severity: p.Severity,
			File:     p.File,
			Line:     p.Line,
			Message:  p.Message,
		})
	}
	return findings
}

// linkRef is a collected link destination awaiting resolution.
type linkRef struct {
	destination string
	line        int
}

// docInfo is the parse result for one file: anchors, headings, links,
// and the problems detectable without resolving links.
type docInfo struct {
	display  string
	anchors  map[string]bool
	headings []Heading
	links    []linkRef
	problems []Problem
	readErr  error
}

// Checker resolves links across one or more Markdown files, parsing
// each file at most once.
type Checker struct {
	infos map[string]*docInfo
}

// NewChecker creates a checker with an empty parse cache.
func NewChecker() *Checker {
	return &Checker{infos: make(map[string]*docInfo)}
}

// CheckFile parses the document and resolves every internal link.
func (c *Checker) CheckFile(path string) (*Result, error) {
	info, err := c.info(path)
	if err != nil {
		return nil, err
	}

	result := &Result{
		File:     info.display,
		Headings: info.headings,
	}
	result.Problems = append(result.Problems, info.problems...)

	for _, link := range info.links {
		if problem := c.resolve(info, link); problem != nil {
			result.Problems = append(result.Problems, *problem)
		}
	}

	sort.SliceStable(result.Problems, func(i, j int) bool {
		return result.Problems[i].Line < result.Problems[j].Line
	})

	return result, nil
}

// resolve checks one link destination and returns a problem when it
// does not land on an anchor.
func (c *Checker) resolve(info *docInfo, link linkRef) *Problem {
	dest := link.destination

	if isExternal(dest) {
		return nil
	}

	if strings.HasPrefix(dest, "#") {
		fragment := normalizeFragment(dest[1:])
		if fragment == "" || info.anchors[fragment] {
			return nil
		}
		return &Problem{
			Rule:     RuleUnresolvedLink,
			Severity: report.SeverityError,
			File:     info.display,
			Line:     link.line,
			Message:  fmt.Sprintf("link %q resolves to no heading anchor", dest),
		}
	}

	target, fragment := splitFragment(dest)
	if !strings.HasSuffix(strings.ToLower(target), ".md") {
		return nil
	}

	targetPath := filepath.Join(filepath.Dir(info.display), filepath.FromSlash(target))
	targetInfo, err := c.info(targetPath)
	if err != nil {
		return &Problem{
			Rule:     RuleMissingFile,
			Severity: report.SeverityError,
			File:     info.display,
			Line:     link.line,
			Message:  fmt.Sprintf("link target %q does not exist", target),
		}
	}

	fragment = normalizeFragment(fragment)
	if fragment == "" || targetInfo.anchors[fragment] {
		return nil
	}
	return &Problem{
		Rule:     RuleUnresolvedLink,
		Severity: report.SeverityError,
		File:     info.display,
		Line:     link.line,
		Message:  fmt.Sprintf("link %q resolves to no heading anchor in %s", dest, target),
	}
}

// info parses a file once and caches the outcome, keyed by absolute
// path so the same document reached through different links is shared.
func (c *Checker) info(path string) (*docInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	if cached, ok := c.infos[abs]; ok {
		return cached, cached.readErr
	}

	content, err := os.ReadFile(path)
	if err != nil {
		failed := &docInfo{
			display: path,
			readErr: errors.WrapIO(err, errors.ErrCodeFileNotFound, "read markdown file"),
		}
		c.infos[abs] = failed
		return failed, failed.readErr
	}

	info := parse(path, content)
	c.infos[abs] = info
	return info, nil
}

var htmlAnchorPattern = regexp.MustCompile(`(?i)<a\s+(?:[^>]*\s)?(?:name|id)\s*=\s*["']?([^"'\s>]+)`)

// parse walks the Markdown AST collecting headings, anchors and links.
func parse(path string, content []byte) *docInfo {
	info := &docInfo{
		display: path,
		anchors: make(map[string]bool),
	}

	offsets := lineOffsets(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(content))

	seen := make(map[string]int)
	firstLine := make(map[string]int)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			title := nodeText(node, content)
			line := blockLine(node, offsets)
			base := anchorFor(title)

			anchor := base
			if n := seen[base]; n > 0 {
				anchor = fmt.Sprintf("%s-%d", base, n)
				info.problems = append(info.problems, Problem{
					Rule:     RuleDuplicateHeading,
					Severity: report.SeverityWarning,
					File:     path,
					Line:     line,
					Message: fmt.Sprintf("heading %q repeats the heading on line %d; its anchor becomes %q",
						title, firstLine[base], anchor),
				})
			} else {
				firstLine[base] = line
			}
			seen[base]++

			info.anchors[anchor] = true
			info.headings = append(info.headings, Heading{
				Level:  node.Level,
				Title:  title,
				Anchor: anchor,
				Line:   line,
			})

		case *ast.Link:
			info.links = append(info.links, linkRef{
				destination: string(node.Destination),
				line:        inlineLine(node, offsets),
			})

		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				segment := node.Segments.At(i)
				collectHTMLAnchors(info, segment.Value(content))
			}

		case *ast.HTMLBlock:
			for i := 0; i < node.Lines().Len(); i++ {
				segment := node.Lines().At(i)
				collectHTMLAnchors(info, segment.Value(content))
			}
		}

		return ast.WalkContinue, nil
	})

	return info
}

// collectHTMLAnchors picks up <a name=...> and <a id=...> anchors.
func collectHTMLAnchors(info *docInfo, html []byte) {
	for _, match := range htmlAnchorPattern.FindAllSubmatch(html, -1) {
		info.anchors[string(match[1])] = true
	}
}

// anchorFor derives the GitHub anchor for a heading title: lowercase,
// spaces become hyphens, punctuation other than hyphens and
// underscores is dropped.
func anchorFor(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return b.String()
}

// normalizeFragment decodes percent escapes so encoded fragments match
// their anchors.
func normalizeFragment(fragment string) string {
	if decoded, err := url.PathUnescape(fragment); err == nil {
		return decoded
	}
	return fragment
}

// splitFragment separates a destination into path and fragment.
func splitFragment(dest string) (string, string) {
	if idx := strings.Index(dest, "#"); idx >= 0 {
		return dest[:idx], dest[idx+1:]
	}
	return dest, ""
}

// isExternal reports whether a destination leaves the documentation
// tree.
func isExternal(dest string) bool {
	return strings.Contains(dest, "://") ||
		strings.HasPrefix(dest, "mailto:") ||
		strings.HasPrefix(dest, "//")
}

// nodeText flattens the text content of a node.
func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := child.(*ast.Text); ok {
				b.Write(t.Segment.Value(content))
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// blockLine returns the 1-based line of a block node.
func blockLine(n ast.Node, offsets []int) int {
	if n.Lines().Len() > 0 {
		return lineAt(n.Lines().At(0).Start, offsets)
	}
	return 1
}

// inlineLine returns the 1-based line of an inline node, preferring
// the node's own text position over its enclosing block.
func inlineLine(n ast.Node, offsets []int) int {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			return lineAt(t.Segment.Start, offsets)
		}
	}
	for parent := n; parent != nil; parent = parent.Parent() {
		if parent.Type() == ast.TypeBlock && parent.Lines().Len() > 0 {
			return lineAt(parent.Lines().At(0).Start, offsets)
		}
	}
	return 1
}

// lineOffsets returns the byte offset of each line start.
func lineOffsets(content []byte) []int {
	offsets := []int{0}
	for i, b := range content {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// lineAt converts a byte offset to a 1-based line number.
func lineAt(offset int, offsets []int) int {
	idx := sort.Search(len(offsets), func(i int) bool {
		return offsets[i] > offset
	})
	return idx
}
