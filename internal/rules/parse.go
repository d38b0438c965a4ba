package rules

import (
	"github.com/conneroisu/ngvet/internal/report"
)

func init() {
	Register(&ParseErrorRule{})
}

// ParseErrorRule reports files whose syntax could not be fully parsed.
// The engine skips parse-dependent rules for such files and counts
// them as skipped in the report.
type ParseErrorRule struct{}

func (r *ParseErrorRule) Meta() Meta {
	return Meta{
		ID:       "parse-error",
		Category: CategoryParse,
		Default:  report.SeverityInfo,
		Summary:  "file has syntax errors and was only partially checked",
		Doc: `The file could not be fully parsed. Naming checks still ran, but
rules that inspect classes and constructors were skipped because the
syntax tree is incomplete.

Fix the syntax errors and re-run. Set this rule to off to hide the
notices.
`,
	}
}

func (r *ParseErrorRule) Check(ctx *Context) []report.Finding {
	if ctx.Analysis == nil || !ctx.Analysis.HasError {
		return nil
	}

	meta := r.Meta()
	return []report.Finding{finding(meta, ctx.File, 0, 0,
		"file has syntax errors; class and constructor checks were skipped",
		"fix the syntax errors and re-run",
	)}
}
