package rules

import (
	"fmt"
	"strings"

	"github.com/conneroisu/ngvet/internal/report"
	"github.com/conneroisu/ngvet/internal/types"
)

func init() {
	Register(&OneTimeBindingRule{})
}

// OneTimeBindingRule flags misused :: one-time binding markers in
// templates.
type OneTimeBindingRule struct{}

func (r *OneTimeBindingRule) Meta() Meta {
	return Meta{
		ID:       "one-time-binding",
		Category: CategoryTemplate,
		Default:  report.SeverityWarning,
		Summary:  ":: one-time markers are well-formed and not on two-way bindings",
		Doc: `The :: marker makes a binding one-time: it is evaluated until stable
and then unwatched. Misplaced markers silently bind nothing or bind
twice:

    {{::vm.title}}              good
    {{vm.count + ::vm.total}}   :: must start the expression
    {{::::vm.title}}            doubled marker
    ng-model="::vm.name"        two-way binding cannot be one-time
`,
	}
}

func (r *OneTimeBindingRule) Check(ctx *Context) []report.Finding {
	if ctx.Template == nil {
		return nil
	}

	meta := r.Meta()
	var findings []report.Finding

	for _, interp := range ctx.Template.Interpolations {
		findings = append(findings, checkOneTimeExpr(meta, ctx.File, interp.Expr, interp.Line, interp.Col)...)
	}

	for _, binding := range ctx.Template.Bindings {
		findings = append(findings, checkOneTimeExpr(meta, ctx.File, binding.Expr, binding.Line, binding.Col)...)
		if isModelAttr(binding.Attr) && strings.HasPrefix(binding.Expr, "::") {
			findings = append(findings, finding(meta, ctx.File, binding.Line, binding.Col,
				fmt.Sprintf("%s is a two-way binding and cannot be one-time bound", binding.Attr),
				"drop the :: marker; ng-model must stay watchable",
			))
		}
	}
	return findings
}

func isModelAttr(attr string) bool {
	return attr == "ng-model" || attr == "data-ng-model"
}

// checkOneTimeExpr validates the shape of a :: marker within one
// expression.
func checkOneTimeExpr(meta Meta, file *types.SourceFile, expr string, line, col int) []report.Finding {
	if !strings.Contains(expr, "::") {
		return nil
	}

	if strings.HasPrefix(expr, "::::") {
		return []report.Finding{finding(meta, file, line, col,
			fmt.Sprintf("doubled one-time marker in %q", expr),
			"write a single :: at the start of the expression",
		)}
	}

	if strings.LastIndex(expr, "::") > 0 {
		return []report.Finding{finding(meta, file, line, col,
			fmt.Sprintf("one-time marker must start the expression in %q", expr),
			"move :: to the front of the expression",
		)}
	}
	return nil
}
