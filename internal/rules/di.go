package rules

import (
	"fmt"

	"github.com/conneroisu/ngvet/internal/report"
	"github.com/conneroisu/ngvet/internal/tsparse"
	"github.com/conneroisu/ngvet/internal/types"
)

func init() {
	Register(&DIParameterTypeRule{})
	Register(&DIParameterVisibilityRule{})
	Register(&DIParameterOrderRule{})
	Register(&InjectAlignmentRule{})
}

// injectable reports whether a class participates in dependency
// injection: it is decorated, carries a $inject annotation, or is the
// exported class of a DI-instantiated file kind. Plain data classes
// stay out of the DI rules.
func injectable(cls *tsparse.Class, kind types.SourceKind) bool {
	if len(cls.Decorators) > 0 || cls.HasInject() {
		return true
	}
	if !cls.Exported {
		return false
	}
	switch kind {
	case types.KindComponent, types.KindService, types.KindDirective, types.KindPipe, types.KindFilter:
		return true
	}
	return false
}

// diClasses yields the classes the DI rules apply to.
func diClasses(ctx *Context) []*tsparse.Class {
	if ctx.Analysis == nil {
		return nil
	}
	var classes []*tsparse.Class
	for i := range ctx.Analysis.Classes {
		cls := &ctx.Analysis.Classes[i]
		if injectable(cls, ctx.File.Kind) {
			classes = append(classes, cls)
		}
	}
	return classes
}

// DIParameterTypeRule requires typed constructor parameters.
type DIParameterTypeRule struct{}

func (r *DIParameterTypeRule) Meta() Meta {
	return Meta{
		ID:       "di-parameter-type",
		Category: CategoryDI,
		Default:  report.SeverityError,
		Summary:  "injected constructor parameters declare a concrete type",
		Doc: `Constructor parameters of injectable classes declare the type of the
dependency they receive. Untyped and any-typed parameters defeat the
injector's compile-time checking and hide the class's real
dependencies.

    constructor(private heroService: HeroService) {}   good
    constructor(private heroService) {}                missing type
    constructor(private heroService: any) {}           any
`,
		NeedsParse: true,
	}
}

func (r *DIParameterTypeRule) Check(ctx *Context) []report.Finding {
	meta := r.Meta()
	var findings []report.Finding

	for _, cls := range diClasses(ctx) {
		if cls.Ctor == nil {
			continue
		}
		for _, param := range cls.Ctor.Params {
			switch param.Type {
			case "":
				findings = append(findings, finding(meta, ctx.File, param.Line, param.Column,
					fmt.Sprintf("constructor parameter %q has no type annotation", param.Name),
					"annotate injected parameters with their dependency type",
				))
			case "any":
				findings = append(findings, finding(meta, ctx.File, param.Line, param.Column,
					fmt.Sprintf("constructor parameter %q is typed any", param.Name),
					"use the concrete dependency type instead of any",
				))
			}
		}
	}
	return findings
}

// DIParameterVisibilityRule requires an explicit accessibility
// modifier on injected constructor parameters.
type DIParameterVisibilityRule struct{}

func (r *DIParameterVisibilityRule) Meta() Meta {
	return Meta{
		ID:       "di-parameter-visibility",
		Category: CategoryDI,
		Default:  report.SeverityError,
		Summary:  "injected constructor parameters declare their visibility",
		Doc: `Constructor parameters of injectable classes carry an explicit
accessibility modifier, turning them into class properties with a
deliberate visibility:

    constructor(private heroService: HeroService) {}   good
    constructor(heroService: HeroService) {}           missing modifier

Prefer private readonly unless the template or other collaborators
need wider access.
`,
		NeedsParse: true,
	}
}

func (r *DIParameterVisibilityRule) Check(ctx *Context) []report.Finding {
	meta := r.Meta()
	var findings []report.Finding

	for _, cls := range diClasses(ctx) {
		if cls.Ctor == nil {
			continue
		}
		for _, param := range cls.Ctor.Params {
			if param.Visibility != tsparse.VisibilityNone {
				continue
			}
			findings = append(findings, finding(meta, ctx.File, param.Line, param.Column,
				fmt.Sprintf("constructor parameter %q has no accessibility modifier", param.Name),
				"declare injected parameters private readonly unless wider access is required",
			))
		}
	}
	return findings
}

// DIParameterOrderRule checks that public parameters come before
// private and protected ones.
type DIParameterOrderRule struct{}

func (r *DIParameterOrderRule) Meta() Meta {
	return Meta{
		ID:       "di-parameter-order",
		Category: CategoryDI,
		Default:  report.SeverityWarning,
		Summary:  "public constructor parameters precede private ones",
		Doc: `Constructor parameters are ordered by visibility: public parameters
first, then private and protected. The injected surface a collaborator
may touch reads before the internals.

    constructor(public route: ActivatedRoute, private heroes: HeroService) {}   good
    constructor(private heroes: HeroService, public route: ActivatedRoute) {}   reversed

Parameters without a modifier count as public.
`,
		NeedsParse: true,
	}
}

func (r *DIParameterOrderRule) Check(ctx *Context) []report.Finding {
	meta := r.Meta()
	var findings []report.Finding

	for _, cls := range diClasses(ctx) {
		if cls.Ctor == nil {
			continue
		}
		seenPrivate := false
		for _, param := range cls.Ctor.Params {
			if param.Visibility == tsparse.VisibilityPrivate || param.Visibility == tsparse.VisibilityProtected {
				seenPrivate = true
				continue
			}
			if seenPrivate {
				findings = append(findings, finding(meta, ctx.File, param.Line, param.Column,
					fmt.Sprintf("public parameter %q appears after private parameters", param.Name),
					"order constructor parameters public first, then private",
				))
			}
		}
	}
	return findings
}

// InjectAlignmentRule checks $inject annotations against the
// constructor signature.
type InjectAlignmentRule struct{}

func (r *InjectAlignmentRule) Meta() Meta {
	return Meta{
		ID:       "inject-alignment",
		Category: CategoryDI,
		Default:  report.SeverityError,
		Summary:  "$inject entries match constructor parameters in count and order",
		Doc: `Classes using $inject annotations keep the annotation aligned with
the constructor: same number of entries, same order, same names. A
drifted $inject array injects the wrong dependencies at runtime,
typically after a parameter was added or reordered.

    static $inject = ['$http', '$log'];
    constructor($http, $log) {}
`,
		NeedsParse: true,
	}
}

func (r *InjectAlignmentRule) Check(ctx *Context) []report.Finding {
	if ctx.Analysis == nil {
		return nil
	}

	meta := r.Meta()
	var findings []report.Finding

	for i := range ctx.Analysis.Classes {
		cls := &ctx.Analysis.Classes[i]
		if !cls.HasInject() {
			continue
		}

		var params []tsparse.Param
		if cls.Ctor != nil {
			params = cls.Ctor.Params
		}

		if len(cls.Inject) != len(params) {
			findings = append(findings, finding(meta, ctx.File, cls.InjectLine, 0,
				fmt.Sprintf("$inject lists %d names but the constructor declares %d parameters", len(cls.Inject), len(params)),
				"keep $inject entries aligned with the constructor parameters",
			))
			continue
		}

		for idx, name := range cls.Inject {
			if params[idx].Name == name {
				continue
			}
			findings = append(findings, finding(meta, ctx.File, cls.InjectLine, 0,
				fmt.Sprintf("$inject entry %d is %q but constructor parameter %d is %q", idx+1, name, idx+1, params[idx].Name),
				"keep $inject entries in constructor parameter order",
			))
		}
	}
	return findings
}
