package rules

import (
	"fmt"
	"path"

	"github.com/conneroisu/ngvet/internal/report"
	"github.com/conneroisu/ngvet/internal/tsparse"
	"github.com/conneroisu/ngvet/internal/types"
)

func init() {
	Register(&SingleComponentRule{})
	Register(&ClassSuffixRule{})
	Register(&MemberOrderRule{})
}

// SingleComponentRule enforces one exported class per file.
type SingleComponentRule struct{}

func (r *SingleComponentRule) Meta() Meta {
	return Meta{
		ID:       "single-component",
		Category: CategoryStructure,
		Default:  report.SeverityError,
		Summary:  "one exported class per file",
		Doc: `Each file exports at most one class. A file exporting several
components or services is harder to name, review and test, and its
pieces cannot be found by the feature.type.ts convention.

Split every additional exported class into its own file.
`,
		NeedsParse: true,
	}
}

func (r *SingleComponentRule) Check(ctx *Context) []report.Finding {
	if ctx.Analysis == nil {
		return nil
	}

	exported := ctx.Analysis.ExportedClasses()
	if len(exported) <= 1 {
		return nil
	}

	meta := r.Meta()
	var findings []report.Finding
	for _, cls := range exported[1:] {
		findings = append(findings, finding(meta, ctx.File, cls.Line, cls.Column,
			fmt.Sprintf("file exports %d classes; %q should move to its own file", len(exported), cls.Name),
			"extract each class into its own feature.type.ts file",
		))
	}
	return findings
}

// suffixKinds are the file kinds whose primary class carries the type
// suffix in its name.
var suffixKinds = map[types.SourceKind]bool{
	types.KindComponent: true,
	types.KindService:   true,
	types.KindModule:    true,
	types.KindDirective: true,
	types.KindPipe:      true,
	types.KindFilter:    true,
}

// ClassSuffixRule checks that the exported class name matches the file
// name: hero-list.component.ts exports HeroListComponent.
type ClassSuffixRule struct{}

func (r *ClassSuffixRule) Meta() Meta {
	return Meta{
		ID:       "class-suffix",
		Category: CategoryStructure,
		Default:  report.SeverityError,
		Summary:  "class names are PascalCase feature plus type suffix",
		Doc: `The exported class of a component, service, module, directive, pipe
or filter file is named after the file: the PascalCase feature name
followed by the PascalCase type suffix.

    hero-list.component.ts   exports HeroListComponent
    auth.service.ts          exports AuthService
    app.module.ts            exports AppModule

Model, config and routes files are exempt; their exports carry domain
names.
`,
		NeedsParse: true,
	}
}

func (r *ClassSuffixRule) Check(ctx *Context) []report.Finding {
	file := ctx.File
	if ctx.Analysis == nil || !suffixKinds[file.Kind] {
		return nil
	}

	exported := ctx.Analysis.ExportedClasses()
	if len(exported) == 0 {
		return nil
	}

	expected := PascalCase(file.Feature) + PascalCase(string(file.Kind))
	for _, cls := range exported {
		if cls.Name == expected {
			return nil
		}
	}

	meta := r.Meta()
	cls := exported[0]
	return []report.Finding{finding(meta, file, cls.Line, cls.Column,
		fmt.Sprintf("class %q should be named %q to match %s", cls.Name, expected, path.Base(file.Rel)),
		fmt.Sprintf("rename the class to %s", expected),
	)}
}

// MemberOrderRule checks that public members come before private ones.
type MemberOrderRule struct{}

func (r *MemberOrderRule) Meta() Meta {
	return Meta{
		ID:       "member-order",
		Category: CategoryStructure,
		Default:  report.SeverityWarning,
		Summary:  "public class members precede private members",
		Doc: `Within a class, members that form the public surface come first;
private and protected implementation details follow. Readers meet the
API before the internals.

Members without an accessibility modifier count as public.
`,
		NeedsParse: true,
	}
}

func (r *MemberOrderRule) Check(ctx *Context) []report.Finding {
	if ctx.Analysis == nil {
		return nil
	}

	meta := r.Meta()
	var findings []report.Finding

	for i := range ctx.Analysis.Classes {
		cls := &ctx.Analysis.Classes[i]
		seenPrivate := false
		for _, member := range cls.Members {
			if member.Visibility == tsparse.VisibilityPrivate || member.Visibility == tsparse.VisibilityProtected {
				seenPrivate = true
				continue
			}
			if seenPrivate {
				findings = append(findings, finding(meta, ctx.File, member.Line, 0,
					fmt.Sprintf("public member %q is declared after private members of %q", member.Name, cls.Name),
					"group public members before private ones",
				))
			}
		}
	}
	return findings
}
