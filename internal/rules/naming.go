package rules

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/conneroisu/ngvet/internal/report"
	"github.com/conneroisu/ngvet/internal/types"
)

var kebabPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

func init() {
	Register(&FileNamingRule{})
	Register(&SpecLocationRule{})
	Register(&TemplateNamingRule{})
}

// FileNamingRule enforces the feature.type.ts naming convention.
type FileNamingRule struct{}

func (r *FileNamingRule) Meta() Meta {
	return Meta{
		ID:       "file-naming",
		Category: CategoryNaming,
		Default:  report.SeverityError,
		Summary:  "file names follow feature.type.ts with a kebab-case feature",
		Doc: `Source files are named feature.type.ts: a kebab-case feature name,
one or more recognized type suffixes, and the extension. Companion
templates follow the same shape with .html.

Recognized type suffixes: component, config, directive, filter, model,
module, pipe, routes, service, spec. Projects can extend the list via
options.file-naming.extra-types.

Good:

    hero-list.component.ts
    auth.service.ts
    user.component.spec.ts

Bad:

    HeroList.component.ts    feature is not kebab-case
    hero.ts                  missing type suffix
    hero.svc.ts              unrecognized type suffix
`,
	}
}

func (r *FileNamingRule) Check(ctx *Context) []report.Finding {
	file := ctx.File
	meta := r.Meta()
	base := path.Base(file.Rel)

	var findings []report.Finding

	if !kebabPattern.MatchString(file.Feature) {
		findings = append(findings, finding(meta, file, 0, 0,
			fmt.Sprintf("file name %q must start with a kebab-case feature name", base),
			"use lowercase words separated by dashes, e.g. hero-list.component.ts",
		))
	}

	switch file.Kind {
	case types.KindDeclaration:
		// .d.ts carries no type suffix chain.
	case types.KindTemplate:
		findings = append(findings, r.checkSuffixes(ctx, base, false)...)
	default:
		findings = append(findings, r.checkSuffixes(ctx, base, true)...)
	}

	return findings
}

func (r *FileNamingRule) checkSuffixes(ctx *Context, base string, required bool) []report.Finding {
	file := ctx.File
	meta := r.Meta()

	if len(file.Suffixes) == 0 {
		if !required {
			return nil
		}
		return []report.Finding{finding(meta, file, 0, 0,
			fmt.Sprintf("file name %q is missing a type suffix", base),
			fmt.Sprintf("rename to %s.<type>.ts, e.g. %s.component.ts", file.Feature, file.Feature),
		)}
	}

	var findings []report.Finding
	for _, suffix := range file.Suffixes {
		if types.RecognizedSuffix(suffix, ctx.Options.ExtraTypes) {
			continue
		}
		findings = append(findings, finding(meta, file, 0, 0,
			fmt.Sprintf("file name %q has unrecognized type suffix %q", base, suffix),
			fmt.Sprintf("use a recognized type suffix: %s", strings.Join(recognizedSuffixes(ctx.Options), ", ")),
		))
	}
	return findings
}

func recognizedSuffixes(opts Options) []string {
	suffixes := types.BuiltinTypeSuffixes()
	return append(suffixes, opts.ExtraTypes...)
}

// SpecLocationRule checks that unit specs sit next to their subject.
type SpecLocationRule struct{}

func (r *SpecLocationRule) Meta() Meta {
	return Meta{
		ID:       "spec-location",
		Category: CategoryNaming,
		Default:  report.SeverityWarning,
		Summary:  "spec files live beside the file they exercise",
		Doc: `Unit test specs are named after their subject with a .spec.ts suffix
and live in the same directory:

    src/app/heroes/hero.service.ts
    src/app/heroes/hero.service.spec.ts

A spec whose subject is missing usually means the spec was left behind
by a rename, or was placed in a parallel test tree.
`,
	}
}

func (r *SpecLocationRule) Check(ctx *Context) []report.Finding {
	file := ctx.File
	if file.Kind != types.KindSpec || ctx.Registry == nil {
		return nil
	}
	if !strings.HasSuffix(file.Rel, ".spec.ts") {
		return nil
	}

	subject := strings.TrimSuffix(file.Rel, ".spec.ts") + ".ts"
	if _, ok := ctx.Registry.Get(subject); ok {
		return nil
	}

	meta := r.Meta()
	return []report.Finding{finding(meta, file, 0, 0,
		fmt.Sprintf("spec has no sibling subject file %q", path.Base(subject)),
		"keep unit specs next to the file they exercise",
	)}
}

// TemplateNamingRule checks that a component's templateUrl references
// the conventional companion name.
type TemplateNamingRule struct{}

func (r *TemplateNamingRule) Meta() Meta {
	return Meta{
		ID:       "template-naming",
		Category: CategoryTemplate,
		Default:  report.SeverityWarning,
		Summary:  "component templates are named feature.component.html",
		Doc: `A component's external template is named after the component file:

    hero-list.component.ts
    hero-list.component.html

The templateUrl in the Component decorator must reference that name.
Inline templates are not checked.
`,
		NeedsParse: true,
	}
}

func (r *TemplateNamingRule) Check(ctx *Context) []report.Finding {
	file := ctx.File
	if file.Kind != types.KindComponent || ctx.Analysis == nil {
		return nil
	}

	meta := r.Meta()
	expected := file.Feature + ".component.html"

	var findings []report.Finding
	for i := range ctx.Analysis.Classes {
		cls := &ctx.Analysis.Classes[i]
		dec := cls.Decorator("Component")
		if dec == nil {
			continue
		}
		url, ok := dec.Args["templateUrl"]
		if !ok || path.Base(url) == expected {
			continue
		}
		findings = append(findings, finding(meta, file, dec.Line, 0,
			fmt.Sprintf("templateUrl %q should reference %q", url, expected),
			fmt.Sprintf("name the companion template %s", expected),
		))
	}
	return findings
}
