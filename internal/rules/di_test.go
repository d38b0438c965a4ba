package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/ngvet/internal/report"
	"github.com/conneroisu/ngvet/internal/tsparse"
)

// serviceAnalysis builds an analysis with a single decorated service
// class around the given constructor.
func serviceAnalysis(ctor *tsparse.Constructor) *tsparse.Analysis {
	return &tsparse.Analysis{
		Classes: []tsparse.Class{{
			Name:       "HeroService",
			Exported:   true,
			Decorators: []tsparse.Decorator{{Name: "Injectable", Line: 1}},
			Ctor:       ctor,
		}},
	}
}

func TestDIParameterType(t *testing.T) {
	rule := &DIParameterTypeRule{}

	t.Run("typed parameters", func(t *testing.T) {
		ctx := fileContext("src/app/hero.service.ts")
		ctx.Analysis = serviceAnalysis(&tsparse.Constructor{Params: []tsparse.Param{
			{Name: "http", Type: "HttpClient", Visibility: tsparse.VisibilityPrivate, Line: 5, Column: 15},
		}})
		assert.Empty(t, rule.Check(ctx))
	})

	t.Run("untyped parameter", func(t *testing.T) {
		ctx := fileContext("src/app/hero.service.ts")
		ctx.Analysis = serviceAnalysis(&tsparse.Constructor{Params: []tsparse.Param{
			{Name: "http", Visibility: tsparse.VisibilityPrivate, Line: 5, Column: 15},
		}})

		findings := rule.Check(ctx)
		require.Len(t, findings, 1)
		assert.Equal(t, "di-parameter-type", findings[0].Rule)
		assert.Equal(t, report.SeverityError, findings[0].Severity)
		assert.Equal(t, 5, findings[0].Line)
		assert.Equal(t, 15, findings[0].Column)
		assert.Contains(t, findings[0].Message, "no type annotation")
	})

	t.Run("any typed parameter", func(t *testing.T) {
		ctx := fileContext("src/app/hero.service.ts")
		ctx.Analysis = serviceAnalysis(&tsparse.Constructor{Params: []tsparse.Param{
			{Name: "http", Type: "any", Visibility: tsparse.VisibilityPrivate, Line: 5},
		}})

		findings := rule.Check(ctx)
		require.Len(t, findings, 1)
		assert.Contains(t, findings[0].Message, "typed any")
	})

	t.Run("plain data class ignored", func(t *testing.T) {
		ctx := fileContext("src/app/hero.model.ts")
		ctx.Analysis = &tsparse.Analysis{
			Classes: []tsparse.Class{{
				Name:     "Hero",
				Exported: true,
				Ctor: &tsparse.Constructor{Params: []tsparse.Param{
					{Name: "id"}, {Name: "name"},
				}},
			}},
		}
		assert.Empty(t, rule.Check(ctx))
	})
}

func TestDIParameterVisibility(t *testing.T) {
	rule := &DIParameterVisibilityRule{}

	t.Run("modifier present", func(t *testing.T) {
		ctx := fileContext("src/app/hero.service.ts")
		ctx.Analysis = serviceAnalysis(&tsparse.Constructor{Params: []tsparse.Param{
			{Name: "http", Type: "HttpClient", Visibility: tsparse.VisibilityPrivate},
			{Name: "router", Type: "Router", Visibility: tsparse.VisibilityPublic},
		}})
		assert.Empty(t, rule.Check(ctx))
	})

	t.Run("modifier missing", func(t *testing.T) {
		ctx := fileContext("src/app/hero.service.ts")
		ctx.Analysis = serviceAnalysis(&tsparse.Constructor{Params: []tsparse.Param{
			{Name: "http", Type: "HttpClient", Line: 5, Column: 15},
		}})

		findings := rule.Check(ctx)
		require.Len(t, findings, 1)
		assert.Equal(t, "di-parameter-visibility", findings[0].Rule)
		assert.Contains(t, findings[0].Message, "no accessibility modifier")
	})
}

func TestDIParameterOrder(t *testing.T) {
	rule := &DIParameterOrderRule{}

	t.Run("public before private", func(t *testing.T) {
		ctx := fileContext("src/app/hero.component.ts")
		ctx.Analysis = serviceAnalysis(&tsparse.Constructor{Params: []tsparse.Param{
			{Name: "route", Type: "ActivatedRoute", Visibility: tsparse.VisibilityPublic},
			{Name: "heroes", Type: "HeroService", Visibility: tsparse.VisibilityPrivate},
		}})
		assert.Empty(t, rule.Check(ctx))
	})

	t.Run("public after private", func(t *testing.T) {
		ctx := fileContext("src/app/hero.component.ts")
		ctx.Analysis = serviceAnalysis(&tsparse.Constructor{Params: []tsparse.Param{
			{Name: "heroes", Type: "HeroService", Visibility: tsparse.VisibilityPrivate, Line: 6},
			{Name: "route", Type: "ActivatedRoute", Visibility: tsparse.VisibilityPublic, Line: 7, Column: 5},
		}})

		findings := rule.Check(ctx)
		require.Len(t, findings, 1)
		assert.Equal(t, "di-parameter-order", findings[0].Rule)
		assert.Equal(t, report.SeverityWarning, findings[0].Severity)
		assert.Equal(t, 7, findings[0].Line)
		assert.Contains(t, findings[0].Message, "route")
	})

	t.Run("unannotated counts as public", func(t *testing.T) {
		ctx := fileContext("src/app/hero.component.ts")
		ctx.Analysis = serviceAnalysis(&tsparse.Constructor{Params: []tsparse.Param{
			{Name: "heroes", Type: "HeroService", Visibility: tsparse.VisibilityPrivate, Line: 6},
			{Name: "route", Type: "ActivatedRoute", Line: 6},
		}})

		findings := rule.Check(ctx)
		require.Len(t, findings, 1)
		assert.Contains(t, findings[0].Message, "route")
	})
}

func TestInjectAlignment(t *testing.T) {
	rule := &InjectAlignmentRule{}

	controller := func(inject []string, injectLine int, params ...string) *tsparse.Analysis {
		ctor := &tsparse.Constructor{Line: 4}
		for _, name := range params {
			ctor.Params = append(ctor.Params, tsparse.Param{Name: name})
		}
		return &tsparse.Analysis{
			Classes: []tsparse.Class{{
				Name:       "HeroController",
				Exported:   true,
				Inject:     inject,
				InjectLine: injectLine,
				Ctor:       ctor,
			}},
		}
	}

	t.Run("aligned", func(t *testing.T) {
		ctx := fileContext("src/app/legacy/hero.controller.ts")
		ctx.Analysis = controller([]string{"$http", "$log"}, 2, "$http", "$log")
		assert.Empty(t, rule.Check(ctx))
	})

	t.Run("count mismatch", func(t *testing.T) {
		ctx := fileContext("src/app/legacy/hero.controller.ts")
		ctx.Analysis = controller([]string{"$http"}, 2, "$http", "$log")

		findings := rule.Check(ctx)
		require.Len(t, findings, 1)
		assert.Equal(t, "inject-alignment", findings[0].Rule)
		assert.Equal(t, 2, findings[0].Line)
		assert.Contains(t, findings[0].Message, "1 names")
		assert.Contains(t, findings[0].Message, "2 parameters")
	})

	t.Run("order mismatch", func(t *testing.T) {
		ctx := fileContext("src/app/legacy/hero.controller.ts")
		ctx.Analysis = controller([]string{"$log", "$http"}, 2, "$http", "$log")

		findings := rule.Check(ctx)
		require.Len(t, findings, 2)
		assert.Contains(t, findings[0].Message, `$inject entry 1`)
	})

	t.Run("inject without constructor", func(t *testing.T) {
		ctx := fileContext("src/app/legacy/hero.controller.ts")
		ctx.Analysis = &tsparse.Analysis{
			Classes: []tsparse.Class{{
				Name:       "HeroController",
				Exported:   true,
				Inject:     []string{"$http"},
				InjectLine: 2,
			}},
		}

		findings := rule.Check(ctx)
		require.Len(t, findings, 1)
		assert.Contains(t, findings[0].Message, "0 parameters")
	})

	t.Run("empty inject with no params", func(t *testing.T) {
		ctx := fileContext("src/app/legacy/hero.controller.ts")
		ctx.Analysis = controller(nil, 2)
		assert.Empty(t, rule.Check(ctx))
	})

	t.Run("no annotation ignored", func(t *testing.T) {
		ctx := fileContext("src/app/hero.service.ts")
		ctx.Analysis = serviceAnalysis(&tsparse.Constructor{Params: []tsparse.Param{
			{Name: "http", Type: "HttpClient", Visibility: tsparse.VisibilityPrivate},
		}})
		assert.Empty(t, rule.Check(ctx))
	})
}
