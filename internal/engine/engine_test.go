package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/ngvet/internal/logging"
	"github.com/conneroisu/ngvet/internal/registry"
	"github.com/conneroisu/ngvet/internal/report"
	"github.com/conneroisu/ngvet/internal/walker"
)

var fixture = map[string]string{
	"src/app/heroes/hero-list.component.ts": `import { Component } from '@angular/core';
import { HeroService } from './hero.service';

@Component({
  selector: 'app-hero-list',
  templateUrl: './hero-list.component.html',
})
export class HeroListComponent {
  heroes = [];

  constructor(private readonly heroService: HeroService) {}
}
`,
	"src/app/heroes/hero-list.component.html": `<ul>
  <li ng-repeat="hero in vm.heroes">{{vm.count + ::vm.total}}</li>
</ul>
`,
	"src/app/heroes/hero.service.ts": `import { Injectable } from '@angular/core';

@Injectable()
export class HeroService {
  constructor(http) {}
}
`,
	"src/app/audit.service.ts": `import { Injectable } from '@angular/core';

@Injectable()
export class AuditService {
  // ngvet-disable-next-line di-parameter-type, di-parameter-visibility
  constructor(sink) {}
}
`,
	"src/app/Bad_Name.ts": `export const flag = true;
`,
	"src/app/orphan.component.spec.ts": `describe('orphan component', () => {});
`,
	"src/app/broken.component.ts": `export class BrokenComponent {
  constructor(private svc: HeroService {}
}
`,
}

func testLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LevelError,
		Format: "text",
		Output: io.Discard,
	})
}

// buildTree writes the fixture files and walks them into a registry.
func buildTree(t *testing.T) (string, *registry.SourceRegistry) {
	t.Helper()

	root := t.TempDir()
	for rel, content := range fixture {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	reg := registry.NewSourceRegistry()
	w := walker.NewSourceWalker(reg, walker.Options{})
	defer w.Close()

	stats, err := w.WalkRoot(root)
	require.NoError(t, err)
	require.Equal(t, len(fixture), stats.Found)

	return root, reg
}

func findingsFor(rep *report.Report, rel string) []report.Finding {
	var out []report.Finding
	for _, f := range rep.Findings {
		if f.File == rel {
			out = append(out, f)
		}
	}
	return out
}

func TestEngineRun(t *testing.T) {
	root, reg := buildTree(t)

	eng, err := New(reg, testLogger(), Config{})
	require.NoError(t, err)

	rep, err := eng.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 6, rep.Files)
	assert.Equal(t, 1, rep.Skipped, "file with syntax errors counts as skipped")
	assert.Len(t, rep.Findings, 7)

	// Untyped, unmodified constructor parameter.
	service := findingsFor(rep, "src/app/heroes/hero.service.ts")
	require.Len(t, service, 2)
	assert.Equal(t, "di-parameter-type", service[0].Rule)
	assert.Equal(t, "di-parameter-visibility", service[1].Rule)
	assert.Equal(t, 5, service[0].Line)

	// Misplaced one-time marker in the companion template.
	tmpl := findingsFor(rep, "src/app/heroes/hero-list.component.html")
	require.Len(t, tmpl, 1)
	assert.Equal(t, "one-time-binding", tmpl[0].Rule)
	assert.Equal(t, 2, tmpl[0].Line)
	assert.Contains(t, tmpl[0].Snippet, "ng-repeat")

	// Naming violations carry no line.
	badName := findingsFor(rep, "src/app/Bad_Name.ts")
	require.Len(t, badName, 2)
	for _, f := range badName {
		assert.Equal(t, "file-naming", f.Rule)
		assert.Zero(t, f.Line)
	}

	orphan := findingsFor(rep, "src/app/orphan.component.spec.ts")
	require.Len(t, orphan, 1)
	assert.Equal(t, "spec-location", orphan[0].Rule)

	broken := findingsFor(rep, "src/app/broken.component.ts")
	require.Len(t, broken, 1)
	assert.Equal(t, "parse-error", broken[0].Rule)
	assert.Equal(t, report.SeverityInfo, broken[0].Severity)

	// Clean component produces nothing.
	assert.Empty(t, findingsFor(rep, "src/app/heroes/hero-list.component.ts"))

	// Suppression comment silences both DI rules.
	assert.Empty(t, findingsFor(rep, "src/app/audit.service.ts"))
}

func TestEngineFindingsSorted(t *testing.T) {
	root, reg := buildTree(t)

	eng, err := New(reg, testLogger(), Config{Workers: 4})
	require.NoError(t, err)

	rep, err := eng.Run(context.Background(), root)
	require.NoError(t, err)

	for i := 1; i < len(rep.Findings); i++ {
		prev, cur := rep.Findings[i-1], rep.Findings[i]
		if prev.File == cur.File {
			assert.LessOrEqual(t, prev.Line, cur.Line)
		} else {
			assert.Less(t, prev.File, cur.File)
		}
	}
}

func TestEngineSeverityOverrides(t *testing.T) {
	root, reg := buildTree(t)

	eng, err := New(reg, testLogger(), Config{
		Severities: map[string]report.Severity{
			"di-parameter-visibility": report.SeverityOff,
			"spec-location":           report.SeverityError,
		},
	})
	require.NoError(t, err)

	rep, err := eng.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Len(t, rep.Findings, 6, "disabled rule is not evaluated")

	orphan := findingsFor(rep, "src/app/orphan.component.spec.ts")
	require.Len(t, orphan, 1)
	assert.Equal(t, report.SeverityError, orphan[0].Severity, "override replaces the default severity")

	for _, f := range rep.Findings {
		assert.NotEqual(t, "di-parameter-visibility", f.Rule)
	}
}

func TestEngineCachesByHash(t *testing.T) {
	root, reg := buildTree(t)

	eng, err := New(reg, testLogger(), Config{})
	require.NoError(t, err)

	first, err := eng.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, len(fixture), eng.CacheLen())

	second, err := eng.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, len(fixture), eng.CacheLen(), "unchanged files reuse cached analyses")
	assert.Equal(t, len(first.Findings), len(second.Findings))
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestEngineCancelledContext(t *testing.T) {
	root, reg := buildTree(t)

	eng, err := New(reg, testLogger(), Config{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = eng.Run(ctx, root)
	assert.Error(t, err)
}
