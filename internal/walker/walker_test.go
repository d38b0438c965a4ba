package walker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/ngvet/internal/registry"
	"github.com/conneroisu/ngvet/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewSourceWalker(t *testing.T) {
	reg := registry.NewSourceRegistry()
	w := NewSourceWalker(reg, Options{})
	defer w.Close()

	assert.NotNil(t, w)
	assert.Equal(t, reg, w.GetRegistry())
}

func TestWalkRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/app/hero.component.ts"), "export class HeroComponent {}")
	writeFile(t, filepath.Join(root, "src/app/hero.component.html"), "<div></div>")
	writeFile(t, filepath.Join(root, "src/app/hero.component.spec.ts"), "describe('HeroComponent', () => {});")
	writeFile(t, filepath.Join(root, "src/app/hero.service.ts"), "export class HeroService {}")
	writeFile(t, filepath.Join(root, "node_modules/lib/index.ts"), "export {}")
	writeFile(t, filepath.Join(root, "dist/main.ts"), "export {}")
	writeFile(t, filepath.Join(root, ".angular/cache.ts"), "export {}")
	writeFile(t, filepath.Join(root, "README.md"), "# readme")

	reg := registry.NewSourceRegistry()
	w := NewSourceWalker(reg, Options{})
	defer w.Close()

	stats, err := w.WalkRoot(root)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Found)
	assert.Empty(t, stats.Unreadable)
	assert.Equal(t, 4, reg.Count())

	component, ok := reg.Get("src/app/hero.component.ts")
	require.True(t, ok)
	assert.Equal(t, types.KindComponent, component.Kind)
	assert.Equal(t, "hero", component.Feature)
	assert.NotEmpty(t, component.Hash)
	assert.True(t, strings.HasSuffix(component.Companion, "hero.component.html"))

	spec, ok := reg.Get("src/app/hero.component.spec.ts")
	require.True(t, ok)
	assert.Equal(t, types.KindSpec, spec.Kind)

	template, ok := reg.Get("src/app/hero.component.html")
	require.True(t, ok)
	assert.Equal(t, types.KindTemplate, template.Kind)
	assert.True(t, strings.HasSuffix(template.Companion, "hero.component.ts"))

	// Dependency and build output directories are never entered
	_, ok = reg.Get("node_modules/lib/index.ts")
	assert.False(t, ok)
	_, ok = reg.Get("dist/main.ts")
	assert.False(t, ok)
	_, ok = reg.Get(".angular/cache.ts")
	assert.False(t, ok)
}

func TestWalkRootExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/app/hero.component.ts"), "export class HeroComponent {}")
	writeFile(t, filepath.Join(root, "src/app/hero.component.spec.ts"), "describe('x', () => {});")
	writeFile(t, filepath.Join(root, "src/legacy/old.service.ts"), "export class OldService {}")

	reg := registry.NewSourceRegistry()
	w := NewSourceWalker(reg, Options{Excludes: []string{"*.spec.ts", "src/legacy/*"}})
	defer w.Close()

	stats, err := w.WalkRoot(root)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Found)
	_, ok := reg.Get("src/app/hero.component.ts")
	assert.True(t, ok)
	_, ok = reg.Get("src/app/hero.component.spec.ts")
	assert.False(t, ok)
	_, ok = reg.Get("src/legacy/old.service.ts")
	assert.False(t, ok)
}

func TestWalkRootLargeBatch(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 40; i++ {
		name := filepath.Join(root, "src", "app", "f"+string(rune('a'+i%26))+strings.Repeat("x", i/26+1)+".service.ts")
		writeFile(t, name, "export class Service {}")
	}

	reg := registry.NewSourceRegistry()
	w := NewSourceWalker(reg, Options{})
	defer w.Close()

	stats, err := w.WalkRoot(root)
	require.NoError(t, err)
	assert.Equal(t, 40, stats.Found)
	assert.Equal(t, 40, reg.Count())
}

func TestWalkRootInvalid(t *testing.T) {
	reg := registry.NewSourceRegistry()
	w := NewSourceWalker(reg, Options{})
	defer w.Close()

	_, err := w.WalkRoot("/nonexistent/path")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "a.ts")
	require.NoError(t, os.WriteFile(file, []byte("export {}"), 0644))
	_, err = w.WalkRoot(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestWalkFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "src/app/hero.service.ts")
	writeFile(t, path, "export class HeroService {}")

	reg := registry.NewSourceRegistry()
	w := NewSourceWalker(reg, Options{})
	defer w.Close()

	require.NoError(t, w.SetRoot(root))
	require.NoError(t, w.WalkFile(path))

	file, ok := reg.Get("src/app/hero.service.ts")
	require.True(t, ok)
	firstHash := file.Hash

	// Rewalking after a change updates the hash
	writeFile(t, path, "export class HeroService { constructor() {} }")
	require.NoError(t, w.WalkFile(path))

	file, ok = reg.Get("src/app/hero.service.ts")
	require.True(t, ok)
	assert.NotEqual(t, firstHash, file.Hash)
	assert.Equal(t, 1, reg.Count())
}

func TestWalkFileOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "evil.ts")
	require.NoError(t, os.WriteFile(outside, []byte("export {}"), 0644))

	reg := registry.NewSourceRegistry()
	w := NewSourceWalker(reg, Options{})
	defer w.Close()

	require.NoError(t, w.SetRoot(root))
	err := w.WalkFile(outside)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside walk root")
	assert.Equal(t, 0, reg.Count())
}

func TestWalkFileWithoutRoot(t *testing.T) {
	reg := registry.NewSourceRegistry()
	w := NewSourceWalker(reg, Options{})
	defer w.Close()

	err := w.WalkFile("src/app/hero.service.ts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walk root not set")
}

func TestInvalidateRootCache(t *testing.T) {
	root := t.TempDir()
	reg := registry.NewSourceRegistry()
	w := NewSourceWalker(reg, Options{})
	defer w.Close()

	require.NoError(t, w.SetRoot(root))
	w.InvalidateRootCache()

	err := w.WalkFile(filepath.Join(root, "a.ts"))
	assert.Error(t, err)
}

func TestLargeFileStreaming(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "src/app/big.service.ts")
	content := "export class BigService {}\n" + strings.Repeat("// padding line\n", 8*1024)
	writeFile(t, path, content)
	require.Greater(t, int64(len(content)), int64(64*1024))

	reg := registry.NewSourceRegistry()
	w := NewSourceWalker(reg, Options{})
	defer w.Close()

	stats, err := w.WalkRoot(root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Found)

	file, ok := reg.Get("src/app/big.service.ts")
	require.True(t, ok)
	assert.NotEmpty(t, file.Hash)
	assert.Equal(t, int64(len(content)), file.Size)
}

func TestBufferPool(t *testing.T) {
	pool := NewBufferPool()

	buf := pool.Get()
	assert.Equal(t, 0, len(buf))
	assert.GreaterOrEqual(t, cap(buf), 64*1024)

	buf = append(buf, []byte("hello")...)
	pool.Put(buf)

	// Oversized buffers are not pooled
	huge := make([]byte, 0, 2*1024*1024)
	pool.Put(huge)

	again := pool.Get()
	assert.Equal(t, 0, len(again))
}

func TestCloseIdempotent(t *testing.T) {
	reg := registry.NewSourceRegistry()
	w := NewSourceWalker(reg, Options{})

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
