package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/ngvet/internal/types"
)

func newFile(rel string, kind types.SourceKind) *types.SourceFile {
	return &types.SourceFile{
		Path: "/project/" + rel,
		Rel:  rel,
		Kind: kind,
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewSourceRegistry()

	file := newFile("app/hero.component.ts", types.KindComponent)
	r.Register(file)

	got, ok := r.Get("app/hero.component.ts")
	require.True(t, ok)
	assert.Equal(t, file, got)

	_, ok = r.Get("app/missing.ts")
	assert.False(t, ok)

	assert.Equal(t, 1, r.Count())
}

func TestRegisterEmitsAddedThenUpdated(t *testing.T) {
	r := NewSourceRegistry()
	events := r.Watch()

	file := newFile("app/hero.service.ts", types.KindService)
	r.Register(file)
	r.Register(file)

	first := <-events
	assert.Equal(t, types.EventTypeAdded, first.Type)
	assert.Equal(t, file, first.File)

	second := <-events
	assert.Equal(t, types.EventTypeUpdated, second.Type)
}

func TestRemove(t *testing.T) {
	r := NewSourceRegistry()
	file := newFile("app/hero.component.ts", types.KindComponent)
	r.Register(file)

	events := r.Watch()
	r.Remove("app/hero.component.ts")

	event := <-events
	assert.Equal(t, types.EventTypeRemoved, event.Type)
	assert.Equal(t, file, event.File)
	assert.Equal(t, 0, r.Count())

	// Removing an unknown path is a no-op
	r.Remove("app/missing.ts")
	assert.Equal(t, 0, r.Count())
}

func TestListSorted(t *testing.T) {
	r := NewSourceRegistry()
	r.Register(newFile("app/z.service.ts", types.KindService))
	r.Register(newFile("app/a.component.ts", types.KindComponent))
	r.Register(newFile("app/m.module.ts", types.KindModule))

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "app/a.component.ts", list[0].Rel)
	assert.Equal(t, "app/m.module.ts", list[1].Rel)
	assert.Equal(t, "app/z.service.ts", list[2].Rel)
}

func TestByKind(t *testing.T) {
	r := NewSourceRegistry()
	r.Register(newFile("app/b.component.ts", types.KindComponent))
	r.Register(newFile("app/a.component.ts", types.KindComponent))
	r.Register(newFile("app/hero.service.ts", types.KindService))

	components := r.ByKind(types.KindComponent)
	require.Len(t, components, 2)
	assert.Equal(t, "app/a.component.ts", components[0].Rel)
	assert.Equal(t, "app/b.component.ts", components[1].Rel)

	assert.Empty(t, r.ByKind(types.KindPipe))
}

func TestCountByKind(t *testing.T) {
	r := NewSourceRegistry()
	r.Register(newFile("app/a.component.ts", types.KindComponent))
	r.Register(newFile("app/b.component.ts", types.KindComponent))
	r.Register(newFile("app/hero.service.ts", types.KindService))

	counts := r.CountByKind()
	assert.Equal(t, 2, counts[types.KindComponent])
	assert.Equal(t, 1, counts[types.KindService])
}

func TestUnWatchClosesChannel(t *testing.T) {
	r := NewSourceRegistry()
	events := r.Watch()

	r.UnWatch(events)

	_, open := <-events
	assert.False(t, open)

	// Registering after unwatch must not panic
	r.Register(newFile("app/hero.component.ts", types.KindComponent))
}

func TestWatcherDoesNotBlockRegistry(t *testing.T) {
	r := NewSourceRegistry()
	_ = r.Watch() // never drained

	// Overflow the buffered channel; Register must not block
	for i := 0; i < 250; i++ {
		r.Register(newFile(fmt.Sprintf("app/f%d.service.ts", i), types.KindService))
	}

	assert.Equal(t, 250, r.Count())
}

func TestConcurrentAccess(t *testing.T) {
	r := NewSourceRegistry()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				rel := fmt.Sprintf("app/f%d_%d.component.ts", id, i)
				r.Register(newFile(rel, types.KindComponent))
				r.Get(rel)
				r.Count()
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 400, r.Count())
}
