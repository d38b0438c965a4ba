// Package registry tracks discovered source files and broadcasts
// change events to subscribers such as the watch loop and the
// dashboard server.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/conneroisu/ngvet/internal/types"
)

// SourceRegistry manages all discovered source files, keyed by their
// path relative to the check root.
type SourceRegistry struct {
	files    map[string]*types.SourceFile
	mutex    sync.RWMutex
	watchers []chan types.SourceEvent
}

// NewSourceRegistry creates a new source registry
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{
		files:    make(map[string]*types.SourceFile),
		watchers: make([]chan types.SourceEvent, 0),
	}
}

// Register adds or updates a source file in the registry
func (r *SourceRegistry) Register(file *types.SourceFile) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := types.EventTypeAdded
	if _, exists := r.files[file.Rel]; exists {
		eventType = types.EventTypeUpdated
	}

	r.files[file.Rel] = file

	r.notify(types.SourceEvent{
		Type:      eventType,
		File:      file,
		Timestamp: time.Now(),
	})
}

// Get retrieves a source file by relative path
func (r *SourceRegistry) Get(rel string) (*types.SourceFile, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	file, exists := r.files[rel]
	return file, exists
}

// GetAll returns all registered source files
func (r *SourceRegistry) GetAll() map[string]*types.SourceFile {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*types.SourceFile)
	for rel, file := range r.files {
		result[rel] = file
	}
	return result
}

// List returns all registered files sorted by relative path
func (r *SourceRegistry) List() []*types.SourceFile {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*types.SourceFile, 0, len(r.files))
	for _, file := range r.files {
		result = append(result, file)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Rel < result[j].Rel
	})
	return result
}

// ByKind returns all registered files of the given kind, sorted by
// relative path
func (r *SourceRegistry) ByKind(kind types.SourceKind) []*types.SourceFile {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*types.SourceFile
	for _, file := range r.files {
		if file.Kind == kind {
			result = append(result, file)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Rel < result[j].Rel
	})
	return result
}

// Remove removes a source file from the registry
func (r *SourceRegistry) Remove(rel string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	file, exists := r.files[rel]
	if !exists {
		return
	}

	delete(r.files, rel)

	r.notify(types.SourceEvent{
		Type:      types.EventTypeRemoved,
		File:      file,
		Timestamp: time.Now(),
	})
}

// notify sends an event to all watchers. Callers must hold the lock.
func (r *SourceRegistry) notify(event types.SourceEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

// Watch returns a channel that receives source events
func (r *SourceRegistry) Watch() <-chan types.SourceEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.SourceEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *SourceRegistry) UnWatch(ch <-chan types.SourceEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered source files
func (r *SourceRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.files)
}

// CountByKind tallies registered files per source kind
func (r *SourceRegistry) CountByKind() map[types.SourceKind]int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[types.SourceKind]int)
	for _, file := range r.files {
		result[file.Kind]++
	}
	return result
}
