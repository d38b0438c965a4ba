// Package walker provides source discovery for style checking.
//
// The walker traverses a project tree to find TypeScript and template
// files, classifies them by their dotted type suffix, and registers
// them with the source registry so rule checks and the watch loop can
// consume them. Traversal skips dependency and build output
// directories, applies user exclude globs, and maintains CRC32 hashes
// for change detection. Files are processed concurrently via a
// persistent worker pool with buffer pooling to keep large codebases
// cheap to rescan.
package walker

import (
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/conneroisu/ngvet/internal/registry"
	"github.com/conneroisu/ngvet/internal/types"
)

// Built-in directory names that are never descended into.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"out-tsc":      true,
	"coverage":     true,
	"tmp":          true,
}

// WalkJob represents a walk job for the worker pool containing the
// file path to process and a result channel for asynchronous
// communication.
type WalkJob struct {
	// path is the absolute path to the source file to process
	path string
	// result channel receives the walk result or error asynchronously
	result chan<- WalkResult
}

// WalkResult represents the result of processing one file, containing
// either success status or error information for a specific file.
type WalkResult struct {
	// path is the path that was processed
	path string
	// err contains any error that occurred during processing, nil on success
	err error
}

// WalkStats summarizes one traversal.
type WalkStats struct {
	// Found is the number of files registered
	Found int
	// Unreadable lists files that could not be read
	Unreadable []string
}

// BufferPool manages reusable byte buffers for file reading optimization
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a new buffer pool with initial buffer size
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				// Pre-allocate 64KB buffers for typical source files
				return make([]byte, 0, 64*1024)
			},
		},
	}
}

// Get retrieves a buffer from the pool
func (bp *BufferPool) Get() []byte {
	return bp.pool.Get().([]byte)[:0] // Reset length but keep capacity
}

// Put returns a buffer to the pool
func (bp *BufferPool) Put(buf []byte) {
	// Only pool reasonably-sized buffers to avoid memory leaks
	if cap(buf) <= 1024*1024 { // 1MB limit
		bp.pool.Put(buf)
	}
}

// WorkerPool manages persistent walk workers, distributing file
// processing jobs across CPU cores.
type WorkerPool struct {
	// jobQueue buffers walk jobs for worker distribution
	jobQueue chan WalkJob
	// workers holds references to all active worker goroutines
	workers []*walkWorker
	// workerCount defines the number of concurrent workers (typically NumCPU)
	workerCount int
	// walker is the shared source walker instance
	walker *SourceWalker
	// stop signals all workers to terminate gracefully
	stop chan struct{}
	// stopped tracks pool shutdown state
	stopped bool
	// mu protects concurrent access to pool state
	mu sync.RWMutex
}

// walkWorker is a persistent worker goroutine that processes walk
// jobs from the shared job queue.
type walkWorker struct {
	id       int
	jobQueue <-chan WalkJob
	walker   *SourceWalker
	stop     chan struct{}
}

// Options configures traversal.
type Options struct {
	// Excludes are glob patterns matched against root-relative paths
	// and against base names
	Excludes []string
}

// SourceWalker discovers TypeScript and template sources.
//
// The walker provides:
// - Recursive directory traversal with exclude patterns
// - Classification by dotted type suffix
// - Concurrent processing via worker pool
// - Integration with the source registry for event broadcasting
// - File change detection using CRC32 hashing
// - Root-bounded path validation with a cached absolute root
// - Buffer pooling for memory optimization in large codebases
type SourceWalker struct {
	// registry receives discovered files and broadcasts change events
	registry *registry.SourceRegistry
	// workerPool manages concurrent file processing
	workerPool *WorkerPool
	// rootCache contains the cached absolute walk root
	rootCache *rootCache
	// bufferPool provides reusable byte buffers for file reading
	bufferPool *BufferPool
	// excludes are user-supplied exclusion globs
	excludes []string
}

// rootCache caches the absolute walk root so path validation avoids
// repeated filesystem calls.
type rootCache struct {
	mu          sync.RWMutex
	absRoot     string
	initialized bool
}

// NewSourceWalker creates a new source walker with an optimized worker pool
func NewSourceWalker(reg *registry.SourceRegistry, opts Options) *SourceWalker {
	walker := &SourceWalker{
		registry:   reg,
		rootCache:  &rootCache{},
		bufferPool: NewBufferPool(),
		excludes:   opts.Excludes,
	}

	// Initialize worker pool with optimal worker count
	workerCount := runtime.NumCPU()
	if workerCount > 8 {
		workerCount = 8 // Cap at 8 workers for diminishing returns
	}

	walker.workerPool = newWorkerPool(workerCount, walker)
	return walker
}

// newWorkerPool creates a new worker pool for walk operations
func newWorkerPool(workerCount int, walker *SourceWalker) *WorkerPool {
	pool := &WorkerPool{
		jobQueue:    make(chan WalkJob, workerCount*2),
		workerCount: workerCount,
		walker:      walker,
		stop:        make(chan struct{}),
	}

	pool.workers = make([]*walkWorker, workerCount)
	for i := 0; i < workerCount; i++ {
		worker := &walkWorker{
			id:       i,
			jobQueue: pool.jobQueue,
			walker:   walker,
			stop:     make(chan struct{}),
		}
		pool.workers[i] = worker
		go worker.start()
	}

	return pool
}

// start begins the worker's processing loop
func (w *walkWorker) start() {
	for {
		select {
		case job := <-w.jobQueue:
			err := w.walker.walkFileInternal(job.path)
			job.result <- WalkResult{
				path: job.path,
				err:  err,
			}
		case <-w.stop:
			return
		}
	}
}

// Stop gracefully shuts down the worker pool
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}

	p.stopped = true
	close(p.stop)

	for _, worker := range p.workers {
		close(worker.stop)
	}

	close(p.jobQueue)
}

// GetRegistry returns the source registry
func (s *SourceWalker) GetRegistry() *registry.SourceRegistry {
	return s.registry
}

// Close gracefully shuts down the walker and its worker pool
func (s *SourceWalker) Close() error {
	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	return nil
}

// WalkRoot traverses root and registers every TypeScript and template
// file found. Unreadable files are reported in the stats without
// aborting the traversal; symlinks are not followed.
func (s *SourceWalker) WalkRoot(root string) (WalkStats, error) {
	var stats WalkStats

	absRoot, err := s.setRoot(root)
	if err != nil {
		return stats, fmt.Errorf("invalid root: %w", err)
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != absRoot && (skippedDirs[name] || strings.HasPrefix(name, ".")) {
				return fs.SkipDir
			}
			return nil
		}

		if !isSourceFile(path) {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		if s.isExcluded(rel) {
			return nil
		}

		// Validate each file path as we encounter it
		if _, err := s.validatePath(path); err != nil {
			// Skip invalid paths silently for security
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return stats, err
	}

	return s.processBatchWithWorkerPool(files)
}

// isSourceFile reports whether a path is checkable source.
func isSourceFile(path string) bool {
	return strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".html")
}

// isExcluded matches a root-relative path against the exclude globs.
// Patterns match either the whole relative path or the base name.
func (s *SourceWalker) isExcluded(rel string) bool {
	base := filepath.Base(rel)
	for _, pattern := range s.excludes {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// processBatchWithWorkerPool processes files using the persistent worker pool
func (s *SourceWalker) processBatchWithWorkerPool(files []string) (WalkStats, error) {
	var stats WalkStats
	if len(files) == 0 {
		return stats, nil
	}

	// For very small batches, process synchronously to avoid overhead
	if len(files) <= 5 {
		return s.processBatchSynchronous(files)
	}

	resultChan := make(chan WalkResult, len(files))

	// Submit jobs to persistent worker pool
	for _, file := range files {
		job := WalkJob{
			path:   file,
			result: resultChan,
		}

		select {
		case s.workerPool.jobQueue <- job:
			// Job submitted successfully
		default:
			// Worker pool is full, process synchronously as fallback
			err := s.walkFileInternal(file)
			resultChan <- WalkResult{path: file, err: err}
		}
	}

	// Collect results
	for i := 0; i < len(files); i++ {
		result := <-resultChan
		if result.err != nil {
			stats.Unreadable = append(stats.Unreadable, result.path)
		} else {
			stats.Found++
		}
	}

	close(resultChan)

	return stats, nil
}

// processBatchSynchronous processes small batches synchronously
func (s *SourceWalker) processBatchSynchronous(files []string) (WalkStats, error) {
	var stats WalkStats

	for _, file := range files {
		if err := s.walkFileInternal(file); err != nil {
			stats.Unreadable = append(stats.Unreadable, file)
		} else {
			stats.Found++
		}
	}

	return stats, nil
}

// WalkFile processes a single file, used by the watch loop on change
// events. The walk root must have been set by a prior WalkRoot call
// or SetRoot.
func (s *SourceWalker) WalkFile(path string) error {
	return s.walkFileInternal(path)
}

// SetRoot fixes the walk root without traversing. The watch loop uses
// this before processing individual change events.
func (s *SourceWalker) SetRoot(root string) error {
	_, err := s.setRoot(root)
	return err
}

// walkFileInternal reads, hashes and registers one file.
func (s *SourceWalker) walkFileInternal(path string) error {
	// Validate and clean the path to prevent directory traversal
	cleanPath, err := s.validatePath(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	// Single I/O operation: open file and get both content and info
	file, err := os.Open(cleanPath)
	if err != nil {
		return fmt.Errorf("opening file %s: %w", cleanPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("getting file info for %s: %w", cleanPath, err)
	}

	// Get buffer from pool for optimized memory usage
	buffer := s.bufferPool.Get()
	defer s.bufferPool.Put(buffer)

	var content []byte
	if info.Size() > 64*1024 {
		// Use streaming read for large files to reduce memory pressure
		content, err = s.readFileStreaming(file, info.Size(), buffer)
	} else {
		if cap(buffer) < int(info.Size()) {
			buffer = make([]byte, info.Size())
		}
		buffer = buffer[:info.Size()]
		_, err = io.ReadFull(file, buffer)
		if err == nil {
			content = make([]byte, len(buffer))
			copy(content, buffer)
		}
	}
	if err != nil {
		return fmt.Errorf("reading file %s: %w", cleanPath, err)
	}

	hash := fmt.Sprintf("%x", crc32.ChecksumIEEE(content))

	absRoot, err := s.getRoot()
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absRoot, cleanPath)
	if err != nil {
		return fmt.Errorf("relativizing %s: %w", cleanPath, err)
	}
	rel = filepath.ToSlash(rel)

	kind, feature, suffixes := types.Classify(rel)

	source := &types.SourceFile{
		Path:      cleanPath,
		Rel:       rel,
		Kind:      kind,
		Feature:   feature,
		Suffixes:  suffixes,
		Hash:      hash,
		Size:      info.Size(),
		LastMod:   info.ModTime(),
		Companion: s.findCompanion(cleanPath, kind),
	}

	s.registry.Register(source)
	return nil
}

// findCompanion locates the sibling file a component or template pairs
// with, such as hero.component.html for hero.component.ts.
func (s *SourceWalker) findCompanion(path string, kind types.SourceKind) string {
	var companion string
	switch kind {
	case types.KindComponent:
		companion = strings.TrimSuffix(path, ".ts") + ".html"
	case types.KindTemplate:
		companion = strings.TrimSuffix(path, ".html") + ".ts"
	default:
		return ""
	}

	if _, err := os.Stat(companion); err != nil {
		return ""
	}
	return companion
}

// readFileStreaming reads large files using pooled buffers
func (s *SourceWalker) readFileStreaming(file *os.File, size int64, pooledBuffer []byte) ([]byte, error) {
	const chunkSize = 32 * 1024 // 32KB chunks

	var chunk []byte
	if cap(pooledBuffer) >= chunkSize {
		chunk = pooledBuffer[:chunkSize]
	} else {
		chunk = make([]byte, chunkSize)
	}

	// Pre-allocate content buffer with exact size to avoid reallocations
	content := make([]byte, 0, size)

	for {
		n, err := file.Read(chunk)
		if n > 0 {
			content = append(content, chunk[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
	}

	return content, nil
}

// validatePath validates and cleans a file path to prevent directory
// traversal. The absolute walk root is cached so repeated validation
// avoids filesystem calls.
func (s *SourceWalker) validatePath(path string) (string, error) {
	// Clean the path to resolve . and .. elements
	cleanPath := filepath.Clean(path)

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", fmt.Errorf("getting absolute path: %w", err)
	}

	absRoot, err := s.getRoot()
	if err != nil {
		return "", err
	}

	// Primary security check: ensure the path is within the walk root.
	// This prevents traversal attacks that escape the checked tree.
	if absPath != absRoot && !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside walk root", path)
	}

	// Secondary security check: reject paths with suspicious patterns
	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("path contains directory traversal: %s", path)
	}

	return absPath, nil
}

// setRoot resolves and caches the absolute walk root.
func (s *SourceWalker) setRoot(root string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", root)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("getting absolute root: %w", err)
	}

	s.rootCache.mu.Lock()
	s.rootCache.absRoot = absRoot
	s.rootCache.initialized = true
	s.rootCache.mu.Unlock()

	return absRoot, nil
}

// getRoot returns the cached absolute walk root.
func (s *SourceWalker) getRoot() (string, error) {
	s.rootCache.mu.RLock()
	defer s.rootCache.mu.RUnlock()

	if !s.rootCache.initialized {
		return "", fmt.Errorf("walk root not set")
	}
	return s.rootCache.absRoot, nil
}

// InvalidateRootCache clears the cached walk root. Call when the
// checked directory changes during execution.
func (s *SourceWalker) InvalidateRootCache() {
	s.rootCache.mu.Lock()
	defer s.rootCache.mu.Unlock()
	s.rootCache.initialized = false
	s.rootCache.absRoot = ""
}
