// Package types provides common type definitions used throughout the ngvet CLI.
// This package contains shared types to avoid circular dependencies between packages.
package types

import (
	"path/filepath"
	"strings"
	"time"
)

// SourceKind classifies a source file by the type suffix in its name,
// following the styleguide's feature.type.ts convention.
type SourceKind string

const (
	KindComponent   SourceKind = "component"
	KindService     SourceKind = "service"
	KindModule      SourceKind = "module"
	KindDirective   SourceKind = "directive"
	KindPipe        SourceKind = "pipe"
	KindFilter      SourceKind = "filter"
	KindModel       SourceKind = "model"
	KindConfig      SourceKind = "config"
	KindRoutes      SourceKind = "routes"
	KindSpec        SourceKind = "spec"
	KindDeclaration SourceKind = "declaration"
	KindTemplate    SourceKind = "template"
	KindUnknown     SourceKind = "unknown"
)

// builtinKinds maps recognized type suffixes to their kind. Extra suffixes may
// be supplied per project via the file-naming rule options.
var builtinKinds = map[string]SourceKind{
	"component": KindComponent,
	"service":   KindService,
	"module":    KindModule,
	"directive": KindDirective,
	"pipe":      KindPipe,
	"filter":    KindFilter,
	"model":     KindModel,
	"config":    KindConfig,
	"routes":    KindRoutes,
	"spec":      KindSpec,
}

// BuiltinTypeSuffixes returns the recognized type suffixes in sorted order.
func BuiltinTypeSuffixes() []string {
	return []string{
		"component", "config", "directive", "filter",
		"model", "module", "pipe", "routes", "service", "spec",
	}
}

// SourceFile contains metadata about a discovered source file, used by the
// walker, registry, and rule engine.
type SourceFile struct {
	// Path is the cleaned absolute path to the file
	Path string
	// Rel is the slash-separated path relative to the lint root
	Rel string
	// Kind is derived from the filename's type suffix chain
	Kind SourceKind
	// Feature is the kebab-case feature name (the part before the first dot),
	// empty when the name carries no feature segment
	Feature string
	// Suffixes is the dot-separated type suffix chain, e.g. ["component","spec"]
	Suffixes []string
	// Hash provides a CRC32 checksum for change detection
	Hash string
	// Size is the file size in bytes at scan time
	Size int64
	// LastMod tracks the last modification time for change detection
	LastMod time.Time
	// Companion is the path of the sibling template for component files,
	// or the sibling component for template files; empty when none exists
	Companion string
}

// IsTypeScript reports whether the file is a .ts source (including .d.ts).
func (f *SourceFile) IsTypeScript() bool {
	return strings.HasSuffix(f.Path, ".ts")
}

// IsTemplate reports whether the file is an HTML template.
func (f *SourceFile) IsTemplate() bool {
	return f.Kind == KindTemplate
}

// Classify derives the kind, feature name, and suffix chain from a filename.
// The last recognized suffix wins: user.component.spec.ts classifies as a spec
// with chain ["component","spec"]. Unrecognized suffixes leave the prior kind
// untouched; a name with no recognized suffix classifies as KindUnknown.
func Classify(path string) (SourceKind, string, []string) {
	base := filepath.Base(path)

	switch {
	case strings.HasSuffix(base, ".d.ts"):
		return KindDeclaration, strings.TrimSuffix(base, ".d.ts"), nil
	case strings.HasSuffix(base, ".html"):
		name := strings.TrimSuffix(base, ".html")
		parts := strings.Split(name, ".")
		return KindTemplate, parts[0], parts[1:]
	case strings.HasSuffix(base, ".ts"):
		name := strings.TrimSuffix(base, ".ts")
		parts := strings.Split(name, ".")
		if len(parts) == 1 {
			return KindUnknown, parts[0], nil
		}

		kind := KindUnknown
		for _, suffix := range parts[1:] {
			if k, ok := builtinKinds[suffix]; ok {
				kind = k
			}
		}
		return kind, parts[0], parts[1:]
	default:
		return KindUnknown, "", nil
	}
}

// RecognizedSuffix reports whether suffix is a builtin or configured type suffix.
func RecognizedSuffix(suffix string, extraKinds []string) bool {
	if _, ok := builtinKinds[suffix]; ok {
		return true
	}
	for _, extra := range extraKinds {
		if suffix == extra {
			return true
		}
	}
	return false
}

// EventType represents the type of source change event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// SourceEvent represents a change in the source registry, used for real-time
// notifications to watchers like the watch loop and the dashboard server.
type SourceEvent struct {
	// Type indicates the kind of change (added, updated, removed)
	Type EventType
	// File contains the source file information (never nil)
	File *SourceFile
	// Timestamp records when the event occurred for ordering and filtering
	Timestamp time.Time
}
