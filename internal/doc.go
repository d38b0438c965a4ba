// Package internal contains the core implementation packages for ngvet.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the ngvet CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - config: Configuration management with validation and suggestions
//   - di: Dependency container wiring the services behind each command
//   - engine: Rule scheduling with worker pools, caching, and suppression
//   - errors: Enhanced errors with context and actionable suggestions
//   - logging: Structured logging on slog with component scoping
//   - mdcheck: Styleguide document checks built on goldmark
//   - registry: Source file registry and change notification
//   - report: Findings, reports, and the output formatters
//   - rules: The styleguide rules and their registration
//   - server: Dashboard HTTP server with WebSocket live updates
//   - template: Companion template scanning for binding rules
//   - tsparse: TypeScript analysis built on tree-sitter
//   - types: Shared source file types used across packages
//   - version: Build metadata injected at link time
//   - walker: File system walking and source registration
//   - watcher: File system monitoring with debouncing
//
// # Inter-Package Communication
//
// Packages communicate through well-defined interfaces:
//
//   - Registry acts as the central store for discovered source files
//   - Walker traverses include roots and populates the registry
//   - Engine consumes the registry and produces reports
//   - Watcher monitors the file system and triggers re-checks
//   - Server pushes each new report to connected dashboard pages
//
// For detailed documentation, see the individual package documentation.
package internal
