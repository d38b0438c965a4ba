// Package ngvet provides a styleguide linter for Angular-style TypeScript projects.
//
// Ngvet checks component, service, and template sources against the project
// styleguide, reporting naming, structure, and dependency injection violations
// with file and line precision.
//
// # Key Features
//
//   - Source Discovery: Automatic scanning of .ts and .html files in your project
//   - Styleguide Rules: Naming, file layout, member ordering, and DI conventions
//   - Live Dashboard: Browser-based report server with WebSocket live updates
//   - Watch Mode: Re-checks changed files with debounced file system monitoring
//   - Document Checks: Validates the styleguide document itself for broken anchors
//
// # Quick Start
//
//	// Write a default configuration file
//	ngvet init
//
//	// Check the current project
//	ngvet check
//
//	// Re-check on every change
//	ngvet watch
//
//	// Serve the report dashboard
//	ngvet serve
//
//	// List the registered rules
//	ngvet rules
//
//	// Explain one rule in detail
//	ngvet explain file-naming
//
// # Architecture
//
// The ngvet module is organized into several core components:
//
//   - CLI Commands (cmd/): Cobra-based command interface
//   - Source Registry (internal/registry/): Central source file store
//   - Check Engine (internal/engine/): Multi-worker rule runner with caching
//   - Dashboard Server (internal/server/): HTTP server with WebSocket support
//   - File Watcher (internal/watcher/): Real-time file system monitoring
//   - Configuration (internal/config/): Viper-based configuration management
//
// # Configuration
//
// Ngvet supports configuration through multiple sources:
//
//   - Configuration file (.ngvet.yml)
//   - Environment variables (NGVET_*)
//   - Command-line flags
//
// Example configuration:
//
//	paths:
//	  include:
//	    - "./src"
//	  exclude:
//	    - "**/node_modules/**"
//	    - "**/dist/**"
//
//	severity:
//	  fail-on: warning
//
//	rules:
//	  file-naming: error
//	  one-time-binding: off
//
//	server:
//	  port: 7878
//	  host: localhost
//
// # Performance
//
// Ngvet is optimized for large projects with:
//
//   - LRU caching of parse results keyed by content hash
//   - Concurrent worker pools for parallel rule evaluation
//   - Debounced file watching to prevent excessive re-checks
//   - Efficient WebSocket broadcasting for dashboard updates
//
// For more information, see the individual package documentation.
package docs
