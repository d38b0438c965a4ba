// Package rules defines the styleguide checks and their registry.
//
// Rules register themselves at init time and are evaluated by the
// engine once per discovered source file. Each rule returns findings
// at its default severity; configured overrides and suppression
// comments are applied downstream by the engine.
package rules

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/ngvet/internal/registry"
	"github.com/conneroisu/ngvet/internal/report"
	"github.com/conneroisu/ngvet/internal/template"
	"github.com/conneroisu/ngvet/internal/tsparse"
	"github.com/conneroisu/ngvet/internal/types"
)

// Rule categories.
const (
	CategoryNaming    = "naming"
	CategoryStructure = "structure"
	CategoryDI        = "di"
	CategoryTemplate  = "template"
	CategoryParse     = "parse"
)

// Meta describes a rule for listings, documentation and engine
// scheduling.
type Meta struct {
	// ID is the rule identifier used in config and suppression comments
	ID string
	// Category groups related rules in listings
	Category string
	// Default is the severity applied when config does not override it
	Default report.Severity
	// Summary is a one-line description for rule listings
	Summary string
	// Doc is the rule's Markdown documentation, rendered by explain
	Doc string
	// NeedsParse marks rules that require a full TypeScript analysis
	// and are skipped when the file has syntax errors
	NeedsParse bool
}

// Options carries per-rule configuration resolved from the config file.
type Options struct {
	// ExtraTypes extends the recognized type suffixes checked by
	// file-naming
	ExtraTypes []string
}

// Context carries everything a rule may inspect for one file.
// Analysis is nil for templates; Template is nil for TypeScript
// sources. Registry gives cross-file rules access to the rest of the
// tree.
type Context struct {
	File     *types.SourceFile
	Analysis *tsparse.Analysis
	Template *template.ScanResult
	Registry *registry.SourceRegistry
	Options  Options
}

// Rule is a single styleguide check.
type Rule interface {
	Meta() Meta
	Check(ctx *Context) []report.Finding
}

var (
	rulesMu    sync.RWMutex
	registered = make(map[string]Rule)
)

// Register adds a rule to the registry. Registering a duplicate ID is
// a programmer error and panics.
func Register(rule Rule) {
	rulesMu.Lock()
	defer rulesMu.Unlock()

	id := rule.Meta().ID
	if _, exists := registered[id]; exists {
		panic(fmt.Sprintf("rules: duplicate registration of rule %q", id))
	}
	registered[id] = rule
}

// Get returns the rule with the given ID.
func Get(id string) (Rule, bool) {
	rulesMu.RLock()
	defer rulesMu.RUnlock()

	rule, ok := registered[id]
	return rule, ok
}

// All returns every registered rule sorted by ID.
func All() []Rule {
	rulesMu.RLock()
	defer rulesMu.RUnlock()

	all := make([]Rule, 0, len(registered))
	for _, rule := range registered {
		all = append(all, rule)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Meta().ID < all[j].Meta().ID
	})
	return all
}

// IDs returns every registered rule ID in sorted order.
func IDs() []string {
	rulesMu.RLock()
	defer rulesMu.RUnlock()

	ids := make([]string, 0, len(registered))
	for id := range registered {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Categories returns the distinct rule categories in sorted order.
func Categories() []string {
	rulesMu.RLock()
	defer rulesMu.RUnlock()

	seen := make(map[string]bool)
	for _, rule := range registered {
		seen[rule.Meta().Category] = true
	}
	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// finding builds a Finding carrying the rule's identity and default
// severity.
func finding(meta Meta, file *types.SourceFile, line, col int, message, suggest string) report.Finding {
	return report.Finding{
		Rule:     meta.ID,
		Severity: meta.Default,
		File:     file.Rel,
		Line:     line,
		Column:   col,
		Message:  message,
		Suggest:  suggest,
	}
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// PascalCase converts a kebab-case name to PascalCase: hero-list
// becomes HeroList.
func PascalCase(kebab string) string {
	parts := strings.Split(kebab, "-")
	for i, part := range parts {
		parts[i] = titleCaser.String(part)
	}
	return strings.Join(parts, "")
}
