// Package engine evaluates the registered rules over discovered source
// files and aggregates the findings into a report.
//
// Files are checked by a fixed-size worker group. Each worker owns its
// tree-sitter parser, which is not safe for concurrent use. Parse and
// scan results are cached by path and content hash so watch and serve
// re-runs only pay for changed files.
package engine

import (
	"bytes"
	"context"
	"os"
	"runtime"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/ngvet/internal/errors"
	"github.com/conneroisu/ngvet/internal/logging"
	"github.com/conneroisu/ngvet/internal/registry"
	"github.com/conneroisu/ngvet/internal/report"
	"github.com/conneroisu/ngvet/internal/rules"
	"github.com/conneroisu/ngvet/internal/template"
	"github.com/conneroisu/ngvet/internal/tsparse"
	"github.com/conneroisu/ngvet/internal/types"
)

const (
	defaultCacheSize = 512
	maxWorkers       = 8
)

// Config controls a lint engine.
type Config struct {
	// Severities overrides rule default severities by ID. A rule set
	// to off is not evaluated at all.
	Severities map[string]report.Severity
	// Options is forwarded to every rule check
	Options rules.Options
	// Workers sets the worker count; zero means NumCPU capped at 8
	Workers int
	// CacheSize bounds the parse cache; zero means 512 entries
	CacheSize int
}

// cacheEntry holds the parse products for one content hash.
type cacheEntry struct {
	analysis *tsparse.Analysis
	scan     *template.ScanResult
}

// Engine runs rules over the files in a source registry.
type Engine struct {
	registry  *registry.SourceRegistry
	logger    logging.Logger
	cache     *lru.Cache[string, *cacheEntry]
	enabled   []rules.Rule
	overrides map[string]report.Severity
	options   rules.Options
	workers   int
}

// New creates an engine over the given registry.
func New(reg *registry.SourceRegistry, logger logging.Logger, cfg Config) (*Engine, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > maxWorkers {
			workers = maxWorkers
		}
	}

	cache, err := lru.New[string, *cacheEntry](cfg.CacheSize)
	if err != nil {
		return nil, errors.WrapInternal(err, errors.ErrCodeInternalError, "create analysis cache")
	}

	engine := &Engine{
		registry:  reg,
		logger:    logger.WithComponent("engine"),
		cache:     cache,
		overrides: cfg.Severities,
		options:   cfg.Options,
		workers:   workers,
	}

	for _, rule := range rules.All() {
		if sev, ok := cfg.Severities[rule.Meta().ID]; ok && sev == report.SeverityOff {
			continue
		}
		engine.enabled = append(engine.enabled, rule)
	}

	return engine, nil
}

// Run lints every registered file and produces the aggregated report.
func (e *Engine) Run(ctx context.Context, root string) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	perf := logging.StartOperation(e.logger, "lint_run")
	collector := report.NewCollector()
	files := e.registry.List()

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan *types.SourceFile)

	g.Go(func() error {
		defer close(jobs)
		for _, file := range files {
			select {
			case jobs <- file:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < e.workers; i++ {
		g.Go(func() error {
			parser := tsparse.NewParser()
			for file := range jobs {
				e.checkFile(gctx, parser, file, collector)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}

	rep := collector.Finalize(root)
	perf.End(ctx)
	e.logger.Info(ctx, "Lint run completed",
		"files", rep.Files,
		"skipped", rep.Skipped,
		"findings", len(rep.Findings),
	)
	return rep, nil
}

// checkFile evaluates the enabled rules for one file and feeds the
// collector.
func (e *Engine) checkFile(ctx context.Context, parser *tsparse.Parser, file *types.SourceFile, collector *report.Collector) {
	content, entry, err := e.load(ctx, parser, file)
	if err != nil {
		e.logger.Warn(ctx, err, "Skipping unreadable file", "file", file.Rel)
		collector.FileSkipped()
		if errors.IsParseError(err) && e.overrides["parse-error"] != report.SeverityOff {
			collector.AddError(file.Rel, err)
		}
		return
	}

	// A file with syntax errors only yields a partial analysis, so
	// parse-dependent rules are skipped for it.
	partial := entry.analysis != nil && entry.analysis.HasError
	if partial {
		collector.FileSkipped()
	} else {
		collector.FileChecked()
	}

	rctx := &rules.Context{
		File:     file,
		Analysis: entry.analysis,
		Template: entry.scan,
		Registry: e.registry,
		Options:  e.options,
	}

	var suppressions []tsparse.Suppression
	switch {
	case entry.analysis != nil:
		suppressions = entry.analysis.Suppressions
	case entry.scan != nil:
		suppressions = entry.scan.Suppressions
	}

	var lines [][]byte
	for _, rule := range e.enabled {
		meta := rule.Meta()
		if meta.NeedsParse && partial {
			continue
		}

		for _, f := range rule.Check(rctx) {
			if sev, ok := e.overrides[f.Rule]; ok {
				f.Severity = sev
			}
			if tsparse.Suppressed(suppressions, f.Rule, f.Line) {
				continue
			}
			if f.Snippet == "" && f.Line > 0 {
				if lines == nil {
					lines = bytes.Split(content, []byte("\n"))
				}
				f.Snippet = snippetAt(lines, f.Line)
			}
			collector.Add(f)
		}
	}
}

// load reads the file and produces its analysis, reusing cached parse
// results while the content hash is unchanged.
func (e *Engine) load(ctx context.Context, parser *tsparse.Parser, file *types.SourceFile) ([]byte, *cacheEntry, error) {
	content, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, nil, errors.WrapIO(err, errors.ErrCodeFileNotFound, "read source file")
	}

	key := file.Rel + "@" + file.Hash
	if entry, ok := e.cache.Get(key); ok {
		return content, entry, nil
	}

	entry := &cacheEntry{}
	switch {
	case file.Kind == types.KindTemplate:
		entry.scan = template.Scan(file.Rel, content)
	case file.Kind == types.KindDeclaration:
		// naming rules only, nothing to parse
	case file.IsTypeScript():
		analysis, parseErr := parser.Parse(ctx, file.Rel, content)
		if parseErr != nil {
			return nil, nil, errors.WrapParse(parseErr, errors.ErrCodeParseFailed, "parse TypeScript source", file.Rel)
		}
		entry.analysis = analysis
	}

	e.cache.Add(key, entry)
	return content, entry, nil
}

// CacheLen reports the number of cached analyses.
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}

// RuleIDs lists the enabled rules in registration order.
func (e *Engine) RuleIDs() []string {
	ids := make([]string, 0, len(e.enabled))
	for _, rule := range e.enabled {
		ids = append(ids, rule.Meta().ID)
	}
	return ids
}

func snippetAt(lines [][]byte, line int) string {
	if line <= 0 || line > len(lines) {
		return ""
	}
	return strings.TrimSpace(string(lines[line-1]))
}
