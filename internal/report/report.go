// Package report collects rule findings and renders them in the
// output formats supported by the CLI.
package report

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity represents how a finding is reported.
type Severity string

const (
	SeverityOff     Severity = "off"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity parses a severity name.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "off":
		return SeverityOff, true
	case "info":
		return SeverityInfo, true
	case "warning", "warn":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	default:
		return "", false
	}
}

// Rank orders severities for fail-on comparisons. Higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityError:
		return 3
	default:
		return 0
	}
}

// String returns the severity name.
func (s Severity) String() string {
	return string(s)
}

// Finding is a single rule violation at a source location.
type Finding struct {
	Rule     string   `json:"rule" yaml:"rule"`
	Severity Severity `json:"severity" yaml:"severity"`
	File     string   `json:"file" yaml:"file"`
	Line     int      `json:"line" yaml:"line"`
	Column   int      `json:"column,omitempty" yaml:"column,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Snippet  string   `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	Suggest  string   `json:"suggest,omitempty" yaml:"suggest,omitempty"`
}

// Report is the aggregated result of one check run.
type Report struct {
	RunID      string           `json:"run_id" yaml:"run_id"`
	Root       string           `json:"root" yaml:"root"`
	StartedAt  time.Time        `json:"started_at" yaml:"started_at"`
	DurationMS int64            `json:"duration_ms" yaml:"duration_ms"`
	Files      int              `json:"files" yaml:"files"`
	Skipped    int              `json:"skipped" yaml:"skipped"`
	Findings   []Finding        `json:"findings" yaml:"findings"`
	ByRule     map[string]int   `json:"by_rule" yaml:"by_rule"`
	BySeverity map[Severity]int `json:"by_severity" yaml:"by_severity"`
}

// Count returns the number of findings at or above the given severity.
func (r *Report) Count(min Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity.Rank() >= min.Rank() {
			n++
		}
	}
	return n
}

// HasFailures reports whether any finding meets the fail-on threshold.
func (r *Report) HasFailures(failOn Severity) bool {
	if failOn == SeverityOff {
		return false
	}
	return r.Count(failOn) > 0
}

// Collector accumulates findings from concurrent rule checks.
type Collector struct {
	mutex     sync.Mutex
	startedAt time.Time
	findings  []Finding
	files     int
	skipped   int
}

// NewCollector creates a collector for a single run.
func NewCollector() *Collector {
	return &Collector{
		startedAt: time.Now(),
		findings:  make([]Finding, 0),
	}
}

// Add records a single finding.
func (c *Collector) Add(f Finding) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.findings = append(c.findings, f)
}

// AddAll records a batch of findings.
func (c *Collector) AddAll(findings []Finding) {
	if len(findings) == 0 {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.findings = append(c.findings, findings...)
}

// FileChecked counts a successfully analyzed file.
func (c *Collector) FileChecked() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.files++
}

// FileSkipped counts a file that could not be analyzed.
func (c *Collector) FileSkipped() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.skipped++
}

// AddError records a whole-file finding for a file the engine could
// not analyze. The finding carries the parse-error pseudo rule at its
// default severity.
func (c *Collector) AddError(file string, err error) {
	if err == nil {
		return
	}
	c.Add(Finding{
		Rule:     "parse-error",
		Severity: SeverityInfo,
		File:     file,
		Message:  err.Error(),
		Suggest:  "fix the file so it can be read and parsed, then re-run",
	})
}

// Findings returns a copy of the findings collected so far.
func (c *Collector) Findings() []Finding {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	result := make([]Finding, len(c.findings))
	copy(result, c.findings)
	return result
}

// HasFindings reports whether any finding has been collected.
func (c *Collector) HasFindings() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.findings) > 0
}

// Len returns the number of findings collected so far.
func (c *Collector) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.findings)
}

// Clear resets the collector for a fresh run.
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.findings = c.findings[:0]
	c.files = 0
	c.skipped = 0
	c.startedAt = time.Now()
}

// Finalize produces the report. Findings are sorted by file, line,
// column and rule so output is deterministic across runs.
func (c *Collector) Finalize(root string) *Report {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	findings := make([]Finding, len(c.findings))
	copy(findings, c.findings)

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		if findings[i].Column != findings[j].Column {
			return findings[i].Column < findings[j].Column
		}
		return findings[i].Rule < findings[j].Rule
	})

	byRule := make(map[string]int)
	bySeverity := make(map[Severity]int)
	for _, f := range findings {
		byRule[f.Rule]++
		bySeverity[f.Severity]++
	}

	return &Report{
		RunID:      uuid.New().String(),
		Root:       root,
		StartedAt:  c.startedAt,
		DurationMS: time.Since(c.startedAt).Milliseconds(),
		Files:      c.files,
		Skipped:    c.skipped,
		Findings:   findings,
		ByRule:     byRule,
		BySeverity: bySeverity,
	}
}
