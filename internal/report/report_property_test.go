//go:build property

package report

import (
	"fmt"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestCollectorProperties validates finding collection and aggregation properties
func TestCollectorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(2468)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// Property: concurrent finding addition should never lose findings
	properties.Property("concurrent finding addition is thread-safe", prop.ForAll(
		func(goroutineCount int, findingsPerGoroutine int) bool {
			if goroutineCount < 1 || goroutineCount > 20 || findingsPerGoroutine < 1 || findingsPerGoroutine > 50 {
				return true
			}

			collector := NewCollector()

			var wg sync.WaitGroup
			totalExpected := goroutineCount * findingsPerGoroutine

			for g := 0; g < goroutineCount; g++ {
				wg.Add(1)
				go func(goroutineID int) {
					defer wg.Done()
					for i := 0; i < findingsPerGoroutine; i++ {
						collector.Add(Finding{
							Rule:     "file-naming",
							Severity: SeverityError,
							File:     fmt.Sprintf("file_%d_%d.ts", goroutineID, i),
							Line:     i + 1,
						})
					}
				}(g)
			}

			wg.Wait()

			return collector.Len() == totalExpected
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 50),
	))

	// Property: finalized findings are sorted regardless of insertion order
	properties.Property("finalize produces deterministic ordering", prop.ForAll(
		func(lines []int) bool {
			if len(lines) == 0 {
				return true
			}

			collector := NewCollector()
			for _, line := range lines {
				collector.Add(Finding{
					Rule:     "member-order",
					Severity: SeverityWarning,
					File:     "a.ts",
					Line:     line,
				})
			}

			report := collector.Finalize("src")
			for i := 1; i < len(report.Findings); i++ {
				if report.Findings[i-1].Line > report.Findings[i].Line {
					return false
				}
			}

			return len(report.Findings) == len(lines)
		},
		gen.SliceOf(gen.IntRange(1, 500)),
	))

	// Property: severity tallies always sum to the finding count
	properties.Property("severity tallies sum to finding count", prop.ForAll(
		func(errorCount, warningCount int) bool {
			if errorCount < 0 || errorCount > 100 || warningCount < 0 || warningCount > 100 {
				return true
			}

			collector := NewCollector()
			for i := 0; i < errorCount; i++ {
				collector.Add(Finding{Rule: "class-suffix", Severity: SeverityError, File: "a.ts", Line: i})
			}
			for i := 0; i < warningCount; i++ {
				collector.Add(Finding{Rule: "member-order", Severity: SeverityWarning, File: "b.ts", Line: i})
			}

			report := collector.Finalize("src")
			total := 0
			for _, n := range report.BySeverity {
				total += n
			}

			return total == errorCount+warningCount && len(report.Findings) == total
		},
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
