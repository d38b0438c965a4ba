package cmd

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/conneroisu/ngvet/internal/config"
	"github.com/conneroisu/ngvet/internal/rules"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose project setup and configuration",
	Long: `Diagnose your project setup and check for configuration issues.

The doctor command analyzes the current directory and reports anything
that would keep ngvet from working well:

- Configuration file presence and validity
- Include paths and discoverable sources
- Styleguide document availability
- Dashboard port availability
- Version control hygiene

Examples:
  ngvet doctor                    # Full diagnosis
  ngvet doctor --verbose          # Include informational results
  ngvet doctor --format json      # Output as JSON for tooling`,
	RunE: runDoctor,
}

var (
	doctorVerbose bool
	doctorFormat  string
)

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVarP(&doctorVerbose, "verbose", "v", false, "Show detailed diagnostic output")
	doctorCmd.Flags().StringVarP(&doctorFormat, "format", "f", "table", "Output format (table|json|yaml)")

	AddFlagValidation(doctorCmd, "format", oneOfValidator("doctor format", "table", "json", "yaml"))
}

// DiagnosticResult represents the result of a diagnostic check
type DiagnosticResult struct {
	Name       string                 `json:"name" yaml:"name"`
	Category   string                 `json:"category" yaml:"category"`
	Status     string                 `json:"status" yaml:"status"` // "ok", "warning", "error", "info"
	Message    string                 `json:"message" yaml:"message"`
	Suggestion string                 `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp   time.Time          `json:"timestamp" yaml:"timestamp"`
	Environment map[string]string  `json:"environment" yaml:"environment"`
	Results     []DiagnosticResult `json:"results" yaml:"results"`
	Summary     ReportSummary      `json:"summary" yaml:"summary"`
}

// ReportSummary provides an overview of diagnostic results
type ReportSummary struct {
	Total    int `json:"total" yaml:"total"`
	OK       int `json:"ok" yaml:"ok"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
	Info     int `json:"info" yaml:"info"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Println("🔍 ngvet Project Doctor")
	fmt.Println("=======================")
	fmt.Println()

	doctorReport := &DoctorReport{
		Timestamp:   time.Now(),
		Environment: gatherEnvironmentInfo(),
		Results:     []DiagnosticResult{},
	}

	checks := []func() DiagnosticResult{
		checkConfiguration,
		checkSourceTree,
		checkAngularWorkspace,
		checkStyleguideDoc,
		checkDashboardPort,
		checkGitIntegration,
		checkWritePermissions,
	}

	for _, check := range checks {
		result := check()
		doctorReport.Results = append(doctorReport.Results, result)

		if !doctorVerbose && result.Status == "info" {
			continue
		}

		displayResult(result)
	}

	doctorReport.Summary = calculateSummary(doctorReport.Results)

	fmt.Println("📊 Summary")
	fmt.Println("==========")
	displaySummary(doctorReport.Summary)

	if doctorFormat != "table" {
		fmt.Println("\n📋 Detailed Report")
		fmt.Println("==================")
		if err := outputDoctorReport(doctorReport, doctorFormat); err != nil {
			return fmt.Errorf("failed to output report: %w", err)
		}
	}

	provideFinalRecommendations(doctorReport)

	if doctorReport.Summary.Errors > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("doctor found %d critical issue(s)", doctorReport.Summary.Errors)
	}

	return nil
}

func gatherEnvironmentInfo() map[string]string {
	env := map[string]string{
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"go_version": runtime.Version(),
	}

	if wd, err := os.Getwd(); err == nil {
		env["working_dir"] = wd
	}

	return env
}

func checkConfiguration() DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Configuration",
		Category: "Configuration",
		Status:   "ok",
	}

	if _, err := os.Stat(config.DefaultFileName); os.IsNotExist(err) {
		result.Status = "info"
		result.Message = "No " + config.DefaultFileName + " found; defaults apply"
		result.Suggestion = "Run 'ngvet init' to create a starter configuration"
		return result
	}

	cfg, err := config.Load()
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Configuration file exists but has errors: %v", err)
		result.Suggestion = "Fix the errors above or run 'ngvet init --force' to start over"
		return result
	}

	result.Message = "Configuration file is valid"
	result.Details = map[string]interface{}{
		"include":   cfg.Paths.Include,
		"exclude":   cfg.Paths.Exclude,
		"fail_on":   string(cfg.FailOn()),
		"format":    cfg.Output.Format,
		"overrides": len(cfg.Rules),
	}

	disabled := 0
	for _, severity := range cfg.Rules {
		if severity == "off" {
			disabled++
		}
	}
	if disabled == len(rules.IDs()) && disabled > 0 {
		result.Status = "warning"
		result.Message = "Configuration is valid but every rule is disabled"
		result.Suggestion = "Re-enable at least one rule in the rules section"
	}

	return result
}

func checkSourceTree() DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Source Tree",
		Category: "Sources",
		Status:   "ok",
	}

	cfg := loadedOrDefault()

	total := 0
	missing := []string{}
	for _, include := range cfg.Paths.Include {
		info, err := os.Stat(include)
		if err != nil || !info.IsDir() {
			missing = append(missing, include)
			continue
		}
		total += countSources(include)
	}

	if len(missing) > 0 {
		result.Status = "error"
		result.Message = fmt.Sprintf("Include paths do not exist: %v", missing)
		result.Suggestion = "Fix paths.include in " + config.DefaultFileName
		return result
	}

	if total == 0 {
		result.Status = "warning"
		result.Message = "No TypeScript or template sources found in the include paths"
		result.Suggestion = "Point paths.include at your source root, such as ./src"
		return result
	}

	result.Message = fmt.Sprintf("Found %d checkable source file(s)", total)
	result.Details = map[string]interface{}{
		"files":   total,
		"include": cfg.Paths.Include,
	}
	return result
}

func checkAngularWorkspace() DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Angular Workspace",
		Category: "Sources",
		Status:   "ok",
	}

	markers := []string{"angular.json", ".angular-cli.json", "tsconfig.json"}
	var found []string
	for _, marker := range markers {
		if _, err := os.Stat(marker); err == nil {
			found = append(found, marker)
		}
	}

	if len(found) == 0 {
		result.Status = "info"
		result.Message = "No workspace markers found (angular.json, tsconfig.json)"
		result.Suggestion = "Run ngvet from the workspace root so relative paths resolve"
		return result
	}

	result.Message = fmt.Sprintf("Workspace markers present: %s", strings.Join(found, ", "))
	return result
}

func checkStyleguideDoc() DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Styleguide Document",
		Category: "Documentation",
		Status:   "ok",
	}

	cfg := loadedOrDefault()

	if _, err := os.Stat(cfg.Docs.File); os.IsNotExist(err) {
		result.Status = "info"
		result.Message = fmt.Sprintf("Styleguide document %s not found", cfg.Docs.File)
		result.Suggestion = "Set docs.file in " + config.DefaultFileName + " if your styleguide lives elsewhere"
		return result
	}

	result.Message = fmt.Sprintf("Styleguide document present: %s", cfg.Docs.File)
	result.Details = map[string]interface{}{
		"file": cfg.Docs.File,
	}
	return result
}

func checkDashboardPort() DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Dashboard Port",
		Category: "Network",
		Status:   "ok",
	}

	cfg := loadedOrDefault()

	if isPortAvailable(cfg.Server.Port) {
		result.Message = fmt.Sprintf("Port %d is available", cfg.Server.Port)
		return result
	}

	result.Status = "warning"
	result.Message = fmt.Sprintf("Port %d is already in use", cfg.Server.Port)

	for _, candidate := range []int{cfg.Server.Port + 1, cfg.Server.Port + 2, 8400} {
		if isPortAvailable(candidate) {
			result.Suggestion = fmt.Sprintf("Use an alternative port: ngvet serve --port %d", candidate)
			break
		}
	}
	return result
}

func checkGitIntegration() DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Git Integration",
		Category: "Version Control",
		Status:   "info",
	}

	if _, err := os.Stat(".git"); os.IsNotExist(err) {
		result.Message = "Not a Git repository"
		result.Suggestion = "Initialize Git repository: git init"
		return result
	}

	result.Status = "ok"
	result.Message = "Git repository detected"

	content, err := os.ReadFile(".gitignore")
	if err != nil {
		result.Status = "warning"
		result.Message = "Git repository found but no .gitignore file"
		result.Suggestion = "Create .gitignore excluding node_modules/ and dist/"
		return result
	}

	missingPatterns := []string{}
	for _, pattern := range []string{"node_modules", "dist"} {
		if !strings.Contains(string(content), pattern) {
			missingPatterns = append(missingPatterns, pattern)
		}
	}
	if len(missingPatterns) > 0 {
		result.Status = "warning"
		result.Message = ".gitignore may be missing build artifact patterns"
		result.Suggestion = fmt.Sprintf("Add these patterns to .gitignore: %v", missingPatterns)
	}

	return result
}

func checkWritePermissions() DiagnosticResult {
	result := DiagnosticResult{
		Name:     "File Permissions",
		Category: "System",
		Status:   "ok",
	}

	probe, err := os.CreateTemp(".", ".ngvet-doctor-*")
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Current directory is not writable: %v", err)
		result.Suggestion = "ngvet init and ngvet docs need write access here"
		return result
	}
	probe.Close()
	os.Remove(probe.Name())

	result.Message = "Current directory is writable"
	return result
}

// Helper functions

// loadedOrDefault loads configuration for diagnostic checks, falling
// back to defaults so one broken section does not mask the rest.
func loadedOrDefault() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.Default()
	}
	return cfg
}

// countSources counts checkable files under a root, skipping the
// directories the walker skips.
func countSources(root string) int {
	count := 0
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "node_modules" || name == "dist" || strings.HasPrefix(name, ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".html") {
			count++
		}
		return nil
	})
	return count
}

func isPortAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

func displayResult(result DiagnosticResult) {
	var icon string
	switch result.Status {
	case "ok":
		icon = "✅"
	case "warning":
		icon = "⚠️"
	case "error":
		icon = "❌"
	case "info":
		icon = "ℹ️"
	default:
		icon = "•"
	}

	fmt.Printf("%s [%s] %s: %s\n", icon, strings.ToUpper(result.Category), result.Name, result.Message)

	if result.Suggestion != "" {
		fmt.Printf("   💡 %s\n", result.Suggestion)
	}

	if doctorVerbose && len(result.Details) > 0 {
		fmt.Printf("   📋 Details: %+v\n", result.Details)
	}

	fmt.Println()
}

func calculateSummary(results []DiagnosticResult) ReportSummary {
	summary := ReportSummary{
		Total: len(results),
	}

	for _, result := range results {
		switch result.Status {
		case "ok":
			summary.OK++
		case "warning":
			summary.Warnings++
		case "error":
			summary.Errors++
		case "info":
			summary.Info++
		}
	}

	return summary
}

func displaySummary(summary ReportSummary) {
	fmt.Printf("Total Checks: %d\n", summary.Total)
	fmt.Printf("✅ OK: %d\n", summary.OK)
	fmt.Printf("⚠️  Warnings: %d\n", summary.Warnings)
	fmt.Printf("❌ Errors: %d\n", summary.Errors)
	fmt.Printf("ℹ️  Info: %d\n", summary.Info)
}

func outputDoctorReport(doctorReport *DoctorReport, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doctorReport)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		return encoder.Encode(doctorReport)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func provideFinalRecommendations(doctorReport *DoctorReport) {
	fmt.Println("\n🚀 Recommendations")
	fmt.Println("==================")

	hasErrors := doctorReport.Summary.Errors > 0
	hasWarnings := doctorReport.Summary.Warnings > 0

	if hasErrors {
		fmt.Println("❌ Critical issues detected. Address the errors above before checking.")
	}
	if hasWarnings {
		fmt.Println("⚠️  Review the warnings above to improve your setup.")
	}
	if !hasErrors && !hasWarnings {
		fmt.Println("🎉 Your project setup looks good. Run 'ngvet check' to get started.")
	}
}
