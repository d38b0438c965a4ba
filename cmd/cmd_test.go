package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/ngvet/internal/config"
	"github.com/conneroisu/ngvet/internal/report"
	"github.com/conneroisu/ngvet/internal/rules"
)

func ruleMetaForTest() rules.Meta {
	return rules.Meta{
		ID:       "sample-rule",
		Category: "naming",
		Default:  report.SeverityWarning,
		Summary:  "sample summary",
		Doc:      "Sample documentation body.",
	}
}

// chdir moves into a fresh temp directory for the duration of a test.
func chdir(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(oldDir) })

	require.NoError(t, os.Chdir(tempDir))
	return tempDir
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestInitCommand(t *testing.T) {
	chdir(t)
	viper.Reset()

	initForce = false
	initInteractive = false

	err := runInit(&cobra.Command{}, nil)
	require.NoError(t, err)
	assert.FileExists(t, config.DefaultFileName)

	content, err := os.ReadFile(config.DefaultFileName)
	require.NoError(t, err)
	assert.Contains(t, string(content), "paths:")
	assert.Contains(t, string(content), "fail-on:")
}

func TestInitCommandRefusesOverwrite(t *testing.T) {
	chdir(t)
	viper.Reset()

	initForce = false
	initInteractive = false

	require.NoError(t, runInit(&cobra.Command{}, nil))

	err := runInit(&cobra.Command{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	initForce = true
	assert.NoError(t, runInit(&cobra.Command{}, nil))
}

func TestCheckCommandCleanTree(t *testing.T) {
	tempDir := chdir(t)
	viper.Reset()

	writeTree(t, tempDir, map[string]string{
		"src/app/heroes/hero.service.ts": `import { Injectable } from '@angular/core';

@Injectable()
export class HeroService {
  constructor(private readonly http: HttpService) {}
}
`,
	})

	err := runCheck(&cobra.Command{}, []string{filepath.Join(tempDir, "src")})
	assert.NoError(t, err)
}

func TestCheckCommandReportsFindings(t *testing.T) {
	tempDir := chdir(t)
	viper.Reset()

	writeTree(t, tempDir, map[string]string{
		"src/app/Bad_Name.ts": "export const flag = true;\n",
	})

	err := runCheck(&cobra.Command{}, []string{filepath.Join(tempDir, "src")})
	assert.ErrorIs(t, err, errFindings)
}

func TestCheckCommandFailOnOff(t *testing.T) {
	tempDir := chdir(t)
	viper.Reset()
	viper.Set("severity.fail-on", "off")

	writeTree(t, tempDir, map[string]string{
		"src/app/Bad_Name.ts": "export const flag = true;\n",
	})

	err := runCheck(&cobra.Command{}, []string{filepath.Join(tempDir, "src")})
	assert.NoError(t, err)
}

func TestCheckCommandRejectsDangerousPath(t *testing.T) {
	chdir(t)
	viper.Reset()

	err := runCheck(&cobra.Command{}, []string{"src; rm -rf /"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangerous character")
}

func TestDocsCommandBrokenAnchor(t *testing.T) {
	tempDir := chdir(t)
	viper.Reset()

	writeTree(t, tempDir, map[string]string{
		"STYLEGUIDE.md": `# Styleguide

See [naming](#naming-rules) for details.
`,
	})

	err := runDocs(&cobra.Command{}, []string{filepath.Join(tempDir, "STYLEGUIDE.md")})
	assert.ErrorIs(t, err, errFindings)
}

func TestDocsCommandCleanDocument(t *testing.T) {
	tempDir := chdir(t)
	viper.Reset()

	writeTree(t, tempDir, map[string]string{
		"STYLEGUIDE.md": `# Styleguide

See [naming](#naming) for details.

## Naming

Names are kebab-case.
`,
	})

	err := runDocs(&cobra.Command{}, []string{filepath.Join(tempDir, "STYLEGUIDE.md")})
	assert.NoError(t, err)
}

func TestDocsCommandUsesConfiguredFile(t *testing.T) {
	tempDir := chdir(t)
	viper.Reset()
	viper.Set("docs.file", "docs/guide.md")

	writeTree(t, tempDir, map[string]string{
		"docs/guide.md": "# Guide\n",
	})

	err := runDocs(&cobra.Command{}, nil)
	assert.NoError(t, err)
}

func TestRulesCommand(t *testing.T) {
	chdir(t)
	viper.Reset()

	rulesFormat = "table"
	rulesCategory = ""
	assert.NoError(t, runRules(&cobra.Command{}, nil))

	rulesFormat = "json"
	assert.NoError(t, runRules(&cobra.Command{}, nil))

	rulesFormat = "bogus"
	err := runRules(&cobra.Command{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestRulesCommandCategoryFilter(t *testing.T) {
	chdir(t)
	viper.Reset()

	rulesFormat = "table"
	rulesCategory = "naming"
	defer func() { rulesCategory = "" }()

	assert.NoError(t, runRules(&cobra.Command{}, nil))
}

func TestExplainCommand(t *testing.T) {
	explainRaw = true

	assert.NoError(t, runExplain(&cobra.Command{}, []string{"file-naming"}))
}

func TestExplainCommandUnknownRule(t *testing.T) {
	explainRaw = true

	err := runExplain(&cobra.Command{}, []string{"file-namin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file-naming")
}

func TestRuleDocumentShape(t *testing.T) {
	doc := ruleDocument(ruleMetaForTest())

	assert.Contains(t, doc, "# sample-rule")
	assert.Contains(t, doc, "ngvet-disable-next-line sample-rule")
	assert.Contains(t, doc, "sample-rule: off")
}

func TestVersionCommand(t *testing.T) {
	versionFormat = "text"
	versionShort = false
	assert.NoError(t, runVersionCommand(&cobra.Command{}, nil))

	versionFormat = "json"
	assert.NoError(t, runVersionCommand(&cobra.Command{}, nil))

	versionFormat = "xml"
	assert.Error(t, runVersionCommand(&cobra.Command{}, nil))
	versionFormat = "text"
}

func TestValidateTargetPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple relative path", "src/app", false},
		{"current directory", ".", false},
		{"absolute path", "/tmp/project", false},
		{"empty path", "", true},
		{"shell metacharacters", "src; rm -rf /", true},
		{"command substitution", "src$(whoami)", true},
		{"path traversal", "../outside", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTargetPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRootFor(t *testing.T) {
	roots := []string{"/work/project/src", "/work/shared"}

	root, ok := rootFor("/work/project/src/app/hero.service.ts", roots)
	require.True(t, ok)
	assert.Equal(t, "/work/project/src", root)

	root, ok = rootFor("/work/shared", roots)
	require.True(t, ok)
	assert.Equal(t, "/work/shared", root)

	// Sibling directory with a shared prefix is not inside the root.
	_, ok = rootFor("/work/project/src-backup/hero.service.ts", roots)
	assert.False(t, ok)

	_, ok = rootFor("/elsewhere/hero.service.ts", roots)
	assert.False(t, ok)
}

func TestResolveColor(t *testing.T) {
	assert.True(t, resolveColor("always"))
	assert.False(t, resolveColor("never"))
}

func TestRootLabel(t *testing.T) {
	assert.Equal(t, "src", rootLabel([]string{"src"}))
	assert.Equal(t, ".", rootLabel([]string{"src", "lib"}))
}

func TestDoctorCalculateSummary(t *testing.T) {
	results := []DiagnosticResult{
		{Status: "ok"},
		{Status: "ok"},
		{Status: "warning"},
		{Status: "error"},
		{Status: "info"},
	}

	summary := calculateSummary(results)
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 2, summary.OK)
	assert.Equal(t, 1, summary.Warnings)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 1, summary.Info)
}

func TestDoctorCountSources(t *testing.T) {
	tempDir := t.TempDir()

	writeTree(t, tempDir, map[string]string{
		"app/hero.service.ts":           "export class HeroService {}\n",
		"app/hero.component.html":       "<div></div>\n",
		"app/notes.md":                  "# notes\n",
		"node_modules/pkg/index.ts":     "export {};\n",
		"dist/out.ts":                   "export {};\n",
		".angular/cache/internal.ts":    "export {};\n",
		"app/sub/hero.component.ts":     "export class HeroComponent {}\n",
		"app/sub/hero.component.spec.ts": "describe('x', () => {});\n",
	})

	assert.Equal(t, 4, countSources(tempDir))
}

func TestDoctorWritePermissions(t *testing.T) {
	chdir(t)

	result := checkWritePermissions()
	assert.Equal(t, "ok", result.Status)
}

func TestValidateOutputFormat(t *testing.T) {
	assert.NoError(t, ValidateOutputFormat("text"))
	assert.NoError(t, ValidateOutputFormat("json"))
	assert.NoError(t, ValidateOutputFormat("checkstyle"))

	err := ValidateOutputFormat("bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestValidateFailOn(t *testing.T) {
	for _, value := range []string{"off", "info", "warning", "error"} {
		assert.NoError(t, ValidateFailOn(value))
	}

	err := ValidateFailOn("fatal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fail-on threshold")
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort("7878"))
	assert.NoError(t, ValidatePort("1"))
	assert.NoError(t, ValidatePort("65535"))

	assert.Error(t, ValidatePort("0"))
	assert.Error(t, ValidatePort("65536"))
	assert.Error(t, ValidatePort("dashboard"))
}

func TestAddFlagValidation(t *testing.T) {
	testCmd := &cobra.Command{Use: "test"}
	testCmd.Flags().String("format", "text", "")
	AddFlagValidation(testCmd, "format", ValidateOutputFormat)

	require.NoError(t, testCmd.Flags().Set("format", "yaml"))

	err := testCmd.Flags().Set("format", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")

	// Unknown flag names are ignored rather than panicking.
	AddFlagValidation(testCmd, "missing", ValidateOutputFormat)
}
