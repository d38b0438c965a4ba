package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/ngvet/internal/errors"
)

// Formatter renders a report to a writer.
type Formatter interface {
	Format(w io.Writer, r *Report) error
}

// ValidFormats lists the supported output format names.
func ValidFormats() []string {
	return []string{"text", "json", "yaml", "checkstyle", "github"}
}

// NewFormatter returns the formatter for the given format name.
func NewFormatter(format string, color bool) (Formatter, error) {
	switch format {
	case "text", "":
		return &TextFormatter{Color: color}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "yaml":
		return &YAMLFormatter{}, nil
	case "checkstyle":
		return &CheckstyleFormatter{}, nil
	case "github":
		return &GitHubFormatter{}, nil
	default:
		return nil, errors.ErrUnknownFormat(format, ValidFormats())
	}
}

// Terminal output styles.
var (
	styleFile    = lipgloss.NewStyle().Bold(true).Underline(true)
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"})
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"})
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#38BDF8"})
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"})
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"})
)

// TextFormatter writes a human-readable listing grouped by file.
type TextFormatter struct {
	Color bool
}

func (t *TextFormatter) severity(s Severity) string {
	if !t.Color {
		return string(s)
	}
	switch s {
	case SeverityError:
		return styleError.Render(string(s))
	case SeverityWarning:
		return styleWarning.Render(string(s))
	case SeverityInfo:
		return styleInfo.Render(string(s))
	default:
		return string(s)
	}
}

func (t *TextFormatter) file(name string) string {
	if !t.Color {
		return name
	}
	return styleFile.Render(name)
}

func (t *TextFormatter) muted(s string) string {
	if !t.Color {
		return s
	}
	return styleMuted.Render(s)
}

// Format implements Formatter.
func (t *TextFormatter) Format(w io.Writer, r *Report) error {
	byFile := make(map[string][]Finding)
	var files []string
	for _, f := range r.Findings {
		if _, seen := byFile[f.File]; !seen {
			files = append(files, f.File)
		}
		byFile[f.File] = append(byFile[f.File], f)
	}
	sort.Strings(files)

	for _, file := range files {
		if _, err := fmt.Fprintln(w, t.file(file)); err != nil {
			return err
		}
		for _, f := range byFile[file] {
			location := fmt.Sprintf("%d:%d", f.Line, f.Column)
			if f.Column == 0 {
				location = fmt.Sprintf("%d", f.Line)
			}
			line := fmt.Sprintf("  %-7s %-8s %s  %s",
				t.muted(location), t.severity(f.Severity), f.Message, t.muted(f.Rule))
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
			if f.Suggest != "" {
				if _, err := fmt.Fprintf(w, "          %s\n", t.muted("suggestion: "+f.Suggest)); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return t.summary(w, r)
}

func (t *TextFormatter) summary(w io.Writer, r *Report) error {
	errs := r.BySeverity[SeverityError]
	warns := r.BySeverity[SeverityWarning]
	infos := r.BySeverity[SeverityInfo]
	total := errs + warns + infos

	scanned := fmt.Sprintf("%d files", r.Files)
	if r.Skipped > 0 {
		scanned += fmt.Sprintf(" (%d skipped)", r.Skipped)
	}

	if total == 0 {
		mark := "✓"
		if t.Color {
			mark = styleSuccess.Render(mark)
		}
		_, err := fmt.Fprintf(w, "%s no problems found in %s\n", mark, scanned)
		return err
	}

	var parts []string
	if errs > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", errs, plural("error", errs)))
	}
	if warns > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", warns, plural("warning", warns)))
	}
	if infos > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", infos, plural("notice", infos)))
	}

	mark := "✖"
	if t.Color {
		if errs > 0 {
			mark = styleError.Render(mark)
		} else {
			mark = styleWarning.Render(mark)
		}
	}

	_, err := fmt.Fprintf(w, "%s %d %s (%s) in %s\n",
		mark, total, plural("problem", total), strings.Join(parts, ", "), scanned)
	return err
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// JSONFormatter writes the report as indented JSON.
type JSONFormatter struct{}

// Format implements Formatter.
func (j *JSONFormatter) Format(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// YAMLFormatter writes the report as YAML.
type YAMLFormatter struct{}

// Format implements Formatter.
func (y *YAMLFormatter) Format(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(r)
}

// Checkstyle XML document shape, consumed by CI plugins.

type checkstyleError struct {
	XMLName  xml.Name `xml:"error"`
	Line     int      `xml:"line,attr"`
	Column   int      `xml:"column,attr,omitempty"`
	Severity string   `xml:"severity,attr"`
	Message  string   `xml:"message,attr"`
	Source   string   `xml:"source,attr"`
}

type checkstyleFile struct {
	XMLName xml.Name          `xml:"file"`
	Name    string            `xml:"name,attr"`
	Errors  []checkstyleError `xml:"error"`
}

type checkstyleDocument struct {
	XMLName xml.Name         `xml:"checkstyle"`
	Version string           `xml:"version,attr"`
	Files   []checkstyleFile `xml:"file"`
}

// CheckstyleFormatter writes checkstyle-compatible XML.
type CheckstyleFormatter struct{}

// Format implements Formatter.
func (c *CheckstyleFormatter) Format(w io.Writer, r *Report) error {
	byFile := make(map[string][]Finding)
	var files []string
	for _, f := range r.Findings {
		if _, seen := byFile[f.File]; !seen {
			files = append(files, f.File)
		}
		byFile[f.File] = append(byFile[f.File], f)
	}
	sort.Strings(files)

	doc := checkstyleDocument{Version: "4.3"}
	for _, file := range files {
		cf := checkstyleFile{Name: file}
		for _, f := range byFile[file] {
			cf.Errors = append(cf.Errors, checkstyleError{
				Line:     f.Line,
				Column:   f.Column,
				Severity: string(f.Severity),
				Message:  f.Message,
				Source:   "ngvet." + f.Rule,
			})
		}
		doc.Files = append(doc.Files, cf)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// GitHubFormatter writes workflow commands that annotate pull requests.
type GitHubFormatter struct{}

// Format implements Formatter.
func (g *GitHubFormatter) Format(w io.Writer, r *Report) error {
	for _, f := range r.Findings {
		level := "notice"
		switch f.Severity {
		case SeverityWarning:
			level = "warning"
		case SeverityError:
			level = "error"
		}

		message := escapeWorkflowData(fmt.Sprintf("%s (%s)", f.Message, f.Rule))
		if _, err := fmt.Fprintf(w, "::%s file=%s,line=%d,col=%d::%s\n",
			level, escapeWorkflowProperty(f.File), f.Line, f.Column, message); err != nil {
			return err
		}
	}
	return nil
}

// Workflow command payloads require percent-escaping of %, CR and LF.

func escapeWorkflowData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

func escapeWorkflowProperty(s string) string {
	s = escapeWorkflowData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	s = strings.ReplaceAll(s, ",", "%2C")
	return s
}
