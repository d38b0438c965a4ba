package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	ngerrors "github.com/conneroisu/ngvet/internal/errors"
	"github.com/conneroisu/ngvet/internal/rules"
)

var explainCmd = &cobra.Command{
	Use:     "explain <rule>",
	Aliases: []string{"e"},
	Short:   "Explain a rule in detail",
	Long: `Show the full documentation for a rule: what it checks, why the
convention exists, and how to fix or suppress findings.

Examples:
  ngvet explain file-naming       # Explain the file naming rule
  ngvet explain di-parameter-type # Explain a DI rule
  ngvet explain member-order --raw # Print raw Markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

var explainRaw bool

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().BoolVar(&explainRaw, "raw", false, "Print raw Markdown without terminal rendering")
}

func runExplain(cmd *cobra.Command, args []string) error {
	id := args[0]

	rule, ok := rules.Get(id)
	if !ok {
		suggestions := ngerrors.UnknownRuleSuggestions(id, rules.IDs())
		return ngerrors.NewEnhancedError(
			fmt.Sprintf("Unknown rule %q", id),
			ngerrors.ErrUnknownRule(id, rules.IDs()),
			suggestions,
		)
	}

	doc := ruleDocument(rule.Meta())

	if explainRaw || !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(doc)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		fmt.Print(doc)
		return nil
	}

	rendered, err := renderer.Render(doc)
	if err != nil {
		fmt.Print(doc)
		return nil
	}

	fmt.Print(rendered)
	return nil
}

// ruleDocument assembles the Markdown page for one rule.
func ruleDocument(meta rules.Meta) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", meta.ID)
	fmt.Fprintf(&b, "**Category:** %s  \n", meta.Category)
	fmt.Fprintf(&b, "**Default severity:** %s\n\n", meta.Default)
	fmt.Fprintf(&b, "%s\n\n", meta.Summary)

	if meta.Doc != "" {
		b.WriteString(meta.Doc)
		if !strings.HasSuffix(meta.Doc, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Suppressing\n\n")
	fmt.Fprintf(&b, "Add a suppression comment on the line above a finding:\n\n")
	fmt.Fprintf(&b, "    // ngvet-disable-next-line %s\n\n", meta.ID)
	fmt.Fprintf(&b, "Or disable the rule in `.ngvet.yml`:\n\n")
	fmt.Fprintf(&b, "    rules:\n      %s: off\n", meta.ID)

	return b.String()
}
