package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/ngvet/internal/report"
	"github.com/conneroisu/ngvet/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:     "rules",
	Aliases: []string{"r"},
	Short:   "List all rules",
	Long: `List all rules with their category, severity and summary.
The severity column reflects configured overrides from .ngvet.yml.

Examples:
  ngvet rules                     # List all rules in table format
  ngvet rules -f json             # Output as JSON
  ngvet rules --category naming   # Only naming rules`,
	RunE: runRules,
}

var (
	rulesFormat   string
	rulesCategory string
)

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVarP(&rulesFormat, "format", "f", "table", "Output format (table|json|yaml)")
	rulesCmd.Flags().StringVar(&rulesCategory, "category", "", "Only show rules in this category")

	AddFlagValidation(rulesCmd, "format", oneOfValidator("rules format", "table", "json", "yaml"))
}

// ruleListing is one row of the rules listing.
type ruleListing struct {
	ID       string          `json:"id" yaml:"id"`
	Category string          `json:"category" yaml:"category"`
	Default  report.Severity `json:"default" yaml:"default"`
	Severity report.Severity `json:"severity" yaml:"severity"`
	Summary  string          `json:"summary" yaml:"summary"`
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	overrides := cfg.SeverityOverrides()

	listings := make([]ruleListing, 0)
	for _, rule := range rules.All() {
		meta := rule.Meta()
		if rulesCategory != "" && meta.Category != rulesCategory {
			continue
		}

		effective := meta.Default
		if sev, ok := overrides[meta.ID]; ok {
			effective = sev
		}

		listings = append(listings, ruleListing{
			ID:       meta.ID,
			Category: meta.Category,
			Default:  meta.Default,
			Severity: effective,
			Summary:  meta.Summary,
		})
	}

	if len(listings) == 0 {
		fmt.Println("No rules found.")
		return nil
	}

	switch strings.ToLower(rulesFormat) {
	case "json":
		return outputRulesJSON(listings)
	case "yaml":
		return outputRulesYAML(listings)
	case "table":
		return outputRulesTable(listings)
	default:
		return fmt.Errorf("unsupported format: %s", rulesFormat)
	}
}

func outputRulesJSON(listings []ruleListing) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(listings)
}

func outputRulesYAML(listings []ruleListing) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(listings)
}

func outputRulesTable(listings []ruleListing) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "RULE\tCATEGORY\tSEVERITY\tSUMMARY")
	fmt.Fprintln(w, "----\t--------\t--------\t-------")

	for _, listing := range listings {
		severity := string(listing.Severity)
		if listing.Severity != listing.Default {
			severity += " (default " + string(listing.Default) + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", listing.ID, listing.Category, severity, listing.Summary)
	}

	fmt.Fprintf(w, "\nTotal: %d rules\n", len(listings))
	return nil
}
