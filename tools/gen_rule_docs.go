// Command gen_rule_docs writes a Markdown reference for every
// registered rule to stdout. Run it after adding or changing a rule
// to refresh the project documentation:
//
//	go run ./tools/gen_rule_docs.go > docs/rules.md
package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conneroisu/ngvet/internal/rules"
)

func main() {
	all := rules.All()

	fmt.Println("# Rule Reference")
	fmt.Println()
	fmt.Printf("ngvet ships %d rules. Severities can be overridden per rule in\n", len(all))
	fmt.Println("`.ngvet.yml`; a rule set to `off` is not evaluated at all.")
	fmt.Println()

	byCategory := make(map[string][]rules.Rule)
	for _, rule := range all {
		meta := rule.Meta()
		byCategory[meta.Category] = append(byCategory[meta.Category], rule)
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		fmt.Printf("## %s\n\n", strings.ToUpper(category[:1])+category[1:])

		members := byCategory[category]
		sort.Slice(members, func(i, j int) bool {
			return members[i].Meta().ID < members[j].Meta().ID
		})

		for _, rule := range members {
			meta := rule.Meta()
			fmt.Printf("### %s\n\n", meta.ID)
			fmt.Printf("*Default severity: %s*\n\n", meta.Default)
			fmt.Printf("%s\n\n", meta.Summary)
			if doc := strings.TrimSpace(meta.Doc); doc != "" {
				fmt.Printf("%s\n\n", doc)
			}
		}
	}
}
