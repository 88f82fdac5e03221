package tui

import (
	"fmt"
	"strings"

	"github.com/openkraft/a11ykraft/internal/domain"
)

// RenderRules lists the catalog grouped by principle, in catalog order.
func RenderRules(infos []domain.RuleInfo) string {
	var b strings.Builder

	b.WriteString(boxStyle.Render(headerStyle.Render("Rule Catalog") + "\n" +
		dimStyle.Render(fmt.Sprintf("%d rules", len(infos)))))
	b.WriteString("\n")

	var current domain.Principle
	for _, r := range infos {
		group := string(r.Principle)
		if r.SiteWide {
			group = "site-wide"
		} else if group == "" {
			group = "other"
		}
		if domain.Principle(group) != current {
			current = domain.Principle(group)
			b.WriteString("\n  " + sectionHeaderStyle.Render(strings.ToUpper(group[:1])+group[1:]) + "\n")
		}

		criterion := ""
		if r.Criterion != "" {
			criterion = faintStyle.Render(" WCAG " + r.Criterion)
		}
		fmt.Fprintf(&b, "    %s %s%s\n", severityTag(r.Severity), titleStyle.Render(padRight(r.ID, 32)), criterion)
		fmt.Fprintf(&b, "             %s\n", dimStyle.Render(r.Description))
	}
	b.WriteString("\n")
	return b.String()
}
