package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/a11ykraft/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderFix summarizes a fix run: what was patched and what needs a human.
func RenderFix(source string, result *domain.FixResult) string {
	var b strings.Builder

	status := passStyle.Render(fmt.Sprintf("%d fixes applied", len(result.Applied)))
	if len(result.Applied) == 0 {
		status = dimStyle.Render("nothing to fix automatically")
	}
	passes := dimStyle.Render(fmt.Sprintf("%d passes", result.Passes))
	b.WriteString(boxStyle.Render(titleStyle.Render(source) + "\n" + status + "  " + passes))
	b.WriteString("\n")

	if len(result.Applied) > 0 {
		renderSection(&b, "Applied", len(result.Applied))
		for _, issue := range result.Applied {
			fmt.Fprintf(&b, "    %s %s  %s\n", passStyle.Render("✓"), issue.Type, fileStyle.Render(issue.Selector))
		}
	}

	if len(result.Remaining) > 0 {
		renderSection(&b, "Needs manual attention", len(result.Remaining))
		for _, issue := range sortBySeverity(result.Remaining) {
			renderIssue(&b, issue)
		}
	}

	b.WriteString("\n")
	if len(result.Applied) > 0 {
		b.WriteString("  " + hintStyle.Render("Review inserted placeholder text before publishing.") + "\n")
	}
	return b.String()
}

// RenderValidation renders the drift of changed pages against the baseline.
func RenderValidation(result *domain.ValidationResult) string {
	var b strings.Builder

	var status string
	switch result.Status {
	case domain.ValidationPass:
		status = passStyle.Render("PASS")
	case domain.ValidationWarn:
		status = warnStyle.Render("WARN")
	default:
		status = failStyle.Render("FAIL")
	}
	fmt.Fprintf(&b, "\n  %s  %s\n", status,
		dimStyle.Render(fmt.Sprintf("%d pages checked  ·  %d new  ·  %d fixed",
			len(result.PagesChecked), len(result.NewIssues), len(result.FixedIssues))))

	if len(result.NewIssues) > 0 {
		renderSection(&b, "New issues", len(result.NewIssues))
		for _, issue := range sortBySeverity(result.NewIssues) {
			renderIssue(&b, issue)
		}
	}
	if len(result.FixedIssues) > 0 {
		renderSection(&b, "Fixed", len(result.FixedIssues))
		for _, r := range result.FixedIssues {
			fmt.Fprintf(&b, "    %s %s  %s\n", passStyle.Render("✓"), r.Type, fileStyle.Render(r.Page))
		}
	}
	if len(result.Suggestions) > 0 {
		renderSection(&b, "Suggestions", len(result.Suggestions))
		for _, s := range result.Suggestions {
			b.WriteString("    " + hintStyle.Render(truncate(s, 100)) + "\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

func renderSection(b *strings.Builder, title string, count int) {
	b.WriteString("\n")
	fmt.Fprintf(b, "  %s %s\n",
		sectionHeaderStyle.Render(title),
		dimStyle.Render(fmt.Sprintf("(%d)", count)),
	)
}
