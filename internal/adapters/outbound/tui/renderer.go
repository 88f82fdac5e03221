package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/a11ykraft/internal/domain"
)

// ── Warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	orange    = lipgloss.Color("#FB923C")
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	gradeColors = map[string]lipgloss.Color{
		"A+": success,
		"A":  success,
		"B":  lipgloss.Color("#A3E635"), // lime
		"C":  warning,
		"D":  orange,
		"F":  danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	criticalStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	seriousStyle  = lipgloss.NewStyle().Foreground(orange).Bold(true)
	moderateStyle = lipgloss.NewStyle().Foreground(warning)
	minorStyle    = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	fixStyle      = lipgloss.NewStyle().Foreground(success).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderIssues renders the issues of a single scan, most severe first.
func RenderIssues(source string, issues []domain.Issue) string {
	var b strings.Builder

	title := headerStyle.Render("a11ykraft")
	subtitle := dimStyle.Render(source)
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + summaryLine(domain.Summarize(issues))))
	b.WriteString("\n\n")

	if len(issues) == 0 {
		b.WriteString("  " + passStyle.Render("No issues found.") + "\n")
		return b.String()
	}
	for _, issue := range sortBySeverity(issues) {
		renderIssue(&b, issue)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderAudit renders a site audit: score header, per-page table, site-wide
// issues and the change since the baseline.
func RenderAudit(report *domain.AuditReport) string {
	var b strings.Builder

	// ── Header ──
	grade := report.Grade()
	title := headerStyle.Render("a11ykraft")
	subtitle := dimStyle.Render("Accessibility Score")
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(grade)).
		Render(fmt.Sprintf("%d / 100", report.Overall))
	gradeStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(grade)).
		Render(grade)
	meta := dimStyle.Render(fmt.Sprintf("%d pages  ·  tier %s", len(report.Pages), report.Tier))
	if report.CommitHash != "" {
		meta += dimStyle.Render("  ·  " + shortHash(report.CommitHash))
	}

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" +
		scoreStyled + "  " + gradeStyled + "\n" + meta + "\n" + summaryLine(report.Summary)))
	b.WriteString("\n\n")

	// ── Pages ──
	b.WriteString("  " + titleStyle.Render("Pages") + "\n\n")
	for _, p := range report.Pages {
		name := padRight(p.Path, 28)
		if p.Error != "" {
			fmt.Fprintf(&b, "  %s %s %s\n", skipStyle.Render("○"), skipStyle.Render(name), skipStyle.Render("not audited: "+p.Error))
			continue
		}
		scoreText := lipgloss.NewStyle().Bold(true).Foreground(scoreColor(p.Score)).Render(fmt.Sprintf("%3d", p.Score))
		fmt.Fprintf(&b, "  %s %s %s  %s\n", name, coloredBar(p.Score, 20), scoreText,
			dimStyle.Render(fmt.Sprintf("%d issues", p.Summary.Total)))
	}

	// ── Issues by page ──
	for _, p := range report.Pages {
		if len(p.Issues) == 0 {
			continue
		}
		b.WriteString("\n  " + separatorLine + "\n\n")
		b.WriteString("  " + titleStyle.Render(p.Path) + "\n\n")
		for _, issue := range sortBySeverity(p.Issues) {
			renderIssue(&b, issue)
		}
	}

	// ── Site-wide ──
	if len(report.SiteIssues) > 0 {
		b.WriteString("\n  " + separatorLine + "\n\n")
		b.WriteString("  " + titleStyle.Render("Across pages") + "\n\n")
		for _, issue := range sortBySeverity(report.SiteIssues) {
			renderIssue(&b, issue)
		}
	}

	// ── Baseline ──
	if report.Diff != nil {
		b.WriteString("\n  " + separatorLine + "\n\n")
		fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
			titleStyle.Render("Since baseline"),
			failStyle.Render(fmt.Sprintf("%d new", len(report.Diff.New))),
			dimStyle.Render(fmt.Sprintf("%d open", len(report.Diff.Open))),
			passStyle.Render(fmt.Sprintf("%d fixed", len(report.Diff.Fixed))),
		)
	}

	b.WriteString("\n")
	return b.String()
}

func renderIssue(b *strings.Builder, issue domain.Issue) {
	tag := severityTag(issue.Severity)
	where := issue.Selector
	if issue.Page != "" && where != "" {
		where = issue.Page + "  " + where
	} else if issue.Page != "" {
		where = issue.Page
	}

	fmt.Fprintf(b, "    %s %s  %s\n", tag, titleStyle.Render(issue.Type), fileStyle.Render(where))
	fmt.Fprintf(b, "             %s\n", dimStyle.Render(issue.Description))
	if issue.Message != "" {
		fmt.Fprintf(b, "             %s\n", dimStyle.Render(issue.Message))
	}
	if issue.HasFix() {
		fmt.Fprintf(b, "             %s %s\n", fixStyle.Render("fix:"), faintStyle.Render(truncate(issue.Fix, 80)))
	}
}

func severityTag(severity domain.Severity) string {
	switch severity {
	case domain.SeverityCritical:
		return criticalStyle.Render("critical")
	case domain.SeveritySerious:
		return seriousStyle.Render("serious ")
	case domain.SeverityModerate:
		return moderateStyle.Render("moderate")
	default:
		return minorStyle.Render("minor   ")
	}
}

func summaryLine(s domain.Summary) string {
	if s.Total == 0 {
		return passStyle.Render("no issues")
	}
	parts := []string{dimStyle.Render(fmt.Sprintf("%d issues", s.Total))}
	for _, sev := range domain.Severities {
		if n := s.Count(sev); n > 0 {
			parts = append(parts, severityStyle(sev).Render(fmt.Sprintf("%d %s", n, sev)))
		}
	}
	if s.Fixable > 0 {
		parts = append(parts, fixStyle.Render(fmt.Sprintf("%d fixable", s.Fixable)))
	}
	return strings.Join(parts, "  ")
}

func severityStyle(sev domain.Severity) lipgloss.Style {
	switch sev {
	case domain.SeverityCritical:
		return criticalStyle
	case domain.SeveritySerious:
		return seriousStyle
	case domain.SeverityModerate:
		return moderateStyle
	default:
		return minorStyle
	}
}

// sortBySeverity returns a copy ordered most severe first, keeping the scan
// order within a severity.
func sortBySeverity(issues []domain.Issue) []domain.Issue {
	sorted := append([]domain.Issue(nil), issues...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() > sorted[j].Severity.Rank()
	})
	return sorted
}

func coloredBar(score, width int) string {
	filled := max(0, min(score*width/100, width))
	empty := width - filled

	color := scoreColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(score int) lipgloss.Color {
	switch {
	case score >= 80:
		return success
	case score >= 60:
		return lipgloss.Color("#A3E635") // lime
	case score >= 40:
		return warning
	default:
		return danger
	}
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats score history for terminal output.
func RenderHistory(entries []domain.ScoreEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No score history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Score History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := shortHash(e.CommitHash)
		if hash == "" {
			hash = "·······"
		}
		day := e.Timestamp
		if len(day) > 10 {
			day = day[:10]
		}

		scoreStyled := lipgloss.NewStyle().
			Foreground(scoreColor(e.Overall)).
			Render(fmt.Sprintf("%d/100", e.Overall))

		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			dimStyle.Render(day),
			faintStyle.Render(hash),
			scoreStyled,
			e.Grade,
			dimStyle.Render(fmt.Sprintf("%d issues", e.Issues)),
		)

		if i > 0 {
			diff := e.Overall - entries[i-1].Overall
			if diff > 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↑%d", diff))
			} else if diff < 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↓%d", -diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func gradeColor(grade string) lipgloss.Color {
	if c, ok := gradeColors[grade]; ok {
		return c
	}
	return fg
}

// RenderAuditLine is the one-line summary printed after each watch re-run.
func RenderAuditLine(report *domain.AuditReport, changed []string) string {
	grade := report.Grade()
	score := lipgloss.NewStyle().Bold(true).Foreground(gradeColor(grade)).
		Render(fmt.Sprintf("%d/100 %s", report.Overall, grade))
	line := fmt.Sprintf("  %s  %s  %s",
		dimStyle.Render(report.Timestamp.Format("15:04:05")),
		score,
		summaryLine(report.Summary),
	)
	if report.Diff != nil && (len(report.Diff.New) > 0 || len(report.Diff.Fixed) > 0) {
		line += "  " + failStyle.Render(fmt.Sprintf("+%d", len(report.Diff.New))) +
			" " + passStyle.Render(fmt.Sprintf("-%d", len(report.Diff.Fixed)))
	}
	if len(changed) > 0 {
		line += "  " + faintStyle.Render(truncate(strings.Join(changed, ", "), 60))
	}
	return line + "\n"
}
