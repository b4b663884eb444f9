package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/monkeycoder/railcheck/internal/domain"
	"github.com/monkeycoder/railcheck/internal/domain/check"
)

// ── Railway-inspired palette ──
var (
	accent    = lipgloss.Color("#A855F7") // violet
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
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

	statusColors = map[domain.Status]lipgloss.Color{
		domain.StatusPass:             success,
		domain.StatusPassWithWarnings: warning,
		domain.StatusFail:             danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	hintStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

var sections = []struct {
	severity domain.Severity
	title    string
}{
	{domain.SeverityError, "Errors"},
	{domain.SeverityWarning, "Warnings"},
	{domain.SeveritySkipped, "Skipped"},
	{domain.SeverityOK, "Passed"},
}

// RenderReport renders a validation report grouped by severity. ok findings
// are listed only when verbose is set.
func RenderReport(report *domain.Report, verbose bool) string {
	var b strings.Builder

	// ── Header ──
	status := strings.ToUpper(strings.ReplaceAll(string(report.Status), "_", " "))
	statusStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(statusColor(report.Status)).
		Render(status)
	sub := report.Root
	if report.Revision != "" {
		sub += " @ " + shortHash(report.Revision)
	}
	b.WriteString(boxStyle.Render(headerStyle.Render("railcheck") + "\n" + dimStyle.Render(sub) + "\n\n" + statusStyled))
	b.WriteString("\n")

	// ── Findings ──
	for _, sec := range sections {
		if sec.severity == domain.SeverityOK && !verbose {
			continue
		}
		var group []domain.Finding
		for _, f := range report.Findings {
			if f.Severity == sec.severity {
				group = append(group, f)
			}
		}
		if len(group) == 0 {
			continue
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s %s\n", titleStyle.Render(sec.title), dimStyle.Render(fmt.Sprintf("(%d)", len(group))))
		for _, f := range group {
			renderFinding(&b, f)
		}
	}

	// ── Footer ──
	b.WriteString("\n  " + separatorLine + "\n\n")
	b.WriteString("  " + renderCounts(report.Counts) + "\n")
	if report.Counts.Error == 0 && report.Counts.Warning == 0 {
		b.WriteString("  " + passStyle.Render("Ready to deploy.") + "\n")
	}
	return b.String()
}

// RenderScriptNotice tells the user where the remediation script went.
func RenderScriptNotice(path string, steps int) string {
	return fmt.Sprintf("\n  %s %s %s\n  %s\n",
		titleStyle.Render("Remediation script:"),
		fileStyle.Render(path),
		dimStyle.Render(fmt.Sprintf("(%d steps)", steps)),
		hintStyle.Render("Review it before running; railcheck never executes it."))
}

// RenderFixHint suggests --fix when the report has fixable findings.
func RenderFixHint(report *domain.Report) string {
	if len(report.Fixable()) == 0 {
		return ""
	}
	return "\n  " + hintStyle.Render("Run with --fix to write the suggested fixes to a remediation script.") + "\n"
}

// RenderCheckers lists the checkers in run order.
func RenderCheckers(checkers []check.Checker) string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Checkers") + "\n\n")
	for i, c := range checkers {
		needs := ""
		if c.NeedsParsedConfig() {
			needs = "  " + faintStyle.Render("needs parsed descriptor")
		}
		fmt.Fprintf(&b, "  %s %s%s\n", dimStyle.Render(fmt.Sprintf("%d.", i+1)), titleStyle.Render(padRight(c.Name(), 24)), needs)
		fmt.Fprintf(&b, "     %s\n", dimStyle.Render(c.Description()))
	}
	return b.String()
}

func renderFinding(b *strings.Builder, f domain.Finding) {
	scope := f.Checker
	if f.Service != "" {
		scope += " [" + f.Service + "]"
	}
	head := fmt.Sprintf("    %s %s", severityIcon(f.Severity), padRight(scope, 28))
	if f.Kind != domain.KindOK && f.Kind != domain.KindSkipped {
		head += " " + faintStyle.Render(f.Kind.Label())
	}
	if f.File != "" {
		head += "  " + fileStyle.Render(f.File)
	}
	b.WriteString(head + "\n")
	fmt.Fprintf(b, "      %s\n", dimStyle.Render(f.Message))
	if f.HasFix() {
		if f.SuggestedFix.Command != "" {
			fmt.Fprintf(b, "      %s %s\n", warnStyle.Render("fix:"), f.SuggestedFix.Command)
		} else {
			fmt.Fprintf(b, "      %s %s\n", warnStyle.Render("fix:"), f.SuggestedFix.Description)
		}
	}
}

func renderCounts(c domain.Counts) string {
	parts := []string{
		countTag(c.Error, "error", errorTagStyle),
		countTag(c.Warning, "warning", warnTagStyle),
		countTag(c.OK, "ok", passStyle),
		countTag(c.Skipped, "skipped", skipStyle),
	}
	return strings.Join(parts, "  ")
}

func countTag(n int, noun string, style lipgloss.Style) string {
	if n != 1 && (noun == "error" || noun == "warning") {
		noun += "s"
	}
	text := fmt.Sprintf("%d %s", n, noun)
	if n == 0 {
		return faintStyle.Render(text)
	}
	return style.Render(text)
}

func severityIcon(s domain.Severity) string {
	switch s {
	case domain.SeverityError:
		return failStyle.Render("✗")
	case domain.SeverityWarning:
		return warnStyle.Render("!")
	case domain.SeveritySkipped:
		return skipStyle.Render("○")
	default:
		return passStyle.Render("●")
	}
}

func statusColor(s domain.Status) lipgloss.Color {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return fg
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderRunLog formats the run log for terminal output.
func RenderRunLog(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No runs recorded.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := shortHash(e.Revision)
		if hash == "" {
			hash = "·······"
		}
		status := lipgloss.NewStyle().
			Foreground(statusColor(e.Status)).
			Render(padRight(string(e.Status), 18))

		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(e.Timestamp.UTC().Format("2006-01-02 15:04")),
			faintStyle.Render(hash),
			status,
			renderCounts(e.Counts),
		)
		if e.Service != "" {
			line += "  " + fileStyle.Render("["+e.Service+"]")
		}

		if i > 0 {
			diff := e.Counts.Error - entries[i-1].Counts.Error
			if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
