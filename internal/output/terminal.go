package output

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/openaudit/auditengine/internal/report"
	"github.com/openaudit/auditengine/internal/types"
)

// ANSI color codes
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
)

const (
	barWidth    = 40
	lineWidth   = 72
	checkWidth  = 28
	toolWidth   = 10
	topScores   = 10
	detailWidth = 60
)

// TerminalFormatter outputs a triage-oriented summary of the report.
type TerminalFormatter struct {
	NoColor bool
	Verbose bool
}

func (f *TerminalFormatter) color(code, text string) string {
	if f.NoColor {
		return text
	}
	return code + text + reset
}

func (f *TerminalFormatter) Format(w io.Writer, rep *report.Report) error {
	findings := staticFindings(rep)

	f.printHeader(w, rep)
	f.printTools(w, rep)

	if len(findings) == 0 {
		fmt.Fprintf(w, "\n  %s No static findings.\n", f.color(cyan, "✔"))
	} else {
		f.printDashboard(w, countBySeverity(findings))
		f.printFindings(w, findings)
	}
	f.printScores(w, severityScores(rep))
	f.printTestFailures(w, testFailures(rep))

	f.printFooter(w, rep, len(findings))
	return nil
}

func (f *TerminalFormatter) separator() string {
	return strings.Repeat("─", lineWidth)
}

func (f *TerminalFormatter) sectionHeader(title string) string {
	prefix := "── " + title + " "
	remaining := max(lineWidth-utf8.RuneCountInString(prefix), 0)
	return prefix + strings.Repeat("─", remaining)
}

func (f *TerminalFormatter) printHeader(w io.Writer, rep *report.Report) {
	sep := f.separator()
	fmt.Fprintf(w, "\n%s\n", f.color(dim, sep))
	fmt.Fprintf(w, "  %s\n", f.color(bold, "AUDIT RESULTS"))

	parts := []string{}
	if rep.Target != "" {
		parts = append(parts, fmt.Sprintf("Target: %s", rep.Target))
	}
	if rep.Duration > 0 {
		parts = append(parts, fmt.Sprintf("%.2fs", rep.Duration.Seconds()))
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, "  ·  "))
	}
	fmt.Fprintf(w, "%s\n", f.color(dim, sep))
}

// printTools shows one status line per tool that ran or failed.
func (f *TerminalFormatter) printTools(w io.Writer, rep *report.Report) {
	seen := map[string]bool{}
	var tools []string
	for _, keys := range [][]string{
		slices.Sorted(maps.Keys(rep.StaticResults)),
		slices.Sorted(maps.Keys(rep.DynamicResults)),
		slices.Sorted(maps.Keys(rep.Errors)),
	} {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				tools = append(tools, k)
			}
		}
	}
	if len(tools) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n\n", f.color(bold, f.sectionHeader("TOOLS")))
	for _, tool := range tools {
		name := fmt.Sprintf("%-*s", toolWidth, tool)
		if msg, failed := rep.Errors[tool]; failed {
			fmt.Fprintf(w, "  %s %s %s\n", f.color(red, "✖"), name, f.color(dim, truncate(msg, detailWidth)))
			continue
		}
		detail := ""
		if findings, ok := rep.StaticResults[tool]; ok {
			detail = fmt.Sprintf("%d findings", len(findings))
		}
		fmt.Fprintf(w, "  %s %s %s\n", f.color(green, "✔"), name, f.color(dim, detail))
	}
}

func (f *TerminalFormatter) printDashboard(w io.Writer, counts map[types.Severity]int) {
	largest := 0
	for _, c := range counts {
		largest = max(largest, c)
	}
	if largest == 0 {
		return
	}

	fmt.Fprintln(w)
	total := 0
	for _, sev := range severities {
		c := counts[sev]
		total += c
		if c == 0 {
			continue
		}
		label := fmt.Sprintf("  %-10s", sev.String())
		fmt.Fprintf(w, "%s %s %4d\n", f.color(bold, label), f.renderBar(c, largest, barWidth, sev), c)
	}
	fmt.Fprintf(w, "\n  %s\n", f.color(bold, fmt.Sprintf("%d findings", total)))
}

func (f *TerminalFormatter) printFindings(w io.Writer, findings []types.Finding) {
	fmt.Fprintf(w, "\n%s\n\n", f.color(bold, f.sectionHeader("FINDINGS")))
	for _, finding := range findings {
		if !f.Verbose && finding.Severity < types.SeverityMedium {
			continue
		}
		fmt.Fprintf(w, "  %s %s %s %s\n",
			f.severityIcon(finding.Severity),
			f.color(bold, fmt.Sprintf("%-*s", checkWidth, truncate(finding.Check, checkWidth))),
			fmt.Sprintf("%-*s", toolWidth, finding.Tool),
			f.color(cyan, location(finding)),
		)
		if f.Verbose && finding.Description != "" {
			fmt.Fprintf(w, "      %s %s\n", f.color(dim, "│"), f.color(yellow, truncate(finding.Description, detailWidth)))
		}
	}
}

func (f *TerminalFormatter) printScores(w io.Writer, scores []types.SeverityScore) {
	if len(scores) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n\n", f.color(bold, f.sectionHeader("TOP SCORES")))
	for _, s := range scores[:min(len(scores), topScores)] {
		fmt.Fprintf(w, "  %5.2f  %-8s %s\n", s.Score, s.Rating, s.FindingID)
	}
}

func (f *TerminalFormatter) printTestFailures(w io.Writer, failures []types.TestCase) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n\n", f.color(bold, f.sectionHeader("FAILED PROPERTIES")))
	for _, tc := range failures {
		name := tc.Name
		if tc.Contract != "" {
			name = tc.Contract + "." + name
		}
		fmt.Fprintf(w, "  %s %s %s\n", f.color(red, "✖"), name, f.color(dim, string(tc.Status)))
	}
}

func (f *TerminalFormatter) printFooter(w io.Writer, rep *report.Report, findings int) {
	sep := f.separator()
	fmt.Fprintf(w, "\n%s\n", f.color(dim, sep))
	parts := []string{
		fmt.Sprintf("%d findings", findings),
		fmt.Sprintf("%d scored", len(rep.SeverityScores)),
		fmt.Sprintf("%d tool errors", len(rep.Errors)),
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(parts, " · "))
	fmt.Fprintf(w, "%s\n", f.color(dim, sep))
}

func (f *TerminalFormatter) severityIcon(sev types.Severity) string {
	switch sev {
	case types.SeverityCritical:
		return f.color(red+bold, "✖")
	case types.SeverityHigh:
		return f.color(red, "▲")
	case types.SeverityMedium:
		return f.color(yellow, "■")
	case types.SeverityLow:
		return f.color(blue, "●")
	default:
		return f.color(cyan, "○")
	}
}

func (f *TerminalFormatter) severityColor(sev types.Severity) string {
	switch sev {
	case types.SeverityCritical:
		return red + bold
	case types.SeverityHigh:
		return red
	case types.SeverityMedium:
		return yellow
	case types.SeverityLow:
		return blue
	default:
		return cyan
	}
}

func (f *TerminalFormatter) renderBar(count, largest, width int, sev types.Severity) string {
	filled := count * width / largest
	if filled == 0 && count > 0 {
		filled = 1
	}
	// Always keep at least 1 empty block so bar boundary is visible
	if filled >= width {
		filled = width - 1
	}
	return f.color(f.severityColor(sev), strings.Repeat("█", filled)) +
		f.color(dim, strings.Repeat("░", width-filled))
}
