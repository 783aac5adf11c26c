package output

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/openaudit/auditengine/internal/report"
	"github.com/openaudit/auditengine/internal/types"
)

// MarkdownFormatter outputs the report as GitHub-flavored markdown,
// designed for GitHub Actions Job Summaries and PR comments.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, rep *report.Report) error {
	findings := staticFindings(rep)

	if len(findings) == 0 {
		fmt.Fprintf(w, "### :white_check_mark: Audit: no static findings\n\n")
	} else {
		fmt.Fprintf(w, "### :rotating_light: Audit: %d findings\n\n", len(findings))
	}
	fmt.Fprintf(w, "> **Target:** `%s` · run `%s` · %.2fs\n\n", rep.Target, rep.RunID, rep.Duration.Seconds())

	if len(findings) > 0 {
		counts := countBySeverity(findings)
		var badges []string
		for _, sev := range severities {
			if c := counts[sev]; c > 0 {
				badges = append(badges, fmt.Sprintf("%s **%d %s**", severityEmoji(sev), c, sev.String()))
			}
		}
		fmt.Fprintf(w, "%s\n\n", strings.Join(badges, " · "))
		f.printFindings(w, findings)
	}
	f.printTestFailures(w, testFailures(rep))
	f.printErrors(w, rep.Errors)

	fmt.Fprintf(w, "---\n<sub>auditengine %s</sub>\n", ToolVersion)
	return nil
}

func (f *MarkdownFormatter) printFindings(w io.Writer, findings []types.Finding) {
	for _, sev := range severities {
		var filtered []types.Finding
		for _, finding := range findings {
			if finding.Severity == sev {
				filtered = append(filtered, finding)
			}
		}
		if len(filtered) == 0 {
			continue
		}

		open := ""
		if sev >= types.SeverityHigh {
			open = " open"
		}
		fmt.Fprintf(w, "<details%s>\n", open)
		fmt.Fprintf(w, "<summary>%s %s (%d)</summary>\n\n", severityEmoji(sev), sev.String(), len(filtered))
		fmt.Fprintf(w, "| Check | Tool | Location | Description |\n")
		fmt.Fprintf(w, "|-------|------|----------|-------------|\n")
		for _, finding := range filtered {
			fmt.Fprintf(w, "| `%s` | %s | `%s` | %s |\n",
				finding.Check, finding.Tool, location(finding), escapePipe(truncate(finding.Description, 120)))
		}
		fmt.Fprintf(w, "\n</details>\n\n")
	}
}

func (f *MarkdownFormatter) printTestFailures(w io.Writer, failures []types.TestCase) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(w, "#### Failed properties\n\n")
	for _, tc := range failures {
		fmt.Fprintf(w, "- `%s` %s\n", tc.Name, tc.Status)
	}
	fmt.Fprintln(w)
}

func (f *MarkdownFormatter) printErrors(w io.Writer, errs map[string]string) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "#### :warning: Tool errors\n\n")
	for _, tool := range slices.Sorted(maps.Keys(errs)) {
		fmt.Fprintf(w, "- **%s**: %s\n", tool, escapePipe(truncate(errs[tool], 200)))
	}
	fmt.Fprintln(w)
}

func severityEmoji(sev types.Severity) string {
	switch sev {
	case types.SeverityCritical:
		return ":red_circle:"
	case types.SeverityHigh:
		return ":orange_circle:"
	case types.SeverityMedium:
		return ":yellow_circle:"
	case types.SeverityLow:
		return ":large_blue_circle:"
	default:
		return ":white_circle:"
	}
}

func escapePipe(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
