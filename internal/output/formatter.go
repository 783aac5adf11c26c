// Package output formats audit reports for terminal (ANSI), JSON, SARIF,
// and Markdown output.
package output

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/openaudit/auditengine/internal/report"
	"github.com/openaudit/auditengine/internal/scoring"
	"github.com/openaudit/auditengine/internal/types"
)

// Formatter is the interface for outputting audit reports.
type Formatter interface {
	Format(w io.Writer, rep *report.Report) error
}

// ForName returns the formatter for a --format value. Unknown names fall back
// to the terminal formatter.
func ForName(name string, noColor bool) Formatter {
	switch strings.ToLower(name) {
	case "json":
		return &JSONFormatter{}
	case "sarif":
		return &SARIFFormatter{}
	case "markdown", "md":
		return &MarkdownFormatter{}
	default:
		return &TerminalFormatter{NoColor: noColor}
	}
}

var severities = []types.Severity{
	types.SeverityCritical,
	types.SeverityHigh,
	types.SeverityMedium,
	types.SeverityLow,
	types.SeverityInfo,
}

// staticFindings flattens the static results into findings, highest severity
// first. Ties keep tool order. Records that are not types.Finding are
// coerced the same way the scorer reads them.
func staticFindings(rep *report.Report) []types.Finding {
	tools := slices.Sorted(maps.Keys(rep.StaticResults))
	var out []types.Finding
	for _, tool := range tools {
		for _, raw := range rep.StaticResults[tool] {
			f := scoring.Coerce(raw)
			if f.Tool == "" {
				f.Tool = tool
			}
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, func(a, b types.Finding) int {
		return cmp.Compare(b.Severity, a.Severity)
	})
	return out
}

// severityScores returns the entries of the report's scores that the
// built-in scorer produced. Other scorers' output is skipped.
func severityScores(rep *report.Report) []types.SeverityScore {
	var out []types.SeverityScore
	for _, s := range rep.SeverityScores {
		switch v := s.(type) {
		case types.SeverityScore:
			out = append(out, v)
		case *types.SeverityScore:
			if v != nil {
				out = append(out, *v)
			}
		}
	}
	return out
}

// testFailures lists the failed property tests in the dynamic results.
func testFailures(rep *report.Report) []types.TestCase {
	var out []types.TestCase
	for _, tool := range slices.Sorted(maps.Keys(rep.DynamicResults)) {
		switch v := rep.DynamicResults[tool].(type) {
		case types.TestReport:
			out = append(out, v.Failures()...)
		case *types.TestReport:
			if v != nil {
				out = append(out, v.Failures()...)
			}
		}
	}
	return out
}

func countBySeverity(findings []types.Finding) map[types.Severity]int {
	counts := map[types.Severity]int{}
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

func location(f types.Finding) string {
	switch {
	case f.File == "":
		return "-"
	case f.Line > 0:
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	default:
		return f.File
	}
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
