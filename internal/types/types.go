// Package types defines the finding, test report and severity score records
// shared by the built-in adapters, the scorer and the report package.
package types

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a finding.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityLow:
		return "LOW"
	case SeverityInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the severity by name so reports stay readable.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts any spelling ParseSeverity accepts.
func (s *Severity) UnmarshalText(b []byte) error {
	sev, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// ParseSeverity converts a string to a Severity level. Analyzer vocabularies
// differ (slither says "Informational" and "Optimization", mythril says
// "Medium"), so the common aliases are accepted too.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return SeverityCritical, nil
	case "HIGH":
		return SeverityHigh, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "LOW":
		return SeverityLow, nil
	case "INFO", "INFORMATIONAL", "OPTIMIZATION", "NOTE":
		return SeverityInfo, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity: %q", s)
	}
}

// DowngradeSeverity drops severity by one level, flooring at LOW.
// INFO is left unchanged (it's a different class, not part of the severity ladder).
func DowngradeSeverity(sev Severity) Severity {
	switch sev {
	case SeverityCritical:
		return SeverityHigh
	case SeverityHigh:
		return SeverityMedium
	case SeverityMedium:
		return SeverityLow
	default:
		return sev
	}
}

// Finding is the record the built-in static analyzers and the fuzzer emit.
// Third-party adapters are free to emit any other shape.
type Finding struct {
	Tool        string   `json:"tool"`
	Check       string   `json:"check"`
	Title       string   `json:"title,omitempty"`
	Severity    Severity `json:"severity"`
	Confidence  string   `json:"confidence,omitempty"`
	Description string   `json:"description,omitempty"`
	File        string   `json:"file,omitempty"`
	Line        int      `json:"line,omitempty"`
	SWC         string   `json:"swc,omitempty"`
}

// ID returns a stable identifier built from the tool, check and location.
func (f Finding) ID() string {
	return fmt.Sprintf("%s:%s:%s:%d", f.Tool, f.Check, f.File, f.Line)
}

// TestStatus is the outcome of one property or assertion test.
type TestStatus string

const (
	TestPassed TestStatus = "passed"
	TestFailed TestStatus = "failed"
	TestError  TestStatus = "error"
)

// TestCase is a single property test reported by a dynamic analyzer.
type TestCase struct {
	Contract string     `json:"contract,omitempty"`
	Name     string     `json:"name"`
	Status   TestStatus `json:"status"`
	Message  string     `json:"message,omitempty"`
}

// TestReport is the output of a property-testing run.
type TestReport struct {
	Tool   string     `json:"tool"`
	Passed int        `json:"passed"`
	Failed int        `json:"failed"`
	Tests  []TestCase `json:"tests"`
}

// Failures returns the failed or errored test cases.
func (r TestReport) Failures() []TestCase {
	var out []TestCase
	for _, tc := range r.Tests {
		if tc.Status != TestPassed {
			out = append(out, tc)
		}
	}
	return out
}

// SeverityScore is the built-in scorer's verdict on one finding.
type SeverityScore struct {
	FindingID string   `json:"finding_id"`
	Tool      string   `json:"tool,omitempty"`
	Check     string   `json:"check,omitempty"`
	Severity  Severity `json:"severity"`
	Score     float64  `json:"score"`
	Rating    string   `json:"rating"`
}
