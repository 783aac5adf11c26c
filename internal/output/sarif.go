package output

import (
	"encoding/json"
	"io"
	"maps"
	"slices"

	"github.com/openaudit/auditengine/internal/report"
	"github.com/openaudit/auditengine/internal/scoring"
	"github.com/openaudit/auditengine/internal/types"
)

// ToolVersion is the auditengine version reported in SARIF output.
var ToolVersion = "dev"

// SARIFFormatter outputs static findings in SARIF 2.1.0 format, one run per
// analyzer, for GitHub Code Scanning.
type SARIFFormatter struct{}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Results     []sarifResult     `json:"results"`
	Invocations []sarifInvocation `json:"invocations"`
	Properties  map[string]any    `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	RuleIndex  int             `json:"ruleIndex"`
	Level      string          `json:"level"`
	Message    sarifMessage    `json:"message"`
	Locations  []sarifLocation `json:"locations,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

type sarifInvocation struct {
	ExecutionSuccessful bool                `json:"executionSuccessful"`
	Notifications       []sarifNotification `json:"toolExecutionNotifications,omitempty"`
}

type sarifNotification struct {
	Level   string       `json:"level"`
	Message sarifMessage `json:"message"`
}

var informationURI = map[string]string{
	"slither": "https://github.com/crytic/slither",
	"mythril": "https://github.com/Consensys/mythril",
}

func (f *SARIFFormatter) Format(w io.Writer, rep *report.Report) error {
	scores := map[string]float64{}
	for _, s := range severityScores(rep) {
		scores[s.FindingID] = s.Score
	}

	runs := []sarifRun{}
	for _, tool := range slices.Sorted(maps.Keys(rep.StaticResults)) {
		runs = append(runs, f.run(tool, rep, scores))
	}

	log := sarifLog{
		Schema:  "https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs:    runs,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func (f *SARIFFormatter) run(tool string, rep *report.Report, scores map[string]float64) sarifRun {
	ruleIndex := map[string]int{}
	rules := []sarifRule{}
	results := []sarifResult{}

	for _, raw := range rep.StaticResults[tool] {
		finding := scoring.Coerce(raw)
		if finding.Tool == "" {
			finding.Tool = tool
		}
		if _, ok := ruleIndex[finding.Check]; !ok {
			ruleIndex[finding.Check] = len(rules)
			name := finding.Title
			if name == "" {
				name = finding.Check
			}
			rules = append(rules, sarifRule{
				ID:               finding.Check,
				Name:             name,
				ShortDescription: sarifMessage{Text: name},
				DefaultConfig:    sarifDefaultConfig{Level: severityToLevel(finding.Severity)},
			})
		}

		msg := finding.Description
		if msg == "" {
			msg = finding.Check
		}
		r := sarifResult{
			RuleID:    finding.Check,
			RuleIndex: ruleIndex[finding.Check],
			Level:     severityToLevel(finding.Severity),
			Message:   sarifMessage{Text: msg},
		}
		if finding.File != "" {
			r.Locations = []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: finding.File},
					Region:           sarifRegion{StartLine: max(finding.Line, 1)},
				},
			}}
		}
		props := map[string]any{}
		if finding.Confidence != "" {
			props["confidence"] = finding.Confidence
		}
		if score, ok := scores[finding.ID()]; ok {
			props["security-severity"] = score
		}
		if len(props) > 0 {
			r.Properties = props
		}
		results = append(results, r)
	}

	inv := sarifInvocation{ExecutionSuccessful: true}
	if msg, failed := rep.Errors[tool]; failed {
		inv.ExecutionSuccessful = false
		inv.Notifications = []sarifNotification{{Level: "error", Message: sarifMessage{Text: msg}}}
	}

	return sarifRun{
		Tool: sarifTool{
			Driver: sarifDriver{
				Name:           tool,
				Version:        ToolVersion,
				InformationURI: informationURI[tool],
				Rules:          rules,
			},
		},
		Results:     results,
		Invocations: []sarifInvocation{inv},
		Properties:  map[string]any{"run_id": rep.RunID, "duration_ms": rep.Duration.Milliseconds()},
	}
}

func severityToLevel(sev types.Severity) string {
	switch sev {
	case types.SeverityCritical, types.SeverityHigh:
		return "error"
	case types.SeverityMedium:
		return "warning"
	case types.SeverityLow:
		return "note"
	default:
		return "none"
	}
}
