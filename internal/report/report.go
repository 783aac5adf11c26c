// Package report assembles stage outputs into the terminal Report of a run.
package report

import (
	"encoding/json"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ScoringKey is the errors key used when the scorer fails.
const ScoringKey = "scoring"

// Report is the result of one engine run. It is created fresh per run and
// owned by the caller once returned.
type Report struct {
	RunID          string            `json:"run_id"`
	Target         string            `json:"target"`
	StartedAt      time.Time         `json:"started_at"`
	Duration       time.Duration     `json:"-"`
	StaticResults  map[string][]any  `json:"static_results"`
	DynamicResults map[string]any    `json:"dynamic_results"`
	SeverityScores []any             `json:"severity_scores"`
	Errors         map[string]string `json:"errors"`
}

// MarshalJSON serializes Duration as milliseconds.
func (r Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal(struct {
		Alias
		DurationMS int64 `json:"duration_ms"`
	}{
		Alias:      Alias(r),
		DurationMS: r.Duration.Milliseconds(),
	})
}

// HasErrors reports whether any stage recorded a failure.
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// FailedTools returns the keys of the errors map in sorted order.
func (r *Report) FailedTools() []string {
	return slices.Sorted(maps.Keys(r.Errors))
}

// Stages carries the intermediate outputs of a run.
type Stages struct {
	RunID     string
	Target    string
	StartedAt time.Time
	Finished  time.Time
	Static    map[string][]any
	Dynamic   map[string]any
	Scores    []any
	Errors    map[string]string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Assemble merges stage outputs into a Report. It copies every map so later
// writes to s do not leak into the report, and it never returns nil
// collections: absent stages show up as empty.
func Assemble(s Stages) *Report {
	r := &Report{
		RunID:          s.RunID,
		Target:         s.Target,
		StartedAt:      s.StartedAt,
		StaticResults:  make(map[string][]any, len(s.Static)),
		DynamicResults: make(map[string]any, len(s.Dynamic)),
		SeverityScores: s.Scores,
		Errors:         make(map[string]string, len(s.Errors)),
	}
	if r.RunID == "" {
		r.RunID = NewRunID()
	}
	if !s.Finished.IsZero() && !s.StartedAt.IsZero() {
		r.Duration = s.Finished.Sub(s.StartedAt)
	}
	for tool, findings := range s.Static {
		if findings == nil {
			findings = []any{}
		}
		r.StaticResults[tool] = findings
	}
	maps.Copy(r.DynamicResults, s.Dynamic)
	maps.Copy(r.Errors, s.Errors)
	if r.SeverityScores == nil {
		r.SeverityScores = []any{}
	}
	return r
}
