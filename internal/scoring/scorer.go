// Package scoring is the built-in severity scorer. It deduplicates findings
// and assigns each a 0-10 score from its severity and confidence.
package scoring

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/config"
	"github.com/openaudit/auditengine/internal/types"
)

const name = config.KeyScoring

// DefaultWeights maps severity to base score points.
var DefaultWeights = map[types.Severity]float64{
	types.SeverityCritical: 10,
	types.SeverityHigh:     7.5,
	types.SeverityMedium:   5,
	types.SeverityLow:      2.5,
	types.SeverityInfo:     1,
}

// confidenceMultiplier scales the base score. Unknown confidence counts as high.
var confidenceMultiplier = map[string]float64{
	"high":   1.0,
	"medium": 0.8,
	"low":    0.6,
}

// Scorer scores findings. It holds no per-call state.
type Scorer struct {
	weights   map[types.Severity]float64
	downgrade bool
}

// New builds a scorer from its section. Recognized keys: weights (severity
// name to points) and downgrade_low_confidence (default true).
func New(sec config.Section) (*Scorer, error) {
	s := NewBare()
	s.downgrade = sec.Bool("downgrade_low_confidence", true)
	for k, v := range sec.Map("weights") {
		sev, err := types.ParseSeverity(k)
		if err != nil {
			return nil, fmt.Errorf("scoring weights: %w", err)
		}
		w, ok := number(v)
		if !ok || w < 0 {
			return nil, fmt.Errorf("scoring weights: %s must be a non-negative number", k)
		}
		s.weights[sev] = w
	}
	return s, nil
}

// NewBare returns a scorer with the default weights.
func NewBare() *Scorer {
	w := make(map[types.Severity]float64, len(DefaultWeights))
	for k, v := range DefaultWeights {
		w[k] = v
	}
	return &Scorer{weights: w, downgrade: true}
}

// Factory returns the registry entry for the scorer.
func Factory() adapter.Factory {
	return adapter.Factory{New: adapter.Configured(New)}
}

func (s *Scorer) Name() string { return name }

// Score deduplicates findings and returns one types.SeverityScore per unique
// finding, highest score first. Ties keep input order.
func (s *Scorer) Score(ctx context.Context, findings []any) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	coerced := make([]types.Finding, 0, len(findings))
	for _, raw := range findings {
		coerced = append(coerced, Coerce(raw))
	}

	unique := Deduplicate(coerced)
	scores := make([]types.SeverityScore, 0, len(unique))
	for _, f := range unique {
		scores = append(scores, s.score(f))
	}
	slices.SortStableFunc(scores, func(a, b types.SeverityScore) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	out := make([]any, len(scores))
	for i, sc := range scores {
		out[i] = sc
	}
	return out, nil
}

func (s *Scorer) score(f types.Finding) types.SeverityScore {
	conf := strings.ToLower(f.Confidence)
	sev := f.Severity
	if s.downgrade && conf == "low" {
		sev = types.DowngradeSeverity(sev)
	}
	mult, ok := confidenceMultiplier[conf]
	if !ok {
		mult = 1.0
	}
	score := math.Round(s.weights[sev]*mult*100) / 100
	if score > 10 {
		score = 10
	}
	return types.SeverityScore{
		FindingID: f.ID(),
		Tool:      f.Tool,
		Check:     f.Check,
		Severity:  sev,
		Score:     score,
		Rating:    Rating(score),
	}
}

// Rating maps a score to a qualitative band.
func Rating(score float64) string {
	switch {
	case score >= 9:
		return "CRITICAL"
	case score >= 7:
		return "HIGH"
	case score >= 4:
		return "MEDIUM"
	case score >= 1:
		return "LOW"
	default:
		return "INFO"
	}
}
