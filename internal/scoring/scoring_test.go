package scoring_test

import (
	"context"
	"testing"

	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/config"
	"github.com/openaudit/auditengine/internal/scoring"
	"github.com/openaudit/auditengine/internal/types"
	"github.com/stretchr/testify/require"
)

func TestDeduplicate(t *testing.T) {
	findings := []types.Finding{
		{Tool: "slither", Check: "R1", File: "a.sol", Line: 5, Severity: types.SeverityHigh},
		{Tool: "slither", Check: "R2", File: "a.sol", Line: 10, Severity: types.SeverityLow},
		{Tool: "slither", Check: "R1", File: "a.sol", Line: 5, Severity: types.SeverityCritical}, // dup, higher sev
		{Tool: "mythril", Check: "R1", File: "a.sol", Line: 5, Severity: types.SeverityLow},     // other tool
	}

	result := scoring.Deduplicate(findings)
	require.Len(t, result, 3)
	require.Equal(t, types.SeverityCritical, result[0].Severity)
	require.Equal(t, "R2", result[1].Check)
	require.Equal(t, "mythril", result[2].Tool)
}

func TestScore(t *testing.T) {
	s := scoring.NewBare()
	out, err := s.Score(context.Background(), []any{
		types.Finding{Tool: "slither", Check: "solc-version", Severity: types.SeverityInfo},
		types.Finding{Tool: "slither", Check: "reentrancy-eth", Severity: types.SeverityHigh, Confidence: "Medium"},
		&types.Finding{Tool: "mythril", Check: "SWC-106", Severity: types.SeverityCritical},
		map[string]any{"tool": "custom", "id": "weak-prng", "impact": "Medium", "confidence": "Low"},
		"free-form note",
	})
	require.NoError(t, err)
	require.Len(t, out, 5)

	scores := make([]types.SeverityScore, len(out))
	for i, v := range out {
		scores[i] = v.(types.SeverityScore)
	}

	require.Equal(t, "SWC-106", scores[0].Check)
	require.Equal(t, 10.0, scores[0].Score)
	require.Equal(t, "CRITICAL", scores[0].Rating)

	require.Equal(t, "reentrancy-eth", scores[1].Check)
	require.Equal(t, 6.0, scores[1].Score) // 7.5 * 0.8
	require.Equal(t, "MEDIUM", scores[1].Rating)

	// Low confidence downgrades MEDIUM to LOW, then scales: 2.5 * 0.6.
	require.Equal(t, "weak-prng", scores[2].Check)
	require.Equal(t, types.SeverityLow, scores[2].Severity)
	require.Equal(t, 1.5, scores[2].Score)
	require.Equal(t, "custom:weak-prng::0", scores[2].FindingID)

	require.Equal(t, 1.0, scores[3].Score)
	require.Equal(t, 1.0, scores[4].Score)
	require.Equal(t, "free-form note", scores[4].Check)
}

func TestScoreEmpty(t *testing.T) {
	out, err := scoring.NewBare().Score(context.Background(), []any{})
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestScoreCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := scoring.NewBare().Score(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewWeights(t *testing.T) {
	s, err := scoring.New(config.Section{
		"weights":                  map[string]any{"high": 9, "informational": 0.5},
		"downgrade_low_confidence": false,
	})
	require.NoError(t, err)

	out, err := s.Score(context.Background(), []any{
		types.Finding{Check: "a", Severity: types.SeverityHigh, Confidence: "Low"},
		types.Finding{Check: "b", Severity: types.SeverityInfo},
	})
	require.NoError(t, err)
	require.Equal(t, 5.4, out[0].(types.SeverityScore).Score) // 9 * 0.6, no downgrade
	require.Equal(t, 0.5, out[1].(types.SeverityScore).Score)

	_, err = scoring.New(config.Section{"weights": map[string]any{"severe": 3}})
	require.Error(t, err)
	_, err = scoring.New(config.Section{"weights": map[string]any{"high": "lots"}})
	require.Error(t, err)
}

func TestCoerceMap(t *testing.T) {
	f := scoring.Coerce(map[string]any{
		"swc-id": 107, "severity": "High", "filename": "Vault.sol", "lineno": "42",
	})
	require.Equal(t, "107", f.Check)
	require.Equal(t, types.SeverityHigh, f.Severity)
	require.Equal(t, "Vault.sol", f.File)
	require.Equal(t, 42, f.Line)

	var nilFinding *types.Finding
	require.Equal(t, types.SeverityInfo, scoring.Coerce(nilFinding).Severity)
}

func TestFactory(t *testing.T) {
	built, err := scoring.Factory().Build(config.Section{})
	require.NoError(t, err)
	_, err = adapter.As[adapter.Scorer]("scoring", built)
	require.NoError(t, err)

	_, err = scoring.Factory().Build(config.Section{"weights": map[string]any{"high": "lots"}})
	require.Error(t, err)
	require.NotErrorIs(t, err, adapter.ErrConfigUnsupported)
}
