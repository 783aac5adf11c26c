package slither_test

import (
	"context"
	"errors"
	"testing"

	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/adapters/slither"
	"github.com/openaudit/auditengine/internal/config"
	"github.com/openaudit/auditengine/internal/types"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "success": true,
  "error": null,
  "results": {
    "detectors": [
      {
        "check": "reentrancy-eth",
        "impact": "High",
        "confidence": "Medium",
        "description": "Reentrancy in Vault.withdraw (src/Vault.sol#10-20)\n",
        "markdown": "Reentrancy in [Vault.withdraw](src/Vault.sol#L10-L20)\n",
        "elements": [
          {"name": "withdraw", "source_mapping": {"filename_relative": "src/Vault.sol", "filename_short": "Vault.sol", "lines": [10, 11, 12]}}
        ]
      },
      {
        "check": "solc-version",
        "impact": "Informational",
        "confidence": "High",
        "description": "Pragma version too old",
        "elements": []
      }
    ]
  }
}`

func TestParse(t *testing.T) {
	findings, err := slither.Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, findings, 2)

	f := findings[0]
	require.Equal(t, "slither", f.Tool)
	require.Equal(t, "reentrancy-eth", f.Check)
	require.Equal(t, types.SeverityHigh, f.Severity)
	require.Equal(t, "Medium", f.Confidence)
	require.Equal(t, "Reentrancy in Vault.withdraw", f.Description)
	require.Equal(t, "src/Vault.sol", f.File)
	require.Equal(t, 10, f.Line)

	require.Equal(t, types.SeverityInfo, findings[1].Severity)
	require.Equal(t, "Pragma version too old", findings[1].Description)
	require.Empty(t, findings[1].File)
}

func TestParseFailure(t *testing.T) {
	_, err := slither.Parse([]byte(`{"success": false, "error": "solc not found", "results": {}}`))
	require.ErrorContains(t, err, "solc not found")

	_, err = slither.Parse([]byte("Traceback (most recent call last)"))
	var ae *adapter.Error
	require.True(t, errors.As(err, &ae))
	require.Equal(t, adapter.CodeParseError, ae.Code)
}

func TestNew(t *testing.T) {
	a, err := slither.New(config.Section{})
	require.NoError(t, err)
	require.Equal(t, "slither", a.Name())

	_, err = slither.New(config.Section{"binary": ""})
	require.Error(t, err)

	built, err := slither.Factory().Build(config.Section{"solc": "0.8.20"})
	require.NoError(t, err)
	_, err = adapter.As[adapter.StaticAnalyzer]("slither", built)
	require.NoError(t, err)
}

func TestAnalyzeMissingBinary(t *testing.T) {
	a, err := slither.New(config.Section{"binary": "no-such-slither-binary"})
	require.NoError(t, err)
	_, err = a.Analyze(context.Background(), "Vault.sol")
	var ae *adapter.Error
	require.True(t, errors.As(err, &ae))
	require.Equal(t, adapter.CodeBinaryNotFound, ae.Code)
}
