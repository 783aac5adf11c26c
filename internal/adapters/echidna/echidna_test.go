package echidna_test

import (
	"testing"

	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/adapters/echidna"
	"github.com/openaudit/auditengine/internal/config"
	"github.com/openaudit/auditengine/internal/types"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := []byte("Analyzing contract: Vault\n" + `{
	  "success": true,
	  "error": null,
	  "tests": [
	    {"contract": "Vault", "name": "echidna_balance_le_supply", "status": "passed", "error": null},
	    {"contract": "Vault", "name": "echidna_no_drain", "status": "solved", "error": null},
	    {"contract": "Vault", "name": "echidna_owner", "status": "error", "error": "revert in constructor"}
	  ]
	}`)
	rep, err := echidna.Parse(data)
	require.NoError(t, err)
	require.Equal(t, "echidna", rep.Tool)
	require.Equal(t, 1, rep.Passed)
	require.Equal(t, 2, rep.Failed)
	require.Len(t, rep.Tests, 3)
	require.Equal(t, types.TestFailed, rep.Tests[1].Status)
	require.Equal(t, "revert in constructor", rep.Tests[2].Message)

	failures := rep.Failures()
	require.Len(t, failures, 2)
	require.Equal(t, "echidna_no_drain", failures[0].Name)
}

func TestParseErrors(t *testing.T) {
	_, err := echidna.Parse([]byte(`{"success": false, "error": "compilation failed", "tests": []}`))
	require.ErrorContains(t, err, "compilation failed")

	rep, err := echidna.Parse([]byte("garbage"))
	require.Error(t, err)
	require.NotNil(t, rep.Tests)
}

func TestFactory(t *testing.T) {
	built, err := echidna.Factory().Build(config.Section{"contract": "Vault", "test_limit": 5000})
	require.NoError(t, err)
	r, err := adapter.As[adapter.TestRunner]("echidna", built)
	require.NoError(t, err)
	require.Equal(t, "echidna", r.Name())
}
