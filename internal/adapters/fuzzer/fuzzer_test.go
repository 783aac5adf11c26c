package fuzzer_test

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/adapters/fuzzer"
	"github.com/openaudit/auditengine/internal/config"
	"github.com/openaudit/auditengine/internal/types"
	"github.com/stretchr/testify/require"
)

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"array", `[{"check":"overflow","severity":"HIGH"},{"check":"dos","severity":"low"}]`, 2},
		{"object", `{"findings":[{"check":"overflow","severity":"MEDIUM"}]}`, 1},
		{"empty object", `{"findings":[]}`, 0},
		{"lines", "{\"check\":\"a\"}\n\n{\"check\":\"b\",\"line\":3}\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fuzzer.Parse([]byte(tt.in))
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Len(t, got, tt.want)
			for _, f := range got {
				require.Equal(t, "fuzzer", f.Tool)
			}
		})
	}
}

func TestParseSeverity(t *testing.T) {
	got, err := fuzzer.Parse([]byte(`[{"tool":"medusa","check":"overflow","severity":"High"}]`))
	require.NoError(t, err)
	require.Equal(t, types.SeverityHigh, got[0].Severity)
	require.Equal(t, "medusa", got[0].Tool)
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"crash!", "[1,", "{\"check\":\"a\"}\n{oops"} {
		_, err := fuzzer.Parse([]byte(in))
		var ae *adapter.Error
		require.True(t, errors.As(err, &ae), in)
		require.Equal(t, adapter.CodeParseError, ae.Code)
	}
}

func TestFactoryEmptySectionBuildsUnconfigured(t *testing.T) {
	for name, sec := range map[string]config.Section{
		"empty":        {},
		"timeout only": {"timeout": "30s"},
	} {
		t.Run(name, func(t *testing.T) {
			built, err := fuzzer.Factory().Build(sec)
			require.NoError(t, err)
			f, err := adapter.As[adapter.Fuzzer]("fuzzer", built)
			require.NoError(t, err)

			_, err = f.Fuzz(context.Background(), "Vault.sol")
			var ae *adapter.Error
			require.True(t, errors.As(err, &ae))
			require.Equal(t, adapter.CodeInvalidInput, ae.Code)
		})
	}
}

func TestNewRejectsBadCommand(t *testing.T) {
	for name, sec := range map[string]config.Section{
		"not a list":  {"command": 42},
		"misspelled":  {"comand": []any{"medusa", "fuzz"}, "dir": "/x"},
		"empty list":  {"command": []any{}},
		"empty value": {"command": ""},
	} {
		t.Run(name, func(t *testing.T) {
			f, err := fuzzer.New(sec)
			require.Error(t, err)
			require.Nil(t, f)
			require.NotErrorIs(t, err, adapter.ErrConfigUnsupported)

			_, err = fuzzer.Factory().Build(sec)
			require.Error(t, err)
		})
	}
}

func TestFuzzRunsCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found")
	}
	f, err := fuzzer.New(config.Section{
		"command": []any{"sh", "-c", `printf '[{"check":"reach","file":"%s"}]' "$0"`, "{target}"},
	})
	require.NoError(t, err)

	out, err := f.Fuzz(context.Background(), "Vault.sol")
	require.NoError(t, err)
	findings := out.([]types.Finding)
	require.Len(t, findings, 1)
	require.Equal(t, "Vault.sol", findings[0].File)
}
