package normalize_test

import (
	"iter"
	"testing"

	"github.com/openaudit/auditengine/internal/normalize"
	"github.com/openaudit/auditengine/internal/types"
	"github.com/stretchr/testify/require"
)

func TestFindingsEmptyInputs(t *testing.T) {
	var nilSlice []types.Finding
	var nilMap map[string]any
	var nilPtr *types.Finding

	for name, raw := range map[string]any{
		"nil":         nil,
		"nil slice":   nilSlice,
		"empty slice": []types.Finding{},
		"empty any":   []any{},
		"nil map":     nilMap,
		"empty map":   map[string]any{},
		"nil pointer": nilPtr,
		"empty str":   "",
		"false":       false,
		"zero":        0,
		"zero float":  0.0,
	} {
		t.Run(name, func(t *testing.T) {
			got := normalize.Findings(raw)
			require.NotNil(t, got)
			require.Empty(t, got)
		})
	}
}

func TestFindingsSequencePassThrough(t *testing.T) {
	in := []any{map[string]any{"check": "a"}, "b", 3}
	got := normalize.Findings(in)
	require.Equal(t, in, got)
}

func TestFindingsTypedSlice(t *testing.T) {
	in := []types.Finding{
		{Tool: "slither", Check: "reentrancy-eth"},
		{Tool: "slither", Check: "tx-origin"},
	}
	got := normalize.Findings(in)
	require.Equal(t, []any{in[0], in[1]}, got)

	arr := [2]string{"x", "y"}
	require.Equal(t, []any{"x", "y"}, normalize.Findings(arr))

	require.Equal(t, []any{in[0], in[1]}, normalize.Findings(&in))
}

func TestFindingsSingleRecord(t *testing.T) {
	rec := map[string]any{"check": "suicidal", "impact": "High"}
	require.Equal(t, []any{rec}, normalize.Findings(rec))

	f := types.Finding{Tool: "mythril", Check: "SWC-106"}
	require.Equal(t, []any{f}, normalize.Findings(f))

	require.Equal(t, []any{&f}, normalize.Findings(&f))
}

func TestFindingsIterable(t *testing.T) {
	var seq iter.Seq[any] = func(yield func(any) bool) {
		for _, v := range []any{"a", "b", "c"} {
			if !yield(v) {
				return
			}
		}
	}
	require.Equal(t, []any{"a", "b", "c"}, normalize.Findings(seq))

	plain := func(yield func(any) bool) { yield(1) }
	require.Equal(t, []any{1}, normalize.Findings(plain))
}

func TestFindingsScalars(t *testing.T) {
	for _, raw := range []any{"reentrancy", 42, 3.5, true, struct{}{}, make(chan int), func() {}} {
		got := normalize.Findings(raw)
		require.Len(t, got, 1)
	}
}

func TestFindingsNeverPanics(t *testing.T) {
	panicky := iter.Seq[any](func(yield func(any) bool) {
		panic("broken iterator")
	})
	require.NotPanics(t, func() {
		got := normalize.Findings(panicky)
		require.Len(t, got, 1)
	})
}

func TestFindingsIdempotent(t *testing.T) {
	inputs := []any{
		nil,
		[]types.Finding{{Check: "a"}, {Check: "b"}},
		map[string]any{"check": "c"},
		[]any{1, 2},
		"scalar",
		[]map[string]any{{"x": 1}},
	}
	for _, raw := range inputs {
		once := normalize.Findings(raw)
		require.Equal(t, once, normalize.Findings(once))
	}
}
