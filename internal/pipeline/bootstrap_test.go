package pipeline_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/config"
	"github.com/openaudit/auditengine/internal/pipeline"
	"github.com/stretchr/testify/require"
)

func TestBootstrapPassesSections(t *testing.T) {
	f := newFixture(nil)
	var got config.Section
	f.registry.Register(config.KeySlither, adapter.Factory{
		New: adapter.Configured(func(sec config.Section) (*spy, error) {
			got = sec
			return &spy{name: config.KeySlither}, nil
		}),
	})
	var gotMythril config.Section
	f.registry.Register(config.KeyMythril, adapter.Factory{
		New: adapter.Configured(func(sec config.Section) (*spy, error) {
			gotMythril = sec
			return &spy{name: config.KeyMythril}, nil
		}),
	})

	cfg := config.Config{config.KeySlither: config.Section{"solc": "0.8.20"}}
	st, err := pipeline.Bootstrap(cfg, f.registry)
	require.NoError(t, err)
	require.Equal(t, config.Section{"solc": "0.8.20"}, got)
	require.NotNil(t, gotMythril)
	require.Empty(t, gotMythril)

	require.Len(t, st.Static, 2)
	require.Equal(t, "slither", st.Static[0].Slot)
	require.Equal(t, "mythril", st.Static[1].Slot)
	require.Equal(t, "echidna", st.Tests.Slot)
	require.Equal(t, "fuzzer", st.Fuzz.Slot)
	require.Equal(t, "scoring", st.Scorer.Slot)
}

func TestBootstrapArityFallback(t *testing.T) {
	f := newFixture(nil)
	var configured, bare int
	f.registry.Register(config.KeyFuzzer, adapter.Factory{
		New: func(config.Section) (any, error) {
			configured++
			return nil, adapter.ErrConfigUnsupported
		},
		NewBare: func() (any, error) {
			bare++
			return &spy{name: config.KeyFuzzer}, nil
		},
	})

	st, err := pipeline.Bootstrap(config.Config{config.KeyFuzzer: config.Section{"x": 1}}, f.registry)
	require.NoError(t, err)
	require.Equal(t, 1, configured)
	require.Equal(t, 1, bare)
	require.Equal(t, "fuzzer", st.Fuzz.Adapter.Name())
}

func TestBootstrapConstructionFailure(t *testing.T) {
	f := newFixture(nil)
	f.registry.Register(config.KeyEchidna, adapter.Factory{
		New: func(config.Section) (any, error) {
			return nil, errors.New("contract is required")
		},
		NewBare: func() (any, error) {
			t.Fatal("bare constructor must not mask a real failure")
			return nil, nil
		},
	})

	_, err := pipeline.Bootstrap(config.Config{}, f.registry)
	require.ErrorIs(t, err, pipeline.ErrConstruct)
	require.ErrorContains(t, err, "echidna")
	require.ErrorContains(t, err, "contract is required")
}

func TestBootstrapMissingFactory(t *testing.T) {
	reg := adapter.NewRegistry()
	_, err := pipeline.Bootstrap(config.Config{}, reg)
	require.ErrorIs(t, err, pipeline.ErrConstruct)
	require.ErrorContains(t, err, "slither")

	_, err = pipeline.Bootstrap(config.Config{}, nil)
	require.ErrorIs(t, err, pipeline.ErrConstruct)
}

type nameOnly struct{}

func (nameOnly) Name() string { return "scoring" }

func TestBootstrapMissingCapability(t *testing.T) {
	f := newFixture(nil)
	f.registry.Register(config.KeyScoring, adapter.Factory{NewBare: adapter.Bare(func() nameOnly { return nameOnly{} })})

	_, err := pipeline.Bootstrap(config.Config{}, f.registry)
	require.ErrorIs(t, err, pipeline.ErrConstruct)
	require.ErrorContains(t, err, "scoring")
}

func TestBootstrapTimeouts(t *testing.T) {
	f := newFixture(nil)
	cfg := config.Config{
		config.KeyEngine:  config.Section{"timeout": "2m"},
		config.KeyMythril: config.Section{"timeout": 90},
	}
	st, err := pipeline.Bootstrap(cfg, f.registry)
	require.NoError(t, err)
	require.Equal(t, 2*time.Minute, st.Timeout)
	require.Zero(t, st.Static[0].Timeout)
	require.Equal(t, 90*time.Second, st.Static[1].Timeout)

	for _, cfg := range []config.Config{
		{config.KeyEngine: config.Section{"timeout": "soon"}},
		{config.KeySlither: config.Section{"timeout": []any{1}}},
	} {
		_, err := pipeline.Bootstrap(cfg, f.registry)
		require.ErrorIs(t, err, config.ErrShape, fmt.Sprint(cfg))
	}
}

func TestBootstrapConstructsOnce(t *testing.T) {
	f := newFixture(nil)
	calls := 0
	f.registry.Register(config.KeySlither, adapter.Factory{NewBare: func() (any, error) {
		calls++
		return &spy{name: config.KeySlither}, nil
	}})
	st, err := pipeline.Bootstrap(config.Config{}, f.registry)
	require.NoError(t, err)

	r := &pipeline.Runner{}
	target := writeTarget(t)
	for range 3 {
		_, err := r.Run(t.Context(), st, target)
		require.NoError(t, err)
	}
	require.Equal(t, 1, calls)
}
