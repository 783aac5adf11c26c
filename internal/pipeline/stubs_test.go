package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/config"
	"github.com/stretchr/testify/require"
)

// behavior is what a stub does when invoked.
type behavior struct {
	out   any
	err   error
	panic any
	sleep time.Duration // ignores ctx while sleeping
	block bool          // waits for ctx
}

type spy struct {
	name  string
	b     behavior
	calls atomic.Int32

	mu       sync.Mutex
	received []any
}

func (s *spy) Name() string { return s.name }

func (s *spy) do(ctx context.Context) (any, error) {
	s.calls.Add(1)
	if s.b.sleep > 0 {
		time.Sleep(s.b.sleep)
	}
	if s.b.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.b.panic != nil {
		panic(s.b.panic)
	}
	return s.b.out, s.b.err
}

func (s *spy) Analyze(ctx context.Context, _ string) (any, error)  { return s.do(ctx) }
func (s *spy) RunTests(ctx context.Context, _ string) (any, error) { return s.do(ctx) }
func (s *spy) Fuzz(ctx context.Context, _ string) (any, error)     { return s.do(ctx) }

func (s *spy) Score(ctx context.Context, findings []any) ([]any, error) {
	s.mu.Lock()
	s.received = slices.Clone(findings)
	s.mu.Unlock()
	out, err := s.do(ctx)
	if err != nil {
		return nil, err
	}
	scores, _ := out.([]any)
	return scores, nil
}

func (s *spy) findings() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.received
}

// fixture is one spy per slot plus the registry that hands them out.
type fixture struct {
	slither, mythril, echidna, fuzzer, scoring *spy
	registry                                   *adapter.Registry
}

func newFixture(behaviors map[string]behavior) *fixture {
	f := &fixture{registry: adapter.NewRegistry()}
	mk := func(name string) *spy {
		s := &spy{name: name, b: behaviors[name]}
		f.registry.Register(name, adapter.Factory{NewBare: adapter.Bare(func() *spy { return s })})
		return s
	}
	f.slither = mk(config.KeySlither)
	f.mythril = mk(config.KeyMythril)
	f.echidna = mk(config.KeyEchidna)
	f.fuzzer = mk(config.KeyFuzzer)
	f.scoring = mk(config.KeyScoring)
	return f
}

func (f *fixture) totalCalls() int32 {
	return f.slither.calls.Load() + f.mythril.calls.Load() + f.echidna.calls.Load() +
		f.fuzzer.calls.Load() + f.scoring.calls.Load()
}

func writeTarget(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Vault.sol")
	require.NoError(t, os.WriteFile(path, []byte("pragma solidity ^0.8.0;\ncontract Vault {}\n"), 0o644))
	return path
}
