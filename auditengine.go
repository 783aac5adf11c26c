// Package auditengine orchestrates smart-contract vulnerability tools against
// a single target: static analyzers, a property tester and a fuzzer, then a
// severity scorer, merged into one report.
//
// This is the library entry point. For the CLI tool, see cmd/auditengine/.
package auditengine

import (
	"context"
	"fmt"

	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/adapters/builtin"
	"github.com/openaudit/auditengine/internal/config"
	"github.com/openaudit/auditengine/internal/pipeline"
	"github.com/openaudit/auditengine/internal/report"
	"github.com/openaudit/auditengine/internal/types"
)

// Re-export core types from internal packages so consumers don't need to
// import them.
type (
	Report        = report.Report
	Finding       = types.Finding
	Severity      = types.Severity
	SeverityScore = types.SeverityScore
	TestReport    = types.TestReport
	Event         = pipeline.Event

	Registry = adapter.Registry
	Factory  = adapter.Factory
	Section  = config.Section

	StaticAnalyzer = adapter.StaticAnalyzer
	TestRunner     = adapter.TestRunner
	Fuzzer         = adapter.Fuzzer
	Scorer         = adapter.Scorer
)

const (
	SeverityInfo     = types.SeverityInfo
	SeverityLow      = types.SeverityLow
	SeverityMedium   = types.SeverityMedium
	SeverityHigh     = types.SeverityHigh
	SeverityCritical = types.SeverityCritical
)

// Errors returned by New and Run. Match them with errors.Is.
var (
	ErrConfigNotFound    = config.ErrNotFound
	ErrConfigParse       = config.ErrParse
	ErrConfigShape       = config.ErrShape
	ErrConstruct         = pipeline.ErrConstruct
	ErrTargetNotFound    = pipeline.ErrTargetNotFound
	ErrConfigUnsupported = adapter.ErrConfigUnsupported
)

// Engine holds the configuration and adapters for a series of runs. It is
// safe for concurrent use when its adapters are.
type Engine struct {
	state  *pipeline.State
	runner *pipeline.Runner
}

// New loads the configuration at configPath and constructs every adapter.
func New(configPath string, opts ...Option) (*Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// NewFromConfig builds an engine from an already parsed configuration.
func NewFromConfig(cfg map[string]Section, opts ...Option) (*Engine, error) {
	o := applyOpts(opts)
	reg := o.registry
	if reg == nil {
		reg = builtin.Registry()
	}
	st, err := pipeline.Bootstrap(config.Config(cfg), reg)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("engine constructed", "static_tools", len(st.Static))
	return &Engine{
		state: st,
		runner: &pipeline.Runner{
			Logger:   o.logger,
			Tracer:   o.tracerProvider.Tracer("github.com/openaudit/auditengine"),
			Timeout:  o.timeout,
			Progress: o.progress,
		},
	}, nil
}

// Run audits target. Tool failures are reported in the returned report's
// Errors map; an error is returned only when target is not an existing file
// or ctx is done.
func (e *Engine) Run(ctx context.Context, target string) (*Report, error) {
	rep, err := e.runner.Run(ctx, e.state, target)
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", target, err)
	}
	return rep, nil
}

// DefaultRegistry returns a fresh registry with the built-in adapters. Callers
// may replace single slots before passing it to WithRegistry.
func DefaultRegistry() *Registry {
	return builtin.Registry()
}

// Slots returns the adapter slot names in execution order.
func Slots() []string {
	names := make([]string, len(adapter.Slots))
	for i, s := range adapter.Slots {
		names[i] = s.Name
	}
	return names
}

// SlotKind returns the capability a slot requires ("static", "tests",
// "fuzz" or "scorer"), or "" for an unknown slot.
func SlotKind(slot string) string {
	for _, s := range adapter.Slots {
		if s.Name == slot {
			return s.Kind.String()
		}
	}
	return ""
}
