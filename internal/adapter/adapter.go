// Package adapter defines the capabilities the engine drives and the
// factories that construct them.
//
// Adapters are built once per engine and then shared by every run on that
// engine. Runs may execute concurrently, and within a run the adapters of one
// stage are invoked concurrently, so implementations must be safe for
// concurrent use. The engine cannot enforce this.
package adapter

import "context"

// Named is implemented by every adapter.
type Named interface {
	Name() string
}

// StaticAnalyzer inspects the target without executing it. The result may be
// nil, a single record, or a sequence of records; the engine normalizes it.
type StaticAnalyzer interface {
	Named
	Analyze(ctx context.Context, target string) (any, error)
}

// TestRunner executes property tests against the target and returns an
// opaque report.
type TestRunner interface {
	Named
	RunTests(ctx context.Context, target string) (any, error)
}

// Fuzzer drives the target with generated inputs and returns opaque findings.
type Fuzzer interface {
	Named
	Fuzz(ctx context.Context, target string) (any, error)
}

// Scorer turns normalized findings into severity scores. The score values are
// passed through to the report untouched.
type Scorer interface {
	Named
	Score(ctx context.Context, findings []any) ([]any, error)
}
