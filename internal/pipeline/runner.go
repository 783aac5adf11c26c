package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/openaudit/auditengine/internal/normalize"
	"github.com/openaudit/auditengine/internal/report"
)

// DefaultTimeout bounds each adapter call when neither the caller nor the
// configuration sets a timeout.
const DefaultTimeout = 5 * time.Minute

// Stage names, used in logs, spans and progress events.
const (
	StageStatic  = "static"
	StageDynamic = "dynamic"
	StageScoring = "scoring"
)

// Event reports progress of a run. Tool is empty for stage-level events.
type Event struct {
	RunID string
	Stage string
	Tool  string
	Done  bool
	Err   error
}

// Runner executes audits. A zero Runner is usable: it logs nowhere, traces
// to a no-op provider and uses the configured or default timeouts.
type Runner struct {
	Logger *slog.Logger
	Tracer trace.Tracer
	// Timeout, when positive, overrides every configured adapter timeout.
	Timeout time.Duration
	// Progress, when set, is called from the run's goroutines.
	Progress func(Event)
}

// Run audits target with the adapters in st. Adapter failures are recorded in
// the report's errors map and never abort the run. Run returns an error only
// when the target does not exist or ctx is done.
func (r *Runner) Run(ctx context.Context, st *State, target string) (*report.Report, error) {
	runID := report.NewRunID()
	log := r.logger().With("run_id", runID)

	ctx, span := r.tracer().Start(ctx, "audit.run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("target", target),
	))
	defer span.End()

	if err := checkTarget(target); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	started := time.Now()
	log.Info("audit started", "target", target)
	errs := newCollector()

	// Static stage.
	staticOut := make([]any, len(st.Static))
	r.stage(ctx, runID, StageStatic, func(ctx context.Context, wg *sync.WaitGroup) {
		for i, b := range st.Static {
			wg.Go(func() {
				staticOut[i] = r.invoke(ctx, log, errs, runID, StageStatic, b.Slot, r.timeout(st, b.Timeout),
					b.Adapter.Analyze, target)
			})
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, r.abort(span, log, err)
	}

	// Dynamic stage.
	dynamic := make(map[string]any, 2)
	var testsOut, fuzzOut any
	r.stage(ctx, runID, StageDynamic, func(ctx context.Context, wg *sync.WaitGroup) {
		wg.Go(func() {
			testsOut = r.invoke(ctx, log, errs, runID, StageDynamic, st.Tests.Slot, r.timeout(st, st.Tests.Timeout),
				st.Tests.Adapter.RunTests, target)
		})
		wg.Go(func() {
			fuzzOut = r.invoke(ctx, log, errs, runID, StageDynamic, st.Fuzz.Slot, r.timeout(st, st.Fuzz.Timeout),
				st.Fuzz.Adapter.Fuzz, target)
		})
	})
	if err := ctx.Err(); err != nil {
		return nil, r.abort(span, log, err)
	}
	dynamic[st.Tests.Slot] = orEmpty(testsOut, errs.has(st.Tests.Slot))
	dynamic[st.Fuzz.Slot] = orEmpty(fuzzOut, errs.has(st.Fuzz.Slot))

	// Normalization. Failed tools produced nil, which normalizes to empty.
	static := make(map[string][]any, len(st.Static))
	var all []any
	for i, b := range st.Static {
		findings := normalize.Findings(staticOut[i])
		static[b.Slot] = findings
		all = append(all, findings...)
	}
	if all == nil {
		all = []any{}
	}

	// Scoring.
	var scoresOut any
	r.stage(ctx, runID, StageScoring, func(ctx context.Context, wg *sync.WaitGroup) {
		scoresOut = r.invoke(ctx, log, errs, runID, StageScoring, report.ScoringKey, r.timeout(st, st.Scorer.Timeout),
			func(ctx context.Context, _ string) (any, error) {
				return st.Scorer.Adapter.Score(ctx, all)
			}, target)
	})
	if err := ctx.Err(); err != nil {
		return nil, r.abort(span, log, err)
	}
	scores, _ := scoresOut.([]any)

	rep := report.Assemble(report.Stages{
		RunID:     runID,
		Target:    target,
		StartedAt: started,
		Finished:  time.Now(),
		Static:    static,
		Dynamic:   dynamic,
		Scores:    scores,
		Errors:    errs.snapshot(),
	})
	span.SetAttributes(attribute.Int("errors", len(rep.Errors)))
	log.Info("audit finished", "duration", rep.Duration, "errors", len(rep.Errors))
	return rep, nil
}

func checkTarget(target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrTargetNotFound, target)
	}
	return nil
}

// stage runs fn under a stage span and waits for every goroutine it starts.
func (r *Runner) stage(ctx context.Context, runID, name string, fn func(context.Context, *sync.WaitGroup)) {
	ctx, span := r.tracer().Start(ctx, "audit.stage."+name, trace.WithAttributes(attribute.String("stage", name)))
	defer span.End()
	r.emit(Event{RunID: runID, Stage: name})

	var wg sync.WaitGroup
	fn(ctx, &wg)
	wg.Wait()

	r.emit(Event{RunID: runID, Stage: name, Done: true})
}

// invoke calls one adapter in isolation. Errors, panics and timeouts are
// recorded under tool and yield a nil output. The call is abandoned, not
// killed, when it outlives its timeout.
func (r *Runner) invoke(
	ctx context.Context,
	log *slog.Logger,
	errs *collector,
	runID, stage, tool string,
	timeout time.Duration,
	call func(context.Context, string) (any, error),
	target string,
) any {
	ctx, span := r.tracer().Start(ctx, "audit.adapter", trace.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("stage", stage),
	))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		out any
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("panic: %v", p)}
			}
		}()
		out, err := call(callCtx, target)
		done <- result{out: out, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-callCtx.Done():
		res.err = callCtx.Err()
	}
	if res.err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		res.err = fmt.Errorf("timed out after %s", timeout)
	}

	if res.err != nil {
		errs.set(tool, res.err.Error())
		span.RecordError(res.err)
		span.SetStatus(codes.Error, res.err.Error())
		log.Warn("adapter failed", "tool", tool, "stage", stage, "error", res.err)
		r.emit(Event{RunID: runID, Stage: stage, Tool: tool, Done: true, Err: res.err})
		return nil
	}
	log.Debug("adapter finished", "tool", tool, "stage", stage)
	r.emit(Event{RunID: runID, Stage: stage, Tool: tool, Done: true})
	return res.out
}

func (r *Runner) abort(span trace.Span, log *slog.Logger, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.Warn("audit aborted", "error", err)
	return err
}

// timeout resolves the per-call timeout: runner override, then the tool's
// section, then the engine section, then DefaultTimeout.
func (r *Runner) timeout(st *State, tool time.Duration) time.Duration {
	switch {
	case r.Timeout > 0:
		return r.Timeout
	case tool > 0:
		return tool
	case st.Timeout > 0:
		return st.Timeout
	default:
		return DefaultTimeout
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (r *Runner) tracer() trace.Tracer {
	if r.Tracer != nil {
		return r.Tracer
	}
	return noop.NewTracerProvider().Tracer("auditengine")
}

func (r *Runner) emit(e Event) {
	if r.Progress != nil {
		r.Progress(e)
	}
}

// orEmpty substitutes an empty sequence for the output of a failed tool.
func orEmpty(out any, failed bool) any {
	if failed {
		return []any{}
	}
	return out
}

// collector gathers per-tool error messages from concurrent adapter calls.
type collector struct {
	mu sync.Mutex
	m  map[string]string
}

func newCollector() *collector {
	return &collector{m: make(map[string]string)}
}

func (c *collector) set(tool, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[tool] = msg
}

func (c *collector) has(tool string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.m[tool]
	return ok
}

func (c *collector) snapshot() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}
	return out
}
