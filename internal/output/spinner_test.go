package output

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/openaudit/auditengine/internal/pipeline"
)

func TestSpinnerStartStop(t *testing.T) {
	var buf bytes.Buffer
	sp := NewSpinner(&buf, 0)
	sp.Start("Loading...")
	time.Sleep(200 * time.Millisecond)
	sp.Stop()

	out := buf.String()
	if !strings.Contains(out, "Loading...") {
		t.Errorf("expected spinner output to contain message, got %q", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("expected spinner to clear line with \\r at end")
	}
}

func TestSpinnerStopIdempotent(t *testing.T) {
	var buf bytes.Buffer
	sp := NewSpinner(&buf, 0)
	sp.Stop() // before Start

	sp.Start("test")
	time.Sleep(100 * time.Millisecond)
	sp.Stop()
	sp.Stop()
}

func TestSpinnerObserve(t *testing.T) {
	var buf bytes.Buffer
	sp := NewSpinner(&buf, 5)
	sp.Start("Starting audit...")

	sp.Observe(pipeline.Event{Stage: pipeline.StageStatic})
	sp.Observe(pipeline.Event{Stage: pipeline.StageStatic, Tool: "slither", Done: true})
	sp.Observe(pipeline.Event{Stage: pipeline.StageStatic, Tool: "mythril", Done: true, Err: errors.New("boom")})
	time.Sleep(150 * time.Millisecond)
	sp.Stop()

	out := buf.String()
	if !strings.Contains(out, "static: mythril failed (2/5)") {
		t.Errorf("expected progress message, got %q", out)
	}
	if sp.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", sp.Failed())
	}
}

func TestSpinnerConcurrentObserve(t *testing.T) {
	var buf bytes.Buffer
	sp := NewSpinner(&buf, 10)
	sp.Start("start")

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			sp.Observe(pipeline.Event{Stage: pipeline.StageDynamic, Tool: "fuzzer", Done: true})
		})
	}
	wg.Wait()
	sp.Stop()
	if !strings.Contains(sp.message, "(10/10)") {
		t.Errorf("message = %q", sp.message)
	}
}
