package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/openaudit/auditengine/internal/pipeline"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner displays an animated braille spinner on a writer (typically stderr)
// while a run is in progress. Update and Observe may be called from any
// goroutine.
type Spinner struct {
	mu      sync.Mutex
	w       io.Writer
	message string
	done    chan struct{}
	stopped bool

	total    int
	finished int
	failed   int
}

// NewSpinner creates a spinner that writes to w. total is the number of tool
// invocations expected, used for the "n/total" counter; zero hides it.
func NewSpinner(w io.Writer, total int) *Spinner {
	return &Spinner{w: w, total: total}
}

// Start begins the spinner animation with the given message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	s.message = message
	s.done = make(chan struct{})
	s.stopped = false
	s.mu.Unlock()

	go s.loop()
}

// Update changes the displayed message while the spinner is running.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Observe turns a pipeline progress event into a status message. It has the
// signature expected by the engine's progress option.
func (s *Spinner) Observe(e pipeline.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case e.Tool == "" && !e.Done:
		s.message = fmt.Sprintf("Running %s stage...", e.Stage)
		return
	case e.Tool == "":
		return
	}
	s.finished++
	status := "done"
	if e.Err != nil {
		s.failed++
		status = "failed"
	}
	msg := fmt.Sprintf("%s: %s %s", e.Stage, e.Tool, status)
	if s.total > 0 {
		msg += fmt.Sprintf(" (%d/%d)", s.finished, s.total)
	}
	s.message = msg
}

// Failed returns how many tool invocations reported an error so far.
func (s *Spinner) Failed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Stop halts the spinner and clears its line. It is idempotent.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.stopped || s.done == nil {
		s.stopped = true
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.done)

	s.mu.Lock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", 80))
	s.mu.Unlock()
}

func (s *Spinner) loop() {
	tick := time.NewTicker(80 * time.Millisecond)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.done:
			return
		case <-tick.C:
			s.mu.Lock()
			if s.stopped {
				s.mu.Unlock()
				return
			}
			// Pad to overwrite leftovers from a longer previous message.
			fmt.Fprintf(s.w, "%-80s", fmt.Sprintf("\r%c %s", spinnerFrames[i%len(spinnerFrames)], s.message))
			s.mu.Unlock()
		}
	}
}
