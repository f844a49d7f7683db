// Package progress provides CLI progress indicators for sync and pull.
// Output goes to stderr to keep stdout clean for piping (and for -o json),
// and nothing is drawn unless stderr is a terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// minItems is the minimum number of flags before showing progress.
// Small runs finish before a counter is worth reading.
const minItems = 5

// tick is the spinner frame interval.
const tick = 100 * time.Millisecond

// Progress tracks and displays per-flag progress.
type Progress struct {
	w       io.Writer
	label   string
	total   int
	current int
	width   int
	isTTY   bool
}

// New creates a progress reporter that writes to stderr.
// If total is less than minItems, progress updates are suppressed.
func New(label string, total int) *Progress {
	return &Progress{
		w:     os.Stderr,
		label: label,
		total: total,
		isTTY: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Increment advances the progress counter by one.
func (p *Progress) Increment() {
	p.current++
}

// Print writes the current progress, updating the line in place.
func (p *Progress) Print() {
	if !p.active() {
		return
	}
	pct := 0
	if p.total > 0 {
		pct = (p.current * 100) / p.total
	}
	line := fmt.Sprintf("%s... %d/%d (%d%%)", p.label, p.current, p.total, pct)
	p.width = max(p.width, len(line))
	fmt.Fprintf(p.w, "\r%s", line)
}

// Done clears the progress line to make way for final output.
func (p *Progress) Done() {
	if !p.active() || p.width == 0 {
		return
	}
	erase(p.w, p.width)
}

func (p *Progress) active() bool {
	return p.isTTY && p.total >= minItems
}

// Spinner shows that a request of unknown length, such as listing remote
// flags, is in flight. It animates on its own goroutine until Stop.
type Spinner struct {
	w      io.Writer
	label  string
	isTTY  bool
	frames []string

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewSpinner creates a spinner that writes to stderr.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		w:      os.Stderr,
		label:  label,
		isTTY:  term.IsTerminal(int(os.Stderr.Fd())),
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins animating. Calling Start on a running spinner does nothing.
func (s *Spinner) Start() {
	if !s.isTTY {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(tick)
	defer t.Stop()
	for frame := 0; ; frame = (frame + 1) % len(s.frames) {
		fmt.Fprintf(s.w, "\r%s %s...", s.frames[frame], s.label)
		select {
		case <-stop:
			erase(s.w, len(s.label)+8)
			return
		case <-t.C:
		}
	}
}

// Stop halts the animation and clears the line. It waits for the last
// frame to be erased so following output starts on a clean line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func erase(w io.Writer, width int) {
	fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", width))
}
