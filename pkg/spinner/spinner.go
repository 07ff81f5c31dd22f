// Package spinner shows a one-line status indicator while the CLI waits on
// the processor or renders charts.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// ANSI escape sequences for terminal control.
const (
	hideCursor     = "\033[?25l"
	showCursor     = "\033[?25h"
	carriageReturn = "\r"

	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"

	symbolSuccess = "✓"
	symbolFailure = "✗"
)

// Frames are the animation characters.
var Frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Config holds configuration options for a spinner.
type Config struct {
	Message string

	// RefreshRate defaults to 80ms.
	RefreshRate time.Duration

	// Writer defaults to os.Stderr.
	Writer io.Writer

	// IsTTY overrides terminal detection. Without a terminal the spinner
	// prints one line per Start, Update and final status.
	IsTTY *bool
}

// Spinner displays an animated status line.
type Spinner struct {
	mu sync.Mutex

	message string
	rate    time.Duration
	out     io.Writer
	tty     bool

	active  bool
	started time.Time
	frame   int
	width   int
	stop    chan struct{}
	done    chan struct{}
}

// New creates a spinner writing to stderr.
func New(message string) *Spinner {
	return NewWithConfig(Config{Message: message})
}

// NewWithConfig creates a spinner from cfg, filling in defaults.
func NewWithConfig(cfg Config) *Spinner {
	s := &Spinner{
		message: cfg.Message,
		rate:    cfg.RefreshRate,
		out:     cfg.Writer,
	}
	if s.rate <= 0 {
		s.rate = 80 * time.Millisecond
	}
	if s.out == nil {
		s.out = os.Stderr
	}
	s.tty = isTerminal(s.out)
	if cfg.IsTTY != nil {
		s.tty = *cfg.IsTTY
	}
	return s
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Message returns the current message.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// IsActive reports whether the spinner is running.
func (s *Spinner) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start begins the animation. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.started = time.Now()
	s.frame = 0

	if !s.tty {
		fmt.Fprintf(s.out, "%s...\n", s.message)
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	fmt.Fprint(s.out, hideCursor)
	go s.spin(s.stop, s.done)
}

func (s *Spinner) spin(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.rate)
	defer ticker.Stop()

	s.render()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	line := fmt.Sprintf("%s %s %s", Frames[s.frame%len(Frames)], s.message, formatElapsed(time.Since(s.started)))
	s.frame++
	s.clear()
	fmt.Fprint(s.out, line)
	s.width = len(line)
}

// clear must be called with mu held.
func (s *Spinner) clear() {
	if s.width > 0 {
		fmt.Fprint(s.out, carriageReturn+strings.Repeat(" ", s.width)+carriageReturn)
		s.width = 0
	}
}

// Update changes the message. Without a terminal the new message is
// printed straight away.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if s.active && !s.tty {
		fmt.Fprintf(s.out, "%s...\n", message)
	}
}

// Stop halts the animation and erases the line. It blocks until the
// animation goroutine has exited.
func (s *Spinner) Stop() {
	s.halt()
}

// Success stops the spinner and prints a green check. An empty message
// repeats the current one.
func (s *Spinner) Success(message string) {
	s.finish(message, symbolSuccess, colorGreen)
}

// Fail stops the spinner and prints a red cross.
func (s *Spinner) Fail(message string) {
	s.finish(message, symbolFailure, colorRed)
}

// halt stops the animation and returns the time it ran for.
func (s *Spinner) halt() time.Duration {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return 0
	}
	s.active = false
	elapsed := time.Since(s.started)
	stop, done := s.stop, s.done
	s.mu.Unlock()

	if stop == nil {
		return elapsed
	}
	close(stop)
	<-done

	s.mu.Lock()
	s.clear()
	fmt.Fprint(s.out, showCursor)
	s.mu.Unlock()
	return elapsed
}

func (s *Spinner) finish(message, symbol, color string) {
	elapsed := s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()
	if message == "" {
		message = s.message
	}
	line := symbol + " " + message
	if s.tty {
		line = color + symbol + colorReset + " " + message
	}
	if elapsed > 0 {
		line += " " + formatElapsed(elapsed)
	}
	fmt.Fprintln(s.out, line)
}

// formatElapsed formats d as "(1.2s)" or "(1m 30s)".
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("(%.1fs)", d.Seconds())
	}
	return fmt.Sprintf("(%dm %ds)", int(d.Minutes()), int(d.Seconds())%60)
}
