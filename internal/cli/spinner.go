package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// spinnerFrames moves a station marker back and forth along a short line.
var spinnerFrames = []string{"●───", "─●──", "──●─", "───●", "──●─", "─●──"}

const spinnerInterval = 90 * time.Millisecond

// spinner animates while a pipeline stage blocks. It redraws a single line
// on w and clears it on stop. The message can change between stages.
type spinner struct {
	w        io.Writer
	interval time.Duration

	mu    sync.Mutex
	msg   string
	drawn int // width of the last drawn line

	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newSpinner(w io.Writer, msg string, interval time.Duration) *spinner {
	return &spinner{
		w:        w,
		interval: interval,
		msg:      msg,
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// startSpinner draws to w until stop is called or ctx is done.
func startSpinner(ctx context.Context, w io.Writer, msg string) *spinner {
	s := newSpinner(w, msg, spinnerInterval)
	s.start(ctx)
	return s
}

func (s *spinner) start(ctx context.Context) {
	go func() {
		defer close(s.stopped)
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for i := 0; ; i++ {
			s.draw(spinnerFrames[i%len(spinnerFrames)])
			select {
			case <-ctx.Done():
				return
			case <-s.quit:
				return
			case <-t.C:
			}
		}
	}()
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.msg)
	width := lipgloss.Width(line)
	pad := ""
	if s.drawn > width {
		pad = strings.Repeat(" ", s.drawn-width)
	}
	fmt.Fprintf(s.w, "\r%s%s", line, pad)
	s.drawn = width
}

func (s *spinner) setMessage(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// stop halts the animation and clears the line. It is safe to call more
// than once.
func (s *spinner) stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.stopped

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn))
		s.drawn = 0
	}
}

// fail stops the spinner and prints msg as an error.
func (s *spinner) fail(msg string) {
	s.stop()
	printError("%s", msg)
}
