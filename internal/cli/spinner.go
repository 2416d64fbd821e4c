package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is a terminal progress indicator. It starts animating immediately
// and stops on Stop or when its parent context is cancelled.
type Spinner struct {
	message string
	cancel  context.CancelFunc
	stopped chan struct{}
	mu      sync.Mutex
}

// startSpinner creates and starts a spinner with the given message.
func startSpinner(ctx context.Context, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &Spinner{
		message: message,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *Spinner) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.clearLine()
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			s.mu.Lock()
			fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
			s.mu.Unlock()
		}
	}
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.cancel()
	<-s.stopped
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(format string, args ...any) {
	s.Stop()
	printSuccess(format, args...)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(format string, args ...any) {
	s.Stop()
	printError(format, args...)
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
