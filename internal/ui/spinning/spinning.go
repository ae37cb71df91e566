// Package spinning provides a friendly spinning symbol, with a progress message, to use while a
// program is training, and the handling of Ctrl+C to stop it gracefully.
package spinning

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"k8s.io/klog/v2"
)

// Spinning displays a spinning symbol followed by a status message, updated on a separate goroutine
// until Done is called.
type Spinning struct {
	wg     sync.WaitGroup
	cancel func()

	muStatus sync.Mutex
	status   string
}

var (
	ThemeAscii = []rune("|/-\\")
	ThemeDots  = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

	// Theme defaults to ThemeAscii, but it can be set to anything else before calling New.
	Theme = ThemeAscii

	// Output where the spinning is displayed.
	Output io.Writer = os.Stdout

	// Period between updates of the display.
	Period = 250 * time.Millisecond
)

// SafeInterrupt will capture SigInt (Ctrl+C) and SigTerm and call the provided onInterrupt.
// If the program haven't exited after gracePeriod, it will call Reset to reset the terminal
// and exit.
func SafeInterrupt(onInterrupt func(), gracePeriod time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		_, _ = fmt.Fprintln(Output)
		klog.Errorf("Got interrupted (signal %q), shutting down... (%s)", s, gracePeriod)
		if onInterrupt != nil {
			go onInterrupt()
		}

		// Wait for gracePeriod before exiting.
		time.Sleep(gracePeriod)
		Reset()
		klog.Fatalf("Graceful shutting down %s period expired, exiting.", gracePeriod)
	}()
}

// Reset terminal: make cursor visible, restore default terminal colors.
func Reset() {
	_, _ = fmt.Fprint(Output, "\033[?25h\033[39;49;0m\n") // Restore cursor and colors.
}

// New starts a spinning display that runs on a separate goroutine.
// It stops when Spinning.Done is called, or when ctx is cancelled.
func New(ctx context.Context) *Spinning {
	s := &Spinning{}
	ctx, s.cancel = context.WithCancel(ctx)
	theme := Theme
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(Period)
		defer ticker.Stop()
		_, _ = fmt.Fprint(Output, "\033[?25l")       // Hide cursor.
		defer fmt.Fprint(Output, "\033[?25h\033[0K") // Restore cursor, clear line.

		for idx := 0; ; idx = (idx + 1) % len(theme) {
			_, _ = fmt.Fprintf(Output, "\r%c %s\033[0K", theme[idx], s.Status())
			select {
			case <-ctx.Done():
				_, _ = fmt.Fprint(Output, "\r")
				return
			case <-ticker.C:
				// continue
			}
		}
	}()
	return s
}

// SetStatus changes the message displayed after the spinning symbol.
func (s *Spinning) SetStatus(format string, args ...any) {
	s.muStatus.Lock()
	defer s.muStatus.Unlock()
	s.status = fmt.Sprintf(format, args...)
}

// Status returns the current status message.
func (s *Spinning) Status() string {
	s.muStatus.Lock()
	defer s.muStatus.Unlock()
	return s.status
}

// Done stops the spinning and waits for the display goroutine to finish.
func (s *Spinning) Done() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
}
