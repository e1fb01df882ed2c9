// Package console is a text stand-in for the microphone and speaker: each
// input line is one utterance and responses are printed.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/beyondtyping/beyond/internal/beyond/voiceloop"
)

// Console reads utterances from an io.Reader and speaks to an io.Writer.
type Console struct {
	out    io.Writer
	prompt string

	mu    sync.Mutex
	lines chan string
	err   error
	done  chan struct{}

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New starts reading lines from in. prompt is printed before each wait;
// empty disables it.
func New(in io.Reader, out io.Writer, prompt string) *Console {
	c := &Console{
		out:    out,
		prompt: prompt,
		lines:  make(chan string),
		done:   make(chan struct{}),
		stopCh: make(chan struct{}),
	}
	go c.read(in)
	return c
}

func (c *Console) read(in io.Reader) {
	defer close(c.done)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-c.stopCh:
			return
		}
	}
	c.mu.Lock()
	c.err = scanner.Err()
	c.mu.Unlock()
}

// Stop releases the reader. A line read after Stop is discarded and
// Listen reports voiceloop.ErrListenerClosed. A reader blocked on input
// exits after its next line or at EOF.
func (c *Console) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Listen waits up to timeout for a line. A timeout is "", nil; end of
// input is voiceloop.ErrListenerClosed.
func (c *Console) Listen(ctx context.Context, timeout time.Duration) (string, error) {
	select {
	case <-c.stopCh:
		return "", voiceloop.ErrListenerClosed
	default:
	}
	if c.prompt != "" {
		fmt.Fprint(c.out, c.prompt)
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case line := <-c.lines:
		return line, nil
	case <-c.done:
		c.mu.Lock()
		err := c.err
		c.mu.Unlock()
		if err != nil {
			return "", fmt.Errorf("%w: %v", voiceloop.ErrListenerClosed, err)
		}
		return "", voiceloop.ErrListenerClosed
	case <-c.stopCh:
		return "", voiceloop.ErrListenerClosed
	case <-timer.C:
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Speak prints text on its own line.
func (c *Console) Speak(_ context.Context, text string) error {
	_, err := fmt.Fprintf(c.out, "Beyond: %s\n", text)
	return err
}
