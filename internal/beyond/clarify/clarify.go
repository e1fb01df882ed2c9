// Package clarify asks the user for a missing slot value. It allows exactly
// one prompt per command cycle and holds at most one pending request.
package clarify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/beyondtyping/beyond/internal/beyond/slots"
)

// DefaultTimeout bounds the wait for the follow-up answer.
const DefaultTimeout = 10 * time.Second

var (
	// ErrAbandoned means no usable answer arrived: timeout, silence, an answer
	// too short to be a value, or a listener fault. It is never retried.
	ErrAbandoned = errors.New("clarification abandoned")
	// ErrAlreadyAsked is returned for a second clarification in the same
	// cycle.
	ErrAlreadyAsked = errors.New("clarification already used this cycle")
)

// Listener captures the follow-up utterance. "", nil means nothing was heard.
type Listener interface {
	Listen(ctx context.Context, timeout time.Duration) (string, error)
}

// Speaker plays the prompt. It returns once the prompt has been delivered.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// State of the controller.
type State int

const (
	// Resolved is the resting state: nothing is pending.
	Resolved State = iota
	// AwaitingClarification means a prompt was spoken and an answer is
	// awaited.
	AwaitingClarification
	// Abandoned means the last clarification produced no value.
	Abandoned
)

func (s State) String() string {
	switch s {
	case AwaitingClarification:
		return "awaiting_clarification"
	case Abandoned:
		return "abandoned"
	default:
		return "resolved"
	}
}

// Pending is one outstanding request for a slot value.
type Pending struct {
	Intent    string    `json:"intent"`
	HandlerID string    `json:"handler"`
	Slot      string    `json:"slot"`
	Prompt    string    `json:"prompt"`
	AskedAt   time.Time `json:"asked_at"`
}

// Controller runs the clarification round-trip.
type Controller struct {
	listener Listener
	speaker  Speaker
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending *Pending
	state   State
	asked   bool
}

// New creates a Controller. A non-positive timeout uses DefaultTimeout.
func New(listener Listener, speaker Speaker, timeout time.Duration, logger *slog.Logger) *Controller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{listener: listener, speaker: speaker, timeout: timeout, logger: logger}
}

// Begin starts a new command cycle: any stale pending request is discarded
// and one clarification becomes available again.
func (c *Controller) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.logger.Debug("discarding stale clarification", "intent", c.pending.Intent, "slot", c.pending.Slot)
	}
	c.pending = nil
	c.state = Resolved
	c.asked = false
}

// Pending returns the outstanding request, if any.
func (c *Controller) Pending() (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Pending{}, false
	}
	return *c.pending, true
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Clarify speaks p.Prompt, waits for one answer and extracts spec's value
// from it. The answer is stripped of spec's fillers and canonicalized like
// any other slot value; if it is still missing the clarification is
// abandoned rather than asked again.
func (c *Controller) Clarify(ctx context.Context, p Pending, spec slots.Spec) (string, error) {
	c.mu.Lock()
	if c.asked {
		c.mu.Unlock()
		return "", ErrAlreadyAsked
	}
	c.asked = true
	p.AskedAt = time.Now()
	c.pending = &p
	c.state = AwaitingClarification
	c.mu.Unlock()

	value, err := c.roundTrip(ctx, p, spec)

	c.mu.Lock()
	c.pending = nil
	if err != nil {
		c.state = Abandoned
	} else {
		c.state = Resolved
	}
	c.mu.Unlock()
	return value, err
}

func (c *Controller) roundTrip(ctx context.Context, p Pending, spec slots.Spec) (string, error) {
	if err := c.speaker.Speak(ctx, p.Prompt); err != nil {
		return "", fmt.Errorf("%w: prompt not delivered: %v", ErrAbandoned, err)
	}

	answer, err := c.listener.Listen(ctx, c.timeout)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAbandoned, err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return "", fmt.Errorf("%w: no answer for %s", ErrAbandoned, p.Slot)
	}

	value, ok := slots.Extract(answer, "", spec)
	if !ok {
		return "", fmt.Errorf("%w: answer %q is not a usable %s", ErrAbandoned, answer, p.Slot)
	}
	c.logger.Debug("clarification resolved", "intent", p.Intent, "slot", p.Slot)
	return value, nil
}
