// Package voiceloop runs the turn-based command loop: listen, process,
// speak, repeat until a stop command or a dead listener.
package voiceloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/beyondtyping/beyond/common/logging"
	"github.com/beyondtyping/beyond/common/retry"
	"github.com/beyondtyping/beyond/common/trace"
	"github.com/beyondtyping/beyond/internal/beyond/actions"
	"github.com/beyondtyping/beyond/internal/beyond/clarify"
	"github.com/beyondtyping/beyond/internal/beyond/engine"
	"github.com/beyondtyping/beyond/internal/beyond/store"
)

// ErrListenerClosed is returned by a Listener whose input is gone for good
// (stdin at EOF, a closed chat sync). The loop ends without retrying.
var ErrListenerClosed = errors.New("listener closed")

const (
	Greeting        = "Beyond is ready! Say 'help' for available commands."
	MsgNothingHeard = engine.MsgNoCommand
	MsgNext         = "What would you like me to do next?"
)

// DefaultListenTimeout bounds one wait for a command.
const DefaultListenTimeout = 10 * time.Second

// Processor runs one command cycle. *engine.Engine implements it.
type Processor interface {
	Process(ctx context.Context, raw string, nav actions.NavContext) (engine.Result, actions.NavContext)
}

// Journal persists finished cycles. *store.Store implements it.
type Journal interface {
	RecordCycle(ctx context.Context, c store.Cycle) error
}

// Config tunes a Loop. Zero values fall back to defaults.
type Config struct {
	ListenTimeout time.Duration
	Retry         retry.Config
	Greeting      string
	// Journal is optional.
	Journal Journal
	Logger  *slog.Logger
}

// Snapshot is the loop state reported on the status endpoint.
type Snapshot struct {
	Running    bool               `json:"running"`
	Cycles     int                `json:"cycles"`
	Nav        actions.NavContext `json:"nav"`
	LastCycle  string             `json:"last_cycle,omitempty"`
	LastIntent string             `json:"last_intent,omitempty"`
	LastKind   string             `json:"last_kind,omitempty"`
}

// Loop owns the navigation context between cycles.
type Loop struct {
	listener  clarify.Listener
	speaker   clarify.Speaker
	processor Processor
	cfg       Config

	mu    sync.RWMutex
	state Snapshot
}

// New creates a Loop starting at nav.
func New(listener clarify.Listener, speaker clarify.Speaker, processor Processor, nav actions.NavContext, cfg Config) *Loop {
	if cfg.ListenTimeout <= 0 {
		cfg.ListenTimeout = DefaultListenTimeout
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.DefaultConfig
	}
	if cfg.Greeting == "" {
		cfg.Greeting = Greeting
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Loop{
		listener:  listener,
		speaker:   speaker,
		processor: processor,
		cfg:       cfg,
		state:     Snapshot{Nav: nav},
	}
}

// Snapshot returns a copy of the current loop state.
func (l *Loop) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := l.state
	s.Nav = s.Nav.Clone()
	return s
}

// Run greets the user and processes commands until a handler asks to
// stop, ctx is cancelled, or the listener fails beyond retry. A stop
// command and cancellation return nil.
func (l *Loop) Run(ctx context.Context) error {
	l.setRunning(true)
	defer l.setRunning(false)

	l.say(ctx, l.cfg.Greeting)
	for {
		if ctx.Err() != nil {
			return nil
		}
		stop, err := l.cycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if stop {
			return nil
		}
	}
}

// cycle handles one listen/process/speak turn.
func (l *Loop) cycle(ctx context.Context) (stop bool, err error) {
	id := trace.NewCycleID()
	ctx = trace.WithTraceID(ctx, id)
	log := logging.Traced(ctx, l.cfg.Logger)

	text, err := l.listen(ctx)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(text) == "" {
		l.say(ctx, MsgNothingHeard)
		return false, nil
	}

	started := time.Now()
	l.mu.RLock()
	nav := l.state.Nav.Clone()
	l.mu.RUnlock()

	result, next := l.processor.Process(ctx, text, nav)

	l.mu.Lock()
	l.state.Nav = next
	l.state.Cycles++
	l.state.LastCycle = id
	l.state.LastIntent = result.Intent
	l.state.LastKind = result.Kind.String()
	l.mu.Unlock()

	log.Debug("cycle finished", "kind", result.Kind.String(), "duration", time.Since(started))
	l.journal(ctx, id, text, started, result)

	if result.Response != "" {
		l.say(ctx, result.Response)
	}
	if result.Stop {
		return true, nil
	}
	l.say(ctx, MsgNext)
	return false, nil
}

func (l *Loop) listen(ctx context.Context) (string, error) {
	cfg := l.cfg.Retry
	cfg.ShouldRetry = func(err error) bool {
		return !errors.Is(err, ErrListenerClosed)
	}

	var text string
	err := retry.Do(ctx, cfg, func() error {
		var err error
		text, err = l.listener.Listen(ctx, l.cfg.ListenTimeout)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	return text, nil
}

// say delivers text; a speaker fault is logged and the loop carries on.
func (l *Loop) say(ctx context.Context, text string) {
	if err := l.speaker.Speak(ctx, text); err != nil {
		logging.Traced(ctx, l.cfg.Logger).Warn("failed to speak", "err", err)
	}
}

func (l *Loop) journal(ctx context.Context, id, text string, started time.Time, r engine.Result) {
	if l.cfg.Journal == nil {
		return
	}
	c := store.Cycle{
		ID:        id,
		StartedAt: started,
		Duration:  time.Since(started),
		Utterance: text,
		Kind:      r.Kind.String(),
		Source:    string(r.Source),
		Intent:    r.Intent,
		Handler:   r.HandlerID,
		Success:   r.Success,
		Clarified: r.Clarified,
		Response:  r.Response,
	}
	if err := l.cfg.Journal.RecordCycle(ctx, c); err != nil {
		l.cfg.Logger.Warn("failed to journal cycle", "trace_id", id, "err", err)
	}
}

func (l *Loop) setRunning(v bool) {
	l.mu.Lock()
	l.state.Running = v
	l.mu.Unlock()
}
