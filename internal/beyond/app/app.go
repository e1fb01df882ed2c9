// Package app wires Beyond's components from configuration and runs the
// command loop.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/beyondtyping/beyond/internal/beyond/actions"
	"github.com/beyondtyping/beyond/internal/beyond/clarify"
	"github.com/beyondtyping/beyond/internal/beyond/classifier"
	"github.com/beyondtyping/beyond/internal/beyond/dispatch"
	"github.com/beyondtyping/beyond/internal/beyond/engine"
	"github.com/beyondtyping/beyond/internal/beyond/metrics"
	"github.com/beyondtyping/beyond/internal/beyond/rules"
	"github.com/beyondtyping/beyond/internal/beyond/store"
	"github.com/beyondtyping/beyond/internal/beyond/transport/console"
	"github.com/beyondtyping/beyond/internal/beyond/transport/matrix"
	"github.com/beyondtyping/beyond/internal/beyond/voiceloop"
)

// transport is a Listener and Speaker, optionally with a lifecycle.
type transport interface {
	clarify.Listener
	clarify.Speaker
}

type starter interface {
	Start(ctx context.Context) error
}

type stopper interface {
	Stop()
}

// App is the running assistant.
type App struct {
	cfg        Config
	logger     *slog.Logger
	store      *store.Store
	classifier *classifier.Service
	metrics    *metrics.Recorder
	clarifier  *clarify.Controller
	engine     *engine.Engine
	loop       *voiceloop.Loop
	transport  transport
	health     *HealthServer
}

// New validates cfg and builds every component. Nothing is started.
func New(cfg Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	home, err := cfg.homeDir()
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger, metrics: metrics.New()}

	matcher, err := loadRules(cfg.RulesPath)
	if err != nil {
		return nil, err
	}
	table := dispatch.Default()
	a.checkCoverage(matcher, table)

	a.classifier = classifier.Load(cfg.ModelPath,
		classifier.WithMinConfidence(cfg.MinConfidence),
		classifier.WithLogger(logger),
	)
	a.metrics.SetClassifierAvailable(a.classifier.Available())

	if cfg.DatabasePath != "" {
		a.store, err = store.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	}

	a.transport, err = a.newTransport()
	if err != nil {
		a.Close()
		return nil, err
	}

	handlers := actions.Handlers{Opener: actions.SystemOpener{}, Logger: logger}
	if d, ok := actions.NewXdotoolDesktop(); ok {
		handlers.Desktop = d
	} else {
		logger.Info("no desktop automation tool found; keyboard and window commands are disabled")
	}
	if r, ok := actions.NewClipboardReader(); ok {
		handlers.Screen = r
	} else {
		logger.Info("neither xclip nor xsel found; clipboard and selection reading are disabled")
	}

	a.clarifier = clarify.New(a.transport, a.transport, cfg.ClarifyTimeout, logger)
	a.engine, err = engine.New(engine.Config{
		Classifier: a.classifier,
		Rules:      matcher,
		Table:      table,
		Registry:   actions.NewDefaultRegistry(handlers),
		Clarifier:  a.clarifier,
		Metrics:    a.metrics,
		Logger:     logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	loopCfg := voiceloop.Config{ListenTimeout: cfg.ListenTimeout, Logger: logger}
	if a.store != nil {
		loopCfg.Journal = a.store
	}
	a.loop = voiceloop.New(a.transport, a.transport, a.engine, actions.NewNavContext(home), loopCfg)

	if cfg.HTTPAddr != "" {
		var cycles cycleSource
		if a.store != nil {
			cycles = a.store
		}
		a.health = NewHealthServer(cfg.HTTPAddr, a, cycles)
		a.health.Handle("GET /metrics", a.metrics.Handler())
	}
	return a, nil
}

func loadRules(path string) (*rules.Matcher, error) {
	if path == "" {
		return rules.Default()
	}
	m, err := rules.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	return m, nil
}

// checkCoverage logs intents the dispatch table cannot route. Such
// utterances end as HandlerNotFound at runtime.
func (a *App) checkCoverage(m *rules.Matcher, t *dispatch.Table) {
	known := make(map[string]bool)
	for _, intent := range t.Intents() {
		known[intent] = true
	}
	for _, intent := range m.Intents() {
		if !known[intent] {
			a.logger.Warn("static rule intent has no dispatch entry", "intent", intent)
		}
	}
}

func (a *App) newTransport() (transport, error) {
	switch a.cfg.Transport {
	case TransportMatrix:
		mcfg := matrix.Config{
			Homeserver:  a.cfg.MatrixHomeserver,
			UserID:      a.cfg.MatrixUserID,
			AccessToken: a.cfg.MatrixAccessToken,
			RoomID:      a.cfg.MatrixRoomID,
			Owner:       a.cfg.MatrixOwner,
			Logger:      a.logger,
		}
		if a.store != nil {
			mcfg.DB = a.store.DB()
		}
		return matrix.New(mcfg)
	default:
		in, out := a.cfg.Stdin, a.cfg.Stdout
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		return console.New(in, out, "> "), nil
	}
}

// Run starts the optional HTTP server and the transport, then runs the
// command loop until it ends or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.health != nil {
		if err := a.health.Start(ctx); err != nil {
			return err
		}
	}
	if s, ok := a.transport.(starter); ok {
		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("failed to start transport: %w", err)
		}
	}
	if s, ok := a.transport.(stopper); ok {
		defer s.Stop()
	}

	a.logger.Info("Beyond started",
		"transport", a.cfg.Transport,
		"classifier", a.classifier.Available(),
		"journal", a.store != nil,
		"home", a.cfg.Home)
	return a.loop.Run(ctx)
}

// Status reports the live state for GET /status.
func (a *App) Status() Status {
	s := Status{
		Transport:           a.cfg.Transport,
		ClassifierAvailable: a.classifier.Available(),
		Intents:             a.classifier.Labels(),
		Loop:                a.loop.Snapshot(),
		ClarificationState:  a.clarifier.State().String(),
	}
	if p, ok := a.clarifier.Pending(); ok {
		s.Pending = &p
	}
	return s
}

// Engine exposes the pipeline, e.g. for one-shot classification.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Close releases the database.
func (a *App) Close() error {
	if a.health != nil {
		a.health.Stop()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
