// Package engine runs one command cycle: normalize, classify or match,
// extract slots, clarify once if needed, and dispatch to an action.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/beyondtyping/beyond/common/logging"
	"github.com/beyondtyping/beyond/common/trace"
	"github.com/beyondtyping/beyond/internal/beyond/actions"
	"github.com/beyondtyping/beyond/internal/beyond/clarify"
	"github.com/beyondtyping/beyond/internal/beyond/classifier"
	"github.com/beyondtyping/beyond/internal/beyond/dispatch"
	"github.com/beyondtyping/beyond/internal/beyond/rules"
	"github.com/beyondtyping/beyond/internal/beyond/slots"
	"github.com/beyondtyping/beyond/internal/beyond/utterance"
)

// ErrUnresolved is returned by Resolve when no tier produced a routable
// intent.
var ErrUnresolved = errors.New("utterance not understood")

// Recorder receives pipeline measurements. metrics.Recorder implements it.
type Recorder interface {
	ObserveClassification(status string, d time.Duration)
	ObserveResolution(source, intent string)
	ObserveClarification(outcome string)
	ObserveHandler(handler string, success bool, d time.Duration)
	ObserveCycle(kind string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveClassification(string, time.Duration) {}
func (nopRecorder) ObserveResolution(string, string)            {}
func (nopRecorder) ObserveClarification(string)                 {}
func (nopRecorder) ObserveHandler(string, bool, time.Duration)  {}
func (nopRecorder) ObserveCycle(string)                         {}

// Config wires the engine's components. Rules, Table and Registry are
// required; a nil Classifier runs static rules only and a nil Clarifier
// abandons every missing slot.
type Config struct {
	Classifier *classifier.Service
	Rules      *rules.Matcher
	Table      *dispatch.Table
	Registry   *actions.Registry
	Clarifier  *clarify.Controller
	Metrics    Recorder
	Logger     *slog.Logger
}

// Engine is the command pipeline. It is not safe for overlapping cycles:
// the clarification state is shared.
type Engine struct {
	classifier *classifier.Service
	rules      *rules.Matcher
	table      *dispatch.Table
	registry   *actions.Registry
	clarifier  *clarify.Controller
	metrics    Recorder
	logger     *slog.Logger
}

// New validates cfg and builds an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Rules == nil {
		return nil, fmt.Errorf("engine: rules are required")
	}
	if cfg.Table == nil {
		return nil, fmt.Errorf("engine: dispatch table is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("engine: action registry is required")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		classifier: cfg.Classifier,
		rules:      cfg.Rules,
		table:      cfg.Table,
		registry:   cfg.Registry,
		clarifier:  cfg.Clarifier,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}, nil
}

// ClassifierAvailable reports whether the statistical tier is active.
func (e *Engine) ClassifierAvailable() bool {
	return e.classifier.Available()
}

func (e *Engine) log(ctx context.Context) *slog.Logger {
	return logging.Traced(ctx, e.logger)
}

// Resolve decides intent, handler and slots for raw without running any
// handler or asking for clarification. It returns utterance.ErrNoCommand,
// ErrUnresolved or dispatch.ErrHandlerNotFound when no route exists.
func (e *Engine) Resolve(ctx context.Context, raw string) (Resolution, error) {
	log := e.log(ctx)
	res := Resolution{RuleIndex: -1}

	u, err := utterance.Normalize(raw)
	res.Utterance = u
	if err != nil {
		return res, err
	}

	var captured slots.Set
	if route, ok := e.classify(ctx, &res); ok {
		res.Source = SourceClassifier
		res.Route = route
	} else {
		// Full restart from the original utterance; nothing from the
		// classifier attempt carries over.
		m := e.rules.Match(u.Text)
		if !m.Resolved {
			return res, ErrUnresolved
		}
		res.Source = SourceRules
		res.Intent = m.Intent
		res.RuleIndex = m.RuleIndex
		captured = m.Slots

		route, err := e.table.Resolve(m.Intent, u.Raw)
		if errors.Is(err, dispatch.ErrNoRoute) {
			log.Debug("static rule intent has no route for utterance", "intent", m.Intent)
			return res, ErrUnresolved
		}
		if err != nil {
			return res, err
		}
		res.Route = route
	}
	e.metrics.ObserveResolution(string(res.Source), res.Intent)

	res.Slots = slots.Set{}
	for k, v := range res.Route.Preset {
		res.Slots[k] = v
	}
	if spec := res.Route.Handler.Slot; spec != nil {
		if v, ok := res.Slots[spec.Name]; ok && slots.Present(v) {
			return res, nil
		}
		if v, ok := slots.Extract(u.Text, captured.Get(spec.Name), *spec); ok {
			res.Slots[spec.Name] = v
		} else if spec.Required {
			res.Missing = spec.Name
		}
	}
	return res, nil
}

// classify runs the statistical tier. It reports false whenever control
// must pass to the static rules: no model, no confident prediction, or a
// predicted intent that does not route to a registered handler.
func (e *Engine) classify(ctx context.Context, res *Resolution) (dispatch.Route, bool) {
	if !e.classifier.Available() {
		return dispatch.Route{}, false
	}
	log := e.log(ctx)

	start := time.Now()
	p := e.classifier.Predict(res.Utterance.Text)
	e.metrics.ObserveClassification(p.Status.String(), time.Since(start))
	res.Prediction = p
	if p.Status != classifier.Resolved {
		log.Debug("classifier gave no intent", "status", p.Status.String())
		return dispatch.Route{}, false
	}

	route, err := e.table.Resolve(p.Intent, res.Utterance.Raw)
	if err != nil {
		log.Debug("classifier intent did not route, restarting with static rules",
			"intent", p.Intent, "confidence", p.Confidence, "err", err)
		return dispatch.Route{}, false
	}
	if _, ok := e.registry.Lookup(route.Handler.ID); !ok {
		log.Debug("classifier route has no action, restarting with static rules",
			"intent", p.Intent, "handler", route.Handler.ID)
		return dispatch.Route{}, false
	}
	res.Intent = p.Intent
	return route, true
}

// Process runs one full command cycle for raw against nav and returns the
// result together with the navigation context to use next.
func (e *Engine) Process(ctx context.Context, raw string, nav actions.NavContext) (Result, actions.NavContext) {
	if e.clarifier != nil {
		e.clarifier.Begin()
	}
	result, next := e.process(ctx, raw, nav)
	result.CycleID = trace.FromContext(ctx)
	e.metrics.ObserveCycle(result.Kind.String())
	return result, next
}

func (e *Engine) process(ctx context.Context, raw string, nav actions.NavContext) (Result, actions.NavContext) {
	log := e.log(ctx)

	res, err := e.Resolve(ctx, raw)
	switch {
	case errors.Is(err, utterance.ErrNoCommand):
		return Result{Kind: NoCommand, Response: MsgNoCommand}, nav
	case errors.Is(err, ErrUnresolved):
		log.Info("utterance not understood", "text", res.Utterance.Text)
		return Result{Kind: Unresolved, Response: MsgUnresolved}, nav
	case errors.Is(err, dispatch.ErrHandlerNotFound):
		log.Error("intent has no dispatch entry", "intent", res.Intent, "source", res.Source, "err", err)
		r := resultFor(res, HandlerNotFound)
		r.Response = MsgFailure
		return r, nav
	case err != nil:
		log.Error("resolution failed", "err", err)
		return Result{Kind: Unresolved, Response: MsgUnresolved}, nav
	}

	clarified := false
	if res.Missing != "" {
		value, err := e.clarifyMissing(ctx, res)
		if err != nil {
			log.Info("clarification abandoned", "intent", res.Intent, "slot", res.Missing, "err", err)
			r := resultFor(res, ClarificationAbandoned)
			r.Response = MsgNotCaught
			r.Clarified = true
			return r, nav
		}
		res.Slots[res.Missing] = value
		res.Missing = ""
		clarified = true
	}

	action, ok := e.registry.Lookup(res.Route.Handler.ID)
	if !ok {
		log.Error("handler has no registered action", "intent", res.Intent, "handler", res.Route.Handler.ID)
		r := resultFor(res, HandlerNotFound)
		r.Response = MsgFailure
		return r, nav
	}

	req := actions.Request{
		Handler:   res.Route.Handler.ID,
		Intent:    res.Intent,
		Slots:     res.Slots,
		Utterance: res.Utterance.Text,
		Nav:       nav.Clone(),
	}
	start := time.Now()
	out := e.invoke(ctx, action, req)
	e.metrics.ObserveHandler(req.Handler, out.Success, time.Since(start))

	log.Info("command dispatched",
		"intent", res.Intent, "source", res.Source, "handler", req.Handler, "success", out.Success)

	r := outcomeResult(res, out)
	r.Clarified = clarified
	next := out.Nav
	if next.Home == "" && next.Current == "" {
		next = nav
	}
	return r, next
}

func (e *Engine) clarifyMissing(ctx context.Context, res Resolution) (string, error) {
	if e.clarifier == nil {
		e.metrics.ObserveClarification("abandoned")
		return "", clarify.ErrAbandoned
	}
	spec := *res.Route.Handler.Slot
	value, err := e.clarifier.Clarify(ctx, clarify.Pending{
		Intent:    res.Intent,
		HandlerID: res.Route.Handler.ID,
		Slot:      spec.Name,
		Prompt:    spec.Prompt,
	}, spec)
	if err != nil {
		e.metrics.ObserveClarification("abandoned")
		return "", err
	}
	e.metrics.ObserveClarification("resolved")
	return value, nil
}

// invoke runs action, turning a panic into a failed outcome.
func (e *Engine) invoke(ctx context.Context, action actions.Action, req actions.Request) (out actions.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.log(ctx).Error("handler panicked", "handler", req.Handler, "panic", r)
			out = actions.Outcome{Response: MsgFailure, Nav: req.Nav}
		}
	}()
	return action(ctx, req)
}
