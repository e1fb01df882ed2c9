// Package actions holds the side-effecting handlers that run once an intent
// is resolved, and the registry the engine dispatches into.
package actions

import (
	"context"
	"sort"

	"github.com/beyondtyping/beyond/internal/beyond/slots"
)

// NavContext is the file-navigation cursor. It is passed into every handler
// and the handler's returned copy replaces it, so no handler keeps hidden
// folder state.
type NavContext struct {
	Home    string   `json:"home"`
	Current string   `json:"current"`
	History []string `json:"history,omitempty"`
	// ExplorerOpen records whether a file manager window was opened.
	ExplorerOpen bool `json:"explorer_open"`
}

// NewNavContext starts navigation at home.
func NewNavContext(home string) NavContext {
	return NavContext{Home: home, Current: home}
}

// Clone returns a copy that shares no slice storage with n.
func (n NavContext) Clone() NavContext {
	n.History = append([]string(nil), n.History...)
	return n
}

// push records the current folder and moves to dir.
func (n NavContext) push(dir string) NavContext {
	n = n.Clone()
	n.History = append(n.History, n.Current)
	n.Current = dir
	return n
}

// Request is everything a handler gets for one dispatch.
type Request struct {
	Handler   string
	Intent    string
	Slots     slots.Set
	Utterance string
	Nav       NavContext
}

// Outcome is a handler's result. Nav is the navigation context after the
// action; handlers that do not navigate return the request's context.
type Outcome struct {
	Success  bool
	Response string
	Nav      NavContext
	// Stop asks the command loop to end after this cycle.
	Stop bool
}

// Action performs one handler.
type Action func(ctx context.Context, req Request) Outcome

// Registry maps handler IDs to actions.
type Registry struct {
	actions map[string]Action
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register binds id to a. A later registration replaces an earlier one.
func (r *Registry) Register(id string, a Action) {
	r.actions[id] = a
}

// Lookup returns the action for id.
func (r *Registry) Lookup(id string) (Action, bool) {
	a, ok := r.actions[id]
	return a, ok
}

// IDs lists registered handler IDs, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.actions))
	for id := range r.actions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func ok(req Request, response string) Outcome {
	return Outcome{Success: true, Response: response, Nav: req.Nav}
}

func fail(req Request, response string) Outcome {
	return Outcome{Response: response, Nav: req.Nav}
}
