// Package dispatch maps a resolved intent to the handler that serves it. A
// few intents cover several handlers; for those a keyword scan of the
// utterance picks one.
package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/beyondtyping/beyond/internal/beyond/slots"
)

var (
	// ErrHandlerNotFound means the intent has no table entry, or its entry
	// names a handler that was never declared. It indicates an inconsistent
	// table rather than a user mistake.
	ErrHandlerNotFound = errors.New("no handler for intent")
	// ErrNoRoute means a sub-routed intent matched none of its keywords and
	// has no default handler.
	ErrNoRoute = errors.New("no route for utterance")
)

// Handler describes an action target and the parameter it consumes.
type Handler struct {
	ID string
	// Slot is nil for handlers that take no parameter.
	Slot *slots.Spec
}

// SubRoute selects Handler when any of Keywords appears in the utterance.
type SubRoute struct {
	Keywords []string
	Handler  string
	// Preset slot values implied by the keyword, e.g. the folder for
	// "file explorer documents".
	Preset slots.Set
}

type entry struct {
	handler   string
	subRoutes []SubRoute
}

// Route is a resolved dispatch decision.
type Route struct {
	Intent  string
	Handler Handler
	Preset  slots.Set
}

// Table is the intent to handler mapping. It is built once and read-only
// afterwards.
type Table struct {
	handlers map[string]Handler
	entries  map[string]entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		handlers: make(map[string]Handler),
		entries:  make(map[string]entry),
	}
}

// AddHandler declares a handler and its slot spec.
func (t *Table) AddHandler(h Handler) {
	t.handlers[h.ID] = h
}

// Map routes intent directly to handlerID.
func (t *Table) Map(intent, handlerID string) {
	t.entries[intent] = entry{handler: handlerID}
}

// MapSub routes intent by keyword. Sub-routes are scanned in order; the
// first with a keyword present in the utterance wins. defaultID is used when
// none match and may be empty.
func (t *Table) MapSub(intent, defaultID string, subRoutes ...SubRoute) {
	t.entries[intent] = entry{handler: defaultID, subRoutes: subRoutes}
}

// Resolve picks the handler for intent given the original utterance text.
func (t *Table) Resolve(intent, text string) (Route, error) {
	e, ok := t.entries[intent]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrHandlerNotFound, intent)
	}

	handlerID := e.handler
	var preset slots.Set
	if len(e.subRoutes) > 0 {
		tokens := words(text)
		for _, sr := range e.subRoutes {
			if hasAnyKeyword(tokens, sr.Keywords) {
				handlerID = sr.Handler
				preset = sr.Preset
				break
			}
		}
	}
	if handlerID == "" {
		return Route{}, fmt.Errorf("%w: %s", ErrNoRoute, intent)
	}

	h, ok := t.handlers[handlerID]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s -> %s", ErrHandlerNotFound, intent, handlerID)
	}
	return Route{Intent: intent, Handler: h, Preset: preset}, nil
}

// Handler looks up a declared handler.
func (t *Table) Handler(id string) (Handler, bool) {
	h, ok := t.handlers[id]
	return h, ok
}

// HandlerIDs lists every declared handler, sorted.
func (t *Table) HandlerIDs() []string {
	ids := make([]string, 0, len(t.handlers))
	for id := range t.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Intents lists every mapped intent, sorted.
func (t *Table) Intents() []string {
	intents := make([]string, 0, len(t.entries))
	for intent := range t.entries {
		intents = append(intents, intent)
	}
	sort.Strings(intents)
	return intents
}

// Targets lists every handler ID an intent can route to, including its
// default.
func (t *Table) Targets(intent string) []string {
	e, ok := t.entries[intent]
	if !ok {
		return nil
	}
	var out []string
	if e.handler != "" {
		out = append(out, e.handler)
	}
	for _, sr := range e.subRoutes {
		out = append(out, sr.Handler)
	}
	return out
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// hasAnyKeyword matches keywords as whole words; multi-word keywords must
// appear as a contiguous run.
func hasAnyKeyword(words []string, keywords []string) bool {
	for _, kw := range keywords {
		phrase := strings.Fields(strings.ToLower(kw))
		if len(phrase) == 0 {
			continue
		}
		for i := 0; i+len(phrase) <= len(words); i++ {
			match := true
			for j, p := range phrase {
				if words[i+j] != p {
					match = false
					break
				}
			}
			if match {
				return true
			}
		}
	}
	return false
}
