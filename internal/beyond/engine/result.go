package engine

import (
	"github.com/beyondtyping/beyond/internal/beyond/actions"
	"github.com/beyondtyping/beyond/internal/beyond/classifier"
	"github.com/beyondtyping/beyond/internal/beyond/dispatch"
	"github.com/beyondtyping/beyond/internal/beyond/slots"
	"github.com/beyondtyping/beyond/internal/beyond/utterance"
)

// Spoken responses for outcomes that never reach a handler.
const (
	MsgNoCommand  = "I didn't hear anything. What would you like me to do?"
	MsgUnresolved = "I didn't understand that command. You can say 'help' to know what I can do."
	MsgNotCaught  = "Sorry, I didn't catch that. Please try the command again."
	MsgFailure    = "Sorry, something went wrong. Please try again."
)

// Kind classifies how a command cycle ended.
type Kind int

const (
	// Dispatched means a handler ran; Result.Success is its verdict.
	Dispatched Kind = iota
	// NoCommand means the utterance was empty.
	NoCommand
	// Unresolved means neither tier produced a routable intent.
	Unresolved
	// HandlerNotFound means the tables disagree; it is logged as an error.
	HandlerNotFound
	// ClarificationAbandoned means a required slot stayed missing.
	ClarificationAbandoned
)

func (k Kind) String() string {
	switch k {
	case Dispatched:
		return "dispatched"
	case NoCommand:
		return "no_command"
	case Unresolved:
		return "unresolved"
	case HandlerNotFound:
		return "handler_not_found"
	case ClarificationAbandoned:
		return "clarification_abandoned"
	default:
		return "unknown"
	}
}

// Source names the tier that resolved the intent.
type Source string

const (
	SourceNone       Source = ""
	SourceClassifier Source = "classifier"
	SourceRules      Source = "rules"
)

// Result is the outcome of one command cycle.
type Result struct {
	Kind      Kind
	Success   bool
	Intent    string
	Source    Source
	HandlerID string
	Slots     slots.Set
	Response  string
	// Stop asks the command loop to end.
	Stop bool
	// Clarified is set when a clarification round-trip took place.
	Clarified bool
	CycleID   string
}

// Resolution is everything decided about an utterance before any handler
// runs.
type Resolution struct {
	Utterance  utterance.Utterance
	Prediction classifier.Prediction
	Source     Source
	Intent     string
	Route      dispatch.Route
	// RuleIndex is the winning static rule, or -1.
	RuleIndex int
	// Slots holds sub-router presets and the extracted handler slot.
	Slots slots.Set
	// Missing names a required slot that could not be extracted.
	Missing string
}

func resultFor(res Resolution, kind Kind) Result {
	return Result{
		Kind:      kind,
		Intent:    res.Intent,
		Source:    res.Source,
		HandlerID: res.Route.Handler.ID,
		Slots:     res.Slots,
	}
}

// outcomeResult folds a handler outcome into a Result.
func outcomeResult(res Resolution, out actions.Outcome) Result {
	r := resultFor(res, Dispatched)
	r.Success = out.Success
	r.Response = out.Response
	r.Stop = out.Stop
	return r
}
