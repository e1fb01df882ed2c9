// Package slots recovers parameter values from an utterance by stripping the
// filler phrases that surround them.
package slots

import (
	"strings"
	"unicode/utf8"
)

// MinLength is the shortest residual accepted as a slot value. Anything
// shorter is reported as missing.
const MinLength = 2

// Set holds extracted parameters, slot name to value.
type Set map[string]string

// Get returns the named value, or "" when absent.
func (s Set) Get(name string) string {
	if s == nil {
		return ""
	}
	return s[name]
}

// Spec describes the single parameter a handler consumes.
type Spec struct {
	// Name is the slot key, e.g. "folder" or "query".
	Name string
	// Fillers are removed from the utterance, in order, to expose the value.
	Fillers []string
	// Required slots trigger a clarification prompt when missing.
	Required bool
	// Prompt is spoken when a required slot is missing.
	Prompt string
	// Canonicalize, when set, maps the residual to a canonical identity.
	Canonicalize func(string) string
}

// Strip removes the first occurrence of each filler phrase from text. For
// every phrase a prefix match is tried first, then an embedded match, then a
// suffix match; at most one occurrence is removed per phrase. Matching is on
// whole words, so "play" never eats the front of "playlist". Whitespace in
// the result is collapsed to single spaces.
func Strip(text string, fillers []string) string {
	words := strings.Fields(text)
	for _, filler := range fillers {
		phrase := strings.Fields(strings.ToLower(filler))
		if len(phrase) == 0 || len(phrase) > len(words) {
			continue
		}
		if i := locate(words, phrase); i >= 0 {
			words = append(words[:i:i], words[i+len(phrase):]...)
		}
	}
	return strings.Join(words, " ")
}

// locate returns where phrase should be cut from words, or -1.
func locate(words, phrase []string) int {
	n := len(phrase)
	if equalAt(words, phrase, 0) {
		return 0
	}
	for i := 1; i+n < len(words); i++ {
		if equalAt(words, phrase, i) {
			return i
		}
	}
	if last := len(words) - n; last > 0 && equalAt(words, phrase, last) {
		return last
	}
	return -1
}

func equalAt(words, phrase []string, at int) bool {
	if at+len(phrase) > len(words) {
		return false
	}
	for j, p := range phrase {
		if words[at+j] != p {
			return false
		}
	}
	return true
}

// Present reports whether value is long enough to be used as a slot.
func Present(value string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) >= MinLength
}

// Extract resolves spec's value from the normalized utterance text. A
// non-empty captured value (from a rule pattern group) is preferred over the
// whole utterance; fillers are stripped from whichever source is used. The
// boolean is false when the residual is too short to be a value.
func Extract(text, captured string, spec Spec) (string, bool) {
	source := text
	if strings.TrimSpace(captured) != "" {
		source = strings.ToLower(captured)
	}
	value := Strip(source, spec.Fillers)
	if !Present(value) {
		return "", false
	}
	if spec.Canonicalize != nil {
		value = spec.Canonicalize(value)
	}
	return value, true
}
