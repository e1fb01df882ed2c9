// Package utterance normalizes raw listener text before any classification
// stage sees it.
package utterance

import (
	"errors"
	"strings"
)

// ErrNoCommand is returned when the input is empty after trimming. Nothing
// downstream (classifier or rule matcher) runs for such input.
var ErrNoCommand = errors.New("no command in utterance")

// Utterance is one user input as heard and as normalized.
type Utterance struct {
	// Raw is the text exactly as the listener produced it.
	Raw string
	// Text is lowercased with surrounding whitespace removed.
	Text string
}

// Normalize lowercases and trims raw.
func Normalize(raw string) (Utterance, error) {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return Utterance{Raw: raw}, ErrNoCommand
	}
	return Utterance{Raw: raw, Text: text}, nil
}

// IsEmpty reports whether the utterance carries no command.
func (u Utterance) IsEmpty() bool {
	return u.Text == ""
}
