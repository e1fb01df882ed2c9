package classifier

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrDatasetMissing is returned when the training file does not exist.
	ErrDatasetMissing = errors.New("training dataset not found")
	// ErrDatasetEmpty is returned when the dataset has no usable rows.
	ErrDatasetEmpty = errors.New("training dataset is empty")
)

// Example is one labelled training utterance.
type Example struct {
	Text   string
	Intent string
}

// ReadDatasetFile loads a CSV dataset from path.
func ReadDatasetFile(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetMissing, path)
		}
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return ReadDataset(f)
}

// ReadDataset parses CSV with a header row naming a "text" and an "intent"
// column; other columns are ignored. Rows with a blank text or intent are
// skipped.
func ReadDataset(r io.Reader) ([]Example, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrDatasetEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	textCol, intentCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "text":
			textCol = i
		case "intent":
			intentCol = i
		}
	}
	if textCol < 0 || intentCol < 0 {
		return nil, fmt.Errorf("dataset header must contain text and intent columns, got %v", header)
	}

	var examples []Example
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}
		if textCol >= len(rec) || intentCol >= len(rec) {
			continue
		}
		text := strings.TrimSpace(rec[textCol])
		intent := strings.TrimSpace(rec[intentCol])
		if text == "" || intent == "" {
			continue
		}
		examples = append(examples, Example{Text: text, Intent: intent})
	}
	if len(examples) == 0 {
		return nil, ErrDatasetEmpty
	}
	return examples, nil
}
