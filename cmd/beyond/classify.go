package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beyondtyping/beyond/internal/beyond/actions"
	"github.com/beyondtyping/beyond/internal/beyond/classifier"
	"github.com/beyondtyping/beyond/internal/beyond/dispatch"
	"github.com/beyondtyping/beyond/internal/beyond/engine"
	"github.com/beyondtyping/beyond/internal/beyond/rules"
)

type classifyOptions struct {
	model         string
	rules         string
	minConfidence float64
	json          bool
}

type classifyOutput struct {
	Utterance  string            `json:"utterance"`
	Resolved   bool              `json:"resolved"`
	Source     string            `json:"source,omitempty"`
	Intent     string            `json:"intent,omitempty"`
	Confidence float64           `json:"confidence,omitempty"`
	Handler    string            `json:"handler,omitempty"`
	Slots      map[string]string `json:"slots,omitempty"`
	Missing    string            `json:"missing_slot,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func newClassifyCmd() *cobra.Command {
	opts := &classifyOptions{}
	cmd := &cobra.Command{
		Use:   "classify <utterance>",
		Short: "Show how an utterance would be resolved without acting on it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, opts, strings.Join(args, " "))
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.model, "model", "intent_model.json", "intent classifier artifact")
	f.StringVar(&opts.rules, "rules", "", "static rule table overriding the built-in one")
	f.Float64Var(&opts.minConfidence, "min-confidence", classifier.DefaultMinConfidence, "classifier confidence threshold")
	f.BoolVar(&opts.json, "json", false, "print JSON")
	return cmd
}

func runClassify(cmd *cobra.Command, opts *classifyOptions, text string) error {
	matcher, err := rules.Default()
	if opts.rules != "" {
		matcher, err = rules.LoadFile(opts.rules)
	}
	if err != nil {
		return err
	}

	eng, err := engine.New(engine.Config{
		Classifier: classifier.Load(opts.model, classifier.WithMinConfidence(opts.minConfidence)),
		Rules:      matcher,
		Table:      dispatch.Default(),
		Registry:   actions.NewDefaultRegistry(actions.Handlers{Logger: slog.Default()}),
	})
	if err != nil {
		return err
	}

	res, err := eng.Resolve(cmd.Context(), text)
	out := classifyOutput{
		Utterance: text,
		Resolved:  err == nil,
		Source:    string(res.Source),
		Intent:    res.Intent,
		Handler:   res.Route.Handler.ID,
		Slots:     res.Slots,
		Missing:   res.Missing,
	}
	if res.Source == engine.SourceClassifier {
		out.Confidence = res.Prediction.Confidence
	}
	if err != nil {
		out.Error = err.Error()
	}

	w := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if !out.Resolved {
		fmt.Fprintf(w, "unresolved: %s\n", out.Error)
		if errors.Is(err, dispatch.ErrHandlerNotFound) {
			return err
		}
		return nil
	}
	fmt.Fprintf(w, "intent:  %s (%s", out.Intent, out.Source)
	if out.Confidence > 0 {
		fmt.Fprintf(w, ", %.2f", out.Confidence)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintf(w, "handler: %s\n", out.Handler)
	keys := make([]string, 0, len(out.Slots))
	for k := range out.Slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "slot:    %s = %q\n", k, out.Slots[k])
	}
	if out.Missing != "" {
		fmt.Fprintf(w, "missing: %s (would ask for clarification)\n", out.Missing)
	}
	return nil
}
