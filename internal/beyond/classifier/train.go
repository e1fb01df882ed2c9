package classifier

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"text/tabwriter"
)

// TrainOptions tune the trainer. Zero values take the defaults.
type TrainOptions struct {
	MaxFeatures  int
	Iterations   int
	LearningRate float64
	// C is the inverse L2 regularisation strength.
	C float64
	// ValidationFraction of the dataset held out for the report.
	ValidationFraction float64
	Seed               uint64
	Logger             *slog.Logger
}

// DefaultTrainOptions returns the settings the shipped model is trained with.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		MaxFeatures:        DefaultMaxFeatures,
		Iterations:         300,
		LearningRate:       1.0,
		C:                  10.0,
		ValidationFraction: 0.2,
		Seed:               42,
	}
}

func (o TrainOptions) withDefaults() TrainOptions {
	d := DefaultTrainOptions()
	if o.MaxFeatures <= 0 {
		o.MaxFeatures = d.MaxFeatures
	}
	if o.Iterations <= 0 {
		o.Iterations = d.Iterations
	}
	if o.LearningRate <= 0 {
		o.LearningRate = d.LearningRate
	}
	if o.C <= 0 {
		o.C = d.C
	}
	if o.ValidationFraction <= 0 || o.ValidationFraction >= 1 {
		o.ValidationFraction = d.ValidationFraction
	}
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// ClassReport is the validation breakdown for one intent.
type ClassReport struct {
	Intent    string  `json:"intent"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	Support   int     `json:"support"`
}

// Report summarizes a training run.
type Report struct {
	Examples       int           `json:"examples"`
	TrainSize      int           `json:"train_size"`
	ValidationSize int           `json:"validation_size"`
	Stratified     bool          `json:"stratified"`
	Features       int           `json:"features"`
	Accuracy       float64       `json:"accuracy"`
	Classes        []ClassReport `json:"classes"`
}

// Write prints the report as an aligned table.
func (r Report) Write(w io.Writer) error {
	split := "stratified"
	if !r.Stratified {
		split = "unstratified"
	}
	fmt.Fprintf(w, "examples: %d (train %d, validation %d, %s)\n", r.Examples, r.TrainSize, r.ValidationSize, split)
	fmt.Fprintf(w, "features: %d\n", r.Features)
	fmt.Fprintf(w, "validation accuracy: %.3f\n\n", r.Accuracy)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INTENT\tPRECISION\tRECALL\tSUPPORT")
	for _, c := range r.Classes {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%d\n", c.Intent, c.Precision, c.Recall, c.Support)
	}
	return tw.Flush()
}

// Train fits a model on examples and evaluates it on a held-out split.
func Train(examples []Example, opts TrainOptions) (*Model, Report, error) {
	if len(examples) == 0 {
		return nil, Report{}, ErrDatasetEmpty
	}
	opts = opts.withDefaults()

	train, validation, stratified := split(examples, opts)
	if !stratified {
		opts.Logger.Warn("degraded training: some intents have fewer than 2 examples, using an unstratified split",
			"examples", len(examples))
	}
	if len(validation) == 0 {
		opts.Logger.Warn("degraded training: dataset too small for a validation split", "examples", len(examples))
	}

	docs := make([]string, len(train))
	for i, ex := range train {
		docs[i] = ex.Text
	}
	vectorizer := FitVectorizer(docs, opts.MaxFeatures)
	model := fit(vectorizer, train, opts)

	report := evaluate(model, validation)
	report.Examples = len(examples)
	report.TrainSize = len(train)
	report.ValidationSize = len(validation)
	report.Stratified = stratified
	report.Features = vectorizer.Size()

	opts.Logger.Info("intent model trained",
		"intents", len(model.Labels),
		"features", vectorizer.Size(),
		"accuracy", report.Accuracy)
	return model, report, nil
}

// split holds out opts.ValidationFraction of the examples. When every intent
// has at least two examples the hold-out is taken per intent.
func split(examples []Example, opts TrainOptions) (train, validation []Example, stratified bool) {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	byIntent := make(map[string][]int)
	for i, ex := range examples {
		byIntent[ex.Intent] = append(byIntent[ex.Intent], i)
	}
	stratified = true
	for _, idx := range byIntent {
		if len(idx) < 2 {
			stratified = false
			break
		}
	}

	if !stratified {
		order := rng.Perm(len(examples))
		n := holdOut(len(examples), opts.ValidationFraction)
		for i, j := range order {
			if i < n {
				validation = append(validation, examples[j])
			} else {
				train = append(train, examples[j])
			}
		}
		return train, validation, false
	}

	intents := make([]string, 0, len(byIntent))
	for intent := range byIntent {
		intents = append(intents, intent)
	}
	sort.Strings(intents)

	for _, intent := range intents {
		idx := byIntent[intent]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		n := holdOut(len(idx), opts.ValidationFraction)
		for i, j := range idx {
			if i < n {
				validation = append(validation, examples[j])
			} else {
				train = append(train, examples[j])
			}
		}
	}
	return train, validation, true
}

// holdOut is round(fraction*n) clamped so both sides keep at least one
// example. A single example is never held out.
func holdOut(n int, fraction float64) int {
	if n < 2 {
		return 0
	}
	k := int(math.Round(fraction * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}
	return k
}

// fit runs full-batch gradient descent on the L2-penalised softmax loss.
// Each coordinate's step is scaled by its accumulated squared gradient
// (AdaGrad), so weights of rare terms move as fast as those of common ones.
func fit(v *Vectorizer, train []Example, opts TrainOptions) *Model {
	labelSet := make(map[string]bool)
	for _, ex := range train {
		labelSet[ex.Intent] = true
	}
	labels := make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	labelIndex := make(map[string]int, len(labels))
	for i, l := range labels {
		labelIndex[l] = i
	}

	vectors := make([]Vector, len(train))
	targets := make([]int, len(train))
	for i, ex := range train {
		vectors[i] = v.Transform(ex.Text)
		targets[i] = labelIndex[ex.Intent]
	}

	k, d := len(labels), v.Size()
	m := &Model{
		Vectorizer: v,
		Labels:     labels,
		Weights:    make([][]float64, k),
		Bias:       make([]float64, k),
	}
	gradW := make([][]float64, k)
	sqW := make([][]float64, k)
	for c := 0; c < k; c++ {
		m.Weights[c] = make([]float64, d)
		gradW[c] = make([]float64, d)
		sqW[c] = make([]float64, d)
	}
	gradB := make([]float64, k)
	sqB := make([]float64, k)

	n := float64(len(train))
	lambda := 1 / (opts.C * n)
	step := func(w *float64, g float64, sq *float64) {
		*sq += g * g
		*w -= opts.LearningRate * g / (math.Sqrt(*sq) + 1e-8)
	}

	for iter := 0; iter < opts.Iterations; iter++ {
		for c := range gradW {
			clear(gradW[c])
		}
		clear(gradB)

		for i, vec := range vectors {
			probs := m.Probabilities(vec)
			for c := range probs {
				diff := probs[c]
				if c == targets[i] {
					diff--
				}
				gradB[c] += diff
				for _, f := range vec {
					gradW[c][f.Index] += diff * f.Value
				}
			}
		}

		for c := 0; c < k; c++ {
			row := m.Weights[c]
			for j := range row {
				step(&row[j], gradW[c][j]/n+lambda*row[j], &sqW[c][j])
			}
			step(&m.Bias[c], gradB[c]/n, &sqB[c])
		}
	}
	return m
}

func evaluate(m *Model, validation []Example) Report {
	var report Report
	if len(validation) == 0 {
		return report
	}

	tp := make(map[string]int)
	predicted := make(map[string]int)
	support := make(map[string]int)
	correct := 0
	for _, ex := range validation {
		got, _ := m.Predict(strings.ToLower(ex.Text))
		support[ex.Intent]++
		predicted[got]++
		if got == ex.Intent {
			tp[got]++
			correct++
		}
	}
	report.Accuracy = float64(correct) / float64(len(validation))

	intents := make([]string, 0, len(support))
	for intent := range support {
		intents = append(intents, intent)
	}
	sort.Strings(intents)
	for _, intent := range intents {
		c := ClassReport{Intent: intent, Support: support[intent]}
		if predicted[intent] > 0 {
			c.Precision = float64(tp[intent]) / float64(predicted[intent])
		}
		c.Recall = float64(tp[intent]) / float64(support[intent])
		report.Classes = append(report.Classes, c)
	}
	return report
}
