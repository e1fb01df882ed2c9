package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/beyondtyping/beyond/internal/beyond/classifier"
)

type trainOptions struct {
	data string
	out  string
	classifier.TrainOptions
}

func newTrainCmd() *cobra.Command {
	opts := &trainOptions{TrainOptions: classifier.DefaultTrainOptions()}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the intent classifier from a labelled CSV dataset",
		Long: `Reads a CSV file with a text,intent header, trains the classifier, prints a
validation report and writes the model artifact.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.data, "data", "data/intents.csv", "training dataset")
	f.StringVar(&opts.out, "out", "intent_model.json", "where to write the model")
	f.IntVar(&opts.MaxFeatures, "max-features", opts.MaxFeatures, "vocabulary size bound")
	f.IntVar(&opts.Iterations, "iterations", opts.Iterations, "gradient descent iterations")
	f.Float64Var(&opts.C, "c", opts.C, "inverse regularisation strength")
	f.Float64Var(&opts.ValidationFraction, "validation", opts.ValidationFraction, "fraction held out for the report")
	f.Uint64Var(&opts.Seed, "seed", opts.Seed, "split seed")
	return cmd
}

func runTrain(cmd *cobra.Command, opts *trainOptions) error {
	examples, err := classifier.ReadDatasetFile(opts.data)
	if err != nil {
		return err
	}
	slog.Info("training intent classifier", "dataset", opts.data, "examples", len(examples))

	opts.Logger = slog.Default()
	model, report, err := classifier.Train(examples, opts.TrainOptions)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	if err := report.Write(cmd.OutOrStdout()); err != nil {
		return err
	}
	if err := classifier.Save(model, opts.out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nmodel written to %s (%d intents)\n", opts.out, len(model.Labels))
	return nil
}
