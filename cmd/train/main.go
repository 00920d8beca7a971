// textcnn-train: trains a convolutional text classifier on a labelled corpus
//
// Usage:
//
//	textcnn-train --corpus=bbcnews --data=./datasets --vectors=glove.6B.50d.txt --output=bbc.json
//	textcnn-train --corpus=newsgrp --filters="64 32 16" --activation=tanh --output=ng.json
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"textcnn/data"
	"textcnn/nn"
	"textcnn/nn/layers"
	"textcnn/parallel"
	"textcnn/train"
	"textcnn/utils"

	"golang.org/x/exp/rand"
)

var (
	corpus      = flag.String("corpus", "bbcnews", "Corpus id: bbcnews, newsgrp")
	dataRoot    = flag.String("data", "datasets", "Directory holding <corpus>/ or <corpus>.csv")
	configFile  = flag.String("config", "", "JSON file overriding the corpus preset")
	vectorsFile = flag.String("vectors", "", "GloVe text file used to initialise and freeze the embedding")
	trainEmbed  = flag.Bool("train-embedding", false, "Keep updating a pretrained embedding instead of freezing it")
	filters     = flag.String("filters", "", "Output channels per convolution block, e.g. \"32 32\" (empty = preset)")
	activation  = flag.String("activation", "", "Block activation: "+strings.Join(layers.SupportedActivations, ", ")+" (empty = preset)")
	epochs      = flag.Int("epochs", 0, "Number of training epochs (0 = preset)")
	lr          = flag.Float64("lr", 0, "Learning rate (0 = preset)")
	batch       = flag.Int("batch", 0, "Mini-batch size (0 = preset)")
	seed        = flag.Uint64("seed", 0, "Random seed (0 = preset)")
	workers     = flag.Int("workers", 0, "Concurrent file readers (0 = logical cores)")
	outputFile  = flag.String("output", "", "Output weights file (JSON)")
	verbose     = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (utils.Config, error) {
	cfg, err := utils.Preset(*corpus)
	if err != nil {
		return cfg, err
	}
	if *configFile != "" {
		if cfg, err = utils.LoadConfig(*configFile, cfg); err != nil {
			return cfg, err
		}
	}
	if *filters != "" {
		if cfg.Filters, err = utils.ParseArchitecture(*filters); err != nil {
			return cfg, fmt.Errorf("parsing --filters: %w", err)
		}
	}
	if *activation != "" {
		cfg.Activation = *activation
	}
	if *epochs > 0 {
		cfg.Epochs = *epochs
	}
	if *lr > 0 {
		cfg.LearnRate = *lr
	}
	if *batch > 0 {
		cfg.BatchSize = *batch
	}
	if *seed > 0 {
		cfg.Seed = *seed
	}
	return cfg, utils.ValidateConfig(&cfg)
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *workers <= 0 {
		*workers = parallel.Workers()
	}

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                     TextCNN Trainer                          ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nConfiguration:\n")
	fmt.Printf("  Corpus:        %s\n", cfg.Corpus)
	fmt.Printf("  Input length:  %d\n", cfg.InputLength)
	fmt.Printf("  Filters:       %v (kernel %d)\n", cfg.Filters, cfg.KernelSize)
	fmt.Printf("  Epochs:        %d\n", cfg.Epochs)
	fmt.Printf("  Learning Rate: %.4f (%s)\n", cfg.LearnRate, cfg.Optimizer)
	fmt.Printf("  Batch size:    %d\n", cfg.BatchSize)
	fmt.Printf("  CPU:           %s\n", parallel.Describe())
	fmt.Println()

	stats := &utils.TimingStats{}
	totalStart := time.Now()

	start := time.Now()
	docs, err := data.Open(*dataRoot, *corpus, *workers)
	if err != nil {
		return err
	}
	if want, ok := data.Known[*corpus]; ok && want != len(docs.Labels) {
		utils.Logf("corpus %s has %d labels, expected %d", *corpus, len(docs.Labels), want)
	}
	cfg.OutputNodes = len(docs.Labels)
	if err := utils.ValidateConfig(&cfg); err != nil {
		return err
	}
	trainDocs, testDocs, err := docs.Split(cfg.TestFraction, cfg.Seed)
	if err != nil {
		return err
	}

	var vectors *data.Vectors
	if *vectorsFile != "" {
		if vectors, err = data.LoadVectorsFile(*vectorsFile); err != nil {
			return err
		}
		if vectors.Dim != cfg.Channels {
			utils.Logf("using vector dimension %d instead of %d channels", vectors.Dim, cfg.Channels)
			cfg.Channels = vectors.Dim
		}
	}
	vocab := data.BuildVocab(trainDocs.Texts(), cfg.MinCount, vectors)
	trainSet := data.Encode(trainDocs, vocab, cfg.InputLength)
	testSet := data.Encode(testDocs, vocab, cfg.InputLength)
	stats.DataLoadingTime = time.Since(start)
	fmt.Printf("Loaded %d documents in %d classes (%d train / %d test), vocabulary %d\n",
		len(docs.Docs), len(docs.Labels), trainSet.Len(), testSet.Len(), vocab.Size())

	start = time.Now()
	model, err := nn.NewTextCNN(&cfg, vocab.Size(), rand.NewSource(cfg.Seed))
	if err != nil {
		return err
	}
	if vectors != nil {
		if err := model.Embedding.LoadPretrained(vectors.Matrix(vocab)); err != nil {
			return err
		}
		model.Embedding.SetFrozen(!*trainEmbed)
	}
	stats.ModelInitTime = time.Since(start)
	fmt.Printf("\n%s\n", nn.Summary(model))

	trainer, err := train.New(model, &cfg)
	if err != nil {
		return err
	}
	trainer.Stats = stats
	trainer.OnEpoch = func(r train.EpochResult) {
		fmt.Printf("Epoch %d/%d | Loss: %.6f | Train acc: %.4f | Test acc: %.4f | Time: %.2fs\n",
			r.Epoch, cfg.Epochs, r.Loss, r.TrainAccuracy, r.TestAccuracy, r.Duration.Seconds())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	fmt.Println("Starting training...")
	results, err := trainer.Fit(ctx, trainSet, testSet)
	if err != nil && ctx.Err() == nil {
		return err
	}
	if ctx.Err() != nil {
		fmt.Printf("\nInterrupted after %d epochs\n", len(results))
	}

	if testSet.Len() > 0 {
		start = time.Now()
		m, err := train.Evaluate(model, testSet, cfg.OutputNodes)
		if err != nil {
			return err
		}
		stats.EvaluationTime += time.Since(start)
		fmt.Printf("\nTest set:\n%s", m.Report(docs.Labels))
	}

	stats.TotalTime = time.Since(totalStart)
	fmt.Printf("\nTraining complete! Total time: %.2fs\n", stats.TotalTime.Seconds())
	utils.PrintTimingStats(stats, len(results)*trainSet.Len())

	if *outputFile != "" {
		fmt.Printf("\nSaving weights to %s...\n", *outputFile)
		weights := &utils.ModelWeights{
			Version: utils.CheckpointVersion,
			Corpus:  cfg.Corpus,
			Config:  cfg,
			Labels:  docs.Labels,
			Vocab:   vocab.Words,
			Layers:  nn.ExportWeights(model),
		}
		if err := utils.SaveWeights(*outputFile, weights); err != nil {
			return fmt.Errorf("saving weights: %w", err)
		}
		fmt.Println("Done!")
	}
	return nil
}
