// textcnn-infer: classifies one document with saved weights, optionally
// scoring the first fully-connected layer under CKKS encryption
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"textcnn/core/ckkswrapper"
	"textcnn/data"
	"textcnn/nn"
	"textcnn/split"
	"textcnn/utils"

	"gonum.org/v1/gonum/floats"
)

var (
	weightsFile = flag.String("weights", "", "Weights JSON file written by textcnn-train")
	text        = flag.String("text", "", "Document text")
	inputFile   = flag.String("file", "", "Read the document from a file (- for stdin)")
	logN        = flag.Int("logN", ckkswrapper.DefaultLogN, "Ring dimension log2")
	encrypted   = flag.Bool("encrypted", false, "Score the hidden layer on encrypted features")
	verbose     = flag.Bool("verbose", true, "Verbose output")
	topK        = flag.Int("topk", 3, "Top predictions to show")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func readDocument() (string, error) {
	switch {
	case *text != "":
		return *text, nil
	case *inputFile == "-":
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	case *inputFile != "":
		b, err := os.ReadFile(*inputFile)
		return string(b), err
	}
	return "", fmt.Errorf("one of --text or --file is required")
}

func run() error {
	if *weightsFile == "" {
		return fmt.Errorf("--weights is required")
	}
	doc, err := readDocument()
	if err != nil {
		return err
	}

	weights, err := utils.LoadWeights(*weightsFile)
	if err != nil {
		return err
	}
	cfg := weights.Config
	vocab := data.NewVocab(weights.Vocab)
	model, err := nn.FromCheckpoint(weights)
	if err != nil {
		return err
	}
	utils.Logf("loaded %s model: %d classes, vocabulary %d", weights.Corpus, len(weights.Labels), vocab.Size())

	ids := vocab.Encode(doc, cfg.InputLength)
	start := time.Now()
	var probs []float64
	if *encrypted {
		var he *ckkswrapper.HeContext
		if he, err = ckkswrapper.NewHeContextWithLogN(*logN); err != nil {
			return err
		}
		probs, err = classifyEncrypted(model, he, ids)
	} else {
		_, probs, err = model.Predict(ids)
	}
	if err != nil {
		return err
	}
	fmt.Printf("\nInference time: %.0f µs (encrypted: %v)\n", utils.DurationUS(time.Since(start)), *encrypted)
	printTop(probs, weights.Labels, *topK)
	return nil
}

// classifyEncrypted runs the server half in-process over a pipe.
func classifyEncrypted(model *nn.TextCNN, he *ckkswrapper.HeContext, ids []int) ([]float64, error) {
	c2sR, c2sW := io.Pipe()
	s2cR, s2cW := io.Pipe()
	srv := split.NewServer(model.Hidden)
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(split.NewProtocol(c2sR, s2cW))
		s2cW.Close()
	}()

	client := split.NewClient(model, he, he.Params.LogN(), split.NewProtocol(s2cR, c2sW))
	probs, err := classifyOnce(client, ids)
	if err != nil {
		// unblock the server on either pipe before waiting for it
		c2sW.CloseWithError(err)
		s2cR.CloseWithError(err)
		<-done
		return nil, err
	}
	if err := <-done; err != nil {
		return nil, err
	}
	utils.PrintTimingStats(&utils.TimingStats{
		TotalTime:      client.Stats.EncryptionTime + srv.Stats.ServerTime + client.Stats.DecryptionTime,
		EncryptionTime: client.Stats.EncryptionTime,
		ServerTime:     srv.Stats.ServerTime,
		DecryptionTime: client.Stats.DecryptionTime,
	}, 1)
	return probs, nil
}

func classifyOnce(client *split.Client, ids []int) ([]float64, error) {
	if err := client.Setup(); err != nil {
		return nil, err
	}
	_, probs, err := client.Classify(ids)
	if err != nil {
		return nil, err
	}
	return probs, client.Close()
}

func printTop(probs []float64, labels []string, k int) {
	sorted := append([]float64(nil), probs...)
	idx := make([]int, len(sorted))
	floats.Argsort(sorted, idx)
	if k > len(idx) {
		k = len(idx)
	}
	fmt.Printf("Top %d predictions:\n", k)
	for r := 0; r < k; r++ {
		c := idx[len(idx)-1-r]
		name := fmt.Sprint(c)
		if c < len(labels) {
			name = labels[c]
		}
		fmt.Printf("  %d. %-24s %.4f\n", r+1, name, probs[c])
	}
}
