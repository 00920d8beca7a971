// textcnn-client: classifies documents against a remote textcnn-server,
// keeping token ids, features and the secret key local
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"textcnn/core/ckkswrapper"
	"textcnn/data"
	"textcnn/nn"
	"textcnn/split"
	"textcnn/utils"
)

var (
	weightsFile = flag.String("weights", "", "Weights JSON file written by textcnn-train")
	addr        = flag.String("addr", "127.0.0.1:7070", "Server address")
	logN        = flag.Int("logN", ckkswrapper.DefaultLogN, "Ring dimension log2")
	verbose     = flag.Bool("verbose", false, "Verbose output")
)

func log(format string, args ...interface{}) {
	if utils.Verbose {
		fmt.Fprintf(os.Stderr, "[client] "+format+"\n", args...)
	}
}

func main() {
	flag.Parse()
	utils.Verbose = *verbose
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run reads one document per line from stdin and prints its label.
func run() error {
	if *weightsFile == "" {
		return fmt.Errorf("--weights is required")
	}
	weights, err := utils.LoadWeights(*weightsFile)
	if err != nil {
		return err
	}
	model, err := nn.FromCheckpoint(weights)
	if err != nil {
		return err
	}
	vocab := data.NewVocab(weights.Vocab)

	start := time.Now()
	he, err := ckkswrapper.NewHeContextWithLogN(*logN)
	if err != nil {
		return err
	}
	log("HE context ready in %.2fs (%d slots)", time.Since(start).Seconds(), he.Slots())

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	client := split.NewClient(model, he, *logN, split.NewProtocol(conn, conn))
	if err := client.Setup(); err != nil {
		return err
	}
	log("Evaluation keys sent")

	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	n := 0
	for sc.Scan() {
		if sc.Text() == "" {
			continue
		}
		n++
		class, probs, err := client.Classify(vocab.Encode(sc.Text(), weights.Config.InputLength))
		if err != nil {
			return fmt.Errorf("document %d: %w", n, err)
		}
		fmt.Printf("%d\t%s\t%.4f\n", n, weights.Labels[class], probs[class])
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if err := client.Close(); err != nil {
		return err
	}
	log("%d documents: encryption %v, decryption %v", n, client.Stats.EncryptionTime, client.Stats.DecryptionTime)
	return nil
}
