// textcnn-server: holds the first fully-connected layer of a trained model
// and scores encrypted feature vectors sent by textcnn-client
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"textcnn/nn"
	"textcnn/split"
	"textcnn/utils"
)

var (
	weightsFile = flag.String("weights", "", "Weights JSON file written by textcnn-train")
	addr        = flag.String("addr", "127.0.0.1:7070", "Listen address")
	verbose     = flag.Bool("verbose", false, "Verbose output")
)

func log(format string, args ...interface{}) {
	if utils.Verbose {
		fmt.Fprintf(os.Stderr, "[server] "+format+"\n", args...)
	}
}

func main() {
	flag.Parse()
	utils.Verbose = *verbose
	utils.Output = os.Stderr

	if *weightsFile == "" {
		fmt.Fprintln(os.Stderr, "Error: --weights is required")
		os.Exit(1)
	}
	weights, err := utils.LoadWeights(*weightsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading weights: %v\n", err)
		os.Exit(1)
	}
	model, err := nn.FromCheckpoint(weights)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building model: %v\n", err)
		os.Exit(1)
	}
	log("Model ready: %s (%d -> %d)", weights.Corpus, model.Hidden.In, model.Hidden.Out)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log("Listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			log("Accept: %v", err)
			continue
		}
		go func(conn net.Conn) {
			defer conn.Close()
			log("Client %s connected", conn.RemoteAddr())
			srv := split.NewServer(model.Hidden)
			if err := srv.Serve(split.NewProtocol(conn, conn)); err != nil {
				log("Client %s: %v", conn.RemoteAddr(), err)
				return
			}
			log("Client %s done (server time %v)", conn.RemoteAddr(), srv.Stats.ServerTime)
		}(conn)
	}
}
