package split

import (
	"errors"
	"fmt"
	"io"
	"time"

	"textcnn/core/ckkswrapper"
	"textcnn/nn/layers"
	"textcnn/utils"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
)

// Server owns the first fully-connected layer of the classifier head.
type Server struct {
	Head  *layers.Linear
	Stats *utils.TimingStats

	kit *ckkswrapper.ServerKit
}

func NewServer(head *layers.Linear) *Server {
	return &Server{Head: head, Stats: &utils.TimingStats{}}
}

// Serve expects a setup message, then answers feature requests until the
// client sends done. Per-request failures are reported to the client and
// do not end the session.
func (s *Server) Serve(p *Protocol) error {
	setup, err := p.ReceiveSetup()
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if err := s.setup(setup); err != nil {
		p.SendError(err)
		return err
	}
	utils.Logf("server: keys received (logN=%d)", setup.LogN)

	for {
		req, err := p.ReceiveFeatures()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		start := time.Now()
		scores, err := s.score(req.Chunks)
		s.Stats.ServerTime += time.Since(start)
		if err != nil {
			utils.Logf("server: request %d: %v", req.RequestID, err)
			if err := p.SendError(err); err != nil {
				return err
			}
			continue
		}
		if err := p.SendScores(req.RequestID, scores); err != nil {
			return err
		}
	}
}

func (s *Server) setup(req *SetupPayload) error {
	params, err := ckkswrapper.NewParameters(req.LogN)
	if err != nil {
		return err
	}
	evk := new(rlwe.MemEvaluationKeySet)
	if err := evk.UnmarshalBinary(req.EvalKeys); err != nil {
		return fmt.Errorf("evaluation keys: %w", err)
	}
	s.kit = ckkswrapper.NewServerKit(params, evk)
	return nil
}

func (s *Server) score(chunks [][]byte) ([][]byte, error) {
	in := make([]*rlwe.Ciphertext, len(chunks))
	for i, b := range chunks {
		ct := new(rlwe.Ciphertext)
		if err := ct.UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		in[i] = ct
	}
	out, err := s.Head.ForwardHE(s.kit, in)
	if err != nil {
		return nil, err
	}
	return marshalAll(out)
}

func marshalAll(cts []*rlwe.Ciphertext) ([][]byte, error) {
	out := make([][]byte, len(cts))
	for i, ct := range cts {
		b, err := ct.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
