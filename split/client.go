package split

import (
	"fmt"
	"time"

	"textcnn/core/ckkswrapper"
	"textcnn/nn"
	"textcnn/tensor"
	"textcnn/utils"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"gonum.org/v1/gonum/floats"
)

// Client owns the embedding, the convolution stack, the output layer and
// the secret key. Model.Hidden is never evaluated locally.
type Client struct {
	Model *nn.TextCNN
	HE    *ckkswrapper.HeContext
	Stats *utils.TimingStats

	p    *Protocol
	logN int
	next int
}

func NewClient(model *nn.TextCNN, he *ckkswrapper.HeContext, logN int, p *Protocol) *Client {
	return &Client{Model: model, HE: he, Stats: &utils.TimingStats{}, p: p, logN: logN}
}

// Setup sends the evaluation keys the server needs for the hidden layer.
func (c *Client) Setup() error {
	evk, err := c.HE.GenEvaluationKeys(c.Model.Hidden.Rotations(c.HE.Slots())).MarshalBinary()
	if err != nil {
		return fmt.Errorf("serializing evaluation keys: %w", err)
	}
	return c.p.SendSetup(c.logN, evk)
}

// Classify scores one document, sending only ciphertexts to the server.
func (c *Client) Classify(ids []int) (int, []float64, error) {
	feats, err := c.Model.Features(ids)
	if err != nil {
		return 0, nil, err
	}

	start := time.Now()
	cts, err := c.HE.EncryptVector(feats.Data)
	if err != nil {
		return 0, nil, err
	}
	chunks, err := marshalAll(cts)
	if err != nil {
		return 0, nil, err
	}
	c.Stats.EncryptionTime += time.Since(start)

	c.next++
	if err := c.p.SendFeatures(c.next, chunks); err != nil {
		return 0, nil, err
	}
	resp, err := c.p.ReceiveScores()
	if err != nil {
		return 0, nil, err
	}
	if resp.RequestID != c.next {
		return 0, nil, fmt.Errorf("response for request %d, want %d", resp.RequestID, c.next)
	}

	start = time.Now()
	hidden := tensor.New(len(resp.Scores))
	for j, b := range resp.Scores {
		ct := new(rlwe.Ciphertext)
		if err := ct.UnmarshalBinary(b); err != nil {
			return 0, nil, fmt.Errorf("score %d: %w", j, err)
		}
		v, err := c.HE.DecryptVector(ct, 1)
		if err != nil {
			return 0, nil, err
		}
		hidden.Data[j] = v[0]
	}
	c.Stats.DecryptionTime += time.Since(start)

	logits, err := c.Model.Classify(hidden)
	if err != nil {
		return 0, nil, err
	}
	probs := nn.Softmax(logits).Data
	return floats.MaxIdx(probs), probs, nil
}

// Close ends the session.
func (c *Client) Close() error { return c.p.SendDone() }
