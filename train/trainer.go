// Package train fits a TextCNN with mini-batch gradient descent and
// scores it on held-out documents.
package train

import (
	"context"
	"fmt"
	"time"

	"textcnn/data"
	"textcnn/nn"
	"textcnn/utils"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EpochResult summarises one pass over the training set.
type EpochResult struct {
	Epoch         int
	Loss          float64
	TrainAccuracy float64
	TestAccuracy  float64
	Duration      time.Duration
}

type Trainer struct {
	Model     *nn.TextCNN
	Optimizer nn.Optimizer
	Loss      nn.CrossEntropyLoss
	BatchSize int
	Epochs    int
	Seed      uint64
	Stats     *utils.TimingStats

	// OnEpoch, if set, is called after every epoch.
	OnEpoch func(EpochResult)
}

// New builds a trainer from the optimizer, batch and epoch settings of cfg.
func New(model *nn.TextCNN, cfg *utils.Config) (*Trainer, error) {
	opt, err := nn.NewOptimizer(cfg.Optimizer, cfg.LearnRate)
	if err != nil {
		return nil, err
	}
	return &Trainer{
		Model:     model,
		Optimizer: opt,
		BatchSize: cfg.BatchSize,
		Epochs:    cfg.Epochs,
		Seed:      cfg.Seed,
		Stats:     &utils.TimingStats{},
	}, nil
}

// Fit trains for t.Epochs epochs. Gradients are averaged over each batch
// before the optimizer step. test may be nil. Cancelling ctx stops training
// between batches; the epochs finished so far are returned with ctx.Err().
func (t *Trainer) Fit(ctx context.Context, train, test *data.Dataset) ([]EpochResult, error) {
	if train.Len() == 0 {
		return nil, fmt.Errorf("empty training set")
	}
	if t.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", t.BatchSize)
	}
	if t.Stats == nil {
		t.Stats = &utils.TimingStats{}
	}
	rng := rand.New(rand.NewSource(t.Seed))
	params := t.Model.Params()
	results := make([]EpochResult, 0, t.Epochs)

	for epoch := 1; epoch <= t.Epochs; epoch++ {
		start := time.Now()
		order := rng.Perm(train.Len())
		losses := make([]float64, 0, train.Len())
		correct := 0

		for lo := 0; lo < len(order); lo += t.BatchSize {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			batch := order[lo:min(lo+t.BatchSize, len(order))]
			nn.ZeroGrad(params)
			for _, i := range batch {
				loss, pred, err := t.step(train.X[i], train.Y[i])
				if err != nil {
					return results, fmt.Errorf("epoch %d, document %d: %w", epoch, i, err)
				}
				losses = append(losses, loss)
				if pred == train.Y[i] {
					correct++
				}
			}
			s := time.Now()
			for _, p := range params {
				p.ScaleGrad(1 / float64(len(batch)))
			}
			t.Optimizer.Step(params)
			t.Stats.UpdateTime += time.Since(s)
		}

		r := EpochResult{
			Epoch:         epoch,
			Loss:          stat.Mean(losses, nil),
			TrainAccuracy: float64(correct) / float64(train.Len()),
		}
		if test != nil && test.Len() > 0 {
			s := time.Now()
			m, err := Evaluate(t.Model, test, t.Model.Classes)
			if err != nil {
				return results, err
			}
			t.Stats.EvaluationTime += time.Since(s)
			r.TestAccuracy = m.Accuracy
		}
		r.Duration = time.Since(start)
		results = append(results, r)
		if t.OnEpoch != nil {
			t.OnEpoch(r)
		}
	}
	return results, nil
}

// step runs forward and backward for one document, accumulating gradients.
func (t *Trainer) step(ids []int, label int) (float64, int, error) {
	s := time.Now()
	logits, err := t.Model.Forward(ids)
	if err != nil {
		return 0, 0, err
	}
	probs := nn.Softmax(logits)
	target := nn.OneHot(label, len(probs.Data))
	loss := t.Loss.Forward(probs, target)
	t.Stats.ForwardPassTime += time.Since(s)

	s = time.Now()
	if err := t.Model.Backward(t.Loss.Backward(probs, target)); err != nil {
		return 0, 0, err
	}
	t.Stats.BackwardTime += time.Since(s)
	return loss, floats.MaxIdx(probs.Data), nil
}
