package train

import (
	"context"
	"errors"
	"testing"

	"textcnn/data"
	"textcnn/nn"
	"textcnn/utils"

	"golang.org/x/exp/rand"
)

func toyConfig() *utils.Config {
	return &utils.Config{
		InputLength: 8,
		Channels:    4,
		Filters:     []int{4},
		KernelSize:  3,
		Stride:      1,
		Activation:  "relu",
		LearnRate:   0.01,
		Epochs:      15,
		BatchSize:   4,
		HiddenNodes: 8,
		OutputNodes: 2,
		Optimizer:   "adam",
		Seed:        3,
	}
}

// toyDataset labels a document 1 when it contains token 1, else 0.
func toyDataset(n int, seed uint64) *data.Dataset {
	r := rand.New(rand.NewSource(seed))
	ds := &data.Dataset{}
	for i := 0; i < n; i++ {
		ids := make([]int, 8)
		label := i % 2
		for j := range ids {
			ids[j] = 2 + r.Intn(4)
		}
		if label == 1 {
			ids[r.Intn(8)] = 1
		}
		ds.X = append(ds.X, ids)
		ds.Y = append(ds.Y, label)
	}
	return ds
}

func newToyTrainer(t *testing.T) *Trainer {
	t.Helper()
	cfg := toyConfig()
	model, err := nn.NewTextCNN(cfg, 6, rand.NewSource(cfg.Seed))
	if err != nil {
		t.Fatal(err)
	}
	tr, err := New(model, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestFitReducesLoss(t *testing.T) {
	tr := newToyTrainer(t)
	var seen int
	tr.OnEpoch = func(EpochResult) { seen++ }
	results, err := tr.Fit(context.Background(), toyDataset(40, 1), toyDataset(10, 2))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 15 || seen != 15 {
		t.Fatalf("got %d results, %d callbacks", len(results), seen)
	}
	first, last := results[0], results[len(results)-1]
	if last.Loss >= first.Loss {
		t.Fatalf("loss did not decrease: %g -> %g", first.Loss, last.Loss)
	}
	if last.TestAccuracy < 0 || last.TestAccuracy > 1 {
		t.Fatalf("test accuracy %g", last.TestAccuracy)
	}
	if tr.Stats.ForwardPassTime == 0 || tr.Stats.BackwardTime == 0 {
		t.Fatal("timing stats not recorded")
	}
}

func TestFitHonoursCancellation(t *testing.T) {
	tr := newToyTrainer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := tr.Fit(ctx, toyDataset(8, 1), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results after cancellation", len(results))
	}
}

func TestFitRejectsEmptyTrainingSet(t *testing.T) {
	tr := newToyTrainer(t)
	if _, err := tr.Fit(context.Background(), &data.Dataset{}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestEvaluate(t *testing.T) {
	tr := newToyTrainer(t)
	ds := toyDataset(6, 4)
	m, err := Evaluate(tr.Model, ds, 2)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, row := range m.Confusion {
		for _, n := range row {
			total += n
		}
	}
	if total != 6 {
		t.Fatalf("confusion counts %d documents, want 6", total)
	}
}
