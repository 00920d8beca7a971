package split

import (
	"io"
	"math"
	"testing"

	"textcnn/core/ckkswrapper"
	"textcnn/nn"
	"textcnn/utils"

	"golang.org/x/exp/rand"
)

func splitModel(t *testing.T) *nn.TextCNN {
	t.Helper()
	cfg := &utils.Config{
		InputLength: 16,
		Channels:    4,
		Filters:     []int{3, 2},
		KernelSize:  3,
		Stride:      1,
		Activation:  "relu",
		LearnRate:   0.01,
		Epochs:      1,
		BatchSize:   1,
		HiddenNodes: 5,
		OutputNodes: 3,
	}
	m, err := nn.NewTextCNN(cfg, 12, rand.NewSource(11))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestEncryptedClassifyMatchesPlain(t *testing.T) {
	const logN = 12
	model := splitModel(t)
	he, err := ckkswrapper.NewHeContextWithLogN(logN)
	if err != nil {
		t.Fatal(err)
	}

	c2sR, c2sW := io.Pipe()
	s2cR, s2cW := io.Pipe()
	srv := NewServer(model.Hidden)
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(NewProtocol(c2sR, s2cW))
		s2cW.Close()
	}()

	client := NewClient(model, he, logN, NewProtocol(s2cR, c2sW))
	if err := client.Setup(); err != nil {
		t.Fatal(err)
	}

	docs := [][]int{
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 0, 0, 0, 0, 0},
		{4, 4, 4, 9, 9, 9, 1, 1, 2, 0, 0, 0, 0, 0, 0, 0},
	}
	for i, ids := range docs {
		wantClass, wantProbs, err := model.Predict(ids)
		if err != nil {
			t.Fatal(err)
		}
		gotClass, gotProbs, err := client.Classify(ids)
		if err != nil {
			t.Fatalf("doc %d: %v", i, err)
		}
		for k := range wantProbs {
			if math.Abs(gotProbs[k]-wantProbs[k]) > 1e-4 {
				t.Fatalf("doc %d class %d: encrypted %g, plain %g", i, k, gotProbs[k], wantProbs[k])
			}
		}
		if gotClass != wantClass {
			t.Errorf("doc %d: class %d, want %d", i, gotClass, wantClass)
		}
	}

	if err := client.Close(); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
	if client.Stats.EncryptionTime == 0 || srv.Stats.ServerTime == 0 {
		t.Error("timing stats not recorded")
	}
}

func TestClassifyRejectsWrongLength(t *testing.T) {
	model := splitModel(t)
	he, err := ckkswrapper.NewHeContextWithLogN(12)
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(model, he, 12, NewProtocol(nil, io.Discard))
	if _, _, err := client.Classify(make([]int, 3)); err == nil {
		t.Fatal("expected error for short document")
	}
}
