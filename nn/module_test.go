package nn

import (
	"errors"
	"testing"

	"textcnn/nn/layers"
	"textcnn/tensor"
)

// dummy layer: adds a constant
type addLayer struct{ c float64 }

func (l *addLayer) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out := x.Clone()
	for i := range out.Data {
		out.Data[i] += l.c
	}
	return out, nil
}
func (l *addLayer) Backward(g *tensor.Tensor) (*tensor.Tensor, error) { return g, nil }
func (l *addLayer) Params() []*layers.Param                           { return nil }
func (l *addLayer) Tag() string                                       { return "add" }

// dummy layer: error on forward
type errLayer struct{}

func (l *errLayer) Forward(*tensor.Tensor) (*tensor.Tensor, error) { return nil, errors.New("fail") }
func (l *errLayer) Backward(*tensor.Tensor) (*tensor.Tensor, error) {
	return nil, errors.New("fail")
}
func (l *errLayer) Params() []*layers.Param { return nil }
func (l *errLayer) Tag() string             { return "err" }

func TestSequentialPlain(t *testing.T) {
	a := tensor.New(1)
	a.Data[0] = 1
	seq := &Sequential{Layers: []Module{&addLayer{c: 2}, &addLayer{c: 3}}}
	out, err := seq.Forward(a)
	if err != nil {
		t.Fatal(err)
	}
	if out.Data[0] != 6 {
		t.Fatalf("expected 6, got %f", out.Data[0])
	}
	if a.Data[0] != 1 {
		t.Fatalf("input modified: %f", a.Data[0])
	}
}

func TestSequentialPropagatesErrors(t *testing.T) {
	seq := &Sequential{Layers: []Module{&addLayer{c: 0}, &errLayer{}}}
	if _, err := seq.Forward(tensor.New(1)); err == nil {
		t.Fatal("expected forward error")
	}
	if _, err := seq.Backward(tensor.New(1)); err == nil {
		t.Fatal("expected backward error")
	}
}
