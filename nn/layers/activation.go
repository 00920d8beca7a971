package layers

import (
	"fmt"
	"math"

	"textcnn/tensor"
)

// Activation applies an element-wise non-linearity.
type Activation struct {
	name string
	fn   func(float64) float64
	// deriv is expressed in terms of the input x and the output y.
	deriv func(x, y float64) float64

	lastInput, lastOutput *tensor.Tensor
}

// SupportedActivations lists the names accepted by NewActivation.
var SupportedActivations = []string{"relu", "tanh"}

// NewActivation creates a new activation layer.
func NewActivation(name string) (*Activation, error) {
	a := &Activation{name: name}
	switch name {
	case "relu":
		a.fn = func(x float64) float64 { return math.Max(0, x) }
		a.deriv = func(x, _ float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		}
	case "tanh":
		a.fn = math.Tanh
		a.deriv = func(_, y float64) float64 { return 1 - y*y }
	default:
		return nil, fmt.Errorf("unsupported activation: %s", name)
	}
	return a, nil
}

func (a *Activation) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out := tensor.New(x.Shape...)
	for i, v := range x.Data {
		out.Data[i] = a.fn(v)
	}
	a.lastInput, a.lastOutput = x, out
	return out, nil
}

func (a *Activation) Backward(gradOut *tensor.Tensor) (*tensor.Tensor, error) {
	if a.lastInput == nil {
		return nil, ErrNoForward
	}
	if len(gradOut.Data) != len(a.lastInput.Data) {
		return nil, &ShapeError{Layer: a.Tag(), Got: gradOut.Shape, Want: fmt.Sprint(a.lastInput.Shape)}
	}
	gradIn := tensor.New(a.lastInput.Shape...)
	for i, g := range gradOut.Data {
		gradIn.Data[i] = g * a.deriv(a.lastInput.Data[i], a.lastOutput.Data[i])
	}
	return gradIn, nil
}

func (a *Activation) Params() []*Param { return nil }

func (a *Activation) Tag() string { return a.name }
