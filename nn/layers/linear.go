package layers

import (
	"fmt"

	"textcnn/tensor"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Linear is a fully-connected layer y = W·x + B backed by gonum matrices.
// The matrices alias the parameter buffers, so optimizer steps are seen
// directly by the next Forward.
type Linear struct {
	In, Out int

	W *mat.Dense    // [Out, In]
	B *mat.VecDense // [Out]

	weight, bias *Param
	gradW        *mat.Dense
	gradB        *mat.VecDense

	lastInput *mat.VecDense
}

// NewLinear(inDim→outDim) with Xavier-uniform weights and zero bias.
func NewLinear(inDim, outDim int, src rand.Source) *Linear {
	l := &Linear{
		In:     inDim,
		Out:    outDim,
		weight: newParam("linear.weight", make([]float64, outDim*inDim)),
		bias:   newParam("linear.bias", make([]float64, outDim)),
	}
	fillUniform(l.weight.Value, inDim, outDim, src)
	l.W = mat.NewDense(outDim, inDim, l.weight.Value)
	l.B = mat.NewVecDense(outDim, l.bias.Value)
	l.gradW = mat.NewDense(outDim, inDim, l.weight.Grad)
	l.gradB = mat.NewVecDense(outDim, l.bias.Grad)
	return l
}

// Forward computes y = Wx + B for a 1-D input of length In.
func (l *Linear) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if len(x.Data) != l.In {
		return nil, &ShapeError{Layer: l.Tag(), Got: x.Shape, Want: fmt.Sprintf("[%d]", l.In)}
	}
	xv := mat.NewVecDense(l.In, append([]float64(nil), x.Data...))
	y := mat.NewVecDense(l.Out, nil)
	y.MulVec(l.W, xv)
	y.AddVec(y, l.B)
	l.lastInput = xv
	return &tensor.Tensor{Data: y.RawVector().Data, Shape: []int{l.Out}}, nil
}

// Backward accumulates dL/dW = g·xᵀ and dL/dB = g and returns Wᵀ·g.
func (l *Linear) Backward(gradOut *tensor.Tensor) (*tensor.Tensor, error) {
	if l.lastInput == nil {
		return nil, ErrNoForward
	}
	if len(gradOut.Data) != l.Out {
		return nil, &ShapeError{Layer: l.Tag(), Got: gradOut.Shape, Want: fmt.Sprintf("[%d]", l.Out)}
	}
	g := mat.NewVecDense(l.Out, gradOut.Data)
	l.gradW.RankOne(l.gradW, 1, g, l.lastInput)
	l.gradB.AddVec(l.gradB, g)

	gx := mat.NewVecDense(l.In, nil)
	gx.MulVec(l.W.T(), g)
	return &tensor.Tensor{Data: gx.RawVector().Data, Shape: []int{l.In}}, nil
}

// Row returns a copy of the j-th weight row.
func (l *Linear) Row(j int) []float64 {
	return mat.Row(nil, j, l.W)
}

func (l *Linear) Params() []*Param { return []*Param{l.weight, l.bias} }

func (l *Linear) Tag() string {
	return fmt.Sprintf("Linear_%d_%d", l.In, l.Out)
}
