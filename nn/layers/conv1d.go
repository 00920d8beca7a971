package layers

import (
	"fmt"

	"textcnn/tensor"

	"golang.org/x/exp/rand"
)

// Conv1D is a stride-1 convolution over the sequence axis with zero "same"
// padding, so output length equals input length.
// Input  [InC, L]
// Output [OutC, L]
type Conv1D struct {
	InC, OutC, K int

	W *tensor.Tensor // [OutC, InC, K]
	B *tensor.Tensor // [OutC]

	weight, bias *Param
	lastInput    *tensor.Tensor
}

// NewConv1D creates a convolution with an odd kernel width k.
func NewConv1D(inC, outC, k int, src rand.Source) (*Conv1D, error) {
	if k <= 0 || k%2 == 0 {
		return nil, fmt.Errorf("conv1d: kernel size must be odd and positive, got %d", k)
	}
	c := &Conv1D{InC: inC, OutC: outC, K: k, W: tensor.New(outC, inC, k), B: tensor.New(outC)}
	fillNormal(c.W.Data, inC*k, src)
	c.weight = newParam("conv.weight", c.W.Data)
	c.bias = newParam("conv.bias", c.B.Data)
	return c, nil
}

func (c *Conv1D) pad() int { return (c.K - 1) / 2 }

func (c *Conv1D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if len(x.Shape) != 2 || x.Shape[0] != c.InC {
		return nil, &ShapeError{Layer: c.Tag(), Got: x.Shape, Want: fmt.Sprintf("[%d L]", c.InC)}
	}
	L := x.Shape[1]
	pad := c.pad()
	out := tensor.New(c.OutC, L)
	for oc := 0; oc < c.OutC; oc++ {
		row := out.Data[oc*L : (oc+1)*L]
		for t := range row {
			row[t] = c.B.Data[oc]
		}
		for ic := 0; ic < c.InC; ic++ {
			in := x.Data[ic*L : (ic+1)*L]
			w := c.W.Data[(oc*c.InC+ic)*c.K : (oc*c.InC+ic+1)*c.K]
			for k, wk := range w {
				shift := k - pad
				for t := max(0, -shift); t < min(L, L-shift); t++ {
					row[t] += wk * in[t+shift]
				}
			}
		}
	}
	c.lastInput = x
	return out, nil
}

func (c *Conv1D) Backward(gradOut *tensor.Tensor) (*tensor.Tensor, error) {
	x := c.lastInput
	if x == nil {
		return nil, ErrNoForward
	}
	L := x.Shape[1]
	if len(gradOut.Data) != c.OutC*L {
		return nil, &ShapeError{Layer: c.Tag(), Got: gradOut.Shape, Want: fmt.Sprintf("[%d %d]", c.OutC, L)}
	}
	pad := c.pad()
	gradIn := tensor.New(c.InC, L)
	for oc := 0; oc < c.OutC; oc++ {
		g := gradOut.Data[oc*L : (oc+1)*L]
		for _, v := range g {
			c.bias.Grad[oc] += v
		}
		for ic := 0; ic < c.InC; ic++ {
			in := x.Data[ic*L : (ic+1)*L]
			gin := gradIn.Data[ic*L : (ic+1)*L]
			base := (oc*c.InC + ic) * c.K
			for k := 0; k < c.K; k++ {
				shift := k - pad
				wk := c.W.Data[base+k]
				sum := 0.0
				for t := max(0, -shift); t < min(L, L-shift); t++ {
					sum += g[t] * in[t+shift]
					gin[t+shift] += wk * g[t]
				}
				c.weight.Grad[base+k] += sum
			}
		}
	}
	return gradIn, nil
}

func (c *Conv1D) Params() []*Param { return []*Param{c.weight, c.bias} }

func (c *Conv1D) Tag() string { return fmt.Sprintf("Conv1D_%d_%d_k%d", c.InC, c.OutC, c.K) }
