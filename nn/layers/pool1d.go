package layers

import (
	"fmt"

	"textcnn/tensor"
)

// MaxPool1D takes the maximum over non-overlapping windows along the
// sequence axis. The sequence length must be a multiple of Window.
type MaxPool1D struct {
	Window int

	inShape []int
	argmax  []int
}

// NewMaxPool1D creates a pooling layer over windows of the given width.
func NewMaxPool1D(window int) (*MaxPool1D, error) {
	if window < 1 {
		return nil, fmt.Errorf("maxpool1d: window must be positive, got %d", window)
	}
	return &MaxPool1D{Window: window}, nil
}

func (p *MaxPool1D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if len(x.Shape) != 2 {
		return nil, &ShapeError{Layer: p.Tag(), Got: x.Shape, Want: "[C L]"}
	}
	C, L := x.Shape[0], x.Shape[1]
	if L%p.Window != 0 {
		return nil, &ShapeError{Layer: p.Tag(), Got: x.Shape, Want: fmt.Sprintf("L divisible by %d", p.Window)}
	}
	outL := L / p.Window
	out := tensor.New(C, outL)
	p.argmax = make([]int, C*outL)
	for c := 0; c < C; c++ {
		for i := 0; i < outL; i++ {
			start := c*L + i*p.Window
			best := start
			// strict comparison keeps the first maximum on ties
			for idx := start + 1; idx < start+p.Window; idx++ {
				if x.Data[idx] > x.Data[best] {
					best = idx
				}
			}
			out.Data[c*outL+i] = x.Data[best]
			p.argmax[c*outL+i] = best
		}
	}
	p.inShape = append(p.inShape[:0], x.Shape...)
	return out, nil
}

func (p *MaxPool1D) Backward(gradOut *tensor.Tensor) (*tensor.Tensor, error) {
	if p.argmax == nil {
		return nil, ErrNoForward
	}
	if len(gradOut.Data) != len(p.argmax) {
		return nil, &ShapeError{Layer: p.Tag(), Got: gradOut.Shape, Want: fmt.Sprintf("%d elements", len(p.argmax))}
	}
	gradIn := tensor.New(p.inShape...)
	for i, g := range gradOut.Data {
		gradIn.Data[p.argmax[i]] += g
	}
	return gradIn, nil
}

func (p *MaxPool1D) Params() []*Param { return nil }

func (p *MaxPool1D) Tag() string {
	return fmt.Sprintf("MaxPool1D_%d", p.Window)
}
