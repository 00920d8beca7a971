package layers

import "textcnn/tensor"

// Flatten reshapes a [C, L] feature map to a [C*L] vector, channel-major.
type Flatten struct {
	inShape []int
}

func NewFlatten() *Flatten { return &Flatten{} }

func (f *Flatten) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	f.inShape = append(f.inShape[:0], x.Shape...)
	return tensor.NewWithData(x.Data), nil
}

func (f *Flatten) Backward(g *tensor.Tensor) (*tensor.Tensor, error) {
	if f.inShape == nil {
		return nil, ErrNoForward
	}
	return g.Clone().Reshape(f.inShape...)
}

func (f *Flatten) Params() []*Param { return nil }

func (f *Flatten) Tag() string {
	return "Flatten"
}
