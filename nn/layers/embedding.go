package layers

import (
	"fmt"

	"textcnn/tensor"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// PadID is the token id reserved for padding. Its embedding row is always zero.
const PadID = 0

// Embedding maps a sequence of token ids to a [Dim, L] feature map,
// one channel per embedding dimension.
type Embedding struct {
	Vocab, Dim int
	W          *tensor.Tensor // [Vocab, Dim]

	weight  *Param
	lastIDs []int
}

// NewEmbedding allocates a randomly initialised table. Row PadID stays zero.
func NewEmbedding(vocab, dim int, src rand.Source) *Embedding {
	e := &Embedding{Vocab: vocab, Dim: dim, W: tensor.New(vocab, dim)}
	dist := distuv.Normal{Mu: 0, Sigma: 0.1, Src: src}
	for i := dim; i < len(e.W.Data); i++ {
		e.W.Data[i] = dist.Rand()
	}
	e.weight = newParam("embedding.weight", e.W.Data)
	return e
}

// LoadPretrained copies a [Vocab, Dim] table and freezes it.
func (e *Embedding) LoadPretrained(rows *tensor.Tensor) error {
	if len(rows.Shape) != 2 || rows.Shape[0] != e.Vocab || rows.Shape[1] != e.Dim {
		return &ShapeError{Layer: e.Tag(), Got: rows.Shape, Want: fmt.Sprintf("[%d %d]", e.Vocab, e.Dim)}
	}
	copy(e.W.Data, rows.Data)
	for d := 0; d < e.Dim; d++ {
		e.W.Set(0, PadID, d)
	}
	e.weight.Frozen = true
	return nil
}

// SetFrozen toggles whether the table receives gradient updates.
func (e *Embedding) SetFrozen(frozen bool) { e.weight.Frozen = frozen }

// Forward takes a 1-D tensor of token ids.
func (e *Embedding) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if len(x.Shape) != 1 {
		return nil, &ShapeError{Layer: e.Tag(), Got: x.Shape, Want: "[L]"}
	}
	L := x.Shape[0]
	ids := make([]int, L)
	out := tensor.New(e.Dim, L)
	for j, v := range x.Data {
		id := int(v)
		if id < 0 || id >= e.Vocab {
			return nil, fmt.Errorf("%s: token id %d out of range [0,%d)", e.Tag(), id, e.Vocab)
		}
		ids[j] = id
		if id == PadID {
			continue
		}
		for d := 0; d < e.Dim; d++ {
			out.Set(e.W.At(id, d), d, j)
		}
	}
	e.lastIDs = ids
	return out, nil
}

// Backward accumulates row gradients. Token ids have no gradient, so the
// returned tensor is always nil.
func (e *Embedding) Backward(gradOut *tensor.Tensor) (*tensor.Tensor, error) {
	if e.lastIDs == nil {
		return nil, ErrNoForward
	}
	if e.weight.Frozen {
		return nil, nil
	}
	L := len(e.lastIDs)
	if len(gradOut.Data) != e.Dim*L {
		return nil, &ShapeError{Layer: e.Tag(), Got: gradOut.Shape, Want: fmt.Sprintf("[%d %d]", e.Dim, L)}
	}
	for j, id := range e.lastIDs {
		if id == PadID {
			continue
		}
		for d := 0; d < e.Dim; d++ {
			e.weight.Grad[id*e.Dim+d] += gradOut.Data[d*L+j]
		}
	}
	return nil, nil
}

func (e *Embedding) Params() []*Param { return []*Param{e.weight} }

func (e *Embedding) Tag() string { return fmt.Sprintf("Embedding_%dx%d", e.Vocab, e.Dim) }
