package layers

import (
	"fmt"

	"textcnn/core/ckkswrapper"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/hefloat"
)

// ForwardHE evaluates W·x + B on an encrypted input split into slot-sized
// chunks (see HeContext.EncryptVector). Output j is returned as its own
// ciphertext with the result in slot 0. The server never needs the secret key.
func (l *Linear) ForwardHE(kit *ckkswrapper.ServerKit, in []*rlwe.Ciphertext) ([]*rlwe.Ciphertext, error) {
	slots := kit.Params.MaxSlots()
	if want := ckkswrapper.Chunks(l.In, slots); len(in) != want {
		return nil, fmt.Errorf("%s: got %d input chunks, want %d", l.Tag(), len(in), want)
	}
	eval := kit.Evaluator
	width := ckkswrapper.SumWidth(l.In, slots)

	out := make([]*rlwe.Ciphertext, l.Out)
	for j := 0; j < l.Out; j++ {
		row := l.Row(j)
		var acc *rlwe.Ciphertext
		for c, ct := range in {
			lo, hi := c*slots, min((c+1)*slots, l.In)
			pt := hefloat.NewPlaintext(kit.Params, ct.Level())
			if err := kit.Encoder.Encode(row[lo:hi], pt); err != nil {
				return nil, fmt.Errorf("encoding row %d chunk %d: %w", j, c, err)
			}
			prod, err := eval.MulNew(ct, pt)
			if err != nil {
				return nil, err
			}
			if err := eval.Rescale(prod, prod); err != nil {
				return nil, err
			}
			if acc == nil {
				acc = prod
				continue
			}
			if err := eval.Add(acc, prod, acc); err != nil {
				return nil, err
			}
		}

		// tree-sum rotations gather the dot product into slot 0
		for step := 1; step < width; step *= 2 {
			rot, err := eval.RotateNew(acc, step)
			if err != nil {
				return nil, err
			}
			if err := eval.Add(acc, rot, acc); err != nil {
				return nil, err
			}
		}

		biasPT := hefloat.NewPlaintext(kit.Params, acc.Level())
		biasPT.Scale = acc.Scale
		if err := kit.Encoder.Encode([]float64{l.B.AtVec(j)}, biasPT); err != nil {
			return nil, err
		}
		if err := eval.Add(acc, biasPT, acc); err != nil {
			return nil, err
		}
		out[j] = acc
	}
	return out, nil
}

// Rotations lists the rotation keys ForwardHE needs.
func (l *Linear) Rotations(slots int) []int {
	return ckkswrapper.SumRotations(ckkswrapper.SumWidth(l.In, slots))
}
