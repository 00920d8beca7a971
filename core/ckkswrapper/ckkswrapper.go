// Package ckkswrapper bundles the lattigo CKKS objects used for encrypted
// scoring: a client-side HeContext that owns the secret key, and a
// ServerKit that can only evaluate.
package ckkswrapper

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/hefloat"
)

// DefaultLogN gives 4096 slots per ciphertext.
const DefaultLogN = 13

// HeContext holds the parameters and the key material of the data owner.
type HeContext struct {
	Params    hefloat.Parameters
	Encoder   *hefloat.Encoder
	Encryptor *rlwe.Encryptor
	Decryptor *rlwe.Decryptor

	kgen *rlwe.KeyGenerator
	sk   *rlwe.SecretKey
	rlk  *rlwe.RelinearizationKey
}

// ServerKit is what the model owner receives: enough to multiply by
// plaintext weights, rescale and rotate, but not to decrypt.
type ServerKit struct {
	Params    hefloat.Parameters
	Encoder   *hefloat.Encoder
	Evaluator *hefloat.Evaluator
}

// NewHeContext uses DefaultLogN.
func NewHeContext() (*HeContext, error) {
	return NewHeContextWithLogN(DefaultLogN)
}

// NewHeContextWithLogN builds a CKKS context with one rescaling level, which
// is all a plaintext-weight dot product consumes.
func NewHeContextWithLogN(logN int) (*HeContext, error) {
	params, err := NewParameters(logN)
	if err != nil {
		return nil, err
	}
	kgen := hefloat.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()
	return &HeContext{
		Params:    params,
		Encoder:   hefloat.NewEncoder(params),
		Encryptor: hefloat.NewEncryptor(params, pk),
		Decryptor: hefloat.NewDecryptor(params, sk),
		kgen:      kgen,
		sk:        sk,
		rlk:       kgen.GenRelinearizationKeyNew(sk),
	}, nil
}

// NewParameters returns the CKKS parameter set for ring degree 2^logN. Both
// parties derive it from logN alone.
func NewParameters(logN int) (hefloat.Parameters, error) {
	if logN < 10 || logN > 16 {
		return hefloat.Parameters{}, fmt.Errorf("logN must be in [10,16], got %d", logN)
	}
	params, err := hefloat.NewParametersFromLiteral(hefloat.ParametersLiteral{
		LogN:            logN,
		LogQ:            []int{55, 40, 40},
		LogP:            []int{61},
		LogDefaultScale: 40,
	})
	if err != nil {
		return hefloat.Parameters{}, fmt.Errorf("ckks parameters: %w", err)
	}
	return params, nil
}

// Slots is the number of real values packed per ciphertext.
func (h *HeContext) Slots() int { return h.Params.MaxSlots() }

// GenServerKit generates Galois keys for the given rotations and returns an
// evaluator bound to them.
func (h *HeContext) GenServerKit(rotations []int) *ServerKit {
	return NewServerKit(h.Params, h.GenEvaluationKeys(rotations))
}

// GenEvaluationKeys returns the relinearization key and the Galois keys for
// rotations. This is the only key material that leaves the data owner.
func (h *HeContext) GenEvaluationKeys(rotations []int) *rlwe.MemEvaluationKeySet {
	seen := make(map[uint64]bool, len(rotations))
	galEls := make([]uint64, 0, len(rotations))
	for _, r := range rotations {
		el := h.Params.GaloisElement(r)
		if !seen[el] {
			seen[el] = true
			galEls = append(galEls, el)
		}
	}
	return rlwe.NewMemEvaluationKeySet(h.rlk, h.kgen.GenGaloisKeysNew(galEls, h.sk)...)
}

// NewServerKit binds an evaluator to received evaluation keys.
func NewServerKit(params hefloat.Parameters, evk *rlwe.MemEvaluationKeySet) *ServerKit {
	return &ServerKit{
		Params:    params,
		Encoder:   hefloat.NewEncoder(params),
		Evaluator: hefloat.NewEvaluator(params, evk),
	}
}

// EncryptVector packs v into ceil(len(v)/slots) ciphertexts at max level.
func (h *HeContext) EncryptVector(v []float64) ([]*rlwe.Ciphertext, error) {
	slots := h.Slots()
	n := Chunks(len(v), slots)
	out := make([]*rlwe.Ciphertext, n)
	for c := 0; c < n; c++ {
		lo, hi := c*slots, min((c+1)*slots, len(v))
		pt := hefloat.NewPlaintext(h.Params, h.Params.MaxLevel())
		if err := h.Encoder.Encode(v[lo:hi], pt); err != nil {
			return nil, fmt.Errorf("encoding chunk %d: %w", c, err)
		}
		ct, err := h.Encryptor.EncryptNew(pt)
		if err != nil {
			return nil, fmt.Errorf("encrypting chunk %d: %w", c, err)
		}
		out[c] = ct
	}
	return out, nil
}

// DecryptVector returns the first n slots of ct.
func (h *HeContext) DecryptVector(ct *rlwe.Ciphertext, n int) ([]float64, error) {
	if n > h.Slots() {
		return nil, fmt.Errorf("requested %d slots, ciphertext holds %d", n, h.Slots())
	}
	pt := h.Decryptor.DecryptNew(ct)
	decoded := make([]complex128, h.Slots())
	if err := h.Encoder.Decode(pt, decoded); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = real(decoded[i])
	}
	return out, nil
}

// Chunks is the number of ciphertexts needed for n values.
func Chunks(n, slots int) int {
	if n <= 0 {
		return 0
	}
	return (n + slots - 1) / slots
}

// SumWidth is the power-of-two span a rotate-and-add tree must cover so
// that slot 0 holds the sum of the first min(n, slots) slots.
func SumWidth(n, slots int) int {
	w := 1
	for w < n && w < slots {
		w *= 2
	}
	return w
}

// SumRotations lists the rotations 1, 2, 4, … below width.
func SumRotations(width int) []int {
	var rots []int
	for step := 1; step < width; step *= 2 {
		rots = append(rots, step)
	}
	return rots
}
