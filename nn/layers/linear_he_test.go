package layers

import (
	"testing"

	"textcnn/core/ckkswrapper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestLinear_ForwardHEMatchesPlain(t *testing.T) {
	he, err := ckkswrapper.NewHeContextWithLogN(12)
	require.NoError(t, err)
	l := NewLinear(10, 3, rand.NewSource(11))
	copy(l.Params()[1].Value, []float64{0.1, -0.2, 0.3})
	x := randTensor(12, 10)

	want, err := l.Forward(x)
	require.NoError(t, err)

	kit := he.GenServerKit(l.Rotations(he.Slots()))
	in, err := he.EncryptVector(x.Data)
	require.NoError(t, err)
	out, err := l.ForwardHE(kit, in)
	require.NoError(t, err)
	require.Len(t, out, 3)

	for j, ct := range out {
		got, err := he.DecryptVector(ct, 1)
		require.NoError(t, err)
		assert.InDelta(t, want.Data[j], got[0], 1e-3, "output %d", j)
	}
}

func TestLinear_ForwardHEChunkCount(t *testing.T) {
	he, err := ckkswrapper.NewHeContextWithLogN(12)
	require.NoError(t, err)
	l := NewLinear(4, 1, nil)
	kit := he.GenServerKit(l.Rotations(he.Slots()))
	_, err = l.ForwardHE(kit, nil)
	assert.Error(t, err, "chunk count")
}

func TestLinear_Rotations(t *testing.T) {
	l := NewLinear(10, 2, nil)
	assert.Equal(t, []int{1, 2, 4, 8}, l.Rotations(2048))
	assert.Equal(t, []int{1, 2}, l.Rotations(4), "capped at the slot count")
}
