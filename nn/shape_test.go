package nn

import (
	"math"
	"testing"

	"textcnn/nn/layers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureCount(t *testing.T) {
	cases := []struct {
		name     string
		entries  int
		length   int
		channels int
		want     int
	}{
		{"two blocks", 6, 128, 16, 512},
		{"two blocks uneven quotient", 6, 100, 16, 400},
		{"no pooling", 0, 37, 5, 185},
		{"one block", 3, 2, 1, 1},
		{"three blocks", 9, 600, 50, 3750},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := FeatureCount(make([]string, c.entries), c.length, c.channels)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestFeatureCountRejectsIndivisibleLength(t *testing.T) {
	got, err := FeatureCount(make([]int, 6), 10, 16)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Zero(t, got, "no partial result expected")
}

func TestFeatureCountPropertyOverStages(t *testing.T) {
	for k := 0; k <= 6; k++ {
		pow := 1 << k
		for length := 1; length <= 256; length++ {
			got, err := FeatureCount(make([]struct{}, 3*k), length, 7)
			if length%pow == 0 {
				require.NoError(t, err, "k=%d length=%d", k, length)
				require.Equal(t, 7*(length/pow), got, "k=%d length=%d", k, length)
				continue
			}
			require.ErrorIs(t, err, ErrConfig, "k=%d length=%d", k, length)
		}
	}
}

func TestFeatureCountWithModules(t *testing.T) {
	conv, err := layers.NewConv1D(4, 8, 3, nil)
	require.NoError(t, err)
	act, err := layers.NewActivation("relu")
	require.NoError(t, err)
	pool, err := layers.NewMaxPool1D(2)
	require.NoError(t, err)

	got, err := FeatureCount([]Module{conv, act, pool}, 64, 8)
	require.NoError(t, err)
	assert.Equal(t, 256, got)
}

func TestFeatureCountBadArguments(t *testing.T) {
	bad := []struct {
		name    string
		entries int
		length  int
		ch      int
	}{
		{"zero length", 3, 0, 4},
		{"negative length", 3, -8, 4},
		{"zero channels", 3, 8, 0},
		{"ragged stack", 4, 8, 4},
	}
	for _, b := range bad {
		_, err := FeatureCount(make([]int, b.entries), b.length, b.ch)
		assert.ErrorIs(t, err, ErrConfig, b.name)
	}
}

func TestPooledFeatures(t *testing.T) {
	got, err := PooledFeatures(2, 3, 90, 4)
	require.NoError(t, err)
	assert.Equal(t, 40, got)

	_, err = PooledFeatures(2, 3, 12, 4)
	assert.ErrorIs(t, err, ErrConfig)
	_, err = PooledFeatures(1, 1, 12, 4)
	assert.ErrorIs(t, err, ErrConfig, "factor 1")
	_, err = PooledFeatures(-1, 2, 12, 4)
	assert.ErrorIs(t, err, ErrConfig, "negative stages")
	// deep stacks must not overflow the divisor
	_, err = PooledFeatures(200, 2, 1024, 1)
	assert.ErrorIs(t, err, ErrConfig, "over-deep stack")
}

func TestPooledFeaturesOverflow(t *testing.T) {
	_, err := PooledFeatures(1, math.MaxInt, 1024, 1)
	assert.ErrorIs(t, err, ErrConfig, "huge factor")

	_, err = PooledFeatures(3, math.MaxInt/2, math.MaxInt-1, 1)
	assert.ErrorIs(t, err, ErrConfig, "divisor past length")

	_, err = PooledFeatures(0, 2, math.MaxInt/2, 3)
	assert.ErrorIs(t, err, ErrConfig, "product overflow")

	got, err := PooledFeatures(0, 2, math.MaxInt/2, 2)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt-1, got)
}
