package nn

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfig marks a structural mismatch between the sequence length and the
// depth of the convolutional stack. It is raised at model construction and
// has to be fixed by the caller before training can start.
var ErrConfig = errors.New("configuration error")

const (
	// BlockLen is the number of stack entries per block:
	// convolution, activation, pooling.
	BlockLen = 3
	// PoolFactor is the stride of every pooling stage.
	PoolFactor = 2
)

// FeatureCount returns how many scalars reach the flatten step after the
// given convolutional stack, where every BlockLen entries form one block that
// halves the sequence once. lastOutChannels is the channel count of the last
// convolution.
//
// The result is lastOutChannels * inputLength / 2^(len(stack)/3). A length
// that does not survive the repeated halving exactly is rejected with
// ErrConfig rather than truncated.
func FeatureCount[S ~[]E, E any](stack S, inputLength, lastOutChannels int) (int, error) {
	if len(stack)%BlockLen != 0 {
		return 0, fmt.Errorf("%w: stack has %d entries, want a multiple of %d", ErrConfig, len(stack), BlockLen)
	}
	return PooledFeatures(len(stack)/BlockLen, PoolFactor, inputLength, lastOutChannels)
}

// PooledFeatures is FeatureCount with the number of pooling stages and the
// pooling factor given explicitly.
func PooledFeatures(stages, factor, inputLength, channels int) (int, error) {
	switch {
	case inputLength <= 0:
		return 0, fmt.Errorf("%w: input length must be positive, got %d", ErrConfig, inputLength)
	case channels <= 0:
		return 0, fmt.Errorf("%w: channel count must be positive, got %d", ErrConfig, channels)
	case stages < 0:
		return 0, fmt.Errorf("%w: negative pooling stage count %d", ErrConfig, stages)
	case factor < 2:
		return 0, fmt.Errorf("%w: pooling factor must be at least 2, got %d", ErrConfig, factor)
	}

	divisor := 1
	for i := 0; i < stages; i++ {
		// past this point divisor*factor exceeds inputLength
		if factor > inputLength/divisor {
			return 0, fmt.Errorf("%w: input length %d is not divisible by %d^%d",
				ErrConfig, inputLength, factor, stages)
		}
		divisor *= factor
	}
	if inputLength%divisor != 0 {
		return 0, fmt.Errorf("%w: input length %d is not divisible by %d^%d",
			ErrConfig, inputLength, factor, stages)
	}
	pooled := inputLength / divisor
	if channels > math.MaxInt/pooled {
		return 0, fmt.Errorf("%w: %d channels x %d positions overflows int", ErrConfig, channels, pooled)
	}
	return channels * pooled, nil
}
