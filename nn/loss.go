package nn

import (
	"math"

	"textcnn/tensor"
)

type CrossEntropyLoss struct{}

// Forward returns -Σ label·log(p), with p clamped away from zero.
func (c *CrossEntropyLoss) Forward(softmaxOut, oneHotLabel *tensor.Tensor) float64 {
	loss := 0.0
	for i, y := range oneHotLabel.Data {
		if y > 0 {
			loss -= y * math.Log(math.Max(softmaxOut.Data[i], 1e-10))
		}
	}
	return loss
}

// Backward computes the gradient of the cross-entropy loss with softmax.
// grad = (softmax_output - one_hot_label)
func (c *CrossEntropyLoss) Backward(softmaxOut, oneHotLabel *tensor.Tensor) *tensor.Tensor {
	grad := tensor.New(len(softmaxOut.Data))
	for i := range grad.Data {
		grad.Data[i] = softmaxOut.Data[i] - oneHotLabel.Data[i]
	}
	return grad
}

// OneHot encodes class as a vector of length n.
func OneHot(class, n int) *tensor.Tensor {
	t := tensor.New(n)
	t.Data[class] = 1
	return t
}

// Softmax applies the softmax function to a tensor.
func Softmax(logits *tensor.Tensor) *tensor.Tensor {
	maxLogit := logits.Data[0]
	for _, v := range logits.Data {
		if v > maxLogit {
			maxLogit = v
		}
	}
	expSum := 0.0
	exps := make([]float64, len(logits.Data))
	for i, v := range logits.Data {
		e := math.Exp(v - maxLogit)
		exps[i] = e
		expSum += e
	}
	softmax := tensor.New(len(logits.Data))
	for i, e := range exps {
		softmax.Data[i] = e / expSum
	}
	return softmax
}
