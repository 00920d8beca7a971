package nn

import (
	"fmt"

	"textcnn/nn/layers"
	"textcnn/tensor"
	"textcnn/utils"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// TextCNN classifies a fixed-length sequence of token ids:
// embedding → [conv → activation → pool] × blocks → flatten → hidden → activation → output.
type TextCNN struct {
	Embedding *layers.Embedding
	Blocks    *Sequential
	Flatten   *layers.Flatten
	Hidden    *layers.Linear
	HiddenAct *layers.Activation
	Output    *layers.Linear

	InputLength int
	FeatureDim  int
	Classes     int
}

// NewTextCNN builds the network described by cfg. The hidden layer's width
// is sized with FeatureCount; a sequence length that the pooling stages
// cannot halve exactly fails with ErrConfig.
func NewTextCNN(cfg *utils.Config, vocabSize int, src rand.Source) (*TextCNN, error) {
	if err := utils.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if vocabSize < 2 {
		return nil, fmt.Errorf("%w: vocabulary needs at least one word besides padding", ErrConfig)
	}

	m := &TextCNN{
		Embedding:   layers.NewEmbedding(vocabSize, cfg.Channels, src),
		Blocks:      &Sequential{},
		Flatten:     layers.NewFlatten(),
		InputLength: cfg.InputLength,
		Classes:     cfg.OutputNodes,
	}

	inC, lastOut := cfg.Channels, cfg.Channels
	for _, outC := range cfg.Filters {
		conv, err := layers.NewConv1D(inC, outC, cfg.KernelSize, src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		act, err := layers.NewActivation(cfg.Activation)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		pool, err := layers.NewMaxPool1D(PoolFactor)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		m.Blocks.Layers = append(m.Blocks.Layers, conv, act, pool)
		inC, lastOut = outC, outC
	}

	features, err := FeatureCount(m.Blocks.Layers, cfg.InputLength, lastOut)
	if err != nil {
		return nil, err
	}
	m.FeatureDim = features

	m.Hidden = layers.NewLinear(features, cfg.HiddenNodes, src)
	if m.HiddenAct, err = layers.NewActivation(cfg.Activation); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	m.Output = layers.NewLinear(cfg.HiddenNodes, cfg.OutputNodes, src)
	return m, nil
}

// Modules lists every layer in forward order.
func (m *TextCNN) Modules() []Module {
	mods := []Module{m.Embedding}
	mods = append(mods, m.Blocks.Layers...)
	return append(mods, m.Flatten, m.Hidden, m.HiddenAct, m.Output)
}

func (m *TextCNN) idsTensor(ids []int) (*tensor.Tensor, error) {
	if len(ids) != m.InputLength {
		return nil, fmt.Errorf("sequence has %d tokens, model expects %d", len(ids), m.InputLength)
	}
	x := tensor.New(len(ids))
	for i, id := range ids {
		x.Data[i] = float64(id)
	}
	return x, nil
}

// Features runs the embedding and convolution stack and returns the
// flattened feature vector of length FeatureDim.
func (m *TextCNN) Features(ids []int) (*tensor.Tensor, error) {
	x, err := m.idsTensor(ids)
	if err != nil {
		return nil, err
	}
	if x, err = m.Embedding.Forward(x); err != nil {
		return nil, err
	}
	if x, err = m.Blocks.Forward(x); err != nil {
		return nil, err
	}
	return m.Flatten.Forward(x)
}

// Classify maps hidden pre-activations to logits. It is the part of the head
// that follows the first fully-connected layer.
func (m *TextCNN) Classify(hidden *tensor.Tensor) (*tensor.Tensor, error) {
	h, err := m.HiddenAct.Forward(hidden)
	if err != nil {
		return nil, err
	}
	return m.Output.Forward(h)
}

// Forward returns the logits for one document.
func (m *TextCNN) Forward(ids []int) (*tensor.Tensor, error) {
	f, err := m.Features(ids)
	if err != nil {
		return nil, err
	}
	h, err := m.Hidden.Forward(f)
	if err != nil {
		return nil, err
	}
	return m.Classify(h)
}

// Backward propagates the gradient of the loss w.r.t. the logits through the
// whole network, accumulating parameter gradients.
func (m *TextCNN) Backward(grad *tensor.Tensor) error {
	head := []Module{m.Output, m.HiddenAct, m.Hidden, m.Flatten}
	var err error
	for _, mod := range head {
		if grad, err = mod.Backward(grad); err != nil {
			return fmt.Errorf("%s: %w", mod.Tag(), err)
		}
	}
	if grad, err = m.Blocks.Backward(grad); err != nil {
		return err
	}
	_, err = m.Embedding.Backward(grad)
	return err
}

// Params returns all parameters, frozen ones included.
func (m *TextCNN) Params() []*layers.Param {
	var ps []*layers.Param
	for _, mod := range m.Modules() {
		ps = append(ps, mod.Params()...)
	}
	return ps
}

// Predict returns the most likely class and the class probabilities.
func (m *TextCNN) Predict(ids []int) (int, []float64, error) {
	logits, err := m.Forward(ids)
	if err != nil {
		return 0, nil, err
	}
	probs := Softmax(logits).Data
	return floats.MaxIdx(probs), probs, nil
}
