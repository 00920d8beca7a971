package nn

import (
	"fmt"

	"textcnn/nn/layers"
	"textcnn/utils"

	"golang.org/x/exp/rand"
)

func layerKey(i int, mod Module) string {
	return fmt.Sprintf("%02d_%s", i, mod.Tag())
}

// ExportWeights copies every parameterised layer into checkpoint form.
func ExportWeights(m *TextCNN) map[string]utils.LayerWeight {
	out := make(map[string]utils.LayerWeight)
	for i, mod := range m.Modules() {
		ps := mod.Params()
		if len(ps) == 0 {
			continue
		}
		var lw utils.LayerWeight
		lw.Weight = paramData(ps[0])
		if len(ps) > 1 {
			lw.Bias = paramData(ps[1])
		}
		out[layerKey(i, mod)] = lw
	}
	return out
}

func paramData(p *layers.Param) *utils.WeightData {
	return &utils.WeightData{
		Name:  p.Name,
		Shape: []int{len(p.Value)},
		Data:  append([]float64(nil), p.Value...),
	}
}

// ImportWeights loads checkpointed values into a model built with the same
// configuration and vocabulary size.
func ImportWeights(m *TextCNN, saved map[string]utils.LayerWeight) error {
	for i, mod := range m.Modules() {
		ps := mod.Params()
		if len(ps) == 0 {
			continue
		}
		key := layerKey(i, mod)
		lw, ok := saved[key]
		if !ok || lw.Weight == nil {
			return fmt.Errorf("checkpoint has no weights for %s", key)
		}
		if err := ps[0].Load(lw.Weight.Data); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if len(ps) > 1 {
			if lw.Bias == nil {
				return fmt.Errorf("checkpoint has no bias for %s", key)
			}
			if err := ps[1].Load(lw.Bias.Data); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	return nil
}

// FromCheckpoint rebuilds a trained model from its saved configuration,
// vocabulary size and weights.
func FromCheckpoint(w *utils.ModelWeights) (*TextCNN, error) {
	cfg := w.Config
	m, err := NewTextCNN(&cfg, len(w.Vocab), rand.NewSource(cfg.Seed))
	if err != nil {
		return nil, err
	}
	if err := ImportWeights(m, w.Layers); err != nil {
		return nil, err
	}
	return m, nil
}
