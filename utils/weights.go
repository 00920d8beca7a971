package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"textcnn/tensor"
)

// CheckpointVersion is written into every saved model.
const CheckpointVersion = "1.0"

// WeightData represents serializable weight data for a layer
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// LayerWeight contains weights and bias for a layer
type LayerWeight struct {
	Weight *WeightData `json:"weight,omitempty"`
	Bias   *WeightData `json:"bias,omitempty"`
}

// ModelWeights is everything needed to rebuild a trained classifier:
// hyperparameters, label names, vocabulary and layer weights.
type ModelWeights struct {
	Version string                 `json:"version"`
	Corpus  string                 `json:"corpus"`
	Config  Config                 `json:"config"`
	Labels  []string               `json:"labels"`
	Vocab   []string               `json:"vocab"`
	Layers  map[string]LayerWeight `json:"layers"`
}

// SaveWeights saves model weights to a JSON file
func SaveWeights(filepath string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadWeights loads model weights from a JSON file
func LoadWeights(filepath string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	if weights.Version != CheckpointVersion {
		return nil, fmt.Errorf("unsupported checkpoint version %q", weights.Version)
	}
	return &weights, nil
}

// TensorToWeightData converts a tensor to serializable weight data
func TensorToWeightData(name string, t *tensor.Tensor) *WeightData {
	return &WeightData{
		Name:  name,
		Shape: append([]int(nil), t.Shape...),
		Data:  append([]float64{}, t.Data...), // copy
	}
}

// WeightDataToTensor converts weight data back to a tensor
func WeightDataToTensor(wd *WeightData) (*tensor.Tensor, error) {
	t := tensor.New(wd.Shape...)
	if len(wd.Data) != len(t.Data) {
		return nil, fmt.Errorf("%s: %d values for shape %v", wd.Name, len(wd.Data), wd.Shape)
	}
	copy(t.Data, wd.Data)
	return t, nil
}
