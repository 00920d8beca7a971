package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds model and training hyperparameters for one corpus.
type Config struct {
	Corpus       string  `json:"corpus"`
	InputLength  int     `json:"input_length"`
	Channels     int     `json:"channels"` // embedding dimension
	Filters      []int   `json:"filters"`  // output channels of each convolution block
	KernelSize   int     `json:"kernel_size"`
	Stride       int     `json:"stride"`
	Activation   string  `json:"activation"`
	LearnRate    float64 `json:"learn_rate"`
	Epochs       int     `json:"n_epochs"`
	BatchSize    int     `json:"batch_size"`
	HiddenNodes  int     `json:"hidden_layer_nodes"`
	OutputNodes  int     `json:"output_layer_nodes"`
	Optimizer    string  `json:"optimizer"`
	TestFraction float64 `json:"test_fraction"`
	MinCount     int     `json:"min_count"`
	Seed         uint64  `json:"seed"`
}

// Presets are the per-corpus defaults.
var Presets = map[string]Config{
	"bbcnews": {
		Corpus:       "bbcnews",
		InputLength:  200,
		Channels:     50,
		Filters:      []int{32, 32},
		KernelSize:   9,
		Stride:       1,
		Activation:   "relu",
		LearnRate:    0.0005,
		Epochs:       40,
		BatchSize:    16,
		HiddenNodes:  200,
		OutputNodes:  5,
		Optimizer:    "adam",
		TestFraction: 0.2,
		MinCount:     2,
		Seed:         42,
	},
	"newsgrp": {
		Corpus:       "newsgrp",
		InputLength:  200,
		Channels:     50,
		Filters:      []int{32, 32},
		KernelSize:   5,
		Stride:       1,
		Activation:   "relu",
		LearnRate:    0.001,
		Epochs:       40,
		BatchSize:    16,
		HiddenNodes:  100,
		OutputNodes:  20,
		Optimizer:    "adam",
		TestFraction: 0.2,
		MinCount:     2,
		Seed:         42,
	},
}

// Preset returns a copy of the named preset.
func Preset(corpus string) (Config, error) {
	c, ok := Presets[corpus]
	if !ok {
		return Config{}, fmt.Errorf("no preset for corpus %q", corpus)
	}
	c.Filters = append([]int(nil), c.Filters...)
	return c, nil
}

// LoadConfig overlays the JSON file at path on base. Fields absent from the
// file keep their base values.
func LoadConfig(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return base, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return base, nil
}

// ParseArchitecture parses architecture string into slice of integers
func ParseArchitecture(archStr string) ([]int, error) {
	archParts := strings.Fields(strings.ReplaceAll(archStr, ",", " "))
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		arch[i] = n
	}
	return arch, nil
}

// ValidateConfig validates training configuration
func ValidateConfig(config *Config) error {
	if config.InputLength <= 0 {
		return fmt.Errorf("input length must be positive")
	}
	if config.Channels <= 0 {
		return fmt.Errorf("embedding channels must be positive")
	}
	for i, f := range config.Filters {
		if f <= 0 {
			return fmt.Errorf("filters[%d] must be positive", i)
		}
	}
	if config.KernelSize <= 0 || config.KernelSize%2 == 0 {
		return fmt.Errorf("kernel size must be odd and positive, got %d", config.KernelSize)
	}
	if config.Stride != 1 {
		return fmt.Errorf("only stride 1 convolutions are supported, got %d", config.Stride)
	}
	if config.LearnRate <= 0 {
		return fmt.Errorf("learn rate must be positive")
	}
	if config.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive")
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if config.HiddenNodes <= 0 {
		return fmt.Errorf("hidden layer nodes must be positive")
	}
	if config.OutputNodes < 2 {
		return fmt.Errorf("need at least 2 output nodes, got %d", config.OutputNodes)
	}
	if config.TestFraction < 0 || config.TestFraction >= 1 {
		return fmt.Errorf("test fraction must be in [0,1), got %g", config.TestFraction)
	}
	switch config.Optimizer {
	case "", "adam", "sgd":
	default:
		return fmt.Errorf("optimizer must be 'adam' or 'sgd', got %q", config.Optimizer)
	}
	return nil
}
