package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPresetsValidate(t *testing.T) {
	for name := range Presets {
		c, err := Preset(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := ValidateConfig(&c); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
	if _, err := Preset("imdb"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestPresetIsCopy(t *testing.T) {
	c, _ := Preset("bbcnews")
	c.Filters[0] = 1
	if Presets["bbcnews"].Filters[0] == 1 {
		t.Fatal("Preset must not alias the shared filters slice")
	}
}

func TestValidateConfigRejects(t *testing.T) {
	mutations := map[string]func(*Config){
		"even kernel":   func(c *Config) { c.KernelSize = 4 },
		"stride 2":      func(c *Config) { c.Stride = 2 },
		"zero length":   func(c *Config) { c.InputLength = 0 },
		"bad filter":    func(c *Config) { c.Filters = []int{8, 0} },
		"one class":     func(c *Config) { c.OutputNodes = 1 },
		"test fraction": func(c *Config) { c.TestFraction = 1 },
		"optimizer":     func(c *Config) { c.Optimizer = "rmsprop" },
		"batch":         func(c *Config) { c.BatchSize = 0 },
	}
	for name, mutate := range mutations {
		c, _ := Preset("newsgrp")
		mutate(&c)
		if err := ValidateConfig(&c); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestParseArchitecture(t *testing.T) {
	arch, err := ParseArchitecture("32 64,16")
	if err != nil {
		t.Fatal(err)
	}
	if len(arch) != 3 || arch[0] != 32 || arch[1] != 64 || arch[2] != 16 {
		t.Fatalf("got %v", arch)
	}
	if _, err := ParseArchitecture("32 x"); err == nil {
		t.Fatal("expected parse error")
	}
	empty, err := ParseArchitecture("")
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty architecture: %v %v", empty, err)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	os.WriteFile(path, []byte(`{"n_epochs": 3, "filters": [8]}`), 0644)
	base, _ := Preset("bbcnews")
	c, err := LoadConfig(path, base)
	if err != nil {
		t.Fatal(err)
	}
	if c.Epochs != 3 || len(c.Filters) != 1 || c.Filters[0] != 8 {
		t.Fatalf("overlay not applied: %+v", c)
	}
	if c.KernelSize != base.KernelSize {
		t.Fatalf("kernel size should keep base value")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"), base); err == nil {
		t.Fatal("expected error for missing file")
	}
}
