package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFlag(t *testing.T, p *string, v string) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}

func TestLoadConfigOverrides(t *testing.T) {
	setFlag(t, corpus, "newsgrp")
	setFlag(t, filters, "16, 8 4")
	setFlag(t, activation, "tanh")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, []int{16, 8, 4}, cfg.Filters)
	assert.Equal(t, "tanh", cfg.Activation)
	assert.Equal(t, "newsgrp", cfg.Corpus)
}

func TestLoadConfigRejectsBadFilters(t *testing.T) {
	setFlag(t, filters, "32 wide")
	_, err := loadConfig()
	assert.ErrorContains(t, err, "--filters")

	setFlag(t, filters, "32 0")
	_, err = loadConfig()
	assert.Error(t, err, "zero-width block")
}
