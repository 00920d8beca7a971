package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStats(t *testing.T, verbose bool, stats *TimingStats, steps int) string {
	t.Helper()
	var buf bytes.Buffer
	oldOut, oldVerbose := Output, Verbose
	t.Cleanup(func() { Output, Verbose = oldOut, oldVerbose })
	Output, Verbose = &buf, verbose
	PrintTimingStats(stats, steps)
	return buf.String()
}

func TestPrintTimingStatsQuiet(t *testing.T) {
	out := captureStats(t, false, &TimingStats{TotalTime: time.Second}, 10)
	assert.Empty(t, out)
}

func TestPrintTimingStatsBreakdown(t *testing.T) {
	stats := &TimingStats{
		TotalTime:       4 * time.Second,
		DataLoadingTime: time.Second,
		ForwardPassTime: 2 * time.Second,
		BackwardTime:    400 * time.Millisecond,
	}
	out := captureStats(t, true, stats, 4)
	assert.Contains(t, out, "=== TIMING STATISTICS ===")
	assert.Contains(t, out, "Average time per step: 1s")
	assert.Contains(t, out, "Data loading: 1s (25.0%)")
	assert.Contains(t, out, "Forward pass: 2s (50.0%)")
	assert.Contains(t, out, "Average backward pass time: 100ms")
	assert.NotContains(t, out, "Encrypted scoring")
}

func TestPrintTimingStatsZeroTotal(t *testing.T) {
	// no division by zero for an empty run or a zero step count
	out := captureStats(t, true, &TimingStats{}, 0)
	assert.Contains(t, out, "Steps completed: 1")
	assert.Contains(t, out, "Evaluation: 0s (0.0%)")
	assert.NotContains(t, out, "NaN")
}

func TestPrintTimingStatsEncrypted(t *testing.T) {
	stats := &TimingStats{
		TotalTime:      30 * time.Millisecond,
		EncryptionTime: 10 * time.Millisecond,
		ServerTime:     15 * time.Millisecond,
		DecryptionTime: 5 * time.Millisecond,
	}
	out := captureStats(t, true, stats, 1)
	require.Contains(t, out, "Encrypted scoring:")
	assert.Contains(t, out, "Encryption: 10ms")
	assert.Contains(t, out, "Server linear: 15ms")
	assert.Contains(t, out, "Decryption: 5ms")
}

func TestDurationUS(t *testing.T) {
	assert.InDelta(t, 1234.567, DurationUS(1234*time.Microsecond+567*time.Nanosecond), 1e-9)
	assert.Zero(t, DurationUS(0))
	assert.Equal(t, 1.5e6, DurationUS(1500*time.Millisecond))
}
