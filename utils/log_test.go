package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogfRespectsVerbose(t *testing.T) {
	var buf bytes.Buffer
	oldOut, oldVerbose := Output, Verbose
	defer func() { Output, Verbose = oldOut, oldVerbose }()

	Output = &buf
	Verbose = false
	Logf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	Verbose = true
	Logf("epoch %d", 2)
	if !strings.Contains(buf.String(), "epoch 2") {
		t.Fatalf("missing log line: %q", buf.String())
	}
}
