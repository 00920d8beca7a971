package nn

import (
	"fmt"
	"strings"

	"github.com/c2h5oh/datasize"
)

const bytesPerParam = 8

// Summary renders one line per layer with its parameter count and memory.
func Summary(m *TextCNN) string {
	var b strings.Builder
	total, trainable := 0, 0
	fmt.Fprintf(&b, "%-24s %12s %12s\n", "Layer", "Params", "Memory")
	for _, mod := range m.Modules() {
		n := 0
		for _, p := range mod.Params() {
			n += len(p.Value)
			if !p.Frozen {
				trainable += len(p.Value)
			}
		}
		total += n
		fmt.Fprintf(&b, "%-24s %12d %12s\n", mod.Tag(), n, datasize.ByteSize(n*bytesPerParam).HumanReadable())
	}
	fmt.Fprintf(&b, "Flattened features: %d\n", m.FeatureDim)
	fmt.Fprintf(&b, "Total params: %d (%s), trainable: %d\n",
		total, datasize.ByteSize(total*bytesPerParam).HumanReadable(), trainable)
	return b.String()
}
