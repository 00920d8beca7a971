package layers

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Param is a trainable buffer together with its accumulated gradient.
// Value may alias a layer's weight storage.
type Param struct {
	Name   string
	Value  []float64
	Grad   []float64
	Frozen bool
}

func newParam(name string, value []float64) *Param {
	return &Param{Name: name, Value: value, Grad: make([]float64, len(value))}
}

// ZeroGrad clears the accumulated gradient.
func (p *Param) ZeroGrad() {
	for i := range p.Grad {
		p.Grad[i] = 0
	}
}

// ScaleGrad multiplies the accumulated gradient by s.
func (p *Param) ScaleGrad(s float64) {
	for i := range p.Grad {
		p.Grad[i] *= s
	}
}

// Load copies values into the parameter.
func (p *Param) Load(values []float64) error {
	if len(values) != len(p.Value) {
		return fmt.Errorf("%s: got %d values, want %d", p.Name, len(values), len(p.Value))
	}
	copy(p.Value, values)
	return nil
}

// ShapeError reports an input whose shape a layer cannot process.
type ShapeError struct {
	Layer string
	Got   []int
	Want  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: input shape %v, want %s", e.Layer, e.Got, e.Want)
}

// ErrNoForward is returned by Backward when no input was cached.
var ErrNoForward = fmt.Errorf("backward called before forward")

// fillNormal draws He-style initial weights: N(0, 2/fanIn).
func fillNormal(dst []float64, fanIn int, src rand.Source) {
	dist := distuv.Normal{Mu: 0, Sigma: math.Sqrt(2 / float64(fanIn)), Src: src}
	for i := range dst {
		dst[i] = dist.Rand()
	}
}

// fillUniform draws Xavier-style weights in ±sqrt(6/(fanIn+fanOut)).
func fillUniform(dst []float64, fanIn, fanOut int, src rand.Source) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}
	for i := range dst {
		dst[i] = dist.Rand()
	}
}
