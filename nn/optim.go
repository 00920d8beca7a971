package nn

import (
	"fmt"
	"math"

	"textcnn/nn/layers"
)

// Optimizer applies accumulated gradients to parameters. Frozen parameters
// are left untouched.
type Optimizer interface {
	Step(params []*layers.Param)
}

// NewOptimizer returns "sgd" or "adam" with the given learning rate.
func NewOptimizer(name string, lr float64) (Optimizer, error) {
	switch name {
	case "sgd":
		return &SGD{LR: lr}, nil
	case "adam", "":
		return NewAdam(lr), nil
	}
	return nil, fmt.Errorf("unknown optimizer %q", name)
}

// SGD is plain gradient descent.
type SGD struct {
	LR float64
}

func (o *SGD) Step(params []*layers.Param) {
	for _, p := range params {
		if p.Frozen {
			continue
		}
		for i, g := range p.Grad {
			p.Value[i] -= o.LR * g
		}
	}
}

// Adam keeps per-parameter first and second moment estimates.
type Adam struct {
	LR, Beta1, Beta2, Eps float64

	t    int
	m, v map[*layers.Param][]float64
}

func NewAdam(lr float64) *Adam {
	return &Adam{
		LR:    lr,
		Beta1: 0.9,
		Beta2: 0.999,
		Eps:   1e-8,
	}
}

func (o *Adam) Step(params []*layers.Param) {
	if o.m == nil {
		o.m = make(map[*layers.Param][]float64)
		o.v = make(map[*layers.Param][]float64)
	}
	o.t++
	c1 := 1 - math.Pow(o.Beta1, float64(o.t))
	c2 := 1 - math.Pow(o.Beta2, float64(o.t))
	for _, p := range params {
		if p.Frozen {
			continue
		}
		m, ok := o.m[p]
		if !ok {
			m = make([]float64, len(p.Value))
			o.m[p] = m
			o.v[p] = make([]float64, len(p.Value))
		}
		v := o.v[p]
		for i, g := range p.Grad {
			m[i] = o.Beta1*m[i] + (1-o.Beta1)*g
			v[i] = o.Beta2*v[i] + (1-o.Beta2)*g*g
			p.Value[i] -= o.LR * (m[i] / c1) / (math.Sqrt(v[i]/c2) + o.Eps)
		}
	}
}
