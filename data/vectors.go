package data

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"textcnn/tensor"
)

// Vectors is a pretrained word-vector table in GloVe text format.
type Vectors struct {
	Dim   int
	table map[string][]float64
}

// LoadVectors parses lines of the form "word v1 v2 ... vd". All lines must
// have the same dimension.
func LoadVectors(r io.Reader) (*Vectors, error) {
	vs := &Vectors{table: make(map[string][]float64)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: no vector components", line)
		}
		if vs.Dim == 0 {
			vs.Dim = len(fields) - 1
		} else if len(fields)-1 != vs.Dim {
			return nil, fmt.Errorf("line %d: dimension %d, want %d", line, len(fields)-1, vs.Dim)
		}
		vec := make([]float64, vs.Dim)
		for i, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			vec[i] = x
		}
		vs.table[fields[0]] = vec
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(vs.table) == 0 {
		return nil, fmt.Errorf("no vectors found")
	}
	return vs, nil
}

// LoadVectorsFile opens path and calls LoadVectors.
func LoadVectorsFile(path string) (*Vectors, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vs, err := LoadVectors(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vs, nil
}

func (vs *Vectors) Has(w string) bool {
	_, ok := vs.table[w]
	return ok
}

func (vs *Vectors) Len() int { return len(vs.table) }

// Matrix lays out the vectors of v's words as a [v.Size(), Dim] table.
// Rows of padding and of words without a vector are zero.
func (vs *Vectors) Matrix(v *Vocab) *tensor.Tensor {
	m := tensor.New(v.Size(), vs.Dim)
	for id, w := range v.Words {
		if id == 0 {
			continue
		}
		if vec, ok := vs.table[w]; ok {
			copy(m.Data[id*vs.Dim:(id+1)*vs.Dim], vec)
		}
	}
	return m
}
