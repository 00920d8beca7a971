package data

import (
	"strings"
	"testing"
)

func TestLoadVectorsAndMatrix(t *testing.T) {
	vs, err := LoadVectors(strings.NewReader("king 0.1 0.2 0.3\n\nqueen 0.4 0.5 0.6\n"))
	if err != nil {
		t.Fatal(err)
	}
	if vs.Dim != 3 || vs.Len() != 2 {
		t.Fatalf("dim %d len %d", vs.Dim, vs.Len())
	}
	v := NewVocab([]string{PadToken, "queen", "jack", "king"})
	m := vs.Matrix(v)
	if m.Shape[0] != 4 || m.Shape[1] != 3 {
		t.Fatalf("shape %v", m.Shape)
	}
	want := []float64{0, 0, 0, 0.4, 0.5, 0.6, 0, 0, 0, 0.1, 0.2, 0.3}
	for i := range want {
		if m.Data[i] != want[i] {
			t.Fatalf("matrix[%d] = %g, want %g", i, m.Data[i], want[i])
		}
	}
}

func TestLoadVectorsErrors(t *testing.T) {
	cases := map[string]string{
		"ragged":  "a 1 2\nb 1\n",
		"no dims": "a\n",
		"bad num": "a 1 x\n",
		"empty":   "\n\n",
	}
	for name, in := range cases {
		if _, err := LoadVectors(strings.NewReader(in)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
