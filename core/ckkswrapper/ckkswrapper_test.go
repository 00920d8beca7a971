package ckkswrapper

import (
	"math"
	"testing"
)

func TestHeContextRoundTrip(t *testing.T) {
	h, err := NewHeContextWithLogN(12)
	if err != nil {
		t.Fatal(err)
	}
	vals := []float64{3.1415926535, -2, 0.5}
	cts, err := h.EncryptVector(vals)
	if err != nil {
		t.Fatalf("encrypt error: %v", err)
	}
	if len(cts) != 1 {
		t.Fatalf("want 1 chunk, got %d", len(cts))
	}
	got, err := h.DecryptVector(cts[0], len(vals))
	if err != nil {
		t.Fatalf("decrypt error: %v", err)
	}
	for i := range vals {
		if math.Abs(got[i]-vals[i]) > 1e-6 {
			t.Fatalf("slot %d: got %f, want %f", i, got[i], vals[i])
		}
	}
}

func TestEncryptVectorChunks(t *testing.T) {
	h, err := NewHeContextWithLogN(12)
	if err != nil {
		t.Fatal(err)
	}
	slots := h.Slots()
	v := make([]float64, slots+3)
	v[slots+2] = 1.25
	cts, err := h.EncryptVector(v)
	if err != nil {
		t.Fatal(err)
	}
	if len(cts) != 2 {
		t.Fatalf("want 2 chunks, got %d", len(cts))
	}
	tail, err := h.DecryptVector(cts[1], 3)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(tail[2]-1.25) > 1e-6 {
		t.Fatalf("tail slot: got %f, want 1.25", tail[2])
	}
}

func TestRotateAndSum(t *testing.T) {
	h, err := NewHeContextWithLogN(12)
	if err != nil {
		t.Fatal(err)
	}
	vals := []float64{1, 2, 3, 4, 5}
	width := SumWidth(len(vals), h.Slots())
	kit := h.GenServerKit(SumRotations(width))
	cts, err := h.EncryptVector(vals)
	if err != nil {
		t.Fatal(err)
	}
	acc := cts[0]
	for step := 1; step < width; step *= 2 {
		rot, err := kit.Evaluator.RotateNew(acc, step)
		if err != nil {
			t.Fatalf("rotate %d: %v", step, err)
		}
		if err := kit.Evaluator.Add(acc, rot, acc); err != nil {
			t.Fatal(err)
		}
	}
	got, err := h.DecryptVector(acc, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got[0]-15) > 1e-5 {
		t.Fatalf("sum: got %f, want 15", got[0])
	}
}

func TestHelpers(t *testing.T) {
	cases := []struct{ n, slots, chunks, width int }{
		{0, 8, 0, 1},
		{1, 8, 1, 1},
		{5, 8, 1, 8},
		{8, 8, 1, 8},
		{9, 8, 2, 8},
	}
	for _, c := range cases {
		if got := Chunks(c.n, c.slots); got != c.chunks {
			t.Errorf("Chunks(%d,%d)=%d, want %d", c.n, c.slots, got, c.chunks)
		}
		if got := SumWidth(c.n, c.slots); got != c.width {
			t.Errorf("SumWidth(%d,%d)=%d, want %d", c.n, c.slots, got, c.width)
		}
	}
	if r := SumRotations(8); len(r) != 3 || r[0] != 1 || r[2] != 4 {
		t.Fatalf("SumRotations(8)=%v", r)
	}
	if _, err := NewHeContextWithLogN(5); err == nil {
		t.Fatal("expected error for tiny logN")
	}
}

func TestNewParametersBounds(t *testing.T) {
	for _, logN := range []int{9, 17} {
		if _, err := NewParameters(logN); err == nil {
			t.Errorf("logN %d: expected error", logN)
		}
	}
	p, err := NewParameters(12)
	if err != nil {
		t.Fatal(err)
	}
	if p.MaxSlots() != 2048 {
		t.Fatalf("slots %d, want 2048", p.MaxSlots())
	}
}
