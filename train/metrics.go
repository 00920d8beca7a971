package train

import (
	"fmt"
	"strings"

	"textcnn/data"
	"textcnn/nn"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics are classification scores. Confusion[i][j] counts documents of
// class i predicted as j.
type Metrics struct {
	Accuracy  float64
	Confusion [][]int
	Precision []float64
	Recall    []float64
	F1        []float64
	MacroF1   float64
}

// Evaluate predicts every document of ds.
func Evaluate(model *nn.TextCNN, ds *data.Dataset, numClasses int) (*Metrics, error) {
	preds := make([]int, ds.Len())
	for i, ids := range ds.X {
		p, _, err := model.Predict(ids)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		preds[i] = p
	}
	return Score(ds.Y, preds, numClasses)
}

// Score compares predicted with true labels.
func Score(truth, preds []int, numClasses int) (*Metrics, error) {
	if len(truth) != len(preds) {
		return nil, fmt.Errorf("%d labels, %d predictions", len(truth), len(preds))
	}
	m := &Metrics{
		Confusion: make([][]int, numClasses),
		Precision: make([]float64, numClasses),
		Recall:    make([]float64, numClasses),
		F1:        make([]float64, numClasses),
	}
	for i := range m.Confusion {
		m.Confusion[i] = make([]int, numClasses)
	}
	for i, y := range truth {
		p := preds[i]
		if y < 0 || y >= numClasses || p < 0 || p >= numClasses {
			return nil, fmt.Errorf("sample %d: class out of range [0,%d)", i, numClasses)
		}
		m.Confusion[y][p]++
	}

	diag := make([]float64, numClasses)
	rows := make([]float64, numClasses)
	cols := make([]float64, numClasses)
	for i, row := range m.Confusion {
		for j, n := range row {
			rows[i] += float64(n)
			cols[j] += float64(n)
		}
		diag[i] = float64(row[i])
	}
	if total := floats.Sum(rows); total > 0 {
		m.Accuracy = floats.Sum(diag) / total
	}
	for c := 0; c < numClasses; c++ {
		if cols[c] > 0 {
			m.Precision[c] = diag[c] / cols[c]
		}
		if rows[c] > 0 {
			m.Recall[c] = diag[c] / rows[c]
		}
		if s := m.Precision[c] + m.Recall[c]; s > 0 {
			m.F1[c] = 2 * m.Precision[c] * m.Recall[c] / s
		}
	}
	m.MacroF1 = stat.Mean(m.F1, nil)
	return m, nil
}

// Report renders per-class precision, recall and F1.
func (m *Metrics) Report(labels []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %9s %9s %9s %7s\n", "class", "precision", "recall", "f1", "support")
	for c := range m.F1 {
		name := fmt.Sprint(c)
		if c < len(labels) {
			name = labels[c]
		}
		support := 0
		for _, n := range m.Confusion[c] {
			support += n
		}
		fmt.Fprintf(&b, "%-24s %9.3f %9.3f %9.3f %7d\n", name, m.Precision[c], m.Recall[c], m.F1[c], support)
	}
	fmt.Fprintf(&b, "accuracy %.4f, macro F1 %.4f\n", m.Accuracy, m.MacroF1)
	return b.String()
}
