package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"textcnn/parallel"

	"golang.org/x/exp/rand"
)

// Doc is one labelled document. Label indexes Corpus.Labels.
type Doc struct {
	Label int
	Text  string
}

// Corpus is a labelled document collection.
type Corpus struct {
	Name   string
	Labels []string
	Docs   []Doc
}

// Known lists the corpora with presets and their class counts.
var Known = map[string]int{
	"bbcnews": 5,
	"newsgrp": 20,
}

// Open loads corpus name from dataRoot. A directory <dataRoot>/<name> is read
// with LoadDir, otherwise <dataRoot>/<name>.csv with LoadCSV.
func Open(dataRoot, name string, workers int) (*Corpus, error) {
	dir := filepath.Join(dataRoot, name)
	if st, err := os.Stat(dir); err == nil && st.IsDir() {
		c, err := LoadDir(dir, workers)
		if err != nil {
			return nil, err
		}
		c.Name = name
		return c, nil
	}
	path := dir + ".csv"
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus %q: neither %s nor %s found", name, dir, path)
	}
	defer f.Close()
	c, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Name = name
	return c, nil
}

// LoadDir reads <root>/<label>/<file> documents. Labels are the sorted
// subdirectory names; files are read concurrently.
func LoadDir(root string, workers int) (*Corpus, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	c := &Corpus{Name: filepath.Base(root)}
	var paths []string
	var labels []int
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files, err := os.ReadDir(filepath.Join(root, e.Name()))
		if err != nil {
			return nil, err
		}
		label := len(c.Labels)
		c.Labels = append(c.Labels, e.Name())
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			paths = append(paths, filepath.Join(root, e.Name(), f.Name()))
			labels = append(labels, label)
		}
	}
	if len(c.Labels) == 0 {
		return nil, fmt.Errorf("%s: no label directories", root)
	}

	c.Docs = make([]Doc, len(paths))
	err = parallel.ForEachErr(len(paths), workers, func(i int) error {
		b, err := os.ReadFile(paths[i])
		if err != nil {
			return err
		}
		c.Docs[i] = Doc{Label: labels[i], Text: string(b)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LoadCSV reads "label,text" records. A first record whose label column is
// "label" or "category" is treated as a header. Labels are sorted by name.
func LoadCSV(r io.Reader) (*Corpus, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	type row struct{ label, text string }
	var rows []row
	seen := make(map[string]bool)
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 2 {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: want label,text", line)
		}
		if first && (strings.EqualFold(rec[0], "label") || strings.EqualFold(rec[0], "category")) {
			continue
		}
		rows = append(rows, row{rec[0], strings.Join(rec[1:], ",")})
		seen[rec[0]] = true
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no documents")
	}

	c := &Corpus{}
	for l := range seen {
		c.Labels = append(c.Labels, l)
	}
	sort.Strings(c.Labels)
	ids := make(map[string]int, len(c.Labels))
	for i, l := range c.Labels {
		ids[l] = i
	}
	c.Docs = make([]Doc, len(rows))
	for i, r := range rows {
		c.Docs[i] = Doc{Label: ids[r.label], Text: r.text}
	}
	return c, nil
}

// Texts returns the document bodies in order.
func (c *Corpus) Texts() []string {
	out := make([]string, len(c.Docs))
	for i, d := range c.Docs {
		out[i] = d.Text
	}
	return out
}

// Counts returns the number of documents per label.
func (c *Corpus) Counts() []int {
	n := make([]int, len(c.Labels))
	for _, d := range c.Docs {
		n[d.Label]++
	}
	return n
}

// Split shuffles each label's documents with seed and moves
// round(testFraction * count) of them to the test corpus.
func (c *Corpus) Split(testFraction float64, seed uint64) (train, test *Corpus, err error) {
	if testFraction < 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in [0,1), got %g", testFraction)
	}
	byLabel := make([][]int, len(c.Labels))
	for i, d := range c.Docs {
		byLabel[d.Label] = append(byLabel[d.Label], i)
	}
	rng := rand.New(rand.NewSource(seed))
	train = &Corpus{Name: c.Name, Labels: c.Labels}
	test = &Corpus{Name: c.Name, Labels: c.Labels}
	for _, idx := range byLabel {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(math.Round(testFraction * float64(len(idx))))
		for k, i := range idx {
			if k < nTest {
				test.Docs = append(test.Docs, c.Docs[i])
			} else {
				train.Docs = append(train.Docs, c.Docs[i])
			}
		}
	}
	return train, test, nil
}

// Dataset is a corpus encoded for the model.
type Dataset struct {
	X [][]int
	Y []int
}

func (d *Dataset) Len() int { return len(d.Y) }

// Encode maps every document of c to length token ids.
func Encode(c *Corpus, v *Vocab, length int) *Dataset {
	ds := &Dataset{X: make([][]int, len(c.Docs)), Y: make([]int, len(c.Docs))}
	for i, d := range c.Docs {
		ds.X[i] = v.Encode(d.Text, length)
		ds.Y[i] = d.Label
	}
	return ds
}
