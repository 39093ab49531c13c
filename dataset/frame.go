package dataset

import (
	"math"
	"sort"
	"strconv"
)

// ColumnKind distinguishes numeric from text columns.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumeric
)

// Column is one typed column with per-row null tracking.
type Column struct {
	Name  string
	Kind  ColumnKind
	nums  []float64
	strs  []string
	valid []bool
}

// Frame is an immutable tabular dataset with an optional precomputed
// embedding per row. All aggregation methods tolerate unknown columns and
// empty frames by returning zero values; the synthesized-code sandbox calls
// them directly, so they must never panic.
type Frame struct {
	cols       []*Column
	byName     map[string]*Column
	nRows      int
	embeddings [][]float32
}

// NewFrame builds a frame from parallel column slices.
func NewFrame(cols []*Column, rows int) *Frame {
	f := &Frame{cols: cols, nRows: rows, byName: make(map[string]*Column, len(cols))}
	for _, c := range cols {
		f.byName[c.Name] = c
	}
	return f
}

// NumRows returns the row count.
func (f *Frame) NumRows() int { return f.nRows }

// NumCols returns the column count.
func (f *Frame) NumCols() int { return len(f.cols) }

// Columns returns column names in their original order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Name
	}
	return out
}

// HasColumn reports whether name exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.byName[name]
	return ok
}

// SetEmbeddings attaches one precomputed vector per row.
func (f *Frame) SetEmbeddings(vecs [][]float32) { f.embeddings = vecs }

// Embedding returns the vector for row i, or nil when absent.
func (f *Frame) Embedding(i int) []float32 {
	if i < 0 || i >= len(f.embeddings) {
		return nil
	}
	return f.embeddings[i]
}

// Embeddings returns the full embedding matrix.
func (f *Frame) Embeddings() [][]float32 { return f.embeddings }

// Row returns row i as a column-name → value map. Numeric nulls map to nil.
func (f *Frame) Row(i int) map[string]any {
	if i < 0 || i >= f.nRows {
		return nil
	}
	out := make(map[string]any, len(f.cols))
	for _, c := range f.cols {
		if !c.valid[i] {
			out[c.Name] = nil
			continue
		}
		if c.Kind == KindNumeric {
			out[c.Name] = c.nums[i]
		} else {
			out[c.Name] = c.strs[i]
		}
	}
	return out
}

// Cell returns the string form of row i in column name, "" when null.
func (f *Frame) Cell(i int, name string) string {
	c := f.byName[name]
	if c == nil || i < 0 || i >= f.nRows || !c.valid[i] {
		return ""
	}
	if c.Kind == KindNumeric {
		return strconv.FormatFloat(c.nums[i], 'f', -1, 64)
	}
	return c.strs[i]
}

// Number returns the numeric value of row i in column name; ok=false for
// nulls, text columns, and out-of-range rows.
func (f *Frame) Number(i int, name string) (float64, bool) {
	c := f.byName[name]
	if c == nil || c.Kind != KindNumeric || i < 0 || i >= f.nRows || !c.valid[i] {
		return 0, false
	}
	return c.nums[i], true
}

func (f *Frame) numericValues(name string) []float64 {
	c := f.byName[name]
	if c == nil || c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, f.nRows)
	for i := 0; i < f.nRows; i++ {
		if c.valid[i] {
			out = append(out, c.nums[i])
		}
	}
	return out
}

// Count returns the number of non-null values in a column, or the row count
// for an empty column name.
func (f *Frame) Count(name string) int {
	if name == "" {
		return f.nRows
	}
	c := f.byName[name]
	if c == nil {
		return 0
	}
	n := 0
	for i := 0; i < f.nRows; i++ {
		if c.valid[i] {
			n++
		}
	}
	return n
}

// Sum returns the sum of non-null values in a numeric column.
func (f *Frame) Sum(name string) float64 {
	var s float64
	for _, v := range f.numericValues(name) {
		s += v
	}
	return s
}

// Mean returns the arithmetic mean of non-null values, 0 when empty.
func (f *Frame) Mean(name string) float64 {
	vs := f.numericValues(name)
	if len(vs) == 0 {
		return 0
	}
	return f.Sum(name) / float64(len(vs))
}

// Min returns the minimum non-null value, 0 when empty.
func (f *Frame) Min(name string) float64 {
	vs := f.numericValues(name)
	if len(vs) == 0 {
		return 0
	}
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the maximum non-null value, 0 when empty.
func (f *Frame) Max(name string) float64 {
	vs := f.numericValues(name)
	if len(vs) == 0 {
		return 0
	}
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Median returns the median non-null value, 0 when empty.
func (f *Frame) Median(name string) float64 {
	vs := f.numericValues(name)
	if len(vs) == 0 {
		return 0
	}
	sort.Float64s(vs)
	mid := len(vs) / 2
	if len(vs)%2 == 1 {
		return vs[mid]
	}
	return (vs[mid-1] + vs[mid]) / 2
}

// matches evaluates one cell against op/value. Numeric columns compare
// numerically when value parses as a number.
func (c *Column) matches(i int, op, value string) bool {
	if !c.valid[i] {
		return false
	}
	if c.Kind == KindNumeric {
		want, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		got := c.nums[i]
		switch op {
		case "==":
			return got == want
		case "!=":
			return got != want
		case ">":
			return got > want
		case "<":
			return got < want
		case ">=":
			return got >= want
		case "<=":
			return got <= want
		}
		return false
	}
	got := c.strs[i]
	switch op {
	case "==":
		return got == value
	case "!=":
		return got != value
	}
	return false
}

// CountWhere counts rows whose column satisfies op value. Supported ops:
// == != > < >= <= (the last four on numeric columns only).
func (f *Frame) CountWhere(name, op, value string) int {
	c := f.byName[name]
	if c == nil {
		return 0
	}
	n := 0
	for i := 0; i < f.nRows; i++ {
		if c.matches(i, op, value) {
			n++
		}
	}
	return n
}

// Filter returns a new frame containing only the rows whose column
// satisfies op value. Embeddings follow their rows.
func (f *Frame) Filter(name, op, value string) *Frame {
	c := f.byName[name]
	if c == nil {
		return f.take(nil)
	}
	var keep []int
	for i := 0; i < f.nRows; i++ {
		if c.matches(i, op, value) {
			keep = append(keep, i)
		}
	}
	return f.take(keep)
}

// NLargest returns a frame with the n rows having the largest values in a
// numeric column, in descending order. Null rows are skipped.
func (f *Frame) NLargest(n int, name string) *Frame {
	return f.rankedRows(n, name, true)
}

// NSmallest mirrors NLargest in ascending order.
func (f *Frame) NSmallest(n int, name string) *Frame {
	return f.rankedRows(n, name, false)
}

func (f *Frame) rankedRows(n int, name string, descending bool) *Frame {
	c := f.byName[name]
	if c == nil || c.Kind != KindNumeric || n <= 0 {
		return f.take(nil)
	}
	idx := make([]int, 0, f.nRows)
	for i := 0; i < f.nRows; i++ {
		if c.valid[i] {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if descending {
			return c.nums[idx[a]] > c.nums[idx[b]]
		}
		return c.nums[idx[a]] < c.nums[idx[b]]
	})
	if n < len(idx) {
		idx = idx[:n]
	}
	return f.take(idx)
}

// Unique returns the distinct non-null string forms of a column in first-seen
// order.
func (f *Frame) Unique(name string) []string {
	c := f.byName[name]
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for i := 0; i < f.nRows; i++ {
		v := f.Cell(i, name)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Select returns a frame restricted to the named columns (unknown names are
// dropped silently).
func (f *Frame) Select(names ...string) *Frame {
	var cols []*Column
	for _, n := range names {
		if c, ok := f.byName[n]; ok {
			cols = append(cols, c)
		}
	}
	g := NewFrame(cols, f.nRows)
	g.embeddings = f.embeddings
	return g
}

// take builds a row-subset frame.
func (f *Frame) take(rows []int) *Frame {
	cols := make([]*Column, len(f.cols))
	for ci, c := range f.cols {
		nc := &Column{Name: c.Name, Kind: c.Kind, valid: make([]bool, len(rows))}
		if c.Kind == KindNumeric {
			nc.nums = make([]float64, len(rows))
		} else {
			nc.strs = make([]string, len(rows))
		}
		for ri, src := range rows {
			nc.valid[ri] = c.valid[src]
			if c.Kind == KindNumeric {
				nc.nums[ri] = c.nums[src]
			} else {
				nc.strs[ri] = c.strs[src]
			}
		}
		cols[ci] = nc
	}
	g := NewFrame(cols, len(rows))
	if len(f.embeddings) > 0 {
		g.embeddings = make([][]float32, len(rows))
		for ri, src := range rows {
			if src < len(f.embeddings) {
				g.embeddings[ri] = f.embeddings[src]
			}
		}
	}
	return g
}

// Round rounds v to the given number of decimal places; exposed to the
// sandbox alongside the frame.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
