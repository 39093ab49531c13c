package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/loansight/loansight/common/logger"
)

// nullTokens are cell values treated as missing.
var nullTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "nan": {}, "null": {}, "none": {},
}

func isNull(s string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// LoadCSV reads a CSV file into a typed frame. A column is numeric when
// every non-null cell parses as a float; everything else stays text.
func LoadCSV(path string) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	header := records[0]
	rows := records[1:]
	cols := make([]*Column, len(header))
	for ci, name := range header {
		cols[ci] = buildColumn(strings.TrimSpace(name), rows, ci)
	}
	f := NewFrame(cols, len(rows))
	logger.Infof("dataset: loaded %d rows, %d columns from %s", f.NumRows(), f.NumCols(), path)
	return f, nil
}

func buildColumn(name string, rows [][]string, ci int) *Column {
	c := &Column{Name: name, valid: make([]bool, len(rows))}
	numeric := true
	vals := make([]string, len(rows))
	for ri, row := range rows {
		var cell string
		if ci < len(row) {
			cell = strings.TrimSpace(row[ci])
		}
		vals[ri] = cell
		if isNull(cell) {
			continue
		}
		c.valid[ri] = true
		if numeric {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric = false
			}
		}
	}
	if numeric && anyValid(c.valid) {
		c.Kind = KindNumeric
		c.nums = make([]float64, len(rows))
		for ri, cell := range vals {
			if c.valid[ri] {
				c.nums[ri], _ = strconv.ParseFloat(cell, 64)
			}
		}
		return c
	}
	c.Kind = KindText
	c.strs = vals
	return c
}

func anyValid(valid []bool) bool {
	for _, v := range valid {
		if v {
			return true
		}
	}
	return false
}

// LoadEmbeddings reads the precomputed embedding sidecar: a JSON array of
// float arrays, one per dataset row. Vectors are L2-normalized on load so
// inner-product search equals cosine similarity.
func LoadEmbeddings(path string) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open embeddings: %w", err)
	}
	var raw [][]float32
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse embeddings: %w", err)
	}
	for i := range raw {
		Normalize(raw[i])
	}
	logger.Infof("dataset: loaded %d embedding vectors from %s", len(raw), path)
	return raw, nil
}

// Normalize scales v to unit L2 norm in place. Zero vectors are left as-is.
func Normalize(v []float32) {
	var ss float64
	for _, x := range v {
		ss += float64(x) * float64(x)
	}
	if ss == 0 {
		return
	}
	inv := 1 / math.Sqrt(ss)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
