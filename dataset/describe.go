package dataset

import "encoding/json"

// lowCardinalityCap bounds how many distinct values a text column may have
// before the description switches from full enumeration to a sample.
const lowCardinalityCap = 20

type columnInfo struct {
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	NonNullCount int       `json:"non_null_count"`
	NullCount    int       `json:"null_count"`
	Min          *float64  `json:"min,omitempty"`
	Max          *float64  `json:"max,omitempty"`
	Mean         *float64  `json:"mean,omitempty"`
	Median       *float64  `json:"median,omitempty"`
	UniqueValues []string  `json:"unique_values,omitempty"`
	UniqueCount  int       `json:"unique_count,omitempty"`
	SampleValues []string  `json:"sample_values,omitempty"`
}

type frameSchema struct {
	TotalRows    int          `json:"total_rows"`
	TotalColumns int          `json:"total_columns"`
	Columns      []columnInfo `json:"columns"`
}

// Describe renders the frame's schema as indented JSON for the code-synthesis
// prompt: row/column counts, per-column type and null counts, numeric
// summary statistics, and enumerated values for low-cardinality text columns.
func (f *Frame) Describe() string {
	s := frameSchema{
		TotalRows:    f.NumRows(),
		TotalColumns: f.NumCols(),
	}
	for _, c := range f.cols {
		info := columnInfo{
			Name:         c.Name,
			NonNullCount: f.Count(c.Name),
		}
		info.NullCount = f.NumRows() - info.NonNullCount
		if c.Kind == KindNumeric {
			info.Type = "numeric"
			mn, mx, mean, med := f.Min(c.Name), f.Max(c.Name), f.Mean(c.Name), f.Median(c.Name)
			info.Min, info.Max, info.Mean, info.Median = &mn, &mx, &mean, &med
		} else {
			info.Type = "text"
			uniq := f.Unique(c.Name)
			if len(uniq) <= lowCardinalityCap {
				info.UniqueValues = uniq
			} else {
				info.UniqueCount = len(uniq)
				info.SampleValues = uniq[:5]
			}
		}
		s.Columns = append(s.Columns, info)
	}
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}
