package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loans.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleCSV = `Loan_ID,Customer_Name,Loan_Amount,Credit_Score,Loan_Status
LN001,Asha,250000,710,Approved
LN002,Ravi,120000,580,Rejected
LN003,Meera,NA,640,Approved
LN004,Karan,90000,601,Rejected
LN005,Divya,310000,,Approved
`

func loadSample(t *testing.T) *Frame {
	t.Helper()
	f, err := LoadCSV(writeCSV(t, sampleCSV))
	require.NoError(t, err)
	return f
}

func TestLoadCSVInference(t *testing.T) {
	f := loadSample(t)

	assert.Equal(t, 5, f.NumRows())
	assert.Equal(t, []string{"Loan_ID", "Customer_Name", "Loan_Amount", "Credit_Score", "Loan_Status"}, f.Columns())

	// Loan_Amount has an NA but every present cell is numeric.
	assert.Equal(t, 4, f.Count("Loan_Amount"))
	assert.Equal(t, 4, f.Count("Credit_Score"))
	assert.Equal(t, 5, f.Count("Loan_ID"))
	assert.Equal(t, 5, f.Count(""))

	// Loan_ID stays text despite the digits.
	_, ok := f.Number(0, "Loan_ID")
	assert.False(t, ok)
}

func TestAggregates(t *testing.T) {
	f := loadSample(t)

	assert.InDelta(t, 770000, f.Sum("Loan_Amount"), 1e-9)
	assert.InDelta(t, 192500, f.Mean("Loan_Amount"), 1e-9)
	assert.InDelta(t, 90000, f.Min("Loan_Amount"), 1e-9)
	assert.InDelta(t, 310000, f.Max("Loan_Amount"), 1e-9)
	assert.InDelta(t, 185000, f.Median("Loan_Amount"), 1e-9)
	assert.InDelta(t, 620.5, f.Median("Credit_Score"), 1e-9)

	// Unknown columns never panic.
	assert.Equal(t, 0, f.Count("Nope"))
	assert.Equal(t, 0.0, f.Mean("Nope"))
}

func TestCountWhereAndFilter(t *testing.T) {
	f := loadSample(t)

	assert.Equal(t, 3, f.CountWhere("Loan_Status", "==", "Approved"))
	assert.Equal(t, 3, f.CountWhere("Credit_Score", "<", "650"))
	assert.Equal(t, 2, f.CountWhere("Loan_Amount", ">=", "250000"))

	g := f.Filter("Loan_Status", "==", "Rejected")
	assert.Equal(t, 2, g.NumRows())
	assert.Equal(t, "LN002", g.Cell(0, "Loan_ID"))
	assert.Equal(t, "LN004", g.Cell(1, "Loan_ID"))
}

func TestNLargestSkipsNulls(t *testing.T) {
	f := loadSample(t)

	top := f.NLargest(2, "Loan_Amount")
	require.Equal(t, 2, top.NumRows())
	assert.Equal(t, "LN005", top.Cell(0, "Loan_ID"))
	assert.Equal(t, "LN001", top.Cell(1, "Loan_ID"))

	bottom := f.NSmallest(1, "Credit_Score")
	require.Equal(t, 1, bottom.NumRows())
	assert.Equal(t, "LN002", bottom.Cell(0, "Loan_ID"))
}

func TestUnique(t *testing.T) {
	f := loadSample(t)
	assert.Equal(t, []string{"Approved", "Rejected"}, f.Unique("Loan_Status"))
}

func TestFilterCarriesEmbeddings(t *testing.T) {
	f := loadSample(t)
	vecs := [][]float32{{1}, {2}, {3}, {4}, {5}}
	f.SetEmbeddings(vecs)

	g := f.Filter("Loan_Status", "==", "Rejected")
	require.Equal(t, 2, g.NumRows())
	assert.Equal(t, []float32{2}, g.Embedding(0))
	assert.Equal(t, []float32{4}, g.Embedding(1))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3.14, Round(3.14159, 2))
	assert.Equal(t, 100.0, Round(99.999, 1))
	assert.Equal(t, -2.5, Round(-2.54, 1))
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)

	zero := []float32{0, 0}
	Normalize(zero)
	assert.Equal(t, []float32{0, 0}, zero)
}

func TestDescribe(t *testing.T) {
	f := loadSample(t)
	desc := f.Describe()

	assert.Contains(t, desc, `"total_rows": 5`)
	assert.Contains(t, desc, `"Loan_Amount"`)
	assert.Contains(t, desc, `"numeric"`)
	assert.Contains(t, desc, `"Loan_Status"`)
	assert.Contains(t, desc, "Approved")
}
