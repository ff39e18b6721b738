package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rxprev/domain/core"
	"rxprev/domain/prevalence"
	"rxprev/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `gene,position,aa,rx_type,subtype,count,total,percent
PR,10,F,naive,All,5,1000,0.005
PR,10,F,art,All,40,800,0.05
RT,184,V,art,B,300,600,0.5
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDataReader_CSV(t *testing.T) {
	path := writeFile(t, "obs.csv", sampleCSV)

	batch, err := NewDataReader(path, internal.Discard).ReadObservations(context.Background())
	require.NoError(t, err)

	require.Len(t, batch.Observations, 3)
	assert.Equal(t, prevalence.Observation{
		Gene: "PR", Position: 10, AA: "F", Cohort: prevalence.CohortNaive,
		Subtype: "All", Count: 5, Total: 1000, Fraction: 0.005,
	}, batch.Observations[0])
	assert.Equal(t, "RT", batch.Observations[2].Gene)
	assert.Equal(t, core.NewHash([]byte(sampleCSV)), batch.Fingerprint)
}

func TestDataReader_IntegerPercent(t *testing.T) {
	path := writeFile(t, "obs.csv", "gene,position,aa,rx_type,subtype,count,total,percent\nPR,1,A,art,All,2,2,1\nPR,1,A,naive,All,0,2,0.0\n")

	batch, err := NewDataReader(path, internal.Discard).ReadObservations(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Observations, 2)
	assert.Equal(t, "100%", prevalence.BucketOf(batch.Observations[0]).PercentCell())
	assert.Equal(t, "0.0%", prevalence.BucketOf(batch.Observations[1]).PercentCell())
}

func TestDataReader_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Gene", "Position", "AA", "rx_type", "Subtype", "Count", "Total", "Percent"},
		{"IN", "148", "H", "art", "All", "12", "300", "0.04"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(SheetName, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	batch, err := NewDataReader(path, internal.Discard).ReadObservations(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Observations, 1)

	o := batch.Observations[0]
	assert.Equal(t, "IN", o.Gene)
	assert.Equal(t, 148, o.Position)
	assert.Equal(t, prevalence.CohortTreated, o.Cohort)
	assert.InDelta(t, 0.04, o.Fraction, 1e-12)
}

func TestDataReader_MissingColumn(t *testing.T) {
	path := writeFile(t, "obs.csv", "gene,position,aa,rx_type,subtype,count,total\nPR,1,A,naive,All,1,2\n")

	_, err := NewDataReader(path, internal.Discard).ReadObservations(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMalformedObservation)
	assert.Contains(t, err.Error(), "percent")
}

func TestDataReader_BadCell(t *testing.T) {
	path := writeFile(t, "obs.csv", "gene,position,aa,rx_type,subtype,count,total,percent\nPR,1,A,naive,All,x,2,0.5\n")

	_, err := NewDataReader(path, internal.Discard).ReadObservations(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMalformedObservation)
	assert.Contains(t, err.Error(), `"count"`)
}

func TestDataReader_EmptyFile(t *testing.T) {
	path := writeFile(t, "obs.csv", "")

	_, err := NewDataReader(path, internal.Discard).ReadObservations(context.Background())
	assert.ErrorIs(t, err, core.ErrMalformedObservation)
}

func TestReportWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	table := prevalence.Table{
		Header:  []string{"Position", "AA", "P Value"},
		Records: [][]string{{"10", "F", "0.5"}, {"20", "R", ""}},
	}

	require.NoError(t, NewReportWriter(path).WriteReport(table))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, table.Header, rows[0])
	assert.Equal(t, []string{"10", "F", "0.5"}, rows[1])
	require.GreaterOrEqual(t, len(rows[2]), 2)
	assert.Equal(t, []string{"20", "R"}, rows[2][:2])
}
