package analysis

import (
	"testing"

	"rxprev/domain/prevalence"

	"github.com/stretchr/testify/assert"
)

func finalized(naiveFraction float64, ev prevalence.Evaluation) *prevalence.SummaryRow {
	r := prevalence.NewSummaryRow(prevalence.Key{Position: 1, AA: "A"})
	r.SetBucket(prevalence.CohortNaive, prevalence.SubtypeAll, prevalence.Bucket{Cases: 1, Total: 10, Percent: naiveFraction * 100})
	r.Finalize(ev)
	return r
}

func TestSummarize(t *testing.T) {
	rows := []*prevalence.SummaryRow{
		finalized(0.1, prevalence.Evaluation{PValue: 0.001, FoldChange: 2, Selected: true}),
		finalized(0.1, prevalence.Evaluation{PValue: 0.5, FoldChange: 4}),
		finalized(0.1, prevalence.Evaluation{PValue: 0.02, FoldChange: 6}),
		finalized(0, prevalence.Evaluation{PValue: 1, FoldChange: prevalence.FoldChangeSentinel, Degenerate: true}),
	}

	s := Summarize(rows, prevalence.SignificanceLevel)
	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, 1, s.Significant)
	assert.Equal(t, 1, s.Degenerate)
	assert.Equal(t, 1, s.Sentinel)
	assert.Equal(t, 1, s.Selected)
	assert.Equal(t, 0, s.WithMax)
	assert.Equal(t, 0.001, s.MinPValue)
	assert.Equal(t, 4.0, s.MedianFoldChange)
	assert.Equal(t, 6.0, s.MaxFoldChange)
	assert.Contains(t, s.String(), "4 rows, 1 significant")
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, prevalence.SignificanceLevel)
	assert.Equal(t, Summary{}, s)
}
