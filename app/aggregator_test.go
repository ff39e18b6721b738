package app

import (
	"slices"
	"testing"

	"rxprev/domain/prevalence"
	"rxprev/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observation(gene string, pos int, aa string, cohort prevalence.Cohort, subtype string, count, total int, fraction float64) prevalence.Observation {
	return prevalence.Observation{
		Gene: gene, Position: pos, AA: aa, Cohort: cohort, Subtype: subtype,
		Count: count, Total: total, Fraction: fraction,
	}
}

func aggregate(layout prevalence.Layout, obs ...prevalence.Observation) *Aggregator {
	a := NewAggregator(layout, internal.Discard)
	a.AddAll(FilterByGene(obs, "PR"))
	return a
}

func TestFilterByGene(t *testing.T) {
	obs := []prevalence.Observation{
		observation("PR", 1, "A", prevalence.CohortNaive, "All", 1, 10, 0.1),
		observation("RT", 1, "A", prevalence.CohortNaive, "All", 1, 10, 0.1),
		observation("PR", 2, "B", prevalence.CohortNaive, "All", 1, 10, 0.1),
		observation("IN", 3, "C", prevalence.CohortNaive, "All", 1, 10, 0.1),
	}

	got := slices.Collect(FilterByGene(obs, "PR"))
	assert.Equal(t, []prevalence.Observation{obs[0], obs[2]}, got)

	assert.Empty(t, slices.Collect(FilterByGene(obs, "GAG")))
	assert.Empty(t, slices.Collect(FilterByGene(nil, "PR")))

	// early stop
	for o := range FilterByGene(obs, "PR") {
		assert.Equal(t, obs[0], o)
		break
	}
}

func TestAggregator_GroupsInFirstSeenOrder(t *testing.T) {
	a := aggregate(prevalence.DefaultLayout(),
		observation("PR", 30, "N", prevalence.CohortNaive, "All", 1, 100, 0.01),
		observation("PR", 10, "A", prevalence.CohortNaive, "All", 1, 100, 0.01),
		observation("RT", 5, "K", prevalence.CohortNaive, "All", 1, 100, 0.01),
		observation("PR", 30, "N", prevalence.CohortTreated, "All", 5, 100, 0.05),
		observation("PR", 30, "D", prevalence.CohortNaive, "All", 1, 100, 0.01),
	)

	require.Equal(t, 3, a.Len())
	var keys []string
	for _, r := range a.Rows() {
		keys = append(keys, r.Key.String())
	}
	assert.Equal(t, []string{"30N", "10A", "30D"}, keys)
	assert.Equal(t, 4, a.Stats().Observations)
}

func TestAggregator_LastWriteWins(t *testing.T) {
	a := aggregate(prevalence.DefaultLayout(),
		observation("PR", 10, "A", prevalence.CohortNaive, "All", 50, 1000, 0.05),
		observation("PR", 10, "A", prevalence.CohortNaive, "All", 7, 70, 0.1),
	)
	b, ok := a.Rows()[0].Bucket(prevalence.CohortNaive, "All")
	require.True(t, ok)
	assert.Equal(t, 7, b.Cases)
	assert.Equal(t, 70, b.Total)
	assert.Equal(t, 1, a.Stats().Overwrites)
}

func TestAggregator_BucketSelection(t *testing.T) {
	layout := prevalence.Layout{MajorSubtypes: []string{"B"}, Subtypes: true}
	a := aggregate(layout,
		observation("PR", 10, "A", prevalence.CohortNaive, "B", 3, 300, 0.01),
		observation("PR", 10, "A", prevalence.CohortNaive, "C", 3, 300, 0.01),
		observation("PR", 10, "A", prevalence.CohortNaive, "Others", 3, 300, 0.01),
		observation("PR", 10, "A", prevalence.CohortNaive, "Unknown", 3, 300, 0.01),
		observation("PR", 10, "A", prevalence.CohortTreated, "B", 9, 300, 0.03),
	)
	r := a.Rows()[0]
	assert.Equal(t, []string{"B", "Others"}, r.Subtypes(prevalence.CohortNaive))
	assert.Equal(t, []string{"B"}, r.Subtypes(prevalence.CohortTreated))
}

func TestAggregator_UnknownCohortIsIgnored(t *testing.T) {
	a := aggregate(prevalence.DefaultLayout(),
		observation("PR", 10, "A", prevalence.Cohort("placebo"), "All", 3, 300, 0.01),
		observation("PR", 10, "A", prevalence.Cohort("placebo"), "B", 300, 300, 1),
	)
	require.Equal(t, 1, a.Len())
	r := a.Rows()[0]
	assert.Empty(t, r.Subtypes(prevalence.CohortNaive))
	assert.False(t, r.Max.Found())
	assert.Equal(t, 2, a.Stats().UnknownCohort)
}

func TestAggregator_MaxSubtypeBelowThreshold(t *testing.T) {
	a := aggregate(prevalence.DefaultLayout(),
		observation("PR", 10, "A", prevalence.CohortNaive, "X", 135, 150, 0.9),
	)
	r := a.Rows()[0]
	assert.Equal(t, prevalence.NoSubtype, r.Max.Subtype)
	r.Finalize(prevalence.Evaluation{})
	rec := prevalence.Record(r, prevalence.DefaultLayout())
	header := prevalence.Header(prevalence.DefaultLayout())
	assert.Equal(t, prevalence.DefaultMaxPrev, rec[slices.Index(header, prevalence.ColMaxNaivePrev)])
	assert.Equal(t, prevalence.NoSubtype, rec[slices.Index(header, prevalence.ColMaxNaiveSubtype)])
}

func TestAggregator_MaxSubtypeFirstOfEqualWins(t *testing.T) {
	a := aggregate(prevalence.DefaultLayout(),
		observation("PR", 10, "A", prevalence.CohortNaive, "B", 90, 300, 0.3),
		observation("PR", 10, "A", prevalence.CohortNaive, "C", 150, 500, 0.3),
	)
	r := a.Rows()[0]
	assert.Equal(t, "B", r.Max.Subtype)
	assert.Equal(t, 300, r.Max.Total)
	assert.Equal(t, 1, a.Stats().MaxUpdates)
}

func TestAggregator_MaxSubtypeIgnoresUnrelatedRows(t *testing.T) {
	// Observations for other rows interleaved between the tied pair must not
	// change which subtype wins.
	var obs []prevalence.Observation
	obs = append(obs, observation("PR", 10, "A", prevalence.CohortNaive, "C", 150, 500, 0.3))
	for pos := 1; pos <= 50; pos++ {
		obs = append(obs, observation("PR", pos+100, "Z", prevalence.CohortNaive, "B", 90, 300, 0.3))
	}
	obs = append(obs, observation("PR", 10, "A", prevalence.CohortNaive, "B", 90, 300, 0.3))

	a := aggregate(prevalence.DefaultLayout(), obs...)
	assert.Equal(t, "C", a.Rows()[0].Max.Subtype)
}

func TestAggregator_MaxTrackingSkipsAggregatesAndTreated(t *testing.T) {
	a := aggregate(prevalence.DefaultLayout(),
		observation("PR", 10, "A", prevalence.CohortNaive, "All", 900, 1000, 0.9),
		observation("PR", 10, "A", prevalence.CohortNaive, "Others", 900, 1000, 0.9),
		observation("PR", 10, "A", prevalence.CohortNaive, "Unknown", 900, 1000, 0.9),
		observation("PR", 10, "A", prevalence.CohortTreated, "B", 900, 1000, 0.9),
		observation("PR", 10, "A", prevalence.CohortNaive, "CRF07_BC", 20, 1000, 0.02),
	)
	r := a.Rows()[0]
	assert.Equal(t, "CRF07_BC", r.Max.Subtype, "non-major subtypes are still tracked")
	assert.Equal(t, 20, r.Max.Cases)
}

func TestAggregator_NoSubtypeLayoutStillTracksAll(t *testing.T) {
	a := aggregate(prevalence.Layout{},
		observation("PR", 10, "A", prevalence.CohortNaive, "All", 50, 1000, 0.05),
		observation("PR", 10, "A", prevalence.CohortNaive, "B", 50, 1000, 0.05),
	)
	r := a.Rows()[0]
	assert.Equal(t, []string{"All"}, r.Subtypes(prevalence.CohortNaive))
}
