package app

import (
	"iter"

	"rxprev/domain/prevalence"
	"rxprev/internal"
)

// FilterByGene yields the observations of one gene in source order.
func FilterByGene(observations []prevalence.Observation, gene string) iter.Seq[prevalence.Observation] {
	return func(yield func(prevalence.Observation) bool) {
		for _, o := range observations {
			if o.Gene != gene {
				continue
			}
			if !yield(o) {
				return
			}
		}
	}
}

// AggregateStats counts what the aggregator did with its input.
type AggregateStats struct {
	Observations int
	BucketWrites int
	Overwrites   int
	MaxUpdates   int
	// UnknownCohort counts observations whose rx_type is neither naive nor art.
	UnknownCohort int
}

// Aggregator groups observations into one summary row per
// (position, amino acid), keeping rows in first-seen order.
type Aggregator struct {
	layout prevalence.Layout
	index  map[prevalence.Key]int
	rows   []*prevalence.SummaryRow
	stats  AggregateStats
	logger *internal.Logger
}

// NewAggregator creates an aggregator tracking the buckets of layout
func NewAggregator(layout prevalence.Layout, logger *internal.Logger) *Aggregator {
	return &Aggregator{
		layout: layout,
		index:  make(map[prevalence.Key]int),
		logger: logger,
	}
}

// Add folds one observation into its row. Bucket writes replace any earlier
// value of the same (cohort, subtype); they are never summed.
func (a *Aggregator) Add(o prevalence.Observation) {
	a.stats.Observations++
	row := a.row(prevalence.KeyOf(o))

	if !o.Cohort.Valid() {
		a.stats.UnknownCohort++
		a.logger.Debug("row %s: ignoring rx_type %q", row.Key, o.Cohort)
		return
	}

	if a.layout.Tracks(o.Subtype) {
		if _, seen := row.Bucket(o.Cohort, o.Subtype); seen {
			a.stats.Overwrites++
			a.logger.Warn("row %s: duplicate %s/%s observation replaces the earlier one", row.Key, o.Cohort, o.Subtype)
		}
		row.SetBucket(o.Cohort, o.Subtype, prevalence.BucketOf(o))
		a.stats.BucketWrites++
	}

	if prevalence.Qualifies(o) && row.ObserveMax(o) {
		a.stats.MaxUpdates++
	}
}

// AddAll consumes a sequence and returns the number of observations added.
func (a *Aggregator) AddAll(seq iter.Seq[prevalence.Observation]) int {
	n := 0
	for o := range seq {
		a.Add(o)
		n++
	}
	return n
}

func (a *Aggregator) row(key prevalence.Key) *prevalence.SummaryRow {
	if i, ok := a.index[key]; ok {
		return a.rows[i]
	}
	r := prevalence.NewSummaryRow(key)
	a.index[key] = len(a.rows)
	a.rows = append(a.rows, r)
	return r
}

// Rows returns the rows in the order their first observation was seen.
func (a *Aggregator) Rows() []*prevalence.SummaryRow {
	return a.rows
}

// Len returns the number of rows.
func (a *Aggregator) Len() int {
	return len(a.rows)
}

// Stats returns the counters accumulated so far.
func (a *Aggregator) Stats() AggregateStats {
	return a.stats
}
