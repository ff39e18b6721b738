package prevalence

import (
	"fmt"
	"slices"
)

// Evaluation is the statistical result attached to a finalized row.
type Evaluation struct {
	Test       string
	PValue     float64
	FoldChange float64
	// OddsRatio is the sample odds ratio of the table; NaN or Inf when a cell
	// it divides by is zero.
	OddsRatio float64
	// Degenerate is set when the table had an empty margin or could not be
	// tested at all.
	Degenerate bool
	Selected   bool
}

// SummaryRow accumulates every observation of one (position, amino acid).
// It is mutable until Finalize and read-only afterwards.
type SummaryRow struct {
	Key
	Max MaxSubtype

	naive   map[string]Bucket
	treated map[string]Bucket

	eval      Evaluation
	finalized bool
}

// NewSummaryRow creates an empty row with the default max-subtype state.
func NewSummaryRow(key Key) *SummaryRow {
	return &SummaryRow{
		Key:     key,
		Max:     DefaultMaxSubtype(),
		naive:   make(map[string]Bucket),
		treated: make(map[string]Bucket),
	}
}

func (r *SummaryRow) buckets(c Cohort) map[string]Bucket {
	switch c {
	case CohortNaive:
		return r.naive
	case CohortTreated:
		return r.treated
	}
	return nil
}

// SetBucket overwrites the (cohort, subtype) bucket. Writes for cohorts
// outside naive/treated are dropped and reported as false.
func (r *SummaryRow) SetBucket(c Cohort, subtype string, b Bucket) bool {
	r.mustBeOpen()
	m := r.buckets(c)
	if m == nil {
		return false
	}
	m[subtype] = b
	return true
}

// Bucket returns the (cohort, subtype) bucket and whether it was written.
func (r *SummaryRow) Bucket(c Cohort, subtype string) (Bucket, bool) {
	b, ok := r.buckets(c)[subtype]
	return b, ok
}

// ObserveMax forwards an observation to the max-subtype tracker.
func (r *SummaryRow) ObserveMax(o Observation) bool {
	r.mustBeOpen()
	return r.Max.Observe(o)
}

// Finalize attaches the evaluation and freezes the row.
func (r *SummaryRow) Finalize(ev Evaluation) {
	r.mustBeOpen()
	r.eval = ev
	r.finalized = true
}

// Finalized reports whether the row has been evaluated.
func (r *SummaryRow) Finalized() bool {
	return r.finalized
}

// Evaluation returns the attached statistics; zero before Finalize.
func (r *SummaryRow) Evaluation() Evaluation {
	return r.eval
}

func (r *SummaryRow) mustBeOpen() {
	if r.finalized {
		panic(fmt.Sprintf("prevalence: row %s modified after finalize", r.Key))
	}
}

// Subtypes lists the subtypes written for a cohort, sorted.
func (r *SummaryRow) Subtypes(c Cohort) []string {
	m := r.buckets(c)
	out := make([]string, 0, len(m))
	for st := range m {
		out = append(out, st)
	}
	slices.Sort(out)
	return out
}
