// Package prevalence holds the observation and summary-row model of the
// naive vs treated prevalence report.
package prevalence

import (
	"fmt"
	"slices"
)

// Cohort is the treatment exposure of an observation, encoded as the source's
// rx_type value.
type Cohort string

const (
	CohortNaive   Cohort = "naive"
	CohortTreated Cohort = "art"
)

// Valid reports whether the cohort is one the report has columns for.
func (c Cohort) Valid() bool {
	return c == CohortNaive || c == CohortTreated
}

// Aggregate and placeholder subtype buckets.
const (
	SubtypeAll     = "All"
	SubtypeOthers  = "Others"
	SubtypeUnknown = "Unknown"

	// NoSubtype is the Max Naive Subtype value of a row no subtype qualified for.
	NoSubtype = "-"

	// DefaultMaxPrev is the Max Naive Prev value of a row no subtype qualified for.
	DefaultMaxPrev = "0%"
)

// DefaultMajorSubtypes are reported individually unless configured otherwise.
var DefaultMajorSubtypes = []string{"A", "B", "C", "CRF01_AE", "CRF02_AG", "D", "F", "G"}

// Thresholds and sentinels of the report.
const (
	// MinSubtypeTotal is the naive sample size a subtype needs before it can
	// become a row's max-prevalence subtype.
	MinSubtypeTotal = 200

	// FoldChangeSentinel is written as the fold change of rows whose naive
	// prevalence is zero. It is a marker for "undefined", not a ratio.
	FoldChangeSentinel = 100.0

	// DegeneratePValue is substituted when the contingency table cannot be tested.
	DegeneratePValue = 1.0
)

// Observation is one input record: the prevalence of an amino acid at a
// position within one cohort and subtype.
type Observation struct {
	Gene     string  `json:"gene"`
	Position int     `json:"position"`
	AA       string  `json:"aa"`
	Cohort   Cohort  `json:"rx_type"`
	Subtype  string  `json:"subtype"`
	Count    int     `json:"count"`
	Total    int     `json:"total"`
	Fraction float64 `json:"percent"`
	// IntegralFraction is set when the source wrote percent as an integer.
	IntegralFraction bool `json:"-"`
}

// Key identifies a summary row.
type Key struct {
	Position int
	AA       string
}

func (k Key) String() string {
	return fmt.Sprintf("%d%s", k.Position, k.AA)
}

// KeyOf returns the grouping key of an observation.
func KeyOf(o Observation) Key {
	return Key{Position: o.Position, AA: o.AA}
}

// IsAggregateSubtype reports whether subtype is a pooled bucket rather than a
// real lineage.
func IsAggregateSubtype(subtype string) bool {
	switch subtype {
	case SubtypeAll, SubtypeOthers, SubtypeUnknown:
		return true
	}
	return false
}

// Bucket holds the counts of one (cohort, subtype) pair of a row.
type Bucket struct {
	Cases int
	Total int
	// Percent is the source fraction scaled to percent, the value rendered in
	// the report.
	Percent  float64
	Integral bool
}

// BucketOf copies the counts of an observation into a bucket.
func BucketOf(o Observation) Bucket {
	return Bucket{
		Cases:    o.Count,
		Total:    o.Total,
		Percent:  o.Fraction * 100,
		Integral: o.IntegralFraction,
	}
}

// PercentCell renders the prevalence cell of the bucket.
func (b Bucket) PercentCell() string {
	return FormatPercent(b.Percent, b.Integral)
}

// Fraction converts the rendered percent back to a fraction.
func (b Bucket) Fraction() float64 {
	return b.Percent / 100
}

// Layout describes which subtype buckets a report tracks and which optional
// columns it carries.
type Layout struct {
	MajorSubtypes []string
	// Subtypes disables every per-subtype and max-subtype column when false.
	Subtypes      bool
	FlagSelection bool
}

// DefaultLayout reports the default major subtypes.
func DefaultLayout() Layout {
	return Layout{
		MajorSubtypes: slices.Clone(DefaultMajorSubtypes),
		Subtypes:      true,
	}
}

// Tracks reports whether the layout keeps a bucket for subtype.
func (l Layout) Tracks(subtype string) bool {
	if subtype == SubtypeAll || subtype == SubtypeOthers {
		return true
	}
	return l.Subtypes && slices.Contains(l.MajorSubtypes, subtype)
}

// ReportedSubtypes returns the per-subtype column groups in header order.
func (l Layout) ReportedSubtypes() []string {
	if !l.Subtypes {
		return nil
	}
	return append(slices.Clone(l.MajorSubtypes), SubtypeOthers)
}
