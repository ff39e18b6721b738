package prevalence

// MaxSubtype is the running maximum of naive prevalence over the subtypes of
// one row.
type MaxSubtype struct {
	Percent float64
	Total   int
	Cases   int
	Subtype string
	// Integral is set when the winning observation had an integer fraction.
	Integral bool
}

// DefaultMaxSubtype is the state of a row no subtype has qualified for.
func DefaultMaxSubtype() MaxSubtype {
	return MaxSubtype{Subtype: NoSubtype}
}

// Qualifies reports whether an observation takes part in max-subtype
// tracking at all: naive, on a real subtype.
func Qualifies(o Observation) bool {
	return o.Cohort == CohortNaive && !IsAggregateSubtype(o.Subtype)
}

// Observe offers a qualifying naive observation to the tracker and reports
// whether it became the new maximum.
//
// Observations with fewer than MinSubtypeTotal samples are ignored. The
// comparison is strictly greater, so among equal prevalences the first
// subtype seen keeps the slot.
func (m *MaxSubtype) Observe(o Observation) bool {
	if o.Total < MinSubtypeTotal {
		return false
	}
	if !(o.Fraction > m.Percent/100) {
		return false
	}
	m.Percent = o.Fraction * 100
	m.Total = o.Total
	m.Cases = o.Count
	m.Subtype = o.Subtype
	m.Integral = o.IntegralFraction
	return true
}

// Found reports whether any subtype qualified.
func (m MaxSubtype) Found() bool {
	return m.Subtype != NoSubtype
}

// PercentCell renders the Max Naive Prev cell. A row without a qualifying
// subtype keeps the literal default.
func (m MaxSubtype) PercentCell() string {
	if !m.Found() {
		return DefaultMaxPrev
	}
	return FormatPercent(m.Percent, m.Integral)
}
