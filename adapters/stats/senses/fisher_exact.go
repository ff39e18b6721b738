package senses

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// fisherRelErr is the relative tolerance under which a table counts as no
// more likely than the observed one.
const fisherRelErr = 1 + 1e-7

// FisherExactSense is the two-sided Fisher exact test of a 2x2 table
type FisherExactSense struct{}

// NewFisherExactSense creates a new Fisher exact sense
func NewFisherExactSense() *FisherExactSense {
	return &FisherExactSense{}
}

// Name returns the sense name
func (s *FisherExactSense) Name() string {
	return "fisher"
}

// Description returns a human-readable description
func (s *FisherExactSense) Description() string {
	return "Two-sided Fisher exact test of association between cohort and mutation"
}

// PValue sums the hypergeometric probabilities of every table with the
// observed margins that is at most as likely as the observed table.
func (s *FisherExactSense) PValue(t Table) (float64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if t.HasEmptyMargin() {
		return 1.0, nil
	}

	rowA := t.A + t.B
	rowC := t.C + t.D
	colA := t.A + t.C
	lo := max(0, colA-rowC)
	hi := min(colA, rowA)

	logDenom := combin.LogGeneralizedBinomial(float64(rowA+rowC), float64(colA))
	logPMF := func(x int) float64 {
		return combin.LogGeneralizedBinomial(float64(rowA), float64(x)) +
			combin.LogGeneralizedBinomial(float64(rowC), float64(colA-x)) -
			logDenom
	}

	threshold := logPMF(t.A) + math.Log(fisherRelErr)
	var p float64
	for x := lo; x <= hi; x++ {
		if lp := logPMF(x); lp <= threshold {
			p += math.Exp(lp)
		}
	}
	return math.Min(p, 1.0), nil
}
