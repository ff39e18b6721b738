package senses

import (
	"math"

	"rxprev/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquareSense is Pearson's chi-squared test of independence on a 2x2
// table with Yates' continuity correction
type ChiSquareSense struct {
	// Yates enables the continuity correction; on by default.
	Yates bool
}

// NewChiSquareSense creates a new Chi-Square sense
func NewChiSquareSense() *ChiSquareSense {
	return &ChiSquareSense{Yates: true}
}

// Name returns the sense name
func (s *ChiSquareSense) Name() string {
	return "chi2"
}

// Description returns a human-readable description
func (s *ChiSquareSense) Description() string {
	return "Chi-squared test of independence between cohort and mutation"
}

// PValue fails when an expected frequency is zero, i.e. the table has an
// empty margin.
func (s *ChiSquareSense) PValue(t Table) (float64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if t.HasEmptyMargin() {
		return 0, core.NewDegenerateTableError(t.A, t.B, t.C, t.D)
	}

	n := float64(t.N())
	observed := [2][2]float64{
		{float64(t.A), float64(t.B)},
		{float64(t.C), float64(t.D)},
	}
	rows := [2]float64{observed[0][0] + observed[0][1], observed[1][0] + observed[1][1]}
	cols := [2]float64{observed[0][0] + observed[1][0], observed[0][1] + observed[1][1]}

	chiSq := 0.0
	for i := range observed {
		for j := range observed[i] {
			expected := rows[i] * cols[j] / n
			diff := math.Abs(observed[i][j] - expected)
			if s.Yates {
				diff -= math.Min(0.5, diff)
			}
			chiSq += diff * diff / expected
		}
	}

	return distuv.ChiSquared{K: 1}.Survival(chiSq), nil
}
