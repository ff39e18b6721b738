package analysis

import (
	"fmt"

	"rxprev/domain/prevalence"

	"github.com/montanaflynn/stats"
)

// Summary condenses a finalized report into a few figures for logging and
// the run listing.
type Summary struct {
	Rows        int     `json:"rows"`
	Significant int     `json:"significant"`
	Degenerate  int     `json:"degenerate"`
	Sentinel    int     `json:"sentinel_fold_change"`
	Selected    int     `json:"selected"`
	WithMax     int     `json:"with_max_subtype"`
	MinPValue   float64 `json:"min_p_value"`
	// Fold change figures skip rows carrying the sentinel.
	MedianFoldChange float64 `json:"median_fold_change"`
	MaxFoldChange    float64 `json:"max_fold_change"`
}

// Summarize counts rows with p below alpha as significant.
func Summarize(rows []*prevalence.SummaryRow, alpha float64) Summary {
	s := Summary{Rows: len(rows)}
	pValues := make([]float64, 0, len(rows))
	folds := make([]float64, 0, len(rows))

	for _, r := range rows {
		ev := r.Evaluation()
		pValues = append(pValues, ev.PValue)
		if ev.PValue < alpha {
			s.Significant++
		}
		if ev.Degenerate {
			s.Degenerate++
		}
		if ev.Selected {
			s.Selected++
		}
		if r.Max.Found() {
			s.WithMax++
		}
		naive, _ := r.Bucket(prevalence.CohortNaive, prevalence.SubtypeAll)
		if naive.Fraction() > 0 {
			folds = append(folds, ev.FoldChange)
		} else {
			s.Sentinel++
		}
	}

	s.MinPValue = orZero(stats.Min(pValues))
	s.MedianFoldChange = orZero(stats.Median(folds))
	s.MaxFoldChange = orZero(stats.Max(folds))
	return s
}

// orZero maps the empty-input error of the stats package to zero.
func orZero(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	return v
}

func (s Summary) String() string {
	return fmt.Sprintf("%d rows, %d significant, %d degenerate, %d sentinel fold changes, %d selected, min p=%g, median fold=%g, max fold=%g",
		s.Rows, s.Significant, s.Degenerate, s.Sentinel, s.Selected, s.MinPValue, s.MedianFoldChange, s.MaxFoldChange)
}
