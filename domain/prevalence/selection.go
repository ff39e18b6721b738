package prevalence

// Criteria for flagging a row as a treatment-selected mutation.
const (
	SignificanceLevel = 0.01
	MinTreatedCases   = 3
	MaxNaiveFraction  = 0.005
	MinFoldChange     = 2.0
)

// IsSelected applies the selection criteria to a row and its evaluation:
// significant, seen in enough treated cases, rare in naive, and enriched.
func IsSelected(r *SummaryRow, ev Evaluation) bool {
	treated, ok := r.Bucket(CohortTreated, SubtypeAll)
	if !ok {
		return false
	}
	naive, _ := r.Bucket(CohortNaive, SubtypeAll)
	return ev.PValue < SignificanceLevel &&
		treated.Cases >= MinTreatedCases &&
		naive.Fraction() <= MaxNaiveFraction &&
		ev.FoldChange >= MinFoldChange
}
