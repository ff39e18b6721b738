package prevalence

import "rxprev/domain/core"

// Batch is a loaded observation collection together with where it came from.
type Batch struct {
	Source       string
	Fingerprint  core.Hash
	Observations []Observation
}

// Run is one generated report.
type Run struct {
	ID          core.RunID
	Gene        string
	Test        string
	Layout      Layout
	Source      string
	Fingerprint core.Hash
	CreatedAt   core.Timestamp
	Rows        []*SummaryRow
}

// Table renders the run's rows with its layout.
func (r *Run) Table() Table {
	return Render(r.Rows, r.Layout)
}

// RunInfo is the listing view of a stored run.
type RunInfo struct {
	ID          core.RunID     `json:"id"`
	Gene        string         `json:"gene"`
	Test        string         `json:"test"`
	Source      string         `json:"source"`
	Fingerprint core.Hash      `json:"fingerprint"`
	CreatedAt   core.Timestamp `json:"created_at"`
	RowCount    int            `json:"row_count"`
}
