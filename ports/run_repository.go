package ports

import (
	"context"

	"rxprev/domain/core"
	"rxprev/domain/prevalence"
)

// RunRepository persists generated reports
type RunRepository interface {
	// SaveRun stores a run and all of its finalized rows
	SaveRun(ctx context.Context, run *prevalence.Run) error

	// GetRun loads a run with its rows in report order
	GetRun(ctx context.Context, id core.RunID) (*prevalence.Run, error)

	// ListRuns returns the most recent runs first, optionally filtered by gene
	ListRuns(ctx context.Context, gene string, limit int) ([]prevalence.RunInfo, error)
}
