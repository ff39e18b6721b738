package engine

import (
	"fmt"

	"rxprev/adapters/stats/senses"
	"rxprev/domain/prevalence"
	"rxprev/internal"
)

// Evaluator computes the significance test and fold change of finalized
// summary rows from their All-subtype buckets.
type Evaluator struct {
	sense         senses.TableSense
	flagSelection bool
	logger        *internal.Logger
}

// NewEvaluator creates an evaluator running the named test from the engine
func NewEvaluator(engine *senses.SenseEngine, test string, flagSelection bool, logger *internal.Logger) (*Evaluator, error) {
	sense, ok := engine.Lookup(test)
	if !ok {
		return nil, fmt.Errorf("unknown test %q, have %v", test, engine.Names())
	}
	return &Evaluator{
		sense:         sense,
		flagSelection: flagSelection,
		logger:        logger,
	}, nil
}

// TestName returns the name of the configured test.
func (e *Evaluator) TestName() string {
	return e.sense.Name()
}

// Evaluate never fails: a table the test cannot evaluate gets
// DegeneratePValue, and a row without naive prevalence gets the fold change
// sentinel.
func (e *Evaluator) Evaluate(r *prevalence.SummaryRow) prevalence.Evaluation {
	naive, _ := r.Bucket(prevalence.CohortNaive, prevalence.SubtypeAll)
	treated, _ := r.Bucket(prevalence.CohortTreated, prevalence.SubtypeAll)
	table := senses.NewTable(naive.Cases, naive.Total, treated.Cases, treated.Total)

	ev := prevalence.Evaluation{
		Test:       e.sense.Name(),
		OddsRatio:  table.OddsRatio(),
		FoldChange: FoldChange(naive, treated),
		Degenerate: table.HasEmptyMargin(),
	}

	p, err := e.sense.PValue(table)
	if err != nil {
		e.logger.Debug("row %s: %v, using p=%v", r.Key, err, prevalence.DegeneratePValue)
		p = prevalence.DegeneratePValue
		ev.Degenerate = true
	}
	ev.PValue = p

	if e.flagSelection {
		ev.Selected = prevalence.IsSelected(r, ev)
	}
	e.logger.Trace("row %s: table %s p=%g fold=%g", r.Key, table, ev.PValue, ev.FoldChange)
	return ev
}

// FoldChange is the ratio of treated to naive prevalence, or
// FoldChangeSentinel when the naive prevalence is not positive.
func FoldChange(naive, treated prevalence.Bucket) float64 {
	naiveFraction := naive.Fraction()
	if naiveFraction > 0 {
		return treated.Fraction() / naiveFraction
	}
	return prevalence.FoldChangeSentinel
}
