package senses

import (
	"fmt"
	"sort"

	"rxprev/domain/core"
)

// Table is a 2x2 contingency table [[A B] [C D]]. In the prevalence report
// the rows are the naive and treated cohorts and the columns are samples
// with and without the mutation.
type Table struct {
	A, B, C, D int
}

// NewTable builds the table from case counts and cohort totals.
func NewTable(naiveCases, naiveTotal, treatedCases, treatedTotal int) Table {
	return Table{
		A: naiveCases,
		B: naiveTotal - naiveCases,
		C: treatedCases,
		D: treatedTotal - treatedCases,
	}
}

// N returns the table total.
func (t Table) N() int {
	return t.A + t.B + t.C + t.D
}

// Validate rejects tables with negative cells, which no exact or asymptotic
// test can evaluate.
func (t Table) Validate() error {
	if t.A < 0 || t.B < 0 || t.C < 0 || t.D < 0 {
		return core.NewDegenerateTableError(t.A, t.B, t.C, t.D)
	}
	return nil
}

// HasEmptyMargin reports whether a row or column sums to zero.
func (t Table) HasEmptyMargin() bool {
	return t.A+t.B == 0 || t.C+t.D == 0 || t.A+t.C == 0 || t.B+t.D == 0
}

// OddsRatio returns the sample odds ratio AD/BC, +Inf when BC is zero and
// NaN when both products are zero.
func (t Table) OddsRatio() float64 {
	return float64(t.A) * float64(t.D) / (float64(t.B) * float64(t.C))
}

func (t Table) String() string {
	return fmt.Sprintf("[[%d %d] [%d %d]]", t.A, t.B, t.C, t.D)
}

// TableSense is a significance test of association on a 2x2 table.
type TableSense interface {
	Name() string
	Description() string
	// PValue returns the two-sided p-value. It fails only for tables that
	// cannot be evaluated; callers decide how to recover.
	PValue(t Table) (float64, error)
}

// SenseEngine holds the available table senses by name
type SenseEngine struct {
	senses map[string]TableSense
}

// NewSenseEngine creates an engine with every supported test registered
func NewSenseEngine() *SenseEngine {
	e := &SenseEngine{senses: make(map[string]TableSense)}
	e.Register(NewFisherExactSense())
	e.Register(NewChiSquareSense())
	return e
}

// Register adds or replaces a sense under its name.
func (e *SenseEngine) Register(s TableSense) {
	e.senses[s.Name()] = s
}

// Lookup returns the sense registered under name.
func (e *SenseEngine) Lookup(name string) (TableSense, bool) {
	s, ok := e.senses[name]
	return s, ok
}

// Names lists the registered senses in sorted order.
func (e *SenseEngine) Names() []string {
	names := make([]string, 0, len(e.senses))
	for name := range e.senses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
