// Package genes holds the fixed set of HIV-1 pol genes a report can be built for.
package genes

import (
	"slices"
	"strings"
	"sync"

	"rxprev/domain/core"
)

// Gene is one supported gene.
type Gene struct {
	Name string `json:"name"`
	// Length is the number of amino-acid positions.
	Length      int    `json:"length"`
	Description string `json:"description"`
}

// Table is a read-only gene lookup.
type Table struct {
	byName map[string]Gene
	names  []string
}

// NewTable builds a lookup over genes, ordered as given.
func NewTable(genes ...Gene) *Table {
	t := &Table{byName: make(map[string]Gene, len(genes))}
	for _, g := range genes {
		t.byName[g.Name] = g
		t.names = append(t.names, g.Name)
	}
	return t
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the PR, RT and IN table, built on first use.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable(
			Gene{Name: "PR", Length: 99, Description: "protease"},
			Gene{Name: "RT", Length: 560, Description: "reverse transcriptase"},
			Gene{Name: "IN", Length: 288, Description: "integrase"},
		)
	})
	return defaultTable
}

// Lookup finds a gene by exact name.
func (t *Table) Lookup(name string) (Gene, bool) {
	g, ok := t.byName[name]
	return g, ok
}

// Validate returns the canonical name of gene, accepting any letter case.
// Unknown genes fail with core.ErrUnknownGene.
func (t *Table) Validate(name string) (string, error) {
	canonical := strings.ToUpper(strings.TrimSpace(name))
	if _, ok := t.byName[canonical]; !ok {
		return "", core.NewUnknownGeneError(name)
	}
	return canonical, nil
}

// Names lists gene names in table order.
func (t *Table) Names() []string {
	return slices.Clone(t.names)
}

// All lists genes in table order.
func (t *Table) All() []Gene {
	out := make([]Gene, 0, len(t.names))
	for _, n := range t.names {
		out = append(out, t.byName[n])
	}
	return out
}
