package testkit

import (
	"math/rand"
	"slices"

	"rxprev/domain/prevalence"
)

// ObservationGeneratorConfig configures the synthetic prevalence generator
type ObservationGeneratorConfig struct {
	Gene        string   `json:"gene"`
	Positions   int      `json:"positions"`
	AminoAcids  []string `json:"amino_acids"`
	Subtypes    []string `json:"subtypes"`
	MaxTotal    int      `json:"max_total"`
	MissingRate float64  `json:"missing_rate"` // chance that a subtype bucket is skipped
	Seed        int64    `json:"seed"`
}

// DefaultObservationConfig returns a small PR-like data set
func DefaultObservationConfig() ObservationGeneratorConfig {
	return ObservationGeneratorConfig{
		Gene:        "PR",
		Positions:   25,
		AminoAcids:  []string{"A", "F", "I", "L", "V"},
		Subtypes:    []string{"A", "B", "C", "CRF01_AE", "H"},
		MaxTotal:    1500,
		MissingRate: 0.2,
		Seed:        42,
	}
}

// ObservationGenerator produces deterministic observation batches
type ObservationGenerator struct {
	config ObservationGeneratorConfig
	rng    *rand.Rand
}

// NewObservationGenerator creates a generator seeded from the config
func NewObservationGenerator(config ObservationGeneratorConfig) *ObservationGenerator {
	return &ObservationGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate emits, for every (position, amino acid), an All bucket for both
// cohorts and a random subset of subtype and Others buckets. Counts never
// exceed totals and fractions are count/total.
func (g *ObservationGenerator) Generate() []prevalence.Observation {
	subtypes := append(slices.Clone(g.config.Subtypes), prevalence.SubtypeOthers)
	var out []prevalence.Observation
	for pos := 1; pos <= g.config.Positions; pos++ {
		for _, aa := range g.config.AminoAcids {
			for _, cohort := range []prevalence.Cohort{prevalence.CohortNaive, prevalence.CohortTreated} {
				out = append(out, g.observation(pos, aa, cohort, prevalence.SubtypeAll))
				for _, st := range subtypes {
					if g.rng.Float64() < g.config.MissingRate {
						continue
					}
					out = append(out, g.observation(pos, aa, cohort, st))
				}
			}
		}
	}
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (g *ObservationGenerator) observation(pos int, aa string, cohort prevalence.Cohort, subtype string) prevalence.Observation {
	total := g.rng.Intn(g.config.MaxTotal + 1)
	count := 0
	if total > 0 {
		// treated cohorts carry more mutations
		limit := total/20 + 1
		if cohort == prevalence.CohortTreated {
			limit = total/3 + 1
		}
		count = g.rng.Intn(limit)
	}
	fraction := 0.0
	if total > 0 {
		fraction = float64(count) / float64(total)
	}
	return prevalence.Observation{
		Gene:     g.config.Gene,
		Position: pos,
		AA:       aa,
		Cohort:   cohort,
		Subtype:  subtype,
		Count:    count,
		Total:    total,
		Fraction: fraction,
	}
}
