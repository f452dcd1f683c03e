// Package epigenetics implements the EGDE epigenetic layer: a fixed
// trigger catalogue that maps environmental predicates to decaying,
// partially heritable marks, mark retention across ticks, and mark
// inheritance at breeding.
package epigenetics

import (
	"sort"

	"github.com/axobase/egde/internal/expression"
	"github.com/axobase/egde/internal/genome"
	"github.com/axobase/egde/internal/ports"
)

const retentionThreshold = 0.1
const minPlasticity = 0.2

// Trigger maps one environmental predicate to the mark template it
// installs on every sufficiently-plastic gene in its target domain.
type Trigger struct {
	Cause        string
	Condition    func(expression.Environment) bool
	TargetDomain genome.Domain
	Modification genome.EpigeneticModification
	Strength     float64
	Heritability float64
	Decay        float64
}

// Catalogue is the fixed trigger set (spec.md §4.6). Order matters:
// later triggers overwrite marks installed by earlier ones on the same
// gene within one update call.
var Catalogue = []Trigger{
	{
		Cause:        "daysStarving>=3",
		Condition:    func(e expression.Environment) bool { return e.StarvationDays >= 3 },
		TargetDomain: genome.DomainMetabolism,
		Modification: genome.ModUpregulate,
		Strength:     0.6,
		Heritability: 0.3,
		Decay:        0.2,
	},
	{
		Cause:        "daysStarving>=7",
		Condition:    func(e expression.Environment) bool { return e.StarvationDays >= 7 },
		TargetDomain: genome.DomainCognition,
		Modification: genome.ModSilence,
		Strength:     0.8,
		Heritability: 0.1,
		Decay:        0.3,
	},
	{
		Cause:        "stress>=0.7",
		Condition:    func(e expression.Environment) bool { return e.Stress >= 0.7 },
		TargetDomain: genome.DomainStressResponse,
		Modification: genome.ModUpregulate,
		Strength:     0.5,
		Heritability: 0.2,
		Decay:        0.25,
	},
	{
		Cause:        "daysThriving>=14",
		Condition:    func(e expression.Environment) bool { return e.ThrivingDays >= 14 },
		TargetDomain: genome.DomainResourceManagement,
		Modification: genome.ModUpregulate,
		Strength:     0.4,
		Heritability: 0.4,
		Decay:        0.1,
	},
	{
		Cause:        "cooperationCount>=5",
		Condition:    func(e expression.Environment) bool { return e.CooperationCount >= 5 },
		TargetDomain: genome.DomainCooperation,
		Modification: genome.ModUpregulate,
		Strength:     0.4,
		Heritability: 0.5,
		Decay:        0.15,
	},
	{
		Cause:        "deceptionCount>=3",
		Condition:    func(e expression.Environment) bool { return e.DeceptionCount >= 3 },
		TargetDomain: genome.DomainTrustModel,
		Modification: genome.ModDownregulate,
		Strength:     0.5,
		Heritability: 0.2,
		Decay:        0.2,
	},
	{
		Cause:        "mode=hibernation",
		Condition:    func(e expression.Environment) bool { return e.Mode == "hibernation" },
		TargetDomain: genome.DomainDormancy,
		Modification: genome.ModActivate,
		Strength:     0.7,
		Heritability: 0.1,
		Decay:        0.4,
	},
}

// Update is the result of one updateEpigenome call.
type Update struct {
	Genome        *genome.DynamicGenome
	NewMarks      []genome.EpigeneticMark
	RemovedMarks  []string
	TriggerCauses []string
}

// UpdateEpigenome evaluates the trigger catalogue against env, installs
// marks on every sufficiently-plastic gene in each firing trigger's
// target domain, and retires existing marks whose decayed strength has
// fallen at or below 0.1. It is pure: g is cloned, never mutated in
// place, and calling it twice in a row with the same env in steady
// state reports no new marks (content-identical marks are not counted
// as new, even though they are reinstalled).
func UpdateEpigenome(g *genome.DynamicGenome, env expression.Environment) Update {
	clone := g.Clone()

	existingByGene := make(map[string]genome.EpigeneticMark, len(clone.Epigenome))
	for _, m := range clone.Epigenome {
		existingByGene[m.TargetGeneID] = m
	}

	genesByDomain := make(map[genome.Domain][]genome.Gene)
	for _, gene := range clone.AllGenes() {
		genesByDomain[gene.Domain] = append(genesByDomain[gene.Domain], gene)
	}

	nextByGene := make(map[string]genome.EpigeneticMark)
	var newMarks []genome.EpigeneticMark
	var causes []string

	for _, trig := range Catalogue {
		if !trig.Condition(env) {
			continue
		}
		fired := false
		for _, gene := range genesByDomain[trig.TargetDomain] {
			if gene.Plasticity < minPlasticity {
				continue
			}
			fired = true
			candidate := genome.EpigeneticMark{
				TargetGeneID:      gene.ID,
				Modification:      trig.Modification,
				Strength:          trig.Strength * gene.Plasticity,
				Cause:             trig.Cause,
				Heritability:      trig.Heritability * gene.Plasticity,
				Decay:             trig.Decay,
				GenerationCreated: clone.Metadata.Generation,
			}
			nextByGene[gene.ID] = candidate
			if existing, ok := existingByGene[gene.ID]; !ok || !marksEqual(existing, candidate) {
				newMarks = append(newMarks, candidate)
			}
		}
		if fired {
			causes = append(causes, trig.Cause)
		}
	}

	var removed []string
	for geneID, mark := range existingByGene {
		if _, overwritten := nextByGene[geneID]; overwritten {
			continue
		}
		if mark.DecayedStrength(clone.Metadata.Generation) > retentionThreshold {
			nextByGene[geneID] = mark
			continue
		}
		removed = append(removed, geneID)
	}

	clone.Epigenome = clone.Epigenome[:0]
	geneIDs := make([]string, 0, len(nextByGene))
	for id := range nextByGene {
		geneIDs = append(geneIDs, id)
	}
	sort.Strings(geneIDs)
	for _, id := range geneIDs {
		clone.Epigenome = append(clone.Epigenome, nextByGene[id])
	}

	return Update{
		Genome:        clone,
		NewMarks:      newMarks,
		RemovedMarks:  removed,
		TriggerCauses: causes,
	}
}

func marksEqual(a, b genome.EpigeneticMark) bool {
	return a.Modification == b.Modification && a.Strength == b.Strength &&
		a.Cause == b.Cause && a.Heritability == b.Heritability &&
		a.Decay == b.Decay && a.GenerationCreated == b.GenerationCreated
}

// InheritMarks implements breeding-time epigenetic inheritance: each
// mark on each parent is inherited independently with probability equal
// to its own heritability, inherited marks have their strength reduced
// by 20%, and a gene both parents separately pass for has its primary
// parent chosen at random.
func InheritMarks(parentA, parentB []genome.EpigeneticMark, rng ports.Rng) []genome.EpigeneticMark {
	byGene := make(map[string][]genome.EpigeneticMark)
	for _, m := range parentA {
		if rng.NextFloat() < m.Heritability {
			byGene[m.TargetGeneID] = append(byGene[m.TargetGeneID], reduceStrength(m))
		}
	}
	for _, m := range parentB {
		if rng.NextFloat() < m.Heritability {
			byGene[m.TargetGeneID] = append(byGene[m.TargetGeneID], reduceStrength(m))
		}
	}

	geneIDs := make([]string, 0, len(byGene))
	for id := range byGene {
		geneIDs = append(geneIDs, id)
	}
	sort.Strings(geneIDs)

	out := make([]genome.EpigeneticMark, 0, len(geneIDs))
	for _, id := range geneIDs {
		candidates := byGene[id]
		chosen := candidates[0]
		if len(candidates) > 1 && rng.NextFloat() < 0.5 {
			chosen = candidates[1]
		}
		out = append(out, chosen)
	}
	return out
}

func reduceStrength(m genome.EpigeneticMark) genome.EpigeneticMark {
	m.Strength *= 0.8
	if m.Strength < 0 {
		m.Strength = 0
	}
	return m
}
