package breeding

import (
	"github.com/axobase/egde/internal/genome"
	"github.com/axobase/egde/internal/ports"
)

// pointMutation implements stage 2: per gene, three independent rolls
// for small Gaussian value noise, a large uniform replacement, and
// weight perturbation.
func pointMutation(g *genome.DynamicGenome, rates Rates, rng ports.Rng, log *[]MutationRecord) {
	for ci := range g.Chromosomes {
		for gi := range g.Chromosomes[ci].Genes {
			gene := &g.Chromosomes[ci].Genes[gi]

			if rng.NextFloat() < rates.PointMutation {
				old := gene.Value
				gene.Value = clampf(gene.Value+gaussian(rng, 0, rates.PointSigma), 0, 1)
				gene.Origin = genome.OriginMutated
				*log = append(*log, MutationRecord{Kind: MutationPoint, GeneID: gene.ID, OldValue: old, NewValue: gene.Value})
			}

			if rng.NextFloat() < rates.LargeMutation {
				old := gene.Value
				gene.Value = clampf(rng.NextFloat(), 0, 1)
				gene.Origin = genome.OriginMutated
				*log = append(*log, MutationRecord{Kind: MutationLarge, GeneID: gene.ID, OldValue: old, NewValue: gene.Value})
			}

			if rng.NextFloat() < rates.WeightMutation {
				old := gene.Weight
				gene.Weight = clampf(gene.Weight+gaussian(rng, 0, 0.1), 0.1, 3.0)
				*log = append(*log, MutationRecord{Kind: MutationWeight, GeneID: gene.ID, OldValue: old, NewValue: gene.Weight})
			}
		}
	}
}

// duplication implements stage 3: per gene, with rates.Duplication,
// append a fresh copy with a new id on the same chromosome.
func duplication(g *genome.DynamicGenome, owner geneOwner, rates Rates, rng ports.Rng, log *[]MutationRecord) {
	var additions []struct {
		chromID string
		gene    genome.Gene
	}
	for _, source := range g.AllGenes() {
		if rng.NextFloat() >= rates.Duplication {
			continue
		}
		dup := source
		dup.ID = newGeneID()
		dup.Origin = genome.OriginDuplicated
		dup.Weight = clampf(0.5*source.Weight, 0.1, 3.0)
		dup.Value = clampf(source.Value+gaussian(rng, 0, 0.05), 0, 1)
		dup.Age = 0
		dup.DuplicateOf = source.ID
		dup.AcquiredFrom = ""
		additions = append(additions, struct {
			chromID string
			gene    genome.Gene
		}{owner[source.ID], dup})
		*log = append(*log, MutationRecord{Kind: MutationDuplication, GeneID: dup.ID, Detail: "duplicateOf=" + source.ID})
	}
	for _, add := range additions {
		for ci := range g.Chromosomes {
			if g.Chromosomes[ci].ID == add.chromID {
				g.Chromosomes[ci].Genes = append(g.Chromosomes[ci].Genes, add.gene)
				owner[add.gene.ID] = add.chromID
				break
			}
		}
	}
}

const lowWeightThreshold = 0.3

// deletion implements stage 4: per non-essential gene (essentiality <
// 0.8), compute a deletion probability from base/starvation rate,
// elevated for silenced or low-weight genes, and roll against it.
// Essential genes and the last gene on an essential chromosome are
// never removed.
func deletion(g *genome.DynamicGenome, rates Rates, starvation bool, rng ports.Rng, log *[]MutationRecord) {
	base := rates.DeletionBase
	if starvation {
		base = rates.DeletionStarvation
	}

	var toDelete []string
	for ci := range g.Chromosomes {
		chrom := &g.Chromosomes[ci]
		for _, gene := range chrom.Genes {
			if gene.Essentiality >= 0.8 {
				continue
			}
			if chrom.IsEssential && len(chrom.Genes)-countMarked(toDelete, chrom) <= 1 {
				continue
			}

			p := base * (1 - gene.Essentiality)
			if gene.ExpressionState == genome.StateSilenced {
				p = 0.08 * (1 - gene.Essentiality)
			}
			if gene.Weight < lowWeightThreshold {
				p = 0.05 * (1 - gene.Essentiality)
			}
			if starvation && gene.MetabolicCost > 0.005 {
				p *= 1.5
			}

			if rng.NextFloat() < p {
				toDelete = append(toDelete, gene.ID)
			}
		}
	}

	for _, id := range toDelete {
		if err := g.RemoveGene(id); err == nil {
			*log = append(*log, MutationRecord{Kind: MutationDeletion, GeneID: id})
		}
	}
}

func countMarked(ids []string, chrom *genome.Chromosome) int {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	n := 0
	for _, g := range chrom.Genes {
		if set[g.ID] {
			n++
		}
	}
	return n
}
