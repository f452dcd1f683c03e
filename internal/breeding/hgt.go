package breeding

import (
	"github.com/axobase/egde/internal/genome"
	"github.com/axobase/egde/internal/ports"
)

const (
	hgtMinCooperationHours = 72.0
	hgtMinInteractions     = 20
	hgtDonorMinWeight      = 1.0
)

// HorizontalTransferResult records the outcome of one attempted
// transfer.
type HorizontalTransferResult struct {
	Occurred bool
	Genome   *genome.DynamicGenome
	Mutation *MutationRecord
}

// HorizontalTransfer implements the horizontal-gene-transfer operation:
// a separate event on a live agent, conditioned on the cooperation
// ledger the evolution coordinator maintains rather than on a breeding
// event. It picks the donor's highest-scoring active gene with weight >
// 1.0 (the "highly expressed" criterion, approximated here by
// value*weight since HGT operates without a live expression call — see
// DESIGN.md) and clones it onto a random recipient chromosome.
func HorizontalTransfer(recipient, donor *genome.DynamicGenome, donorID string, cooperationHours float64, interactions int, rate float64, rng ports.Rng) HorizontalTransferResult {
	if cooperationHours < hgtMinCooperationHours || interactions < hgtMinInteractions {
		return HorizontalTransferResult{Genome: recipient}
	}
	if rng.NextFloat() >= rate {
		return HorizontalTransferResult{Genome: recipient}
	}

	var best *genome.Gene
	bestScore := -1.0
	for _, g := range donor.AllGenes() {
		if g.ExpressionState != genome.StateActive || g.Weight <= hgtDonorMinWeight {
			continue
		}
		score := geneScore(g)
		if score > bestScore {
			s := g
			best = &s
			bestScore = score
		}
	}
	if best == nil {
		return HorizontalTransferResult{Genome: recipient}
	}

	clone := *best
	clone.ID = newGeneID()
	clone.Origin = genome.OriginHorizontal
	clone.Weight = clampf(0.3*best.Weight, 0.1, 3.0)
	clone.DuplicateOf = ""
	clone.AcquiredFrom = donorID
	clone.Age = 0

	target := randomNonEssentialChromosome(recipient, rng)
	if target == "" {
		recipient.Chromosomes = append(recipient.Chromosomes, genome.Chromosome{ID: accessoryChromosomeID, Name: "Accessory", IsEssential: false})
		target = accessoryChromosomeID
	}
	if err := recipient.AddGene(target, clone); err != nil {
		return HorizontalTransferResult{Genome: recipient}
	}
	recipient.RecomputeHash()

	return HorizontalTransferResult{
		Occurred: true,
		Genome:   recipient,
		Mutation: &MutationRecord{Kind: MutationDuplication, GeneID: clone.ID, Detail: "horizontal-transfer from " + donorID},
	}
}
