package breeding

import (
	"github.com/axobase/egde/internal/genome"
	"github.com/axobase/egde/internal/ports"
)

// crossover implements stage 1. For each chromosome id present in
// either parent: if only one parent carries it, inherit with
// probability 0.5; otherwise with probability
// rates.ChromosomeLevelCrossover pick one parent's copy whole,
// otherwise perform uniform gene-level crossover.
func crossover(a, b *genome.DynamicGenome, rates Rates, rng ports.Rng) (*genome.DynamicGenome, []CrossoverEvent) {
	child := &genome.DynamicGenome{
		Metadata: genome.GenomeMetadata{
			LineageID: a.Metadata.LineageID,
		},
	}

	chromByID := func(g *genome.DynamicGenome, id string) *genome.Chromosome {
		return g.ChromosomeByID(id)
	}

	var events []CrossoverEvent
	for _, chromID := range unionChromosomeIDs(a, b) {
		chromA := chromByID(a, chromID)
		chromB := chromByID(b, chromID)

		switch {
		case chromA == nil && chromB == nil:
			continue

		case chromA == nil || chromB == nil:
			source := chromA
			if source == nil {
				source = chromB
			}
			if rng.NextFloat() < 0.5 {
				child.Chromosomes = append(child.Chromosomes, cloneChromosomeAged(*source))
				events = append(events, CrossoverEvent{ChromosomeID: chromID, FromParent: soleParentLabel(chromA)})
			}

		case rng.NextFloat() < rates.ChromosomeLevelCrossover:
			var chosen *genome.Chromosome
			var label string
			if rng.NextFloat() < 0.5 {
				chosen, label = chromA, "A"
			} else {
				chosen, label = chromB, "B"
			}
			child.Chromosomes = append(child.Chromosomes, cloneChromosomeAged(*chosen))
			events = append(events, CrossoverEvent{ChromosomeID: chromID, FromParent: label})

		default:
			merged := geneLevelCrossover(*chromA, *chromB, rates, rng)
			child.Chromosomes = append(child.Chromosomes, merged)
			events = append(events, CrossoverEvent{ChromosomeID: chromID, GeneLevel: true, FromParent: "mixed"})
		}
	}

	ensureEssentialChromosomesNonEmpty(child, a, b)
	return child, events
}

func soleParentLabel(chromA *genome.Chromosome) string {
	if chromA != nil {
		return "A"
	}
	return "B"
}

func cloneChromosomeAged(c genome.Chromosome) genome.Chromosome {
	out := genome.Chromosome{ID: c.ID, Name: c.Name, IsEssential: c.IsEssential}
	out.Genes = make([]genome.Gene, len(c.Genes))
	for i, g := range c.Genes {
		g.Age++
		out.Genes[i] = g
	}
	return out
}

// geneLevelCrossover merges two parental copies of the same chromosome
// gene-by-gene: shared genes are picked 50/50, genes present in only
// one parent's copy are inherited with rates.ExtraGeneInheritance.
// Iteration order follows parent A's gene order, then any extra genes
// only parent B carries, for deterministic replay.
func geneLevelCrossover(a, b genome.Chromosome, rates Rates, rng ports.Rng) genome.Chromosome {
	out := genome.Chromosome{ID: a.ID, Name: a.Name, IsEssential: a.IsEssential}

	byID := func(c genome.Chromosome) map[string]genome.Gene {
		m := make(map[string]genome.Gene, len(c.Genes))
		for _, g := range c.Genes {
			m[g.ID] = g
		}
		return m
	}
	aGenes := byID(a)
	bGenes := byID(b)

	order := make([]string, 0, len(a.Genes)+len(b.Genes))
	seen := make(map[string]bool)
	for _, g := range a.Genes {
		order = append(order, g.ID)
		seen[g.ID] = true
	}
	for _, g := range b.Genes {
		if !seen[g.ID] {
			order = append(order, g.ID)
			seen[g.ID] = true
		}
	}

	for _, id := range order {
		ga, inA := aGenes[id]
		gb, inB := bGenes[id]
		switch {
		case inA && inB:
			chosen := ga
			if rng.NextFloat() < 0.5 {
				chosen = gb
			}
			chosen.Age++
			out.Genes = append(out.Genes, chosen)
		case inA:
			if rng.NextFloat() < rates.ExtraGeneInheritance {
				ga.Age++
				out.Genes = append(out.Genes, ga)
			}
		case inB:
			if rng.NextFloat() < rates.ExtraGeneInheritance {
				gb.Age++
				out.Genes = append(out.Genes, gb)
			}
		}
	}
	return out
}

// ensureEssentialChromosomesNonEmpty guards the "no essential
// chromosome ever ends empty" invariant against the (rare) case where
// every probabilistic inheritance roll in an essential chromosome
// fails: it falls back to copying that chromosome whole from whichever
// parent declares it essential and non-empty.
func ensureEssentialChromosomesNonEmpty(child, a, b *genome.DynamicGenome) {
	essentialIDs := make(map[string]bool)
	for _, c := range a.Chromosomes {
		if c.IsEssential {
			essentialIDs[c.ID] = true
		}
	}
	for _, c := range b.Chromosomes {
		if c.IsEssential {
			essentialIDs[c.ID] = true
		}
	}

	present := make(map[string]int)
	for i, c := range child.Chromosomes {
		if c.IsEssential {
			present[c.ID] = i
		}
	}

	for id := range essentialIDs {
		idx, ok := present[id]
		if ok && len(child.Chromosomes[idx].Genes) > 0 {
			continue
		}
		fallback := a.ChromosomeByID(id)
		if fallback == nil || len(fallback.Genes) == 0 {
			fallback = b.ChromosomeByID(id)
		}
		if fallback == nil || len(fallback.Genes) == 0 {
			continue
		}
		replacement := cloneChromosomeAged(*fallback)
		if ok {
			child.Chromosomes[idx] = replacement
		} else {
			child.Chromosomes = append(child.Chromosomes, replacement)
		}
	}
}
