package breeding

import (
	"strings"

	"github.com/axobase/egde/internal/genome"
	"github.com/axobase/egde/internal/ports"
)

// structuralVariation implements stage 7: per-chromosome inversion and
// a single global translocation roll, both restricted to non-essential
// chromosomes of size >= 2.
func structuralVariation(g *genome.DynamicGenome, rates Rates, rng ports.Rng) []StructuralVariation {
	var out []StructuralVariation

	for ci := range g.Chromosomes {
		chrom := &g.Chromosomes[ci]
		if chrom.IsEssential || len(chrom.Genes) < 2 {
			continue
		}
		if rng.NextFloat() >= rates.Inversion {
			continue
		}
		start, length := randomSegment(len(chrom.Genes), rng)
		applyInversion(chrom, start, length)
		out = append(out, StructuralVariation{Kind: MutationInversion, ChromosomeID: chrom.ID, SegmentStart: start, SegmentLength: length})
	}

	if rng.NextFloat() < rates.Translocation {
		if sv, ok := translocate(g, rng); ok {
			out = append(out, sv)
		}
	}

	return out
}

func randomSegment(n int, rng ports.Rng) (start, length int) {
	length = 2
	if n > 2 {
		length = 2 + int(rng.NextFloat()*float64(n-1))
		if length > n {
			length = n
		}
	}
	maxStart := n - length
	if maxStart <= 0 {
		return 0, length
	}
	start = int(rng.NextFloat() * float64(maxStart+1))
	if start > maxStart {
		start = maxStart
	}
	return start, length
}

// applyInversion reverses chrom.Genes[start:start+length] in place.
// Applying it twice with the same (start, length) is the identity.
func applyInversion(chrom *genome.Chromosome, start, length int) {
	end := start + length
	if end > len(chrom.Genes) {
		end = len(chrom.Genes)
	}
	for i, j := start, end-1; i < j; i, j = i+1, j-1 {
		chrom.Genes[i], chrom.Genes[j] = chrom.Genes[j], chrom.Genes[i]
	}
}

func eligibleForTranslocation(g *genome.DynamicGenome) []int {
	var idx []int
	for i, c := range g.Chromosomes {
		if !c.IsEssential && len(c.Genes) >= 2 {
			idx = append(idx, i)
		}
	}
	return idx
}

// translocate swaps a random suffix between two distinct non-essential
// chromosomes of size >= 2.
func translocate(g *genome.DynamicGenome, rng ports.Rng) (StructuralVariation, bool) {
	eligible := eligibleForTranslocation(g)
	if len(eligible) < 2 {
		return StructuralVariation{}, false
	}
	i1 := eligible[int(rng.NextFloat()*float64(len(eligible)))%len(eligible)]
	i2 := i1
	for i2 == i1 {
		i2 = eligible[int(rng.NextFloat()*float64(len(eligible)))%len(eligible)]
	}

	c1 := &g.Chromosomes[i1]
	c2 := &g.Chromosomes[i2]
	break1 := 1 + int(rng.NextFloat()*float64(len(c1.Genes)-1))
	break2 := 1 + int(rng.NextFloat()*float64(len(c2.Genes)-1))

	suffix1 := append([]genome.Gene(nil), c1.Genes[break1:]...)
	suffix2 := append([]genome.Gene(nil), c2.Genes[break2:]...)

	c1.Genes = append(c1.Genes[:break1], suffix2...)
	c2.Genes = append(c2.Genes[:break2], suffix1...)

	return StructuralVariation{
		Kind:          MutationTranslocation,
		ChromosomeID:  c1.ID,
		OtherChromID:  c2.ID,
		SegmentStart:  break1,
		SegmentLength: len(suffix1),
	}, true
}

// namePrefix returns the token before the first hyphen in a gene name,
// the coarse grouping gene conversion uses to find related gene pairs.
func namePrefix(name string) string {
	if idx := strings.IndexByte(name, '-'); idx >= 0 {
		return name[:idx]
	}
	return name
}

// geneScore is a pragmatic fitness proxy for gene conversion: spec.md
// §4.5 stage 8 blends the "lower-fitness" gene toward the
// "higher-fitness" one but does not define a per-gene fitness function,
// so this combines expression-relevant weight and essentiality the same
// way the expression engine's base-expression step does.
func geneScore(g genome.Gene) float64 {
	return g.Value * g.Weight * (0.5 + 0.5*g.Essentiality)
}

// geneConversion implements stage 8: for each pair of genes sharing a
// chromosome and either a domain or name-prefix, with rates.Conversion
// probability blend the lower-scoring gene's value and weight 70/30
// toward the higher-scoring one.
func geneConversion(g *genome.DynamicGenome, rates Rates, rng ports.Rng, log *[]MutationRecord) []GeneConversionEvent {
	var out []GeneConversionEvent

	for ci := range g.Chromosomes {
		chrom := &g.Chromosomes[ci]
		for i := 0; i < len(chrom.Genes); i++ {
			for j := i + 1; j < len(chrom.Genes); j++ {
				a := &chrom.Genes[i]
				b := &chrom.Genes[j]
				if a.Domain != b.Domain && namePrefix(a.Name) != namePrefix(b.Name) {
					continue
				}
				if rng.NextFloat() >= rates.Conversion {
					continue
				}

				hi, lo := a, b
				if geneScore(*b) > geneScore(*a) {
					hi, lo = b, a
				}

				oldValue := lo.Value
				lo.Value = clampf(0.3*lo.Value+0.7*hi.Value, 0, 1)
				lo.Weight = clampf(0.3*lo.Weight+0.7*hi.Weight, 0.1, 3.0)

				out = append(out, GeneConversionEvent{ChromosomeID: chrom.ID, SourceGeneID: hi.ID, TargetGeneID: lo.ID})
				*log = append(*log, MutationRecord{Kind: MutationConversion, GeneID: lo.ID, OldValue: oldValue, NewValue: lo.Value})
			}
		}
	}

	return out
}
