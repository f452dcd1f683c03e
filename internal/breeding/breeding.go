// Package breeding implements the EGDE genetic operator pipeline: the
// eight-stage crossover → mutation → duplication → deletion → de-novo →
// regulatory → structural → conversion sequence that turns two parent
// genomes into one child, plus horizontal gene transfer and the
// inbreeding guard. Every probabilistic decision is drawn from the
// caller's injected ports.Rng; no operator reads ambient randomness.
package breeding

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/axobase/egde/internal/genome"
	"github.com/axobase/egde/internal/ports"
)

// ErrInbreeding is returned by Breed when the parents are too closely
// related to pair (Jaccard similarity over gene-id sets exceeds 0.8).
// Coordinators also reject on a lineage-generation check, which lives
// above this package because it needs a lineage cache Breed does not
// have.
var ErrInbreeding = errors.New("breeding: parents too closely related")

// Rates bundles every operator's probability, so the adaptive-rate
// controller can derive and inject a full set without Breed needing to
// know about it.
type Rates struct {
	PointMutation      float64
	LargeMutation      float64
	WeightMutation     float64
	PointSigma         float64
	Duplication        float64
	DeletionBase       float64
	DeletionStarvation float64
	DeNovo             float64
	RegulatoryAdd      float64
	RegulatoryDelete   float64
	RegulatoryModify   float64
	Inversion          float64
	Translocation      float64
	Conversion         float64
	HGT                float64

	ChromosomeLevelCrossover float64
	ExtraGeneInheritance     float64
}

// DefaultRates returns the contractual defaults from spec.md §6.
func DefaultRates() Rates {
	return Rates{
		PointMutation:      0.05,
		LargeMutation:      0.0025,
		WeightMutation:     0.05,
		PointSigma:         0.08,
		Duplication:        0.03,
		DeletionBase:       0.02,
		DeletionStarvation: 0.15,
		DeNovo:             0.005,
		RegulatoryAdd:      0.02,
		RegulatoryDelete:   0.02,
		RegulatoryModify:   0.05,
		Inversion:          0.005,
		Translocation:      0.002,
		Conversion:         0.002,
		HGT:                0.05,

		ChromosomeLevelCrossover: 0.7,
		ExtraGeneInheritance:     0.5,
	}
}

// Context carries the two parent genomes and the environmental
// conditions the operator pipeline is sensitive to.
type Context struct {
	ParentA             *genome.DynamicGenome
	ParentB             *genome.DynamicGenome
	ParentAID           string
	ParentBID           string
	EnvironmentalStress float64
	StarvationMode      bool
	Rates               *Rates // nil uses DefaultRates()
}

// MutationKind tags a single operator outcome, the tagged-sum-type
// idiom spec.md §9 calls for in place of ad-hoc dynamic records.
type MutationKind string

const (
	MutationPoint         MutationKind = "point"
	MutationLarge         MutationKind = "large"
	MutationWeight        MutationKind = "weight"
	MutationDuplication   MutationKind = "duplication"
	MutationDeletion      MutationKind = "deletion"
	MutationDeNovo        MutationKind = "deNovo"
	MutationRegulatory    MutationKind = "regulatory"
	MutationInversion     MutationKind = "inversion"
	MutationTranslocation MutationKind = "translocation"
	MutationConversion    MutationKind = "conversion"
)

// MutationRecord is sufficient to replay one operator's decision.
type MutationRecord struct {
	Kind     MutationKind
	GeneID   string
	OldValue float64
	NewValue float64
	Detail   string
}

// CrossoverEvent records one chromosome's crossover resolution.
type CrossoverEvent struct {
	ChromosomeID string
	GeneLevel    bool   // true if uniform gene-level crossover was used
	FromParent   string // "A", "B", or "mixed" for gene-level
}

// StructuralVariation records one inversion or translocation.
type StructuralVariation struct {
	Kind          MutationKind // MutationInversion or MutationTranslocation
	ChromosomeID  string
	OtherChromID  string // translocation only
	SegmentStart  int
	SegmentLength int
}

// GeneConversionEvent records one gene-conversion blend.
type GeneConversionEvent struct {
	ChromosomeID string
	SourceGeneID string // higher-fitness gene, the template
	TargetGeneID string // lower-fitness gene, the one blended
}

// Result is everything Breed produces: the child genome plus a replay
// log of every stage.
type Result struct {
	ChildGenome          *genome.DynamicGenome
	Mutations            []MutationRecord
	CrossoverEvents      []CrossoverEvent
	StructuralVariations []StructuralVariation
	GeneConversions      []GeneConversionEvent
}

// geneOwner tracks which chromosome a gene id currently lives on, so
// later stages (duplication, de-novo, conversion) can place new genes
// without re-scanning the whole genome each time.
type geneOwner map[string]string

func buildOwnerIndex(g *genome.DynamicGenome) geneOwner {
	idx := make(geneOwner)
	for _, c := range g.Chromosomes {
		for _, gene := range c.Genes {
			idx[gene.ID] = c.ID
		}
	}
	return idx
}

// JaccardSimilarity measures overlap between two genomes' gene-id sets,
// the surrogate for kinship spec.md §4.5 mandates in the absence of a
// full lineage graph.
func JaccardSimilarity(a, b *genome.DynamicGenome) float64 {
	setA := a.GeneIDSet()
	setB := b.GeneIDSet()
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	intersection := 0
	for id := range setA {
		if _, ok := setB[id]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Breed runs the full eight-stage pipeline and returns a child genome
// plus a complete replay log. It rejects outright with ErrInbreeding
// when the parents' gene-id Jaccard similarity exceeds 0.8; the caller
// is expected to have already checked any lineage-generation guard it
// maintains.
func Breed(ctx Context, rng ports.Rng) (*Result, error) {
	if JaccardSimilarity(ctx.ParentA, ctx.ParentB) > 0.8 {
		return nil, ErrInbreeding
	}
	rates := DefaultRates()
	if ctx.Rates != nil {
		rates = *ctx.Rates
	}

	res := &Result{}

	child, events := crossover(ctx.ParentA, ctx.ParentB, rates, rng)
	res.CrossoverEvents = events

	owner := buildOwnerIndex(child)

	pointMutation(child, rates, rng, &res.Mutations)
	duplication(child, owner, rates, rng, &res.Mutations)
	deletion(child, rates, ctx.StarvationMode, rng, &res.Mutations)
	deNovoBirth(child, rates, rng, &res.Mutations)
	regulatoryRecombination(child, ctx.ParentA, ctx.ParentB, rates, rng, &res.Mutations)
	res.StructuralVariations = structuralVariation(child, rates, rng)
	res.GeneConversions = geneConversion(child, rates, rng, &res.Mutations)

	generation := ctx.ParentA.Metadata.Generation
	if ctx.ParentB.Metadata.Generation > generation {
		generation = ctx.ParentB.Metadata.Generation
	}
	child.Metadata.Generation = generation + 1
	child.Metadata.TotalGenes = len(child.AllGenes())
	child.RecomputeHash()

	res.ChildGenome = child
	return res, nil
}

// gaussian draws from N(mean, stdDev) using a 12-uniform Irwin-Hall
// approximation, so every draw costs only rng.NextFloat() calls — no
// second independent stream or cached state, keeping the pipeline
// reproducible from one injected generator.
func gaussian(rng ports.Rng, mean, stdDev float64) float64 {
	sum := 0.0
	for i := 0; i < 12; i++ {
		sum += rng.NextFloat()
	}
	return mean + (sum-6)*stdDev
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func newGeneID() string {
	return uuid.NewString()
}

// sortedChromosomeIDs returns the union of chromosome ids across two
// genomes, parentA's declaration order first then any extra ids only
// parentB carries — giving every operator a deterministic iteration
// order (gene id ascending per spec.md §9's numerical-reproducibility
// note, chromosome-declaration order here since chromosomes have no
// numeric id).
func unionChromosomeIDs(a, b *genome.DynamicGenome) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range a.Chromosomes {
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c.ID)
		}
	}
	for _, c := range b.Chromosomes {
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c.ID)
		}
	}
	return out
}

func sortedGeneIDs(ids map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
