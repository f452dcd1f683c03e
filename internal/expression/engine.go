// Package expression implements the EGDE expression pipeline: turning a
// dynamic genome plus an environmental snapshot into an expressed
// genome, and the LRU/TTL cache that makes repeated calls cheap.
package expression

import (
	"math"

	"github.com/axobase/egde/internal/genome"
)

const (
	convergenceThreshold = 0.001
	maxFixedPointRounds   = 10

	regMultiplierMin = 0.05
	regMultiplierMax = 3.0

	compositionMin = 0.0
	compositionMax = 3.0

	defaultBaseRate       = 0.001
	defaultPerGeneOverhead = 5e-5
)

// DevelopmentalStage buckets an agent's age in days.
type DevelopmentalStage string

const (
	StageNeonate   DevelopmentalStage = "neonate"
	StageJuvenile  DevelopmentalStage = "juvenile"
	StageAdult     DevelopmentalStage = "adult"
	StageSenescent DevelopmentalStage = "senescent"
)

// StageForAge maps an age in days to its developmental stage.
func StageForAge(ageDays int) DevelopmentalStage {
	switch {
	case ageDays < 7:
		return StageNeonate
	case ageDays < 30:
		return StageJuvenile
	case ageDays < 90:
		return StageAdult
	default:
		return StageSenescent
	}
}

// EpistaticRelationship is the coarse kind of an epistatic interaction.
type EpistaticRelationship string

const (
	EpistasisDominant    EpistaticRelationship = "dominant"
	EpistasisRecessive   EpistaticRelationship = "recessive"
	EpistasisSuppressive EpistaticRelationship = "suppressive"
	EpistasisSynergistic EpistaticRelationship = "synergistic"
	EpistasisAntagonistic EpistaticRelationship = "antagonistic"
)

// EpistaticInteraction gates a hypostatic gene's expression by an
// epistatic gene's post-composition value.
type EpistaticInteraction struct {
	EpistaticGeneID  string
	HypostaticGeneID string
	Relationship     EpistaticRelationship
	Penetrance       float64
}

// Input bundles everything one expression call needs.
type Input struct {
	Genome      *genome.DynamicGenome
	Environment Environment
	AgeDays     int
	WallClockMS int64
	Epistasis   []EpistaticInteraction
}

// ExpressedGene is one gene's resolved output for a single call.
type ExpressedGene struct {
	ID                   string
	Name                 string
	Domain               genome.Domain
	BaseValue            float64
	RegulatoryMultiplier float64
	EpigeneticMultiplier float64
	ExpressedValue       float64
	Silenced             bool
}

// Stats summarizes an expressed genome.
type Stats struct {
	TotalGenes      int
	ActiveGenes     int
	SilencedGenes   int
	PerDomainCounts map[genome.Domain]int
	AvgPlasticity   float64
	AvgEssentiality float64
	AvgAge          float64
	EdgeCount       int
	MarkCount       int
}

// Result is the output of one expression call.
type Result struct {
	Genes              map[string]ExpressedGene
	Stats              Stats
	TotalMetabolicCost float64
	Warnings           []string
}

// ConvergenceWarning is emitted (non-fatally) when the regulatory
// fixed-point exits by hitting the iteration cap rather than converging.
const ConvergenceWarning = "ConvergenceWarning"

// InvalidCondition is emitted (non-fatally) when an activationCondition
// string fails to parse; the gene is treated as active (true).
const InvalidCondition = "InvalidCondition"

// Expressor is a pure function from (genome, environment, ...) to a
// Result. It holds no state of its own; the cache wraps it.
type Expressor struct{}

// NewExpressor returns a stateless pipeline evaluator.
func NewExpressor() *Expressor { return &Expressor{} }

// Express runs the full eight-step pipeline described by the expression
// engine component and returns the resolved genome plus statistics.
func (x *Expressor) Express(in Input) Result {
	g := in.Genome
	allGenes := g.AllGenes()

	silencedThisCall := make(map[string]bool, len(allGenes))
	var warnings []string

	// Step 1: conditional resolution.
	for _, gene := range allGenes {
		if gene.ExpressionState != genome.StateConditional {
			continue
		}
		ok, err := EvaluateCondition(gene.ActivationCondition, in.Environment)
		if err != nil {
			warnings = append(warnings, InvalidCondition+": "+gene.ID)
		}
		if !ok {
			silencedThisCall[gene.ID] = true
		}
	}
	for _, gene := range allGenes {
		if gene.ExpressionState == genome.StateSilenced {
			silencedThisCall[gene.ID] = true
		}
	}

	stage := StageForAge(in.AgeDays)

	// Steps 2-3: developmental modulation and base expression.
	baseValue := make(map[string]float64, len(allGenes))
	for _, gene := range allGenes {
		devMod := developmentalModifier(gene, stage, in.AgeDays)
		baseValue[gene.ID] = gene.Value * gene.Weight * devMod
	}

	// Step 4: regulatory fixed point.
	regMultiplier, converged := resolveRegulatoryFixedPoint(g, baseValue, silencedThisCall, in.WallClockMS)
	if !converged {
		warnings = append(warnings, ConvergenceWarning)
	}

	// Step 5: epigenetic multiplier.
	epiMultiplier := make(map[string]float64, len(allGenes))
	markByGene := make(map[string]genome.EpigeneticMark, len(g.Epigenome))
	for _, m := range g.Epigenome {
		markByGene[m.TargetGeneID] = m
	}
	for _, gene := range allGenes {
		epiMultiplier[gene.ID] = epigeneticMultiplier(gene.ID, markByGene, g.Metadata.Generation)
	}

	// Step 6: composition.
	genes := make(map[string]ExpressedGene, len(allGenes))
	for _, gene := range allGenes {
		silenced := silencedThisCall[gene.ID]
		var expressed float64
		if !silenced {
			expressed = clampf(baseValue[gene.ID]*regMultiplier[gene.ID]*epiMultiplier[gene.ID], compositionMin, compositionMax)
		}
		genes[gene.ID] = ExpressedGene{
			ID:                   gene.ID,
			Name:                 gene.Name,
			Domain:               gene.Domain,
			BaseValue:            baseValue[gene.ID],
			RegulatoryMultiplier: regMultiplier[gene.ID],
			EpigeneticMultiplier: epiMultiplier[gene.ID],
			ExpressedValue:       expressed,
			Silenced:             silenced,
		}
	}

	// Step 7: epistasis.
	applyEpistasis(genes, in.Epistasis)

	// Step 8: metabolic cost.
	totalCost := defaultBaseRate + float64(len(allGenes))*defaultPerGeneOverhead
	for _, gene := range allGenes {
		totalCost += gene.MetabolicCost * genes[gene.ID].ExpressedValue
	}

	return Result{
		Genes:              genes,
		Stats:              computeStats(g, allGenes, genes),
		TotalMetabolicCost: totalCost,
		Warnings:           warnings,
	}
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

// developmentalModifier combines the per-stage domain multiplier with
// any active critical-window plasticity bonus.
func developmentalModifier(g genome.Gene, stage DevelopmentalStage, ageDays int) float64 {
	mod := stageDomainMultiplier(g.Domain, stage)
	mod *= criticalWindowMultiplier(g.Domain, ageDays, g.Plasticity)
	return mod
}

func stageDomainMultiplier(d genome.Domain, stage DevelopmentalStage) float64 {
	switch stage {
	case StageNeonate:
		switch d {
		case genome.DomainLearning, genome.DomainCooperation:
			return 1.3
		case genome.DomainMetabolism:
			return 0.7
		}
	case StageJuvenile:
		switch d {
		case genome.DomainAdaptation, genome.DomainNoveltySeeking:
			return 1.3
		case genome.DomainPlanning:
			return 0.7
		}
	case StageAdult:
		switch d {
		case genome.DomainMateSelection, genome.DomainParentalInvest:
			return 1.3
		}
	case StageSenescent:
		switch d {
		case genome.DomainStressResponse, genome.DomainSelfModel, genome.DomainMetabolism, genome.DomainMemory:
			return 0.7
		}
	}
	return 1.0
}

type criticalWindow struct {
	domain   genome.Domain
	startDay int
	endDay   int
}

var criticalWindows = []criticalWindow{
	{genome.DomainLearning, 0, 7},
	{genome.DomainCooperation, 0, 14},
	{genome.DomainMateSelection, 3, 21},
	{genome.DomainRiskAssessment, 7, 30},
}

// criticalWindowMultiplier returns an additional 1.2-1.5 plasticity
// multiplier while a domain's critical window is open, scaled by the
// gene's own plasticity; 1.0 otherwise.
func criticalWindowMultiplier(d genome.Domain, ageDays int, plasticity float64) float64 {
	for _, w := range criticalWindows {
		if w.domain != d {
			continue
		}
		if ageDays >= w.startDay && ageDays < w.endDay {
			return 1.2 + 0.3*clampf(plasticity, 0, 1)
		}
	}
	return 1.0
}

func hill(x, theta, n float64) float64 {
	if x <= 0 {
		return 0
	}
	xn := math.Pow(x, n)
	thetan := math.Pow(theta, n)
	if xn+thetan == 0 {
		return 0
	}
	return xn / (thetan + xn)
}

func oscillatorValue(period, phase float64, wallClockMS int64) float64 {
	if period == 0 {
		period = 1
	}
	t := float64(wallClockMS)
	return (math.Sin(2*math.Pi*t/period+phase) + 1) / 2
}

// resolveRegulatoryFixedPoint iterates the regulatory graph to a fixed
// point, returning the per-gene multiplier and whether it converged
// within the iteration cap.
func resolveRegulatoryFixedPoint(g *genome.DynamicGenome, baseValue map[string]float64, silenced map[string]bool, wallClockMS int64) (map[string]float64, bool) {
	mult := make(map[string]float64, len(baseValue))
	for id := range baseValue {
		mult[id] = 1.0
	}

	incoming := make(map[string][]genome.RegulatoryEdge)
	for _, e := range g.Edges {
		incoming[e.TargetGeneID] = append(incoming[e.TargetGeneID], e)
	}

	sourceValue := func(id string) float64 {
		if silenced[id] {
			return 0
		}
		return baseValue[id] * mult[id]
	}

	converged := false
	for round := 0; round < maxFixedPointRounds; round++ {
		next := make(map[string]float64, len(mult))
		for id := range mult {
			next[id] = mult[id]
		}

		maxDelta := 0.0
		for targetID, edges := range incoming {
			if _, ok := baseValue[targetID]; !ok {
				continue
			}
			groups := make(map[genome.RegulatoryLogic][]genome.RegulatoryEdge)
			for _, e := range edges {
				groups[e.NormalizedLogic()] = append(groups[e.NormalizedLogic()], e)
			}

			combined := 1.0
			for logic, group := range groups {
				combined *= combineGroup(logic, group, sourceValue, wallClockMS)
			}
			combined = clampf(combined, regMultiplierMin, regMultiplierMax)

			delta := math.Abs(combined - mult[targetID])
			if delta > maxDelta {
				maxDelta = delta
			}
			next[targetID] = combined
		}

		mult = next
		if maxDelta < convergenceThreshold {
			converged = true
			break
		}
	}

	for id := range mult {
		mult[id] = clampf(mult[id], regMultiplierMin, regMultiplierMax)
	}
	return mult, converged
}

func combineGroup(logic genome.RegulatoryLogic, edges []genome.RegulatoryEdge, sourceValue func(string) float64, wallClockMS int64) float64 {
	switch logic {
	case genome.LogicThreshold:
		product := 1.0
		for _, e := range edges {
			h := hill(sourceValue(e.SourceGeneID), normalizedThreshold(e), e.NormalizedCooperativity())
			if e.Relationship == genome.RelationInhibition {
				product *= math.Max(0.1, 1-e.Strength*h)
			} else {
				product *= 1 + e.Strength*h
			}
		}
		return product

	case genome.LogicOscillator:
		product := 1.0
		for _, e := range edges {
			osc := oscillatorValue(e.Period, e.Phase, wallClockMS)
			product *= 1 + e.Strength*osc*0.5
		}
		return product

	case genome.LogicAND, genome.LogicOR, genome.LogicNAND:
		activators := make([]genome.RegulatoryEdge, 0, len(edges))
		for _, e := range edges {
			if e.Relationship == genome.RelationActivation {
				activators = append(activators, e)
			}
		}
		if len(activators) == 0 {
			return 1.0
		}
		values := make([]float64, len(activators))
		avgStrength := 0.0
		allAbove := true
		maxVal := 0.0
		for i, e := range activators {
			v := sourceValue(e.SourceGeneID)
			values[i] = v
			avgStrength += e.Strength
			if v <= 0.3 {
				allAbove = false
			}
			if v > maxVal {
				maxVal = v
			}
		}
		avgStrength /= float64(len(activators))

		var combinedInput float64
		switch logic {
		case genome.LogicAND:
			if allAbove {
				combinedInput = minFloat(values)
			}
		case genome.LogicOR:
			combinedInput = maxVal
		case genome.LogicNAND:
			if allAbove {
				combinedInput = 0
			} else {
				combinedInput = maxVal * 0.5
			}
		}
		return 1 + avgStrength*combinedInput*0.3

	default: // additive, multiplicative
		product := 1.0
		for _, e := range edges {
			v := sourceValue(e.SourceGeneID)
			if e.Relationship == genome.RelationInhibition {
				product *= math.Max(0.1, 1-e.Strength*v)
			} else {
				product *= 1 + e.Strength*v*0.3
			}
		}
		return product
	}
}

func normalizedThreshold(e genome.RegulatoryEdge) float64 {
	if e.Threshold == 0 {
		return 0.5
	}
	return e.Threshold
}

func minFloat(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// epigeneticMultiplier applies the decayed mark, if any, for geneID.
func epigeneticMultiplier(geneID string, marks map[string]genome.EpigeneticMark, generation int) float64 {
	mark, ok := marks[geneID]
	if !ok {
		return 1.0
	}
	s := mark.DecayedStrength(generation)
	var mult float64
	switch mark.Modification {
	case genome.ModUpregulate:
		mult = 1 + 0.5*s
	case genome.ModDownregulate:
		mult = 1 - 0.5*s
	case genome.ModSilence:
		mult = 1 - s
	case genome.ModActivate:
		mult = 1 + s
	default:
		mult = 1.0
	}
	if mult < 0 {
		mult = 0
	}
	return mult
}

// applyEpistasis applies each interaction in order, gating the
// hypostatic gene's expressed value by the epistatic gene's
// post-composition value.
func applyEpistasis(genes map[string]ExpressedGene, interactions []EpistaticInteraction) {
	for _, in := range interactions {
		epi, ok := genes[in.EpistaticGeneID]
		if !ok {
			continue
		}
		hypo, ok := genes[in.HypostaticGeneID]
		if !ok {
			continue
		}
		switch in.Relationship {
		case EpistasisSuppressive:
			if epi.ExpressedValue > 0.5 {
				hypo.ExpressedValue = 0
				hypo.Silenced = true
			}
		case EpistasisDominant:
			hypo.ExpressedValue = clampf(hypo.ExpressedValue*(1-in.Penetrance)+epi.ExpressedValue*in.Penetrance, compositionMin, compositionMax)
		case EpistasisRecessive:
			if epi.ExpressedValue < 0.3 {
				hypo.ExpressedValue = clampf(hypo.ExpressedValue*(1-in.Penetrance), compositionMin, compositionMax)
			}
		case EpistasisSynergistic:
			boost := 1 + in.Penetrance*epi.ExpressedValue*0.2
			hypo.ExpressedValue = clampf(hypo.ExpressedValue*boost, compositionMin, compositionMax)
			epi.ExpressedValue = clampf(epi.ExpressedValue*boost, compositionMin, compositionMax)
			genes[in.EpistaticGeneID] = epi
		case EpistasisAntagonistic:
			reduction := 1 - in.Penetrance*epi.ExpressedValue*0.2
			if reduction < 0 {
				reduction = 0
			}
			hypo.ExpressedValue = clampf(hypo.ExpressedValue*reduction, compositionMin, compositionMax)
		}
		genes[in.HypostaticGeneID] = hypo
	}
}

func computeStats(g *genome.DynamicGenome, allGenes []genome.Gene, expressed map[string]ExpressedGene) Stats {
	stats := Stats{
		TotalGenes:      len(allGenes),
		PerDomainCounts: make(map[genome.Domain]int),
		EdgeCount:       len(g.Edges),
		MarkCount:       len(g.Epigenome),
	}
	var sumPlasticity, sumEssentiality float64
	var sumAge int
	for _, gene := range allGenes {
		stats.PerDomainCounts[gene.Domain]++
		sumPlasticity += gene.Plasticity
		sumEssentiality += gene.Essentiality
		sumAge += gene.Age
		if expressed[gene.ID].Silenced {
			stats.SilencedGenes++
		} else {
			stats.ActiveGenes++
		}
	}
	if len(allGenes) > 0 {
		n := float64(len(allGenes))
		stats.AvgPlasticity = sumPlasticity / n
		stats.AvgEssentiality = sumEssentiality / n
		stats.AvgAge = float64(sumAge) / n
	}
	return stats
}
