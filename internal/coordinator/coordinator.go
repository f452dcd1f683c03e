// Package coordinator implements the EGDE evolution coordinator: a
// cooperation ledger, genome-aware mate signalling and evaluation,
// proposal/acceptance, and breeding invocation, gated by the inbreeding
// check and a lineage-generation kin check plus a breeding circuit
// breaker.
package coordinator

import (
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/axobase/egde/internal/breeding"
	"github.com/axobase/egde/internal/epigenetics"
	"github.com/axobase/egde/internal/expression"
	"github.com/axobase/egde/internal/genome"
	"github.com/axobase/egde/internal/ports"
)

// ErrRateLimited is returned by ExecuteBreeding when a lineage has
// exceeded MaxBreedsPerHour; the caller may retry later.
var ErrRateLimited = errors.New("coordinator: breeding rate limited for lineage")

// RiskLevel is the coarse risk bucket an Evaluation assigns a partner.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ProposalDecision is the outcome respondToProposal can reach.
type ProposalDecision string

const (
	DecisionAccept    ProposalDecision = "accept"
	DecisionReject    ProposalDecision = "reject"
	DecisionNegotiate ProposalDecision = "negotiate"
)

// kinshipGenerationWindow is how many generations apart two lineages can
// be before the coordinator's kin check, independent of the hard
// Jaccard-similarity inbreeding rejection breeding.Breed already
// enforces, starts treating them as related (spec.md §4.5's "within
// three generations of a shared ancestor" language, here approximated
// via LineageDivergence since the core has no shared-ancestor graph).
const kinshipGenerationWindow = 3

// MaxBreedsPerHour bounds how often one lineage id may complete a
// breed, independent of the hard Inbreeding rejection. This is the
// teacher's MutationRateLimiter/FirewallConfig idiom adopted as a
// breeding circuit breaker (spec.md §9 supplemental feature), not a
// spec.md invariant.
const MaxBreedsPerHour = 3

// Signal is the (possibly distorted) fitness signal one agent
// broadcasts to advertise mating quality.
type Signal struct {
	AgentID      string
	LineageID    string
	SignalledFit float64
	TrueFitness  float64
	GenomeHash   string
	Generation   int
}

// Evaluation is the result of evaluating a candidate partner's signal.
type Evaluation struct {
	Attractiveness       float64
	GeneticCompatibility float64
	EstimatedFitness     float64
	Kinship              float64
	RiskAssessment       RiskLevel
	Decision             ProposalDecision
}

// Proposal is one mating offer.
type Proposal struct {
	FromAgentID string
	ToAgentID   string
	OfferedAt   time.Time
	Investment  float64 // 0..1, driven by the proposer's offspring-investment gene
}

// ledgerEntry is the cooperation-ledger record for one ordered agent
// pair.
type ledgerEntry struct {
	Hours        float64
	Interactions int
}

// breedHistory tracks a lineage's recent breed timestamps for the
// circuit breaker.
type breedHistory struct {
	timestamps []time.Time
}

// Coordinator owns the in-memory cooperation ledger and breeding
// circuit breaker across a population.
type Coordinator struct {
	mu      sync.Mutex
	ledger  map[string]*ledgerEntry
	history map[string]*breedHistory
	clock   ports.Clock
}

// New returns a coordinator bound to a clock for rate-limiting decisions.
func New(clock ports.Clock) *Coordinator {
	return &Coordinator{
		ledger:  make(map[string]*ledgerEntry),
		history: make(map[string]*breedHistory),
		clock:   clock,
	}
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// RecordInteraction increments the cooperation ledger for an agent
// pair.
func (c *Coordinator) RecordInteraction(agentA, agentB string, hours float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := pairKey(agentA, agentB)
	entry, ok := c.ledger[key]
	if !ok {
		entry = &ledgerEntry{}
		c.ledger[key] = entry
	}
	entry.Hours += hours
	entry.Interactions++
}

// Cooperation returns the current ledger entry for an agent pair.
func (c *Coordinator) Cooperation(agentA, agentB string) (hours float64, interactions int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.ledger[pairKey(agentA, agentB)]
	if !ok {
		return 0, 0
	}
	return entry.Hours, entry.Interactions
}

// Fitness computes the composite fitness formula spec.md §4.11 defines:
// 0.4*metabolicEfficiency + 0.3*normalizedShannonEntropy(expressionValues)
// + 0.3*meanEssentialExpression.
func Fitness(g *genome.DynamicGenome, result expression.Result) float64 {
	metabolicEfficiency := metabolicEfficiencyOf(result)
	entropy := normalizedShannonEntropy(result)
	essential := meanEssentialExpression(g, result)
	return 0.4*metabolicEfficiency + 0.3*entropy + 0.3*essential
}

// metabolicEfficiencyOf rewards a low cost-per-unit-of-active-expression
// ratio, since a raw inverse of cost alone would favor silencing
// everything.
func metabolicEfficiencyOf(result expression.Result) float64 {
	var totalExpressed float64
	for _, eg := range result.Genes {
		totalExpressed += eg.ExpressedValue
	}
	if result.TotalMetabolicCost <= 0 {
		return 0
	}
	ratio := totalExpressed / (result.TotalMetabolicCost * 1000)
	return clamp01(ratio)
}

func normalizedShannonEntropy(result expression.Result) float64 {
	var total float64
	values := make([]float64, 0, len(result.Genes))
	for _, eg := range result.Genes {
		if eg.ExpressedValue <= 0 {
			continue
		}
		values = append(values, eg.ExpressedValue)
		total += eg.ExpressedValue
	}
	if total <= 0 || len(values) <= 1 {
		return 0
	}
	var entropy float64
	for _, v := range values {
		p := v / total
		entropy -= p * math.Log2(p)
	}
	maxEntropy := math.Log2(float64(len(values)))
	if maxEntropy == 0 {
		return 0
	}
	return clamp01(entropy / maxEntropy)
}

func meanEssentialExpression(g *genome.DynamicGenome, result expression.Result) float64 {
	var sum float64
	var count int
	for _, gene := range g.AllGenes() {
		if gene.Essentiality < 0.5 {
			continue
		}
		if eg, ok := result.Genes[gene.ID]; ok {
			sum += clamp01(eg.ExpressedValue / 2)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// GenerateMatingSignal builds the fitness signal an agent broadcasts,
// distorting true fitness in proportion to (1 - signal_honesty): a
// perfectly honest signaller (signal_honesty=1) reports its true
// fitness unchanged.
func GenerateMatingSignal(agentID string, g *genome.DynamicGenome, result expression.Result, signalHonesty float64) Signal {
	trueFit := Fitness(g, result)
	distortion := clamp01(1 - signalHonesty)
	signalled := clamp01(trueFit + distortion*(0.5-trueFit))
	return Signal{
		AgentID:      agentID,
		LineageID:    g.Metadata.LineageID,
		SignalledFit: signalled,
		TrueFitness:  trueFit,
		GenomeHash:   g.Metadata.GenomeHash,
		Generation:   g.Metadata.Generation,
	}
}

// EvaluatePartner scores an incoming mating signal against the
// evaluator's own genome.
func EvaluatePartner(myGenome *genome.DynamicGenome, myResult expression.Result, partner Signal, knownLineageGenomes map[string]*genome.DynamicGenome) Evaluation {
	myFitness := Fitness(myGenome, myResult)
	compatibility := geneticCompatibility(myGenome, knownLineageGenomes[partner.LineageID])
	kinship := LineageDivergence(myGenome, knownLineageGenomes[partner.LineageID])

	attractiveness := clamp01(0.6*partner.SignalledFit + 0.4*compatibility)

	risk := RiskLow
	switch {
	case kinship < 1.0/float64(kinshipGenerationWindow):
		risk = RiskHigh
	case compatibility < 0.3:
		risk = RiskMedium
	}

	decision := DecisionReject
	switch {
	case risk == RiskHigh:
		decision = DecisionReject
	case attractiveness >= 0.6:
		decision = DecisionAccept
	case attractiveness >= 0.35:
		decision = DecisionNegotiate
	}

	return Evaluation{
		Attractiveness:       attractiveness,
		GeneticCompatibility: compatibility,
		EstimatedFitness:     (myFitness + partner.TrueFitness) / 2,
		Kinship:              kinship,
		RiskAssessment:       risk,
		Decision:             decision,
	}
}

// geneticCompatibility uses the complement of Jaccard similarity as a
// coarse "enough overlap to be compatible, not so much as to be
// redundant" signal: too little or too much overlap both reduce
// compatibility, peaking at moderate shared ancestry.
func geneticCompatibility(a, b *genome.DynamicGenome) float64 {
	if b == nil {
		return 0.5
	}
	sim := breeding.JaccardSimilarity(a, b)
	return clamp01(1 - math.Abs(sim-0.4)/0.6)
}

// LineageDivergence is a cheap generation-delta proxy for shared
// ancestry (teacher: DivergenceScore/CheckADL), used only to strengthen
// the inbreeding check, never to replace breeding.Breed's hard Jaccard
// rejection.
func LineageDivergence(a, b *genome.DynamicGenome) float64 {
	if b == nil {
		return 1.0
	}
	if a.Metadata.LineageID == b.Metadata.LineageID {
		delta := a.Metadata.Generation - b.Metadata.Generation
		if delta < 0 {
			delta = -delta
		}
		return float64(delta) / float64(kinshipGenerationWindow)
	}
	return 1.0
}

// ProposeMating builds a proposal from the proposer's offspring-
// investment gene, which drives how much the proposer is willing to
// commit up front.
func ProposeMating(fromID, toID string, offspringInvestment float64, now time.Time) Proposal {
	return Proposal{FromAgentID: fromID, ToAgentID: toID, OfferedAt: now, Investment: clamp01(offspringInvestment)}
}

// RespondToProposal evaluates an incoming proposal and, on negotiate,
// returns a counter-proposal with investment nudged toward the
// responder's own offspring-investment gene.
func RespondToProposal(p Proposal, eval Evaluation, myOffspringInvestment float64) (ProposalDecision, *Proposal) {
	if eval.Decision != DecisionNegotiate {
		return eval.Decision, nil
	}
	counter := p
	counter.FromAgentID, counter.ToAgentID = p.ToAgentID, p.FromAgentID
	counter.Investment = clamp01((p.Investment + myOffspringInvestment) / 2)
	return DecisionNegotiate, &counter
}

// ExecuteBreeding enforces the inbreeding check and the breeding
// circuit breaker, runs the operator pipeline, and inherits epigenetic
// marks into the child.
func (c *Coordinator) ExecuteBreeding(parentA, parentB *genome.DynamicGenome, environmentalStress float64, rng ports.Rng) (*breeding.Result, error) {
	now := c.clock.Now()

	c.mu.Lock()
	if c.overBreedLimit(parentA.Metadata.LineageID, now) || c.overBreedLimit(parentB.Metadata.LineageID, now) {
		c.mu.Unlock()
		return nil, ErrRateLimited
	}
	c.mu.Unlock()

	result, err := breeding.Breed(breeding.Context{
		ParentA:             parentA,
		ParentB:             parentB,
		EnvironmentalStress: environmentalStress,
	}, rng)
	if err != nil {
		return nil, err
	}

	result.ChildGenome.Epigenome = epigenetics.InheritMarks(parentA.Epigenome, parentB.Epigenome, rng)

	c.mu.Lock()
	c.recordBreed(parentA.Metadata.LineageID, now)
	c.recordBreed(parentB.Metadata.LineageID, now)
	c.mu.Unlock()

	return result, nil
}

func (c *Coordinator) overBreedLimit(lineageID string, now time.Time) bool {
	h, ok := c.history[lineageID]
	if !ok {
		return false
	}
	count := 0
	for _, t := range h.timestamps {
		if now.Sub(t) < time.Hour {
			count++
		}
	}
	return count >= MaxBreedsPerHour
}

func (c *Coordinator) recordBreed(lineageID string, now time.Time) {
	h, ok := c.history[lineageID]
	if !ok {
		h = &breedHistory{}
		c.history[lineageID] = h
	}
	h.timestamps = append(h.timestamps, now)
	cutoff := now.Add(-time.Hour)
	kept := h.timestamps[:0]
	for _, t := range h.timestamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	h.timestamps = kept
}

// TopLedgerPairs returns the n pairs with the highest cooperation-hours,
// for diagnostics.
func (c *Coordinator) TopLedgerPairs(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.ledger))
	for k := range c.ledger {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.ledger[keys[i]].Hours > c.ledger[keys[j]].Hours
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
