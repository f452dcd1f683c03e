package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/axobase/egde/internal/expression"
	"github.com/axobase/egde/internal/genome"
	"github.com/axobase/egde/internal/ports"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) AfterFunc(d time.Duration, f func()) (cancel func()) {
	return func() {}
}

type fakeRng struct{ f float64 }

func (r fakeRng) NextFloat() float64   { return r.f }
func (r fakeRng) NextBytes(n int) []byte { return make([]byte, n) }

func expressGenome(t *testing.T, g *genome.DynamicGenome) expression.Result {
	t.Helper()
	expressor := expression.Expressor{}
	return expressor.Express(expression.Input{
		Genome: g,
		Environment: expression.Environment{Balance: 10, Mode: "normal"},
	})
}

func TestFitnessIsWithinUnitRange(t *testing.T) {
	g := genome.CreateGenesisGenome("lineage-fitness")
	result := expressGenome(t, g)
	fit := Fitness(g, result)
	if fit < 0 || fit > 1 {
		t.Fatalf("expected fitness in [0,1], got %f", fit)
	}
}

func TestGenerateMatingSignalHonestAgentReportsTrueFitness(t *testing.T) {
	g := genome.CreateGenesisGenome("lineage-honest")
	result := expressGenome(t, g)
	signal := GenerateMatingSignal("agent-a", g, result, 1.0)
	if signal.SignalledFit != signal.TrueFitness {
		t.Fatalf("expected honest signaller to report true fitness unchanged, got signalled=%f true=%f", signal.SignalledFit, signal.TrueFitness)
	}
}

func TestGenerateMatingSignalDishonestAgentDistorts(t *testing.T) {
	g := genome.CreateGenesisGenome("lineage-dishonest")
	result := expressGenome(t, g)
	signal := GenerateMatingSignal("agent-b", g, result, 0.0)
	if signal.SignalledFit == signal.TrueFitness {
		t.Fatalf("expected a fully dishonest signaller to distort its report")
	}
}

func TestEvaluatePartnerRejectsCloseKin(t *testing.T) {
	gA := genome.CreateGenesisGenome("lineage-kin")
	gB := gA.Clone()
	gB.Metadata.Generation = gA.Metadata.Generation

	resultA := expressGenome(t, gA)
	signal := GenerateMatingSignal("agent-b", gB, expressGenome(t, gB), 1.0)

	known := map[string]*genome.DynamicGenome{gB.Metadata.LineageID: gB}
	eval := EvaluatePartner(gA, resultA, signal, known)
	if eval.Decision != DecisionReject {
		t.Fatalf("expected close kin to be rejected, got decision=%s risk=%s kinship=%f", eval.Decision, eval.RiskAssessment, eval.Kinship)
	}
}

func TestEvaluatePartnerAcceptsUnrelatedHighFitness(t *testing.T) {
	gA := genome.CreateGenesisGenome("lineage-a")
	gB := genome.CreateGenesisGenome("lineage-b")

	resultA := expressGenome(t, gA)
	resultB := expressGenome(t, gB)
	signal := GenerateMatingSignal("agent-b", gB, resultB, 1.0)
	signal.SignalledFit = 0.9

	known := map[string]*genome.DynamicGenome{gB.Metadata.LineageID: gB}
	eval := EvaluatePartner(gA, resultA, signal, known)
	if eval.Decision == DecisionReject {
		t.Fatalf("did not expect an unrelated high-fitness signal to be rejected, got risk=%s kinship=%f compat=%f", eval.RiskAssessment, eval.Kinship, eval.GeneticCompatibility)
	}
}

func TestRespondToProposalNegotiatesInvestment(t *testing.T) {
	proposal := ProposeMating("agent-a", "agent-b", 0.2, time.Now())
	eval := Evaluation{Decision: DecisionNegotiate}
	decision, counter := RespondToProposal(proposal, eval, 0.8)
	if decision != DecisionNegotiate || counter == nil {
		t.Fatalf("expected a negotiate counter-proposal")
	}
	if counter.Investment <= proposal.Investment {
		t.Fatalf("expected counter-investment to move toward responder's own gene, got %f vs %f", counter.Investment, proposal.Investment)
	}
}

func TestRespondToProposalPassesThroughAcceptReject(t *testing.T) {
	proposal := ProposeMating("agent-a", "agent-b", 0.5, time.Now())
	decision, counter := RespondToProposal(proposal, Evaluation{Decision: DecisionAccept}, 0.5)
	if decision != DecisionAccept || counter != nil {
		t.Fatalf("expected accept to pass through without a counter-proposal")
	}
}

func TestExecuteBreedingRejectsInbreeding(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := New(clock)
	gA := genome.CreateGenesisGenome("lineage-same")
	gB := gA.Clone()

	_, err := c.ExecuteBreeding(gA, gB, 0.1, fakeRng{f: 0.5})
	if err == nil {
		t.Fatalf("expected near-identical parents to be rejected as inbreeding")
	}
}

func TestExecuteBreedingSucceedsForDistinctLineages(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := New(clock)
	gA := genome.CreateGenesisGenome("lineage-x")
	gB := genome.CreateGenesisGenome("lineage-y")

	result, err := c.ExecuteBreeding(gA, gB, 0.1, fakeRng{f: 0.9})
	if err != nil {
		t.Fatalf("unexpected breeding error: %v", err)
	}
	if result.ChildGenome == nil {
		t.Fatalf("expected a child genome")
	}
	if result.ChildGenome.Metadata.Generation != gA.Metadata.Generation+1 && result.ChildGenome.Metadata.Generation != gB.Metadata.Generation+1 {
		t.Fatalf("expected child generation to be parent generation + 1, got %d", result.ChildGenome.Metadata.Generation)
	}
}

func TestExecuteBreedingCircuitBreakerLimitsRate(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := New(clock)
	gA := genome.CreateGenesisGenome("lineage-p")

	var lastErr error
	for i := 0; i < MaxBreedsPerHour+1; i++ {
		gB := genome.CreateGenesisGenome("lineage-q")
		_, lastErr = c.ExecuteBreeding(gA, gB, 0.1, fakeRng{f: 0.9})
	}
	if lastErr != ErrRateLimited {
		t.Fatalf("expected the breeding circuit breaker to trip after %d breeds, got %v", MaxBreedsPerHour, lastErr)
	}
}

func TestRecordInteractionAccumulatesLedger(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := New(clock)
	c.RecordInteraction("agent-a", "agent-b", 2.5)
	c.RecordInteraction("agent-b", "agent-a", 1.5)

	hours, interactions := c.Cooperation("agent-a", "agent-b")
	if hours != 4.0 || interactions != 2 {
		t.Fatalf("expected accumulated ledger hours=4 interactions=2, got hours=%f interactions=%d", hours, interactions)
	}
}

func TestLineageDivergenceUnrelatedLineagesAreMaximallyDivergent(t *testing.T) {
	gA := genome.CreateGenesisGenome("lineage-m")
	gB := genome.CreateGenesisGenome("lineage-n")
	if LineageDivergence(gA, gB) != 1.0 {
		t.Fatalf("expected unrelated lineages to be maximally divergent")
	}
}

var _ = context.Background
var _ ports.Rng = fakeRng{}
