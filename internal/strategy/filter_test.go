package strategy

import (
	"testing"

	"github.com/axobase/egde/internal/genome"
)

func baseEnv() Env {
	return Env{
		AvailableTools:     map[string]bool{},
		Balance:            100,
		DailyMetabolicCost: 0.1,
		Mode:               "stable",
	}
}

func TestFilterRejectsStrategyMissingRequiredGene(t *testing.T) {
	snap := Snapshot{ByName: map[string]float64{}, DomainMax: map[genome.Domain]float64{}}
	candidates := Filter(snap, baseEnv())
	for _, c := range candidates {
		if c.Strategy.ID == "token-swap-arbitrage" {
			t.Fatalf("expected token-swap-arbitrage to be filtered out with no expressed genes")
		}
	}
}

func TestFilterEmergencyOverrideAllowsOnlySurvivalAndLowRiskDefense(t *testing.T) {
	snap := Snapshot{
		ByName: map[string]float64{
			"dormancy-threshold":    0.2,
			"hibernation-readiness": 0.2,
			"energy-efficiency":     0.4,
			"resource-allocation":   0.3,
			"migration-readiness":   0.3,
			"scraping-efficiency":   0.3,
			"stress-sensitivity":    0.3,
			"panic-threshold":       0.3,
			"trading-intuition":     0.5,
			"risk-appetite":         0.9,
		},
		DomainMax: map[genome.Domain]float64{},
	}
	env := baseEnv()
	env.Mode = "emergency"
	env.AvailableTools["relocation"] = true
	env.AvailableTools["web"] = true
	env.AvailableTools["dex"] = true

	candidates := Filter(snap, env)
	for _, c := range candidates {
		if c.Strategy.Category != CategorySurvival && c.Strategy.Category != CategoryDefense {
			t.Fatalf("emergency mode let a non-survival/defense strategy through: %s", c.Strategy.ID)
		}
		if c.Strategy.Category == CategoryDefense && c.Strategy.Risk >= 0.2 {
			t.Fatalf("emergency mode let a high-risk defense strategy through: %s", c.Strategy.ID)
		}
	}
}

func TestFilterSortsByPriorityDescending(t *testing.T) {
	snap := Snapshot{
		ByName: map[string]float64{
			"episodic-memory": 0.9,
		},
		DomainMax: map[genome.Domain]float64{},
	}
	candidates := Filter(snap, baseEnv())
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Priority > candidates[i-1].Priority {
			t.Fatalf("candidates not sorted: %f > %f at index %d", candidates[i].Priority, candidates[i-1].Priority, i)
		}
	}
}

func TestGenomeMatchPerfectWhenAllAboveThreshold(t *testing.T) {
	s := Strategy{RequiredGenes: map[string]float64{"a": 0.3, "b": 0.5}}
	snap := Snapshot{ByName: map[string]float64{"a": 1.0, "b": 1.0}, DomainMax: map[genome.Domain]float64{}}
	if m := genomeMatch(s, snap); m != 1.0 {
		t.Fatalf("expected genome match 1.0, got %f", m)
	}
}

func TestDeriveTolerancesWeightedBlend(t *testing.T) {
	snap := Snapshot{
		ByName: map[string]float64{
			"risk-appetite":         0.8,
			"uncertainty-tolerance": 0.6,
			"acute-stress-response": 0.2,
			"working-memory":        0.7,
			"metacognition":         0.6,
			"learning-rate":         0.5,
			"agent-cooperation":     0.6,
			"trust-default":         0.5,
		},
		DomainMax: map[genome.Domain]float64{},
	}
	tol := DeriveTolerances(snap)
	if tol.Risk <= 0 || tol.Complexity <= 0 || tol.Social <= 0 {
		t.Fatalf("expected positive tolerances, got %+v", tol)
	}
}
