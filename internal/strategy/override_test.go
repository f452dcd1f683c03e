package strategy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/axobase/egde/internal/genome"
)

func TestLoadCatalogueOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalogue.toml")
	contents := `
[[strategy]]
id = "custom-forage"
name = "Custom Forage"
category = "survival"
risk = 0.1
complexity = 0.2
typical_payoff = 0.05
horizon = "immediate"
action_type = "store-memory"
required_tools = ["web"]

[strategy.required_genes]
"energy-efficiency" = 0.25
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := LoadCatalogueOverride(path)
	if err != nil {
		t.Fatalf("LoadCatalogueOverride failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 strategy, got %d", len(got))
	}
	s := got[0]
	if s.ID != "custom-forage" || s.Category != CategorySurvival || s.Horizon != HorizonImmediate {
		t.Errorf("unexpected decoded strategy: %+v", s)
	}
	if s.RequiredGenes["energy-efficiency"] != 0.25 {
		t.Errorf("expected required gene threshold 0.25, got %v", s.RequiredGenes)
	}
	if len(s.RequiredTools) != 1 || s.RequiredTools[0] != "web" {
		t.Errorf("expected required tool 'web', got %v", s.RequiredTools)
	}
}

func TestLoadCatalogueOverrideMissingFile(t *testing.T) {
	if _, err := LoadCatalogueOverride("/nonexistent/catalogue.toml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFilterWithCatalogueUsesGivenSet(t *testing.T) {
	custom := []Strategy{
		{ID: "only-one", Name: "Only One", Category: CategorySurvival,
			Risk: 0.05, Complexity: 0.05, Horizon: HorizonImmediate, ActionType: "store-memory"},
	}
	snap := Snapshot{ByName: map[string]float64{}, DomainMax: map[genome.Domain]float64{}}
	env := Env{Mode: "normal", Balance: 100, DailyMetabolicCost: 0.01}

	candidates := FilterWithCatalogue(custom, snap, env)
	if len(candidates) != 1 || candidates[0].Strategy.ID != "only-one" {
		t.Fatalf("expected the single custom strategy to survive, got %+v", candidates)
	}
}
