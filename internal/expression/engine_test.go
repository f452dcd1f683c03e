package expression

import (
	"testing"

	"github.com/axobase/egde/internal/genome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageForAgeBoundaries(t *testing.T) {
	assert.Equal(t, StageNeonate, StageForAge(0))
	assert.Equal(t, StageNeonate, StageForAge(6))
	assert.Equal(t, StageJuvenile, StageForAge(7))
	assert.Equal(t, StageAdult, StageForAge(30))
	assert.Equal(t, StageSenescent, StageForAge(90))
}

func simpleGenome() *genome.DynamicGenome {
	g := &genome.DynamicGenome{
		Chromosomes: []genome.Chromosome{
			{ID: "c1", Name: "Test", Genes: []genome.Gene{
				{ID: "g1", Name: "gene-one", Domain: genome.DomainMetabolism, Value: 0.6, Weight: 1.0, ExpressionState: genome.StateActive, MetabolicCost: 0.002},
				{ID: "g2", Name: "gene-two", Domain: genome.DomainCognition, Value: 0.5, Weight: 1.0, ExpressionState: genome.StateSilenced, MetabolicCost: 0.001},
				{ID: "g3", Name: "gene-three", Domain: genome.DomainCooperation, Value: 0.4, Weight: 1.0, ExpressionState: genome.StateConditional, ActivationCondition: "balance > 100", MetabolicCost: 0.001},
			}},
		},
	}
	g.Metadata.TotalGenes = 3
	return g
}

func TestExpressSilencedAndConditionalGenes(t *testing.T) {
	x := NewExpressor()

	result := x.Express(Input{Genome: simpleGenome(), Environment: Environment{Balance: 50}, AgeDays: 40})
	assert.True(t, result.Genes["g2"].Silenced)
	assert.Equal(t, 0.0, result.Genes["g2"].ExpressedValue)
	assert.True(t, result.Genes["g3"].Silenced, "condition balance>100 is false at balance=50")

	result2 := x.Express(Input{Genome: simpleGenome(), Environment: Environment{Balance: 200}, AgeDays: 40})
	assert.False(t, result2.Genes["g3"].Silenced)
	assert.Greater(t, result2.Genes["g3"].ExpressedValue, 0.0)
}

func TestExpressStatsCountActiveAndSilenced(t *testing.T) {
	x := NewExpressor()
	result := x.Express(Input{Genome: simpleGenome(), Environment: Environment{Balance: 200}, AgeDays: 40})
	assert.Equal(t, 3, result.Stats.TotalGenes)
	assert.Equal(t, 2, result.Stats.ActiveGenes)
	assert.Equal(t, 1, result.Stats.SilencedGenes)
}

func TestExpressMetabolicCostIncludesOverheadAndPerGeneCost(t *testing.T) {
	x := NewExpressor()
	result := x.Express(Input{Genome: simpleGenome(), Environment: Environment{Balance: 200}, AgeDays: 40})
	assert.Greater(t, result.TotalMetabolicCost, defaultBaseRate)
}

func TestRegulatoryEdgeActivationIncreasesTargetExpression(t *testing.T) {
	g := simpleGenome()
	require.NoError(t, g.AddEdge(genome.RegulatoryEdge{
		SourceGeneID: "g1", TargetGeneID: "g2", Relationship: genome.RelationActivation, Strength: 0.8,
	}))
	// Un-silence g2 for this test so the edge's effect is observable.
	g.Chromosomes[0].Genes[1].ExpressionState = genome.StateActive

	x := NewExpressor()
	withEdge := x.Express(Input{Genome: g, Environment: Environment{Balance: 200}, AgeDays: 40})

	plain := simpleGenome()
	plain.Chromosomes[0].Genes[1].ExpressionState = genome.StateActive
	withoutEdge := x.Express(Input{Genome: plain, Environment: Environment{Balance: 200}, AgeDays: 40})

	assert.Greater(t, withEdge.Genes["g2"].ExpressedValue, withoutEdge.Genes["g2"].ExpressedValue)
}

func TestEpigeneticSilenceMarkZeroesMultiplier(t *testing.T) {
	g := simpleGenome()
	g.Chromosomes[0].Genes[1].ExpressionState = genome.StateActive
	require.NoError(t, g.SetMark(genome.EpigeneticMark{TargetGeneID: "g2", Modification: genome.ModSilence, Strength: 1.0, Heritability: 0.2, Decay: 0.1, GenerationCreated: 0}))

	x := NewExpressor()
	result := x.Express(Input{Genome: g, Environment: Environment{Balance: 200}, AgeDays: 40})
	assert.InDelta(t, 0.0, result.Genes["g2"].EpigeneticMultiplier, 1e-9)
}

func TestCriticalWindowBoostsLearningDomainEarlyInLife(t *testing.T) {
	g := &genome.DynamicGenome{Chromosomes: []genome.Chromosome{
		{ID: "c1", Genes: []genome.Gene{
			{ID: "learn", Domain: genome.DomainLearning, Value: 0.5, Weight: 1.0, Plasticity: 1.0, ExpressionState: genome.StateActive},
		}},
	}}
	x := NewExpressor()
	young := x.Express(Input{Genome: g, Environment: Environment{}, AgeDays: 3})
	old := x.Express(Input{Genome: g, Environment: Environment{}, AgeDays: 60})
	assert.Greater(t, young.Genes["learn"].BaseValue, old.Genes["learn"].BaseValue)
}
