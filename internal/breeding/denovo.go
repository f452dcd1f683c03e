package breeding

import (
	"github.com/axobase/egde/internal/genome"
	"github.com/axobase/egde/internal/ports"
)

// domainPool is the closed enumeration de-novo birth draws from, in
// declaration order so a seeded rng yields a reproducible pick via
// index = floor(NextFloat() * len(domainPool)).
var domainPool = []genome.Domain{
	genome.DomainMetabolism, genome.DomainPerception, genome.DomainCognition,
	genome.DomainMemory, genome.DomainResourceManagement, genome.DomainRiskAssessment,
	genome.DomainTrading, genome.DomainIncomeStrategy, genome.DomainOnChainOp,
	genome.DomainWebNavigation, genome.DomainContentCreation, genome.DomainDataAnalysis,
	genome.DomainAPIUtilization, genome.DomainSocialMedia, genome.DomainCooperation,
	genome.DomainCompetition, genome.DomainCommunication, genome.DomainTrustModel,
	genome.DomainMateSelection, genome.DomainParentalInvest, genome.DomainHumanHiring,
	genome.DomainStressResponse, genome.DomainAdaptation, genome.DomainDormancy,
	genome.DomainMigration, genome.DomainSelfModel, genome.DomainStrategyEval,
	genome.DomainLearning, genome.DomainPlanning, genome.DomainNoveltySeeking,
}

const accessoryChromosomeID = "accessory"

// deNovoBirth implements stage 5: with rates.DeNovo probability,
// synthesize one brand-new gene with no parental origin and place it in
// a random non-essential chromosome, creating an "Accessory" chromosome
// if none exists.
func deNovoBirth(g *genome.DynamicGenome, rates Rates, rng ports.Rng, log *[]MutationRecord) {
	if rng.NextFloat() >= rates.DeNovo {
		return
	}

	domain := domainPool[int(rng.NextFloat()*float64(len(domainPool)))%len(domainPool)]
	gene := genome.Gene{
		ID:                  newGeneID(),
		Name:                "denovo-" + string(domain),
		Domain:              domain,
		Value:               rng.NextFloat(),
		Weight:              0.1 + rng.NextFloat()*0.2,
		Dominance:           rng.NextFloat() * 0.3,
		Plasticity:          0.5 + rng.NextFloat()*0.5,
		Essentiality:        rng.NextFloat() * 0.2,
		MetabolicCost:       rng.NextFloat() * 0.002,
		Origin:              genome.OriginDeNovo,
		ExpressionState:     genome.StateConditional,
		ActivationCondition: "environment_trigger_unknown",
	}
	gene.Clamp()

	target := randomNonEssentialChromosome(g, rng)
	if target == "" {
		g.Chromosomes = append(g.Chromosomes, genome.Chromosome{ID: accessoryChromosomeID, Name: "Accessory", IsEssential: false})
		target = accessoryChromosomeID
	}
	_ = g.AddGene(target, gene)
	*log = append(*log, MutationRecord{Kind: MutationDeNovo, GeneID: gene.ID, Detail: "domain=" + string(domain)})
}

func randomNonEssentialChromosome(g *genome.DynamicGenome, rng ports.Rng) string {
	var ids []string
	for _, c := range g.Chromosomes {
		if !c.IsEssential {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return ""
	}
	return ids[int(rng.NextFloat()*float64(len(ids)))%len(ids)]
}

// regulatoryRecombination implements stage 6. It starts from the union
// of the two parents' edge sets (filtered to gene ids the child
// actually retained), resolving exact-duplicate edges by coin flip,
// then rolls independent add/delete/modify operations.
func regulatoryRecombination(child, parentA, parentB *genome.DynamicGenome, rates Rates, rng ports.Rng, log *[]MutationRecord) {
	childIDs := child.GeneIDSet()

	byKey := make(map[edgeKey][]genome.RegulatoryEdge)
	for _, e := range parentA.Edges {
		k := edgeKey{e.SourceGeneID, e.TargetGeneID}
		byKey[k] = append(byKey[k], e)
	}
	for _, e := range parentB.Edges {
		k := edgeKey{e.SourceGeneID, e.TargetGeneID}
		byKey[k] = append(byKey[k], e)
	}

	keys := make([]edgeKey, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sortKeys(keys)

	for _, k := range keys {
		if _, ok := childIDs[k.source]; !ok {
			continue
		}
		if _, ok := childIDs[k.target]; !ok {
			continue
		}
		candidates := byKey[k]
		chosen := candidates[0]
		if len(candidates) > 1 && rng.NextFloat() < 0.5 {
			chosen = candidates[1]
		}
		child.Edges = append(child.Edges, chosen)
	}

	geneIDs := sortedGeneIDs(childIDs)

	if len(geneIDs) >= 2 && rng.NextFloat() < rates.RegulatoryAdd {
		src := geneIDs[int(rng.NextFloat()*float64(len(geneIDs)))%len(geneIDs)]
		tgt := geneIDs[int(rng.NextFloat()*float64(len(geneIDs)))%len(geneIDs)]
		relationship := genome.RelationActivation
		if rng.NextFloat() < 0.5 {
			relationship = genome.RelationInhibition
		}
		edge := genome.RegulatoryEdge{SourceGeneID: src, TargetGeneID: tgt, Relationship: relationship, Strength: rng.NextFloat()}
		_ = child.AddEdge(edge)
		*log = append(*log, MutationRecord{Kind: MutationRegulatory, Detail: "add " + src + "->" + tgt})
	}

	if len(child.Edges) > 0 && rng.NextFloat() < rates.RegulatoryDelete {
		idx := int(rng.NextFloat()*float64(len(child.Edges))) % len(child.Edges)
		removed := child.Edges[idx]
		child.Edges = append(child.Edges[:idx], child.Edges[idx+1:]...)
		*log = append(*log, MutationRecord{Kind: MutationRegulatory, Detail: "delete " + removed.SourceGeneID + "->" + removed.TargetGeneID})
	}

	for i := range child.Edges {
		if rng.NextFloat() < rates.RegulatoryModify {
			old := child.Edges[i].Strength
			child.Edges[i].Strength = clampf(old+gaussian(rng, 0, 0.1), 0, 1)
			*log = append(*log, MutationRecord{Kind: MutationRegulatory, Detail: "modify " + child.Edges[i].SourceGeneID + "->" + child.Edges[i].TargetGeneID})
		}
	}
}

type edgeKey struct{ source, target string }

func sortKeys(keys []edgeKey) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && less(keys[j], keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}

func less(a, b edgeKey) bool {
	if a.source != b.source {
		return a.source < b.source
	}
	return a.target < b.target
}
