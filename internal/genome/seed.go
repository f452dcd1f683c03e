package genome

// seedGene is a declarative template for one seed gene. It is expanded
// into a Gene by newSeedGenome; IDs are assigned deterministically
// ("<chromosome-slug>.<index>") so genesis hashes are stable across
// calls and across processes.
type seedGene struct {
	name          string
	domain        Domain
	value         float64
	weight        float64
	dominance     float64
	plasticity    float64
	essentiality  float64
	metabolicCost float64
	state         ExpressionState
	condition     string
}

type seedChromosome struct {
	slug        string
	name        string
	isEssential bool
	genes       []seedGene
}

// seedPool is the fixed 8-chromosome / 63-gene genesis library (spec
// §4.2). These numbers are part of the contract: a reimplementation must
// reproduce this seed exactly so that genesis genome hashes are
// portable across implementations.
var seedPool = []seedChromosome{
	{
		slug: "metabolism", name: "Metabolism & Survival", isEssential: true,
		genes: []seedGene{
			{"energy-efficiency", DomainMetabolism, 0.55, 1.0, 0.6, 0.3, 0.9, 0.004, StateActive, ""},
			{"circadian-rhythm", DomainMetabolism, 0.5, 0.8, 0.5, 0.2, 0.6, 0.002, StateActive, ""},
			{"metabolic-rate", DomainMetabolism, 0.45, 1.1, 0.5, 0.3, 0.85, 0.005, StateActive, ""},
			{"resource-hoarding", DomainResourceManagement, 0.4, 0.9, 0.4, 0.4, 0.5, 0.002, StateActive, ""},
			{"resource-allocation", DomainResourceManagement, 0.5, 1.0, 0.5, 0.4, 0.6, 0.003, StateActive, ""},
			{"dormancy-threshold", DomainDormancy, 0.3, 0.7, 0.3, 0.5, 0.4, 0.001, StateConditional, "balance < 2"},
			{"migration-readiness", DomainMigration, 0.2, 0.6, 0.3, 0.5, 0.2, 0.001, StateConditional, "mode = emergency"},
			{"survival-instinct", DomainMetabolism, 0.6, 1.2, 0.7, 0.2, 0.95, 0.003, StateActive, ""},
		},
	},
	{
		slug: "perception", name: "Perception & Cognition", isEssential: true,
		genes: []seedGene{
			{"sensory-acuity", DomainPerception, 0.5, 1.0, 0.5, 0.4, 0.8, 0.003, StateActive, ""},
			{"pattern-recognition", DomainCognition, 0.5, 1.1, 0.5, 0.4, 0.7, 0.004, StateActive, ""},
			{"working-memory", DomainCognition, 0.45, 1.0, 0.5, 0.3, 0.75, 0.004, StateActive, ""},
			{"metacognition", DomainCognition, 0.4, 0.9, 0.4, 0.4, 0.6, 0.003, StateActive, ""},
			{"episodic-memory", DomainMemory, 0.5, 0.9, 0.5, 0.3, 0.6, 0.003, StateActive, ""},
			{"semantic-memory", DomainMemory, 0.5, 0.9, 0.5, 0.3, 0.6, 0.002, StateActive, ""},
			{"self-model", DomainSelfModel, 0.4, 0.8, 0.4, 0.4, 0.5, 0.002, StateActive, ""},
			{"planning-horizon", DomainPlanning, 0.45, 1.0, 0.5, 0.3, 0.65, 0.003, StateActive, ""},
			{"learning-rate", DomainLearning, 0.5, 1.1, 0.5, 0.6, 0.7, 0.003, StateActive, ""},
			{"novelty-seeking", DomainNoveltySeeking, 0.35, 0.8, 0.3, 0.5, 0.3, 0.002, StateActive, ""},
		},
	},
	{
		slug: "economic", name: "Economic Strategy", isEssential: false,
		genes: []seedGene{
			{"risk-appetite", DomainRiskAssessment, 0.4, 1.0, 0.4, 0.4, 0.5, 0.002, StateActive, ""},
			{"uncertainty-tolerance", DomainRiskAssessment, 0.4, 0.9, 0.4, 0.4, 0.4, 0.002, StateActive, ""},
			{"acute-stress-response", DomainRiskAssessment, 0.45, 1.0, 0.5, 0.3, 0.5, 0.002, StateActive, ""},
			{"trading-intuition", DomainTrading, 0.3, 0.8, 0.3, 0.5, 0.3, 0.002, StateActive, ""},
			{"income-diversification", DomainIncomeStrategy, 0.4, 0.9, 0.4, 0.4, 0.4, 0.002, StateActive, ""},
			{"opportunity-scanning", DomainIncomeStrategy, 0.45, 1.0, 0.4, 0.5, 0.45, 0.003, StateActive, ""},
			{"strategy-persistence", DomainStrategyEval, 0.5, 0.9, 0.5, 0.3, 0.5, 0.002, StateActive, ""},
			{"strategy-flexibility", DomainStrategyEval, 0.4, 0.9, 0.4, 0.5, 0.4, 0.002, StateActive, ""},
		},
	},
	{
		slug: "internet", name: "Internet Capabilities", isEssential: false,
		genes: []seedGene{
			{"chain-interaction", DomainOnChainOp, 0.4, 1.0, 0.4, 0.4, 0.4, 0.003, StateActive, ""},
			{"web-browsing", DomainWebNavigation, 0.45, 1.0, 0.4, 0.4, 0.35, 0.003, StateActive, ""},
			{"content-generation", DomainContentCreation, 0.4, 0.9, 0.4, 0.5, 0.3, 0.003, StateActive, ""},
			{"data-mining", DomainDataAnalysis, 0.45, 1.0, 0.4, 0.4, 0.4, 0.003, StateActive, ""},
			{"statistical-reasoning", DomainDataAnalysis, 0.4, 0.9, 0.4, 0.4, 0.4, 0.002, StateActive, ""},
			{"api-integration", DomainAPIUtilization, 0.45, 1.0, 0.4, 0.4, 0.4, 0.003, StateActive, ""},
			{"tool-discovery", DomainAPIUtilization, 0.35, 0.8, 0.3, 0.5, 0.3, 0.002, StateActive, ""},
			{"scraping-efficiency", DomainWebNavigation, 0.35, 0.8, 0.3, 0.4, 0.3, 0.002, StateActive, ""},
		},
	},
	{
		slug: "social", name: "Social & Reproduction", isEssential: false,
		genes: []seedGene{
			{"agent-cooperation", DomainCooperation, 0.5, 1.0, 0.5, 0.4, 0.5, 0.002, StateActive, ""},
			{"competitive-drive", DomainCompetition, 0.4, 0.9, 0.4, 0.4, 0.4, 0.002, StateActive, ""},
			{"social-awareness", DomainCommunication, 0.45, 0.9, 0.4, 0.4, 0.4, 0.002, StateActive, ""},
			{"trust-default", DomainTrustModel, 0.45, 0.9, 0.4, 0.4, 0.4, 0.002, StateActive, ""},
			{"mate-selection-acuity", DomainMateSelection, 0.35, 0.8, 0.3, 0.5, 0.3, 0.002, StateActive, ""},
			{"offspring-investment", DomainParentalInvest, 0.4, 0.9, 0.4, 0.3, 0.4, 0.002, StateActive, ""},
			{"signal-honesty", DomainCommunication, 0.5, 0.8, 0.5, 0.3, 0.4, 0.001, StateActive, ""},
			{"social-media-presence", DomainSocialMedia, 0.3, 0.7, 0.3, 0.5, 0.2, 0.001, StateActive, ""},
			{"kinship-sensitivity", DomainMateSelection, 0.4, 0.8, 0.4, 0.3, 0.4, 0.001, StateActive, ""},
		},
	},
	{
		slug: "human", name: "Human Interface", isEssential: false,
		genes: []seedGene{
			{"human-hiring-judgement", DomainHumanHiring, 0.35, 0.8, 0.3, 0.4, 0.3, 0.002, StateActive, ""},
			{"human-communication-style", DomainHumanHiring, 0.4, 0.8, 0.4, 0.4, 0.3, 0.002, StateActive, ""},
			{"human-evaluation-rigor", DomainHumanHiring, 0.4, 0.8, 0.4, 0.3, 0.35, 0.002, StateActive, ""},
			{"negotiation-skill", DomainHumanHiring, 0.35, 0.8, 0.3, 0.4, 0.3, 0.002, StateActive, ""},
			{"delegation-willingness", DomainHumanHiring, 0.3, 0.7, 0.3, 0.4, 0.25, 0.001, StateActive, ""},
			{"oversight-tolerance", DomainHumanHiring, 0.4, 0.7, 0.4, 0.3, 0.3, 0.001, StateActive, ""},
		},
	},
	{
		slug: "stress", name: "Stress Response", isEssential: true,
		genes: []seedGene{
			{"stress-sensitivity", DomainStressResponse, 0.5, 1.0, 0.5, 0.4, 0.7, 0.003, StateActive, ""},
			{"stress-recovery", DomainStressResponse, 0.45, 0.9, 0.45, 0.4, 0.6, 0.003, StateActive, ""},
			{"adaptation-speed", DomainAdaptation, 0.45, 1.0, 0.4, 0.6, 0.6, 0.003, StateActive, ""},
			{"resilience", DomainStressResponse, 0.5, 1.0, 0.5, 0.3, 0.7, 0.003, StateActive, ""},
			{"repair-capacity", DomainStressResponse, 0.4, 0.9, 0.4, 0.3, 0.6, 0.003, StateActive, ""},
			{"hibernation-readiness", DomainDormancy, 0.3, 0.7, 0.3, 0.5, 0.4, 0.001, StateConditional, "mode = hibernation"},
			{"panic-threshold", DomainStressResponse, 0.4, 0.9, 0.4, 0.3, 0.55, 0.002, StateActive, ""},
		},
	},
	{
		slug: "regulatory", name: "Regulatory Control", isEssential: true,
		genes: []seedGene{
			{"expression-sensitivity", DomainRegulatory, 0.5, 1.0, 0.5, 0.3, 0.7, 0.002, StateActive, ""},
			{"regulatory-plasticity", DomainRegulatory, 0.4, 0.9, 0.4, 0.6, 0.6, 0.002, StateActive, ""},
			{"feedback-gain", DomainRegulatory, 0.45, 0.9, 0.45, 0.4, 0.6, 0.002, StateActive, ""},
			{"cycle-speed", DomainRegulatory, 0.5, 0.8, 0.5, 0.3, 0.65, 0.001, StateActive, ""},
			{"homeostasis-strength", DomainRegulatory, 0.5, 1.0, 0.5, 0.3, 0.7, 0.002, StateActive, ""},
			{"epigenetic-responsiveness", DomainRegulatory, 0.4, 0.9, 0.4, 0.5, 0.55, 0.002, StateActive, ""},
			{"network-stability", DomainRegulatory, 0.5, 1.0, 0.5, 0.3, 0.65, 0.002, StateActive, ""},
		},
	},
}

// seedEdges encodes the seed regulatory network by source/target gene
// names (resolved to ids at genesis-build time): stress→{stress-response
// activation, cognition inhibition}; social-context→{cooperation
// activation, competition inhibition}; circadian→metabolism activation.
var seedEdges = []struct {
	source, target string
	relationship   RegulatoryRelationship
	strength       float64
}{
	{"stress-sensitivity", "stress-recovery", RelationActivation, 0.6},
	{"stress-sensitivity", "pattern-recognition", RelationInhibition, 0.4},
	{"social-awareness", "agent-cooperation", RelationActivation, 0.5},
	{"social-awareness", "competitive-drive", RelationInhibition, 0.3},
	{"circadian-rhythm", "metabolic-rate", RelationActivation, 0.4},
}

func geneID(slug, name string) string {
	return slug + "." + name
}

// CreateGenesisGenome deterministically builds the genesis genome for a
// new lineage from the fixed seed pool (spec §4.2). It is pure: calling
// it twice with the same lineageID yields genomes with identical hashes.
func CreateGenesisGenome(lineageID string) *DynamicGenome {
	g := &DynamicGenome{
		Metadata: GenomeMetadata{
			Generation: 0,
			LineageID:  lineageID,
		},
	}

	for _, sc := range seedPool {
		chrom := Chromosome{
			ID:          sc.slug,
			Name:        sc.name,
			IsEssential: sc.isEssential,
		}
		for _, sg := range sc.genes {
			gene := Gene{
				ID:                  geneID(sc.slug, sg.name),
				Name:                sg.name,
				Domain:              sg.domain,
				Value:               sg.value,
				Weight:              sg.weight,
				Dominance:           sg.dominance,
				Plasticity:          sg.plasticity,
				Essentiality:        sg.essentiality,
				MetabolicCost:       sg.metabolicCost,
				Origin:              OriginPrimordial,
				Age:                 0,
				ExpressionState:     sg.state,
				ActivationCondition: sg.condition,
			}
			gene.Clamp()
			chrom.Genes = append(chrom.Genes, gene)
		}
		g.Chromosomes = append(g.Chromosomes, chrom)
	}
	g.Metadata.TotalGenes = len(g.AllGenes())

	resolve := func(name string) (string, bool) {
		for _, gene := range g.AllGenes() {
			if gene.Name == name {
				return gene.ID, true
			}
		}
		return "", false
	}
	for _, se := range seedEdges {
		srcID, ok1 := resolve(se.source)
		tgtID, ok2 := resolve(se.target)
		if !ok1 || !ok2 {
			continue
		}
		_ = g.AddEdge(RegulatoryEdge{
			SourceGeneID: srcID,
			TargetGeneID: tgtID,
			Relationship: se.relationship,
			Strength:     se.strength,
			Logic:        LogicMultiplicative,
		})
	}

	g.RecomputeHash()
	return g
}
