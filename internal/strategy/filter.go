package strategy

import (
	"sort"

	"github.com/axobase/egde/internal/expression"
	"github.com/axobase/egde/internal/genome"
)

// geneTolerance is the 20% slack the filter's gene-requirement step
// applies: a gene at 80% of its required threshold still passes.
const geneTolerance = 0.8

// Snapshot is the subset of an agent's expressed genome the filter and
// scorer need, pre-resolved from gene id to gene name so the catalogue
// can reference traits by name.
type Snapshot struct {
	ByName    map[string]float64
	DomainMax map[genome.Domain]float64
}

// BuildSnapshot resolves an expression.Result against its source genome
// into a Snapshot.
func BuildSnapshot(g *genome.DynamicGenome, result expression.Result) Snapshot {
	snap := Snapshot{
		ByName:    make(map[string]float64, len(result.Genes)),
		DomainMax: make(map[genome.Domain]float64),
	}
	for _, eg := range result.Genes {
		snap.ByName[eg.Name] = eg.ExpressedValue
		if eg.ExpressedValue > snap.DomainMax[eg.Domain] {
			snap.DomainMax[eg.Domain] = eg.ExpressedValue
		}
	}
	return snap
}

// Env carries the non-genomic inputs the filter and scorer need: agent
// mode, resource runway, tool availability, and a few rolling counters.
type Env struct {
	AvailableTools      map[string]bool
	Balance             float64
	DailyMetabolicCost  float64 // total metabolic cost scaled to a day's ticks
	Mode                string  // "thriving" | "stable" | "low" | "emergency" | "critical" | "hibernation"
	RecentDeceptions    int
	DaysThriving        int
	MarketRisk          float64 // 0..1 external signal; 0 if unavailable
	ExperienceBonus     map[string]float64
}

// RunwayDays is how many days Balance covers at DailyMetabolicCost.
func (e Env) RunwayDays() float64 {
	if e.DailyMetabolicCost <= 0 {
		return 1e9
	}
	return e.Balance / e.DailyMetabolicCost
}

// Candidate is one strategy that survived the filter, carrying its
// computed scores.
type Candidate struct {
	Strategy         Strategy
	GenomeMatch      float64
	EstimatedSuccess float64
	Priority         float64
}

// Tolerances bundles the three trait-derived tolerance scores the
// filter's risk/complexity/social steps compare strategies against.
type Tolerances struct {
	Risk       float64
	Complexity float64
	Social     float64
}

// DeriveTolerances computes risk, complexity, and social-orientation
// tolerance from expressed traits (spec.md §4.8). Weights are a design
// decision recorded in DESIGN.md: each tolerance is a weighted blend of
// two or three directly relevant traits plus that trait's wider domain
// ceiling, so a single outlier gene in the right domain can still open
// up a strategy even if the named trait itself is middling.
func DeriveTolerances(snap Snapshot) Tolerances {
	riskAppetite := snap.ByName["risk-appetite"]
	uncertainty := snap.ByName["uncertainty-tolerance"]
	acuteStress := snap.ByName["acute-stress-response"]
	riskDomainMax := snap.DomainMax[genome.DomainRiskAssessment]

	workingMemory := snap.ByName["working-memory"]
	metacognition := snap.ByName["metacognition"]
	learningRate := snap.ByName["learning-rate"]

	cooperation := snap.ByName["agent-cooperation"]
	trust := snap.ByName["trust-default"]
	coopDomainMax := snap.DomainMax[genome.DomainCooperation]

	return Tolerances{
		Risk:       0.4*riskAppetite + 0.3*uncertainty + 0.2*(1-acuteStress) + 0.1*riskDomainMax,
		Complexity: 0.5*workingMemory + 0.3*metacognition + 0.2*learningRate,
		Social:     0.4*cooperation + 0.4*trust + 0.2*coopDomainMax,
	}
}

// Filter runs the seven-step filter pipeline over the built-in
// Catalogue and returns surviving strategies as scored candidates,
// sorted by descending priority.
func Filter(snap Snapshot, env Env) []Candidate {
	return FilterWithCatalogue(Catalogue, snap, env)
}

// FilterWithCatalogue is Filter over an explicit strategy set, so a
// deployment can substitute an operator-supplied catalogue (see
// LoadCatalogueOverride) without touching the built-in one.
func FilterWithCatalogue(catalogue []Strategy, snap Snapshot, env Env) []Candidate {
	tol := DeriveTolerances(snap)
	emergency := env.Mode == "emergency" || env.Mode == "critical"
	runway := env.RunwayDays()

	var candidates []Candidate
	for _, s := range catalogue {
		if !meetsGeneRequirements(s, snap) {
			continue
		}
		if !hasRequiredTools(s, env) {
			continue
		}
		if s.Risk > 1.5*tol.Risk {
			continue
		}
		if s.Complexity > tol.Complexity {
			continue
		}
		if !passesResourceCheck(s, env, runway) {
			continue
		}
		if emergency && !(s.Category == CategorySurvival || (s.Category == CategoryDefense && s.Risk < 0.2)) {
			continue
		}
		if s.Category == CategorySocial && tol.Social < 0.3 {
			continue
		}

		match := genomeMatch(s, snap)
		success := estimatedSuccess(s, match, env)
		priority := priorityScore(s, match, success, env)
		candidates = append(candidates, Candidate{
			Strategy:         s,
			GenomeMatch:      match,
			EstimatedSuccess: success,
			Priority:         priority,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})
	return candidates
}

func meetsGeneRequirements(s Strategy, snap Snapshot) bool {
	for gene, min := range s.RequiredGenes {
		if snap.ByName[gene] < min*geneTolerance {
			return false
		}
	}
	return true
}

func hasRequiredTools(s Strategy, env Env) bool {
	for _, tool := range s.RequiredTools {
		if !env.AvailableTools[tool] {
			return false
		}
	}
	return true
}

// passesResourceCheck refuses strategies whose cost would eat into the
// emergency buffer, and refuses medium/long-horizon commitments when the
// runway itself is already short.
func passesResourceCheck(s Strategy, env Env, runway float64) bool {
	if s.Category == CategorySurvival {
		return true
	}
	if s.TypicalPayoff < 0 && env.Balance+s.TypicalPayoff < 7*env.DailyMetabolicCost {
		return false
	}
	switch s.Horizon {
	case HorizonLong:
		if runway < 14 {
			return false
		}
	case HorizonMedium:
		if runway < 7 {
			return false
		}
	}
	return true
}

// genomeMatch averages, across a strategy's required genes, how far
// each expressed value sits above its requirement (capped at 1.0),
// weighted by the requirement's own threshold so demanding traits
// dominate the score.
func genomeMatch(s Strategy, snap Snapshot) float64 {
	if len(s.RequiredGenes) == 0 {
		return 1.0
	}
	var weightedSum, weightTotal float64
	for gene, min := range s.RequiredGenes {
		ratio := 1.0
		if min > 0 {
			ratio = snap.ByName[gene] / min
			if ratio > 1 {
				ratio = 1
			}
		}
		weightedSum += ratio * min
		weightTotal += min
	}
	if weightTotal == 0 {
		return 1.0
	}
	return weightedSum / weightTotal
}

// estimatedSuccess combines genome fit, market risk, and an optional
// track-record bonus into a success probability in [0.1, 0.95].
func estimatedSuccess(s Strategy, match float64, env Env) float64 {
	riskDrag := 1 - env.MarketRisk*0.3*s.Risk
	bonus := env.ExperienceBonus[s.ID]
	v := 0.6*match*riskDrag + bonus
	return clamp(v, 0.1, 0.95)
}

// priorityScore blends genome match, estimated success, category
// urgency, normalized payoff, and a risk discount. The exact weights are
// a design decision (spec.md names the ingredients, not coefficients);
// recorded in DESIGN.md.
func priorityScore(s Strategy, match, success float64, env Env) float64 {
	urgency := categoryUrgency(s.Category, env)
	normalizedPayoff := clamp((s.TypicalPayoff+2)/4, 0, 1)
	riskDiscount := s.Risk * 0.2

	return 0.25*match + 0.30*success + 0.25*urgency + 0.15*normalizedPayoff - riskDiscount
}

func categoryUrgency(c Category, env Env) float64 {
	switch c {
	case CategorySurvival:
		runway := env.RunwayDays()
		return clamp(1/(1+runway), 0, 1)
	case CategoryDefense:
		if env.RecentDeceptions > 0 {
			return clamp(float64(env.RecentDeceptions)/5.0, 0, 1)
		}
		return 0
	case CategoryReproduction:
		if env.DaysThriving > 7 {
			return clamp(float64(env.DaysThriving-7)/30.0, 0, 1)
		}
		return 0
	default:
		return 0.5
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
