// Package strategy implements the EGDE strategy catalogue and filter:
// a fixed set of action-families gated by expressed gene thresholds,
// tool availability, risk/complexity tolerance, resource runway, and
// emergency/social overrides, ranked by a priority score.
package strategy

// Category is one of the six strategy groupings.
type Category string

const (
	CategorySurvival    Category = "survival"
	CategoryIncome      Category = "income"
	CategorySocial      Category = "social"
	CategoryReproduction Category = "reproduction"
	CategoryLearning    Category = "learning"
	CategoryDefense     Category = "defense"
)

// Horizon is the time horizon a strategy's payoff is expected over.
type Horizon string

const (
	HorizonImmediate Horizon = "immediate"
	HorizonShort     Horizon = "short"
	HorizonMedium    Horizon = "medium"
	HorizonLong      Horizon = "long"
)

// Strategy is one named family of actions with its gating thresholds.
// RequiredGenes keys by gene name (e.g. "risk-appetite"), not id, since
// the catalogue is genome-pool-independent.
type Strategy struct {
	ID            string
	Name          string
	Category      Category
	RequiredGenes map[string]float64
	RequiredTools []string
	Risk          float64
	Complexity    float64
	TypicalPayoff float64 // stable units; may be negative (an investment)
	Horizon       Horizon
	ActionType    string
}

// Catalogue is the fixed ~22-strategy set (spec.md §4.8). It is the
// single source of truth the filter reads from; spec.md §9 flags a
// second, divergent list in the original source and resolves the
// catalogue as authoritative.
var Catalogue = []Strategy{
	// Survival
	{ID: "enter-dormancy", Name: "Enter Dormancy", Category: CategorySurvival,
		RequiredGenes: map[string]float64{"dormancy-threshold": 0.1}, Risk: 0.05, Complexity: 0.1,
		TypicalPayoff: 0, Horizon: HorizonImmediate, ActionType: "enter-dormancy"},
	{ID: "exit-dormancy", Name: "Exit Dormancy", Category: CategorySurvival,
		RequiredGenes: map[string]float64{"hibernation-readiness": 0.1}, Risk: 0.1, Complexity: 0.1,
		TypicalPayoff: 0, Horizon: HorizonImmediate, ActionType: "exit-dormancy"},
	{ID: "conserve-resources", Name: "Conserve Resources", Category: CategorySurvival,
		RequiredGenes: map[string]float64{"energy-efficiency": 0.3, "resource-allocation": 0.2}, Risk: 0.05, Complexity: 0.2,
		TypicalPayoff: -0.001, Horizon: HorizonImmediate, ActionType: "store-memory"},
	{ID: "migrate-to-safety", Name: "Migrate To Safety", Category: CategorySurvival,
		RequiredGenes: map[string]float64{"migration-readiness": 0.2}, RequiredTools: []string{"relocation"},
		Risk: 0.3, Complexity: 0.4, TypicalPayoff: -0.5, Horizon: HorizonShort, ActionType: "migrate"},

	// Income
	{ID: "local-compute-gig", Name: "Local Compute Gig", Category: CategoryIncome,
		RequiredGenes: map[string]float64{"chain-interaction": 0.2, "api-integration": 0.2}, RequiredTools: []string{"llm-local"},
		Risk: 0.15, Complexity: 0.3, TypicalPayoff: 0.5, Horizon: HorizonShort, ActionType: "think-local"},
	{ID: "premium-consulting", Name: "Premium Consulting", Category: CategoryIncome,
		RequiredGenes: map[string]float64{"human-communication-style": 0.3}, RequiredTools: []string{"llm-premium"},
		Risk: 0.2, Complexity: 0.5, TypicalPayoff: 2.0, Horizon: HorizonShort, ActionType: "think-premium"},
	{ID: "token-swap-arbitrage", Name: "Token Swap Arbitrage", Category: CategoryIncome,
		RequiredGenes: map[string]float64{"trading-intuition": 0.3, "risk-appetite": 0.3}, RequiredTools: []string{"dex"},
		Risk: 0.6, Complexity: 0.6, TypicalPayoff: 1.5, Horizon: HorizonImmediate, ActionType: "swap"},
	{ID: "stake-for-yield", Name: "Stake For Yield", Category: CategoryIncome,
		RequiredGenes: map[string]float64{"income-diversification": 0.2}, RequiredTools: []string{"staking"},
		Risk: 0.25, Complexity: 0.3, TypicalPayoff: 0.8, Horizon: HorizonMedium, ActionType: "stake"},
	{ID: "provide-liquidity-position", Name: "Provide Liquidity Position", Category: CategoryIncome,
		RequiredGenes: map[string]float64{"opportunity-scanning": 0.3}, RequiredTools: []string{"dex"},
		Risk: 0.5, Complexity: 0.6, TypicalPayoff: 1.2, Horizon: HorizonMedium, ActionType: "provide-liquidity"},
	{ID: "claim-staked-rewards", Name: "Claim Staked Rewards", Category: CategoryIncome,
		RequiredGenes: map[string]float64{"resource-allocation": 0.2}, RequiredTools: []string{"staking"},
		Risk: 0.05, Complexity: 0.1, TypicalPayoff: 0.3, Horizon: HorizonImmediate, ActionType: "claim-rewards"},

	// Social
	{ID: "broadcast-status", Name: "Broadcast Status", Category: CategorySocial,
		RequiredGenes: map[string]float64{"social-media-presence": 0.2}, RequiredTools: []string{"messaging"},
		Risk: 0.05, Complexity: 0.1, TypicalPayoff: 0, Horizon: HorizonImmediate, ActionType: "broadcast"},
	{ID: "send-direct-message", Name: "Send Direct Message", Category: CategorySocial,
		RequiredGenes: map[string]float64{"social-awareness": 0.2}, RequiredTools: []string{"messaging"},
		Risk: 0.05, Complexity: 0.1, TypicalPayoff: 0, Horizon: HorizonImmediate, ActionType: "send-message"},
	{ID: "hire-human-assistant", Name: "Hire Human Assistant", Category: CategorySocial,
		RequiredGenes: map[string]float64{"human-hiring-judgement": 0.3, "delegation-willingness": 0.2}, RequiredTools: []string{"human-marketplace"},
		Risk: 0.3, Complexity: 0.5, TypicalPayoff: -1.0, Horizon: HorizonMedium, ActionType: "hire-human"},
	{ID: "evaluate-human-candidate", Name: "Evaluate Human Candidate", Category: CategorySocial,
		RequiredGenes: map[string]float64{"human-evaluation-rigor": 0.3}, RequiredTools: []string{"human-marketplace"},
		Risk: 0.1, Complexity: 0.4, TypicalPayoff: 0, Horizon: HorizonShort, ActionType: "evaluate-human"},

	// Reproduction
	{ID: "propose-mating-bond", Name: "Propose Mating Bond", Category: CategoryReproduction,
		RequiredGenes: map[string]float64{"mate-selection-acuity": 0.3}, RequiredTools: []string{"messaging"},
		Risk: 0.2, Complexity: 0.4, TypicalPayoff: -0.5, Horizon: HorizonMedium, ActionType: "propose-mating"},
	{ID: "accept-mating-proposal", Name: "Accept Mating Proposal", Category: CategoryReproduction,
		RequiredGenes: map[string]float64{"kinship-sensitivity": 0.2}, RequiredTools: []string{"messaging"},
		Risk: 0.2, Complexity: 0.3, TypicalPayoff: -0.5, Horizon: HorizonMedium, ActionType: "accept-mating"},
	{ID: "invest-in-offspring", Name: "Invest In Offspring", Category: CategoryReproduction,
		RequiredGenes: map[string]float64{"offspring-investment": 0.3}, Risk: 0.15, Complexity: 0.3,
		TypicalPayoff: -1.0, Horizon: HorizonLong, ActionType: "transfer"},

	// Learning
	{ID: "store-memory-log", Name: "Store Memory Log", Category: CategoryLearning,
		RequiredGenes: map[string]float64{"episodic-memory": 0.2}, Risk: 0.02, Complexity: 0.1,
		TypicalPayoff: 0, Horizon: HorizonImmediate, ActionType: "store-memory"},
	{ID: "inscribe-permanent-record", Name: "Inscribe Permanent Record", Category: CategoryLearning,
		RequiredGenes: map[string]float64{"semantic-memory": 0.2}, RequiredTools: []string{"permanent-storage"},
		Risk: 0.05, Complexity: 0.2, TypicalPayoff: -0.05, Horizon: HorizonImmediate, ActionType: "inscribe"},
	{ID: "fetch-external-data", Name: "Fetch External Data", Category: CategoryLearning,
		RequiredGenes: map[string]float64{"data-mining": 0.2}, RequiredTools: []string{"web"},
		Risk: 0.1, Complexity: 0.3, TypicalPayoff: 0, Horizon: HorizonImmediate, ActionType: "fetch"},
	{ID: "post-public-notice", Name: "Post Public Notice", Category: CategoryLearning,
		RequiredGenes: map[string]float64{"content-generation": 0.2}, RequiredTools: []string{"web"},
		Risk: 0.1, Complexity: 0.2, TypicalPayoff: 0.1, Horizon: HorizonShort, ActionType: "post"},

	// Defense
	{ID: "scrape-threat-intel", Name: "Scrape Threat Intel", Category: CategoryDefense,
		RequiredGenes: map[string]float64{"scraping-efficiency": 0.2, "stress-sensitivity": 0.2}, RequiredTools: []string{"web"},
		Risk: 0.15, Complexity: 0.3, TypicalPayoff: 0, Horizon: HorizonShort, ActionType: "scrape"},
	{ID: "panic-withdraw", Name: "Panic Withdraw", Category: CategoryDefense,
		RequiredGenes: map[string]float64{"panic-threshold": 0.2}, RequiredTools: []string{"dex"},
		Risk: 0.2, Complexity: 0.2, TypicalPayoff: -0.2, Horizon: HorizonImmediate, ActionType: "transfer"},
}
