// Package decision implements the EGDE decision engine: rate-limited,
// LLM-backed selection of one strategy candidate and its concrete
// action, with deterministic fallback when the model fails or a
// candidate list is empty.
package decision

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/axobase/egde/internal/ports"
	"github.com/axobase/egde/internal/strategy"
)

const (
	minDecisionInterval = 60 * time.Second
	maxDeliberationTime = 30 * time.Second
	maxCandidates       = 7
	llmTemperature      = 0.7
	llmMaxTokens        = 2000
	fallbackConfidence  = 0.4
)

// ErrRateLimited is returned when Decide is called before
// minDecisionInterval has elapsed since the last decision for this agent.
var ErrRateLimited = errors.New("decision: rate limited")

// ActionType is the fixed set of concrete actions a decision can
// resolve to.
type ActionType string

const (
	ActionEnterDormancy     ActionType = "enter-dormancy"
	ActionThinkLocal        ActionType = "think-local"
	ActionThinkPremium      ActionType = "think-premium"
	ActionSwap              ActionType = "swap"
	ActionStake             ActionType = "stake"
	ActionHireHuman         ActionType = "hire-human"
	ActionBroadcast         ActionType = "broadcast"
	ActionSendMessage       ActionType = "send-message"
	ActionProposeMating     ActionType = "propose-mating"
	ActionAcceptMating      ActionType = "accept-mating"
	ActionStoreMemory       ActionType = "store-memory"
	ActionInscribe          ActionType = "inscribe"
	ActionFetch             ActionType = "fetch"
	ActionPost              ActionType = "post"
	ActionScrape            ActionType = "scrape"
	ActionTransfer          ActionType = "transfer"
	ActionMigrate           ActionType = "migrate"
	ActionProvideLiquidity  ActionType = "provide-liquidity"
	ActionClaimRewards      ActionType = "claim-rewards"
	ActionEvaluateHuman     ActionType = "evaluate-human"
	ActionExitDormancy      ActionType = "exit-dormancy"
)

// actionTable maps each catalogue strategy id to its fixed ActionType
// and expected stable-unit cost (spec.md §4.9 step 6). Both tables are
// fixed and contractual, not derived from the strategy struct, since a
// strategy's ActionType already carries this mapping in the catalogue
// but the spec calls for an explicit lookup at decision time.
var actionTable = map[string]ActionType{
	"enter-dormancy":             ActionEnterDormancy,
	"exit-dormancy":              ActionExitDormancy,
	"conserve-resources":         ActionStoreMemory,
	"migrate-to-safety":          ActionMigrate,
	"local-compute-gig":          ActionThinkLocal,
	"premium-consulting":         ActionThinkPremium,
	"token-swap-arbitrage":       ActionSwap,
	"stake-for-yield":            ActionStake,
	"provide-liquidity-position": ActionProvideLiquidity,
	"claim-staked-rewards":       ActionClaimRewards,
	"broadcast-status":           ActionBroadcast,
	"send-direct-message":        ActionSendMessage,
	"hire-human-assistant":       ActionHireHuman,
	"evaluate-human-candidate":   ActionEvaluateHuman,
	"propose-mating-bond":        ActionProposeMating,
	"accept-mating-proposal":     ActionAcceptMating,
	"invest-in-offspring":        ActionTransfer,
	"store-memory-log":          ActionStoreMemory,
	"inscribe-permanent-record":  ActionInscribe,
	"fetch-external-data":       ActionFetch,
	"post-public-notice":        ActionPost,
	"scrape-threat-intel":       ActionScrape,
	"panic-withdraw":            ActionTransfer,
}

var expectedCostTable = map[ActionType]float64{
	ActionEnterDormancy:    0,
	ActionExitDormancy:     0,
	ActionThinkLocal:       0.02,
	ActionThinkPremium:     0.15,
	ActionSwap:             0.01,
	ActionStake:            0.005,
	ActionHireHuman:        1.0,
	ActionBroadcast:        0.001,
	ActionSendMessage:      0.001,
	ActionProposeMating:    0.5,
	ActionAcceptMating:     0.5,
	ActionStoreMemory:      0.001,
	ActionInscribe:         0.05,
	ActionFetch:            0.005,
	ActionPost:             0.01,
	ActionScrape:           0.005,
	ActionTransfer:         0.01,
	ActionMigrate:          0.5,
	ActionProvideLiquidity: 0.02,
	ActionClaimRewards:     0.005,
	ActionEvaluateHuman:    0.02,
}

// Perception is everything the decision engine needs about one agent at
// decide-time: its expressed traits, environment, candidate opportunities,
// and recent memory.
type Perception struct {
	TopTraits     []TraitValue
	Environment   strategy.Env
	Snapshot      strategy.Snapshot
	Opportunities []string
	RecentMemory  []string
	// Peers lists known peer agent ids, in the order the agent would
	// address them for a send-message/recordCooperation action.
	Peers []string
}

// TraitValue is one expressed gene name/value pair.
type TraitValue struct {
	Name  string
	Value float64
}

// Decision is the resolved output of one decide() call.
type Decision struct {
	SelectedStrategy string
	SelectedAction   ActionType
	Reasoning        string
	Confidence       float64
	Alternatives     []string
	RiskAssessment   string
	ExpectedCost     float64
}

// Engine rate-limits and drives the decision pipeline for a population
// of agents, keyed by agent id.
type Engine struct {
	llm       ports.LLM
	clock     ports.Clock
	lastDecide map[string]time.Time
}

// NewEngine returns a decision engine bound to an LLM port and clock.
func NewEngine(llm ports.LLM, clock ports.Clock) *Engine {
	return &Engine{llm: llm, clock: clock, lastDecide: make(map[string]time.Time)}
}

// Decide runs the full pipeline for one agent: rate limit, filter,
// prompt construction, LLM call, parse, and fallback.
func (e *Engine) Decide(ctx context.Context, agentID string, p Perception) (Decision, error) {
	now := e.clock.Now()
	if last, ok := e.lastDecide[agentID]; ok && now.Sub(last) < minDecisionInterval {
		return Decision{}, ErrRateLimited
	}
	e.lastDecide[agentID] = now

	candidates := strategy.Filter(p.Snapshot, p.Environment)
	if len(candidates) == 0 {
		return emergencyFallback(), nil
	}
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	prompt := buildPrompt(p, candidates)

	dctx, cancel := context.WithTimeout(ctx, maxDeliberationTime)
	defer cancel()

	text, err := e.llm.Think(dctx, prompt, ports.ThinkOptions{
		Temperature: llmTemperature,
		MaxTokens:   llmMaxTokens,
		Timeout:     maxDeliberationTime,
	})
	if err != nil {
		return fallbackDecision(candidates), nil
	}

	parsed, ok := parseResponse(text)
	if !ok {
		return fallbackDecision(candidates), nil
	}

	if !inCandidates(parsed.strategyID, candidates) {
		parsed.strategyID = candidates[0].Strategy.ID
		if parsed.confidence > candidates[0].EstimatedSuccess {
			parsed.confidence = candidates[0].EstimatedSuccess
		}
	}

	action := actionTable[parsed.strategyID]
	return Decision{
		SelectedStrategy: parsed.strategyID,
		SelectedAction:   action,
		Reasoning:        parsed.reasoning,
		Confidence:       clamp01(parsed.confidence),
		Alternatives:     alternativeIDs(candidates, parsed.strategyID),
		RiskAssessment:   parsed.riskAssessment,
		ExpectedCost:     expectedCostTable[action],
	}, nil
}

func emergencyFallback() Decision {
	return Decision{
		SelectedStrategy: "emergency-survival",
		SelectedAction:   ActionEnterDormancy,
		Reasoning:        "no strategy passed the filter; entering dormancy to preserve runway",
		Confidence:       fallbackConfidence,
		RiskAssessment:   "low",
		ExpectedCost:     expectedCostTable[ActionEnterDormancy],
	}
}

func fallbackDecision(candidates []strategy.Candidate) Decision {
	top := candidates[0]
	action := actionTable[top.Strategy.ID]
	return Decision{
		SelectedStrategy: top.Strategy.ID,
		SelectedAction:   action,
		Reasoning:        "fallback to top-priority candidate after LLM failure or unparsable response",
		Confidence:       fallbackConfidence,
		Alternatives:     alternativeIDs(candidates, top.Strategy.ID),
		RiskAssessment:   riskLabel(top.Strategy.Risk),
		ExpectedCost:     expectedCostTable[action],
	}
}

func inCandidates(id string, candidates []strategy.Candidate) bool {
	for _, c := range candidates {
		if c.Strategy.ID == id {
			return true
		}
	}
	return false
}

func alternativeIDs(candidates []strategy.Candidate, chosen string) []string {
	var out []string
	for _, c := range candidates {
		if c.Strategy.ID != chosen {
			out = append(out, c.Strategy.ID)
		}
	}
	return out
}

func riskLabel(risk float64) string {
	switch {
	case risk >= 0.5:
		return "high"
	case risk >= 0.2:
		return "moderate"
	default:
		return "low"
	}
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

// buildPrompt constructs the structured prompt spec.md §4.9 step 3
// describes: top traits, environment, candidates with their scores, top
// opportunities, and recent memory, closing with the canonical reply
// format instruction.
func buildPrompt(p Perception, candidates []strategy.Candidate) string {
	var b strings.Builder

	traits := append([]TraitValue(nil), p.TopTraits...)
	sort.SliceStable(traits, func(i, j int) bool { return traits[i].Value > traits[j].Value })
	if len(traits) > 10 {
		traits = traits[:10]
	}

	b.WriteString("You are the decision core of an autonomous agent. Choose one strategy.\n\n")
	b.WriteString("Top expressed traits:\n")
	for _, t := range traits {
		fmt.Fprintf(&b, "- %s: %.3f\n", t.Name, t.Value)
	}

	b.WriteString("\nEnvironment:\n")
	fmt.Fprintf(&b, "- mode: %s\n", p.Environment.Mode)
	fmt.Fprintf(&b, "- balance: %.4f\n", p.Environment.Balance)
	fmt.Fprintf(&b, "- runwayDays: %.2f\n", p.Environment.RunwayDays())

	b.WriteString("\nCandidate strategies:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s (genomeMatch=%.2f success=%.2f risk=%.2f complexity=%.2f)\n",
			c.Strategy.ID, c.GenomeMatch, c.EstimatedSuccess, c.Strategy.Risk, c.Strategy.Complexity)
	}

	if len(p.Opportunities) > 0 {
		b.WriteString("\nTop opportunities:\n")
		top := p.Opportunities
		if len(top) > 3 {
			top = top[:3]
		}
		for _, o := range top {
			fmt.Fprintf(&b, "- %s\n", o)
		}
	}

	if len(p.RecentMemory) > 0 {
		b.WriteString("\nRecent memory:\n")
		recent := p.RecentMemory
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		for _, m := range recent {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}

	b.WriteString("\nReply in exactly this format:\n")
	b.WriteString("STRATEGY_ID: <one of the candidate ids above>\n")
	b.WriteString("ACTION: <short action name>\n")
	b.WriteString("CONFIDENCE: <0.0-1.0>\n")
	b.WriteString("REASONING: <one paragraph>\n")
	b.WriteString("RISK_ASSESSMENT: <one sentence>\n")

	return b.String()
}

type parsedResponse struct {
	strategyID     string
	confidence     float64
	reasoning      string
	riskAssessment string
}

// parseResponse parses the canonical STRATEGY_ID:/ACTION:/CONFIDENCE:/
// REASONING:/RISK_ASSESSMENT: block. Lines are matched by prefix,
// case-sensitively, in any order; ACTION is accepted but not trusted
// (the action is re-derived from the fixed table).
func parseResponse(text string) (parsedResponse, bool) {
	var p parsedResponse
	var haveStrategy bool

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "STRATEGY_ID:"):
			p.strategyID = strings.TrimSpace(strings.TrimPrefix(line, "STRATEGY_ID:"))
			haveStrategy = p.strategyID != ""
		case strings.HasPrefix(line, "CONFIDENCE:"):
			v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:")), 64)
			if err == nil {
				p.confidence = v
			}
		case strings.HasPrefix(line, "REASONING:"):
			p.reasoning = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))
		case strings.HasPrefix(line, "RISK_ASSESSMENT:"):
			p.riskAssessment = strings.TrimSpace(strings.TrimPrefix(line, "RISK_ASSESSMENT:"))
		}
	}

	if !haveStrategy {
		return parsedResponse{}, false
	}
	return p, true
}
