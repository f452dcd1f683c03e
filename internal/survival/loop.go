package survival

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/axobase/egde/internal/decision"
	"github.com/axobase/egde/internal/epigenetics"
	"github.com/axobase/egde/internal/expression"
	"github.com/axobase/egde/internal/ports"
	"github.com/axobase/egde/internal/strategy"
)

const (
	thresholdHibernation = 0.5
	thresholdEmergency   = 2.0
	thresholdLow         = 5.0
	gasEmergencyFloor    = 1e-3

	runwayStarvationDays = 3.0
	runwayThrivingDays   = 14.0
	deceptionDecayPerTick = 0.1
	hibernationDeathTicks = 2
)

// Loop drives the per-agent tick: perceive, express (via cache), update
// epigenetics, decide, execute, track environment. One Loop instance is
// shared across every agent task; ToolAvailability reflects the
// surrounding system's currently reachable capabilities.
type Loop struct {
	Wallet           ports.Wallet
	Storage          ports.PermanentStorage
	Messaging        ports.Messaging
	Ledger           ports.Ledger
	Clock            ports.Clock
	Cache            *expression.Cache
	Decision         *decision.Engine
	ToolAvailability map[string]bool
	Logger           *slog.Logger
}

// NewLoop wires a survival loop from its ports and shared cache/decision
// engine.
func NewLoop(wallet ports.Wallet, storage ports.PermanentStorage, messaging ports.Messaging, ledger ports.Ledger, clock ports.Clock, cache *expression.Cache, dec *decision.Engine, tools map[string]bool, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		Wallet: wallet, Storage: storage, Messaging: messaging, Ledger: ledger,
		Clock: clock, Cache: cache, Decision: dec, ToolAvailability: tools, Logger: logger,
	}
}

// Tick runs one full survival cycle for agent. Wallet failures abort the
// tick, preserving the agent's previous status; every other failure is
// logged and the cycle continues.
func (l *Loop) Tick(ctx context.Context, agent *Agent) error {
	agent.mu.Lock()
	defer agent.mu.Unlock()

	if agent.Status == StatusDead {
		return nil
	}

	now := l.Clock.Now()
	balances, err := l.Wallet.GetBalances(ctx, agent.ID)
	if err != nil {
		return ports.NewPortFailure("wallet", err)
	}

	mode := deriveMode(balances.Stable, balances.Native)
	agent.Mode = mode
	agent.CycleNumber++

	env := expression.Environment{
		Balance:          balances.Stable,
		Starving:         agent.StarvationDays > 0,
		Thriving:         agent.ThrivingDays > 0,
		StarvationDays:   agent.StarvationDays,
		ThrivingDays:     agent.ThrivingDays,
		Stress:           agent.Stress,
		Mode:             mode,
		DeceptionCount:   int(agent.DeceptionScore),
		CooperationCount: agent.CooperationCount,
		WallClockMS:      now.UnixMilli(),
	}

	ageDays := agent.AgeDays(now)
	key := expression.Key(agent.Genome.Metadata.GenomeHash, env)
	result := l.Cache.GetOrCompute(key, expression.Input{
		Genome:      agent.Genome,
		Environment: env,
		AgeDays:     ageDays,
		WallClockMS: env.WallClockMS,
	})

	update := epigenetics.UpdateEpigenome(agent.Genome, env)
	agent.Genome = update.Genome
	for _, cause := range update.TriggerCauses {
		l.Logger.Debug("epigenetic trigger fired", "agent", agent.ID, "cause", cause)
	}

	dailyCost := dailyMetabolicCost(result.TotalMetabolicCost, CycleInterval(result))
	runway := 1e9
	if dailyCost > 0 {
		runway = balances.Stable / dailyCost
	}

	snap := strategy.BuildSnapshot(agent.Genome, result)
	stratEnv := strategy.Env{
		AvailableTools:     l.ToolAvailability,
		Balance:            balances.Stable,
		DailyMetabolicCost: dailyCost,
		Mode:               mode,
		RecentDeceptions:   int(agent.DeceptionScore),
		DaysThriving:       agent.ThrivingDays,
	}

	perception := decision.Perception{
		TopTraits:    topTraits(result),
		Environment:  stratEnv,
		Snapshot:     snap,
		RecentMemory: agent.RecentMemory,
		Peers:        agent.Peers,
	}

	d, err := l.Decision.Decide(ctx, agent.ID, perception)
	if err == decision.ErrRateLimited {
		l.LastCycleSync(agent, now)
		return nil
	}
	if err != nil {
		l.Logger.Warn("decision failed", "agent", agent.ID, "error", err)
		l.LastCycleSync(agent, now)
		return nil
	}

	start := now
	dispatchErr := l.dispatch(ctx, agent, d)
	responseMs := float64(l.Clock.Now().Sub(start).Milliseconds())
	agent.Metrics.recordAction(dispatchErr == nil, responseMs)
	if dispatchErr != nil {
		l.Logger.Warn("action dispatch failed", "agent", agent.ID, "action", d.SelectedAction, "error", dispatchErr)
	}
	agent.remember(fmt.Sprintf("%s -> %s", d.SelectedStrategy, d.SelectedAction))

	if runway < runwayStarvationDays {
		agent.StarvationDays++
		agent.ThrivingDays = 0
	} else if runway > runwayThrivingDays {
		agent.ThrivingDays++
	}
	agent.DeceptionScore -= deceptionDecayPerTick
	if agent.DeceptionScore < 0 {
		agent.DeceptionScore = 0
	}

	if mode == "hibernation" {
		agent.HibernationStreak++
	} else {
		agent.HibernationStreak = 0
	}
	if agent.HibernationStreak >= hibernationDeathTicks && agent.Status != StatusDead {
		agent.Status = StatusDead
		if l.Ledger != nil {
			if _, derr := l.Ledger.RecordDeath(ctx, agent.ID, "sustained hibernation-threshold balance"); derr != nil {
				l.Logger.Warn("record death failed", "agent", agent.ID, "error", derr)
			}
		}
		l.inscribe(ctx, agent, "death")
	}

	agent.LastCycleInterval = CycleInterval(result)
	l.maybeInscribeDaily(ctx, agent, now)
	l.LastCycleSync(agent, now)
	return nil
}

// LastCycleSync stamps the agent's last-cycle timestamp.
func (l *Loop) LastCycleSync(agent *Agent, now time.Time) {
	agent.LastCycle = now
}

// deriveMode implements spec.md §4.10 step 2's threshold ladder.
func deriveMode(stable, native float64) string {
	mode := "normal"
	switch {
	case stable < thresholdHibernation:
		mode = "hibernation"
	case stable < thresholdEmergency:
		mode = "emergency"
	case stable < thresholdLow:
		mode = "low-power"
	}
	if native < gasEmergencyFloor && mode != "hibernation" {
		mode = "emergency"
	}
	return mode
}

// CycleInterval reads the cycle_speed gene's expressed value from result
// and maps it to the fixed three-tier interval (spec.md §4.10).
func CycleInterval(result expression.Result) time.Duration {
	for _, eg := range result.Genes {
		if eg.Name != "cycle-speed" {
			continue
		}
		switch {
		case eg.ExpressedValue > 0.7:
			return 5 * time.Minute
		case eg.ExpressedValue < 0.3:
			return 30 * time.Minute
		default:
			return 10 * time.Minute
		}
	}
	return 10 * time.Minute
}

// dailyMetabolicCost scales one expression call's total metabolic cost
// by the agent's current cycle cadence (from the cycle_speed gene via
// CycleInterval) to approximate a per-day figure.
func dailyMetabolicCost(perCycle float64, interval time.Duration) float64 {
	cyclesPerDay := float64(24*time.Hour) / float64(interval)
	return perCycle * cyclesPerDay
}

func topTraits(result expression.Result) []decision.TraitValue {
	out := make([]decision.TraitValue, 0, len(result.Genes))
	for _, eg := range result.Genes {
		out = append(out, decision.TraitValue{Name: eg.Name, Value: eg.ExpressedValue})
	}
	return out
}

func (l *Loop) maybeInscribeDaily(ctx context.Context, agent *Agent, now time.Time) {
	if agent.LastInscribed.IsZero() {
		agent.LastInscribed = now
		return
	}
	nextBoundary := time.Date(agent.LastInscribed.Year(), agent.LastInscribed.Month(), agent.LastInscribed.Day()+1, 0, 0, 0, 0, time.UTC)
	if now.Before(nextBoundary) {
		return
	}
	l.inscribe(ctx, agent, "daily")
	agent.LastInscribed = now
}

func (l *Loop) inscribe(ctx context.Context, agent *Agent, reason string) {
	if l.Storage == nil {
		return
	}
	summary := fmt.Sprintf("%s inscription at cycle %d", reason, agent.CycleNumber)
	if _, err := l.Storage.DailyInscribe(ctx, agent.Genome.Metadata.GenomeHash, agent.PendingThoughts, agent.PendingTransactions, summary); err != nil {
		l.Logger.Warn("inscription failed, will retry next boundary", "agent", agent.ID, "error", err)
		return
	}
	agent.PendingThoughts = nil
	agent.PendingTransactions = nil
}
