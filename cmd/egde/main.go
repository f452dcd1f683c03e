// Command egde boots a small in-process demonstration of the
// Evolutionary Genome & Decision Engine: it creates a handful of
// genesis agents, breeds one new generation from the first two, and
// runs the survival loop manager until interrupted. Every external
// collaborator (wallet, LLM, permanent storage, messaging, ledger) is
// wired to an in-memory stand-in — real providers live outside this
// core (spec.md §1) and are the surrounding application's concern, not
// this binary's.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/axobase/egde/internal/config"
	"github.com/axobase/egde/internal/coordinator"
	"github.com/axobase/egde/internal/decision"
	"github.com/axobase/egde/internal/expression"
	"github.com/axobase/egde/internal/genome"
	"github.com/axobase/egde/internal/ports"
	"github.com/axobase/egde/internal/rngsrc"
	"github.com/axobase/egde/internal/survival"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file (defaults applied when omitted)")
	population := flag.Int("population", 2, "number of genesis agents to create")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	setupSignalHandlers(ctx, cancel, logger)

	if *configPath != "" {
		watcher := config.NewWatcher(*configPath, 5*time.Second, logger, cfg, func(result *config.ReloadResult) {
			logger.Info("applying hot-reloaded config", "sections", result.Applied)
		})
		watcher.Start()
		defer watcher.Stop()
	}

	rng := rngsrc.NewSecure()
	clock := systemClock{}
	llm := fallbackLLM{}
	wallet := &demoWallet{thresholds: cfg.Thresholds}
	storage := loggingStorage{logger: logger}
	messaging := loggingMessaging{logger: logger}
	ledger := loggingLedger{logger: logger}

	cache := expression.NewCache(cfg.Cache.MaxSize, time.Duration(cfg.Cache.TTLSec)*time.Second)
	dec := decision.NewEngine(llm, clock)
	loop := survival.NewLoop(wallet, storage, messaging, ledger, clock,
		cache, dec, demoTools(), logger)

	registry := survival.NewRegistry()
	now := clock.Now()
	for i := 0; i < *population; i++ {
		lineageID := fmt.Sprintf("demo-lineage-%d", i)
		g := genome.CreateGenesisGenome(lineageID)
		agent := survival.NewAgent(fmt.Sprintf("agent-%d", i), g, now)
		registry.Add(agent)
		if _, err := ledger.RegisterBirth(ctx, g.Metadata.GenomeHash, lineageID); err != nil {
			logger.Warn("ledger registration failed", "agent", agent.ID, "error", err)
		}
	}

	if agents := registry.All(); len(agents) >= 2 {
		for _, agent := range agents {
			for _, other := range agents {
				if other.ID != agent.ID {
					agent.Peers = append(agent.Peers, other.ID)
				}
			}
		}
		coord := coordinator.New(clock)
		coord.RecordInteraction(agents[0].ID, agents[1].ID, 96)
		if result, err := coord.ExecuteBreeding(agents[0].Genome, agents[1].Genome, 0.1, rng); err != nil {
			logger.Info("demo breeding skipped", "reason", err)
		} else {
			logger.Info("demo breeding produced a child genome",
				"generation", result.ChildGenome.Metadata.Generation,
				"genes", result.ChildGenome.Metadata.TotalGenes,
				"mutations", len(result.Mutations))
		}
	}

	logger.Info("starting survival loop manager", "agents", registry.Count())
	manager := survival.NewManager(loop, registry, logger)
	if err := manager.Run(ctx); err != nil {
		logger.Error("manager exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

func demoTools() map[string]bool {
	return map[string]bool{
		"messaging":        true,
		"web":              true,
		"permanent-storage": true,
		"human-marketplace": true,
	}
}

// systemClock is the production ports.Clock: the real wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
func (systemClock) AfterFunc(d time.Duration, f func()) (cancel func()) {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// fallbackLLM always fails, so every decision falls through to the
// filter's top-priority candidate (spec.md §4.9 step 6) — this binary
// has no real LLM provider wired in.
type fallbackLLM struct{}

func (fallbackLLM) Think(ctx context.Context, prompt string, opts ports.ThinkOptions) (string, error) {
	return "", fmt.Errorf("no LLM provider configured for this demo binary")
}

// demoWallet reports a balance that drifts downward each call, just
// enough to exercise every mode transition (normal -> low-power ->
// emergency -> hibernation) over a short demo run.
type demoWallet struct {
	thresholds config.BalanceThresholds
	calls      int
}

func (w *demoWallet) GetBalances(ctx context.Context, address string) (ports.Balances, error) {
	w.calls++
	stable := w.thresholds.Low*2 - float64(w.calls)*0.25
	if stable < 0 {
		stable = 0
	}
	return ports.Balances{Native: 0.01, Stable: stable}, nil
}

type loggingStorage struct{ logger *slog.Logger }

func (s loggingStorage) DailyInscribe(ctx context.Context, genomeHash string, thoughts, txns []string, summary string) (string, error) {
	s.logger.Info("daily inscription", "genomeHash", genomeHash, "summary", summary,
		"thoughts", len(thoughts), "transactions", len(txns))
	return "demo-record", nil
}

type loggingMessaging struct{ logger *slog.Logger }

func (m loggingMessaging) Broadcast(ctx context.Context, msg string) error {
	m.logger.Info("broadcast", "message", msg)
	return nil
}

func (m loggingMessaging) SendMessage(ctx context.Context, peer, msg string) error {
	m.logger.Info("send message", "peer", peer, "message", msg)
	return nil
}

func (m loggingMessaging) RecordCooperation(ctx context.Context, peer string, interactions int) error {
	m.logger.Info("record cooperation", "peer", peer, "interactions", interactions)
	return nil
}

type loggingLedger struct{ logger *slog.Logger }

func (l loggingLedger) RegisterBirth(ctx context.Context, genomeHash, lineageID string) (string, error) {
	l.logger.Info("register birth", "genomeHash", genomeHash, "lineage", lineageID)
	return "demo-birth", nil
}

func (l loggingLedger) UpdateGenome(ctx context.Context, agentID, genomeHash string) (string, error) {
	l.logger.Info("update genome", "agent", agentID, "genomeHash", genomeHash)
	return "demo-update", nil
}

func (l loggingLedger) RecordDeath(ctx context.Context, agentID, reason string) (string, error) {
	l.logger.Info("record death", "agent", agentID, "reason", reason)
	return "demo-death", nil
}
