package survival

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/axobase/egde/internal/decision"
	"github.com/axobase/egde/internal/expression"
	"github.com/axobase/egde/internal/genome"
	"github.com/axobase/egde/internal/ports"
)

type fakeWallet struct{ balances ports.Balances }

func (w *fakeWallet) GetBalances(ctx context.Context, address string) (ports.Balances, error) {
	return w.balances, nil
}

type fakeStorage struct{ calls int }

func (s *fakeStorage) DailyInscribe(ctx context.Context, genomeHash string, thoughts, txns []string, summary string) (string, error) {
	s.calls++
	return "record-1", nil
}

type fakeMessaging struct{}

func (fakeMessaging) Broadcast(ctx context.Context, msg string) error                    { return nil }
func (fakeMessaging) SendMessage(ctx context.Context, peer, msg string) error            { return nil }
func (fakeMessaging) RecordCooperation(ctx context.Context, peer string, n int) error    { return nil }

type fakeLedger struct{ deathCalls int }

func (l *fakeLedger) RegisterBirth(ctx context.Context, genomeHash, lineageID string) (string, error) {
	return "birth-1", nil
}
func (l *fakeLedger) UpdateGenome(ctx context.Context, agentID, genomeHash string) (string, error) {
	return "update-1", nil
}
func (l *fakeLedger) RecordDeath(ctx context.Context, agentID, reason string) (string, error) {
	l.deathCalls++
	return "death-1", nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) AfterFunc(d time.Duration, f func()) (cancel func()) {
	return func() {}
}

type fakeLLM struct{}

func (fakeLLM) Think(ctx context.Context, prompt string, opts ports.ThinkOptions) (string, error) {
	return "STRATEGY_ID: store-memory-log\nCONFIDENCE: 0.6\nREASONING: keep a log\nRISK_ASSESSMENT: low\n", nil
}

func newTestLoop(balances ports.Balances, clock *fakeClock, ledger *fakeLedger) *Loop {
	cache := expression.NewCache(0, 0)
	dec := decision.NewEngine(fakeLLM{}, clock)
	return NewLoop(&fakeWallet{balances: balances}, &fakeStorage{}, fakeMessaging{}, ledger, clock, cache, dec, map[string]bool{}, slog.Default())
}

func TestTickExpressesAndDecides(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	loop := newTestLoop(ports.Balances{Stable: 50, Native: 1}, clock, &fakeLedger{})

	g := genome.CreateGenesisGenome("lineage-1")
	agent := NewAgent("agent-1", g, clock.t)

	if err := loop.Tick(context.Background(), agent); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	if agent.Metrics.TotalActions != 1 {
		t.Fatalf("expected one recorded action, got %d", agent.Metrics.TotalActions)
	}
	if len(agent.RecentMemory) == 0 {
		t.Fatalf("expected a memory entry after tick")
	}
}

func TestTickTransitionsToHibernationThenDeath(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	ledger := &fakeLedger{}
	loop := newTestLoop(ports.Balances{Stable: 0.1, Native: 1}, clock, ledger)

	g := genome.CreateGenesisGenome("lineage-2")
	agent := NewAgent("agent-2", g, clock.t)

	for i := 0; i < hibernationDeathTicks+1; i++ {
		clock.t = clock.t.Add(10 * time.Minute)
		if err := loop.Tick(context.Background(), agent); err != nil {
			t.Fatalf("tick %d failed: %v", i, err)
		}
	}
	if agent.Status != StatusDead {
		t.Fatalf("expected agent to die after sustained hibernation balance, got status %s", agent.Status)
	}
	if ledger.deathCalls != 1 {
		t.Fatalf("expected exactly one RecordDeath call, got %d", ledger.deathCalls)
	}
}

func TestTickAbortsOnWalletFailure(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	cache := expression.NewCache(0, 0)
	dec := decision.NewEngine(fakeLLM{}, clock)
	loop := NewLoop(failingWallet{}, &fakeStorage{}, fakeMessaging{}, &fakeLedger{}, clock, cache, dec, map[string]bool{}, slog.Default())

	g := genome.CreateGenesisGenome("lineage-3")
	agent := NewAgent("agent-3", g, clock.t)
	if err := loop.Tick(context.Background(), agent); err == nil {
		t.Fatalf("expected wallet failure to abort the tick")
	}
}

type failingWallet struct{}

func (failingWallet) GetBalances(ctx context.Context, address string) (ports.Balances, error) {
	return ports.Balances{}, context.DeadlineExceeded
}
