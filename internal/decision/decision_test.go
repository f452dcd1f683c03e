package decision

import (
	"context"
	"testing"
	"time"

	"github.com/axobase/egde/internal/genome"
	"github.com/axobase/egde/internal/ports"
	"github.com/axobase/egde/internal/strategy"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }
func (f *fakeClock) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	return func() {}
}

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Think(ctx context.Context, prompt string, opts ports.ThinkOptions) (string, error) {
	return f.response, f.err
}

func samplePerception() Perception {
	return Perception{
		TopTraits: []TraitValue{{Name: "episodic-memory", Value: 0.8}},
		Environment: strategy.Env{
			AvailableTools:     map[string]bool{},
			Balance:            50,
			DailyMetabolicCost: 0.1,
			Mode:               "stable",
		},
		Snapshot: strategy.Snapshot{
			ByName:    map[string]float64{"episodic-memory": 0.9},
			DomainMax: map[genome.Domain]float64{},
		},
	}
}

func TestDecideReturnsEmergencyFallbackWhenFilterEmpty(t *testing.T) {
	llm := &fakeLLM{response: "STRATEGY_ID: x\nCONFIDENCE: 0.9\n"}
	clock := &fakeClock{t: time.Unix(0, 0)}
	eng := NewEngine(llm, clock)

	p := Perception{
		Environment: strategy.Env{Mode: "stable", Balance: 0, DailyMetabolicCost: 0.1},
		Snapshot:    strategy.Snapshot{ByName: map[string]float64{}, DomainMax: map[genome.Domain]float64{}},
	}
	d, err := eng.Decide(context.Background(), "agent-1", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.SelectedAction != ActionEnterDormancy {
		t.Fatalf("expected emergency-survival enter-dormancy, got %v", d.SelectedAction)
	}
}

func TestDecideRateLimited(t *testing.T) {
	llm := &fakeLLM{response: "STRATEGY_ID: store-memory-log\nCONFIDENCE: 0.8\nREASONING: ok\nRISK_ASSESSMENT: low\n"}
	clock := &fakeClock{t: time.Unix(0, 0)}
	eng := NewEngine(llm, clock)

	p := samplePerception()
	if _, err := eng.Decide(context.Background(), "agent-1", p); err != nil {
		t.Fatalf("first decide failed: %v", err)
	}
	if _, err := eng.Decide(context.Background(), "agent-1", p); err != ErrRateLimited {
		t.Fatalf("expected ErrRateLimited on immediate second call, got %v", err)
	}

	clock.t = clock.t.Add(61 * time.Second)
	if _, err := eng.Decide(context.Background(), "agent-1", p); err != nil {
		t.Fatalf("expected decide to succeed after interval elapsed, got %v", err)
	}
}

func TestDecideFallsBackToTopCandidateWhenStrategyUnknown(t *testing.T) {
	llm := &fakeLLM{response: "STRATEGY_ID: not-a-real-strategy\nCONFIDENCE: 0.99\nREASONING: x\nRISK_ASSESSMENT: low\n"}
	clock := &fakeClock{t: time.Unix(0, 0)}
	eng := NewEngine(llm, clock)

	d, err := eng.Decide(context.Background(), "agent-2", samplePerception())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.SelectedStrategy != "store-memory-log" {
		t.Fatalf("expected fallback to top candidate store-memory-log, got %s", d.SelectedStrategy)
	}
}

func TestDecideFallsBackOnLLMError(t *testing.T) {
	llm := &fakeLLM{err: context.DeadlineExceeded}
	clock := &fakeClock{t: time.Unix(0, 0)}
	eng := NewEngine(llm, clock)

	d, err := eng.Decide(context.Background(), "agent-3", samplePerception())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Confidence != fallbackConfidence {
		t.Fatalf("expected fallback confidence %f, got %f", fallbackConfidence, d.Confidence)
	}
}
