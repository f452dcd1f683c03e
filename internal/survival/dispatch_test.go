package survival

import (
	"context"
	"testing"
	"time"

	"github.com/axobase/egde/internal/decision"
	"github.com/axobase/egde/internal/genome"
)

func TestNextPeerRoundRobinsAndIsEmptyByDefault(t *testing.T) {
	g := genome.CreateGenesisGenome("lineage-peer")
	agent := NewAgent("agent-1", g, time.Now())

	if got := agent.nextPeer(); got != "" {
		t.Fatalf("expected no peer on an agent with none known, got %q", got)
	}

	agent.Peers = []string{"agent-2", "agent-3"}
	first := agent.nextPeer()
	second := agent.nextPeer()
	third := agent.nextPeer()
	if first != "agent-2" || second != "agent-3" || third != "agent-2" {
		t.Fatalf("expected round-robin agent-2, agent-3, agent-2; got %s, %s, %s", first, second, third)
	}
}

type recordingMessaging struct {
	sentTo       string
	cooperatedTo string
	cooperatedN  int
}

func (m *recordingMessaging) Broadcast(ctx context.Context, msg string) error { return nil }

func (m *recordingMessaging) SendMessage(ctx context.Context, peer, msg string) error {
	m.sentTo = peer
	return nil
}

func (m *recordingMessaging) RecordCooperation(ctx context.Context, peer string, n int) error {
	m.cooperatedTo = peer
	m.cooperatedN = n
	return nil
}

func TestDispatchSendMessageAddressesAKnownPeer(t *testing.T) {
	g := genome.CreateGenesisGenome("lineage-peer-2")
	agent := NewAgent("agent-1", g, time.Now())
	agent.Peers = []string{"agent-2"}

	messaging := &recordingMessaging{}
	loop := &Loop{Messaging: messaging}

	d := decision.Decision{SelectedAction: decision.ActionSendMessage, Reasoning: "let's cooperate"}
	if err := loop.dispatch(context.Background(), agent, d); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if messaging.sentTo != "agent-2" {
		t.Errorf("expected message sent to agent-2, got %q", messaging.sentTo)
	}
	if messaging.cooperatedTo != "agent-2" || messaging.cooperatedN != 1 {
		t.Errorf("expected cooperation recorded for agent-2 x1, got %q x%d", messaging.cooperatedTo, messaging.cooperatedN)
	}
	if agent.CooperationCount != 1 {
		t.Errorf("expected CooperationCount incremented, got %d", agent.CooperationCount)
	}
}

func TestDispatchSendMessageNoOpWithoutKnownPeers(t *testing.T) {
	g := genome.CreateGenesisGenome("lineage-peer-3")
	agent := NewAgent("agent-1", g, time.Now())

	messaging := &recordingMessaging{}
	loop := &Loop{Messaging: messaging}

	d := decision.Decision{SelectedAction: decision.ActionSendMessage, Reasoning: "let's cooperate"}
	if err := loop.dispatch(context.Background(), agent, d); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if messaging.sentTo != "" {
		t.Errorf("expected no message sent when the agent knows no peers, got %q", messaging.sentTo)
	}
	if agent.CooperationCount != 0 {
		t.Errorf("expected CooperationCount to stay 0, got %d", agent.CooperationCount)
	}
}
