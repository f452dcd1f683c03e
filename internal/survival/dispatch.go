package survival

import (
	"context"
	"fmt"

	"github.com/axobase/egde/internal/decision"
)

// dispatch executes one decided action through the appropriate port.
// Actions with no dedicated port in spec.md §6 (trading, on-chain,
// human-marketplace, web actions are all out of scope per spec.md §1's
// Non-goals) are instead queued as opaque pending transactions for a
// surrounding executor to carry out; the core only records the intent.
func (l *Loop) dispatch(ctx context.Context, agent *Agent, d decision.Decision) error {
	record := fmt.Sprintf("%s: %s (confidence=%.2f)", d.SelectedAction, d.Reasoning, d.Confidence)

	switch d.SelectedAction {
	case decision.ActionEnterDormancy:
		agent.Status = StatusDormant
		return nil
	case decision.ActionExitDormancy:
		if agent.Status != StatusDead {
			agent.Status = StatusActive
		}
		return nil
	case decision.ActionBroadcast:
		if l.Messaging == nil {
			return nil
		}
		return l.Messaging.Broadcast(ctx, d.Reasoning)
	case decision.ActionSendMessage:
		if l.Messaging == nil {
			return nil
		}
		peer := agent.nextPeer()
		if peer == "" {
			return nil
		}
		if err := l.Messaging.SendMessage(ctx, peer, d.Reasoning); err != nil {
			return err
		}
		agent.CooperationCount++
		return l.Messaging.RecordCooperation(ctx, peer, 1)
	case decision.ActionStoreMemory:
		agent.PendingThoughts = append(agent.PendingThoughts, d.Reasoning)
		return nil
	case decision.ActionInscribe:
		agent.PendingThoughts = append(agent.PendingThoughts, "[priority] "+d.Reasoning)
		return nil
	default:
		agent.PendingTransactions = append(agent.PendingTransactions, record)
		return nil
	}
}

