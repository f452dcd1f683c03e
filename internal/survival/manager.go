package survival

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Manager runs one cooperatively scheduled task per registered agent,
// each awaiting its own cycle timer, independent of every other agent's
// task (spec.md §5: "multiple agents may share a process as independent
// tasks that surrender control only at explicit suspension points").
// There is no shared mutable state between agent tasks beyond the Loop's
// ports and expression cache, both of which are safe for concurrent use.
type Manager struct {
	Loop     *Loop
	Registry *Registry
	Logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewManager wires a manager over an existing Loop and Registry.
func NewManager(loop *Loop, registry *Registry, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{Loop: loop, Registry: registry, Logger: logger, stopCh: make(chan struct{})}
}

// Run launches one task per agent currently in the registry and blocks
// until ctx is cancelled, Stop is called, or any agent task returns a
// non-nil error. Agents added to the registry after Run starts are not
// picked up; callers that need dynamic membership should restart Run.
func (m *Manager) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, agent := range m.Registry.All() {
		agent := agent
		g.Go(func() error {
			return m.runAgent(gctx, agent)
		})
	}
	return g.Wait()
}

// Stop causes every agent task's next suspension point to exit instead
// of scheduling another tick (spec.md §5's "cooperative stop handle").
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Manager) runAgent(ctx context.Context, agent *Agent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.stopCh:
			return nil
		default:
		}

		if agent.Status == StatusDead {
			return nil
		}

		if err := m.Loop.Tick(ctx, agent); err != nil {
			m.Logger.Error("tick failed, scheduling next cycle anyway", "agent", agent.ID, "error", err)
		}

		interval := agent.LastCycleInterval
		if interval <= 0 {
			interval = 10 * time.Minute
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-m.stopCh:
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
