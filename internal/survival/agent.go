// Package survival implements the EGDE per-agent survival loop: one
// cooperatively scheduled task per agent that perceives, expresses,
// updates epigenetics, decides, executes, and tracks environment
// counters every cycle, plus an in-memory agent registry.
package survival

import (
	"sync"
	"time"

	"github.com/axobase/egde/internal/genome"
)

// Status is an agent's lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusDormant  Status = "dormant"
	StatusDead     Status = "dead"
)

// Metrics tracks per-agent action outcomes, grounded on the teacher's
// agents.Metrics shape but carried in memory only (no disk persistence,
// since EGDE's core has no persistence layer of its own).
type Metrics struct {
	TotalActions      int
	SuccessfulActions int
	FailedActions     int
	AvgResponseMs     float64
	TokensUsed        int64
	CostUSD           float64
	Custom            map[string]float64
}

func (m *Metrics) recordAction(success bool, responseMs float64) {
	m.TotalActions++
	if success {
		m.SuccessfulActions++
	} else {
		m.FailedActions++
	}
	if m.TotalActions == 1 {
		m.AvgResponseMs = responseMs
		return
	}
	m.AvgResponseMs += (responseMs - m.AvgResponseMs) / float64(m.TotalActions)
}

const memoryCapacity = 50

// Agent is one agent's live state: its genome, lifecycle status, and
// the environmental counters the survival loop maintains across ticks.
type Agent struct {
	ID        string
	LineageID string
	Genome    *genome.DynamicGenome
	Status    Status

	BirthTime     time.Time
	LastCycle     time.Time
	CycleNumber   int
	LastInscribed time.Time

	// LastCycleInterval is the tick cadence Tick most recently derived
	// from the agent's cycle_speed gene (spec.md §4.10); Manager reads
	// it to schedule the agent's next tick without re-expressing.
	LastCycleInterval time.Duration

	StarvationDays    int
	ThrivingDays      int
	DeceptionScore    float64
	CooperationCount  int
	Stress            float64
	Mode              string
	HibernationStreak int

	PendingThoughts     []string
	PendingTransactions []string
	RecentMemory        []string

	// Peers lists the ids of other agents this one is aware of (seeded
	// by whoever assembles the population, e.g. from the coordinator's
	// cooperation ledger or the ledger's registerBirth records) and is
	// the pool send-message/recordCooperation actions address.
	Peers      []string
	peerCursor int

	Metrics Metrics

	mu sync.Mutex
}

// NewAgent wraps a freshly created genome into a live agent record.
func NewAgent(id string, g *genome.DynamicGenome, birth time.Time) *Agent {
	return &Agent{
		ID:        id,
		LineageID: g.Metadata.LineageID,
		Genome:    g,
		Status:    StatusActive,
		BirthTime: birth,
		LastCycle: birth,
		Mode:      "normal",
		Metrics:   Metrics{Custom: make(map[string]float64)},
	}
}

// AgeDays returns the agent's age in whole days as of now.
func (a *Agent) AgeDays(now time.Time) int {
	return int(now.Sub(a.BirthTime).Hours() / 24)
}

// remember appends an event to bounded recent memory, evicting the
// oldest entry once memoryCapacity is exceeded.
func (a *Agent) remember(event string) {
	a.RecentMemory = append(a.RecentMemory, event)
	if len(a.RecentMemory) > memoryCapacity {
		a.RecentMemory = a.RecentMemory[len(a.RecentMemory)-memoryCapacity:]
	}
}

// nextPeer round-robins through Peers, returning "" when the agent
// knows of no one to address.
func (a *Agent) nextPeer() string {
	if len(a.Peers) == 0 {
		return ""
	}
	peer := a.Peers[a.peerCursor%len(a.Peers)]
	a.peerCursor++
	return peer
}

// Registry is an in-memory directory of live agents, grounded on the
// teacher's agents.Registry but dropping its on-disk JSON persistence:
// EGDE's core is a pure library and leaves persistence to its caller.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]*Agent
}

// NewRegistry returns an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]*Agent)}
}

// Add registers a new agent, replacing any existing one with the same id.
func (r *Registry) Add(a *Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.ID] = a
}

// Get returns the agent with the given id, or ok=false.
func (r *Registry) Get(id string) (*Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// Remove deletes an agent from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.agents, id)
}

// All returns a snapshot slice of every registered agent.
func (r *Registry) All() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	return out
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
