// Package ports defines the capability-typed collaborators the EGDE core
// consumes from (and exposes to) its surrounding system. Every subsystem
// outside the core — wallet, LLM provider, permanent storage, messaging,
// ledger contracts, the clock, and the random source — is reached only
// through these narrow interfaces, never through a concrete client.
package ports

import (
	"context"
	"time"
)

// Balances is the stable-unit and native-token balance snapshot returned
// by the Wallet port.
type Balances struct {
	Native float64 // gas-surrogate unit (e.g. ETH)
	Stable float64 // stable accounting unit (e.g. USDC)
}

// Wallet is the inbound port for balance queries. Transaction signing is
// used only by the surrounding action executor, never by the core itself.
type Wallet interface {
	GetBalances(ctx context.Context, address string) (Balances, error)
}

// ThinkOptions bounds a single LLM call.
type ThinkOptions struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// LLM is the single inbound port through which the core ever reaches a
// language model provider.
type LLM interface {
	Think(ctx context.Context, prompt string, opts ThinkOptions) (string, error)
}

// PermanentStorage is the inbound port for the daily/death inscription of
// an agent's accumulated thoughts and transactions.
type PermanentStorage interface {
	DailyInscribe(ctx context.Context, genomeHash string, thoughts []string, transactions []string, summary string) (recordID string, err error)
}

// Messaging is the best-effort inbound port for agent-to-agent and
// agent-to-world communication.
type Messaging interface {
	Broadcast(ctx context.Context, msg string) error
	SendMessage(ctx context.Context, peer string, msg string) error
	RecordCooperation(ctx context.Context, peer string, interactions int) error
}

// Ledger is the inbound port for on-chain registry operations. Every
// operation returns an opaque record id; the core never interprets
// ledger internals.
type Ledger interface {
	RegisterBirth(ctx context.Context, genomeHash string, lineageID string) (recordID string, err error)
	UpdateGenome(ctx context.Context, agentID string, genomeHash string) (recordID string, err error)
	RecordDeath(ctx context.Context, agentID string, reason string) (recordID string, err error)
}

// Clock is the inbound port for monotonic/wall-clock time and scheduled
// callbacks, so the core never reads the ambient system clock directly.
type Clock interface {
	Now() time.Time
	// AfterFunc schedules f to run after d and returns a cancel function.
	AfterFunc(d time.Duration, f func()) (cancel func())
}

// Rng is the single injected source of randomness for every probabilistic
// operator. No component may use ambient randomness (math/rand globals,
// time-based seeding) per the numerical-reproducibility contract.
type Rng interface {
	// NextFloat returns a value in [0,1).
	NextFloat() float64
	// NextBytes fills n pseudo-random bytes.
	NextBytes(n int) []byte
}

// PortFailure wraps any inbound port error with the port's identity so
// callers can distinguish which collaborator failed.
type PortFailure struct {
	Port string
	Err  error
}

func (e *PortFailure) Error() string {
	return "port failure [" + e.Port + "]: " + e.Err.Error()
}

func (e *PortFailure) Unwrap() error { return e.Err }

// NewPortFailure wraps err with the failing port's name.
func NewPortFailure(port string, err error) error {
	if err == nil {
		return nil
	}
	return &PortFailure{Port: port, Err: err}
}
