// Package engine binds the sharded account/transaction-log stores to
// the transaction state machine and exposes the operations every
// ingestion pipeline and CLI command drives: process, dump, reload,
// and a rough size estimate.
//
// The struct shape is a thin façade holding its stores plus a config,
// with the heavy lifting in a separate file of transition methods; each
// transaction kind gets its own validate-then-mutate method rather than
// a single branching function.
package engine

import (
	"sync"

	"github.com/nvogel/ledgerd/internal/ledger"
	"github.com/nvogel/ledgerd/internal/shardmap"
)

// Config holds the tunable parameters of an Engine.
type Config struct {
	// ShardCount is the number of shards used by both the accounts map
	// and the transaction log. Rounded up to a power of two.
	ShardCount int
}

// DefaultConfig returns a Config with a reasonable shard count for a
// single-process engine.
func DefaultConfig() Config {
	return Config{ShardCount: 16}
}

// Engine owns the accounts map and the transaction log for one session.
// Both maps are created empty at construction and live exactly as long
// as the Engine does. An Engine is safe for concurrent use by any
// number of producers; atomicity is per-transaction, never cross-transaction.
type Engine struct {
	accounts *shardmap.Map[ledger.ClientId, ledger.Account]
	log      *shardmap.Map[ledger.TransactionId, ledger.Transaction]

	mu   sync.Mutex // guards errs
	errs []RecordError
}

// RecordError pairs a failed transaction with the error it failed with,
// for end-of-stream reporting.
type RecordError struct {
	Tx  ledger.Transaction
	Err error
}

// New constructs an empty Engine.
func New(cfg Config) *Engine {
	if cfg.ShardCount < 1 {
		cfg = DefaultConfig()
	}
	return &Engine{
		accounts: shardmap.New[ledger.ClientId, ledger.Account](cfg.ShardCount),
		log:      shardmap.New[ledger.TransactionId, ledger.Transaction](cfg.ShardCount),
	}
}

// recordError appends a per-record failure to the session's aggregate.
// Called by ingestion pipelines, not by Process itself, so that a
// direct caller of Process can handle its own errors without going
// through this aggregate.
func (e *Engine) recordError(tx ledger.Transaction, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, RecordError{Tx: tx, Err: err})
}

// Errors returns every per-record error recorded so far, in the order
// they occurred.
func (e *Engine) Errors() []RecordError {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]RecordError, len(e.errs))
	copy(out, e.errs)
	return out
}

// SizeEstimate returns the combined number of accounts and logged
// transactions currently held, a cheap proxy for memory use since both
// maps are O(1)-per-entry plain structs.
func (e *Engine) SizeEstimate() int {
	return e.accounts.Len() + e.log.Len()
}
