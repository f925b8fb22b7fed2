// Package ledger defines the core domain records: the Transaction and
// Account value types and the identifiers that key them. Plain structs
// with terse field comments; invariants are documented here but enforced
// by the caller rather than re-checked on every access.
package ledger

import (
	"fmt"
	"strings"

	"github.com/nvogel/ledgerd/internal/money"
)

// ClientId globally identifies a client within a session. A 32-bit id
// space would scale further, but 16 bits is the normative width.
type ClientId uint16

// TransactionId globally identifies a transaction within a session.
type TransactionId uint32

// Kind is one of the five transaction kinds the domain model recognizes.
type Kind int

const (
	Deposit Kind = iota
	Withdrawal
	Dispute
	Resolve
	Chargeback
)

func (k Kind) String() string {
	switch k {
	case Deposit:
		return "deposit"
	case Withdrawal:
		return "withdrawal"
	case Dispute:
		return "dispute"
	case Resolve:
		return "resolve"
	case Chargeback:
		return "chargeback"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// HasAmount reports whether this kind carries an amount field. Only
// Deposit and Withdrawal do; Dispute/Resolve/Chargeback reference a prior
// transaction by id and carry none.
func (k Kind) HasAmount() bool {
	return k == Deposit || k == Withdrawal
}

// ParseKind parses a kind token, ignoring case and surrounding
// whitespace. Unknown tokens produce a
// parse error and are skipped by the caller rather than aborting ingestion.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return Deposit, true
	case "withdrawal":
		return Withdrawal, true
	case "dispute":
		return Dispute, true
	case "resolve":
		return Resolve, true
	case "chargeback":
		return Chargeback, true
	default:
		return 0, false
	}
}

// Transaction is the record stored in the transaction log: a kind, the
// client and transaction ids, an optional amount, and the disputed flag
// the engine owns and mutates.
type Transaction struct {
	Kind      Kind
	Client    ClientId
	Tx        TransactionId
	Amount    money.Money
	HasAmount bool
	Disputed  bool
}

// Account is the per-client balance record.
//
// Invariant A1: Total == Available + Held at every observable point.
// Invariant A2: once Locked is true, no other field ever changes again.
// Held may be negative (a disputed withdrawal); Available may be
// negative too (a dispute on already-withdrawn deposit funds).
type Account struct {
	Client    ClientId
	Available money.Money
	Held      money.Money
	Total     money.Money
	Locked    bool
}

// NewAccount returns a fresh, unlocked, zero-balance account for client.
func NewAccount(client ClientId) Account {
	return Account{Client: client}
}
