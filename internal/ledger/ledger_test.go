package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nvogel/ledgerd/internal/ledger"
)

func TestParseKind(t *testing.T) {
	cases := map[string]ledger.Kind{
		"deposit":    ledger.Deposit,
		"Withdrawal": ledger.Withdrawal,
		" dispute ":  ledger.Dispute,
		"RESOLVE":    ledger.Resolve,
		"chargeback": ledger.Chargeback,
	}
	for input, want := range cases {
		got, ok := ledger.ParseKind(input)
		assert.True(t, ok, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, ok := ledger.ParseKind("transfer")
	assert.False(t, ok)
}

func TestKindHasAmount(t *testing.T) {
	assert.True(t, ledger.Deposit.HasAmount())
	assert.True(t, ledger.Withdrawal.HasAmount())
	assert.False(t, ledger.Dispute.HasAmount())
	assert.False(t, ledger.Resolve.HasAmount())
	assert.False(t, ledger.Chargeback.HasAmount())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "deposit", ledger.Deposit.String())
	assert.Equal(t, "chargeback", ledger.Chargeback.String())
}

func TestNewAccount(t *testing.T) {
	acct := ledger.NewAccount(42)
	assert.Equal(t, ledger.ClientId(42), acct.Client)
	assert.True(t, acct.Available.IsZero())
	assert.True(t, acct.Held.IsZero())
	assert.True(t, acct.Total.IsZero())
	assert.False(t, acct.Locked)
}
