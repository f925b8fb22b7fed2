package snapshot_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvogel/ledgerd/internal/ledger"
	"github.com/nvogel/ledgerd/internal/ledgererr"
	"github.com/nvogel/ledgerd/internal/money"
	"github.com/nvogel/ledgerd/internal/shardmap"
	"github.com/nvogel/ledgerd/internal/snapshot"
)

func mustMoney(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.ParseMoney(s)
	require.NoError(t, err)
	return m
}

func TestAccountsRoundTrip(t *testing.T) {
	accounts := shardmap.New[ledger.ClientId, ledger.Account](4)
	accounts.Put(1, ledger.Account{Client: 1, Available: mustMoney(t, "10.5"), Held: mustMoney(t, "-2.25"), Total: mustMoney(t, "8.25"), Locked: false})
	accounts.Put(2, ledger.Account{Client: 2, Available: mustMoney(t, "0"), Held: mustMoney(t, "0"), Total: mustMoney(t, "0"), Locked: true})

	var buf strings.Builder
	require.NoError(t, snapshot.EncodeAccounts(&buf, accounts))

	loaded := shardmap.New[ledger.ClientId, ledger.Account](4)
	require.NoError(t, snapshot.DecodeAccounts(strings.NewReader(buf.String()), loaded))

	assert.Equal(t, 2, loaded.Len())
	a1, ok := loaded.Get(1)
	require.True(t, ok)
	assert.Equal(t, "10.5", a1.Available.String())
	assert.Equal(t, "-2.25", a1.Held.String())
	assert.False(t, a1.Locked)

	a2, ok := loaded.Get(2)
	require.True(t, ok)
	assert.True(t, a2.Locked)
}

func TestTransactionLogRoundTrip(t *testing.T) {
	log := shardmap.New[ledger.TransactionId, ledger.Transaction](4)
	log.Put(1, ledger.Transaction{Kind: ledger.Deposit, Client: 1, Tx: 1, Amount: mustMoney(t, "5.0"), HasAmount: true, Disputed: false})
	log.Put(2, ledger.Transaction{Kind: ledger.Withdrawal, Client: 1, Tx: 2, Amount: mustMoney(t, "1.0"), HasAmount: true, Disputed: true})

	var buf strings.Builder
	require.NoError(t, snapshot.EncodeTransactionLog(&buf, log))

	loaded := shardmap.New[ledger.TransactionId, ledger.Transaction](4)
	require.NoError(t, snapshot.DecodeTransactionLog(strings.NewReader(buf.String()), loaded))

	assert.Equal(t, 2, loaded.Len())
	tx1, ok := loaded.Get(1)
	require.True(t, ok)
	assert.Equal(t, ledger.Deposit, tx1.Kind)
	assert.True(t, tx1.HasAmount)
	assert.False(t, tx1.Disputed)

	tx2, ok := loaded.Get(2)
	require.True(t, ok)
	assert.True(t, tx2.Disputed)
}

func TestEncodeAccountsHeader(t *testing.T) {
	accounts := shardmap.New[ledger.ClientId, ledger.Account](4)
	var buf strings.Builder
	require.NoError(t, snapshot.EncodeAccounts(&buf, accounts))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

func TestDecodeAccountsRejectsInvalidBool(t *testing.T) {
	accounts := shardmap.New[ledger.ClientId, ledger.Account](4)
	input := "client,available,held,total,locked\n1,10,0,10,maybe\n"
	err := snapshot.DecodeAccounts(strings.NewReader(input), accounts)
	assert.ErrorIs(t, err, ledgererr.ErrInvalidBool)
}

func TestDecodeAccountsRejectsInvalidClientId(t *testing.T) {
	accounts := shardmap.New[ledger.ClientId, ledger.Account](4)
	input := "client,available,held,total,locked\nabc,10,0,10,false\n"
	err := snapshot.DecodeAccounts(strings.NewReader(input), accounts)
	assert.ErrorIs(t, err, ledgererr.ErrInvalidClientId)
}

func TestDecodeTransactionLogRejectsUnknownKind(t *testing.T) {
	log := shardmap.New[ledger.TransactionId, ledger.Transaction](4)
	input := "type,client,tx,amount,disputed\ntransfer,1,1,10,false\n"
	err := snapshot.DecodeTransactionLog(strings.NewReader(input), log)
	assert.Error(t, err)
}

func TestDecodeTransactionLogTreatsEmptyAmountAsAbsent(t *testing.T) {
	log := shardmap.New[ledger.TransactionId, ledger.Transaction](4)
	input := "type,client,tx,amount,disputed\ndispute,1,1,,true\n"
	require.NoError(t, snapshot.DecodeTransactionLog(strings.NewReader(input), log))

	tx, ok := log.Get(1)
	require.True(t, ok)
	assert.False(t, tx.HasAmount)
}

func TestDecodeEmptyInputIsNoOp(t *testing.T) {
	accounts := shardmap.New[ledger.ClientId, ledger.Account](4)
	require.NoError(t, snapshot.DecodeAccounts(strings.NewReader(""), accounts))
	assert.Equal(t, 0, accounts.Len())
}
