package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvogel/ledgerd/internal/ingest"
	"github.com/nvogel/ledgerd/internal/ledger"
	"github.com/nvogel/ledgerd/internal/ledgererr"
)

func TestParseRecordDeposit(t *testing.T) {
	tx, err := ingest.ParseRecord([]string{"deposit", "1", "1", "10.5"})
	require.NoError(t, err)
	assert.Equal(t, ledger.Deposit, tx.Kind)
	assert.Equal(t, ledger.ClientId(1), tx.Client)
	assert.Equal(t, ledger.TransactionId(1), tx.Tx)
	assert.True(t, tx.HasAmount)
	assert.Equal(t, "10.5", tx.Amount.String())
}

func TestParseRecordTrimsWhitespace(t *testing.T) {
	tx, err := ingest.ParseRecord([]string{" deposit", " 1", " 1", " 10.5 "})
	require.NoError(t, err)
	assert.Equal(t, ledger.Deposit, tx.Kind)
}

func TestParseRecordDisputeHasNoAmount(t *testing.T) {
	tx, err := ingest.ParseRecord([]string{"dispute", "1", "1", ""})
	require.NoError(t, err)
	assert.False(t, tx.HasAmount)
}

func TestParseRecordStrayAmountOnDisputeIsIgnored(t *testing.T) {
	tx, err := ingest.ParseRecord([]string{"dispute", "1", "1", "99.0"})
	require.NoError(t, err)
	assert.False(t, tx.HasAmount)
}

func TestParseRecordDepositMissingAmountFails(t *testing.T) {
	_, err := ingest.ParseRecord([]string{"deposit", "1", "1", ""})
	assert.ErrorIs(t, err, ledgererr.ErrNoAmount)
}

func TestParseRecordUnknownKindFails(t *testing.T) {
	_, err := ingest.ParseRecord([]string{"transfer", "1", "1", "10"})
	assert.Error(t, err)
}

func TestParseRecordWrongFieldCountFails(t *testing.T) {
	_, err := ingest.ParseRecord([]string{"deposit", "1", "1"})
	assert.Error(t, err)
}

func TestParseRecordInvalidClientIdFails(t *testing.T) {
	_, err := ingest.ParseRecord([]string{"deposit", "notanumber", "1", "10"})
	assert.ErrorIs(t, err, ledgererr.ErrInvalidClientId)
}
