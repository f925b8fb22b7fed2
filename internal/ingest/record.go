// Package ingest holds the CSV record parser shared by both ingestion
// pipelines and the asynchronous pipeline itself, which overlaps CSV
// parsing with ledger mutation across a producer/consumer channel. The
// synchronous pipeline's read loop is engine.ReadAndProcess.
//
// In the async pipeline, parsing runs on a sourcegraph/conc pool worker,
// and the producer/consumer pair is coordinated with
// golang.org/x/sync/errgroup so a producer failure cancels the consumer.
package ingest

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/nvogel/ledgerd/internal/ledger"
	"github.com/nvogel/ledgerd/internal/ledgererr"
	"github.com/nvogel/ledgerd/internal/money"
)

// Header is the required first row of an input stream.
var Header = []string{"type", "client", "tx", "amount"}

// ParseRecord decodes one CSV row (after the header) into a
// Transaction, per the grammar: <kind>,<u16>,<u32>,[<decimal>].
// Whitespace around every field is tolerated. Amount is required for
// deposit/withdrawal; for the other three kinds it may be empty, and a
// non-empty value is ignored.
func ParseRecord(fields []string) (ledger.Transaction, error) {
	if len(fields) != len(Header) {
		return ledger.Transaction{}, errors.Newf("expected %d fields, got %d", len(Header), len(fields))
	}

	kindField := strings.TrimSpace(fields[0])
	kind, ok := ledger.ParseKind(kindField)
	if !ok {
		return ledger.Transaction{}, errors.Newf("unknown transaction kind %q", kindField)
	}

	client, err := parseClientId(fields[1])
	if err != nil {
		return ledger.Transaction{}, err
	}
	tx, err := parseTransactionId(fields[2])
	if err != nil {
		return ledger.Transaction{}, err
	}

	amountField := strings.TrimSpace(fields[3])
	var amount money.Money
	hasAmount := false
	if kind.HasAmount() {
		if amountField == "" {
			return ledger.Transaction{}, ledgererr.ErrNoAmount
		}
		amount, err = money.ParseMoney(amountField)
		if err != nil {
			return ledger.Transaction{}, err
		}
		hasAmount = true
	} else if amountField != "" {
		// A stray amount on a dispute/resolve/chargeback row carries no
		// meaning and is simply ignored.
	}

	return ledger.Transaction{
		Kind: kind, Client: client, Tx: tx,
		Amount: amount, HasAmount: hasAmount, Disputed: false,
	}, nil
}

func parseClientId(s string) (ledger.ClientId, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "parsing client id %q", s), ledgererr.ErrInvalidClientId)
	}
	return ledger.ClientId(v), nil
}

func parseTransactionId(s string) (ledger.TransactionId, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing transaction id %q", s)
	}
	return ledger.TransactionId(v), nil
}
