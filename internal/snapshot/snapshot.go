// Package snapshot implements the two CSV forms the engine can dump and
// reload: an accounts dump (client,available,held,total,locked) and a
// transaction-log dump (type,client,tx,amount,disputed). The format is
// fixed at the text level, so this package is one of the few places in
// the module that reaches for the standard library's encoding/csv
// instead of a third-party codec — there is no serialization variant
// to choose here, just this exact grammar.
package snapshot

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/nvogel/ledgerd/internal/ledger"
	"github.com/nvogel/ledgerd/internal/ledgererr"
	"github.com/nvogel/ledgerd/internal/money"
	"github.com/nvogel/ledgerd/internal/shardmap"
)

// AccountsHeader is the header row of an accounts dump.
var AccountsHeader = []string{"client", "available", "held", "total", "locked"}

// TransactionLogHeader is the header row of a transaction-log dump.
var TransactionLogHeader = []string{"type", "client", "tx", "amount", "disputed"}

// EncodeAccounts writes every account in accounts as CSV to w, one row
// per account, in shard iteration order.
func EncodeAccounts(w io.Writer, accounts *shardmap.Map[ledger.ClientId, ledger.Account]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AccountsHeader); err != nil {
		return errors.Wrap(err, "writing accounts header")
	}

	var writeErr error
	accounts.ForEach(func(_ ledger.ClientId, acct ledger.Account) bool {
		row := []string{
			strconv.FormatUint(uint64(acct.Client), 10),
			acct.Available.String(),
			acct.Held.String(),
			acct.Total.String(),
			strconv.FormatBool(acct.Locked),
		}
		if err := cw.Write(row); err != nil {
			writeErr = errors.Wrap(err, "writing account row")
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing accounts dump")
}

// EncodeTransactionLog writes every record in log as CSV to w, one row
// per transaction, in shard iteration order.
func EncodeTransactionLog(w io.Writer, log *shardmap.Map[ledger.TransactionId, ledger.Transaction]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TransactionLogHeader); err != nil {
		return errors.Wrap(err, "writing transaction log header")
	}

	var writeErr error
	log.ForEach(func(_ ledger.TransactionId, tx ledger.Transaction) bool {
		amount := ""
		if tx.HasAmount {
			amount = tx.Amount.String()
		}
		row := []string{
			tx.Kind.String(),
			strconv.FormatUint(uint64(tx.Client), 10),
			strconv.FormatUint(uint64(tx.Tx), 10),
			amount,
			strconv.FormatBool(tx.Disputed),
		}
		if err := cw.Write(row); err != nil {
			writeErr = errors.Wrap(err, "writing transaction log row")
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing transaction log dump")
}

// DecodeAccounts reads an accounts dump from r and inserts every row
// directly into accounts, bypassing every engine-level semantic check.
func DecodeAccounts(r io.Reader, accounts *shardmap.Map[ledger.ClientId, ledger.Account]) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(AccountsHeader)

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "reading accounts header")
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading account row")
		}

		client, err := parseClientId(row[0])
		if err != nil {
			return err
		}
		available, err := money.ParseMoney(row[1])
		if err != nil {
			return err
		}
		held, err := money.ParseMoney(row[2])
		if err != nil {
			return err
		}
		total, err := money.ParseMoney(row[3])
		if err != nil {
			return err
		}
		locked, err := parseBool(row[4])
		if err != nil {
			return err
		}

		accounts.Put(client, ledger.Account{
			Client: client, Available: available, Held: held, Total: total, Locked: locked,
		})
	}
}

// DecodeTransactionLog reads a transaction-log dump from r and inserts
// every row directly into log, bypassing every engine-level semantic
// check.
func DecodeTransactionLog(r io.Reader, log *shardmap.Map[ledger.TransactionId, ledger.Transaction]) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(TransactionLogHeader)

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "reading transaction log header")
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading transaction log row")
		}

		kind, ok := ledger.ParseKind(row[0])
		if !ok {
			return errors.Newf("unknown transaction kind %q in transaction log dump", row[0])
		}
		client, err := parseClientId(row[1])
		if err != nil {
			return err
		}
		txID, err := parseTransactionId(row[2])
		if err != nil {
			return err
		}
		var amount money.Money
		hasAmount := row[3] != ""
		if hasAmount {
			amount, err = money.ParseMoney(row[3])
			if err != nil {
				return err
			}
		}
		disputed, err := parseBool(row[4])
		if err != nil {
			return err
		}

		log.Put(txID, ledger.Transaction{
			Kind: kind, Client: client, Tx: txID,
			Amount: amount, HasAmount: hasAmount, Disputed: disputed,
		})
	}
}

// LoadAccountsFile opens path and decodes it as an accounts dump into accounts.
func LoadAccountsFile(path string, accounts *shardmap.Map[ledger.ClientId, ledger.Account]) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening accounts snapshot")
	}
	defer f.Close()
	return DecodeAccounts(f, accounts)
}

// LoadTransactionLogFile opens path and decodes it as a transaction-log
// dump into log.
func LoadTransactionLogFile(path string, log *shardmap.Map[ledger.TransactionId, ledger.Transaction]) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening transaction log snapshot")
	}
	defer f.Close()
	return DecodeTransactionLog(f, log)
}

func parseClientId(s string) (ledger.ClientId, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "parsing client id %q", s), ledgererr.ErrInvalidClientId)
	}
	return ledger.ClientId(v), nil
}

func parseTransactionId(s string) (ledger.TransactionId, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing transaction id %q", s)
	}
	return ledger.TransactionId(v), nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, errors.Mark(errors.Newf("invalid boolean literal %q", s), ledgererr.ErrInvalidBool)
	}
}
