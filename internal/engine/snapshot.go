package engine

import (
	"io"

	"github.com/nvogel/ledgerd/internal/snapshot"
)

// DumpAccounts writes every account as CSV rows (client,available,held,
// total,locked) to w. Row order follows shard iteration order, which is
// not guaranteed across runs.
func (e *Engine) DumpAccounts(w io.Writer) error {
	return snapshot.EncodeAccounts(w, e.accounts)
}

// DumpTransactionLog writes every logged transaction as CSV rows
// (type,client,tx,amount,disputed) to w.
func (e *Engine) DumpTransactionLog(w io.Writer) error {
	return snapshot.EncodeTransactionLog(w, e.log)
}

// LoadFromPreviousSession populates this Engine's maps directly from a
// prior accounts dump and transaction-log dump, bypassing every
// transition-level semantic check. The caller is responsible for trusting the input;
// this is a fast warm-start path, not a validating import.
func (e *Engine) LoadFromPreviousSession(accountsPath, logPath string) error {
	if err := snapshot.LoadAccountsFile(accountsPath, e.accounts); err != nil {
		return err
	}
	return snapshot.LoadTransactionLogFile(logPath, e.log)
}
