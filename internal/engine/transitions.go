package engine

import (
	"github.com/nvogel/ledgerd/internal/ledger"
	"github.com/nvogel/ledgerd/internal/ledgererr"
	"github.com/nvogel/ledgerd/internal/money"
)

// Process validates and applies a single transaction, exactly as the
// transaction kind's rules require. A failed validation leaves all
// state untouched and returns one of the sentinel errors in
// internal/ledgererr; success mutates the referenced account atomically
// under that account's shard lock and then, for Deposit/Withdrawal/
// Dispute/Resolve, writes the transaction log record under the log
// shard's lock.
//
// Touching two stores (accounts and log) always happens in the same
// order: the accounts shard mutates first, the log shard second, and the
// account lock is released before the log lock is taken. No transition
// ever holds two shard locks at once, so none can deadlock, and no
// global lock is needed.
func (e *Engine) Process(tx ledger.Transaction) error {
	switch tx.Kind {
	case ledger.Deposit:
		return e.processDeposit(tx)
	case ledger.Withdrawal:
		return e.processWithdrawal(tx)
	case ledger.Dispute:
		return e.processDispute(tx)
	case ledger.Resolve:
		return e.processResolve(tx)
	case ledger.Chargeback:
		return e.processChargeback(tx)
	default:
		return ledgererr.ErrTransactionNotFound
	}
}

// preflightLocked checks the account-locked precondition shared by every
// kind: if the target account exists and is already locked, the
// transaction fails AccountLocked regardless of its own checks. This is
// a point-in-time read; the authoritative check still happens inside the account's
// Update closure below, since a concurrent transaction could lock the
// account between this read and the mutation.
func (e *Engine) preflightLocked(client ledger.ClientId) error {
	if acct, ok := e.accounts.Get(client); ok && acct.Locked {
		return ledgererr.ErrAccountLocked
	}
	return nil
}

func (e *Engine) processDeposit(tx ledger.Transaction) error {
	if err := e.preflightLocked(tx.Client); err != nil {
		return err
	}
	if !tx.Amount.IsPositive() {
		return ledgererr.ErrDepositAmountInvalid
	}
	if e.log.Contains(tx.Tx) {
		return ledgererr.ErrTransactionRepeated
	}

	err := e.accounts.Update(tx.Client, func(acct ledger.Account, ok bool) (ledger.Account, bool, error) {
		if !ok {
			acct = ledger.NewAccount(tx.Client)
		}
		if acct.Locked {
			return acct, false, ledgererr.ErrAccountLocked
		}
		available, err := acct.Available.Add(tx.Amount)
		if err != nil {
			return acct, false, err
		}
		total, err := acct.Total.Add(tx.Amount)
		if err != nil {
			return acct, false, err
		}
		acct.Available = available
		acct.Total = total
		return acct, true, nil
	})
	if err != nil {
		return err
	}

	e.log.Put(tx.Tx, ledger.Transaction{
		Kind: ledger.Deposit, Client: tx.Client, Tx: tx.Tx,
		Amount: tx.Amount, HasAmount: true, Disputed: false,
	})
	return nil
}

func (e *Engine) processWithdrawal(tx ledger.Transaction) error {
	if err := e.preflightLocked(tx.Client); err != nil {
		return err
	}
	if !tx.Amount.IsPositive() {
		return ledgererr.ErrWithdrawalAmountInvalid
	}
	if !e.accounts.Contains(tx.Client) {
		return ledgererr.ErrAccountNotFound
	}
	if e.log.Contains(tx.Tx) {
		return ledgererr.ErrTransactionRepeated
	}

	err := e.accounts.Update(tx.Client, func(acct ledger.Account, ok bool) (ledger.Account, bool, error) {
		if !ok {
			return acct, false, ledgererr.ErrAccountNotFound
		}
		if acct.Locked {
			return acct, false, ledgererr.ErrAccountLocked
		}
		if acct.Available.Cmp(tx.Amount) < 0 {
			return acct, false, ledgererr.ErrInsufficientFunds
		}
		available, err := acct.Available.Sub(tx.Amount)
		if err != nil {
			return acct, false, err
		}
		total, err := acct.Total.Sub(tx.Amount)
		if err != nil {
			return acct, false, err
		}
		acct.Available = available
		acct.Total = total
		return acct, true, nil
	})
	if err != nil {
		return err
	}

	e.log.Put(tx.Tx, ledger.Transaction{
		Kind: ledger.Withdrawal, Client: tx.Client, Tx: tx.Tx,
		Amount: tx.Amount, HasAmount: true, Disputed: false,
	})
	return nil
}

// processDispute applies the referenced transaction's reverse effect on
// available/held, and marks it disputed.
func (e *Engine) processDispute(tx ledger.Transaction) error {
	if err := e.preflightLocked(tx.Client); err != nil {
		return err
	}
	logged, amount, err := e.lookupDisputable(tx, false)
	if err != nil {
		return err
	}

	if err := e.accounts.Update(tx.Client, func(acct ledger.Account, ok bool) (ledger.Account, bool, error) {
		if !ok {
			return acct, false, ledgererr.ErrAccountNotFound
		}
		if acct.Locked {
			return acct, false, ledgererr.ErrAccountLocked
		}
		return applyDispute(acct, logged.Kind, amount)
	}); err != nil {
		return err
	}

	e.log.Put(tx.Tx, withDisputed(logged, true))
	return nil
}

// processResolve is the inverse of Dispute, restoring available/held
// without financial effect.
func (e *Engine) processResolve(tx ledger.Transaction) error {
	if err := e.preflightLocked(tx.Client); err != nil {
		return err
	}
	logged, amount, err := e.lookupDisputable(tx, true)
	if err != nil {
		return err
	}

	if err := e.accounts.Update(tx.Client, func(acct ledger.Account, ok bool) (ledger.Account, bool, error) {
		if !ok {
			return acct, false, ledgererr.ErrAccountNotFound
		}
		if acct.Locked {
			return acct, false, ledgererr.ErrAccountLocked
		}
		return applyResolve(acct, logged.Kind, amount)
	}); err != nil {
		return err
	}

	e.log.Put(tx.Tx, withDisputed(logged, false))
	return nil
}

// processChargeback is the terminal outcome. The account is locked and its disputed record
// stays frozen with disputed=true, so the log entry itself is left
// untouched here.
func (e *Engine) processChargeback(tx ledger.Transaction) error {
	if err := e.preflightLocked(tx.Client); err != nil {
		return err
	}
	logged, amount, err := e.lookupDisputable(tx, true)
	if err != nil {
		return err
	}

	return e.accounts.Update(tx.Client, func(acct ledger.Account, ok bool) (ledger.Account, bool, error) {
		if !ok {
			return acct, false, ledgererr.ErrAccountNotFound
		}
		if acct.Locked {
			return acct, false, ledgererr.ErrAccountLocked
		}
		next, store, err := applyChargeback(acct, logged.Kind, amount)
		if err != nil {
			return acct, false, err
		}
		next.Locked = true
		return next, store, nil
	})
}

// lookupDisputable resolves and validates the transaction log record a
// Dispute/Resolve/Chargeback refers to, in the exact check order the
// referencing-transaction rules specify: existence, same client,
// correct disputed state, a referenced account, and finally a present
// amount.
func (e *Engine) lookupDisputable(tx ledger.Transaction, wantDisputed bool) (ledger.Transaction, money.Money, error) {
	logged, ok := e.log.Get(tx.Tx)
	if !ok {
		return ledger.Transaction{}, 0, ledgererr.ErrTransactionNotFound
	}
	if logged.Client != tx.Client {
		return ledger.Transaction{}, 0, ledgererr.ErrDifferentClient
	}
	if logged.Disputed != wantDisputed {
		if wantDisputed {
			return ledger.Transaction{}, 0, ledgererr.ErrTransactionNotDisputed
		}
		return ledger.Transaction{}, 0, ledgererr.ErrTransactionAlreadyDisputed
	}
	if !e.accounts.Contains(tx.Client) {
		return ledger.Transaction{}, 0, ledgererr.ErrAccountNotFound
	}
	if !logged.HasAmount {
		return ledger.Transaction{}, 0, ledgererr.ErrNoAmount
	}
	return logged, logged.Amount, nil
}

func withDisputed(tx ledger.Transaction, disputed bool) ledger.Transaction {
	tx.Disputed = disputed
	return tx
}

// applyDispute computes the Dispute effect for the given originating
// kind: a Deposit dispute moves funds from available into
// held; a Withdrawal dispute moves them back, which may drive held
// negative.
func applyDispute(acct ledger.Account, originalKind ledger.Kind, amount money.Money) (ledger.Account, bool, error) {
	var err error
	switch originalKind {
	case ledger.Deposit:
		acct.Available, err = acct.Available.Sub(amount)
		if err != nil {
			return acct, false, err
		}
		acct.Held, err = acct.Held.Add(amount)
	case ledger.Withdrawal:
		acct.Available, err = acct.Available.Add(amount)
		if err != nil {
			return acct, false, err
		}
		acct.Held, err = acct.Held.Sub(amount)
	}
	if err != nil {
		return acct, false, err
	}
	return acct, true, nil
}

// applyResolve inverts applyDispute.
func applyResolve(acct ledger.Account, originalKind ledger.Kind, amount money.Money) (ledger.Account, bool, error) {
	var err error
	switch originalKind {
	case ledger.Deposit:
		acct.Available, err = acct.Available.Add(amount)
		if err != nil {
			return acct, false, err
		}
		acct.Held, err = acct.Held.Sub(amount)
	case ledger.Withdrawal:
		acct.Available, err = acct.Available.Sub(amount)
		if err != nil {
			return acct, false, err
		}
		acct.Held, err = acct.Held.Add(amount)
	}
	if err != nil {
		return acct, false, err
	}
	return acct, true, nil
}

// applyChargeback computes the terminal effect: for a disputed deposit,
// the held funds are destroyed (total shrinks); for a disputed
// withdrawal, the held funds are restored to total (the withdrawal is
// undone financially). available is never touched here.
func applyChargeback(acct ledger.Account, originalKind ledger.Kind, amount money.Money) (ledger.Account, bool, error) {
	var err error
	switch originalKind {
	case ledger.Deposit:
		acct.Held, err = acct.Held.Sub(amount)
		if err != nil {
			return acct, false, err
		}
		acct.Total, err = acct.Total.Sub(amount)
	case ledger.Withdrawal:
		acct.Held, err = acct.Held.Add(amount)
		if err != nil {
			return acct, false, err
		}
		acct.Total, err = acct.Total.Add(amount)
	}
	if err != nil {
		return acct, false, err
	}
	return acct, true, nil
}
