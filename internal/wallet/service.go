package wallet

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// Service implements the ledger primitives. Every balance mutation is a
// lock → re-read → compute → write sequence; transfers spanning a wallet
// and an escrow account run both legs through the Tx variants under one
// outer transaction so partial failure rolls back both sides.
type Service struct {
	db       *sql.DB
	wallets  *Repository
	accounts *AccountRepository
}

// NewService creates a new wallet service
func NewService(db *sql.DB, wallets *Repository, accounts *AccountRepository) *Service {
	return &Service{
		db:       db,
		wallets:  wallets,
		accounts: accounts,
	}
}

// Balance returns the user's wallet, creating it on first use
func (s *Service) Balance(ctx context.Context, userID int64) (*Wallet, error) {
	return s.wallets.GetOrCreate(ctx, userID)
}

// EscrowBalance returns the survey's escrow account, or nil when the survey
// was never funded
func (s *Service) EscrowBalance(ctx context.Context, surveyID int64) (*SurveyAccount, error) {
	return s.accounts.Get(ctx, surveyID)
}

// DepositTx credits a user's wallet inside an existing transaction
func (s *Service) DepositTx(ctx context.Context, tx *sql.Tx, userID int64, amount decimal.Decimal) (*Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	w, err := s.wallets.GetOrCreateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	balance, err := s.wallets.LockBalanceTx(ctx, tx, w.ID)
	if err != nil {
		return nil, err
	}

	w.Balance = balance.Add(amount)
	if err := s.wallets.SetBalanceTx(ctx, tx, w.ID, w.Balance); err != nil {
		return nil, err
	}

	return w, nil
}

// WithdrawTx debits a user's wallet inside an existing transaction. The
// balance is left unchanged when funds are insufficient.
func (s *Service) WithdrawTx(ctx context.Context, tx *sql.Tx, userID int64, amount decimal.Decimal) (*Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	w, err := s.wallets.GetOrCreateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	balance, err := s.wallets.LockBalanceTx(ctx, tx, w.ID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	w.Balance = balance.Sub(amount)
	if err := s.wallets.SetBalanceTx(ctx, tx, w.ID, w.Balance); err != nil {
		return nil, err
	}

	return w, nil
}

// EscrowDepositTx credits a survey's escrow account inside an existing
// transaction
func (s *Service) EscrowDepositTx(ctx context.Context, tx *sql.Tx, surveyID int64, amount decimal.Decimal) (*SurveyAccount, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	a, err := s.accounts.GetOrCreateTx(ctx, tx, surveyID)
	if err != nil {
		return nil, err
	}

	balance, err := s.accounts.LockBalanceTx(ctx, tx, a.ID)
	if err != nil {
		return nil, err
	}

	a.Balance = balance.Add(amount)
	if err := s.accounts.SetBalanceTx(ctx, tx, a.ID, a.Balance); err != nil {
		return nil, err
	}

	return a, nil
}

// EscrowWithdrawTx debits a survey's escrow account inside an existing
// transaction. Fails with ErrEscrowInsufficient when the locked balance is
// below the requested amount.
func (s *Service) EscrowWithdrawTx(ctx context.Context, tx *sql.Tx, surveyID int64, amount decimal.Decimal) (*SurveyAccount, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	a, err := s.accounts.GetOrCreateTx(ctx, tx, surveyID)
	if err != nil {
		return nil, err
	}

	balance, err := s.accounts.LockBalanceTx(ctx, tx, a.ID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(amount) {
		return nil, ErrEscrowInsufficient
	}

	a.Balance = balance.Sub(amount)
	if err := s.accounts.SetBalanceTx(ctx, tx, a.ID, a.Balance); err != nil {
		return nil, err
	}

	return a, nil
}

// Deposit credits a user's wallet in its own transaction
func (s *Service) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*Wallet, error) {
	var w *Wallet
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		w, err = s.DepositTx(ctx, tx, userID, amount)
		return err
	})
	return w, err
}

// Withdraw debits a user's wallet in its own transaction
func (s *Service) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (*Wallet, error) {
	var w *Wallet
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		w, err = s.WithdrawTx(ctx, tx, userID, amount)
		return err
	})
	return w, err
}

// inTx runs fn inside a transaction, rolling back on error
func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
