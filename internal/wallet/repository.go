package wallet

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same queries can
// run standalone or inside an outer transfer transaction
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Repository handles wallet persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new wallet repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreate returns the user's wallet, creating an empty one if none
// exists yet
func (r *Repository) GetOrCreate(ctx context.Context, userID int64) (*Wallet, error) {
	return r.getOrCreate(ctx, r.db, userID)
}

// GetOrCreateTx is GetOrCreate inside an existing transaction
func (r *Repository) GetOrCreateTx(ctx context.Context, tx *sql.Tx, userID int64) (*Wallet, error) {
	return r.getOrCreate(ctx, tx, userID)
}

func (r *Repository) getOrCreate(ctx context.Context, q querier, userID int64) (*Wallet, error) {
	// Insert-if-absent first so two concurrent callers cannot both create
	_, err := q.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance, currency)
		VALUES ($1, 0, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, DefaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	w := &Wallet{}
	err = q.QueryRowContext(ctx, `
		SELECT id, user_id, balance, currency
		FROM wallets
		WHERE user_id = $1
	`, userID).Scan(&w.ID, &w.UserID, &w.Balance, &w.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return w, nil
}

// LockBalanceTx acquires an exclusive row lock on the wallet and returns
// the balance as currently committed. The lock is held until the enclosing
// transaction commits or rolls back.
func (r *Repository) LockBalanceTx(ctx context.Context, tx *sql.Tx, walletID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRowContext(ctx,
		`SELECT balance FROM wallets WHERE id = $1 FOR UPDATE`, walletID,
	).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return balance, nil
}

// SetBalanceTx persists a new balance for a wallet already locked by the
// enclosing transaction
func (r *Repository) SetBalanceTx(ctx context.Context, tx *sql.Tx, walletID int64, balance decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = $2 WHERE id = $1`, walletID, balance,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}
	return nil
}

// AccountRepository handles survey escrow account persistence
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new survey account repository
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetOrCreate returns the survey's escrow account, creating an empty one if
// the survey was never funded
func (r *AccountRepository) GetOrCreate(ctx context.Context, surveyID int64) (*SurveyAccount, error) {
	return r.getOrCreate(ctx, r.db, surveyID)
}

// GetOrCreateTx is GetOrCreate inside an existing transaction
func (r *AccountRepository) GetOrCreateTx(ctx context.Context, tx *sql.Tx, surveyID int64) (*SurveyAccount, error) {
	return r.getOrCreate(ctx, tx, surveyID)
}

func (r *AccountRepository) getOrCreate(ctx context.Context, q querier, surveyID int64) (*SurveyAccount, error) {
	_, err := q.ExecContext(ctx, `
		INSERT INTO survey_accounts (survey_id, balance, currency)
		VALUES ($1, 0, $2)
		ON CONFLICT (survey_id) DO NOTHING
	`, surveyID, DefaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create survey account: %w", err)
	}

	a := &SurveyAccount{}
	err = q.QueryRowContext(ctx, `
		SELECT id, survey_id, balance, currency
		FROM survey_accounts
		WHERE survey_id = $1
	`, surveyID).Scan(&a.ID, &a.SurveyID, &a.Balance, &a.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey account: %w", err)
	}

	return a, nil
}

// Get returns the survey's escrow account without creating it, or nil when
// the survey was never funded
func (r *AccountRepository) Get(ctx context.Context, surveyID int64) (*SurveyAccount, error) {
	a := &SurveyAccount{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, survey_id, balance, currency
		FROM survey_accounts
		WHERE survey_id = $1
	`, surveyID).Scan(&a.ID, &a.SurveyID, &a.Balance, &a.Currency)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get survey account: %w", err)
	}
	return a, nil
}

// LockBalanceTx acquires an exclusive row lock on the escrow account and
// returns the committed balance
func (r *AccountRepository) LockBalanceTx(ctx context.Context, tx *sql.Tx, accountID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRowContext(ctx,
		`SELECT balance FROM survey_accounts WHERE id = $1 FOR UPDATE`, accountID,
	).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock survey account: %w", err)
	}
	return balance, nil
}

// SetBalanceTx persists a new balance for an escrow account already locked
// by the enclosing transaction
func (r *AccountRepository) SetBalanceTx(ctx context.Context, tx *sql.Tx, accountID int64, balance decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE survey_accounts SET balance = $2 WHERE id = $1`, accountID, balance,
	)
	if err != nil {
		return fmt.Errorf("failed to update survey account balance: %w", err)
	}
	return nil
}
