package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sociowork/surveypay/internal/identity"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Repository handles ledger and payment persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new payment repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateTransaction inserts a new ledger entry
func (r *Repository) CreateTransaction(ctx context.Context, t *Transaction) error {
	return r.createTransaction(ctx, r.db, t)
}

// CreateTransactionTx is CreateTransaction inside an existing transaction
func (r *Repository) CreateTransactionTx(ctx context.Context, tx *sql.Tx, t *Transaction) error {
	return r.createTransaction(ctx, tx, t)
}

func (r *Repository) createTransaction(ctx context.Context, q querier, t *Transaction) error {
	if err := t.validate(); err != nil {
		return err
	}
	if t.Status == "" {
		t.Status = TransactionPending
	}

	query := `
		INSERT INTO payment_transactions
			(user_id, type, status, amount, currency, description,
			 related_survey_id, related_respondent_id, gateway_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING transaction_id, created_at
	`

	err := q.QueryRowContext(ctx, query,
		t.UserID, t.Type, t.Status, t.Amount, t.Currency, t.Description,
		t.RelatedSurveyID, t.RelatedRespondentID, t.GatewayData,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// MarkTransactionSuccessTx moves a pending ledger entry to its successful
// terminal status inside the transfer transaction, recording the
// processing time and gateway metadata
func (r *Repository) MarkTransactionSuccessTx(ctx context.Context, tx *sql.Tx, t *Transaction, gatewayData GatewayData) error {
	return r.markTransaction(ctx, tx, t, TransactionSuccess, gatewayData)
}

// MarkTransactionFailed moves a pending ledger entry to its failed terminal
// status
func (r *Repository) MarkTransactionFailed(ctx context.Context, t *Transaction, gatewayData GatewayData) error {
	return r.markTransaction(ctx, r.db, t, TransactionFailed, gatewayData)
}

func (r *Repository) markTransaction(ctx context.Context, q querier, t *Transaction, status TransactionStatus, gatewayData GatewayData) error {
	now := time.Now().UTC()
	if gatewayData == nil {
		gatewayData = t.GatewayData
	}

	_, err := q.ExecContext(ctx, `
		UPDATE payment_transactions
		SET status = $2, processed_at = $3, gateway_data = $4
		WHERE transaction_id = $1
	`, t.ID, status, now, gatewayData)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	t.Status = status
	t.ProcessedAt = &now
	t.GatewayData = gatewayData
	return nil
}

// HasSuccessfulPayout reports whether a successful payout already exists
// for the (survey, respondent) pair
func (r *Repository) HasSuccessfulPayout(ctx context.Context, surveyID, respondentID int64) (bool, error) {
	return r.hasSuccessfulPayout(ctx, r.db, surveyID, respondentID)
}

// HasSuccessfulPayoutTx re-runs the idempotency check inside the transfer
// transaction, after the escrow row lock has been acquired
func (r *Repository) HasSuccessfulPayoutTx(ctx context.Context, tx *sql.Tx, surveyID, respondentID int64) (bool, error) {
	return r.hasSuccessfulPayout(ctx, tx, surveyID, respondentID)
}

func (r *Repository) hasSuccessfulPayout(ctx context.Context, q querier, surveyID, respondentID int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payment_transactions
			WHERE type = 'payout'
			  AND status = 'success'
			  AND related_survey_id = $1
			  AND related_respondent_id = $2
		)
	`, surveyID, respondentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existing payout: %w", err)
	}
	return exists, nil
}

// ListForUser returns the transactions visible to the principal, newest
// first. Respondents see their own entries; customers additionally see
// entries tied to surveys they created; moderators see everything.
func (r *Repository) ListForUser(ctx context.Context, principal identity.Principal, limit, offset int) ([]*Transaction, int, error) {
	var filter string
	args := []interface{}{}

	switch principal.Role {
	case identity.RoleRespondent:
		filter = `WHERE user_id = $1`
		args = append(args, principal.UserID)
	case identity.RoleCustomer:
		filter = `
			WHERE user_id = $1
			   OR related_survey_id IN (SELECT id FROM surveys WHERE creator_id = $1)`
		args = append(args, principal.UserID)
	case identity.RoleModerator:
		filter = ``
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM payment_transactions ` + filter
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT transaction_id, user_id, type, status, amount, currency,
		       COALESCE(description, ''), related_survey_id, related_respondent_id,
		       gateway_data, created_at, processed_at
		FROM payment_transactions
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, filter, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		t := &Transaction{}
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.Status, &t.Amount, &t.Currency,
			&t.Description, &t.RelatedSurveyID, &t.RelatedRespondentID,
			&t.GatewayData, &t.CreatedAt, &t.ProcessedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	return transactions, total, rows.Err()
}

// CreatePayment inserts a new payment record in pending status
func (r *Repository) CreatePayment(ctx context.Context, p *Payment) error {
	return r.createPayment(ctx, r.db, p)
}

// CreatePaymentTx is CreatePayment inside an existing transaction
func (r *Repository) CreatePaymentTx(ctx context.Context, tx *sql.Tx, p *Payment) error {
	return r.createPayment(ctx, tx, p)
}

func (r *Repository) createPayment(ctx context.Context, q querier, p *Payment) error {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("payment amount must be positive")
	}
	if p.Status == "" {
		p.Status = PaymentPending
	}

	query := `
		INSERT INTO payments
			(survey_id, creator_id, respondent_id, amount, currency, status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		p.SurveyID, p.CreatorID, p.RespondentID, p.Amount, p.Currency, p.Status, p.Description,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// MarkPaymentSucceededTx records the gateway reference and moves the
// payment to succeeded inside an existing transaction
func (r *Repository) MarkPaymentSucceededTx(ctx context.Context, tx *sql.Tx, p *Payment, transactionRef string) error {
	now := time.Now().UTC()
	_, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET status = $2, transaction_ref = $3, paid_at = $4, updated_at = $4
		WHERE id = $1
	`, p.ID, PaymentSucceeded, transactionRef, now)
	if err != nil {
		return fmt.Errorf("failed to mark payment succeeded: %w", err)
	}

	p.Status = PaymentSucceeded
	p.TransactionRef = &transactionRef
	p.PaidAt = &now
	p.UpdatedAt = now
	return nil
}

// MarkPaymentFailed records why a payment did not go through
func (r *Repository) MarkPaymentFailed(ctx context.Context, p *Payment, reason string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $2, description = $3, updated_at = $4
		WHERE id = $1
	`, p.ID, PaymentFailed, reason, now)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}

	p.Status = PaymentFailed
	p.Description = reason
	p.UpdatedAt = now
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation. The partial unique indexes on successful payouts are the
// storage-layer backstop for the idempotency guard.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
