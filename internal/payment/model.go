package payment

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Common errors. Precondition failures are detected before any mutation and
// never leave partial state behind.
var (
	ErrSurveyNotFound     = errors.New("survey not found")
	ErrForbidden          = errors.New("operation is not permitted for this user")
	ErrNotParticipant     = errors.New("respondent did not participate in this survey")
	ErrSurveyNotCompleted = errors.New("survey must be completed before payout")
	ErrMissingCost        = errors.New("survey has no resolved payout price")
	ErrMissingCapacity    = errors.New("survey has no positive participant capacity")
	ErrAlreadyPaid        = errors.New("payout for this survey and respondent was already made")
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionTopUp      TransactionType = "topup"
	TransactionWithdraw   TransactionType = "withdraw"
	TransactionPayout     TransactionType = "payout"
	TransactionCommission TransactionType = "commission"
	TransactionRefund     TransactionType = "refund"
)

// TransactionStatus is the lifecycle status of a ledger entry
type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending"
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
)

// GatewayData is free-form gateway metadata stored as JSONB
type GatewayData map[string]interface{}

// Value implements driver.Valuer
func (g GatewayData) Value() (driver.Value, error) {
	if g == nil {
		return nil, nil
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner
func (g *GatewayData) Scan(src interface{}) error {
	if src == nil {
		*g = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected gateway data type %T", src)
	}
	return json.Unmarshal(b, g)
}

// Transaction is an append-mostly ledger entry. Rows are created pending
// and move to a terminal status exactly once; they are never deleted. At
// most one successful payout may exist per (survey, respondent) pair.
type Transaction struct {
	ID                  int64             `json:"transaction_id"`
	UserID              int64             `json:"user_id"`
	Type                TransactionType   `json:"type"`
	Status              TransactionStatus `json:"status"`
	Amount              decimal.Decimal   `json:"amount"`
	Currency            string            `json:"currency"`
	Description         string            `json:"description,omitempty"`
	RelatedSurveyID     *int64            `json:"related_survey_id,omitempty"`
	RelatedRespondentID *int64            `json:"related_respondent_id,omitempty"`
	GatewayData         GatewayData       `json:"gateway_data,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	ProcessedAt         *time.Time        `json:"processed_at,omitempty"`
}

// validate enforces creation-time invariants
func (t *Transaction) validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction amount must be positive")
	}
	return nil
}

// PaymentStatus is the lifecycle status of a Payment record
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment ties a survey, its creator and a respondent to one payout
// amount. At most one succeeded payment may exist per (survey, respondent).
type Payment struct {
	ID             int64           `json:"id"`
	SurveyID       int64           `json:"survey_id"`
	CreatorID      int64           `json:"creator_id"`
	RespondentID   int64           `json:"respondent_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Status         PaymentStatus   `json:"status"`
	TransactionRef *string         `json:"transaction_ref,omitempty"`
	Description    string          `json:"description,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
}
