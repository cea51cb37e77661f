package wallet

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied to lazily created balances
const DefaultCurrency = "RUB"

// Common errors
var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrEscrowInsufficient = errors.New("insufficient funds on the survey account")
)

// Wallet is a per-user holding balance. Created lazily on the first
// financial operation; its balance never goes negative.
type Wallet struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"user_id"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// SurveyAccount is a per-survey escrow balance funded by the survey's
// creator and drained by respondent payouts. Same invariants as Wallet.
type SurveyAccount struct {
	ID       int64           `json:"id"`
	SurveyID int64           `json:"survey_id"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// CacheKey is the Redis key under which a user's wallet is cached
func CacheKey(userID int64) string {
	return fmt.Sprintf("wallet:user:%d", userID)
}
