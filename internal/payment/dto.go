package payment

import (
	"github.com/shopspring/decimal"

	"github.com/sociowork/surveypay/internal/wallet"
)

// TopUpRequest represents a wallet top-up request
type TopUpRequest struct {
	Amount string `json:"amount"`
}

// WithdrawRequest represents a wallet withdrawal request
type WithdrawRequest struct {
	Amount      string `json:"amount"`
	Destination string `json:"destination,omitempty"`
}

// CalculateCostRequest represents a cost calculation request
type CalculateCostRequest struct {
	SurveyID int64 `json:"survey_id"`
}

// FundSurveyRequest represents a survey funding request
type FundSurveyRequest struct {
	SurveyID int64  `json:"survey_id"`
	Amount   string `json:"amount"`
}

// PayoutRequest represents a respondent payout request
type PayoutRequest struct {
	SurveyID int64 `json:"survey_id"`
}

// parseAmount parses a decimal amount string and requires it positive
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, wallet.ErrInvalidAmount
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, wallet.ErrInvalidAmount
	}
	return amount, nil
}

// TransactionResponse represents a ledger entry returned to clients
type TransactionResponse struct {
	ID                  int64       `json:"transaction_id"`
	UserID              int64       `json:"user_id"`
	Type                string      `json:"type"`
	Status              string      `json:"status"`
	Amount              string      `json:"amount"`
	Currency            string      `json:"currency"`
	Description         string      `json:"description,omitempty"`
	RelatedSurveyID     *int64      `json:"related_survey_id,omitempty"`
	RelatedRespondentID *int64      `json:"related_respondent_id,omitempty"`
	GatewayData         GatewayData `json:"gateway_data,omitempty"`
	CreatedAt           string      `json:"created_at"`
	ProcessedAt         *string     `json:"processed_at,omitempty"`
}

// ToResponse converts a Transaction to its API representation
func (t *Transaction) ToResponse() *TransactionResponse {
	resp := &TransactionResponse{
		ID:                  t.ID,
		UserID:              t.UserID,
		Type:                string(t.Type),
		Status:              string(t.Status),
		Amount:              t.Amount.StringFixed(2),
		Currency:            t.Currency,
		Description:         t.Description,
		RelatedSurveyID:     t.RelatedSurveyID,
		RelatedRespondentID: t.RelatedRespondentID,
		GatewayData:         t.GatewayData,
		CreatedAt:           t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if t.ProcessedAt != nil {
		p := t.ProcessedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.ProcessedAt = &p
	}
	return resp
}

// CostEstimateResponse represents a cost calculation result
type CostEstimateResponse struct {
	SurveyID         int64  `json:"survey_id"`
	QuestionCount    int    `json:"question_count"`
	PricePerResponse string `json:"price_per_response"`
	TotalBudget      string `json:"total_budget"`
}

// ToResponse converts a CostEstimate to its API representation
func (e *CostEstimate) ToResponse() *CostEstimateResponse {
	return &CostEstimateResponse{
		SurveyID:         e.SurveyID,
		QuestionCount:    e.QuestionCount,
		PricePerResponse: e.PricePerResponse.StringFixed(2),
		TotalBudget:      e.TotalBudget.StringFixed(2),
	}
}

// FundingResponse represents a survey funding result
type FundingResponse struct {
	SurveyID      int64  `json:"survey_id"`
	Gross         string `json:"gross"`
	Net           string `json:"net"`
	Commission    string `json:"commission"`
	EscrowBalance string `json:"escrow_balance"`
}

// ToResponse converts a FundingResult to its API representation
func (f *FundingResult) ToResponse() *FundingResponse {
	return &FundingResponse{
		SurveyID:      f.SurveyID,
		Gross:         f.Gross.StringFixed(2),
		Net:           f.Net.StringFixed(2),
		Commission:    f.Commission.StringFixed(2),
		EscrowBalance: f.EscrowBalance.StringFixed(2),
	}
}
