package pricing

import "github.com/shopspring/decimal"

// CreateTierRequest represents the request to create or rewrite a tier
type CreateTierRequest struct {
	MinQuestions   int             `json:"min_questions"`
	MaxQuestions   *int            `json:"max_questions,omitempty"`
	PricePerSurvey decimal.Decimal `json:"price_per_survey"`
}

// TierResponse represents a tier returned to clients
type TierResponse struct {
	ID             int64  `json:"id"`
	MinQuestions   int    `json:"min_questions"`
	MaxQuestions   *int   `json:"max_questions,omitempty"`
	PricePerSurvey string `json:"price_per_survey"`
}

// ToResponse converts a Tier to its API representation
func (t *Tier) ToResponse() *TierResponse {
	return &TierResponse{
		ID:             t.ID,
		MinQuestions:   t.MinQuestions,
		MaxQuestions:   t.MaxQuestions,
		PricePerSurvey: t.PricePerSurvey.StringFixed(2),
	}
}
