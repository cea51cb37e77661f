package wallet

// WalletResponse represents the wallet view returned to the owner
type WalletResponse struct {
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// EscrowResponse represents a survey escrow account view
type EscrowResponse struct {
	SurveyID int64  `json:"survey_id"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// ToResponse converts a Wallet to its API representation. Monetary values
// travel as fixed-point strings, never floats.
func (w *Wallet) ToResponse() *WalletResponse {
	return &WalletResponse{
		Balance:  w.Balance.StringFixed(2),
		Currency: w.Currency,
	}
}

// ToResponse converts a SurveyAccount to its API representation
func (a *SurveyAccount) ToResponse() *EscrowResponse {
	return &EscrowResponse{
		SurveyID: a.SurveyID,
		Balance:  a.Balance.StringFixed(2),
		Currency: a.Currency,
	}
}
