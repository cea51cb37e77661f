package payment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sociowork/surveypay/internal/identity"
	"github.com/sociowork/surveypay/internal/survey"
	"github.com/sociowork/surveypay/internal/wallet"
)

// CommissionFactor is the platform's 10% markup. Funding nets the gross by
// this factor while cost calculation grosses the budget up by it; both
// readings of the business rule share this one constant.
var CommissionFactor = decimal.RequireFromString("1.10")

// totalBudget is the escrow budget a customer needs to cover a full survey:
// price-per-response × capacity × commission, rounded half-up to 2 places
func totalBudget(pricePerResponse decimal.Decimal, maxParticipants int) decimal.Decimal {
	return pricePerResponse.
		Mul(decimal.NewFromInt(int64(maxParticipants))).
		Mul(CommissionFactor).
		Round(2)
}

// splitGross divides a gross funding amount into the net escrow credit and
// the platform commission. The net is rounded and the commission derived by
// subtraction so the two always sum to the gross exactly.
func splitGross(gross decimal.Decimal) (net, commission decimal.Decimal) {
	net = gross.Div(CommissionFactor).Round(2)
	commission = gross.Sub(net)
	return net, commission
}

// fundingEntries builds the success ledger entries recording one funding
// transfer. For tiny grosses the rounded commission can come out to zero;
// a zero-amount entry would violate the ledger invariant, so it is simply
// not written.
func fundingEntries(userID, surveyID int64, net, commission decimal.Decimal) []*Transaction {
	entries := []*Transaction{{
		UserID:          userID,
		Type:            TransactionTopUp,
		Status:          TransactionSuccess,
		Amount:          net,
		Currency:        wallet.DefaultCurrency,
		Description:     fmt.Sprintf("Escrow funding for survey %d", surveyID),
		RelatedSurveyID: &surveyID,
	}}
	if commission.GreaterThan(decimal.Zero) {
		entries = append(entries, &Transaction{
			UserID:          userID,
			Type:            TransactionCommission,
			Status:          TransactionSuccess,
			Amount:          commission,
			Currency:        wallet.DefaultCurrency,
			Description:     fmt.Sprintf("Platform commission for survey %d", surveyID),
			RelatedSurveyID: &surveyID,
		})
	}
	return entries
}

// payoutFacts is everything the payout preconditions look at, gathered
// before any mutation
type payoutFacts struct {
	role          identity.Role
	completion    *survey.Completion
	cost          *decimal.Decimal
	alreadyPaid   bool
	escrowBalance decimal.Decimal
}

// checkPayoutPreconditions evaluates the payout checks in their contract
// order and returns the per-response amount to transfer. Each failure mode
// is a distinct error. The idempotency and balance checks are re-evaluated
// later under the escrow row lock; this pass exists so a doomed request
// never opens a transaction.
func checkPayoutPreconditions(f payoutFacts) (decimal.Decimal, error) {
	if f.role != identity.RoleRespondent {
		return decimal.Zero, ErrForbidden
	}
	if f.completion == nil {
		return decimal.Zero, ErrNotParticipant
	}
	if f.completion.Status != survey.CompletionCompleted {
		return decimal.Zero, ErrSurveyNotCompleted
	}
	if f.cost == nil || f.cost.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrMissingCost
	}
	if f.alreadyPaid {
		return decimal.Zero, ErrAlreadyPaid
	}
	if f.escrowBalance.LessThan(*f.cost) {
		return decimal.Zero, wallet.ErrEscrowInsufficient
	}
	return *f.cost, nil
}
