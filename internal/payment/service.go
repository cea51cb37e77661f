package payment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sociowork/surveypay/internal/identity"
	"github.com/sociowork/surveypay/internal/pricing"
	"github.com/sociowork/surveypay/internal/survey"
	"github.com/sociowork/surveypay/internal/wallet"
)

// Service orchestrates wallet funding, survey cost calculation, escrow
// funding and respondent payouts. Every money movement leaves a ledger
// entry; transfers that touch two balances run under one transaction.
type Service struct {
	db      *sql.DB
	repo    *Repository
	wallets *wallet.Service
	surveys *survey.Repository
	pricing *pricing.Service
}

// NewService creates a new payment service
func NewService(db *sql.DB, repo *Repository, wallets *wallet.Service, surveys *survey.Repository, pricingService *pricing.Service) *Service {
	return &Service{
		db:      db,
		repo:    repo,
		wallets: wallets,
		surveys: surveys,
		pricing: pricingService,
	}
}

// CostEstimate is the result of a cost calculation
type CostEstimate struct {
	SurveyID         int64
	QuestionCount    int
	PricePerResponse decimal.Decimal
	TotalBudget      decimal.Decimal
}

// CalculateCost resolves the survey's per-response price from its question
// count and the configured tiers, persists it on the survey, and returns
// the full escrow budget (price × capacity, grossed up by the commission).
// Only the survey's creator or a moderator may calculate.
func (s *Service) CalculateCost(ctx context.Context, principal identity.Principal, surveyID int64) (*CostEstimate, error) {
	sv, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, ErrSurveyNotFound
	}
	if sv.CreatorID != principal.UserID && principal.Role != identity.RoleModerator {
		return nil, ErrForbidden
	}
	if sv.MaxParticipants == nil || *sv.MaxParticipants <= 0 {
		return nil, ErrMissingCapacity
	}

	count, err := s.surveys.CountQuestions(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	tier, err := s.pricing.Resolve(ctx, count)
	if err != nil {
		return nil, err
	}

	if err := s.surveys.UpdateCost(ctx, surveyID, tier.PricePerSurvey); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"survey_id":      surveyID,
		"question_count": count,
		"price":          tier.PricePerSurvey.StringFixed(2),
	}).Info("survey cost resolved")

	return &CostEstimate{
		SurveyID:         surveyID,
		QuestionCount:    count,
		PricePerResponse: tier.PricePerSurvey,
		TotalBudget:      totalBudget(tier.PricePerSurvey, *sv.MaxParticipants),
	}, nil
}

// TopUp credits the user's wallet through the payment gateway. A pending
// ledger entry is created first; the gateway call and the balance credit
// then settle it to success, or the entry is marked failed and the wallet
// is left untouched.
func (s *Service) TopUp(ctx context.Context, principal identity.Principal, amount decimal.Decimal) (*Transaction, error) {
	t := &Transaction{
		UserID:      principal.UserID,
		Type:        TransactionTopUp,
		Amount:      amount,
		Currency:    wallet.DefaultCurrency,
		Description: "Wallet top-up",
	}
	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}

	ref := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.wallets.DepositTx(ctx, tx, principal.UserID, amount); err != nil {
		s.failTransaction(ctx, t, GatewayData{"error": err.Error()})
		return nil, err
	}

	gateway := GatewayData{
		"gateway_ref":  ref,
		"processed_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.MarkTransactionSuccessTx(ctx, tx, t, gateway); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit top-up: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":        principal.UserID,
		"transaction_id": t.ID,
		"amount":         amount.StringFixed(2),
	}).Info("wallet top-up succeeded")

	return t, nil
}

// WithdrawFunds debits the user's wallet toward an external destination.
// The balance check runs under the wallet row lock, so concurrent
// withdrawals cannot overdraw.
func (s *Service) WithdrawFunds(ctx context.Context, principal identity.Principal, amount decimal.Decimal, destination string) (*Transaction, error) {
	t := &Transaction{
		UserID:      principal.UserID,
		Type:        TransactionWithdraw,
		Amount:      amount,
		Currency:    wallet.DefaultCurrency,
		Description: "Wallet withdrawal",
	}
	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.wallets.WithdrawTx(ctx, tx, principal.UserID, amount); err != nil {
		s.failTransaction(ctx, t, GatewayData{"error": err.Error()})
		return nil, err
	}

	gateway := GatewayData{
		"gateway_ref": uuid.New().String(),
		"destination": destination,
	}
	if err := s.repo.MarkTransactionSuccessTx(ctx, tx, t, gateway); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit withdrawal: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":        principal.UserID,
		"transaction_id": t.ID,
		"amount":         amount.StringFixed(2),
	}).Info("wallet withdrawal succeeded")

	return t, nil
}

// FundingResult reports the split of one funding transfer and the escrow
// balance after it
type FundingResult struct {
	SurveyID      int64
	Gross         decimal.Decimal
	Net           decimal.Decimal
	Commission    decimal.Decimal
	EscrowBalance decimal.Decimal
}

// FundSurvey moves a gross amount from the creator's wallet into the
// survey's escrow account, netting out the platform commission. Wallet
// debit and escrow credit run under one transaction; two ledger entries
// record the split.
func (s *Service) FundSurvey(ctx context.Context, principal identity.Principal, surveyID int64, gross decimal.Decimal) (*FundingResult, error) {
	sv, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, ErrSurveyNotFound
	}
	if sv.CreatorID != principal.UserID && principal.Role != identity.RoleModerator {
		return nil, ErrForbidden
	}
	if gross.LessThanOrEqual(decimal.Zero) {
		return nil, wallet.ErrInvalidAmount
	}

	net, commission := splitGross(gross)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.wallets.WithdrawTx(ctx, tx, principal.UserID, gross); err != nil {
		return nil, err
	}
	account, err := s.wallets.EscrowDepositTx(ctx, tx, surveyID, net)
	if err != nil {
		return nil, err
	}

	for _, entry := range fundingEntries(principal.UserID, surveyID, net, commission) {
		if err := s.repo.CreateTransactionTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit survey funding: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"survey_id":  surveyID,
		"user_id":    principal.UserID,
		"gross":      gross.StringFixed(2),
		"net":        net.StringFixed(2),
		"commission": commission.StringFixed(2),
	}).Info("survey funded")

	return &FundingResult{
		SurveyID:      surveyID,
		Gross:         gross,
		Net:           net,
		Commission:    commission,
		EscrowBalance: account.Balance,
	}, nil
}

// Payout transfers the survey's per-response price from its escrow account
// to the calling respondent. The preconditions are evaluated in a fixed
// order before any mutation; the idempotency check is then repeated under
// the escrow row lock so racing requests cannot both succeed.
func (s *Service) Payout(ctx context.Context, principal identity.Principal, surveyID int64) (*Transaction, error) {
	sv, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, ErrSurveyNotFound
	}

	facts := payoutFacts{role: principal.Role, cost: sv.Cost}

	facts.completion, err = s.surveys.GetCompletion(ctx, surveyID, principal.UserID)
	if err != nil {
		return nil, err
	}
	facts.alreadyPaid, err = s.repo.HasSuccessfulPayout(ctx, surveyID, principal.UserID)
	if err != nil {
		return nil, err
	}
	account, err := s.wallets.EscrowBalance(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		facts.escrowBalance = account.Balance
	}

	amount, err := checkPayoutPreconditions(facts)
	if err != nil {
		return nil, err
	}

	respondentID := principal.UserID
	t := &Transaction{
		UserID:              respondentID,
		Type:                TransactionPayout,
		Amount:              amount,
		Currency:            wallet.DefaultCurrency,
		Description:         fmt.Sprintf("Payout for survey %d", surveyID),
		RelatedSurveyID:     &surveyID,
		RelatedRespondentID: &respondentID,
	}
	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}
	payment := &Payment{
		SurveyID:     surveyID,
		CreatorID:    sv.CreatorID,
		RespondentID: respondentID,
		Amount:       amount,
		Currency:     wallet.DefaultCurrency,
		Description:  fmt.Sprintf("Payout for survey %d", surveyID),
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.failPayout(ctx, t, payment, err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	transfer := func() error {
		if _, err := s.wallets.EscrowWithdrawTx(ctx, tx, surveyID, amount); err != nil {
			return err
		}

		// Escrow row is locked; a racing payout that already committed is
		// visible now even though the pre-check missed it
		paid, err := s.repo.HasSuccessfulPayoutTx(ctx, tx, surveyID, respondentID)
		if err != nil {
			return err
		}
		if paid {
			return ErrAlreadyPaid
		}

		if _, err := s.wallets.DepositTx(ctx, tx, respondentID, amount); err != nil {
			return err
		}

		if err := s.repo.MarkPaymentSucceededTx(ctx, tx, payment, uuid.New().String()); err != nil {
			return err
		}

		gateway := GatewayData{
			"from":           fmt.Sprintf("survey:%d", surveyID),
			"to":             fmt.Sprintf("user:%d", respondentID),
			"transferred_at": time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.repo.MarkTransactionSuccessTx(ctx, tx, t, gateway); err != nil {
			return err
		}

		return tx.Commit()
	}

	// Every failure inside the transfer scope rolls the ledger mutations
	// back and settles both pending records as failed. The backstop index
	// can fire at the success UPDATE or at commit; either way it means a
	// racing payout won.
	if err := transfer(); err != nil {
		if IsUniqueViolation(err) {
			err = ErrAlreadyPaid
		}
		s.failPayout(ctx, t, payment, err)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"survey_id":      surveyID,
		"respondent_id":  respondentID,
		"transaction_id": t.ID,
		"amount":         amount.StringFixed(2),
	}).Info("payout completed")

	return t, nil
}

// EscrowView returns the survey's escrow account for its creator or a
// moderator. A survey that was never funded reads as a zero balance.
func (s *Service) EscrowView(ctx context.Context, principal identity.Principal, surveyID int64) (*wallet.SurveyAccount, error) {
	sv, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, ErrSurveyNotFound
	}
	if sv.CreatorID != principal.UserID && principal.Role != identity.RoleModerator {
		return nil, ErrForbidden
	}

	account, err := s.wallets.EscrowBalance(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = &wallet.SurveyAccount{
			SurveyID: surveyID,
			Balance:  decimal.Zero,
			Currency: wallet.DefaultCurrency,
		}
	}
	return account, nil
}

// ListTransactions returns the principal's visible transaction history,
// newest first
func (s *Service) ListTransactions(ctx context.Context, principal identity.Principal, limit, offset int) ([]*Transaction, int, error) {
	return s.repo.ListForUser(ctx, principal, limit, offset)
}

// failTransaction settles a pending ledger entry as failed outside the
// rolled-back transfer transaction, so the failure itself is recorded
func (s *Service) failTransaction(ctx context.Context, t *Transaction, gateway GatewayData) {
	if err := s.repo.MarkTransactionFailed(ctx, t, gateway); err != nil {
		logrus.WithFields(logrus.Fields{
			"transaction_id": t.ID,
			"error":          err,
		}).Error("failed to mark transaction failed")
	}
}

// failPayout settles both the ledger entry and the payment record as
// failed with the reason
func (s *Service) failPayout(ctx context.Context, t *Transaction, p *Payment, cause error) {
	s.failTransaction(ctx, t, GatewayData{"error": cause.Error()})
	if err := s.repo.MarkPaymentFailed(ctx, p, cause.Error()); err != nil {
		logrus.WithFields(logrus.Fields{
			"payment_id": p.ID,
			"error":      err,
		}).Error("failed to mark payment failed")
	}
}
