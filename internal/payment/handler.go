package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/sociowork/surveypay/internal/pricing"
	"github.com/sociowork/surveypay/internal/wallet"
	"github.com/sociowork/surveypay/pkg/cache"
	"github.com/sociowork/surveypay/pkg/middleware"
	"github.com/sociowork/surveypay/pkg/response"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Handler handles HTTP requests for payment operations
type Handler struct {
	service *Service
	rdb     *redis.Client
}

// NewHandler creates a new payment handler
func NewHandler(service *Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb}
}

// Routes returns the router for payment endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/top-up", h.TopUp)
	r.Post("/withdraw", h.Withdraw)
	r.Post("/calc-cost", h.CalculateCost)
	r.Post("/fund-survey", h.FundSurvey)
	r.Post("/payout", h.Payout)
	r.Get("/escrow/{surveyID}", h.GetEscrow)
	r.Get("/transactions", h.ListTransactions)

	return r
}

// TopUp handles POST /payments/top-up
// @Summary      Top up own wallet
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body TopUpRequest true "Amount to credit"
// @Success      200 {object} response.APIResponse{data=TransactionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /payments/top-up [post]
func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		response.BadRequest(w, "Amount must be a positive decimal number")
		return
	}

	t, err := h.service.TopUp(r.Context(), principal, amount)
	if err != nil {
		h.writeError(w, err, "Failed to top up wallet")
		return
	}

	h.invalidateWallet(r, principal.UserID)
	response.JSON(w, http.StatusOK, t.ToResponse())
}

// Withdraw handles POST /payments/withdraw
// @Summary      Withdraw from own wallet
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body WithdrawRequest true "Amount and destination"
// @Success      200 {object} response.APIResponse{data=TransactionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /payments/withdraw [post]
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		response.BadRequest(w, "Amount must be a positive decimal number")
		return
	}

	t, err := h.service.WithdrawFunds(r.Context(), principal, amount, req.Destination)
	if err != nil {
		h.writeError(w, err, "Failed to withdraw from wallet")
		return
	}

	h.invalidateWallet(r, principal.UserID)
	response.JSON(w, http.StatusOK, t.ToResponse())
}

// CalculateCost handles POST /payments/calc-cost
// @Summary      Resolve and persist the survey's per-response price
// @Description  Matches the survey's question count against the pricing tiers and returns the full escrow budget
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body CalculateCostRequest true "Survey to price"
// @Success      200 {object} response.APIResponse{data=CostEstimateResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /payments/calc-cost [post]
func (h *Handler) CalculateCost(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CalculateCostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	estimate, err := h.service.CalculateCost(r.Context(), principal, req.SurveyID)
	if err != nil {
		h.writeError(w, err, "Failed to calculate survey cost")
		return
	}

	response.JSON(w, http.StatusOK, estimate.ToResponse())
}

// FundSurvey handles POST /payments/fund-survey
// @Summary      Fund a survey's escrow account
// @Description  Debits the creator's wallet by the gross amount; the escrow receives the net after the platform commission
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body FundSurveyRequest true "Survey and gross amount"
// @Success      200 {object} response.APIResponse{data=FundingResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /payments/fund-survey [post]
func (h *Handler) FundSurvey(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req FundSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		response.BadRequest(w, "Amount must be a positive decimal number")
		return
	}

	result, err := h.service.FundSurvey(r.Context(), principal, req.SurveyID, amount)
	if err != nil {
		h.writeError(w, err, "Failed to fund survey")
		return
	}

	h.invalidateWallet(r, principal.UserID)
	response.JSON(w, http.StatusOK, result.ToResponse())
}

// Payout handles POST /payments/payout
// @Summary      Claim payout for a completed survey
// @Description  Transfers the survey's per-response price from escrow to the calling respondent, at most once per survey
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body PayoutRequest true "Survey to claim"
// @Success      200 {object} response.APIResponse{data=TransactionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /payments/payout [post]
func (h *Handler) Payout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req PayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	t, err := h.service.Payout(r.Context(), principal, req.SurveyID)
	if err != nil {
		h.writeError(w, err, "Failed to process payout")
		return
	}

	h.invalidateWallet(r, principal.UserID)
	response.JSON(w, http.StatusOK, t.ToResponse())
}

// GetEscrow handles GET /payments/escrow/{surveyID}
// @Summary      View a survey's escrow balance
// @Description  Available to the survey's creator and moderators; an unfunded survey reads as zero
// @Tags         payments
// @Produce      json
// @Param        surveyID path int true "Survey ID"
// @Success      200 {object} response.APIResponse{data=wallet.EscrowResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /payments/escrow/{surveyID} [get]
func (h *Handler) GetEscrow(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	surveyID, err := strconv.ParseInt(chi.URLParam(r, "surveyID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid survey ID")
		return
	}

	account, err := h.service.EscrowView(r.Context(), principal, surveyID)
	if err != nil {
		h.writeError(w, err, "Failed to get escrow balance")
		return
	}

	response.JSON(w, http.StatusOK, account.ToResponse())
}

// ListTransactions handles GET /payments/transactions
// @Summary      List visible transactions
// @Description  Respondents see their own entries; customers additionally see entries tied to their surveys; moderators see all
// @Tags         payments
// @Produce      json
// @Param        page     query int false "Page number (1-based)"
// @Param        per_page query int false "Page size, up to 100"
// @Success      200 {object} response.APIResponse{data=[]TransactionResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /payments/transactions [get]
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	page, perPage := parsePagination(r)

	transactions, total, err := h.service.ListTransactions(r.Context(), principal, perPage, (page-1)*perPage)
	if err != nil {
		response.InternalError(w, "Failed to list transactions")
		return
	}

	resp := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		resp[i] = t.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	response.JSONWithMeta(w, http.StatusOK, resp, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

func parsePagination(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// writeError maps service errors to HTTP responses
func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrSurveyNotFound), errors.Is(err, ErrNotParticipant):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrSurveyNotCompleted),
		errors.Is(err, ErrMissingCost),
		errors.Is(err, ErrMissingCapacity),
		errors.Is(err, ErrAlreadyPaid),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, wallet.ErrInsufficientFunds),
		errors.Is(err, wallet.ErrEscrowInsufficient):
		response.BadRequest(w, err.Error())
	case errors.Is(err, pricing.ErrNoTierFound):
		response.Error(w, http.StatusInternalServerError, "PRICING_GAP", err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

// invalidateWallet drops the cached wallet view after a balance mutation
func (h *Handler) invalidateWallet(r *http.Request, userID int64) {
	_ = cache.Delete(r.Context(), h.rdb, wallet.CacheKey(userID))
}
