package wallet

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/sociowork/surveypay/pkg/cache"
	"github.com/sociowork/surveypay/pkg/middleware"
	"github.com/sociowork/surveypay/pkg/response"
)

const walletCacheTTL = 60 * time.Second

// Handler handles HTTP requests for wallet views
type Handler struct {
	service *Service
	rdb     *redis.Client
}

// NewHandler creates a new wallet handler
func NewHandler(service *Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb}
}

// Routes returns the router for wallet endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetWallet)

	return r
}

// GetWallet handles GET /wallet
// @Summary      View own wallet balance
// @Description  Returns the authenticated user's wallet, creating it on first use
// @Tags         wallet
// @Produce      json
// @Success      200 {object} response.APIResponse{data=WalletResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /wallet [get]
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	key := CacheKey(principal.UserID)
	var cached WalletResponse
	if found, err := cache.Get(r.Context(), h.rdb, key, &cached); err == nil && found {
		response.JSON(w, http.StatusOK, &cached)
		return
	}

	wallet, err := h.service.Balance(r.Context(), principal.UserID)
	if err != nil {
		response.InternalError(w, "Failed to get wallet")
		return
	}

	resp := wallet.ToResponse()
	_ = cache.Set(r.Context(), h.rdb, key, resp, walletCacheTTL)

	response.JSON(w, http.StatusOK, resp)
}
