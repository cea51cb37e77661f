package pricing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sociowork/surveypay/pkg/middleware"
	"github.com/sociowork/surveypay/pkg/response"
)

// Handler handles HTTP requests for pricing tier administration
type Handler struct {
	service *Service
}

// NewHandler creates a new pricing handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for pricing endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)

	return r
}

// List handles GET /pricing
// @Summary      List pricing tiers
// @Tags         pricing
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]TierResponse}
// @Router       /pricing [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list pricing tiers")
		return
	}

	resp := make([]*TierResponse, len(tiers))
	for i, t := range tiers {
		resp[i] = t.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// Create handles POST /pricing
// @Summary      Create a pricing tier (moderator only)
// @Description  Rejects any range overlapping an existing tier
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        request body CreateTierRequest true "Tier range and price"
// @Success      201 {object} response.APIResponse{data=TierResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /pricing [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	tier, err := h.service.Create(r.Context(), principal, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Forbidden(w, err.Error())
		case errors.Is(err, ErrInvalidRange):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrTierOverlap):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to create pricing tier")
		}
		return
	}

	response.JSON(w, http.StatusCreated, tier.ToResponse())
}

// Update handles PUT /pricing/{id}
// @Summary      Rewrite a pricing tier (moderator only)
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        id      path int               true "Tier ID"
// @Param        request body CreateTierRequest true "Tier range and price"
// @Success      200 {object} response.APIResponse{data=TierResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /pricing/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid tier ID")
		return
	}

	var req CreateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	tier, err := h.service.Update(r.Context(), principal, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Forbidden(w, err.Error())
		case errors.Is(err, ErrTierNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrInvalidRange):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrTierOverlap):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to update pricing tier")
		}
		return
	}

	response.JSON(w, http.StatusOK, tier.ToResponse())
}
