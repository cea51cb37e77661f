package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/sociowork/surveypay/internal/survey"
	"github.com/sociowork/surveypay/pkg/cache"
	"github.com/sociowork/surveypay/pkg/middleware"
	"github.com/sociowork/surveypay/pkg/response"
)

const dashboardCacheTTL = 30 * time.Second

// Handler handles HTTP requests for survey result views
type Handler struct {
	service *Service
	rdb     *redis.Client
}

// NewHandler creates a new dashboard handler
func NewHandler(service *Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb}
}

// Routes returns the router for survey result endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{surveyID}/dashboard", h.GetDashboard)
	r.Get("/{surveyID}/respondents", h.ListRespondents)
	r.Get("/{surveyID}/data", h.GetData)
	r.Post("/{surveyID}/export", h.Export)

	return r
}

func surveyIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "surveyID"), 10, 64)
}

func dashboardCacheKey(surveyID int64) string {
	return fmt.Sprintf("dashboard:survey:%d", surveyID)
}

// GetDashboard handles GET /surveys/{surveyID}/dashboard
// @Summary      Aggregated survey results
// @Description  Per-question distributions, rating means and text summaries, plus respondent characteristic breakdowns
// @Tags         dashboard
// @Produce      json
// @Param        surveyID path int true "Survey ID"
// @Success      200 {object} response.APIResponse{data=Dashboard}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /surveys/{surveyID}/dashboard [get]
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	surveyID, err := surveyIDParam(r)
	if err != nil {
		response.BadRequest(w, "Invalid survey ID")
		return
	}

	// The cached view is only served to principals that pass the access
	// check, so authorization still runs on every request
	if _, err := h.service.authorize(r.Context(), principal, surveyID); err != nil {
		h.writeError(w, err, "Failed to build dashboard")
		return
	}

	key := dashboardCacheKey(surveyID)
	var cached Dashboard
	if found, err := cache.Get(r.Context(), h.rdb, key, &cached); err == nil && found {
		response.JSON(w, http.StatusOK, &cached)
		return
	}

	d, err := h.service.Aggregate(r.Context(), principal, surveyID)
	if err != nil {
		h.writeError(w, err, "Failed to build dashboard")
		return
	}

	_ = cache.Set(r.Context(), h.rdb, key, d, dashboardCacheTTL)
	response.JSON(w, http.StatusOK, d)
}

// RespondentResponse represents one completed respondent
type RespondentResponse struct {
	RespondentID int64    `json:"respondent_id"`
	Email        string   `json:"email"`
	Score        *float64 `json:"score,omitempty"`
	CompletedAt  string   `json:"completed_at"`
}

func toRespondentResponse(c *survey.Completion) *RespondentResponse {
	return &RespondentResponse{
		RespondentID: c.RespondentID,
		Email:        c.RespondentEmail,
		Score:        c.Score,
		CompletedAt:  c.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListRespondents handles GET /surveys/{surveyID}/respondents
// @Summary      List completed respondents
// @Tags         dashboard
// @Produce      json
// @Param        surveyID path int true "Survey ID"
// @Success      200 {object} response.APIResponse{data=[]RespondentResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /surveys/{surveyID}/respondents [get]
func (h *Handler) ListRespondents(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	surveyID, err := surveyIDParam(r)
	if err != nil {
		response.BadRequest(w, "Invalid survey ID")
		return
	}

	completions, err := h.service.Respondents(r.Context(), principal, surveyID)
	if err != nil {
		h.writeError(w, err, "Failed to list respondents")
		return
	}

	resp := make([]*RespondentResponse, len(completions))
	for i, c := range completions {
		resp[i] = toRespondentResponse(c)
	}

	response.JSON(w, http.StatusOK, resp)
}

// GetData handles GET /surveys/{surveyID}/data
// @Summary      Anonymized per-respondent answers
// @Description  The result table with positional respondent labels instead of emails
// @Tags         dashboard
// @Produce      json
// @Param        surveyID path int true "Survey ID"
// @Success      200 {object} response.APIResponse{data=ResultTable}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /surveys/{surveyID}/data [get]
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	surveyID, err := surveyIDParam(r)
	if err != nil {
		response.BadRequest(w, "Invalid survey ID")
		return
	}

	table, err := h.service.BuildResults(r.Context(), principal, surveyID, true)
	if err != nil {
		h.writeError(w, err, "Failed to build result data")
		return
	}

	response.JSON(w, http.StatusOK, table)
}

// ExportRequest selects the export file format
type ExportRequest struct {
	Format string `json:"format"`
}

// Export handles POST /surveys/{surveyID}/export
// @Summary      Export survey results as a file
// @Description  Streams the full result table, emails included, as CSV or XLSX
// @Tags         dashboard
// @Accept       json
// @Produce      application/octet-stream
// @Param        surveyID path int           true  "Survey ID"
// @Param        request  body ExportRequest false "Export format, csv or xlsx"
// @Success      200 {file} file
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /surveys/{surveyID}/export [post]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	surveyID, err := surveyIDParam(r)
	if err != nil {
		response.BadRequest(w, "Invalid survey ID")
		return
	}

	var req ExportRequest
	if r.Body != nil {
		// Empty body means the default format
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	format, err := ParseExportFormat(req.Format)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	table, err := h.service.BuildResults(r.Context(), principal, surveyID, false)
	if err != nil {
		h.writeError(w, err, "Failed to build export")
		return
	}

	switch format {
	case FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="survey_%d_results.csv"`, surveyID))
		if err := WriteCSV(w, table); err != nil {
			response.InternalError(w, "Failed to write export")
		}
	case FormatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="survey_%d_results.xlsx"`, surveyID))
		if err := WriteXLSX(w, table); err != nil {
			response.InternalError(w, "Failed to write export")
		}
	}
}

// writeError maps service errors to HTTP responses
func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrSurveyNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}
