package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/spendtrack/spendtrack-go/internal/middleware"
	"github.com/spendtrack/spendtrack-go/internal/service"
)

// ReportHandler handles HTTP requests for aggregation endpoints.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// HandleCategories handles GET /expenses/categories requests. The optional
// month and year query params narrow the aggregation to one month.
func (h *ReportHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	month, ok := queryInt(w, r, "month")
	if !ok {
		return
	}
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}

	totals, err := h.service.CategoryTotals(r.Context(), userID, month, year)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMonth) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

// HandleTopCategory handles GET /expenses/top-category requests.
func (h *ReportHandler) HandleTopCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	top, err := h.service.TopCategory(r.Context(), userID)
	if err != nil {
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": top})
}

// HandleMonthly handles GET /expenses/monthly requests.
func (h *ReportHandler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	totals, err := h.service.MonthlyTotals(r.Context(), userID)
	if err != nil {
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

// HandleMonthlySummary handles GET /expenses/monthly-summary requests.
func (h *ReportHandler) HandleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	series, err := h.service.MonthlySummary(r.Context(), userID)
	if err != nil {
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"monthlyData": series})
}

// HandleMonthlyTotals handles GET /expenses/monthly-totals requests.
func (h *ReportHandler) HandleMonthlyTotals(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	top, err := h.service.HighestSpendingMonth(r.Context(), userID)
	if err != nil {
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"highestSpendingMonth": top})
}

// HandleCurrentMonthTotal handles GET /expenses/current-month-total requests.
func (h *ReportHandler) HandleCurrentMonthTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	total, err := h.service.CurrentMonthTotal(r.Context(), userID)
	if err != nil {
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"total": total})
}

// HandleDaily handles GET /expenses/daily requests. month and year default to
// the current month when absent.
func (h *ReportHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	month, ok := queryInt(w, r, "month")
	if !ok {
		return
	}
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}

	now := time.Now()
	if month == 0 && year == 0 {
		month = int(now.Month())
		year = now.Year()
	}

	series, err := h.service.DailySeries(r.Context(), userID, month, year)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMonth) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, series)
}

// queryInt parses an integer query parameter. An absent parameter yields
// zero; a malformed one gets a 400 naming the parameter, and the second
// return reports whether the handler should continue.
func queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid "+key+" parameter"))
		return 0, false
	}
	return n, true
}
