package handler

import (
	"agv-finance/internal/api/handler/dto"
	"agv-finance/internal/domain/report"
	"agv-finance/internal/pkg/apperrors"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type ReportHandler struct {
	service report.ReportService
	logger  *slog.Logger
	now     func() time.Time
}

func NewReportHandler(s report.ReportService, l *slog.Logger) *ReportHandler {
	if s == nil {
		panic("report service cannot be nil")
	}
	return &ReportHandler{service: s, logger: l.With("component", "ReportHandler"), now: time.Now}
}

// periodFromQuery reads from and to as YYYY-MM-DD; either may be omitted.
func periodFromQuery(r *http.Request, now time.Time) (report.Period, error) {
	var from, to time.Time
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return report.Period{}, apperrors.NewValidationError("from", "Invalid date format")
		}
		from = d
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return report.Period{}, apperrors.NewValidationError("to", "Invalid date format")
		}
		to = d
	}
	return report.NewPeriod(from, to, now), nil
}

// DashboardStats handles GET /api/dashboard/stats
// @Summary Dashboard totals
// @Description Customer, disbursement, interest and loan counts with month over month changes, six months of disbursements and recent activity.
// @Tags Reports
// @Produce json
// @Success 200 {object} report.DashboardStats "Dashboard statistics"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/dashboard/stats [get]
// @Security SessionCookie
func (h *ReportHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to build dashboard stats", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Metrics handles GET /api/reports/metrics
// @Summary Period metrics
// @Tags Reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date inclusive (YYYY-MM-DD)"
// @Success 200 {object} report.Metrics "Metrics with growth against the previous period"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/reports/metrics [get]
// @Security SessionCookie
func (h *ReportHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	p, err := periodFromQuery(r, h.now())
	if err != nil {
		respondError(w, err)
		return
	}
	m, err := h.service.Metrics(r.Context(), p)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to build report metrics", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// Charts handles GET /api/reports/charts
// @Summary Chart series for the period
// @Tags Reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date inclusive (YYYY-MM-DD)"
// @Success 200 {object} report.Charts "Loan trend, loan types and financial overview"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/reports/charts [get]
// @Security SessionCookie
func (h *ReportHandler) Charts(w http.ResponseWriter, r *http.Request) {
	p, err := periodFromQuery(r, h.now())
	if err != nil {
		respondError(w, err)
		return
	}
	c, err := h.service.Charts(r.Context(), p)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to build report charts", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// LoansSummary handles GET /api/reports/loans-summary
// @Summary Loans disbursed in the period
// @Tags Reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date inclusive (YYYY-MM-DD)"
// @Success 200 {array} dto.LoanResponse "Loans with customer name and mobile"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/reports/loans-summary [get]
// @Security SessionCookie
func (h *ReportHandler) LoansSummary(w http.ResponseWriter, r *http.Request) {
	p, err := periodFromQuery(r, h.now())
	if err != nil {
		respondError(w, err)
		return
	}
	loans, err := h.service.LoansSummary(r.Context(), p)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to build loans summary", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanResponses(loans))
}

// CustomerAnalysis handles GET /api/reports/customer-analysis
// @Summary Per-customer borrowing and repayment score
// @Tags Reports
// @Produce json
// @Success 200 {object} report.CustomerAnalysis "Customer analysis"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/reports/customer-analysis [get]
// @Security SessionCookie
func (h *ReportHandler) CustomerAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.CustomerAnalysis(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to build customer analysis", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}
