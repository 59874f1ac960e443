package handler

import (
	"agv-finance/internal/api/handler/dto"
	"agv-finance/internal/auth"
	"agv-finance/internal/domain/loan"
	"agv-finance/internal/domain/payment"
	"agv-finance/internal/domain/report"
	"agv-finance/internal/pkg/apperrors"
	"agv-finance/internal/pkg/pagination"
	"agv-finance/internal/pkg/validation"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PaymentHandler struct {
	service payment.PaymentService
	loans   loan.LoanService
	reports report.ReportService
	logger  *slog.Logger
	now     func() time.Time
}

func NewPaymentHandler(s payment.PaymentService, loans loan.LoanService, reports report.ReportService, l *slog.Logger) *PaymentHandler {
	if s == nil {
		panic("payment service cannot be nil")
	}
	return &PaymentHandler{
		service: s,
		loans:   loans,
		reports: reports,
		logger:  l.With("component", "PaymentHandler"),
		now:     time.Now,
	}
}

func recordPaymentInput(req dto.RecordPaymentRequest, createdBy string, now time.Time) (payment.RecordInput, error) {
	fields := validation.Fields{}
	in := payment.RecordInput{
		Amount:        req.Amount,
		Method:        req.PaymentMethod,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
		CreatedBy:     createdBy,
	}
	id, err := uuid.Parse(req.LoanID)
	if err != nil {
		fields["loan_id"] = "Invalid identifier"
	}
	in.LoanID = id
	if strings.TrimSpace(req.PaymentDate) != "" {
		d, err := validation.Date(req.PaymentDate, false, now)
		fields.Check("payment_date", err)
		in.PaymentDate = d
	}
	return in, fields.Err()
}

func paymentListFilter(r *http.Request) (payment.ListFilter, error) {
	q := r.URL.Query()
	f := payment.ListFilter{
		Query:  strings.TrimSpace(q.Get("q")),
		Method: q.Get("method"),
		Params: pagination.FromQuery(q),
	}
	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return f, apperrors.NewValidationError("date", "Invalid date format")
		}
		f.Date = &d
	}
	if raw := q.Get("loan_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, apperrors.NewValidationError("loan_id", "Invalid identifier")
		}
		f.LoanID = id
	}
	return f, nil
}

func sessionEmail(r *http.Request) string {
	if s, ok := auth.FromContext(r.Context()); ok {
		return s.Email
	}
	return ""
}

// RecordPayment handles POST /api/payments
// @Summary Record a loan payment
// @Description Splits the amount between interest due and principal, assigns payment and receipt numbers and completes the loan when its principal is repaid.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body dto.RecordPaymentRequest true "Payment"
// @Success 201 {object} dto.PaymentResponse "Payment recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid amount, settled loan or validation error"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/payments [post]
// @Security SessionCookie
func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordPaymentRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid record payment request", slog.Any("error", err))
		respondError(w, err)
		return
	}
	in, err := recordPaymentInput(req, sessionEmail(r), h.now())
	if err != nil {
		respondError(w, err)
		return
	}

	p, err := h.service.RecordPayment(r.Context(), in)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to record payment", slog.Any("error", err))
		respondError(w, err)
		return
	}
	if h.reports != nil {
		h.reports.InvalidateDashboard(r.Context())
	}
	respondJSON(w, http.StatusCreated, dto.NewPaymentResponse(p))
}

// ListPayments handles GET /api/payments
// @Summary List payments
// @Description Newest first. q matches payment number, loan number or customer name once it has three characters.
// @Tags Payments
// @Produce json
// @Param q query string false "Search text"
// @Param method query string false "cash, upi, bank_transfer, cheque or card"
// @Param date query string false "Payment date (YYYY-MM-DD)"
// @Param loan_id query string false "Loan ID" Format(uuid)
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size" default(20)
// @Success 200 {object} dto.PaymentListResponse "Payments"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/payments [get]
// @Security SessionCookie
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	f, err := paymentListFilter(r)
	if err != nil {
		respondError(w, err)
		return
	}
	res, err := h.service.ListPayments(r.Context(), f)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to list payments", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewPaymentListResponse(res))
}

// GetPayment handles GET /api/payments/{paymentID}
// @Summary Retrieve a payment with its loan
// @Tags Payments
// @Produce json
// @Param paymentID path string true "Payment ID" Format(uuid)
// @Success 200 {object} dto.PaymentResponse "Payment"
// @Failure 400 {object} dto.ErrorResponse "Invalid payment ID"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/payments/{paymentID} [get]
// @Security SessionCookie
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuidParam(r, "paymentID")
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := h.service.GetPayment(r.Context(), paymentID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get payment", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewPaymentResponse(p)
	if h.loans != nil {
		l, err := h.loans.GetLoan(r.Context(), p.LoanID)
		if err != nil {
			h.logger.WarnContext(r.Context(), "Payment loan lookup failed", slog.Any("error", err))
		} else {
			resp = resp.WithLoan(l)
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
