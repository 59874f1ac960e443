package handler

import (
	"agv-finance/internal/api/handler/dto"
	"agv-finance/internal/domain/loan"
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

type LoanHandler struct {
	service loan.LoanService
	reports report.ReportService
	logger  *slog.Logger
	now     func() time.Time
}

func NewLoanHandler(s loan.LoanService, reports report.ReportService, l *slog.Logger) *LoanHandler {
	if s == nil {
		panic("loan service cannot be nil")
	}
	return &LoanHandler{
		service: s,
		reports: reports,
		logger:  l.With("component", "LoanHandler"),
		now:     time.Now,
	}
}

// createLoanInput converts the request into service input. Field problems are
// reported together.
func createLoanInput(req dto.CreateLoanRequest, now time.Time) (loan.CreateInput, error) {
	fields := validation.Fields{}
	in := loan.CreateInput{
		Principal:         req.PrincipalAmount,
		InterestRate:      req.InterestRate,
		TenureMonths:      req.TenureMonths,
		LoanType:          req.LoanType,
		CollateralDetails: req.CollateralDetails,
	}
	id, err := uuid.Parse(req.CustomerID)
	if err != nil {
		fields["customer_id"] = "Invalid identifier"
	}
	in.CustomerID = id
	if strings.TrimSpace(req.DisbursedDate) != "" {
		d, err := validation.Date(req.DisbursedDate, false, now)
		fields.Check("disbursed_date", err)
		in.DisbursedDate = d
	}
	return in, fields.Err()
}

func loanListFilter(r *http.Request) (loan.ListFilter, error) {
	q := r.URL.Query()
	f := loan.ListFilter{
		Status:   loan.Status(strings.ToLower(strings.TrimSpace(q.Get("status")))),
		LoanType: strings.ToLower(strings.TrimSpace(q.Get("loan_type"))),
		Params:   pagination.FromQuery(q),
	}
	if raw := q.Get("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, apperrors.NewValidationError("customer_id", "Invalid identifier")
		}
		f.CustomerID = id
	}
	return f, nil
}

// CreateLoan handles POST /api/loans
// @Summary Create a new loan
// @Description Disburses a loan to an active customer. The loan number and maturity date are generated.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan terms"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/loans [post]
// @Security SessionCookie
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid create loan request", slog.Any("error", err))
		respondError(w, err)
		return
	}
	in, err := createLoanInput(req, h.now())
	if err != nil {
		respondError(w, err)
		return
	}

	created, err := h.service.CreateLoan(r.Context(), in)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to create loan", slog.Any("error", err))
		respondError(w, err)
		return
	}
	if h.reports != nil {
		h.reports.InvalidateDashboard(r.Context())
	}
	h.logger.InfoContext(r.Context(), "Loan created", slog.String("loanNumber", created.LoanNumber))
	respondJSON(w, http.StatusCreated, dto.NewLoanResponse(created))
}

// ListLoans handles GET /api/loans
// @Summary List loans
// @Tags Loans
// @Produce json
// @Param status query string false "active, overdue, completed or closed"
// @Param loan_type query string false "gold, personal, business or vehicle"
// @Param customer_id query string false "Customer ID" Format(uuid)
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size" default(20)
// @Success 200 {object} dto.LoanListResponse "Loans"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/loans [get]
// @Security SessionCookie
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	f, err := loanListFilter(r)
	if err != nil {
		respondError(w, err)
		return
	}
	res, err := h.service.ListLoans(r.Context(), f)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to list loans", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(res))
}

// SearchLoans handles GET /api/loans/search
// @Summary Search loans for the payment form
// @Description Matches loan number, customer name or mobile. Queries shorter than three characters return no loans.
// @Tags Loans
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} dto.LoanSearchResponse "Matching loans, open ones first"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/loans/search [get]
// @Security SessionCookie
func (h *LoanHandler) SearchLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.SearchLoans(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to search loans", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.LoanSearchResponse{Loans: dto.NewLoanResponses(loans)})
}

// GetLoan handles GET /api/loans/{loanID}
// @Summary Retrieve loan details
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID" Format(uuid)
// @Success 200 {object} dto.LoanResponse "Loan details"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/loans/{loanID} [get]
// @Security SessionCookie
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuidParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}
	l, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get loan", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanResponse(l))
}

// GetLoanSummary handles GET /api/loans/{loanID}/summary
// @Summary Loan balance summary
// @Description Principal and interest paid, outstanding principal, interest due and EMI as of today.
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID" Format(uuid)
// @Success 200 {object} dto.LoanSummaryResponse "Summary"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/loans/{loanID}/summary [get]
// @Security SessionCookie
func (h *LoanHandler) GetLoanSummary(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuidParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}
	s, err := h.service.GetLoanSummary(r.Context(), loanID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to summarise loan", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanSummaryResponse(s))
}

// GetSchedule handles GET /api/loans/{loanID}/schedule
// @Summary EMI amortisation schedule
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID" Format(uuid)
// @Success 200 {object} dto.ScheduleResponse "Schedule"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/loans/{loanID}/schedule [get]
// @Security SessionCookie
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuidParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}
	items, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to build schedule", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.ScheduleResponse{LoanID: loanID.String(), Schedule: dto.NewInstallmentResponses(items)})
}

// CloseLoan handles POST /api/loans/{loanID}/close
// @Summary Close a completed loan
// @Description Requires manager role. Only completed loans can be closed.
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID" Format(uuid)
// @Success 200 {object} dto.LoanResponse "Closed loan"
// @Failure 403 {object} dto.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Loan is not completed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/loans/{loanID}/close [post]
// @Security SessionCookie
func (h *LoanHandler) CloseLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuidParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}
	l, err := h.service.CloseLoan(r.Context(), loanID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to close loan", slog.Any("error", err))
		respondError(w, err)
		return
	}
	if h.reports != nil {
		h.reports.InvalidateDashboard(r.Context())
	}
	respondJSON(w, http.StatusOK, dto.NewLoanResponse(l))
}
