package handler

import (
	"agv-finance/internal/api/handler/dto"
	"agv-finance/internal/auth"
	"agv-finance/internal/domain/customer"
	"agv-finance/internal/domain/loan"
	"agv-finance/internal/domain/payment"
	"agv-finance/internal/domain/report"
	"agv-finance/internal/pkg/apperrors"
	"agv-finance/internal/pkg/pagination"
	"agv-finance/internal/pkg/validation"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PageServices struct {
	Customers customer.CustomerService
	Loans     loan.LoanService
	Payments  payment.PaymentService
	Reports   report.ReportService
	Gold      loan.GoldRates
}

// PageHandler serves the server-rendered HTML pages.
type PageHandler struct {
	svc    PageServices
	render *Renderer
	logger *slog.Logger
	now    func() time.Time
}

func NewPageHandler(svc PageServices, render *Renderer, l *slog.Logger) *PageHandler {
	if render == nil {
		panic("renderer cannot be nil")
	}
	return &PageHandler{svc: svc, render: render, logger: l.With("component", "PageHandler"), now: time.Now}
}

type listPage struct {
	Items      any
	Pagination pagination.Meta
	Query      string
	Filter     string
}

type customerPage struct {
	Customer *customer.Customer
	Loans    []*loan.Loan
	Kinds    []string
}

type loanFormPage struct {
	listPage
	Customers []*customer.Customer
	LoanTypes []string
}

type loanPage struct {
	Summary  *loan.Summary
	Schedule []loan.Installment
	Payments []*payment.Payment
}

type paymentsPage struct {
	listPage
	Methods []string
	Loan    *loan.Loan
}

type reportsPage struct {
	From    string
	To      string
	Metrics *report.Metrics
	Loans   []*loan.Loan
}

type errorPage struct {
	Status  int
	Heading string
	Message string
}

// formValues keeps the first value of each posted field for re-rendering.
func formValues(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// fieldErrors extracts per-field messages from a validation failure.
func fieldErrors(err error) (map[string]string, bool) {
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		return nil, false
	}
	if len(ve.Fields) > 0 {
		return ve.Fields, true
	}
	key := ve.Field
	if key == "" {
		key = "general"
	}
	return map[string]string{key: ve.Message}, true
}

// formError turns a service error into form messages, or reports false when
// the error is not about the submitted data.
func formError(err error, conflictField string) (map[string]string, bool) {
	if fields, ok := fieldErrors(err); ok {
		return fields, true
	}
	status, detail := errorStatus(err)
	switch status {
	case http.StatusBadRequest:
		return map[string]string{"general": detail.Message}, true
	case http.StatusConflict:
		return map[string]string{conflictField: detail.Message}, true
	}
	return nil, false
}

// Fail renders the error page matching err.
func (h *PageHandler) Fail(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := errorStatus(err)
	page := errorPage{Status: status}
	switch status {
	case http.StatusNotFound:
		page.Heading, page.Message = "Page not found", detail.Message
	case http.StatusForbidden:
		page.Heading, page.Message = "Access denied", "You do not have permission to view this page."
	case http.StatusBadRequest:
		page.Heading, page.Message = "Bad request", detail.Message
	default:
		h.logger.ErrorContext(r.Context(), "Page failed", slog.Any("error", err))
		page.Heading, page.Message = "Something went wrong", "An unexpected error occurred. Please try again."
	}
	h.render.Render(w, r, status, "error", PageData{Title: page.Heading, Data: page})
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Fail(w, r, fmt.Errorf("%w: page not found", apperrors.ErrNotFound))
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "index", PageData{Title: "AGV Finance"})
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Reports.DashboardStats(r.Context())
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "dashboard", PageData{Title: "Dashboard", Active: "dashboard", Data: stats})
}

func (h *PageHandler) Customers(w http.ResponseWriter, r *http.Request) {
	h.renderCustomers(w, r, http.StatusOK, nil, nil)
}

func (h *PageHandler) renderCustomers(w http.ResponseWriter, r *http.Request, status int, form, errs map[string]string) {
	f := customerListFilter(r)
	res, err := h.svc.Customers.ListCustomers(r.Context(), f)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.render.Render(w, r, status, "customers", PageData{
		Title:  "Customers",
		Active: "customers",
		Form:   form,
		Errors: errs,
		Data: listPage{
			Items:      res.Customers,
			Pagination: pagination.NewMeta(pagination.Params{Page: res.Page, PerPage: res.PerPage}, res.Total),
			Query:      f.Query,
			Filter:     string(f.Status),
		},
	})
}

func customerRequestFromForm(r *http.Request) dto.CustomerRequest {
	return dto.CustomerRequest{
		Name:             r.PostFormValue("name"),
		Mobile:           r.PostFormValue("mobile"),
		AdditionalMobile: r.PostFormValue("additional_mobile"),
		Email:            r.PostFormValue("email"),
		Address:          r.PostFormValue("address"),
		FatherName:       r.PostFormValue("father_name"),
		MotherName:       r.PostFormValue("mother_name"),
		AadhaarNumber:    r.PostFormValue("aadhar_number"),
		PANNumber:        r.PostFormValue("pan_number"),
	}
}

func (h *PageHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Fail(w, r, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	req := customerRequestFromForm(r)
	if fields := validation.Struct(req); len(fields) > 0 {
		h.renderCustomers(w, r, http.StatusBadRequest, formValues(r), fields)
		return
	}

	c, err := h.svc.Customers.CreateCustomer(r.Context(), req.Profile())
	if err != nil {
		if errs, ok := formError(err, "mobile"); ok {
			h.renderCustomers(w, r, http.StatusBadRequest, formValues(r), errs)
			return
		}
		h.Fail(w, r, err)
		return
	}
	h.svc.Reports.InvalidateDashboard(r.Context())
	auth.SetFlash(w, "success", fmt.Sprintf("Customer %s created successfully.", c.Name))
	http.Redirect(w, r, "/customers/"+c.ID.String(), http.StatusSeeOther)
}

func (h *PageHandler) CustomerDetail(w http.ResponseWriter, r *http.Request) {
	h.renderCustomer(w, r, http.StatusOK, nil, nil)
}

func (h *PageHandler) renderCustomer(w http.ResponseWriter, r *http.Request, status int, form, errs map[string]string) {
	id, err := uuidParam(r, "customerID")
	if err != nil {
		h.NotFound(w, r)
		return
	}
	c, err := h.svc.Customers.GetCustomer(r.Context(), id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	loans, err := h.svc.Loans.ListLoans(r.Context(), loan.ListFilter{CustomerID: id, Params: pagination.Params{PerPage: pagination.MaxPerPage}})
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if form == nil {
		form = customerForm(c)
	}
	h.render.Render(w, r, status, "customer_detail", PageData{
		Title:  c.Name,
		Active: "customers",
		Form:   form,
		Errors: errs,
		Data:   customerPage{Customer: c, Loans: loans.Loans, Kinds: customer.DocumentKinds},
	})
}

func customerForm(c *customer.Customer) map[string]string {
	return map[string]string{
		"name":              c.Name,
		"mobile":            c.Mobile,
		"additional_mobile": c.AdditionalMobile,
		"email":             c.Email,
		"address":           c.Address,
		"father_name":       c.FatherName,
		"mother_name":       c.MotherName,
		"aadhar_number":     c.AadhaarNumber,
		"pan_number":        c.PANNumber,
	}
}

func (h *PageHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "customerID")
	if err != nil {
		h.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.Fail(w, r, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	req := customerRequestFromForm(r)
	if fields := validation.Struct(req); len(fields) > 0 {
		h.renderCustomer(w, r, http.StatusBadRequest, formValues(r), fields)
		return
	}
	if _, err := h.svc.Customers.UpdateCustomer(r.Context(), id, req.Profile()); err != nil {
		if errs, ok := formError(err, "mobile"); ok {
			h.renderCustomer(w, r, http.StatusBadRequest, formValues(r), errs)
			return
		}
		h.Fail(w, r, err)
		return
	}
	auth.SetFlash(w, "success", "Customer details updated.")
	http.Redirect(w, r, "/customers/"+id.String(), http.StatusSeeOther)
}

func (h *PageHandler) DeactivateCustomer(w http.ResponseWriter, r *http.Request) {
	h.customerStatus(w, r, h.svc.Customers.DeactivateCustomer, "Customer deactivated.")
}

func (h *PageHandler) ReactivateCustomer(w http.ResponseWriter, r *http.Request) {
	h.customerStatus(w, r, h.svc.Customers.ReactivateCustomer, "Customer reactivated.")
}

func (h *PageHandler) customerStatus(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id uuid.UUID) error, done string) {
	id, err := uuidParam(r, "customerID")
	if err != nil {
		h.NotFound(w, r)
		return
	}
	if err := apply(r.Context(), id); err != nil {
		status, detail := errorStatus(err)
		if status != http.StatusConflict {
			h.Fail(w, r, err)
			return
		}
		auth.SetFlash(w, "danger", detail.Message)
	} else {
		h.svc.Reports.InvalidateDashboard(r.Context())
		auth.SetFlash(w, "success", done)
	}
	http.Redirect(w, r, "/customers/"+id.String(), http.StatusSeeOther)
}

func (h *PageHandler) Loans(w http.ResponseWriter, r *http.Request) {
	h.renderLoans(w, r, http.StatusOK, nil, nil)
}

func (h *PageHandler) renderLoans(w http.ResponseWriter, r *http.Request, status int, form, errs map[string]string) {
	f, err := loanListFilter(r)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	res, err := h.svc.Loans.ListLoans(r.Context(), f)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	active, err := h.svc.Customers.ListCustomers(r.Context(), customer.ListFilter{
		Status: customer.StatusActive,
		Params: pagination.Params{PerPage: pagination.MaxPerPage},
	})
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if form == nil {
		form = map[string]string{"customer_id": r.URL.Query().Get("customer_id")}
	}
	h.render.Render(w, r, status, "loans", PageData{
		Title:  "Loans",
		Active: "loans",
		Form:   form,
		Errors: errs,
		Data: loanFormPage{
			listPage: listPage{
				Items:      res.Loans,
				Pagination: pagination.NewMeta(pagination.Params{Page: res.Page, PerPage: res.PerPage}, res.Total),
				Filter:     string(f.Status),
			},
			Customers: active.Customers,
			LoanTypes: validation.LoanTypes,
		},
	})
}

func (h *PageHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Fail(w, r, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	fields := validation.Fields{}
	principal, err := validation.Amount(r.PostFormValue("principal_amount"), validation.MinLoanAmount, validation.MaxLoanAmount)
	fields.Check("principal_amount", err)
	rate, err := validation.InterestRate(r.PostFormValue("interest_rate"))
	fields.Check("interest_rate", err)
	tenure, err := validation.Tenure(r.PostFormValue("tenure_months"))
	fields.Check("tenure_months", err)

	req := dto.CreateLoanRequest{
		CustomerID:      r.PostFormValue("customer_id"),
		PrincipalAmount: principal,
		InterestRate:    rate,
		TenureMonths:    tenure,
		LoanType:        r.PostFormValue("loan_type"),
		DisbursedDate:   r.PostFormValue("disbursed_date"),
	}
	if c := collateralFromForm(r); len(c) > 0 {
		req.CollateralDetails = c
	}
	in, err := createLoanInput(req, h.now())
	if errs, ok := fieldErrors(err); ok {
		for k, v := range errs {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		h.renderLoans(w, r, http.StatusBadRequest, formValues(r), fields)
		return
	}

	l, err := h.svc.Loans.CreateLoan(r.Context(), in)
	if err != nil {
		if errs, ok := formError(err, "customer_id"); ok {
			h.renderLoans(w, r, http.StatusBadRequest, formValues(r), errs)
			return
		}
		h.Fail(w, r, err)
		return
	}
	h.svc.Reports.InvalidateDashboard(r.Context())
	auth.SetFlash(w, "success", fmt.Sprintf("Loan %s created successfully.", l.LoanNumber))
	http.Redirect(w, r, "/loans/"+l.ID.String(), http.StatusSeeOther)
}

// collateralFromForm collects collateral_* fields, e.g. collateral_weight.
func collateralFromForm(r *http.Request) map[string]any {
	out := map[string]any{}
	for k, v := range r.PostForm {
		name, ok := strings.CutPrefix(k, "collateral_")
		if !ok || len(v) == 0 || strings.TrimSpace(v[0]) == "" {
			continue
		}
		out[name] = strings.TrimSpace(v[0])
	}
	return out
}

func (h *PageHandler) LoanDetail(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "loanID")
	if err != nil {
		h.NotFound(w, r)
		return
	}
	s, err := h.svc.Loans.GetLoanSummary(r.Context(), id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	schedule, err := h.svc.Loans.GetSchedule(r.Context(), id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	payments, err := h.svc.Payments.ListLoanPayments(r.Context(), id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "loan_detail", PageData{
		Title:  s.Loan.LoanNumber,
		Active: "loans",
		Data:   loanPage{Summary: s, Schedule: schedule, Payments: payments},
	})
}

func (h *PageHandler) CloseLoan(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "loanID")
	if err != nil {
		h.NotFound(w, r)
		return
	}
	if _, err := h.svc.Loans.CloseLoan(r.Context(), id); err != nil {
		status, detail := errorStatus(err)
		if status != http.StatusConflict {
			h.Fail(w, r, err)
			return
		}
		auth.SetFlash(w, "danger", detail.Message)
	} else {
		h.svc.Reports.InvalidateDashboard(r.Context())
		auth.SetFlash(w, "success", "Loan closed.")
	}
	http.Redirect(w, r, "/loans/"+id.String(), http.StatusSeeOther)
}

func (h *PageHandler) Payments(w http.ResponseWriter, r *http.Request) {
	h.renderPayments(w, r, http.StatusOK, nil, nil)
}

func (h *PageHandler) renderPayments(w http.ResponseWriter, r *http.Request, status int, form, errs map[string]string) {
	f, err := paymentListFilter(r)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	res, err := h.svc.Payments.ListPayments(r.Context(), f)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	page := paymentsPage{
		listPage: listPage{
			Items:      res.Payments,
			Pagination: pagination.NewMeta(pagination.Params{Page: res.Page, PerPage: res.PerPage}, res.Total),
			Query:      f.Query,
			Filter:     f.Method,
		},
		Methods: validation.PaymentMethods,
	}
	if form == nil {
		form = map[string]string{"payment_date": h.now().Format(time.DateOnly)}
	}
	loanID := form["loan_id"]
	if loanID == "" {
		loanID = r.URL.Query().Get("loan_id")
	}
	if id, err := uuid.Parse(loanID); err == nil {
		if l, err := h.svc.Loans.GetLoan(r.Context(), id); err == nil {
			page.Loan = l
			form["loan_id"] = id.String()
		}
	}
	h.render.Render(w, r, status, "payments", PageData{
		Title:  "Payments",
		Active: "payments",
		Form:   form,
		Errors: errs,
		Data:   page,
	})
}

func (h *PageHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Fail(w, r, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	fields := validation.Fields{}
	amount, err := validation.Amount(r.PostFormValue("amount"), validation.MinPaymentAmount, validation.MaxPaymentAmount)
	fields.Check("amount", err)
	req := dto.RecordPaymentRequest{
		LoanID:        r.PostFormValue("loan_id"),
		Amount:        amount,
		PaymentDate:   r.PostFormValue("payment_date"),
		PaymentMethod: r.PostFormValue("payment_method"),
		TransactionID: r.PostFormValue("transaction_id"),
		Notes:         r.PostFormValue("notes"),
	}
	in, err := recordPaymentInput(req, sessionEmail(r), h.now())
	if errs, ok := fieldErrors(err); ok {
		for k, v := range errs {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		h.renderPayments(w, r, http.StatusBadRequest, formValues(r), fields)
		return
	}

	p, err := h.svc.Payments.RecordPayment(r.Context(), in)
	if err != nil {
		if errs, ok := formError(err, "loan_id"); ok {
			h.renderPayments(w, r, http.StatusBadRequest, formValues(r), errs)
			return
		}
		h.Fail(w, r, err)
		return
	}
	h.svc.Reports.InvalidateDashboard(r.Context())
	auth.SetFlash(w, "success", fmt.Sprintf("Payment %s of %s recorded. Receipt %s.", p.PaymentNumber, formatMoney(p.Amount), p.ReceiptNumber))
	http.Redirect(w, r, "/loans/"+p.LoanID.String(), http.StatusSeeOther)
}

func (h *PageHandler) Reports(w http.ResponseWriter, r *http.Request) {
	p, err := periodFromQuery(r, h.now())
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	m, err := h.svc.Reports.Metrics(r.Context(), p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	loans, err := h.svc.Reports.LoansSummary(r.Context(), p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "reports", PageData{
		Title:  "Reports",
		Active: "reports",
		Data: reportsPage{
			From:    p.From.Format(time.DateOnly),
			To:      p.To.AddDate(0, 0, -1).Format(time.DateOnly),
			Metrics: m,
			Loans:   loans,
		},
	})
}

func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "profile", PageData{Title: "Profile", Active: "profile"})
}

func (h *PageHandler) EMICalculator(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := PageData{Title: "EMI Calculator", Active: "calculators", Form: map[string]string{
		"principal": q.Get("principal"),
		"rate":      q.Get("rate"),
		"tenure":    q.Get("tenure"),
	}}
	if q.Get("principal") != "" || q.Get("rate") != "" || q.Get("tenure") != "" {
		res, fields := emiFromQuery(q, true, h.now())
		if len(fields) > 0 {
			data.Errors = fields
		} else {
			data.Data = res
		}
	}
	h.render.Render(w, r, http.StatusOK, "emi", data)
}

type goldPage struct {
	Rates  loan.GoldRates
	Karats []int
	Result any
}

func (h *PageHandler) GoldCalculator(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := goldPage{Rates: h.svc.Gold, Karats: validation.Karats}
	data := PageData{Title: "Gold Loan Calculator", Active: "calculators", Form: map[string]string{
		"weight":        q.Get("weight"),
		"karat":         q.Get("karat"),
		"ltv":           q.Get("ltv"),
		"rate_per_gram": q.Get("rate_per_gram"),
	}}
	if q.Get("weight") != "" || q.Get("karat") != "" {
		res, fields := goldLoanFromQuery(q, h.svc.Gold)
		if len(fields) > 0 {
			data.Errors = fields
		} else {
			page.Result = res
		}
	}
	data.Data = page
	h.render.Render(w, r, http.StatusOK, "gold", data)
}

func (h *PageHandler) GoldConversion(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := goldPage{Rates: h.svc.Gold, Karats: validation.Karats}
	data := PageData{Title: "Gold Purity Conversion", Active: "calculators", Form: map[string]string{
		"weight":     q.Get("weight"),
		"from_karat": q.Get("from_karat"),
		"to_karat":   q.Get("to_karat"),
	}}
	if q.Get("weight") != "" {
		res, fields := goldConversionFromQuery(q)
		if len(fields) > 0 {
			data.Errors = fields
		} else {
			page.Result = res
		}
	}
	data.Data = page
	h.render.Render(w, r, http.StatusOK, "gold_conversion", data)
}
