package handler

import (
	"agv-finance/internal/api/handler/dto"
	"agv-finance/internal/domain/customer"
	"agv-finance/internal/domain/report"
	"agv-finance/internal/pkg/pagination"
	"log/slog"
	"net/http"
	"strings"
)

type CustomerHandler struct {
	service customer.CustomerService
	reports report.ReportService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, reports report.ReportService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		reports: reports,
		logger:  l.With("component", "CustomerHandler"),
	}
}

// customerListFilter reads q, status, page and per_page.
func customerListFilter(r *http.Request) customer.ListFilter {
	q := r.URL.Query()
	return customer.ListFilter{
		Query:  strings.TrimSpace(q.Get("q")),
		Status: customer.Status(strings.ToLower(strings.TrimSpace(q.Get("status")))),
		Params: pagination.FromQuery(q),
	}
}

// CreateCustomer handles POST /api/customers
// @Summary Create a new customer
// @Description Creates a customer profile. The mobile number must be unique.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CustomerRequest true "Customer profile"
// @Success 201 {object} dto.CustomerResponse "Customer successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 409 {object} dto.ErrorResponse "Mobile number already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customers [post]
// @Security SessionCookie
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req dto.CustomerRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid create customer request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	created, err := h.service.CreateCustomer(r.Context(), req.Profile())
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to create customer", slog.Any("error", err))
		respondError(w, err)
		return
	}
	if h.reports != nil {
		h.reports.InvalidateDashboard(r.Context())
	}

	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.String("customerID", created.ID.String()))
	respondJSON(w, http.StatusCreated, dto.NewCustomerResponse(created))
}

// GetCustomer handles GET /api/customers/{customerID}
// @Summary Retrieve customer details
// @Tags Customers
// @Produce json
// @Param customerID path string true "Customer ID" Format(uuid)
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customers/{customerID} [get]
// @Security SessionCookie
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuidParam(r, "customerID")
	if err != nil {
		respondError(w, err)
		return
	}

	c, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get customer", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(c))
}

// ListCustomers handles GET /api/customers
// @Summary List customers
// @Description Paginated customer list, newest first. q matches name, mobile, e-mail or PAN.
// @Tags Customers
// @Produce json
// @Param q query string false "Search text"
// @Param status query string false "active or inactive"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size" default(20)
// @Success 200 {object} dto.CustomerListResponse "Customers"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customers [get]
// @Security SessionCookie
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListCustomers(r.Context(), customerListFilter(r))
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to list customers", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerListResponse(res))
}

// UpdateCustomer handles PUT /api/customers/{customerID}
// @Summary Update a customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param customerID path string true "Customer ID" Format(uuid)
// @Param request body dto.CustomerRequest true "Customer profile"
// @Success 200 {object} dto.CustomerResponse "Customer updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 409 {object} dto.ErrorResponse "Mobile number already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customers/{customerID} [put]
// @Security SessionCookie
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuidParam(r, "customerID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req dto.CustomerRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid update customer request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	updated, err := h.service.UpdateCustomer(r.Context(), customerID, req.Profile())
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to update customer", slog.Any("error", err))
		respondError(w, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Customer updated", slog.String("customerID", customerID.String()))
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(updated))
}

// DeactivateCustomer handles DELETE /api/customers/{customerID}
// @Summary Deactivate a customer
// @Description Soft-deletes the customer. Refused while the customer has an active or overdue loan. Requires manager role.
// @Tags Customers
// @Param customerID path string true "Customer ID" Format(uuid)
// @Success 204 "Customer deactivated"
// @Failure 403 {object} dto.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 409 {object} dto.ErrorResponse "Customer has an open loan"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customers/{customerID} [delete]
// @Security SessionCookie
func (h *CustomerHandler) DeactivateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuidParam(r, "customerID")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.service.DeactivateCustomer(r.Context(), customerID); err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to deactivate customer", slog.Any("error", err))
		respondError(w, err)
		return
	}
	if h.reports != nil {
		h.reports.InvalidateDashboard(r.Context())
	}
	h.logger.InfoContext(r.Context(), "Customer deactivated", slog.String("customerID", customerID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// ReactivateCustomer handles POST /api/customers/{customerID}/reactivate
// @Summary Reactivate a customer
// @Tags Customers
// @Param customerID path string true "Customer ID" Format(uuid)
// @Success 204 "Customer reactivated"
// @Failure 403 {object} dto.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/customers/{customerID}/reactivate [post]
// @Security SessionCookie
func (h *CustomerHandler) ReactivateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuidParam(r, "customerID")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.service.ReactivateCustomer(r.Context(), customerID); err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to reactivate customer", slog.Any("error", err))
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
