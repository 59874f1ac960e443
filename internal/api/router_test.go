package api

import (
	"agv-finance/internal/api/handler"
	"agv-finance/internal/auth"
	"agv-finance/internal/config"
	"agv-finance/internal/domain/customer"
	customermocks "agv-finance/internal/domain/customer/mocks"
	"agv-finance/internal/domain/employee"
	employeemocks "agv-finance/internal/domain/employee/mocks"
	loanmocks "agv-finance/internal/domain/loan/mocks"
	paymentmocks "agv-finance/internal/domain/payment/mocks"
	reportmocks "agv-finance/internal/domain/report/mocks"
	"agv-finance/web"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type routerFixture struct {
	router    http.Handler
	sessions  *auth.SessionManager
	customers *customermocks.CustomerService
	employees *employeemocks.EmployeeService
	reports   *reportmocks.ReportService
}

func newRouterFixture(t *testing.T, authEnabled bool, db Pinger) routerFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Auth: config.AuthConfig{Enabled: authEnabled, SessionSecret: "router-test-secret"},
	}
	sessions, err := auth.NewSessionManager(cfg.Auth)
	require.NoError(t, err)
	renderer, err := handler.NewRenderer(web.Assets, logger)
	require.NoError(t, err)

	f := routerFixture{
		sessions:  sessions,
		customers: new(customermocks.CustomerService),
		employees: new(employeemocks.EmployeeService),
		reports:   new(reportmocks.ReportService),
	}
	deps := Dependencies{
		Services: Services{
			Customers: f.customers,
			Loans:     new(loanmocks.LoanService),
			Payments:  new(paymentmocks.PaymentService),
			Reports:   f.reports,
			Employees: f.employees,
		},
		Sessions: sessions,
		Renderer: renderer,
		DB:       db,
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	f.router = SetupRouter(ctx, deps, cfg, logger)
	return f
}

func (f routerFixture) sessionCookie(t *testing.T, s auth.Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, f.sessions.Issue(rec, s))
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	t.Fatal("session cookie not issued")
	return nil
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	t.Run("Database up", func(t *testing.T) {
		f := newRouterFixture(t, false, fakePinger{})
		rr := serve(f.router, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok","database":"up"}`, rr.Body.String())
	})

	t.Run("Database down", func(t *testing.T) {
		f := newRouterFixture(t, false, fakePinger{err: errors.New("connection refused")})
		rr := serve(f.router, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"status":"unavailable","database":"down"}`, rr.Body.String())
	})
}

func TestRouter_AuthDisabledRunsAsAdmin(t *testing.T) {
	f := newRouterFixture(t, false, nil)
	id := uuid.New()
	f.customers.On("ListCustomers", mock.Anything, mock.AnythingOfType("customer.ListFilter")).
		Return(&customer.ListResult{Page: 1, PerPage: 20}, nil).Once()
	f.customers.On("DeactivateCustomer", mock.Anything, id).Return(nil).Once()
	f.reports.On("InvalidateDashboard", mock.Anything).Return().Once()

	rr := serve(f.router, httptest.NewRequest(http.MethodGet, "/api/customers", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(f.router, httptest.NewRequest(http.MethodDelete, "/api/customers/"+id.String(), nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	f.customers.AssertExpectations(t)
	f.reports.AssertExpectations(t)
}

func TestRouter_SessionGate(t *testing.T) {
	t.Run("API without session gets 401", func(t *testing.T) {
		f := newRouterFixture(t, true, nil)
		rr := serve(f.router, httptest.NewRequest(http.MethodGet, "/api/customers", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":{"message":"Unauthorized"}}`, rr.Body.String())
	})

	t.Run("Page without session redirects to login", func(t *testing.T) {
		f := newRouterFixture(t, true, nil)
		rr := serve(f.router, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("Location"))
	})

	t.Run("Employee cannot use manager routes", func(t *testing.T) {
		f := newRouterFixture(t, true, nil)
		empID := uuid.New()
		f.employees.On("GetEmployee", mock.Anything, empID).
			Return(&employee.Employee{ID: empID, Name: "Ravi", Role: employee.RoleEmployee, IsActive: true}, nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/customers/"+uuid.NewString(), nil)
		req.AddCookie(f.sessionCookie(t, auth.Session{EmployeeID: empID, Role: employee.RoleManager}))
		rr := serve(f.router, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		f.customers.AssertNotCalled(t, "DeactivateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("Deactivated employee is refused", func(t *testing.T) {
		f := newRouterFixture(t, true, nil)
		empID := uuid.New()
		f.employees.On("GetEmployee", mock.Anything, empID).
			Return(&employee.Employee{ID: empID, Role: employee.RoleAdmin, IsActive: false}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
		req.AddCookie(f.sessionCookie(t, auth.Session{EmployeeID: empID}))
		rr := serve(f.router, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestRouter_CallbackIsGetOnly(t *testing.T) {
	f := newRouterFixture(t, false, nil)

	rr := serve(f.router, httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=xyz", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, auth.DefaultReturn, rr.Header().Get("Location"))

	rr = serve(f.router, httptest.NewRequest(http.MethodPost, "/callback", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_NotFound(t *testing.T) {
	f := newRouterFixture(t, false, nil)

	rr := serve(f.router, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":{"message":"Resource not found."}}`, rr.Body.String())

	rr = serve(f.router, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Page not found")
}

func TestRouter_StaticAssets(t *testing.T) {
	f := newRouterFixture(t, false, nil)
	rr := serve(f.router, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/css")
}
