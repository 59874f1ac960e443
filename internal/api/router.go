package api

import (
	"agv-finance/internal/api/handler"
	mw "agv-finance/internal/api/middleware"
	"agv-finance/internal/auth"
	"agv-finance/internal/config"
	"agv-finance/internal/domain/customer"
	"agv-finance/internal/domain/employee"
	"agv-finance/internal/domain/loan"
	"agv-finance/internal/domain/payment"
	"agv-finance/internal/domain/report"
	"agv-finance/web"
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	_ "agv-finance/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Customers customer.CustomerService
	Loans     loan.LoanService
	Payments  payment.PaymentService
	Reports   report.ReportService
	Employees employee.EmployeeService
}

type Dependencies struct {
	Services
	Identity  handler.IdentityProvider
	Sessions  *auth.SessionManager
	Documents handler.DocumentStore
	Renderer  *handler.Renderer
	DB        Pinger
}

func SetupRouter(ctx context.Context, deps Dependencies, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()
	gold := loan.NewGoldRates(cfg.Gold.RatePerGram, cfg.Gold.MaxLTV)
	pages := handler.NewPageHandler(handler.PageServices{
		Customers: deps.Customers,
		Loans:     deps.Loans,
		Payments:  deps.Payments,
		Reports:   deps.Reports,
		Gold:      gold,
	}, deps.Renderer, logger)
	calculators := handler.NewCalculatorHandler(gold)

	setupMiddleware(ctx, router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupSwaggerEndpoint(router, logger)
	setupStatic(router, logger)
	router.Get("/health", healthHandler(deps.DB))

	authHandler := handler.NewAuthHandler(cfg.Auth, cfg.Server.BaseURL, deps.Identity, deps.Sessions, deps.Employees, logger)
	router.Get("/", pages.Home)
	router.Get("/login", authHandler.Login)
	router.Get("/callback", authHandler.Callback)
	router.Get("/logout", authHandler.Logout)

	router.Group(func(r chi.Router) {
		r.Use(mw.SessionGate(cfg.Auth, deps.Sessions, deps.Employees, logger))
		setupPageRoutes(r, pages)
		r.Route("/api", func(r chi.Router) {
			setupCustomerRoutes(r, deps, cfg, logger)
			setupLoanRoutes(r, deps, logger)
			setupPaymentRoutes(r, deps, logger)
			setupReportRoutes(r, deps, logger)
			r.Get("/user/profile", authHandler.Profile)
			r.Get("/calculators/emi", handler.CalculateEMI)
			r.Get("/calculators/gold", calculators.GoldLoan)
			r.Get("/calculators/gold-conversion", handler.ConvertGold)
		})
	})

	router.NotFound(notFound(pages))
	router.MethodNotAllowed(notFound(pages))
	return router
}

func setupMiddleware(ctx context.Context, router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	timeout := cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(mw.SecurityHeaders)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(timeout))
	router.Use(mw.NewRateLimiterMiddleware(ctx, cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupStatic(router *chi.Mux, logger *slog.Logger) {
	static, err := fs.Sub(web.Assets, "static")
	if err != nil {
		logger.Error("Static assets unavailable", "error", err)
		return
	}
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable","database":"down"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","database":"up"}`))
	}
}

// notFound answers JSON under /api and renders the 404 page elsewhere.
func notFound(pages *handler.PageHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"message":"Resource not found."}}`))
			return
		}
		pages.NotFound(w, r)
	}
}

func setupPageRoutes(r chi.Router, pages *handler.PageHandler) {
	manager := mw.RequireRole(employee.RoleManager)

	r.Get("/dashboard", pages.Dashboard)
	r.Get("/profile", pages.Profile)
	r.Get("/reports", pages.Reports)
	r.Get("/calculators/emi", pages.EMICalculator)
	r.Get("/calculators/gold", pages.GoldCalculator)
	r.Get("/calculators/gold_conversion", pages.GoldConversion)

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", pages.Customers)
		r.Post("/", pages.CreateCustomer)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", pages.CustomerDetail)
			r.Post("/", pages.UpdateCustomer)
			r.With(manager).Post("/deactivate", pages.DeactivateCustomer)
			r.With(manager).Post("/reactivate", pages.ReactivateCustomer)
		})
	})

	r.Route("/loans", func(r chi.Router) {
		r.Get("/", pages.Loans)
		r.Post("/", pages.CreateLoan)
		r.Get("/{loanID}", pages.LoanDetail)
		r.With(manager).Post("/{loanID}/close", pages.CloseLoan)
	})

	r.Get("/payments", pages.Payments)
	r.Post("/payments", pages.RecordPayment)
}

func setupCustomerRoutes(r chi.Router, deps Dependencies, cfg *config.Config, logger *slog.Logger) {
	h := handler.NewCustomerHandler(deps.Customers, deps.Reports, logger)
	docs := handler.NewDocumentHandler(deps.Customers, deps.Documents, cfg.Upload.MaxFileSize, logger)
	manager := mw.RequireRole(employee.RoleManager)

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Put("/", h.UpdateCustomer)
			r.With(manager).Delete("/", h.DeactivateCustomer)
			r.With(manager).Post("/reactivate", h.ReactivateCustomer)
			r.Post("/documents", docs.UploadDocument)
			r.Get("/documents/{kind}", docs.DownloadDocument)
		})
	})
}

func setupLoanRoutes(r chi.Router, deps Dependencies, logger *slog.Logger) {
	h := handler.NewLoanHandler(deps.Loans, deps.Reports, logger)

	r.Route("/loans", func(r chi.Router) {
		r.Post("/", h.CreateLoan)
		r.Get("/", h.ListLoans)
		r.Get("/search", h.SearchLoans)
		r.Route("/{loanID}", func(r chi.Router) {
			r.Get("/", h.GetLoan)
			r.Get("/summary", h.GetLoanSummary)
			r.Get("/schedule", h.GetSchedule)
			r.With(mw.RequireRole(employee.RoleManager)).Post("/close", h.CloseLoan)
		})
	})
}

func setupPaymentRoutes(r chi.Router, deps Dependencies, logger *slog.Logger) {
	h := handler.NewPaymentHandler(deps.Payments, deps.Loans, deps.Reports, logger)

	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.RecordPayment)
		r.Get("/", h.ListPayments)
		r.Get("/{paymentID}", h.GetPayment)
	})
}

func setupReportRoutes(r chi.Router, deps Dependencies, logger *slog.Logger) {
	h := handler.NewReportHandler(deps.Reports, logger)

	r.Get("/dashboard/stats", h.DashboardStats)
	r.Route("/reports", func(r chi.Router) {
		r.Get("/metrics", h.Metrics)
		r.Get("/charts", h.Charts)
		r.Get("/loans-summary", h.LoansSummary)
		r.Get("/customer-analysis", h.CustomerAnalysis)
	})
}
