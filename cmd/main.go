package main

import (
	"agv-finance/internal/api"
	"agv-finance/internal/api/handler"
	"agv-finance/internal/auth"
	"agv-finance/internal/batch"
	"agv-finance/internal/config"
	"agv-finance/internal/domain/customer"
	"agv-finance/internal/domain/employee"
	"agv-finance/internal/domain/loan"
	"agv-finance/internal/domain/payment"
	"agv-finance/internal/domain/report"
	"agv-finance/internal/event"
	"agv-finance/internal/infrastructure/cache"
	"agv-finance/internal/infrastructure/database/postgres"
	"agv-finance/internal/infrastructure/logging"
	"agv-finance/internal/infrastructure/mail"
	"agv-finance/internal/infrastructure/storage"
	"agv-finance/web"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// infra holds the optional connections that need closing on shutdown.
type infra struct {
	rabbit *amqp.Connection
	redis  *cache.RedisCache
}

// @title AGV Finance API
// @version 1.0
// @description Customer, loan and repayment management for AGV Finance branch staff.

// @contact.name AGV Finance Support
// @contact.email support@agvfinance.in

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name agv_session
func main() {
	cfg, logger := initializeApp()
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)
	runMigrations(cfg, dbPool, logger)

	conns := infra{rabbit: setupRabbitMQ(cfg, logger), redis: setupRedis(ctx, cfg, logger)}
	services := initializeServices(cfg, dbPool, conns, logger)

	statusJob := batch.NewStatusRefreshJob(services.Loans, services.Reports, logger)
	cronScheduler := startBatchJobs(cfg, logger, statusJob)

	deps := initializeWeb(cfg, services, dbPool, logger)
	router := api.SetupRouter(ctx, deps, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
	stop()
	closeInfra(conns, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func runMigrations(cfg *config.Config, dbPool *pgxpool.Pool, logger *slog.Logger) {
	if !cfg.Database.MigrateOnStart {
		logger.Info("Skipping database migrations")
		return
	}
	if err := postgres.RunMigrations(dbPool, logger); err != nil {
		logger.Error("Failed to apply database migrations", "error", err)
		dbPool.Close()
		os.Exit(1)
	}
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func setupRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cache.RedisCache {
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled, dashboard statistics will not be cached")
		return nil
	}
	c, err := cache.NewRedisCache(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, continuing without cache", slog.Any("error", err))
		return nil
	}
	return c
}

func initializeServices(cfg *config.Config, dbPool *pgxpool.Pool, conns infra, logger *slog.Logger) api.Services {
	logger.Info("Initializing application components...")
	publisher := newEventPublisher(cfg, conns.rabbit, logger)

	var receipts payment.ReceiptSender
	if cfg.SMTP.Enabled {
		receipts = mail.NewMailer(cfg.SMTP, logger)
	}
	var statsCache report.Cache
	if conns.redis != nil {
		statsCache = conns.redis
	}

	loanRepo := postgres.NewLoanRepository(dbPool, logger)
	customerService := customer.NewCustomerService(postgres.NewCustomerRepository(dbPool, logger), publisher, logger)
	return api.Services{
		Customers: customerService,
		Loans:     loan.NewLoanService(loanRepo, customerService, publisher, logger),
		Payments:  payment.NewPaymentService(postgres.NewPaymentRepository(dbPool, logger), loanRepo, publisher, receipts, logger),
		Reports:   report.NewReportService(postgres.NewReportRepository(dbPool, logger), statsCache, cfg.Redis.StatsTTL, logger),
		Employees: employee.NewEmployeeService(postgres.NewEmployeeRepository(dbPool, logger), logger),
	}
}

func newEventPublisher(cfg *config.Config, conn *amqp.Connection, logger *slog.Logger) event.EventPublisher {
	if conn == nil {
		return event.NewNoopPublisher(logger)
	}
	exchange := cfg.RabbitMQ.ExchangeName
	if exchange == "" {
		exchange = "agv-finance"
	}
	publisher, err := event.NewRabbitMQEventPublisher(conn, exchange, logger)
	if err != nil {
		logger.Warn("Falling back to no-op event publisher", slog.Any("error", err))
		return event.NewNoopPublisher(logger)
	}
	return publisher
}

func initializeWeb(cfg *config.Config, services api.Services, dbPool *pgxpool.Pool, logger *slog.Logger) api.Dependencies {
	renderer, err := handler.NewRenderer(web.Assets, logger)
	if err != nil {
		logger.Error("Failed to parse page templates", "error", err)
		os.Exit(1)
	}
	documents, err := storage.NewLocalStore(cfg.Upload.Dir, logger)
	if err != nil {
		logger.Error("Failed to prepare upload directory", "error", err)
		os.Exit(1)
	}

	deps := api.Dependencies{
		Services:  services,
		Documents: documents,
		Renderer:  renderer,
		DB:        dbPool,
	}
	if !cfg.Auth.Enabled {
		logger.Warn("Authentication is disabled, every request runs as a local admin")
		return deps
	}
	sessions, err := auth.NewSessionManager(cfg.Auth)
	if err != nil {
		logger.Error("Invalid session configuration", "error", err)
		os.Exit(1)
	}
	deps.Sessions = sessions
	deps.Identity = auth.NewProvider(cfg.Auth)
	return deps
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}
	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}

func closeInfra(conns infra, logger *slog.Logger) {
	closeRabbitMQConnection(conns.rabbit, logger)
	if conns.redis != nil {
		if err := conns.redis.Close(); err != nil {
			logger.Error("Failed to close Redis client", slog.Any("error", err))
		}
	}
}

func closeRabbitMQConnection(rabbitConn *amqp.Connection, logger *slog.Logger) {
	if rabbitConn == nil {
		logger.Info("RabbitMQ connection was not established, skipping close.")
		return
	}
	if rabbitConn.IsClosed() {
		logger.Info("RabbitMQ connection already closed, skipping close.")
		return
	}
	logger.Info("Closing RabbitMQ connection...")
	if err := rabbitConn.Close(); err != nil {
		logger.Error("Failed to close RabbitMQ connection gracefully", slog.Any("error", err))
	} else {
		logger.Info("RabbitMQ connection closed.")
	}
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, statusJob *batch.StatusRefreshJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.StatusRefreshSchedule
	if scheduleSpec == "" {
		scheduleSpec = "0 1 * * *"
		logger.Warn("Loan status refresh schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.StatusRefreshTimeout
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Minute
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "StatusRefresh")
		jobLogger.Info("Cron triggered: Running loan status refresh job.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := statusJob.Run(ctx); runErr != nil {
			jobLogger.Error("Loan status refresh job finished with error", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule loan status refresh job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled loan status refresh job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

func setupLogger(cfg config.LoggerConfig) *slog.Logger {
	return logging.NewLogger(cfg)
}

func connectRabbitMQ(uri string, attempts int, logger *slog.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for i := 1; i <= attempts; i++ {
		conn, err = amqp.Dial(uri)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ")

			go func() {
				blockChan := conn.NotifyBlocked(make(chan amqp.Blocking))
				closeChan := conn.NotifyClose(make(chan *amqp.Error))

				select {
				case b := <-blockChan:
					logger.Warn("RabbitMQ Connection Blocked", "reason", b.Reason)
				case e := <-closeChan:
					if e != nil {
						logger.Error("RabbitMQ Connection Closed", slog.Any("error", e))
					}
				}
			}()

			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ, retrying...",
			slog.Int("attempt", i),
			slog.Int("max_attempts", attempts),
			slog.Any("error", err),
		)
		if i < attempts {
			time.Sleep(time.Duration(i*2) * time.Second)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, err)
}

// setupRabbitMQ returns nil when events are disabled or the broker is
// unreachable; events are then dropped by a no-op publisher.
func setupRabbitMQ(cfg *config.Config, logger *slog.Logger) *amqp.Connection {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ disabled, domain events will not be published")
		return nil
	}
	if cfg.RabbitMQ.Host == "" {
		logger.Error("RabbitMQ host is not configured")
		return nil
	}
	conn, err := connectRabbitMQ(cfg.RabbitMQ.RabbitMQURL(), 5, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		return nil
	}
	return conn
}
