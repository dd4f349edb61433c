package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/classbook/db"
	"github.com/DanielPopoola/classbook/internal/access"
	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/application/services"
	"github.com/DanielPopoola/classbook/internal/config"
	"github.com/DanielPopoola/classbook/internal/infrastructure/broker"
	"github.com/DanielPopoola/classbook/internal/infrastructure/cache"
	"github.com/DanielPopoola/classbook/internal/infrastructure/gateway"
	"github.com/DanielPopoola/classbook/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/classbook/internal/infrastructure/telemetry"
	"github.com/DanielPopoola/classbook/internal/interfaces/rest/docs"
	"github.com/DanielPopoola/classbook/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/classbook/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/classbook/internal/worker"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the outbox relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting classbook",
		"env", cfg.Primary.Env,
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry, cfg.Primary.Env, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracer shutdown failed", "error", err)
		}
	}()

	database, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if migrate {
		if _, err := postgres.Migrate(ctx, database, db.Migrations, "migrations"); err != nil {
			return err
		}
	}

	classRepo := postgres.NewClassRepository(database)
	instructorRepo := postgres.NewInstructorRepository(database)
	customerRepo := postgres.NewCustomerRepository(database)
	userRepo := postgres.NewUserRepository(database)
	enrollmentRepo := postgres.NewEnrollmentRepository(database)
	bookingRepo := postgres.NewBookingRepository(database)
	paymentRepo := postgres.NewPaymentRepository(database)
	attendanceRepo := postgres.NewAttendanceRepository(database)
	uow := postgres.NewTransactionCoordinator(database)

	redisClient := cache.NewRedisClient(ctx, cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	roles := cache.NewRoleCache(userRepo, redisClient, cfg.Redis.RoleTTL, logger)

	intents := gateway.NewRetryClient(gateway.NewStripeClient(cfg.Gateway), cfg.Gateway)

	publisher, closePublisher, err := newPublisher(cfg.Broker, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	reconciler := services.NewReconciliationService(uow, classRepo, logger)
	svc := handlers.Services{
		Classes:     services.NewClassService(classRepo, instructorRepo, bookingRepo, logger),
		Instructors: services.NewInstructorService(instructorRepo, logger),
		Customers:   services.NewCustomerService(customerRepo, userRepo, bookingRepo, paymentRepo, logger),
		Bookings: services.NewBookingService(
			bookingRepo, classRepo, customerRepo, enrollmentRepo, paymentRepo, uow, logger,
		),
		Payments: services.NewPaymentQueryService(paymentRepo),
		Portal:   services.NewInstructorPortalService(instructorRepo, classRepo, bookingRepo, attendanceRepo, logger),
		Checkout: services.NewCheckoutService(customerRepo, classRepo, enrollmentRepo, intents, cfg.Gateway.Currency, logger),
	}

	sessions := access.NewSessionManager(cfg.Auth)
	guard := access.NewGuard(roles, logger)

	mux := http.NewServeMux()
	handlers.Register(mux,
		handlers.NewHandlers(svc, sessions, roles, logger),
		handlers.NewWebhookHandler(gateway.NewWebhookVerifier(cfg.Gateway, logger), reconciler, logger),
		handlers.Health(database.Pool, logger),
		docs.Handler(logger),
	)

	handler := middleware.Guard(sessions, guard, logger)(mux)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.WriteTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	relay := worker.NewOutboxRelay(uow, publisher, cfg.Worker.Interval, cfg.Worker.BatchSize, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	go relay.Start(workerCtx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		cancelWorkers()
		return err
	}

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited")
	return nil
}

// newPublisher connects to the broker, or logs events when no broker URL is
// configured. A configured broker that cannot be reached is an error.
func newPublisher(cfg config.BrokerConfig, logger *slog.Logger) (application.EventPublisher, func(), error) {
	if cfg.URL == "" {
		logger.Info("broker not configured, outbox events will be logged")
		return broker.NewLogPublisher(logger), func() {}, nil
	}

	p, err := broker.NewPublisher(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, func() {
		if err := p.Close(); err != nil {
			logger.Error("broker close failed", "error", err)
		}
	}, nil
}
