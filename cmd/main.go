package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"projexa/config"
	"projexa/internal/delivery"
	"projexa/internal/domain"
	"projexa/internal/events"
	"projexa/internal/notification"
	"projexa/internal/reference"
	"projexa/internal/repository"
	"projexa/internal/session"
	"projexa/internal/usecase"
	"projexa/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	logger.Info("Starting Projexa Store backend...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Errorf("Server stopped with error: %v", err)
		os.Exit(1)
	}
	logger.Info("Server stopped.")
}

// run owns every resource it opens; its defers release them before main decides the exit code.
func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	defer database.Close()
	logger.Info("Database connection established.")

	if cfg.MigrateOnStart {
		if err := db.RunMigrations(database); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		logger.Info("Database migrations applied.")
	}

	bus, err := newBus(cfg, logger)
	if err != nil {
		return fmt.Errorf("could not start %s event bus: %w", cfg.EventBus, err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Warnf("Event bus close: %v", err)
		}
	}()

	sessions, closeSessions, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	// --- Dependency Injection ---
	orderRepo := repository.NewPostgresOrderRepository(database, logger)
	productRepo := repository.NewPostgresProductRepository(database, logger)
	userRepo := repository.NewPostgresUserRepository(database, logger)
	notificationRepo := repository.NewPostgresNotificationRepository(database, logger)
	logger.Info("Repositories initialized.")

	accounts := domain.PaymentAccounts{
		VodafoneCashNumber: cfg.VodafoneCashNumber,
		InstapayAddress:    cfg.InstapayAddress,
	}
	orderUseCase := usecase.NewOrderUseCase(orderRepo, bus, reference.New, accounts, logger)
	productUseCase := usecase.NewProductUseCase(productRepo, logger)
	authUseCase := usecase.NewAuthUseCase(userRepo, sessions, bus, cfg.SessionTTL, logger)
	logger.Info("Use cases initialized.")

	if err := authUseCase.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("could not provision admin account: %w", err)
	}

	var mailer notification.Mailer
	if cfg.MailConfigured() {
		smtp := notification.NewSMTPMailer(notification.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			User:      cfg.SMTPUser,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.SMTPFromEmail,
			FromName:  cfg.SMTPFromName,
			Timeout:   cfg.SMTPTimeout,
		}, logger)
		mailer = notification.NewBreakerMailer(smtp, logger)
	}
	dispatcher := notification.NewDispatcher(notificationRepo, mailer, cfg.MailMaxAttempts, cfg.MailRetryBackoff, logger)
	notifier := notification.NewNotifier(dispatcher, cfg.AdminAlertEmail, logger)

	gin.SetMode(gin.ReleaseMode)
	router := delivery.NewRouter(delivery.Handlers{
		Orders:   delivery.NewOrderHandler(orderUseCase, logger),
		Products: delivery.NewProductHandler(productUseCase, logger),
		Auth:     delivery.NewAuthHandler(authUseCase, logger),
		Health:   delivery.NewHealthHandler(database, logger),
	}, authUseCase, logger)
	logger.Info("Routes registered.")

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           otelhttp.NewHandler(router, "projexa-http"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Infof("Notification consumer running on %s bus", cfg.EventBus)
		return bus.Run(gctx, notifier.Handle)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newBus(cfg *config.Config, logger *logrus.Logger) (events.Bus, error) {
	switch cfg.EventBus {
	case "memory", "":
		return events.NewMemoryBus(cfg.EventBuffer, cfg.EventWorkers, logger), nil
	case "rabbitmq":
		return events.NewRabbitMQBus(cfg.RabbitMQURL, logger)
	case "kafka":
		return events.NewKafkaBus(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, logger), nil
	default:
		return nil, fmt.Errorf("unknown EVENT_BUS %q (want memory, rabbitmq or kafka)", cfg.EventBus)
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (session.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return session.NewMemoryStore(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("could not reach Redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Infof("Sessions stored in Redis at %s", cfg.RedisAddr)
	return session.NewRedisStore(client, logger), func() { _ = client.Close() }, nil
}
