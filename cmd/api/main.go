package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/invoice-service/internal/api/http"
	"github.com/spec-kit/invoice-service/internal/api/http/handlers"
	"github.com/spec-kit/invoice-service/internal/auth"
	"github.com/spec-kit/invoice-service/internal/chat"
	"github.com/spec-kit/invoice-service/internal/config"
	"github.com/spec-kit/invoice-service/internal/events"
	"github.com/spec-kit/invoice-service/internal/observability"
	"github.com/spec-kit/invoice-service/internal/persistence"
	"github.com/spec-kit/invoice-service/internal/render"
	"github.com/spec-kit/invoice-service/internal/repository"
	"github.com/spec-kit/invoice-service/internal/repository/memory"
	"github.com/spec-kit/invoice-service/internal/service"
	"github.com/spec-kit/invoice-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users    repository.UserRepository
	resets   repository.PasswordResetRepository
	invoices repository.InvoiceRepository
	orders   repository.PurchaseOrderRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.OpenRecordStore(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to open record store", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(pg.PoolHandle())
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:          repos.users,
		PasswordResetRepo: repos.resets,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	invoiceService := service.NewInvoiceService(service.InvoiceDependencies{
		InvoiceRepo:       repos.invoices,
		PurchaseOrderRepo: repos.orders,
		UserRepo:          repos.users,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	orderService := service.NewPurchaseOrderService(service.PurchaseOrderDependencies{
		PurchaseOrderRepo: repos.orders,
		UserRepo:          repos.users,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users)

	var counter httptransport.WindowCounter
	if redis != nil {
		counter = redis
	}
	chatLimiter := httptransport.NewLimiter(cfg.RateLimit, counter)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:     cfg.App.RequestTimeout(),
		CORSOrigins: cfg.App.CORSOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Invoices:       handlers.NewInvoicesHandler(invoiceService, render.NewInvoiceRenderer(cfg.Render), logger),
		PurchaseOrders: handlers.NewPurchaseOrdersHandler(orderService),
		Chat:           handlers.NewChatHandler(chat.NewRelay(cfg.Chat, logger)),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: authMiddleware,
		ChatLimiter:    httptransport.RateLimit(chatLimiter, "chat", logger),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

// buildRepositories picks Postgres when a pool is available and the
// in-process store otherwise.
func buildRepositories(pool *pgxpool.Pool) repositories {
	if pool == nil {
		store := memory.NewStore()
		return repositories{
			users:    store.Users(),
			resets:   store.PasswordResets(),
			invoices: store.Invoices(),
			orders:   store.PurchaseOrders(),
		}
	}
	return repositories{
		users:    repository.NewUserRepository(pool),
		resets:   repository.NewPasswordResetRepository(pool),
		invoices: repository.NewInvoiceRepository(pool),
		orders:   repository.NewPurchaseOrderRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
