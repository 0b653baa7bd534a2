package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/ovibet/cashier/internal/adapter/client"
	"github.com/ovibet/cashier/internal/adapter/handler"
	"github.com/ovibet/cashier/internal/adapter/middleware"
	"github.com/ovibet/cashier/internal/adapter/registry"
	"github.com/ovibet/cashier/internal/adapter/storage"
	"github.com/ovibet/cashier/internal/core/config"
	"github.com/ovibet/cashier/internal/core/domain"
	"github.com/ovibet/cashier/internal/core/worker"
	"github.com/ovibet/cashier/internal/core/workflow"
)

func main() {
	// 1. Load Config
	cfg := config.LoadConfig()

	// 2. Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect to Database. The cashier runs without one (static catalog,
	// no idempotency cache, no webhook queue), which keeps local dev easy.
	var (
		methodCatalog registry.Registry = registry.NewStatic(registry.DefaultCatalog())
		jobs          *storage.WebhookJobRepository
	)
	dbPool, dbErr := storage.ConnectDB(cfg.DatabaseURL)
	if dbErr != nil {
		if cfg.DatabaseURL == "" {
			logger.Warn("⚠️ DATABASE_URL not set, running with the built-in method catalog")
		} else {
			logger.Error("❌ Database connection failed", "error", dbErr)
			os.Exit(1)
		}
	} else {
		logger.Info("✅ Connected to Postgres")
		methodCatalog = registry.NewPostgres(dbPool)
		jobs = storage.NewWebhookJobRepository(dbPool)
	}

	// 4. Outbound clients
	limitsClient := client.NewLimitsClient(cfg.LimitsAPIURL, cfg.LimitsAPIKey)
	submitter := client.NewSubmissionClient(cfg.PaymentsAPIURL, cfg.PaymentsAPIKey)

	// 5. Workflow manager. Settled transactions queue a webhook so the
	// platform invalidates balance and history caches.
	sessions := workflow.NewManager(workflow.ManagerConfig{
		Catalog:    methodCatalog,
		Limits:     limitsClient,
		Submitter:  submitter,
		Logger:     logger,
		SessionTTL: cfg.SessionTTL,
		OnSettled: func(userID string, result domain.TransactionResult) {
			if jobs == nil || cfg.WebhookURL == "" {
				return
			}
			payload, err := json.Marshal(map[string]interface{}{
				"event": "cashier.transaction.settled",
				"data": map[string]interface{}{
					"userId":        userID,
					"transactionId": result.TransactionID,
					"methodId":      result.MethodID,
					"amount":        result.SubmittedAmount.String(),
					"createdAt":     result.CreatedAt,
				},
			})
			if err != nil {
				logger.Error("failed to marshal settled event", "error", err)
				return
			}
			if err := jobs.Enqueue(context.Background(), cfg.WebhookURL, payload); err != nil {
				logger.Error("failed to queue settled webhook", "error", err, "user_id", userID)
			}
		},
	})
	sessions.StartSweeper(ctx, time.Minute)

	cashier := handler.NewCashierHandler(sessions, methodCatalog)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	if dbPool != nil {
		keys := &handler.KeyHandler{Repo: storage.NewAPIKeyRepository(dbPool)}
		app.Post("/v1/admin/api-keys", keys.CreateKey)
	}

	api := app.Group("/v1/cashier")
	if dbPool != nil {
		api.Use(middleware.Protected(dbPool))
	}

	api.Get("/methods", cashier.ListMethods)
	api.Get("/methods/:id", cashier.GetMethod)
	api.Post("/sessions", cashier.OpenSession)
	api.Get("/sessions/:id", cashier.GetSession)
	api.Post("/sessions/:id/method", cashier.SelectMethod)
	api.Post("/sessions/:id/form", cashier.SubmitForm)
	api.Post("/sessions/:id/back", cashier.Back)
	if dbPool != nil {
		idem := storage.NewIdempotencyRepository(dbPool)
		api.Post("/sessions/:id/confirm", middleware.Idempotency(idem), cashier.Confirm)
	} else {
		api.Post("/sessions/:id/confirm", cashier.Confirm)
	}
	api.Post("/sessions/:id/retry", cashier.Retry)
	api.Delete("/sessions/:id", cashier.CloseSession)

	// 7. Start Worker
	if jobs != nil {
		worker.StartWebhookWorker(ctx, jobs, cfg.WebhookSecret, logger)
	}

	// 8. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("🚀 Cashier service starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("🛑 Shutting down...")
	cancel()

	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	if dbPool != nil {
		dbPool.Close()
		slog.Info("✅ Database connection closed")
	}
	slog.Info("👋 Cashier service exited")
}
