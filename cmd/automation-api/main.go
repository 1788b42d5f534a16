package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/trevocrm/crm-automation-be/internal/core/automation"
	"github.com/trevocrm/crm-automation-be/internal/core/messaging"
	"github.com/trevocrm/crm-automation-be/internal/core/webhook"
	"github.com/trevocrm/crm-automation-be/internal/handlers"
	"github.com/trevocrm/crm-automation-be/internal/repositories"
	"github.com/trevocrm/crm-automation-be/internal/services"
	"github.com/trevocrm/crm-automation-be/internal/shared/config"
	"github.com/trevocrm/crm-automation-be/internal/shared/database"
	"github.com/trevocrm/crm-automation-be/internal/shared/utils"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Printf("🚀 Starting automation-api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories (use GORM instance)
	ruleRepo := repositories.NewRuleRepo(db.GORM)
	eventRepo := repositories.NewEventRepo(db.GORM)
	logRepo := repositories.NewAutomationLogRepo(db.GORM)
	webhookRepo := repositories.NewWebhookRepo(db.GORM)
	entityRepo := repositories.NewEntityRepo(db.GORM)
	activityRepo := repositories.NewActivityRepo(db.GORM)
	notificationRepo := repositories.NewNotificationRepo(db.GORM)

	// Init message dispatch client (email/whatsapp sends go through the
	// messaging microservice, not direct SMTP)
	messenger := messaging.NewService(cfg.MessageDispatchURL, cfg.MessageDispatchKey)

	// Init action executor
	executor := automation.NewExecutor(activityRepo, notificationRepo, entityRepo, messenger)

	// Init webhook dispatcher
	dispatcher := webhook.NewDispatcher(webhookRepo, webhookRepo, cfg.WebhookMaxConcurrent)

	// Init services
	ruleService := services.NewRuleService(ruleRepo)
	workerService := services.NewWorkerService(eventRepo, ruleRepo, logRepo, entityRepo, executor)
	webhookService := services.NewWebhookService(webhookRepo, dispatcher)

	// Init handlers
	ruleHandler := handlers.NewRuleHandler(ruleService, logRepo)
	eventHandler := handlers.NewEventHandler(eventRepo)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	runnerHandler := handlers.NewRunnerHandler(workerService, cfg.WorkerBatchSize)
	healthHandler := handlers.NewHealthHandler(db)

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "TrevoCRM Automation API",
	})

	// Middleware
	app.Use(cors.New())

	// Health check
	app.Get("/health", healthHandler.Health)

	// Automation rule routes
	app.Post("/automation/rules", ruleHandler.CreateRule)
	app.Get("/automation/rules", ruleHandler.ListRules)
	app.Get("/automation/rules/:id", ruleHandler.GetRule)
	app.Put("/automation/rules/:id", ruleHandler.UpdateRule)
	app.Delete("/automation/rules/:id", ruleHandler.DeleteRule)
	app.Get("/automation/rules/:id/logs", ruleHandler.GetRuleLogs)

	// Event ingestion from the main CRM backend
	app.Post("/automation/events", eventHandler.Enqueue)

	// Manual worker sweep
	app.Post("/automation/run", runnerHandler.Run)

	// Webhook routes (method + ?action= multiplexed)
	app.Post("/webhooks", webhookHandler.Handle)
	app.Get("/webhooks", webhookHandler.Handle)
	app.Delete("/webhooks", webhookHandler.Handle)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
