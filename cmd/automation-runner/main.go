package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/trevocrm/crm-automation-be/internal/core/automation"
	"github.com/trevocrm/crm-automation-be/internal/core/messaging"
	"github.com/trevocrm/crm-automation-be/internal/repositories"
	"github.com/trevocrm/crm-automation-be/internal/services"
	"github.com/trevocrm/crm-automation-be/internal/shared/config"
	"github.com/trevocrm/crm-automation-be/internal/shared/database"
	"github.com/trevocrm/crm-automation-be/internal/shared/utils"
)

func main() {
	var once bool
	flag.BoolVar(&once, "once", false, "Run a single sweep and exit")
	flag.Parse()

	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories
	ruleRepo := repositories.NewRuleRepo(db.GORM)
	eventRepo := repositories.NewEventRepo(db.GORM)
	logRepo := repositories.NewAutomationLogRepo(db.GORM)
	entityRepo := repositories.NewEntityRepo(db.GORM)
	activityRepo := repositories.NewActivityRepo(db.GORM)
	notificationRepo := repositories.NewNotificationRepo(db.GORM)

	// Init services
	messenger := messaging.NewService(cfg.MessageDispatchURL, cfg.MessageDispatchKey)
	executor := automation.NewExecutor(activityRepo, notificationRepo, entityRepo, messenger)
	workerService := services.NewWorkerService(eventRepo, ruleRepo, logRepo, entityRepo, executor)

	sweep := func() {
		processed, failed, err := workerService.Run(context.Background(), cfg.WorkerBatchSize)
		if err != nil {
			log.Printf("❌ Automation sweep failed: %v", err)
			return
		}
		utils.LogInfo("automation sweep completed", map[string]interface{}{
			"processed": processed,
			"errors":    failed,
		})
	}

	if once {
		sweep()
		return
	}

	log.Printf("🚀 Starting automation-runner (schedule: %s)", cfg.WorkerSchedule)

	// Support seconds in cron expressions
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.WorkerSchedule, sweep); err != nil {
		log.Fatalf("❌ Invalid worker schedule %q: %v", cfg.WorkerSchedule, err)
	}
	c.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down automation-runner...")
	// Let an in-flight sweep finish before exiting
	<-c.Stop().Done()
}
