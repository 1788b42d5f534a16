package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL          string
	Port                 string
	Env                  string
	MessageDispatchURL   string // external email/WhatsApp dispatch service
	MessageDispatchKey   string
	WorkerBatchSize      int
	WorkerSchedule       string // cron expression for the runner binary
	WebhookMaxConcurrent int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		Port:                 os.Getenv("PORT"),
		Env:                  os.Getenv("ENV"),
		MessageDispatchURL:   os.Getenv("MESSAGE_DISPATCH_URL"),
		MessageDispatchKey:   os.Getenv("MESSAGE_DISPATCH_KEY"),
		WorkerBatchSize:      getEnvInt("WORKER_BATCH_SIZE", 50),
		WorkerSchedule:       os.Getenv("WORKER_SCHEDULE"),
		WebhookMaxConcurrent: getEnvInt("WEBHOOK_MAX_CONCURRENT", 10),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.WorkerSchedule == "" {
		// Every 5 minutes, matching the original cron cadence
		cfg.WorkerSchedule = "0 */5 * * * *"
	}

	return cfg
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		log.Printf("⚠️ Invalid %s=%q, using default %d", key, raw, fallback)
		return fallback
	}
	return value
}
