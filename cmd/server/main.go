package main

import (
	"context"
	"os"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/app"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	appLogger := logger.New(logger.ConfigFromEnv())
	defer func() { _ = appLogger.Sync() }()

	if envErr != nil {
		appLogger.Info("No .env file loaded, using process environment", zap.Error(envErr))
	}

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(ctx, cfg, appLogger)
	cancel()
	if err != nil {
		appLogger.Fatal("Failed to initialize application", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		appLogger.Error("Application stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
