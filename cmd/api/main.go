package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "habitat_payments/docs"
	"habitat_payments/internal/adapter/http/routes"
	"habitat_payments/internal/config"
	"habitat_payments/pkg/logger"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Habitat Payments API
// @version         1.0
// @description     Payment intents (Orange Money, MTN MoMo, card) for visits and bookings, backed by DynamoDB.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

func main() {
	logg := logger.New(logger.Options{ServiceName: "payments-api"})

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "payments-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"gateway_mock": cfg.Gateway.Mock,
		"card":         cfg.Gateway.CardProvider,
	})
	if err := routes.Run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
