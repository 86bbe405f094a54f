package routes

import (
	"context"
	"fmt"
	"strings"

	"habitat_payments/internal/adapter/http/handlers"
	"habitat_payments/internal/adapter/persistence/repository"
	"habitat_payments/internal/config"
	"habitat_payments/internal/infrastructure/cache"
	"habitat_payments/internal/infrastructure/database"
	"habitat_payments/internal/infrastructure/metrics"
	"habitat_payments/internal/infrastructure/payments"
	"habitat_payments/internal/usecase"
	"habitat_payments/internal/usecase/interfaces"
	"habitat_payments/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type dependencies struct {
	handlers Handlers
	registry *prometheus.Registry
	cache    *cache.IdempotencyStore
}

func buildDependencies(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*dependencies, error) {
	ddb, err := database.ConnectDynamoDB(ctx, cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("connect dynamodb: %w", err)
	}
	// local DynamoDB starts empty; managed tables are provisioned outside the service
	if cfg.AWS.DynamoDBEndpoint != "" {
		created, err := database.EnsureTables(ctx, ddb, cfg.AWS.IntentsTable, cfg.AWS.PayablesTable)
		if err != nil {
			return nil, fmt.Errorf("ensure dynamodb tables: %w", err)
		}
		if len(created) > 0 {
			logg.Info(logg.WithField(ctx, "tables", strings.Join(created, ",")), "dynamodb tables created")
		}
	}

	deps := &dependencies{registry: prometheus.NewRegistry()}
	deps.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	paymentMetrics := metrics.NewPaymentMetrics(deps.registry)

	var idempotency interfaces.IIdempotencyStore
	if cfg.Redis.Enabled() {
		store, err := cache.NewIdempotencyStore(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		deps.cache = store
		idempotency = store
	} else {
		logg.Warn(ctx, "redis not configured; idempotency keys are not enforced", nil)
	}

	gateway, err := payments.NewGatewayFromConfig(cfg.Gateway, logg)
	if err != nil {
		deps.close(logg)
		return nil, fmt.Errorf("payment gateway: %w", err)
	}

	intentRepo := repository.NewPaymentIntentDynamoRepository(ddb, cfg.AWS.IntentsTable)
	payableRepo := repository.NewPayableDynamoRepository(ddb, cfg.AWS.PayablesTable)

	intentUseCase := usecase.NewPaymentIntentUseCase(intentRepo, payableRepo, gateway, idempotency, usecase.PaymentIntentOptions{
		Currency:    cfg.Gateway.Currency,
		CallbackURL: cfg.Gateway.CallbackURL,
		Metrics:     paymentMetrics,
		Logger:      logg,
	})
	payableUseCase := usecase.NewPayableUseCase(payableRepo)

	deps.handlers = Handlers{
		Intents:  handlers.NewPaymentIntentHandler(intentUseCase, logg),
		Payables: handlers.NewPayableHandler(payableUseCase),
	}
	return deps, nil
}

func (d *dependencies) close(logg *logger.Logger) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Close(); err != nil {
		logg.Error(context.Background(), "error closing redis", err)
	}
}
