package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "habitat_payments/docs" // swagger spec registration
	"habitat_payments/internal/adapter/http/handlers"
	"habitat_payments/internal/config"
	"habitat_payments/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	PathPayments = "/payments"
	PathPayables = "/payables"
	PathMetrics  = "/metrics"

	shutdownTimeout = 10 * time.Second
)

type Handlers struct {
	Intents  *handlers.PaymentIntentHandler
	Payables *handlers.PayableHandler
}

// NewRouter builds the gin engine. gatherer may be nil, in which case
// /metrics is not exposed.
func NewRouter(h Handlers, gatherer prometheus.Gatherer, logg *logger.Logger) *gin.Engine {
	router := gin.New()
	setMiddlewares(router, logg)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if gatherer != nil {
		router.GET(PathMetrics, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addPaymentRoutes(v1, h.Intents, h.Payables)
	return router
}

// Run wires the service from cfg and serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	deps, err := buildDependencies(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer deps.close(logg)

	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           NewRouter(deps.handlers, deps.registry, logg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", server.Addr), "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logg.Info(ctx, "shutting down api server")
	return server.Shutdown(shutdownCtx)
}

func setMiddlewares(router *gin.Engine, logg *logger.Logger) {
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logg.Error(c.Request.Context(), "recovered from panic", panicError{value: recovered})
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
}

type panicError struct{ value any }

func (p panicError) Error() string {
	if err, ok := p.value.(error); ok {
		return err.Error()
	}
	if s, ok := p.value.(string); ok {
		return s
	}
	return "panic"
}
