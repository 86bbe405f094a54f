package routes

import (
	"net/http"

	"habitat_payments/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

func addPaymentRoutes(rg *gin.RouterGroup, intentHandler *handlers.PaymentIntentHandler, payableHandler *handlers.PayableHandler) {
	payments := rg.Group(PathPayments)
	{
		payments.POST("/intents", intentHandler.CreateIntent)
		payments.GET("/intents/:intent_id", intentHandler.GetIntentStatus)
	}

	payables := rg.Group(PathPayables)
	{
		payables.POST("", payableHandler.RegisterPayable)
		payables.GET("/:payable_id", payableHandler.GetPayable)
		payables.PATCH("/:payable_id/cancel", payableHandler.CancelPayable)
	}
}
