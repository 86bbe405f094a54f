package handlers

import (
	"errors"
	"net/http"

	request "habitat_payments/internal/adapter/http/dto/request"
	response "habitat_payments/internal/adapter/http/dto/response"
	"habitat_payments/internal/domain/entities"
	"habitat_payments/internal/usecase"
	"habitat_payments/pkg"
	"habitat_payments/pkg/logger"

	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry CreateIntent without double charging.
const IdempotencyKeyHeader = "Idempotency-Key"

// Error codes clients switch on.
const (
	CodeMissingRelatedID = "MISSING_RELATED_ID"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidPhone     = "INVALID_PHONE"
	CodeProviderError    = "PAYMENT_PROVIDER_ERROR"
)

var errInvalidIntentPayload = pkg.NewDomainErrorSimple(CodeInvalidRequest, "Invalid payment request", http.StatusBadRequest)

// PaymentIntentHandler exposes the payment service to payment sessions.
type PaymentIntentHandler struct {
	usecase usecase.IPaymentIntentUseCase
	logg    *logger.Logger
}

func NewPaymentIntentHandler(uc usecase.IPaymentIntentUseCase, logg *logger.Logger) *PaymentIntentHandler {
	if logg == nil {
		logg = logger.Nop()
	}
	return &PaymentIntentHandler{usecase: uc, logg: logg}
}

// CreateIntent godoc
// @Summary      Create a payment intent
// @Description  Starts collection on the chosen channel. Mobile money returns a confirm action, card returns a hosted checkout URL.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                        false  "Idempotency key"
// @Param        payload          body      request.CreateIntentRequest  true   "Intent"
// @Success      201              {object}  response.IntentReceiptResponse
// @Failure      400              {object}  pkg.HTTPError
// @Failure      422              {object}  pkg.HTTPError
// @Failure      502              {object}  pkg.HTTPError
// @Router       /payments/intents [post]
func (h *PaymentIntentHandler) CreateIntent(c *gin.Context) {
	ctx := c.Request.Context()
	var payload request.CreateIntentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logg.Warn(ctx, "create intent payload invalid", err)
		c.JSON(errInvalidIntentPayload.HTTPStatus, errInvalidIntentPayload.ToHTTPError())
		return
	}

	cmd := payload.ToCommand(c.GetHeader(IdempotencyKeyHeader))
	intent, err := h.usecase.CreateIntent(ctx, cmd)
	if err != nil {
		appErr := mapPaymentIntentError(err)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			h.logg.Error(ctx, "create intent failed", err)
		}
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, response.FromIntentReceipt(intent))
}

// GetIntentStatus godoc
// @Summary      Get a payment intent status
// @Description  Idempotent; pending intents are refreshed from the payment provider.
// @Tags         payments
// @Produce      json
// @Param        intent_id  path      string  true  "Intent ID"
// @Success      200        {object}  response.IntentStatusResponse
// @Failure      404        {object}  pkg.HTTPError
// @Router       /payments/intents/{intent_id} [get]
func (h *PaymentIntentHandler) GetIntentStatus(c *gin.Context) {
	intent, err := h.usecase.GetIntentStatus(c.Request.Context(), c.Param("intent_id"))
	if err != nil {
		appErr := mapPaymentIntentError(err)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			h.logg.Error(c.Request.Context(), "get intent status failed", err)
		}
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromIntentStatus(intent))
}

func mapPaymentIntentError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, entities.ErrMissingRelatedID):
		return pkg.NewDomainErrorSimple(CodeMissingRelatedID, "Payment is not linked to a visit or booking", http.StatusBadRequest)
	case errors.Is(err, entities.ErrIntentRejected):
		return pkg.NewDomainErrorSimple(CodeInvalidPhone, "The phone number was rejected for this payment method", http.StatusUnprocessableEntity)
	case errors.Is(err, usecase.ErrInvalidIntentRequest), errors.Is(err, usecase.ErrInvalidIntentID):
		return pkg.NewDomainErrorSimple(CodeInvalidRequest, "Invalid payment request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPayableNotFound):
		return pkg.NewDomainErrorSimple("PAYABLE_NOT_FOUND", "Nothing to pay for this visit or booking", http.StatusNotFound)
	case errors.Is(err, usecase.ErrPayableMismatch):
		return pkg.NewDomainErrorSimple("PAYABLE_MISMATCH", "The amount does not match what is due", http.StatusConflict)
	case errors.Is(err, usecase.ErrPayableClosed):
		return pkg.NewDomainErrorSimple("PAYABLE_CLOSED", "This visit or booking can no longer be paid", http.StatusConflict)
	case errors.Is(err, usecase.ErrIdempotencyConflict):
		return pkg.NewDomainErrorSimple("IDEMPOTENCY_CONFLICT", "This payment is already being processed", http.StatusConflict)
	case errors.Is(err, usecase.ErrIntentNotFound):
		return pkg.NewDomainErrorSimple("INTENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrPaymentProvider):
		return pkg.NewDomainError(CodeProviderError, "The payment provider is unavailable, please try again", err, http.StatusBadGateway)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
