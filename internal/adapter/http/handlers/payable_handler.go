package handlers

import (
	"errors"
	"net/http"

	request "habitat_payments/internal/adapter/http/dto/request"
	response "habitat_payments/internal/adapter/http/dto/response"
	"habitat_payments/internal/usecase"
	"habitat_payments/pkg"

	"github.com/gin-gonic/gin"
)

var errInvalidPayablePayload = pkg.NewDomainErrorSimple("INVALID_PAYABLE_INPUT", "Invalid payable payload", http.StatusBadRequest)

// PayableHandler lets the marketplace register what a visit or booking costs.
type PayableHandler struct {
	usecase usecase.IPayableUseCase
}

func NewPayableHandler(uc usecase.IPayableUseCase) *PayableHandler {
	return &PayableHandler{usecase: uc}
}

// RegisterPayable godoc
// @Summary  Register a payable
// @Tags     payables
// @Accept   json
// @Produce  json
// @Param    payload  body      request.PayableRequest  true  "Payable"
// @Success  201      {object}  response.PayableResponse
// @Failure  409      {object}  pkg.HTTPError
// @Router   /payables [post]
func (h *PayableHandler) RegisterPayable(c *gin.Context) {
	var payload request.PayableRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPayablePayload.HTTPStatus, errInvalidPayablePayload.ToHTTPError())
		return
	}

	p, err := h.usecase.Register(c.Request.Context(), payload.ResolveKind(), payload.ID, payload.AmountDue)
	if err != nil {
		appErr := mapPayableError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, response.FromPayable(p))
}

func (h *PayableHandler) GetPayable(c *gin.Context) {
	p, err := h.usecase.GetByID(c.Request.Context(), c.Param("payable_id"))
	if err != nil {
		appErr := mapPayableError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromPayable(p))
}

func (h *PayableHandler) CancelPayable(c *gin.Context) {
	p, err := h.usecase.Cancel(c.Request.Context(), c.Param("payable_id"))
	if err != nil {
		appErr := mapPayableError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromPayable(p))
}

func mapPayableError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidPayableID), errors.Is(err, usecase.ErrInvalidPayableKind), errors.Is(err, usecase.ErrInvalidAmountDue):
		return pkg.NewDomainErrorSimple(CodeInvalidRequest, "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPayableAlreadyExists):
		return pkg.NewDomainErrorSimple("PAYABLE_ALREADY_EXISTS", "Payable already exists", http.StatusConflict)
	case errors.Is(err, usecase.ErrPayableNotFound):
		return pkg.NewDomainErrorSimple("PAYABLE_NOT_FOUND", "Payable not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrPayableClosed):
		return pkg.NewDomainErrorSimple("PAYABLE_CLOSED", "Payable already paid", http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
