package request

import (
	"strings"

	"habitat_payments/internal/domain/entities"
)

// CreateIntentRequest is the body of POST /v1/payments/intents.
//
// related_id is not enforced by binding: a missing id is reported with its own
// error code so clients can tell it apart from malformed input.
type CreateIntentRequest struct {
	PayerID       string `json:"payer_id" binding:"required"`
	Purpose       string `json:"purpose" binding:"required,oneof=visit booking booking_remaining"`
	RelatedID     string `json:"related_id"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Channel       string `json:"channel" binding:"required,oneof=mobile-money-orange mobile-money-mtn card"`
	CustomerPhone string `json:"customer_phone"`
}

func (r CreateIntentRequest) ToCommand(idempotencyKey string) entities.CreateIntentCommand {
	return entities.CreateIntentCommand{
		PayerID:        strings.TrimSpace(r.PayerID),
		Purpose:        entities.Purpose(r.Purpose),
		RelatedID:      strings.TrimSpace(r.RelatedID),
		Amount:         r.Amount,
		Channel:        entities.Channel(r.Channel),
		CustomerPhone:  strings.TrimSpace(r.CustomerPhone),
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}
