package interfaces

import (
	"context"

	"habitat_payments/internal/domain/entities"
)

// IPaymentIntentRepository abstracts DynamoDB persistence for PaymentIntent.
//
// Lookups return an empty entity (ID == "") when nothing matches.
type IPaymentIntentRepository interface {
	Create(ctx context.Context, p entities.PaymentIntent) (entities.PaymentIntent, error)
	GetByID(ctx context.Context, id string) (entities.PaymentIntent, error)
	// UpdateOutcome moves a pending intent to p.Status. It returns an empty
	// entity when the intent is no longer pending.
	UpdateOutcome(ctx context.Context, p entities.PaymentIntent) (entities.PaymentIntent, error)
}
