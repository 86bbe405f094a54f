package interfaces

import (
	"context"

	"habitat_payments/internal/domain/entities"
)

// IPayableRepository abstracts DynamoDB persistence for Payable.
//
// The payment service must be able to:
//   - register the visit or booking a payment settles
//   - record settled amounts without losing concurrent updates
//   - close a payable when the visit or booking is cancelled

type IPayableRepository interface {
	Create(ctx context.Context, p entities.Payable) (entities.Payable, error)
	GetByID(ctx context.Context, id string) (entities.Payable, error)
	// RecordPayment adds amount to p.AmountPaid when the stored value still
	// equals p.AmountPaid. It returns an empty entity when the check fails.
	RecordPayment(ctx context.Context, p entities.Payable, amount int64) (entities.Payable, error)
	UpdateStatus(ctx context.Context, id string, status entities.PayableStatus) (entities.Payable, error)
}
