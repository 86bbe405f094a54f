package interfaces

import (
	"context"

	"habitat_payments/internal/domain/entities"
)

// IPaymentGateway abstracts external payment providers (NotchPay, Mercado Pago).
//
// InitiatePayment starts collection for an intent; FetchPayment reads the
// provider-side status back. Implementations wrap entities.ErrInvalidPhone
// when the provider refuses the phone/channel pair.
type IPaymentGateway interface {
	InitiatePayment(ctx context.Context, req entities.GatewayPaymentRequest) (entities.GatewayPayment, error)
	FetchPayment(ctx context.Context, ref entities.GatewayReference) (entities.GatewayPayment, error)
}
