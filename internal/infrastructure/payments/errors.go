package payments

import (
	"errors"
	"fmt"
)

var (
	ErrMissingNotchPayKey              = errors.New("missing NOTCHPAY_PUBLIC_KEY")
	ErrMissingMercadoPagoAccessToken   = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
	ErrNotchPayGatewayNotConfigured    = errors.New("notchpay gateway not configured")
	ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")
	ErrChannelNotRouted                = errors.New("payment channel has no gateway")
	ErrUnknownReference                = errors.New("unknown payment reference")
)

// ProviderError is a non-2xx answer from a payment provider.
type ProviderError struct {
	Provider   string
	Operation  string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s failed: status %d: %s", e.Provider, e.Operation, e.StatusCode, e.Message)
}
