package payments

import (
	"net/http"
	"strings"

	"habitat_payments/internal/config"
	"habitat_payments/internal/domain/entities"
	"habitat_payments/internal/usecase/interfaces"
	"habitat_payments/pkg/logger"
)

// NewGatewayFromConfig wires NotchPay for mobile money and the configured
// card provider behind a ChannelRouter.
func NewGatewayFromConfig(cfg config.GatewayConfig, logg *logger.Logger) (*ChannelRouter, error) {
	notchPay, err := NewNotchPayGateway(cfg.NotchPayKey,
		WithBaseURL(cfg.NotchPayBaseURL),
		WithHTTPClient(&http.Client{Timeout: cfg.NotchPayTimeout}),
		WithLogger(logg),
		WithMockMode(cfg.Mock, cfg.MockSettleAfter),
	)
	if err != nil {
		return nil, err
	}

	var card interfaces.IPaymentGateway = notchPay
	if strings.EqualFold(cfg.CardProvider, config.CardProviderMercadoPago) {
		mp, err := NewMercadoPagoGateway(cfg.MercadoPagoToken, cfg.Mock, cfg.MockSettleAfter, logg)
		if err != nil {
			return nil, err
		}
		card = mp
	}

	return NewChannelRouter(map[entities.Channel]interfaces.IPaymentGateway{
		entities.ChannelOrangeMoney: notchPay,
		entities.ChannelMTNMoMo:     notchPay,
		entities.ChannelCard:        card,
	})
}
