package payments

import (
	"context"
	"fmt"

	"habitat_payments/internal/domain/entities"
	"habitat_payments/internal/usecase/interfaces"
)

// ChannelRouter dispatches each payment to the gateway serving its channel.
type ChannelRouter struct {
	routes map[entities.Channel]interfaces.IPaymentGateway
}

var _ interfaces.IPaymentGateway = (*ChannelRouter)(nil)

// NewChannelRouter requires a gateway for every channel offered to payers.
func NewChannelRouter(routes map[entities.Channel]interfaces.IPaymentGateway) (*ChannelRouter, error) {
	r := &ChannelRouter{routes: make(map[entities.Channel]interfaces.IPaymentGateway, len(routes))}
	for ch, gw := range routes {
		if gw != nil {
			r.routes[ch] = gw
		}
	}
	for _, ch := range entities.Channels() {
		if _, ok := r.routes[ch]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrChannelNotRouted, ch)
		}
	}
	return r, nil
}

func (r *ChannelRouter) InitiatePayment(ctx context.Context, req entities.GatewayPaymentRequest) (entities.GatewayPayment, error) {
	gw, err := r.gateway(req.Channel)
	if err != nil {
		return entities.GatewayPayment{}, err
	}
	return gw.InitiatePayment(ctx, req)
}

func (r *ChannelRouter) FetchPayment(ctx context.Context, ref entities.GatewayReference) (entities.GatewayPayment, error) {
	gw, err := r.gateway(ref.Channel)
	if err != nil {
		return entities.GatewayPayment{}, err
	}
	return gw.FetchPayment(ctx, ref)
}

func (r *ChannelRouter) gateway(ch entities.Channel) (interfaces.IPaymentGateway, error) {
	gw, ok := r.routes[ch]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotRouted, ch)
	}
	return gw, nil
}
