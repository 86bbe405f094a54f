package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"

	"habitat_payments/internal/domain/entities"
	"habitat_payments/internal/usecase/interfaces"
	"habitat_payments/pkg/logger"
)

const mercadoPagoProvider = "mercadopago"

type preferenceCreator interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

type paymentSearcher interface {
	Search(ctx context.Context, request payment.SearchRequest) (*payment.SearchResponse, error)
}

// MercadoPagoGateway collects card payments through a Checkout Pro hosted
// page. The intent id travels as external_reference and is used to find the
// resulting payment.
type MercadoPagoGateway struct {
	preferences preferenceCreator
	payments    paymentSearcher
	logg        *logger.Logger
	mock        *mockProvider
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string, mockMode bool, mockSettleAfter time.Duration, logg *logger.Logger) (*MercadoPagoGateway, error) {
	if logg == nil {
		logg = logger.Nop()
	}
	ctx := context.Background()
	if mockMode {
		logg.Info(ctx, "mercado pago gateway mock mode enabled")
		if mockSettleAfter <= 0 {
			mockSettleAfter = defaultMockSettleAfter
		}
		return &MercadoPagoGateway{logg: logg, mock: newMockProvider(mockSettleAfter)}, nil
	}

	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		logg.Warn(ctx, "mercado pago access token missing", ErrMissingMercadoPagoAccessToken)
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		logg.Error(ctx, "failed creating mercado pago sdk config", err)
		return nil, err
	}
	logg.Info(ctx, "mercado pago client initialized")

	return &MercadoPagoGateway{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
		logg:        logg,
	}, nil
}

// InitiatePayment creates a checkout preference and returns its init point as
// the authorization URL.
func (g *MercadoPagoGateway) InitiatePayment(ctx context.Context, req entities.GatewayPaymentRequest) (entities.GatewayPayment, error) {
	if g == nil {
		return entities.GatewayPayment{}, ErrMercadoPagoGatewayNotConfigured
	}
	logCtx := g.logg.WithField(ctx, "reference", req.Reference)
	if g.mock != nil {
		g.logg.Debug(logCtx, "mercado pago mock initiate")
		return g.mock.initiate(req)
	}
	if g.preferences == nil {
		return entities.GatewayPayment{}, ErrMercadoPagoGatewayNotConfigured
	}
	if req.Channel.RequiresPhone() {
		return entities.GatewayPayment{}, fmt.Errorf("%w: mercado pago handles %s only", ErrChannelNotRouted, entities.ChannelCard)
	}

	g.logg.Info(logCtx, "mercado pago preference create start")
	resp, err := g.preferences.Create(ctx, preference.Request{
		Items: []preference.ItemRequest{{
			ID:         req.Reference,
			Title:      req.Description,
			Quantity:   1,
			UnitPrice:  float64(req.Amount),
			CurrencyID: req.Currency,
		}},
		ExternalReference: req.Reference,
		NotificationURL:   req.CallbackURL,
	})
	if err != nil {
		g.logg.Warn(logCtx, "mercado pago preference create failed", err)
		return entities.GatewayPayment{}, &ProviderError{Provider: mercadoPagoProvider, Operation: "preference", Message: err.Error()}
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		g.logg.Warn(logCtx, "mercado pago response marshal failed", err)
		return entities.GatewayPayment{}, err
	}
	g.logg.Info(g.logg.WithField(logCtx, "preference_id", resp.ID), "mercado pago preference created")

	return entities.GatewayPayment{
		ProviderReference: resp.ID,
		Status:            entities.IntentStatusPending,
		AuthorizationURL:  resp.InitPoint,
		Raw:               raw,
	}, nil
}

// FetchPayment looks up payments made against the preference. Until the
// payer submits the hosted form there is none and the intent stays pending.
func (g *MercadoPagoGateway) FetchPayment(ctx context.Context, ref entities.GatewayReference) (entities.GatewayPayment, error) {
	if g == nil {
		return entities.GatewayPayment{}, ErrMercadoPagoGatewayNotConfigured
	}
	if g.mock != nil {
		return g.mock.fetch(ref)
	}
	if g.payments == nil {
		return entities.GatewayPayment{}, ErrMercadoPagoGatewayNotConfigured
	}

	resp, err := g.payments.Search(ctx, payment.SearchRequest{
		Filters: map[string]string{"external_reference": ref.Reference},
	})
	if err != nil {
		return entities.GatewayPayment{}, &ProviderError{Provider: mercadoPagoProvider, Operation: "search", Message: err.Error()}
	}

	out := entities.GatewayPayment{ProviderReference: ref.ProviderReference, Status: entities.IntentStatusPending}
	if resp == nil {
		return out, nil
	}
	if raw, err := json.Marshal(resp); err == nil {
		out.Raw = raw
	}

	// approved wins; a rejected attempt only fails the intent when nothing
	// else is still in process
	failed, inProcess := "", false
	for _, p := range resp.Results {
		switch mapMercadoPagoStatus(p.Status) {
		case entities.IntentStatusSucceeded:
			out.Status = entities.IntentStatusSucceeded
			return out, nil
		case entities.IntentStatusFailed:
			failed = mercadoPagoReason(p.StatusDetail)
		default:
			inProcess = true
		}
	}
	if len(resp.Results) > 0 && !inProcess {
		out.Status = entities.IntentStatusFailed
		out.FailureReason = failed
	}
	return out, nil
}

func mapMercadoPagoStatus(status string) entities.IntentStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved":
		return entities.IntentStatusSucceeded
	case "rejected", "cancelled", "refunded", "charged_back":
		return entities.IntentStatusFailed
	}
	return entities.IntentStatusPending
}

func mercadoPagoReason(detail string) string {
	switch detail {
	case "cc_rejected_insufficient_amount":
		return "Insufficient funds on the card"
	case "cc_rejected_bad_filled_security_code":
		return "Invalid card security code"
	case "cc_rejected_bad_filled_date":
		return "Invalid card expiry date"
	case "cc_rejected_call_for_authorize":
		return "The card issuer must authorize this payment"
	case "":
		return ""
	}
	return "Card payment declined"
}
