package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"habitat_payments/internal/domain/entities"
	"habitat_payments/internal/usecase/interfaces"
	"habitat_payments/pkg/logger"
)

const (
	notchPayProvider        = "notchpay"
	defaultNotchPayBaseURL  = "https://api.notchpay.co"
	responseBodyReadLimit   = 4096
	defaultNotchPayTimeout  = 20 * time.Second
	defaultMockSettleAfter  = 10 * time.Second
	notchPayStatusComplete  = "complete"
	notchPayActionConfirm   = "confirm"
	notchPayPhoneErrorField = "phone"
)

// NotchPayGateway collects Orange Money, MTN MoMo and card payments through
// NotchPay. Mobile money payments are pushed to the payer's phone right after
// initialization; card payments complete on the hosted authorization page.
type NotchPayGateway struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logg       *logger.Logger
	mock       *mockProvider
}

var _ interfaces.IPaymentGateway = (*NotchPayGateway)(nil)

// NotchPayOption configures optional gateway behavior.
type NotchPayOption func(*NotchPayGateway)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) NotchPayOption {
	return func(g *NotchPayGateway) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithBaseURL overrides the NotchPay API base URL.
func WithBaseURL(baseURL string) NotchPayOption {
	return func(g *NotchPayGateway) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			g.baseURL = trimmed
		}
	}
}

func WithLogger(logg *logger.Logger) NotchPayOption {
	return func(g *NotchPayGateway) {
		if logg != nil {
			g.logg = logg
		}
	}
}

// WithMockMode replaces NotchPay with an in-process provider whose payments
// settle after settleAfter.
func WithMockMode(enabled bool, settleAfter time.Duration) NotchPayOption {
	return func(g *NotchPayGateway) {
		if !enabled {
			return
		}
		if settleAfter <= 0 {
			settleAfter = defaultMockSettleAfter
		}
		g.mock = newMockProvider(settleAfter)
	}
}

func NewNotchPayGateway(apiKey string, opts ...NotchPayOption) (*NotchPayGateway, error) {
	g := &NotchPayGateway{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultNotchPayBaseURL,
		httpClient: &http.Client{Timeout: defaultNotchPayTimeout},
		logg:       logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	if g.mock != nil {
		g.logg.Info(context.Background(), "notchpay gateway mock mode enabled")
		return g, nil
	}
	if g.apiKey == "" {
		return nil, ErrMissingNotchPayKey
	}
	return g, nil
}

type notchPayInitRequest struct {
	Amount      int64            `json:"amount"`
	Currency    string           `json:"currency"`
	Reference   string           `json:"reference"`
	Description string           `json:"description,omitempty"`
	Callback    string           `json:"callback,omitempty"`
	Customer    notchPayCustomer `json:"customer"`
}

type notchPayCustomer struct {
	Phone string `json:"phone,omitempty"`
}

type notchPayTransaction struct {
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason"`
}

type notchPayInitResponse struct {
	Status           string              `json:"status"`
	Message          string              `json:"message"`
	AuthorizationURL string              `json:"authorization_url"`
	Transaction      notchPayTransaction `json:"transaction"`
}

type notchPayChargeRequest struct {
	Channel string             `json:"channel"`
	Data    notchPayChargeData `json:"data"`
}

type notchPayChargeData struct {
	Phone string `json:"phone"`
}

type notchPayChargeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

type notchPayFetchResponse struct {
	Transaction notchPayTransaction `json:"transaction"`
}

type notchPayErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// InitiatePayment initializes a NotchPay payment and, for mobile money,
// pushes the USSD prompt to the payer's phone.
func (g *NotchPayGateway) InitiatePayment(ctx context.Context, req entities.GatewayPaymentRequest) (entities.GatewayPayment, error) {
	if g == nil {
		return entities.GatewayPayment{}, ErrNotchPayGatewayNotConfigured
	}
	logCtx := g.logg.WithFields(ctx, map[string]any{
		"reference": req.Reference,
		"channel":   string(req.Channel),
	})
	if g.mock != nil {
		g.logg.Debug(logCtx, "notchpay mock initiate")
		return g.mock.initiate(req)
	}

	g.logg.Info(logCtx, "notchpay initialize start")
	var initResp notchPayInitResponse
	raw, err := g.do(ctx, http.MethodPost, "payments", "initialize", notchPayInitRequest{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Reference:   req.Reference,
		Description: req.Description,
		Callback:    req.CallbackURL,
		Customer:    notchPayCustomer{Phone: req.Phone},
	}, &initResp)
	if err != nil {
		g.logg.Warn(logCtx, "notchpay initialize failed", err)
		return entities.GatewayPayment{}, err
	}
	providerRef := initResp.Transaction.Reference
	if providerRef == "" {
		return entities.GatewayPayment{}, &ProviderError{
			Provider:   notchPayProvider,
			Operation:  "initialize",
			StatusCode: http.StatusOK,
			Message:    "response without transaction reference",
		}
	}

	out := entities.GatewayPayment{
		ProviderReference: providerRef,
		Status:            entities.IntentStatusPending,
		Raw:               raw,
	}
	if !req.Channel.RequiresPhone() {
		out.AuthorizationURL = initResp.AuthorizationURL
		g.logg.Info(logCtx, "notchpay hosted checkout ready")
		return out, nil
	}

	var chargeResp notchPayChargeResponse
	raw, err = g.do(ctx, http.MethodPost, "payments/"+url.PathEscape(providerRef), "charge", notchPayChargeRequest{
		Channel: req.Channel.GatewayTag(),
		Data:    notchPayChargeData{Phone: req.Phone},
	}, &chargeResp)
	if err != nil {
		g.logg.Warn(logCtx, "notchpay charge failed", err)
		return entities.GatewayPayment{}, err
	}
	out.Raw = raw
	out.ConfirmMessage = chargeResp.Message
	if strings.EqualFold(chargeResp.Action, notchPayActionConfirm) {
		out.Action = entities.IntentActionConfirm
	}
	g.logg.Info(logCtx, "notchpay mobile money prompt sent")
	return out, nil
}

// FetchPayment reads the current NotchPay status of a payment.
func (g *NotchPayGateway) FetchPayment(ctx context.Context, ref entities.GatewayReference) (entities.GatewayPayment, error) {
	if g == nil {
		return entities.GatewayPayment{}, ErrNotchPayGatewayNotConfigured
	}
	if g.mock != nil {
		return g.mock.fetch(ref)
	}

	var resp notchPayFetchResponse
	raw, err := g.do(ctx, http.MethodGet, "payments/"+url.PathEscape(ref.ProviderReference), "fetch", nil, &resp)
	if err != nil {
		return entities.GatewayPayment{}, err
	}

	out := entities.GatewayPayment{
		ProviderReference: ref.ProviderReference,
		Status:            mapNotchPayStatus(resp.Transaction.Status),
		Raw:               raw,
	}
	if out.Status == entities.IntentStatusFailed {
		out.FailureReason = resp.Transaction.FailureReason
	}
	return out, nil
}

func mapNotchPayStatus(status string) entities.IntentStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case notchPayStatusComplete:
		return entities.IntentStatusSucceeded
	case "failed", "canceled", "cancelled", "expired":
		return entities.IntentStatusFailed
	}
	return entities.IntentStatusPending
}

// do sends one JSON request and decodes a 2xx answer into out. It returns the
// raw body for traceability.
func (g *NotchPayGateway) do(ctx context.Context, method, path, operation string, body any, out any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal notchpay %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, g.buildURL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build notchpay %s request: %w", operation, err)
	}
	httpReq.Header.Set("Authorization", g.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute notchpay %s request: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, fmt.Errorf("read notchpay %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, notchPayError(operation, resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decode notchpay %s response: %w", operation, err)
	}
	return raw, nil
}

// notchPayError maps a failed answer onto a ProviderError, wrapping
// entities.ErrInvalidPhone when NotchPay blames the phone number.
func notchPayError(operation string, status int, raw []byte) error {
	var body notchPayErrorResponse
	_ = json.Unmarshal(raw, &body)
	msg := strings.TrimSpace(body.Message)
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	perr := &ProviderError{Provider: notchPayProvider, Operation: operation, StatusCode: status, Message: msg}

	if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
		for field := range body.Errors {
			if strings.Contains(strings.ToLower(field), notchPayPhoneErrorField) {
				return fmt.Errorf("%w: %w", entities.ErrInvalidPhone, perr)
			}
		}
	}
	return perr
}

func (g *NotchPayGateway) buildURL(path string) string {
	trimmed := strings.TrimRight(g.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
