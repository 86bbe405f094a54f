package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	request "habitat_payments/internal/adapter/http/dto/request"
	response "habitat_payments/internal/adapter/http/dto/response"
	"habitat_payments/internal/adapter/http/handlers"
	"habitat_payments/internal/domain/entities"
	"habitat_payments/internal/session"
	"habitat_payments/pkg"
)

const (
	defaultTimeout        = 15 * time.Second
	responseBodyReadLimit = 8192
)

var errBaseURLRequired = errors.New("payments api base url is required")

// TransportError is any failure talking to the payment service. Message is
// what the service said, safe to show to the payer, and empty when the service
// could not be reached. A phone rejection unwraps to entities.ErrIntentRejected.
type TransportError struct {
	Operation  string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("payments %s: %v: %s", e.Operation, e.Err, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("payments %s: %v", e.Operation, e.Err)
	case e.Code != "":
		return fmt.Sprintf("payments %s: %d %s: %s", e.Operation, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("payments %s: status %d", e.Operation, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) PublicMessage() string { return e.Message }

// PaymentsClient calls the payments HTTP API on behalf of a payment session.
type PaymentsClient struct {
	httpClient *http.Client
	baseURL    string
}

var _ session.Backend = (*PaymentsClient)(nil)

// Option configures optional client behavior.
type Option func(*PaymentsClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *PaymentsClient) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// NewPaymentsClient builds a client for the API rooted at baseURL, e.g.
// http://localhost:8080/v1.
func NewPaymentsClient(baseURL string, opts ...Option) (*PaymentsClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	c := &PaymentsClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *PaymentsClient) CreateIntent(ctx context.Context, cmd entities.CreateIntentCommand) (entities.IntentReceipt, error) {
	body := request.CreateIntentRequest{
		PayerID:       cmd.PayerID,
		Purpose:       string(cmd.Purpose),
		RelatedID:     cmd.RelatedID,
		Amount:        cmd.Amount,
		Channel:       string(cmd.Channel),
		CustomerPhone: cmd.CustomerPhone,
	}
	headers := map[string]string{}
	if cmd.IdempotencyKey != "" {
		headers[handlers.IdempotencyKeyHeader] = cmd.IdempotencyKey
	}

	var out response.IntentReceiptResponse
	if err := c.do(ctx, http.MethodPost, "payments/intents", "create intent", headers, body, &out); err != nil {
		return entities.IntentReceipt{}, err
	}
	return out.ToReceipt(), nil
}

func (c *PaymentsClient) GetIntentStatus(ctx context.Context, intentID string) (entities.IntentStatusReport, error) {
	var out response.IntentStatusResponse
	if err := c.do(ctx, http.MethodGet, "payments/intents/"+url.PathEscape(intentID), "get intent status", nil, nil, &out); err != nil {
		return entities.IntentStatusReport{}, err
	}
	return out.ToReport(), nil
}

func (c *PaymentsClient) do(ctx context.Context, method, path, operation string, headers map[string]string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Operation: operation, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return &TransportError{Operation: operation, Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Operation: operation, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return &TransportError{Operation: operation, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(operation, resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Operation: operation, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// apiError turns the service error envelope back into the errors a session
// understands.
func apiError(operation string, status int, raw []byte) error {
	var envelope pkg.HTTPError
	_ = json.Unmarshal(raw, &envelope)

	terr := &TransportError{
		Operation:  operation,
		StatusCode: status,
		Code:       envelope.Code,
		Message:    strings.TrimSpace(envelope.Message),
	}
	switch envelope.Code {
	case handlers.CodeInvalidPhone:
		// keeps the service's wording for the validation_error screen
		terr.Err = entities.ErrIntentRejected
	case handlers.CodeMissingRelatedID:
		return entities.ErrMissingRelatedID
	}
	return terr
}

func (c *PaymentsClient) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
