package payments

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"habitat_payments/internal/domain/entities"
)

// mockDeclinedSuffix makes the mock provider decline a mobile money payment,
// so the failure path can be exercised without a real operator.
const mockDeclinedSuffix = "0000"

const mockCheckoutBaseURL = "https://checkout.mock.local/pay/"

// mockProvider stands in for a real gateway when PAYMENT_GATEWAY_MOCK is set.
// Payments settle once settleAfter has elapsed since initiation.
type mockProvider struct {
	settleAfter time.Duration
	now         func() time.Time

	mu       sync.Mutex
	payments map[string]mockPayment
}

type mockPayment struct {
	channel   entities.Channel
	phone     string
	createdAt time.Time
}

func newMockProvider(settleAfter time.Duration) *mockProvider {
	return &mockProvider{
		settleAfter: settleAfter,
		now:         time.Now,
		payments:    make(map[string]mockPayment),
	}
}

func (m *mockProvider) initiate(req entities.GatewayPaymentRequest) (entities.GatewayPayment, error) {
	if req.Channel.RequiresPhone() && !entities.IsCanonicalPhone(req.Phone) {
		return entities.GatewayPayment{}, fmt.Errorf("mock initiate: %w", entities.ErrInvalidPhone)
	}

	ref := "mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	m.mu.Lock()
	m.payments[ref] = mockPayment{channel: req.Channel, phone: req.Phone, createdAt: m.now()}
	m.mu.Unlock()

	out := entities.GatewayPayment{
		ProviderReference: ref,
		Status:            entities.IntentStatusPending,
	}
	if req.Channel.RequiresPhone() {
		out.Action = entities.IntentActionConfirm
		out.ConfirmMessage = fmt.Sprintf("Dial %s to approve the payment of %d %s.", req.Channel.DialCode(), req.Amount, req.Currency)
	} else {
		out.AuthorizationURL = mockCheckoutBaseURL + ref
	}
	out.Raw = mockRaw(ref, string(out.Status))
	return out, nil
}

func (m *mockProvider) fetch(ref entities.GatewayReference) (entities.GatewayPayment, error) {
	m.mu.Lock()
	p, ok := m.payments[ref.ProviderReference]
	m.mu.Unlock()
	if !ok {
		return entities.GatewayPayment{}, fmt.Errorf("mock fetch %q: %w", ref.ProviderReference, ErrUnknownReference)
	}

	out := entities.GatewayPayment{ProviderReference: ref.ProviderReference, Status: entities.IntentStatusPending}
	if m.now().Sub(p.createdAt) >= m.settleAfter {
		if p.channel.RequiresPhone() && strings.HasSuffix(p.phone, mockDeclinedSuffix) {
			out.Status = entities.IntentStatusFailed
			out.FailureReason = "Insufficient balance"
		} else {
			out.Status = entities.IntentStatusSucceeded
		}
	}
	out.Raw = mockRaw(ref.ProviderReference, string(out.Status))
	return out, nil
}

func mockRaw(ref, status string) json.RawMessage {
	b, _ := json.Marshal(map[string]any{
		"reference": ref,
		"status":    status,
		"mock":      true,
		"at":        time.Now().UTC().Format(time.RFC3339Nano),
	})
	return b
}
