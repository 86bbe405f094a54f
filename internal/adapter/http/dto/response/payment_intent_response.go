package response

import (
	"habitat_payments/internal/domain/entities"
)

// IntentReceiptResponse answers CreateIntent. authorization_url is set for
// card payments; confirm_message and action for mobile money.
type IntentReceiptResponse struct {
	IntentID         string `json:"intent_id"`
	Status           string `json:"status"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
	ConfirmMessage   string `json:"confirm_message,omitempty"`
	Action           string `json:"action,omitempty"`
}

type IntentStatusResponse struct {
	IntentID      string `json:"intent_id"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason,omitempty"`
}

func FromIntentReceipt(p entities.PaymentIntent) IntentReceiptResponse {
	r := p.Receipt()
	return IntentReceiptResponse{
		IntentID:         r.IntentID,
		Status:           string(r.Status),
		AuthorizationURL: r.AuthorizationURL,
		ConfirmMessage:   r.ConfirmMessage,
		Action:           string(r.Action),
	}
}

func FromIntentStatus(p entities.PaymentIntent) IntentStatusResponse {
	r := p.StatusReport()
	return IntentStatusResponse{
		IntentID:      r.IntentID,
		Status:        string(r.Status),
		FailureReason: r.FailureReason,
	}
}

// ToReceipt is the client-side inverse of FromIntentReceipt.
func (r IntentReceiptResponse) ToReceipt() entities.IntentReceipt {
	return entities.IntentReceipt{
		IntentID:         r.IntentID,
		Status:           entities.IntentStatus(r.Status),
		AuthorizationURL: r.AuthorizationURL,
		ConfirmMessage:   r.ConfirmMessage,
		Action:           entities.IntentAction(r.Action),
	}
}

func (r IntentStatusResponse) ToReport() entities.IntentStatusReport {
	return entities.IntentStatusReport{
		IntentID:      r.IntentID,
		Status:        entities.IntentStatus(r.Status),
		FailureReason: r.FailureReason,
	}
}
