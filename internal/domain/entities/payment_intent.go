package entities

import (
	"encoding/json"
	"errors"
	"time"
)

// IntentStatus is the backend-authoritative outcome of a payment intent.
type IntentStatus string

const (
	IntentStatusPending   IntentStatus = "pending"
	IntentStatusSucceeded IntentStatus = "succeeded"
	IntentStatusFailed    IntentStatus = "failed"
)

// IsTerminal reports whether no further status change is expected.
func (s IntentStatus) IsTerminal() bool {
	return s == IntentStatusSucceeded || s == IntentStatusFailed
}

func (s IntentStatus) IsValid() bool {
	switch s {
	case IntentStatusPending, IntentStatusSucceeded, IntentStatusFailed:
		return true
	}
	return false
}

// IntentAction tells the payer what the gateway expects next.
type IntentAction string

const (
	IntentActionNone    IntentAction = ""
	IntentActionConfirm IntentAction = "confirm"
)

var (
	// ErrMissingRelatedID is a precondition failure: a payment must always be
	// bound to the visit or booking it settles.
	ErrMissingRelatedID = errors.New("related id is required")
	// ErrIntentRejected means the backend refused the phone/channel pair.
	ErrIntentRejected = errors.New("payment intent rejected")
)

// PaymentIntent is one backend-tracked attempt to collect a payment.
//
// Storage model (DynamoDB):
//   - PK: id
//
// Exactly one of AuthorizationURL (card) or ConfirmMessage/Action (mobile
// money) is meaningful, gated by Channel.
type PaymentIntent struct {
	ID                string          `json:"id"`
	PayerID           string          `json:"payer_id"`
	Purpose           Purpose         `json:"purpose"`
	RelatedID         string          `json:"related_id"`
	Amount            int64           `json:"amount"`
	Currency          string          `json:"currency"`
	Channel           Channel         `json:"channel"`
	CustomerPhone     string          `json:"customer_phone,omitempty"`
	Status            IntentStatus    `json:"status"`
	AuthorizationURL  string          `json:"authorization_url,omitempty"`
	ConfirmMessage    string          `json:"confirm_message,omitempty"`
	Action            IntentAction    `json:"action,omitempty"`
	FailureReason     string          `json:"failure_reason,omitempty"`
	ProviderReference string          `json:"provider_reference,omitempty"`
	ProviderPayload   json.RawMessage `json:"-"`
	IdempotencyKey    string          `json:"idempotency_key,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Receipt projects the intent onto the CreateIntent response shape.
func (p PaymentIntent) Receipt() IntentReceipt {
	r := IntentReceipt{IntentID: p.ID, Status: p.Status}
	if p.Channel.RequiresPhone() {
		r.ConfirmMessage = p.ConfirmMessage
		r.Action = p.Action
	} else {
		r.AuthorizationURL = p.AuthorizationURL
	}
	return r
}

// StatusReport projects the intent onto the GetIntentStatus response shape.
func (p PaymentIntent) StatusReport() IntentStatusReport {
	r := IntentStatusReport{IntentID: p.ID, Status: p.Status}
	if p.Status == IntentStatusFailed {
		r.FailureReason = p.FailureReason
	}
	return r
}

// CreateIntentCommand is the input of CreateIntent.
type CreateIntentCommand struct {
	PayerID        string
	Purpose        Purpose
	RelatedID      string
	Amount         int64
	Channel        Channel
	CustomerPhone  string
	IdempotencyKey string
}

// IntentReceipt is the output of CreateIntent.
type IntentReceipt struct {
	IntentID         string
	Status           IntentStatus
	AuthorizationURL string
	ConfirmMessage   string
	Action           IntentAction
}

// IntentStatusReport is the output of GetIntentStatus.
type IntentStatusReport struct {
	IntentID      string
	Status        IntentStatus
	FailureReason string
}
