package entities

import "encoding/json"

// GatewayPaymentRequest is what the backend asks a payment gateway to collect.
type GatewayPaymentRequest struct {
	Reference   string
	Amount      int64
	Currency    string
	Channel     Channel
	Phone       string
	Description string
	CallbackURL string
}

// GatewayReference locates a payment on the gateway that initiated it.
type GatewayReference struct {
	Channel           Channel
	Reference         string
	ProviderReference string
}

// GatewayPayment is the gateway view of a payment, already mapped onto the
// intent vocabulary.
type GatewayPayment struct {
	ProviderReference string
	Status            IntentStatus
	AuthorizationURL  string
	ConfirmMessage    string
	Action            IntentAction
	FailureReason     string
	Raw               json.RawMessage
}
