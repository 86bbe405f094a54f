package session

import (
	"net/url"
	"strings"

	"habitat_payments/internal/domain/entities"
)

const (
	DefaultFailureReason  = "The payment could not be completed. Retry or contact support."
	DefaultRejectedReason = "Invalid phone number for the selected operator."
	DismissBlockedMessage = "This payment is waiting for your confirmation on your phone and cannot be closed until it completes."

	DisclosureWaiting      = "Waiting for the payment confirmation."
	DisclosureUSSDWaiting  = "Approve the payment prompt on your phone to continue."
	DisclosureExtendedWait = "Confirmation may take longer than usual. You can keep this screen open; we will update it as soon as the operator answers."
)

// ConfirmationKind tells the renderer how the payer completes the payment.
type ConfirmationKind string

const (
	ConfirmationNone   ConfirmationKind = ""
	ConfirmationUSSD   ConfirmationKind = "ussd"
	ConfirmationHosted ConfirmationKind = "hosted"
)

// Confirmation is the channel-specific rendering contract of a created
// intent: a USSD prompt for mobile money, a hosted page for cards.
type Confirmation struct {
	Kind             ConfirmationKind
	Message          string
	Action           entities.IntentAction
	DialCode         string
	AuthorizationURL string
}

func newConfirmation(ch entities.Channel, r entities.IntentReceipt) Confirmation {
	if ch.RequiresPhone() {
		return Confirmation{
			Kind:     ConfirmationUSSD,
			Message:  r.ConfirmMessage,
			Action:   r.Action,
			DialCode: ch.DialCode(),
		}
	}
	return Confirmation{
		Kind:             ConfirmationHosted,
		AuthorizationURL: r.AuthorizationURL,
	}
}

// RequiresConfirmation reports whether the payer still has to approve a
// USSD prompt.
func (c Confirmation) RequiresConfirmation() bool {
	return c.Kind == ConfirmationUSSD && c.Action == entities.IntentActionConfirm
}

// DialURI returns a tel: URI pre-filled with the operator code.
func (c Confirmation) DialURI() string {
	if c.DialCode == "" {
		return ""
	}
	return "tel:" + strings.ReplaceAll(c.DialCode, "#", "%23")
}

// SupportURI returns a WhatsApp link to the support line, prefilled with the
// intent id when there is one. Empty when no support number is configured.
func SupportURI(supportPhone, intentID string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, supportPhone)
	if digits == "" {
		return ""
	}
	uri := "https://wa.me/" + digits
	if intentID != "" {
		uri += "?text=" + url.QueryEscape("Payment "+intentID+" could not be completed")
	}
	return uri
}

// Launcher opens a URI on the device (dialer, browser, messaging app).
type Launcher interface {
	Launch(uri string) error
}

// LaunchDialer opens the USSD dialer for c. Failures are ignored: the dialer
// may not exist and the payment status does not depend on it.
func LaunchDialer(l Launcher, c Confirmation) {
	uri := c.DialURI()
	if l == nil || uri == "" {
		return
	}
	_ = l.Launch(uri)
}

func disclosureFor(s State, c Confirmation) string {
	switch s {
	case StatePolling:
		if c.Kind == ConfirmationUSSD {
			return DisclosureUSSDWaiting
		}
		return DisclosureWaiting
	case StateTimedOut:
		return DisclosureExtendedWait
	}
	return ""
}
