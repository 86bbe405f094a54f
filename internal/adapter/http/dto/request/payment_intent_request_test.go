package request

import (
	"testing"

	"habitat_payments/internal/domain/entities"
)

func TestCreateIntentRequest_ToCommand(t *testing.T) {
	r := CreateIntentRequest{
		PayerID:       " user-1 ",
		Purpose:       "booking_remaining",
		RelatedID:     " booking-7 ",
		Amount:        30000,
		Channel:       "mobile-money-orange",
		CustomerPhone: " +237690123456 ",
	}

	cmd := r.ToCommand(" key-1 ")
	if cmd.PayerID != "user-1" || cmd.RelatedID != "booking-7" || cmd.IdempotencyKey != "key-1" {
		t.Fatalf("expected trimmed identifiers, got %+v", cmd)
	}
	if cmd.Purpose != entities.PurposeBookingRemaining || cmd.Channel != entities.ChannelOrangeMoney {
		t.Fatalf("unexpected enums: %+v", cmd)
	}
	if cmd.CustomerPhone != "+237690123456" || cmd.Amount != 30000 {
		t.Fatalf("unexpected payer data: %+v", cmd)
	}
}

func TestPayableRequest_ResolveKind(t *testing.T) {
	if got := (PayableRequest{Kind: "visit"}).ResolveKind(); got != entities.PayableKindVisit {
		t.Fatalf("expected visit, got %s", got)
	}
}
