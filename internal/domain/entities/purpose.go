package entities

import "fmt"

// Purpose binds a payment to the kind of domain object it settles.
type Purpose string

const (
	PurposeVisit            Purpose = "visit"
	PurposeBooking          Purpose = "booking"
	PurposeBookingRemaining Purpose = "booking_remaining"
)

var validPurposes = []Purpose{
	PurposeVisit,
	PurposeBooking,
	PurposeBookingRemaining,
}

func (p Purpose) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Purpose.
func (p Purpose) IsValid() bool {
	for _, candidate := range validPurposes {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresCompletion reports whether a payment already waiting for the payer's
// USSD confirmation must not be dismissed. Only the remaining balance of a
// booking is collected under that rule.
func (p Purpose) RequiresCompletion() bool {
	return p == PurposeBookingRemaining
}

// PayableKind returns the kind of payable a purpose settles.
func (p Purpose) PayableKind() PayableKind {
	if p == PurposeVisit {
		return PayableKindVisit
	}
	return PayableKindBooking
}

// ParsePurpose converts raw input into a Purpose.
func ParsePurpose(value string) (Purpose, error) {
	for _, candidate := range validPurposes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purpose %q", value)
}
