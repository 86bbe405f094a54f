package entities

import "time"

// PayableKind is the marketplace object a payment can settle.
type PayableKind string

const (
	PayableKindVisit   PayableKind = "visit"
	PayableKindBooking PayableKind = "booking"
)

func (k PayableKind) IsValid() bool {
	return k == PayableKindVisit || k == PayableKindBooking
}

// PayableStatus represents how much of a payable has been collected.
type PayableStatus string

const (
	PayableStatusOpen          PayableStatus = "open"
	PayableStatusPartiallyPaid PayableStatus = "partially_paid"
	PayableStatusPaid          PayableStatus = "paid"
	PayableStatusCancelled     PayableStatus = "cancelled"
)

// Payable is the visit fee or booking amount a payment intent is for.
//
// Storage model (DynamoDB):
//   - PK: id (the visit or booking id, so one payable per domain object)
//
// Amounts are whole XAF units.
type Payable struct {
	ID         string        `json:"id"`
	Kind       PayableKind   `json:"kind"`
	AmountDue  int64         `json:"amount_due"`
	AmountPaid int64         `json:"amount_paid"`
	Status     PayableStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Outstanding returns the amount still to collect.
func (p Payable) Outstanding() int64 {
	if p.AmountPaid >= p.AmountDue {
		return 0
	}
	return p.AmountDue - p.AmountPaid
}

// IsClosed reports whether no further payment can be accepted.
func (p Payable) IsClosed() bool {
	return p.Status == PayableStatusPaid || p.Status == PayableStatusCancelled
}

// StatusAfter returns the status once paid reaches the given total.
func (p Payable) StatusAfter(paid int64) PayableStatus {
	switch {
	case paid >= p.AmountDue:
		return PayableStatusPaid
	case paid > 0:
		return PayableStatusPartiallyPaid
	}
	return PayableStatusOpen
}
