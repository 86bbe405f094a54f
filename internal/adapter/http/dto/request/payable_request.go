package request

import "habitat_payments/internal/domain/entities"

// PayableRequest registers the amount due for a visit or booking.
type PayableRequest struct {
	ID        string `json:"id" binding:"required"`
	Kind      string `json:"kind" binding:"required,oneof=visit booking"`
	AmountDue int64  `json:"amount_due" binding:"required,gt=0"`
}

func (r PayableRequest) ResolveKind() entities.PayableKind {
	return entities.PayableKind(r.Kind)
}
