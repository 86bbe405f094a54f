package response

import (
	"time"

	"habitat_payments/internal/domain/entities"
)

type PayableResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	AmountDue   int64     `json:"amount_due"`
	AmountPaid  int64     `json:"amount_paid"`
	Outstanding int64     `json:"outstanding"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromPayable(p entities.Payable) PayableResponse {
	return PayableResponse{
		ID:          p.ID,
		Kind:        string(p.Kind),
		AmountDue:   p.AmountDue,
		AmountPaid:  p.AmountPaid,
		Outstanding: p.Outstanding(),
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
