package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"habitat_payments/internal/domain/entities"
	"habitat_payments/internal/usecase/interfaces"
)

var (
	ErrInvalidPayableID     = errors.New("invalid payable id")
	ErrInvalidPayableKind   = errors.New("invalid payable kind")
	ErrInvalidAmountDue     = errors.New("invalid amount due")
	ErrPayableAlreadyExists = errors.New("payable already exists")
)

// IPayableUseCase manages the visit fees and booking amounts that
// payment intents settle. Payables are registered by the marketplace when a
// visit or booking is created, keyed by that object's id.
type IPayableUseCase interface {
	Register(ctx context.Context, kind entities.PayableKind, id string, amountDue int64) (entities.Payable, error)
	GetByID(ctx context.Context, id string) (entities.Payable, error)
	Cancel(ctx context.Context, id string) (entities.Payable, error)
}

type PayableUseCase struct {
	repo interfaces.IPayableRepository
	now  func() time.Time
}

var _ IPayableUseCase = (*PayableUseCase)(nil)

func NewPayableUseCase(repo interfaces.IPayableRepository) *PayableUseCase {
	return &PayableUseCase{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (u *PayableUseCase) Register(ctx context.Context, kind entities.PayableKind, id string, amountDue int64) (entities.Payable, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Payable{}, ErrInvalidPayableID
	}
	if !kind.IsValid() {
		return entities.Payable{}, ErrInvalidPayableKind
	}
	if amountDue <= 0 {
		return entities.Payable{}, ErrInvalidAmountDue
	}

	now := u.now()
	created, err := u.repo.Create(ctx, entities.Payable{
		ID:        id,
		Kind:      kind,
		AmountDue: amountDue,
		Status:    entities.PayableStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return entities.Payable{}, err
	}
	if created.ID == "" {
		return entities.Payable{}, ErrPayableAlreadyExists
	}
	return created, nil
}

func (u *PayableUseCase) GetByID(ctx context.Context, id string) (entities.Payable, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Payable{}, ErrInvalidPayableID
	}
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Payable{}, err
	}
	if p.ID == "" {
		return entities.Payable{}, ErrPayableNotFound
	}
	return p, nil
}

// Cancel closes an unpaid payable so no new intent can target it. Cancelling
// twice is a no-op.
func (u *PayableUseCase) Cancel(ctx context.Context, id string) (entities.Payable, error) {
	p, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Payable{}, err
	}
	switch p.Status {
	case entities.PayableStatusCancelled:
		return p, nil
	case entities.PayableStatusPaid:
		return entities.Payable{}, ErrPayableClosed
	}

	updated, err := u.repo.UpdateStatus(ctx, p.ID, entities.PayableStatusCancelled)
	if err != nil {
		return entities.Payable{}, err
	}
	if updated.ID == "" {
		return entities.Payable{}, ErrPayableNotFound
	}
	return updated, nil
}
