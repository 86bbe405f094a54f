package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"habitat_payments/internal/domain/entities"
	mock_interfaces "habitat_payments/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func TestPayableUseCase_Register(t *testing.T) {
	t.Run("validations", func(t *testing.T) {
		uc := NewPayableUseCase(nil)
		if _, err := uc.Register(context.Background(), entities.PayableKindVisit, " ", 5000); !errors.Is(err, ErrInvalidPayableID) {
			t.Fatalf("expected ErrInvalidPayableID, got %v", err)
		}
		if _, err := uc.Register(context.Background(), "lease", "visit-1", 5000); !errors.Is(err, ErrInvalidPayableKind) {
			t.Fatalf("expected ErrInvalidPayableKind, got %v", err)
		}
		if _, err := uc.Register(context.Background(), entities.PayableKindVisit, "visit-1", 0); !errors.Is(err, ErrInvalidAmountDue) {
			t.Fatalf("expected ErrInvalidAmountDue, got %v", err)
		}
	})

	t.Run("creates open payable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_interfaces.NewMockIPayableRepository(ctrl)
		uc := NewPayableUseCase(repo)
		uc.now = func() time.Time { return fixedNow }

		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p entities.Payable) (entities.Payable, error) {
			if p.ID != "booking-7" || p.Kind != entities.PayableKindBooking || p.AmountDue != 150000 {
				t.Fatalf("unexpected payable: %+v", p)
			}
			if p.Status != entities.PayableStatusOpen || p.AmountPaid != 0 || !p.CreatedAt.Equal(fixedNow) {
				t.Fatalf("unexpected initial state: %+v", p)
			}
			return p, nil
		})

		got, err := uc.Register(context.Background(), entities.PayableKindBooking, " booking-7 ", 150000)
		if err != nil || got.ID != "booking-7" {
			t.Fatalf("unexpected result: %+v err=%v", got, err)
		}
	})

	t.Run("already exists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_interfaces.NewMockIPayableRepository(ctrl)
		uc := NewPayableUseCase(repo)

		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Payable{}, nil)

		_, err := uc.Register(context.Background(), entities.PayableKindVisit, "visit-1", 5000)
		if !errors.Is(err, ErrPayableAlreadyExists) {
			t.Fatalf("expected ErrPayableAlreadyExists, got %v", err)
		}
	})
}

func TestPayableUseCase_GetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_interfaces.NewMockIPayableRepository(ctrl)
	uc := NewPayableUseCase(repo)

	repo.EXPECT().GetByID(gomock.Any(), "visit-1").Return(entities.Payable{}, nil)
	if _, err := uc.GetByID(context.Background(), "visit-1"); !errors.Is(err, ErrPayableNotFound) {
		t.Fatalf("expected ErrPayableNotFound, got %v", err)
	}

	repo.EXPECT().GetByID(gomock.Any(), "visit-2").Return(entities.Payable{}, errors.New("db"))
	if _, err := uc.GetByID(context.Background(), "visit-2"); err == nil || err.Error() != "db" {
		t.Fatalf("expected db error, got %v", err)
	}
}

func TestPayableUseCase_Cancel(t *testing.T) {
	open := entities.Payable{ID: "visit-1", Kind: entities.PayableKindVisit, AmountDue: 5000, Status: entities.PayableStatusOpen}

	t.Run("cancels open payable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_interfaces.NewMockIPayableRepository(ctrl)
		uc := NewPayableUseCase(repo)

		cancelled := open
		cancelled.Status = entities.PayableStatusCancelled
		repo.EXPECT().GetByID(gomock.Any(), "visit-1").Return(open, nil)
		repo.EXPECT().UpdateStatus(gomock.Any(), "visit-1", entities.PayableStatusCancelled).Return(cancelled, nil)

		got, err := uc.Cancel(context.Background(), "visit-1")
		if err != nil || got.Status != entities.PayableStatusCancelled {
			t.Fatalf("unexpected result: %+v err=%v", got, err)
		}
	})

	t.Run("already cancelled is a no-op", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_interfaces.NewMockIPayableRepository(ctrl)
		uc := NewPayableUseCase(repo)

		cancelled := open
		cancelled.Status = entities.PayableStatusCancelled
		repo.EXPECT().GetByID(gomock.Any(), "visit-1").Return(cancelled, nil)

		if _, err := uc.Cancel(context.Background(), "visit-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("paid cannot be cancelled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_interfaces.NewMockIPayableRepository(ctrl)
		uc := NewPayableUseCase(repo)

		paid := open
		paid.AmountPaid, paid.Status = 5000, entities.PayableStatusPaid
		repo.EXPECT().GetByID(gomock.Any(), "visit-1").Return(paid, nil)

		if _, err := uc.Cancel(context.Background(), "visit-1"); !errors.Is(err, ErrPayableClosed) {
			t.Fatalf("expected ErrPayableClosed, got %v", err)
		}
	})
}
