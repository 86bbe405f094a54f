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

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type intentFixture struct {
	repo     *mock_interfaces.MockIPaymentIntentRepository
	payables *mock_interfaces.MockIPayableRepository
	gateway  *mock_interfaces.MockIPaymentGateway
	idem     *mock_interfaces.MockIIdempotencyStore
	uc       *PaymentIntentUseCase
}

func newIntentFixture(t *testing.T, withIdempotency bool) intentFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := intentFixture{
		repo:     mock_interfaces.NewMockIPaymentIntentRepository(ctrl),
		payables: mock_interfaces.NewMockIPayableRepository(ctrl),
		gateway:  mock_interfaces.NewMockIPaymentGateway(ctrl),
	}
	if withIdempotency {
		f.idem = mock_interfaces.NewMockIIdempotencyStore(ctrl)
		f.uc = NewPaymentIntentUseCase(f.repo, f.payables, f.gateway, f.idem, PaymentIntentOptions{CallbackURL: "https://api.habitat.cm/v1/payments/callback"})
	} else {
		f.uc = NewPaymentIntentUseCase(f.repo, f.payables, f.gateway, nil, PaymentIntentOptions{CallbackURL: "https://api.habitat.cm/v1/payments/callback"})
	}
	f.uc.now = func() time.Time { return fixedNow }
	f.uc.newID = func() string { return "pi_test" }
	return f
}

func visitCommand() entities.CreateIntentCommand {
	return entities.CreateIntentCommand{
		PayerID:       "user-1",
		Purpose:       entities.PurposeVisit,
		RelatedID:     "visit-42",
		Amount:        5000,
		Channel:       entities.ChannelMTNMoMo,
		CustomerPhone: "+237677123456",
	}
}

func openVisitPayable() entities.Payable {
	return entities.Payable{ID: "visit-42", Kind: entities.PayableKindVisit, AmountDue: 5000, Status: entities.PayableStatusOpen}
}

func echoIntent(_ context.Context, p entities.PaymentIntent) (entities.PaymentIntent, error) {
	return p, nil
}

func TestPaymentIntentUseCase_CreateIntent_Validations(t *testing.T) {
	t.Run("missing related id checked first", func(t *testing.T) {
		uc := NewPaymentIntentUseCase(nil, nil, nil, nil, PaymentIntentOptions{})
		cmd := visitCommand()
		cmd.RelatedID = "  "
		cmd.Amount = 0
		_, err := uc.CreateIntent(context.Background(), cmd)
		if !errors.Is(err, entities.ErrMissingRelatedID) {
			t.Fatalf("expected ErrMissingRelatedID, got %v", err)
		}
	})

	invalid := []struct {
		name   string
		mutate func(*entities.CreateIntentCommand)
	}{
		{"empty payer", func(c *entities.CreateIntentCommand) { c.PayerID = "" }},
		{"unknown purpose", func(c *entities.CreateIntentCommand) { c.Purpose = "deposit" }},
		{"unknown channel", func(c *entities.CreateIntentCommand) { c.Channel = "paypal" }},
		{"zero amount", func(c *entities.CreateIntentCommand) { c.Amount = 0 }},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewPaymentIntentUseCase(nil, nil, nil, nil, PaymentIntentOptions{})
			cmd := visitCommand()
			tt.mutate(&cmd)
			_, err := uc.CreateIntent(context.Background(), cmd)
			if !errors.Is(err, ErrInvalidIntentRequest) {
				t.Fatalf("expected ErrInvalidIntentRequest, got %v", err)
			}
		})
	}

	t.Run("mobile money without canonical phone", func(t *testing.T) {
		uc := NewPaymentIntentUseCase(nil, nil, nil, nil, PaymentIntentOptions{})
		cmd := visitCommand()
		cmd.CustomerPhone = "677123456"
		_, err := uc.CreateIntent(context.Background(), cmd)
		if !errors.Is(err, entities.ErrIntentRejected) || !errors.Is(err, entities.ErrInvalidPhone) {
			t.Fatalf("expected rejected invalid phone, got %v", err)
		}
	})

	t.Run("gateway not configured", func(t *testing.T) {
		uc := NewPaymentIntentUseCase(nil, nil, nil, nil, PaymentIntentOptions{})
		_, err := uc.CreateIntent(context.Background(), visitCommand())
		if err == nil || err.Error() != "payment gateway not configured" {
			t.Fatalf("expected gateway not configured error, got %v", err)
		}
	})
}

func TestPaymentIntentUseCase_CreateIntent_MobileMoney(t *testing.T) {
	f := newIntentFixture(t, false)

	f.payables.EXPECT().GetByID(gomock.Any(), "visit-42").Return(openVisitPayable(), nil)
	f.gateway.EXPECT().InitiatePayment(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req entities.GatewayPaymentRequest) (entities.GatewayPayment, error) {
		if req.Reference != "pi_test" || req.Amount != 5000 || req.Currency != "XAF" {
			t.Fatalf("unexpected gateway request: %+v", req)
		}
		if req.Phone != "+237677123456" || req.Channel != entities.ChannelMTNMoMo {
			t.Fatalf("unexpected payer data: %+v", req)
		}
		if req.CallbackURL == "" || req.Description != "Visit fee visit-42" {
			t.Fatalf("unexpected callback/description: %+v", req)
		}
		return entities.GatewayPayment{
			ProviderReference: "trx_1",
			Status:            entities.IntentStatusPending,
			ConfirmMessage:    "Dial *126# to confirm",
			Action:            entities.IntentActionConfirm,
		}, nil
	})
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoIntent)

	got, err := f.uc.CreateIntent(context.Background(), visitCommand())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "pi_test" || got.Status != entities.IntentStatusPending {
		t.Fatalf("unexpected intent: %+v", got)
	}
	if got.Action != entities.IntentActionConfirm || got.ConfirmMessage != "Dial *126# to confirm" {
		t.Fatalf("expected confirm action, got %+v", got)
	}
	if got.ProviderReference != "trx_1" || !got.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected provider data: %+v", got)
	}
}

func TestPaymentIntentUseCase_CreateIntent_CardDropsPhone(t *testing.T) {
	f := newIntentFixture(t, false)
	cmd := visitCommand()
	cmd.Channel = entities.ChannelCard

	f.payables.EXPECT().GetByID(gomock.Any(), "visit-42").Return(openVisitPayable(), nil)
	f.gateway.EXPECT().InitiatePayment(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req entities.GatewayPaymentRequest) (entities.GatewayPayment, error) {
		if req.Phone != "" {
			t.Fatalf("card payment must not carry a phone, got %q", req.Phone)
		}
		return entities.GatewayPayment{ProviderReference: "pref-1", Status: entities.IntentStatusPending, AuthorizationURL: "https://checkout/pref-1"}, nil
	})
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoIntent)

	got, err := f.uc.CreateIntent(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AuthorizationURL != "https://checkout/pref-1" || got.CustomerPhone != "" {
		t.Fatalf("unexpected card intent: %+v", got)
	}
}

func TestPaymentIntentUseCase_CreateIntent_PayableChecks(t *testing.T) {
	tests := []struct {
		name    string
		purpose entities.Purpose
		amount  int64
		payable entities.Payable
		want    error
	}{
		{"not found", entities.PurposeVisit, 5000, entities.Payable{}, ErrPayableNotFound},
		{"kind mismatch", entities.PurposeBooking, 5000, openVisitPayable(), ErrPayableMismatch},
		{"closed", entities.PurposeVisit, 5000, entities.Payable{ID: "visit-42", Kind: entities.PayableKindVisit, AmountDue: 5000, AmountPaid: 5000, Status: entities.PayableStatusPaid}, ErrPayableClosed},
		{"cancelled", entities.PurposeVisit, 5000, entities.Payable{ID: "visit-42", Kind: entities.PayableKindVisit, AmountDue: 5000, Status: entities.PayableStatusCancelled}, ErrPayableClosed},
		{"over outstanding", entities.PurposeVisit, 6000, openVisitPayable(), ErrPayableMismatch},
		{"partial remaining balance", entities.PurposeBookingRemaining, 10000, entities.Payable{ID: "visit-42", Kind: entities.PayableKindBooking, AmountDue: 50000, AmountPaid: 20000, Status: entities.PayableStatusPartiallyPaid}, ErrPayableMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIntentFixture(t, false)
			cmd := visitCommand()
			cmd.Purpose = tt.purpose
			cmd.Amount = tt.amount
			f.payables.EXPECT().GetByID(gomock.Any(), "visit-42").Return(tt.payable, nil)

			_, err := f.uc.CreateIntent(context.Background(), cmd)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("payable repository error", func(t *testing.T) {
		f := newIntentFixture(t, false)
		f.payables.EXPECT().GetByID(gomock.Any(), "visit-42").Return(entities.Payable{}, errors.New("db"))
		_, err := f.uc.CreateIntent(context.Background(), visitCommand())
		if err == nil || err.Error() != "db" {
			t.Fatalf("expected db error, got %v", err)
		}
	})
}

func TestPaymentIntentUseCase_CreateIntent_GatewayErrors(t *testing.T) {
	t.Run("phone refused by gateway", func(t *testing.T) {
		f := newIntentFixture(t, true)
		cmd := visitCommand()
		cmd.IdempotencyKey = "key-1"

		f.idem.EXPECT().Lookup(gomock.Any(), "key-1").Return("", false, nil)
		f.payables.EXPECT().GetByID(gomock.Any(), "visit-42").Return(openVisitPayable(), nil)
		f.idem.EXPECT().Reserve(gomock.Any(), "key-1", "pi_test").Return(true, nil)
		f.gateway.EXPECT().InitiatePayment(gomock.Any(), gomock.Any()).Return(entities.GatewayPayment{}, entities.ErrInvalidPhone)
		f.idem.EXPECT().Release(gomock.Any(), "key-1").Return(nil)

		_, err := f.uc.CreateIntent(context.Background(), cmd)
		if !errors.Is(err, entities.ErrIntentRejected) {
			t.Fatalf("expected ErrIntentRejected, got %v", err)
		}
	})

	t.Run("provider outage", func(t *testing.T) {
		f := newIntentFixture(t, false)
		f.payables.EXPECT().GetByID(gomock.Any(), "visit-42").Return(openVisitPayable(), nil)
		f.gateway.EXPECT().InitiatePayment(gomock.Any(), gomock.Any()).Return(entities.GatewayPayment{}, errors.New("503"))

		_, err := f.uc.CreateIntent(context.Background(), visitCommand())
		if !errors.Is(err, ErrPaymentProvider) {
			t.Fatalf("expected ErrPaymentProvider, got %v", err)
		}
		if errors.Is(err, entities.ErrIntentRejected) {
			t.Fatalf("provider outage must not be reported as a rejection")
		}
	})

	t.Run("persist failure releases key", func(t *testing.T) {
		f := newIntentFixture(t, true)
		cmd := visitCommand()
		cmd.IdempotencyKey = "key-1"

		f.idem.EXPECT().Lookup(gomock.Any(), "key-1").Return("", false, nil)
		f.payables.EXPECT().GetByID(gomock.Any(), "visit-42").Return(openVisitPayable(), nil)
		f.idem.EXPECT().Reserve(gomock.Any(), "key-1", "pi_test").Return(true, nil)
		f.gateway.EXPECT().InitiatePayment(gomock.Any(), gomock.Any()).Return(entities.GatewayPayment{ProviderReference: "trx_1", Status: entities.IntentStatusPending}, nil)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.PaymentIntent{}, errors.New("db"))
		f.idem.EXPECT().Release(gomock.Any(), "key-1").Return(nil)

		_, err := f.uc.CreateIntent(context.Background(), cmd)
		if err == nil || err.Error() != "db" {
			t.Fatalf("expected db error, got %v", err)
		}
	})
}

func TestPaymentIntentUseCase_CreateIntent_Idempotency(t *testing.T) {
	existing := entities.PaymentIntent{ID: "pi_prev", Status: entities.IntentStatusPending, Channel: entities.ChannelMTNMoMo}

	t.Run("replays stored intent", func(t *testing.T) {
		f := newIntentFixture(t, true)
		cmd := visitCommand()
		cmd.IdempotencyKey = " key-1 "

		f.idem.EXPECT().Lookup(gomock.Any(), "key-1").Return("pi_prev", true, nil)
		f.repo.EXPECT().GetByID(gomock.Any(), "pi_prev").Return(existing, nil)

		got, err := f.uc.CreateIntent(context.Background(), cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "pi_prev" {
			t.Fatalf("expected replayed intent, got %+v", got)
		}
	})

	t.Run("concurrent duplicate returns winner", func(t *testing.T) {
		f := newIntentFixture(t, true)
		cmd := visitCommand()
		cmd.IdempotencyKey = "key-1"

		gomock.InOrder(
			f.idem.EXPECT().Lookup(gomock.Any(), "key-1").Return("", false, nil),
			f.idem.EXPECT().Reserve(gomock.Any(), "key-1", "pi_test").Return(false, nil),
			f.idem.EXPECT().Lookup(gomock.Any(), "key-1").Return("pi_prev", true, nil),
		)
		f.payables.EXPECT().GetByID(gomock.Any(), "visit-42").Return(openVisitPayable(), nil)
		f.repo.EXPECT().GetByID(gomock.Any(), "pi_prev").Return(existing, nil)

		got, err := f.uc.CreateIntent(context.Background(), cmd)
		if err != nil || got.ID != "pi_prev" {
			t.Fatalf("expected winner intent, got %+v err=%v", got, err)
		}
	})

	t.Run("duplicate still in flight", func(t *testing.T) {
		f := newIntentFixture(t, true)
		cmd := visitCommand()
		cmd.IdempotencyKey = "key-1"

		gomock.InOrder(
			f.idem.EXPECT().Lookup(gomock.Any(), "key-1").Return("", false, nil),
			f.idem.EXPECT().Reserve(gomock.Any(), "key-1", "pi_test").Return(false, nil),
			f.idem.EXPECT().Lookup(gomock.Any(), "key-1").Return("pi_prev", true, nil),
		)
		f.payables.EXPECT().GetByID(gomock.Any(), "visit-42").Return(openVisitPayable(), nil)
		f.repo.EXPECT().GetByID(gomock.Any(), "pi_prev").Return(entities.PaymentIntent{}, nil)

		_, err := f.uc.CreateIntent(context.Background(), cmd)
		if !errors.Is(err, ErrIdempotencyConflict) {
			t.Fatalf("expected ErrIdempotencyConflict, got %v", err)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		f := newIntentFixture(t, true)
		cmd := visitCommand()
		cmd.IdempotencyKey = "key-1"
		f.idem.EXPECT().Lookup(gomock.Any(), "key-1").Return("", false, errors.New("redis down"))

		_, err := f.uc.CreateIntent(context.Background(), cmd)
		if err == nil || err.Error() != "redis down" {
			t.Fatalf("expected redis error, got %v", err)
		}
	})
}

func pendingIntent() entities.PaymentIntent {
	return entities.PaymentIntent{
		ID:                "pi_1",
		RelatedID:         "visit-42",
		Purpose:           entities.PurposeVisit,
		Amount:            5000,
		Channel:           entities.ChannelOrangeMoney,
		ProviderReference: "trx_1",
		Status:            entities.IntentStatusPending,
	}
}

func TestPaymentIntentUseCase_GetIntentStatus(t *testing.T) {
	t.Run("empty id", func(t *testing.T) {
		uc := NewPaymentIntentUseCase(nil, nil, nil, nil, PaymentIntentOptions{})
		_, err := uc.GetIntentStatus(context.Background(), " ")
		if !errors.Is(err, ErrInvalidIntentID) {
			t.Fatalf("expected ErrInvalidIntentID, got %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		f := newIntentFixture(t, false)
		f.repo.EXPECT().GetByID(gomock.Any(), "pi_x").Return(entities.PaymentIntent{}, nil)
		_, err := f.uc.GetIntentStatus(context.Background(), "pi_x")
		if !errors.Is(err, ErrIntentNotFound) {
			t.Fatalf("expected ErrIntentNotFound, got %v", err)
		}
	})

	t.Run("terminal intent is not refreshed", func(t *testing.T) {
		f := newIntentFixture(t, false)
		done := pendingIntent()
		done.Status = entities.IntentStatusSucceeded
		f.repo.EXPECT().GetByID(gomock.Any(), "pi_1").Return(done, nil)

		got, err := f.uc.GetIntentStatus(context.Background(), "pi_1")
		if err != nil || got.Status != entities.IntentStatusSucceeded {
			t.Fatalf("expected stored success, got %+v err=%v", got, err)
		}
	})

	t.Run("still pending at gateway", func(t *testing.T) {
		f := newIntentFixture(t, false)
		f.repo.EXPECT().GetByID(gomock.Any(), "pi_1").Return(pendingIntent(), nil)
		f.gateway.EXPECT().FetchPayment(gomock.Any(), entities.GatewayReference{
			Channel:           entities.ChannelOrangeMoney,
			Reference:         "pi_1",
			ProviderReference: "trx_1",
		}).Return(entities.GatewayPayment{Status: entities.IntentStatusPending}, nil)

		got, err := f.uc.GetIntentStatus(context.Background(), "pi_1")
		if err != nil || got.Status != entities.IntentStatusPending {
			t.Fatalf("expected pending, got %+v err=%v", got, err)
		}
	})

	t.Run("gateway error reports stored status", func(t *testing.T) {
		f := newIntentFixture(t, false)
		f.repo.EXPECT().GetByID(gomock.Any(), "pi_1").Return(pendingIntent(), nil)
		f.gateway.EXPECT().FetchPayment(gomock.Any(), gomock.Any()).Return(entities.GatewayPayment{}, errors.New("timeout"))

		got, err := f.uc.GetIntentStatus(context.Background(), "pi_1")
		if err != nil || got.Status != entities.IntentStatusPending {
			t.Fatalf("expected pending without error, got %+v err=%v", got, err)
		}
	})

	t.Run("failed stores reason", func(t *testing.T) {
		f := newIntentFixture(t, false)
		f.repo.EXPECT().GetByID(gomock.Any(), "pi_1").Return(pendingIntent(), nil)
		f.gateway.EXPECT().FetchPayment(gomock.Any(), gomock.Any()).Return(entities.GatewayPayment{
			Status:        entities.IntentStatusFailed,
			FailureReason: " Insufficient balance ",
		}, nil)
		f.repo.EXPECT().UpdateOutcome(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p entities.PaymentIntent) (entities.PaymentIntent, error) {
			if p.Status != entities.IntentStatusFailed || p.FailureReason != "Insufficient balance" {
				t.Fatalf("unexpected outcome: %+v", p)
			}
			if !p.UpdatedAt.Equal(fixedNow) {
				t.Fatalf("expected updated_at to be set")
			}
			return p, nil
		})

		got, err := f.uc.GetIntentStatus(context.Background(), "pi_1")
		if err != nil || got.FailureReason != "Insufficient balance" {
			t.Fatalf("expected failure reason, got %+v err=%v", got, err)
		}
	})

	t.Run("success records payment on payable", func(t *testing.T) {
		f := newIntentFixture(t, false)
		payable := openVisitPayable()
		f.repo.EXPECT().GetByID(gomock.Any(), "pi_1").Return(pendingIntent(), nil)
		f.gateway.EXPECT().FetchPayment(gomock.Any(), gomock.Any()).Return(entities.GatewayPayment{Status: entities.IntentStatusSucceeded}, nil)
		f.repo.EXPECT().UpdateOutcome(gomock.Any(), gomock.Any()).DoAndReturn(echoIntent)
		f.payables.EXPECT().GetByID(gomock.Any(), "visit-42").Return(payable, nil)
		paid := payable
		paid.AmountPaid, paid.Status = 5000, entities.PayableStatusPaid
		f.payables.EXPECT().RecordPayment(gomock.Any(), payable, int64(5000)).Return(paid, nil)

		got, err := f.uc.GetIntentStatus(context.Background(), "pi_1")
		if err != nil || got.Status != entities.IntentStatusSucceeded {
			t.Fatalf("expected success, got %+v err=%v", got, err)
		}
	})

	t.Run("success retries concurrent payable update", func(t *testing.T) {
		f := newIntentFixture(t, false)
		stale := entities.Payable{ID: "visit-42", Kind: entities.PayableKindVisit, AmountDue: 10000, Status: entities.PayableStatusOpen}
		fresh := stale
		fresh.AmountPaid, fresh.Status = 5000, entities.PayableStatusPartiallyPaid

		f.repo.EXPECT().GetByID(gomock.Any(), "pi_1").Return(pendingIntent(), nil)
		f.gateway.EXPECT().FetchPayment(gomock.Any(), gomock.Any()).Return(entities.GatewayPayment{Status: entities.IntentStatusSucceeded}, nil)
		f.repo.EXPECT().UpdateOutcome(gomock.Any(), gomock.Any()).DoAndReturn(echoIntent)
		gomock.InOrder(
			f.payables.EXPECT().GetByID(gomock.Any(), "visit-42").Return(stale, nil),
			f.payables.EXPECT().RecordPayment(gomock.Any(), stale, int64(5000)).Return(entities.Payable{}, nil),
			f.payables.EXPECT().GetByID(gomock.Any(), "visit-42").Return(fresh, nil),
			f.payables.EXPECT().RecordPayment(gomock.Any(), fresh, int64(5000)).Return(entities.Payable{ID: "visit-42", Status: entities.PayableStatusPaid}, nil),
		)

		if _, err := f.uc.GetIntentStatus(context.Background(), "pi_1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("outcome already stored by another request", func(t *testing.T) {
		f := newIntentFixture(t, false)
		settled := pendingIntent()
		settled.Status = entities.IntentStatusSucceeded

		gomock.InOrder(
			f.repo.EXPECT().GetByID(gomock.Any(), "pi_1").Return(pendingIntent(), nil),
			f.repo.EXPECT().UpdateOutcome(gomock.Any(), gomock.Any()).Return(entities.PaymentIntent{}, nil),
			f.repo.EXPECT().GetByID(gomock.Any(), "pi_1").Return(settled, nil),
		)
		f.gateway.EXPECT().FetchPayment(gomock.Any(), gomock.Any()).Return(entities.GatewayPayment{Status: entities.IntentStatusSucceeded}, nil)

		got, err := f.uc.GetIntentStatus(context.Background(), "pi_1")
		if err != nil || got.Status != entities.IntentStatusSucceeded {
			t.Fatalf("expected reloaded intent, got %+v err=%v", got, err)
		}
	})
}
