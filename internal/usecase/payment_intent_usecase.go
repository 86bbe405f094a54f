package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"habitat_payments/internal/domain/entities"
	"habitat_payments/internal/infrastructure/metrics"
	"habitat_payments/internal/usecase/interfaces"
	"habitat_payments/pkg/logger"
)

var (
	ErrInvalidIntentRequest = errors.New("invalid payment intent request")
	ErrInvalidIntentID      = errors.New("invalid intent id")
	ErrIntentNotFound       = errors.New("payment intent not found")
	ErrPayableNotFound      = errors.New("payable not found")
	ErrPayableMismatch      = errors.New("payment does not match payable")
	ErrPayableClosed        = errors.New("payable is closed")
	ErrIdempotencyConflict  = errors.New("a request with this idempotency key is still in progress")
	ErrPaymentProvider      = errors.New("payment provider error")
)

const recordPaymentAttempts = 3

// IPaymentIntentUseCase is the backend side of a payment session.
//
//   - CreateIntent validates the command against the payable it settles and
//     starts collection on the channel's gateway.
//   - GetIntentStatus is idempotent; pending intents are refreshed from the
//     gateway on every call.
type IPaymentIntentUseCase interface {
	CreateIntent(ctx context.Context, cmd entities.CreateIntentCommand) (entities.PaymentIntent, error)
	GetIntentStatus(ctx context.Context, intentID string) (entities.PaymentIntent, error)
}

type PaymentIntentOptions struct {
	Currency    string
	CallbackURL string
	Metrics     *metrics.PaymentMetrics
	Logger      *logger.Logger
}

type PaymentIntentUseCase struct {
	repo        interfaces.IPaymentIntentRepository
	payables    interfaces.IPayableRepository
	gateway     interfaces.IPaymentGateway
	idempotency interfaces.IIdempotencyStore
	metrics     *metrics.PaymentMetrics
	logg        *logger.Logger
	currency    string
	callbackURL string
	now         func() time.Time
	newID       func() string
}

var _ IPaymentIntentUseCase = (*PaymentIntentUseCase)(nil)

// NewPaymentIntentUseCase builds the use case. idempotency may be nil, in
// which case idempotency keys are stored on the intent but not enforced.
func NewPaymentIntentUseCase(
	repo interfaces.IPaymentIntentRepository,
	payables interfaces.IPayableRepository,
	gateway interfaces.IPaymentGateway,
	idempotency interfaces.IIdempotencyStore,
	opts PaymentIntentOptions,
) *PaymentIntentUseCase {
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	currency := strings.TrimSpace(opts.Currency)
	if currency == "" {
		currency = "XAF"
	}
	return &PaymentIntentUseCase{
		repo:        repo,
		payables:    payables,
		gateway:     gateway,
		idempotency: idempotency,
		metrics:     opts.Metrics,
		logg:        logg,
		currency:    currency,
		callbackURL: opts.CallbackURL,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       func() string { return "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

func (u *PaymentIntentUseCase) CreateIntent(ctx context.Context, cmd entities.CreateIntentCommand) (entities.PaymentIntent, error) {
	cmd.RelatedID = strings.TrimSpace(cmd.RelatedID)
	if cmd.RelatedID == "" {
		u.logg.Warn(ctx, "payment intent rejected: related id missing", entities.ErrMissingRelatedID)
		return entities.PaymentIntent{}, entities.ErrMissingRelatedID
	}
	logCtx := u.logg.WithFields(ctx, map[string]any{
		"related_id": cmd.RelatedID,
		"channel":    string(cmd.Channel),
		"purpose":    string(cmd.Purpose),
	})
	u.logg.Info(logCtx, "create intent start")

	if err := validateCommand(&cmd); err != nil {
		u.logg.Warn(logCtx, "create intent rejected", err)
		return entities.PaymentIntent{}, err
	}
	if u.gateway == nil {
		return entities.PaymentIntent{}, errors.New("payment gateway not configured")
	}
	if u.payables == nil {
		return entities.PaymentIntent{}, errors.New("payable repository not configured")
	}

	key := strings.TrimSpace(cmd.IdempotencyKey)
	cmd.IdempotencyKey = key
	if key != "" && u.idempotency != nil {
		existing, err := u.replay(ctx, key)
		if err != nil {
			return entities.PaymentIntent{}, err
		}
		if existing.ID != "" {
			u.logg.Info(u.logg.WithIntentID(logCtx, existing.ID), "create intent replayed from idempotency key")
			return existing, nil
		}
	}

	payable, err := u.payables.GetByID(ctx, cmd.RelatedID)
	if err != nil {
		u.logg.Error(logCtx, "failed loading payable", err)
		return entities.PaymentIntent{}, err
	}
	if err := checkPayable(payable, cmd); err != nil {
		u.logg.Warn(logCtx, "create intent rejected by payable", err)
		return entities.PaymentIntent{}, err
	}

	id := u.newID()
	logCtx = u.logg.WithIntentID(logCtx, id)

	if key != "" && u.idempotency != nil {
		reserved, err := u.idempotency.Reserve(ctx, key, id)
		if err != nil {
			u.logg.Error(logCtx, "idempotency reserve failed", err)
			return entities.PaymentIntent{}, err
		}
		if !reserved {
			existing, err := u.replay(ctx, key)
			if err != nil {
				return entities.PaymentIntent{}, err
			}
			if existing.ID == "" {
				return entities.PaymentIntent{}, ErrIdempotencyConflict
			}
			return existing, nil
		}
	}

	gp, err := u.gateway.InitiatePayment(ctx, entities.GatewayPaymentRequest{
		Reference:   id,
		Amount:      cmd.Amount,
		Currency:    u.currency,
		Channel:     cmd.Channel,
		Phone:       cmd.CustomerPhone,
		Description: describe(cmd),
		CallbackURL: u.callbackURL,
	})
	if err != nil {
		u.release(logCtx, key)
		if errors.Is(err, entities.ErrInvalidPhone) {
			u.logg.Warn(logCtx, "gateway rejected phone", err)
			return entities.PaymentIntent{}, fmt.Errorf("%w: %w", entities.ErrIntentRejected, err)
		}
		u.metrics.IncGatewayError(string(cmd.Channel), "initiate")
		u.logg.Error(logCtx, "gateway initiate failed", err)
		return entities.PaymentIntent{}, fmt.Errorf("%w: %w", ErrPaymentProvider, err)
	}

	now := u.now()
	status := gp.Status
	if !status.IsValid() {
		status = entities.IntentStatusPending
	}
	intent := entities.PaymentIntent{
		ID:                id,
		PayerID:           cmd.PayerID,
		Purpose:           cmd.Purpose,
		RelatedID:         cmd.RelatedID,
		Amount:            cmd.Amount,
		Currency:          u.currency,
		Channel:           cmd.Channel,
		CustomerPhone:     cmd.CustomerPhone,
		Status:            status,
		AuthorizationURL:  gp.AuthorizationURL,
		ConfirmMessage:    gp.ConfirmMessage,
		Action:            gp.Action,
		FailureReason:     gp.FailureReason,
		ProviderReference: gp.ProviderReference,
		ProviderPayload:   gp.Raw,
		IdempotencyKey:    key,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := u.repo.Create(ctx, intent)
	if err != nil {
		u.release(logCtx, key)
		u.logg.Error(logCtx, "payment intent repository create failed", err)
		return entities.PaymentIntent{}, err
	}

	u.metrics.IncIntentCreated(string(cmd.Channel), string(cmd.Purpose))
	u.logg.Info(u.logg.WithField(logCtx, "provider_reference", created.ProviderReference), "create intent success")
	return created, nil
}

func (u *PaymentIntentUseCase) GetIntentStatus(ctx context.Context, intentID string) (entities.PaymentIntent, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return entities.PaymentIntent{}, ErrInvalidIntentID
	}
	logCtx := u.logg.WithIntentID(ctx, intentID)

	intent, err := u.repo.GetByID(ctx, intentID)
	if err != nil {
		u.logg.Error(logCtx, "failed loading intent", err)
		return entities.PaymentIntent{}, err
	}
	if intent.ID == "" {
		return entities.PaymentIntent{}, ErrIntentNotFound
	}
	if intent.Status.IsTerminal() {
		return intent, nil
	}

	gp, err := u.gateway.FetchPayment(ctx, entities.GatewayReference{
		Channel:           intent.Channel,
		Reference:         intent.ID,
		ProviderReference: intent.ProviderReference,
	})
	if err != nil {
		// the caller polls again; a provider hiccup is not an outcome
		u.metrics.IncGatewayError(string(intent.Channel), "fetch")
		u.logg.Warn(logCtx, "gateway fetch failed; reporting stored status", err)
		return intent, nil
	}
	if !gp.Status.IsTerminal() {
		return intent, nil
	}

	next := intent
	next.Status = gp.Status
	next.FailureReason = ""
	if gp.Status == entities.IntentStatusFailed {
		next.FailureReason = strings.TrimSpace(gp.FailureReason)
	}
	if len(gp.Raw) > 0 {
		next.ProviderPayload = gp.Raw
	}
	next.UpdatedAt = u.now()

	updated, err := u.repo.UpdateOutcome(ctx, next)
	if err != nil {
		u.logg.Error(logCtx, "failed storing intent outcome", err)
		return entities.PaymentIntent{}, err
	}
	if updated.ID == "" {
		// another request stored the outcome first
		return u.repo.GetByID(ctx, intentID)
	}

	u.metrics.IncIntentOutcome(string(updated.Channel), string(updated.Status))
	u.logg.Info(u.logg.WithField(logCtx, "status", string(updated.Status)), "intent reached terminal status")

	if updated.Status == entities.IntentStatusSucceeded {
		u.recordPayment(logCtx, updated)
	}
	return updated, nil
}

// recordPayment adds a settled intent to its payable, retrying when a
// concurrent settlement changed the paid amount in between.
func (u *PaymentIntentUseCase) recordPayment(ctx context.Context, intent entities.PaymentIntent) {
	for attempt := 0; attempt < recordPaymentAttempts; attempt++ {
		payable, err := u.payables.GetByID(ctx, intent.RelatedID)
		if err != nil {
			u.logg.Error(ctx, "failed loading payable for settlement", err)
			return
		}
		if payable.ID == "" {
			u.logg.Error(ctx, "settled intent has no payable", ErrPayableNotFound)
			return
		}
		updated, err := u.payables.RecordPayment(ctx, payable, intent.Amount)
		if err != nil {
			u.logg.Error(ctx, "failed recording payment on payable", err)
			return
		}
		if updated.ID != "" {
			u.logg.Info(u.logg.WithField(ctx, "payable_status", string(updated.Status)), "payment recorded on payable")
			return
		}
	}
	u.logg.Error(ctx, "payment not recorded on payable after retries", nil)
}

func (u *PaymentIntentUseCase) replay(ctx context.Context, key string) (entities.PaymentIntent, error) {
	intentID, found, err := u.idempotency.Lookup(ctx, key)
	if err != nil {
		u.logg.Error(ctx, "idempotency lookup failed", err)
		return entities.PaymentIntent{}, err
	}
	if !found {
		return entities.PaymentIntent{}, nil
	}
	return u.repo.GetByID(ctx, intentID)
}

func (u *PaymentIntentUseCase) release(ctx context.Context, key string) {
	if key == "" || u.idempotency == nil {
		return
	}
	if err := u.idempotency.Release(ctx, key); err != nil {
		u.logg.Warn(ctx, "idempotency release failed", err)
	}
}

func validateCommand(cmd *entities.CreateIntentCommand) error {
	cmd.PayerID = strings.TrimSpace(cmd.PayerID)
	switch {
	case cmd.PayerID == "":
		return fmt.Errorf("%w: payer id is required", ErrInvalidIntentRequest)
	case !cmd.Purpose.IsValid():
		return fmt.Errorf("%w: unknown purpose %q", ErrInvalidIntentRequest, cmd.Purpose)
	case !cmd.Channel.IsValid():
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidIntentRequest, cmd.Channel)
	case cmd.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrInvalidIntentRequest)
	}

	if !cmd.Channel.RequiresPhone() {
		cmd.CustomerPhone = ""
		return nil
	}
	if !entities.IsCanonicalPhone(cmd.CustomerPhone) {
		return fmt.Errorf("%w: %w", entities.ErrIntentRejected, entities.ErrInvalidPhone)
	}
	return nil
}

func checkPayable(p entities.Payable, cmd entities.CreateIntentCommand) error {
	switch {
	case p.ID == "":
		return ErrPayableNotFound
	case p.Kind != cmd.Purpose.PayableKind():
		return fmt.Errorf("%w: %s payment for a %s", ErrPayableMismatch, cmd.Purpose, p.Kind)
	case p.IsClosed():
		return fmt.Errorf("%w: status %s", ErrPayableClosed, p.Status)
	case cmd.Amount > p.Outstanding():
		return fmt.Errorf("%w: amount %d exceeds outstanding %d", ErrPayableMismatch, cmd.Amount, p.Outstanding())
	case cmd.Purpose.RequiresCompletion() && cmd.Amount != p.Outstanding():
		return fmt.Errorf("%w: remaining balance is %d", ErrPayableMismatch, p.Outstanding())
	}
	return nil
}

func describe(cmd entities.CreateIntentCommand) string {
	switch cmd.Purpose {
	case entities.PurposeVisit:
		return "Visit fee " + cmd.RelatedID
	case entities.PurposeBookingRemaining:
		return "Booking balance " + cmd.RelatedID
	}
	return "Booking " + cmd.RelatedID
}
