package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"habitat_payments/internal/domain/entities"
	"habitat_payments/pkg/logger"
)

const (
	DefaultPollInterval      = 3 * time.Second
	DefaultExtendedWaitAfter = 30 * time.Second
)

// Backend is the payment service a session talks to. Both calls may be
// retried freely; GetIntentStatus must be idempotent.
type Backend interface {
	CreateIntent(ctx context.Context, cmd entities.CreateIntentCommand) (entities.IntentReceipt, error)
	GetIntentStatus(ctx context.Context, intentID string) (entities.IntentStatusReport, error)
}

// Recorder receives session telemetry. A nil Recorder disables it.
type Recorder interface {
	ObserveTransition(state string)
	ObservePoll(result string)
}

// Payer identifies who pays. Phone pre-fills the mobile money form.
type Payer struct {
	ID    string
	Phone string
}

// Params configure a payment session.
type Params struct {
	Backend   Backend
	Payer     Payer
	Purpose   entities.Purpose
	RelatedID string
	Amount    int64

	PollInterval      time.Duration
	ExtendedWaitAfter time.Duration

	OnTransition      func(Transition)
	Logger            *logger.Logger
	Metrics           Recorder
	NewIdempotencyKey func() string
}

// Session drives one payment attempt at a time from channel selection to a
// terminal outcome. It is safe for concurrent use.
type Session struct {
	backend           Backend
	payer             Payer
	purpose           entities.Purpose
	relatedID         string
	amount            int64
	pollInterval      time.Duration
	extendedWaitAfter time.Duration
	logg              *logger.Logger
	metrics           Recorder
	newKey            func() string
	events            *dispatcher

	root       context.Context
	rootCancel context.CancelFunc

	mu            sync.Mutex
	state         State
	form          Form
	fieldErrors   FieldErrors
	lockedChannel entities.Channel
	lastCmd       *entities.CreateIntentCommand
	intentID      string
	confirmation  Confirmation
	failureReason string
	extendedWait  bool
	attempt       uint64
	cancelAttempt context.CancelFunc
	closed        bool
	changed       chan struct{}
}

// New opens a payment session. A session is never created for a payment
// that is not bound to a visit or booking: an empty RelatedID returns
// entities.ErrMissingRelatedID.
//
// Every session must be closed with Close. With OnTransition set, New starts
// a delivery goroutine that only exits on Close.
func New(params Params) (*Session, error) {
	if strings.TrimSpace(params.RelatedID) == "" {
		return nil, entities.ErrMissingRelatedID
	}
	if params.Backend == nil {
		return nil, errors.New("payment backend required")
	}
	if !params.Purpose.IsValid() {
		return nil, errors.New("invalid payment purpose")
	}
	if params.Amount <= 0 {
		return nil, errors.New("payment amount must be positive")
	}
	if strings.TrimSpace(params.Payer.ID) == "" {
		return nil, errors.New("payer id required")
	}

	pollInterval := params.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	extendedWaitAfter := params.ExtendedWaitAfter
	if extendedWaitAfter <= 0 {
		extendedWaitAfter = DefaultExtendedWaitAfter
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	newKey := params.NewIdempotencyKey
	if newKey == nil {
		newKey = uuid.NewString
	}

	root, rootCancel := context.WithCancel(context.Background())
	s := &Session{
		backend:           params.Backend,
		payer:             params.Payer,
		purpose:           params.Purpose,
		relatedID:         strings.TrimSpace(params.RelatedID),
		amount:            params.Amount,
		pollInterval:      pollInterval,
		extendedWaitAfter: extendedWaitAfter,
		logg:              logg,
		metrics:           params.Metrics,
		newKey:            newKey,
		root:              root,
		rootCancel:        rootCancel,
		state:             StateIdle,
		form:              Form{Phone: params.Payer.Phone},
		changed:           make(chan struct{}),
	}
	if params.OnTransition != nil {
		s.events = newDispatcher(params.OnTransition)
	}
	return s, nil
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetForm replaces the form input. Input can only change while no payment
// is in flight, and never moves the channel away from a locked one.
func (s *Session) SetForm(f Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.lockedChannel != "" && f.Channel != s.lockedChannel {
		return ErrChannelLocked
	}
	if s.state != StateIdle && s.state != StateValidating {
		return ErrBusy
	}
	s.form = f
	if s.state == StateValidating {
		s.fieldErrors = nil
		s.setStateLocked(StateIdle)
	}
	return nil
}

// SelectChannel changes only the channel of the form.
func (s *Session) SelectChannel(ch entities.Channel) error {
	if !ch.IsValid() {
		return errors.New("invalid payment channel")
	}
	s.mu.Lock()
	f := s.form
	s.mu.Unlock()
	f.Channel = ch
	return s.SetForm(f)
}

// Submit validates the form and, when it passes, creates the payment intent
// and starts watching it in the background. Local validation failures are
// returned as FieldErrors and leave the session in validating without any
// network call.
func (s *Session) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.state != StateIdle && s.state != StateValidating {
		return stateError("submit", s.state)
	}

	phone, fieldErrs := s.form.check()
	s.fieldErrors = fieldErrs
	s.setStateLocked(StateValidating)
	if fieldErrs != nil {
		s.logg.Debug(s.logCtx(), "payment form rejected")
		return fieldErrs.clone()
	}

	cmd := entities.CreateIntentCommand{
		PayerID:       s.payer.ID,
		Purpose:       s.purpose,
		RelatedID:     s.relatedID,
		Amount:        s.amount,
		Channel:       s.form.Channel,
		CustomerPhone: phone,
	}
	s.lockedChannel = cmd.Channel
	s.startAttemptLocked(cmd)
	return nil
}

// Retry re-submits the exact command of the failed attempt.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.state != StateFailed || s.lastCmd == nil {
		return stateError("retry", s.state)
	}
	s.startAttemptLocked(*s.lastCmd)
	return nil
}

// Cancel returns the session to idle from any state, stops polling and
// discards whatever is still in flight. The form is kept and the channel
// unlocked. A remaining-balance payment waiting for USSD confirmation cannot
// be dismissed and returns ErrDismissBlocked.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if s.dismissBlockedLocked() {
		s.logg.Info(s.logCtx(), "payment dismissal blocked while confirmation is required")
		return ErrDismissBlocked
	}
	s.invalidateLocked()
	s.lockedChannel = ""
	s.intentID = ""
	s.confirmation = Confirmation{}
	s.failureReason = ""
	s.extendedWait = false
	s.fieldErrors = nil
	s.setStateLocked(StateIdle)
	return nil
}

// Close tears the session down. Polling stops, late responses are dropped
// and queued transitions are discarded. At most one transition, already
// dequeued for the listener when Close runs, may still be delivered after
// Close returns. Close does not wait for it so that a listener can call
// Close itself. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.invalidateLocked()
	s.rootCancel()
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()

	if s.events != nil {
		s.events.close()
	}
}

// Wait blocks until the session reaches a terminal state, is closed, or ctx
// is done.
func (s *Session) Wait(ctx context.Context) (Snapshot, error) {
	for {
		s.mu.Lock()
		snap := s.snapshotLocked()
		closed := s.closed
		changed := s.changed
		s.mu.Unlock()

		if closed {
			return snap, ErrClosed
		}
		if snap.State.IsTerminal() {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-changed:
		}
	}
}

func (s *Session) startAttemptLocked(cmd entities.CreateIntentCommand) {
	s.invalidateLocked()
	attempt := s.attempt

	cmd.IdempotencyKey = s.newKey()
	stored := cmd
	s.lastCmd = &stored
	s.intentID = ""
	s.confirmation = Confirmation{}
	s.failureReason = ""
	s.extendedWait = false

	ctx, cancel := context.WithCancel(s.root)
	s.cancelAttempt = cancel
	s.setStateLocked(StateSubmitting)

	go s.run(ctx, attempt, cmd)
}

// invalidateLocked makes every response of the current attempt stale.
func (s *Session) invalidateLocked() {
	s.attempt++
	if s.cancelAttempt != nil {
		s.cancelAttempt()
		s.cancelAttempt = nil
	}
}

func (s *Session) currentLocked(attempt uint64) bool {
	return !s.closed && s.attempt == attempt
}

func (s *Session) run(ctx context.Context, attempt uint64, cmd entities.CreateIntentCommand) {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"related_id": cmd.RelatedID,
		"channel":    string(cmd.Channel),
		"purpose":    string(cmd.Purpose),
	})
	s.logg.Info(logCtx, "creating payment intent")

	receipt, err := s.backend.CreateIntent(ctx, cmd)

	s.mu.Lock()
	if !s.currentLocked(attempt) {
		s.mu.Unlock()
		s.logg.Debug(logCtx, "dropping create response of a superseded attempt")
		return
	}
	if err != nil {
		s.applyCreateErrorLocked(err)
		s.mu.Unlock()
		s.logg.Warn(logCtx, "payment intent creation failed", err)
		return
	}

	s.intentID = receipt.IntentID
	s.confirmation = newConfirmation(cmd.Channel, receipt)
	logCtx = s.logg.WithIntentID(logCtx, receipt.IntentID)
	if receipt.Status.IsTerminal() {
		s.applyStatusLocked(entities.IntentStatusReport{IntentID: receipt.IntentID, Status: receipt.Status})
		s.mu.Unlock()
		return
	}
	s.setStateLocked(StatePolling)
	s.mu.Unlock()

	s.logg.Info(logCtx, "payment intent created; polling")
	s.poll(ctx, logCtx, attempt, receipt.IntentID)
}

func (s *Session) poll(ctx, logCtx context.Context, attempt uint64, intentID string) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	extended := time.NewTimer(s.extendedWaitAfter)
	defer extended.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-extended.C:
			s.mu.Lock()
			if s.currentLocked(attempt) && s.state == StatePolling {
				s.extendedWait = true
				s.setStateLocked(StateTimedOut)
			}
			s.mu.Unlock()
		case <-ticker.C:
			report, err := s.backend.GetIntentStatus(ctx, intentID)
			if s.applyPoll(logCtx, attempt, intentID, report, err) {
				return
			}
		}
	}
}

// applyPoll folds one status response into the session and reports whether
// polling is over.
func (s *Session) applyPoll(logCtx context.Context, attempt uint64, intentID string, report entities.IntentStatusReport, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.currentLocked(attempt) || s.intentID != intentID {
		s.observePoll("stale")
		return true
	}
	if err != nil {
		s.observePoll("error")
		s.logg.Warn(logCtx, "payment status poll failed; will retry", err)
		return false
	}
	if report.IntentID != "" && report.IntentID != intentID {
		s.observePoll("stale")
		s.logg.Debug(logCtx, "dropping status of another intent")
		return false
	}
	s.observePoll(string(report.Status))
	if !report.Status.IsTerminal() {
		return false
	}
	s.applyStatusLocked(report)
	return true
}

func (s *Session) applyStatusLocked(report entities.IntentStatusReport) {
	switch report.Status {
	case entities.IntentStatusSucceeded:
		s.releaseAttemptLocked()
		s.setStateLocked(StateSucceeded)
	case entities.IntentStatusFailed:
		s.releaseAttemptLocked()
		s.failureReason = strings.TrimSpace(report.FailureReason)
		if s.failureReason == "" {
			s.failureReason = DefaultFailureReason
		}
		s.setStateLocked(StateFailed)
	}
}

func (s *Session) applyCreateErrorLocked(err error) {
	s.releaseAttemptLocked()
	if errors.Is(err, entities.ErrIntentRejected) {
		s.failureReason = reasonOf(err, DefaultRejectedReason)
		s.setStateLocked(StateValidationError)
		return
	}
	s.failureReason = reasonOf(err, DefaultFailureReason)
	s.setStateLocked(StateFailed)
}

// releaseAttemptLocked frees the attempt context once it reached an outcome.
// The attempt stays current so its outcome remains visible.
func (s *Session) releaseAttemptLocked() {
	if s.cancelAttempt != nil {
		s.cancelAttempt()
		s.cancelAttempt = nil
	}
}

func (s *Session) dismissBlockedLocked() bool {
	return s.purpose.RequiresCompletion() &&
		s.state.awaitingOutcome() &&
		s.confirmation.RequiresConfirmation()
}

func (s *Session) setStateLocked(to State) {
	from := s.state
	s.state = to
	close(s.changed)
	s.changed = make(chan struct{})
	if from == to {
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveTransition(string(to))
	}
	if s.events != nil {
		s.events.push(Transition{From: from, To: to, Snapshot: s.snapshotLocked()})
	}
}

func (s *Session) snapshotLocked() Snapshot {
	channel := s.form.Channel
	if s.lockedChannel != "" {
		channel = s.lockedChannel
	}
	return Snapshot{
		State:         s.state,
		IntentID:      s.intentID,
		Channel:       channel,
		ChannelLocked: s.lockedChannel != "",
		Form:          s.form,
		FieldErrors:   s.fieldErrors.clone(),
		Confirmation:  s.confirmation,
		FailureReason: s.failureReason,
		ExtendedWait:  s.extendedWait,
		Disclosure:    disclosureFor(s.state, s.confirmation),
	}
}

func (s *Session) observePoll(result string) {
	if s.metrics != nil {
		s.metrics.ObservePoll(result)
	}
}

func (s *Session) logCtx() context.Context {
	return s.logg.WithField(s.root, "related_id", s.relatedID)
}
