// Package workflow drives the cashier transaction workflow: one session per
// open cashier modal, stepping from method selection through confirmation to
// the one-shot submission against the payments backend.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ovibet/cashier/internal/core/domain"
	"github.com/ovibet/cashier/internal/core/validation"
)

// Submitter performs the one-shot transaction submission.
type Submitter interface {
	Submit(ctx context.Context, req domain.SubmissionRequest) (domain.TransactionResult, error)
}

// CloseOutcome tells the caller what a close request did.
type CloseOutcome string

const (
	// CloseDone means the session reached Closed and the draft is gone.
	CloseDone CloseOutcome = "closed"
	// CloseDeferred means a submission is in flight; the session will close
	// itself as soon as the call resolves.
	CloseDeferred CloseOutcome = "deferred"
)

// Session owns one TransactionDraft. All mutable draft state lives here and
// is dropped when the session closes; nothing is persisted.
type Session struct {
	ID     string
	UserID string
	Kind   domain.TransactionKind

	submitter Submitter
	logger    *slog.Logger

	// onSettled fires on the Succeeded -> Closed transition only. This is
	// the single place the surrounding app invalidates balance and
	// transaction-history caches.
	onSettled func(userID string, result domain.TransactionResult)

	mu             sync.Mutex
	step           Step
	methods        []domain.PaymentMethod
	limits         *domain.AccountLimits
	balance        decimal.Decimal
	method         *domain.PaymentMethod
	amount         string
	fields         map[string]string
	idemToken      string
	verdict        *validation.Result
	result         *domain.TransactionResult
	failure        *domain.SubmissionError
	closeRequested bool
	lastActive     time.Time
}

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	ID             string
	UserID         string
	Kind           domain.TransactionKind
	Step           Step
	Methods        []domain.PaymentMethod
	Limits         *domain.AccountLimits
	Method         *domain.PaymentMethod
	Amount         string
	Fields         map[string]string
	Verdict        *validation.Result
	Result         *domain.TransactionResult
	Failure        *domain.SubmissionError
	CloseRequested bool
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	fields := make(map[string]string, len(s.fields))
	for k, v := range s.fields {
		fields[k] = v
	}
	return Snapshot{
		ID:             s.ID,
		UserID:         s.UserID,
		Kind:           s.Kind,
		Step:           s.step,
		Methods:        s.methods,
		Limits:         s.limits,
		Method:         s.method,
		Amount:         s.amount,
		Fields:         fields,
		Verdict:        s.verdict,
		Result:         s.result,
		Failure:        s.failure,
		CloseRequested: s.closeRequested,
	}
}

func (s *Session) transitionLocked(to Step, event string) error {
	if !canTransition(s.step, to) {
		return &domain.InvalidTransitionError{From: string(s.step), Event: event}
	}
	s.logger.Debug("cashier step change", "session_id", s.ID, "from", s.step, "to", to, "event", event)
	s.step = to
	s.lastActive = time.Now()
	return nil
}

// SelectMethod moves from method selection to field collection. Any values
// left over from a previous attempt are cleared, including the idempotency
// token: a new method means a new draft.
func (s *Session) SelectMethod(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepSelectingMethod {
		return s.snapshotLocked(), &domain.InvalidTransitionError{From: string(s.step), Event: "select_method"}
	}

	var selected *domain.PaymentMethod
	for i := range s.methods {
		if s.methods[i].ID == id {
			selected = &s.methods[i]
			break
		}
	}
	if selected == nil {
		return s.snapshotLocked(), domain.ErrMethodNotFound
	}
	if !selected.IsActive {
		return s.snapshotLocked(), domain.ErrMethodNotFound
	}

	if err := s.transitionLocked(StepCollectingFields, "select_method"); err != nil {
		return s.snapshotLocked(), err
	}
	s.method = selected
	s.amount = ""
	s.fields = map[string]string{}
	s.idemToken = ""
	s.verdict = nil
	s.failure = nil
	return s.snapshotLocked(), nil
}

// SubmitForm stores the latest amount/fields snapshot and runs the
// validator. An invalid verdict keeps the session in CollectingFields with
// the draft intact; a valid one moves to Confirming.
func (s *Session) SubmitForm(amount string, fields map[string]string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepCollectingFields {
		return s.snapshotLocked(), &domain.InvalidTransitionError{From: string(s.step), Event: "submit_form"}
	}

	// User input survives a failed validation so it can be corrected.
	s.amount = amount
	s.fields = make(map[string]string, len(fields))
	for k, v := range fields {
		s.fields[k] = v
	}
	s.lastActive = time.Now()

	verdict := validation.Validate(validation.Input{
		Method:    *s.method,
		Kind:      s.Kind,
		RawAmount: amount,
		Fields:    s.fields,
		Limits:    s.limits,
		Balance:   s.balance,
	})
	s.verdict = &verdict
	if !verdict.Valid {
		return s.snapshotLocked(), nil
	}

	if err := s.transitionLocked(StepConfirming, "submit_form"); err != nil {
		return s.snapshotLocked(), err
	}
	return s.snapshotLocked(), nil
}

// Back returns from Confirming to CollectingFields. Entered values are
// never discarded on a backward navigation.
func (s *Session) Back() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepConfirming {
		return s.snapshotLocked(), &domain.InvalidTransitionError{From: string(s.step), Event: "back"}
	}
	if err := s.transitionLocked(StepCollectingFields, "back"); err != nil {
		return s.snapshotLocked(), err
	}
	return s.snapshotLocked(), nil
}

// Confirm invokes the submission client exactly once for the current draft.
// A duplicate confirm while a call is in flight is a no-op. The idempotency
// token is minted the first time Submitting is entered and reused on any
// retry of the same draft, so a timed-out call retried later cannot book a
// duplicate transaction.
func (s *Session) Confirm(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()

	if s.step == StepSubmitting {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	if s.step != StepConfirming {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, &domain.InvalidTransitionError{From: string(s.step), Event: "confirm"}
	}

	if s.idemToken == "" {
		s.idemToken = uuid.NewString()
	}

	amount, err := domain.ParseAmount(s.amount)
	if err != nil {
		s.mu.Unlock()
		return s.Snapshot(), err
	}
	ref, err := accountReference(*s.method, s.fields)
	if err != nil {
		s.mu.Unlock()
		return s.Snapshot(), err
	}
	req := domain.SubmissionRequest{
		UserID:           s.UserID,
		Kind:             s.Kind,
		MethodID:         s.method.ID,
		Amount:           amount,
		AccountReference: ref,
		IdempotencyToken: s.idemToken,
		Timestamp:        time.Now().UTC(),
	}

	if err := s.transitionLocked(StepSubmitting, "confirm"); err != nil {
		s.mu.Unlock()
		return s.Snapshot(), err
	}
	s.mu.Unlock()

	result, submitErr := s.submitter.Submit(ctx, req)

	s.mu.Lock()
	s.resolveLocked(result, submitErr)
	settle := s.closeRequested
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if settle {
		// A close came in while the call was in flight; honor it now.
		s.Close()
		snap = s.Snapshot()
	}
	return snap, nil
}

// resolveLocked applies the submission outcome. A duplicate-reference
// collision carrying the original result counts as success: the backend
// already holds the transaction this draft describes.
func (s *Session) resolveLocked(result domain.TransactionResult, err error) {
	if err == nil {
		s.result = &result
		s.failure = nil
		_ = s.transitionLocked(StepSucceeded, "submission_success")
		s.logger.Info("💰 transaction submitted",
			"session_id", s.ID, "transaction_id", result.TransactionID,
			"method_id", result.MethodID, "amount", result.SubmittedAmount)
		return
	}

	var subErr *domain.SubmissionError
	if !errors.As(err, &subErr) {
		subErr = &domain.SubmissionError{Kind: domain.SubmissionNetwork, Message: err.Error()}
	}
	if subErr.Kind == domain.SubmissionDuplicateReference && subErr.Original != nil {
		s.result = subErr.Original
		s.failure = nil
		_ = s.transitionLocked(StepSucceeded, "submission_duplicate_resolved")
		s.logger.Info("transaction already booked for this token",
			"session_id", s.ID, "transaction_id", subErr.Original.TransactionID)
		return
	}

	s.failure = subErr
	_ = s.transitionLocked(StepFailed, "submission_failure")
	s.logger.Warn("❌ transaction submission failed",
		"session_id", s.ID, "kind", subErr.Kind, "error", subErr.Message)
}

// Retry re-opens the draft for correction after a failure. Amount, fields
// and the idempotency token are all preserved.
func (s *Session) Retry() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepFailed {
		return s.snapshotLocked(), &domain.InvalidTransitionError{From: string(s.step), Event: "retry"}
	}
	if err := s.transitionLocked(StepCollectingFields, "retry"); err != nil {
		return s.snapshotLocked(), err
	}
	s.failure = nil
	return s.snapshotLocked(), nil
}

// Close discards the draft. Allowed from every step except Submitting,
// where it is deferred until the in-flight call resolves so the user is
// never left guessing about a request with an unknown outcome.
func (s *Session) Close() CloseOutcome {
	s.mu.Lock()

	if s.step == StepSubmitting {
		s.closeRequested = true
		s.mu.Unlock()
		return CloseDeferred
	}
	if s.step == StepClosed {
		s.mu.Unlock()
		return CloseDone
	}

	settled := s.step == StepSucceeded
	var result domain.TransactionResult
	if settled && s.result != nil {
		result = *s.result
	}
	_ = s.transitionLocked(StepClosed, "close")
	s.amount = ""
	s.fields = nil
	s.verdict = nil
	hook := s.onSettled
	s.mu.Unlock()

	if settled && hook != nil {
		hook(s.UserID, result)
	}
	return CloseDone
}

func (s *Session) idle(ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step == StepSubmitting {
		return false
	}
	return s.step == StepClosed || time.Since(s.lastActive) > ttl
}
