package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ovibet/cashier/internal/core/domain"
)

// FakeLimitsClient returns a fixed snapshot, or Err when set.
type FakeLimitsClient struct {
	Limits domain.AccountLimits
	Err    error
	Calls  int
}

func (f *FakeLimitsClient) Fetch(ctx context.Context, userID string) (domain.AccountLimits, error) {
	f.Calls++
	if f.Err != nil {
		return domain.AccountLimits{}, f.Err
	}
	return f.Limits, nil
}

// FakeSubmissionClient records every request and answers idempotently: the
// same token always maps to the same transaction id, never a second booking.
type FakeSubmissionClient struct {
	mu       sync.Mutex
	Requests []domain.SubmissionRequest
	byToken  map[string]domain.TransactionResult

	// Err, when set, fails the next Submit call and is then cleared, which
	// makes retry scenarios easy to script.
	Err error
}

func (f *FakeSubmissionClient) Submit(ctx context.Context, req domain.SubmissionRequest) (domain.TransactionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		err := f.Err
		f.Err = nil
		return domain.TransactionResult{}, err
	}

	if f.byToken == nil {
		f.byToken = make(map[string]domain.TransactionResult)
	}
	if existing, ok := f.byToken[req.IdempotencyToken]; ok {
		return domain.TransactionResult{}, &domain.SubmissionError{
			Kind:     domain.SubmissionDuplicateReference,
			Message:  "token already used",
			Original: &existing,
		}
	}

	result := domain.TransactionResult{
		TransactionID:   "txn_" + uuid.NewString(),
		SubmittedAmount: req.Amount,
		MethodID:        req.MethodID,
		CreatedAt:       time.Now().UTC(),
	}
	f.byToken[req.IdempotencyToken] = result
	return result, nil
}
