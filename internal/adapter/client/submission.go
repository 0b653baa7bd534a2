package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovibet/cashier/internal/core/domain"
)

// SubmissionClient performs the one-shot POST that books a deposit or
// withdrawal request on the payments backend. Idempotency tokens are minted
// by the workflow, not here, so a retried call carries the same token.
type SubmissionClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewSubmissionClient(baseURL, apiKey string) *SubmissionClient {
	return &SubmissionClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type submissionPayload struct {
	Amount           decimal.Decimal `json:"amount"`
	MethodID         string          `json:"methodId"`
	AccountReference string          `json:"accountReference"`
	IdempotencyToken string          `json:"idempotencyToken"`
	UserID           string          `json:"userId"`
	Kind             string          `json:"kind"`
	Timestamp        time.Time       `json:"timestamp"`
}

type submissionResponse struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"createdAt"`
	Message       string          `json:"message"`
}

// Submit books the transaction. Failures come back as *domain.SubmissionError
// with the kind classified from the HTTP outcome: transport errors are
// retry-safe NetworkError, 401 is Unauthorized, 409 is DuplicateReference
// (carrying the original result when the backend echoes it), 4xx is
// ValidationRejected and 5xx is treated as transient.
func (c *SubmissionClient) Submit(ctx context.Context, req domain.SubmissionRequest) (domain.TransactionResult, error) {
	payload := submissionPayload{
		Amount:           req.Amount,
		MethodID:         req.MethodID,
		AccountReference: req.AccountReference,
		IdempotencyToken: req.IdempotencyToken,
		UserID:           req.UserID,
		Kind:             string(req.Kind),
		Timestamp:        req.Timestamp,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.TransactionResult{}, &domain.SubmissionError{
			Kind: domain.SubmissionNetwork, Message: err.Error(),
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return domain.TransactionResult{}, &domain.SubmissionError{
			Kind: domain.SubmissionNetwork, Message: err.Error(),
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyToken)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return domain.TransactionResult{}, &domain.SubmissionError{
			Kind: domain.SubmissionNetwork, Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	var out submissionResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil && resp.StatusCode == http.StatusOK {
		return domain.TransactionResult{}, &domain.SubmissionError{
			Kind: domain.SubmissionNetwork, Message: "malformed response: " + decodeErr.Error(),
		}
	}

	switch {
	case resp.StatusCode == http.StatusOK && out.Success:
		return c.result(req, out), nil
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.TransactionResult{}, &domain.SubmissionError{
			Kind: domain.SubmissionUnauthorized, Message: messageOr(out.Message, "unauthorized"),
		}
	case resp.StatusCode == http.StatusConflict:
		subErr := &domain.SubmissionError{
			Kind: domain.SubmissionDuplicateReference, Message: messageOr(out.Message, "duplicate reference"),
		}
		if out.TransactionID != "" {
			original := c.result(req, out)
			subErr.Original = &original
		}
		return domain.TransactionResult{}, subErr
	case resp.StatusCode >= 500:
		return domain.TransactionResult{}, &domain.SubmissionError{
			Kind: domain.SubmissionNetwork, Message: messageOr(out.Message, "payments backend unavailable"),
		}
	default:
		return domain.TransactionResult{}, &domain.SubmissionError{
			Kind: domain.SubmissionValidationRejected, Message: messageOr(out.Message, "request rejected"),
		}
	}
}

func (c *SubmissionClient) result(req domain.SubmissionRequest, out submissionResponse) domain.TransactionResult {
	amount := out.Amount
	if amount.IsZero() {
		amount = req.Amount
	}
	createdAt := out.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return domain.TransactionResult{
		TransactionID:   out.TransactionID,
		SubmittedAmount: amount,
		MethodID:        req.MethodID,
		CreatedAt:       createdAt,
	}
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
