package handler

import (
	"time"

	"github.com/ovibet/cashier/internal/core/domain"
	"github.com/ovibet/cashier/internal/core/validation"
	"github.com/ovibet/cashier/internal/core/workflow"
)

type OpenSessionRequest struct {
	Kind string `json:"kind" validate:"required,oneof=deposit withdrawal"`
	// Balance is supplied by the surrounding app for withdrawals; the
	// cashier never fetches it itself.
	Balance string `json:"balance" validate:"omitempty,numeric"`
}

type SelectMethodRequest struct {
	MethodID string `json:"methodId" validate:"required"`
}

type SubmitFormRequest struct {
	Amount string            `json:"amount" validate:"required"`
	Fields map[string]string `json:"fields"`
}

type MethodItem struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	RequiredFields []string `json:"requiredFields"`
	MinAmount      string   `json:"minAmount"`
	MaxAmount      string   `json:"maxAmount"`
	ProcessingTime string   `json:"processingTime"`
	FeeDescription string   `json:"feeDescription"`
	IsActive       bool     `json:"isActive"`
}

type LimitsItem struct {
	MinAmount        string `json:"minAmount"`
	MaxAmount        string `json:"maxAmount"`
	DailyRemaining   string `json:"dailyRemaining"`
	MonthlyRemaining string `json:"monthlyRemaining"`
}

type VerdictItem struct {
	Valid          bool   `json:"valid"`
	Reason         string `json:"reason,omitempty"`
	Message        string `json:"message,omitempty"`
	Field          string `json:"field,omitempty"`
	LimitsVerified bool   `json:"limitsVerified"`
}

type ResultItem struct {
	TransactionID string    `json:"transactionId"`
	Amount        string    `json:"amount"`
	MethodID      string    `json:"methodId"`
	CreatedAt     time.Time `json:"createdAt"`
}

type FailureItem struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type SessionResponse struct {
	ID             string            `json:"id"`
	Kind           string            `json:"kind"`
	Step           string            `json:"step"`
	Methods        []MethodItem      `json:"methods,omitempty"`
	Limits         *LimitsItem       `json:"limits,omitempty"`
	Method         *MethodItem       `json:"method,omitempty"`
	Amount         string            `json:"amount,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
	Verdict        *VerdictItem      `json:"verdict,omitempty"`
	Result         *ResultItem       `json:"result,omitempty"`
	Failure        *FailureItem      `json:"failure,omitempty"`
	CloseRequested bool              `json:"closeRequested,omitempty"`
}

func toMethodItem(m domain.PaymentMethod) MethodItem {
	return MethodItem{
		ID:             m.ID,
		Name:           m.Name,
		Category:       string(m.Category),
		RequiredFields: m.RequiredFields,
		MinAmount:      m.MinAmount.String(),
		MaxAmount:      m.MaxAmount.String(),
		ProcessingTime: m.ProcessingTime,
		FeeDescription: m.FeeDescription,
		IsActive:       m.IsActive,
	}
}

func toSessionResponse(snap workflow.Snapshot) SessionResponse {
	resp := SessionResponse{
		ID:             snap.ID,
		Kind:           string(snap.Kind),
		Step:           string(snap.Step),
		Amount:         snap.Amount,
		Fields:         snap.Fields,
		CloseRequested: snap.CloseRequested,
	}
	for _, m := range snap.Methods {
		resp.Methods = append(resp.Methods, toMethodItem(m))
	}
	if snap.Limits != nil {
		resp.Limits = &LimitsItem{
			MinAmount:        snap.Limits.MinAmount.String(),
			MaxAmount:        snap.Limits.MaxAmount.String(),
			DailyRemaining:   snap.Limits.DailyRemaining().String(),
			MonthlyRemaining: snap.Limits.MonthlyRemaining().String(),
		}
	}
	if snap.Method != nil {
		item := toMethodItem(*snap.Method)
		resp.Method = &item
	}
	if snap.Verdict != nil {
		resp.Verdict = toVerdictItem(*snap.Verdict)
	}
	if snap.Result != nil {
		resp.Result = &ResultItem{
			TransactionID: snap.Result.TransactionID,
			Amount:        snap.Result.SubmittedAmount.String(),
			MethodID:      snap.Result.MethodID,
			CreatedAt:     snap.Result.CreatedAt,
		}
	}
	if snap.Failure != nil {
		resp.Failure = &FailureItem{
			Kind:      string(snap.Failure.Kind),
			Message:   snap.Failure.Message,
			Retryable: snap.Failure.Retryable(),
		}
	}
	return resp
}

func toVerdictItem(v validation.Result) *VerdictItem {
	return &VerdictItem{
		Valid:          v.Valid,
		Reason:         string(v.Reason),
		Message:        v.Message,
		Field:          v.Field,
		LimitsVerified: v.LimitsVerified,
	}
}
