package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovibet/cashier/internal/adapter/client"
	"github.com/ovibet/cashier/internal/adapter/registry"
	"github.com/ovibet/cashier/internal/core/domain"
	"github.com/ovibet/cashier/internal/core/workflow"
)

func newTestApp(t *testing.T) (*fiber.App, *client.FakeSubmissionClient) {
	t.Helper()

	reg := registry.NewStatic(registry.DefaultCatalog())
	submitter := &client.FakeSubmissionClient{}
	sessions := workflow.NewManager(workflow.ManagerConfig{
		Catalog: reg,
		Limits: &client.FakeLimitsClient{Limits: domain.AccountLimits{
			MinAmount:    decimal.NewFromInt(10),
			MaxAmount:    decimal.NewFromInt(50000),
			DailyLimit:   decimal.NewFromInt(20000),
			MonthlyLimit: decimal.NewFromInt(200000),
		}},
		Submitter: submitter,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	cashier := NewCashierHandler(sessions, reg)

	app := fiber.New()
	api := app.Group("/v1/cashier")
	api.Get("/methods", cashier.ListMethods)
	api.Get("/methods/:id", cashier.GetMethod)
	api.Post("/sessions", cashier.OpenSession)
	api.Get("/sessions/:id", cashier.GetSession)
	api.Post("/sessions/:id/method", cashier.SelectMethod)
	api.Post("/sessions/:id/form", cashier.SubmitForm)
	api.Post("/sessions/:id/back", cashier.Back)
	api.Post("/sessions/:id/confirm", cashier.Confirm)
	api.Post("/sessions/:id/retry", cashier.Retry)
	api.Delete("/sessions/:id", cashier.CloseSession)
	return app, submitter
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestListMethods(t *testing.T) {
	app, _ := newTestApp(t)

	resp, raw := doJSON(t, app, http.MethodGet, "/v1/cashier/methods", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Methods []MethodItem `json:"methods"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.NotEmpty(t, body.Methods)
	for _, m := range body.Methods {
		assert.True(t, m.IsActive)
	}
}

func TestOpenSessionRejectsUnknownKind(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/v1/cashier/sessions",
		map[string]string{"kind": "loan"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownSessionIs404(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/v1/cashier/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDepositFlowOverHTTP(t *testing.T) {
	app, submitter := newTestApp(t)

	resp, raw := doJSON(t, app, http.MethodPost, "/v1/cashier/sessions",
		map[string]string{"kind": "deposit"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session SessionResponse
	require.NoError(t, json.Unmarshal(raw, &session))
	require.NotEmpty(t, session.ID)
	assert.Equal(t, "selecting_method", session.Step)
	assert.NotEmpty(t, session.Methods)
	require.NotNil(t, session.Limits)

	base := "/v1/cashier/sessions/" + session.ID

	resp, raw = doJSON(t, app, http.MethodPost, base+"/method",
		map[string]string{"methodId": "bank_transfer"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &session))
	assert.Equal(t, "collecting_fields", session.Step)

	// An invalid amount keeps the step and surfaces the verdict.
	resp, raw = doJSON(t, app, http.MethodPost, base+"/form", SubmitFormRequest{
		Amount: "30",
		Fields: map[string]string{"iban": "DE89370400440532013000", "account_holder": "Jo Player"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &session))
	assert.Equal(t, "collecting_fields", session.Step)
	require.NotNil(t, session.Verdict)
	assert.False(t, session.Verdict.Valid)

	resp, raw = doJSON(t, app, http.MethodPost, base+"/form", SubmitFormRequest{
		Amount: "500",
		Fields: map[string]string{"iban": "DE89370400440532013000", "account_holder": "Jo Player"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &session))
	assert.Equal(t, "confirming", session.Step)

	resp, raw = doJSON(t, app, http.MethodPost, base+"/confirm", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &session))
	assert.Equal(t, "succeeded", session.Step)
	require.NotNil(t, session.Result)
	assert.NotEmpty(t, session.Result.TransactionID)
	assert.Equal(t, "500", session.Result.Amount)

	require.Len(t, submitter.Requests, 1)
	assert.Equal(t, "DE89370400440532013000", submitter.Requests[0].AccountReference)

	resp, raw = doJSON(t, app, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "closed")
}

func TestConfirmFromWrongStepIsConflict(t *testing.T) {
	app, _ := newTestApp(t)

	_, raw := doJSON(t, app, http.MethodPost, "/v1/cashier/sessions",
		map[string]string{"kind": "deposit"})
	var session SessionResponse
	require.NoError(t, json.Unmarshal(raw, &session))

	resp, _ := doJSON(t, app, http.MethodPost, "/v1/cashier/sessions/"+session.ID+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestWithdrawalBlockedByBalance(t *testing.T) {
	app, _ := newTestApp(t)

	_, raw := doJSON(t, app, http.MethodPost, "/v1/cashier/sessions",
		map[string]string{"kind": "withdrawal", "balance": "100"})
	var session SessionResponse
	require.NoError(t, json.Unmarshal(raw, &session))

	base := "/v1/cashier/sessions/" + session.ID
	_, raw = doJSON(t, app, http.MethodPost, base+"/method",
		map[string]string{"methodId": "bank_transfer"})
	require.NoError(t, json.Unmarshal(raw, &session))
	require.Equal(t, "collecting_fields", session.Step)

	_, raw = doJSON(t, app, http.MethodPost, base+"/form", SubmitFormRequest{
		Amount: "500",
		Fields: map[string]string{"iban": "DE89370400440532013000", "account_holder": "Jo Player"},
	})
	require.NoError(t, json.Unmarshal(raw, &session))
	assert.Equal(t, "collecting_fields", session.Step)
	require.NotNil(t, session.Verdict)
	assert.Equal(t, "insufficient_balance", session.Verdict.Reason)
}
