// Package client holds the outbound HTTP clients the cashier depends on:
// the platform limits query and the payments submission endpoint. Each real
// client has a fake counterpart for tests.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovibet/cashier/internal/core/domain"
)

// LimitsClient fetches the per-user ceilings snapshot from the platform
// backend. One GET per session open.
type LimitsClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewLimitsClient(baseURL, apiKey string) *LimitsClient {
	return &LimitsClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

type limitsResponse struct {
	Min         decimal.Decimal `json:"min"`
	Max         decimal.Decimal `json:"max"`
	Daily       decimal.Decimal `json:"daily"`
	Monthly     decimal.Decimal `json:"monthly"`
	DailyUsed   decimal.Decimal `json:"dailyUsed"`
	MonthlyUsed decimal.Decimal `json:"monthlyUsed"`
}

// Fetch returns ErrLimitsUnavailable on any transport or server failure so
// the workflow can fall back to method-level bounds.
func (c *LimitsClient) Fetch(ctx context.Context, userID string) (domain.AccountLimits, error) {
	endpoint := fmt.Sprintf("%s/users/%s/limits", c.BaseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.AccountLimits{}, fmt.Errorf("%w: %v", domain.ErrLimitsUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return domain.AccountLimits{}, fmt.Errorf("%w: %v", domain.ErrLimitsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.AccountLimits{}, fmt.Errorf("%w: status %d", domain.ErrLimitsUnavailable, resp.StatusCode)
	}

	var body limitsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.AccountLimits{}, fmt.Errorf("%w: %v", domain.ErrLimitsUnavailable, err)
	}

	return domain.AccountLimits{
		MinAmount:    body.Min,
		MaxAmount:    body.Max,
		DailyLimit:   body.Daily,
		MonthlyLimit: body.Monthly,
		DailyUsed:    body.DailyUsed,
		MonthlyUsed:  body.MonthlyUsed,
	}, nil
}
