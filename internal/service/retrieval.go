package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"styleme/internal/config"
	"styleme/internal/model"
)

var (
	ErrRetrievalUnavailable = errors.New("retrieval service unavailable")
	ErrRateLimited          = errors.New("retrieval service rate limited")
	ErrMalformedResponse    = errors.New("malformed retrieval response")
)

// maxRetrievalBody caps how much of a response body is read
const maxRetrievalBody = 1 << 20

// RetrievalRequest is the body posted to /search_with_preferences
type RetrievalRequest struct {
	Query  string `json:"query"`
	UserID int64  `json:"user_id"`
}

// RetrievalResponse is the service reply
type RetrievalResponse struct {
	Success        *bool    `json:"success"`
	ProductIDs     []int64  `json:"product_ids"`
	ProcessingTime *float64 `json:"processing_time,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Retriever returns ranked product ids for a natural-language query
type Retriever interface {
	Search(ctx context.Context, query string, userID int64) (*RetrievalResponse, error)
}

// RetrievalClient calls the external retrieval service over HTTP
type RetrievalClient struct {
	config     *config.RetrievalConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewRetrievalClient creates a client with a dial timeout, an overall request
// timeout and a token-bucket limiter on outbound calls
func NewRetrievalClient(cfg *config.RetrievalConfig) *RetrievalClient {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &RetrievalClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(limit, burst),
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *RetrievalClient) IsEnabled() bool {
	return c.config.Enabled && c.config.BaseURL != ""
}

// Search posts the query and validates the reply. Every failure wraps one of
// ErrRetrievalUnavailable, ErrRateLimited or ErrMalformedResponse.
func (c *RetrievalClient) Search(ctx context.Context, query string, userID int64) (*RetrievalResponse, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("%w: disabled", ErrRetrievalUnavailable)
	}
	if !c.limiter.Allow() {
		return nil, ErrRateLimited
	}

	reqBody, err := json.Marshal(RetrievalRequest{Query: query, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/search_with_preferences", strings.TrimRight(c.config.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRetrievalBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrRetrievalUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRetrievalUnavailable, resp.StatusCode)
	}

	var result RetrievalResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.Success == nil {
		return nil, fmt.Errorf("%w: missing success flag", ErrMalformedResponse)
	}
	if !*result.Success {
		return nil, fmt.Errorf("%w: %s", ErrRetrievalUnavailable, result.Error)
	}

	return &result, nil
}

// EnhanceQuery appends the shopper's preferences to the query text sent to the
// retrieval service
func EnhanceQuery(query string, prefs *model.PreferenceSet) string {
	if prefs == nil {
		return query
	}
	var sb strings.Builder
	sb.WriteString(query)
	if len(prefs.StylePreferences) > 0 {
		sb.WriteString(" | style: " + strings.Join(prefs.StylePreferences, ", "))
	}
	if len(prefs.ColorPreferences) > 0 {
		sb.WriteString(" | colors: " + strings.Join(prefs.ColorPreferences, ", "))
	}
	if prefs.Occasion != "" {
		sb.WriteString(" | occasion: " + prefs.Occasion)
	}
	if prefs.HasBudget() {
		sb.WriteString(fmt.Sprintf(" | budget: Rs.%s-%s", formatAmount(*prefs.BudgetMin), formatAmount(*prefs.BudgetMax)))
	}
	return sb.String()
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// retrievalElapsed converts a service-reported duration in seconds
func retrievalElapsed(resp *RetrievalResponse, fallback time.Duration) float64 {
	if resp != nil && resp.ProcessingTime != nil {
		return *resp.ProcessingTime
	}
	return fallback.Seconds()
}
