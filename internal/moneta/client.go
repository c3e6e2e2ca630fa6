package moneta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Service defines the API surface the rest of the application consumes.
// This interface is implemented by *Client and can be used for testing.
type Service interface {
	FetchSyncStatus(ctx context.Context) (*ConnectionStatus, error)
	FetchSyncHistory(ctx context.Context) ([]SyncEntry, error)
	FetchAuthURL(ctx context.Context) (string, error)
	ExchangeCallback(ctx context.Context, code, redirectURI string) error
	Disconnect(ctx context.Context) error
	TriggerManualSync(ctx context.Context) error
	FetchAccounts(ctx context.Context) ([]Account, error)
	FetchTransactions(ctx context.Context, query TransactionQuery) (TransactionListResponse, error)
	FetchHoldings(ctx context.Context) (HoldingsResponse, error)
	FetchGoals(ctx context.Context) ([]Goal, error)
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

// Client talks to the moneta HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
}

const (
	defaultAPIBase   = "127.0.0.1:8741"
	defaultUserAgent = "kosh/0.1"
	requestTimeout   = 10 * time.Second

	// The backend queues a background job for manual syncs; pacing the
	// client keeps key-repeat in the TUI from flooding it.
	requestsPerSecond = 10
	requestBurst      = 20
)

// NewClient builds a Client using the provided apiBase host:port or URL value.
func NewClient(apiBase string) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}, nil
}

// APIError reports a non-2xx backend response. Detail carries the
// backend's error message when the body contains one.
type APIError struct {
	Path   string
	Status int
	Detail string
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// FetchSyncStatus retrieves the email-sync connection status.
func (c *Client) FetchSyncStatus(ctx context.Context) (*ConnectionStatus, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload ConnectionStatus
	if err := c.do(ctx, http.MethodGet, "/sync/status", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchSyncHistory retrieves past and running sync jobs, newest first.
func (c *Client) FetchSyncHistory(ctx context.Context) ([]SyncEntry, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload SyncHistoryResponse
	if err := c.do(ctx, http.MethodGet, "/sync/history", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Syncs, nil
}

// FetchAuthURL requests a fresh third-party authorization URL.
func (c *Client) FetchAuthURL(ctx context.Context) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	var payload AuthURLResponse
	if err := c.do(ctx, http.MethodGet, "/sync/google/auth", nil, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.URL) == "" {
		return "", fmt.Errorf("auth response contained no url")
	}
	return payload.URL, nil
}

// ExchangeCallback forwards an extracted authorization code to the backend
// to finalize the account link.
func (c *Client) ExchangeCallback(ctx context.Context, code, redirectURI string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("authorization code required")
	}
	body := CallbackRequest{Code: code, RedirectURI: redirectURI}
	return c.do(ctx, http.MethodPost, "/sync/google/callback", body, nil)
}

// Disconnect removes the email-sync integration.
func (c *Client) Disconnect(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodDelete, "/sync/disconnect", nil, nil)
}

// TriggerManualSync asks the backend to start an asynchronous sync job.
// The call returns once the job is queued, not when it finishes.
func (c *Client) TriggerManualSync(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, "/sync/manual", nil, nil)
}

// FetchAccounts retrieves all tracked accounts and credit cards.
func (c *Client) FetchAccounts(ctx context.Context) ([]Account, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload AccountListResponse
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Accounts, nil
}

// TransactionQuery configures /transactions requests.
type TransactionQuery struct {
	AccountID int64
	Category  string
	From      string
	To        string
	Limit     int
	Offset    int
}

// FetchTransactions retrieves categorized transactions.
func (c *Client) FetchTransactions(ctx context.Context, query TransactionQuery) (TransactionListResponse, error) {
	if c == nil {
		return TransactionListResponse{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if query.AccountID > 0 {
		values.Set("account", strconv.FormatInt(query.AccountID, 10))
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		values.Set("category", category)
	}
	if from := strings.TrimSpace(query.From); from != "" {
		values.Set("from", from)
	}
	if to := strings.TrimSpace(query.To); to != "" {
		values.Set("to", to)
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		values.Set("offset", strconv.Itoa(query.Offset))
	}
	rel := &url.URL{Path: "/transactions", RawQuery: values.Encode()}
	var payload TransactionListResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return TransactionListResponse{}, err
	}
	return payload, nil
}

// FetchHoldings retrieves investment holdings with the backend's summary.
func (c *Client) FetchHoldings(ctx context.Context) (HoldingsResponse, error) {
	if c == nil {
		return HoldingsResponse{}, fmt.Errorf("client is nil")
	}
	var payload HoldingsResponse
	if err := c.do(ctx, http.MethodGet, "/wealth/holdings", nil, &payload); err != nil {
		return HoldingsResponse{}, err
	}
	return payload, nil
}

// FetchGoals retrieves savings goals.
func (c *Client) FetchGoals(ctx context.Context) ([]Goal, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload GoalListResponse
	if err := c.do(ctx, http.MethodGet, "/goals", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Goals, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &APIError{
			Path:   rel.Path,
			Status: resp.StatusCode,
			Detail: readErrorDetail(resp.Body),
		}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorDetail extracts {"detail": "..."} from an error body when present.
func readErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Detail)
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
