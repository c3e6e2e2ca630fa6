package moneta

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultAPIBase {
		t.Fatalf("host = %q, want %q", u.Host, defaultAPIBase)
	}

	u, err = parseBaseURL("https://moneta.example.com/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_FetchesEndpointsAndEncodesQueries(t *testing.T) {
	t.Parallel()

	var gotTxQuery url.Values
	var gotCallbackBody CallbackRequest
	var gotDisconnectMethod string
	var gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/sync/status":
			_ = json.NewEncoder(w).Encode(ConnectionStatus{Connected: true, Email: "a@b.c", TotalSynced: 42})
		case "/sync/history":
			_ = json.NewEncoder(w).Encode(SyncHistoryResponse{Syncs: []SyncEntry{{ID: 7, Status: SyncSuccess}}})
		case "/sync/google/auth":
			_ = json.NewEncoder(w).Encode(AuthURLResponse{URL: "https://provider/auth?state=x"})
		case "/sync/google/callback":
			_ = json.NewDecoder(r.Body).Decode(&gotCallbackBody)
			w.WriteHeader(http.StatusOK)
		case "/sync/disconnect":
			gotDisconnectMethod = r.Method
			w.WriteHeader(http.StatusOK)
		case "/transactions":
			gotTxQuery = r.URL.Query()
			_ = json.NewEncoder(w).Encode(TransactionListResponse{
				Transactions: []Transaction{{ID: 1, Amount: decimal.RequireFromString("-12.50")}},
				Total:        1,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	status, err := c.FetchSyncStatus(ctx)
	if err != nil {
		t.Fatalf("FetchSyncStatus returned error: %v", err)
	}
	if !status.Connected || status.Email != "a@b.c" || status.TotalSynced != 42 {
		t.Fatalf("FetchSyncStatus payload = %#v, want connected a@b.c total=42", status)
	}

	history, err := c.FetchSyncHistory(ctx)
	if err != nil {
		t.Fatalf("FetchSyncHistory returned error: %v", err)
	}
	if len(history) != 1 || history[0].ID != 7 {
		t.Fatalf("FetchSyncHistory entries = %#v, want 1 entry id=7", history)
	}

	authURL, err := c.FetchAuthURL(ctx)
	if err != nil {
		t.Fatalf("FetchAuthURL returned error: %v", err)
	}
	if !strings.HasPrefix(authURL, "https://provider/auth") {
		t.Fatalf("FetchAuthURL = %q, want provider auth url", authURL)
	}

	if err := c.ExchangeCallback(ctx, "ABC123", "postmessage"); err != nil {
		t.Fatalf("ExchangeCallback returned error: %v", err)
	}
	if gotCallbackBody.Code != "ABC123" || gotCallbackBody.RedirectURI != "postmessage" {
		t.Fatalf("callback body = %#v, want code ABC123 redirect postmessage", gotCallbackBody)
	}

	if err := c.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect returned error: %v", err)
	}
	if gotDisconnectMethod != http.MethodDelete {
		t.Fatalf("disconnect method = %q, want DELETE", gotDisconnectMethod)
	}

	resp, err := c.FetchTransactions(ctx, TransactionQuery{
		AccountID: 3,
		Category:  "groceries",
		From:      "2026-01-01",
		To:        "2026-02-01",
		Limit:     25,
		Offset:    50,
	})
	if err != nil {
		t.Fatalf("FetchTransactions returned error: %v", err)
	}
	if len(resp.Transactions) != 1 || !resp.Transactions[0].Amount.Equal(decimal.RequireFromString("-12.50")) {
		t.Fatalf("FetchTransactions = %#v, want one -12.50 transaction", resp)
	}
	if gotTxQuery.Get("account") != "3" ||
		gotTxQuery.Get("category") != "groceries" ||
		gotTxQuery.Get("from") != "2026-01-01" ||
		gotTxQuery.Get("to") != "2026-02-01" ||
		gotTxQuery.Get("limit") != "25" ||
		gotTxQuery.Get("offset") != "50" {
		t.Fatalf("FetchTransactions query = %v, want params encoded", gotTxQuery)
	}

	if gotUserAgent == "" || !strings.HasPrefix(gotUserAgent, "kosh/") {
		t.Fatalf("User-Agent = %q, want kosh/*", gotUserAgent)
	}
}

func TestClient_ExchangeCallbackRequiresCode(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.ExchangeCallback(context.Background(), "  ", "postmessage"); err == nil {
		t.Fatalf("ExchangeCallback returned nil error, want error")
	}
}

func TestClient_ErrorDetailAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sync/google/callback":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"invalid grant"}`))
		case "/sync/status":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/accounts":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	err = c.ExchangeCallback(context.Background(), "BAD", "postmessage")
	var apiErr *APIError
	if err == nil || !errors.As(err, &apiErr) {
		t.Fatalf("ExchangeCallback error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Detail != "invalid grant" {
		t.Fatalf("APIError = %#v, want status 400 detail 'invalid grant'", apiErr)
	}

	_, err = c.FetchSyncStatus(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchSyncStatus error = %v, want decode response error", err)
	}

	_, err = c.FetchAccounts(context.Background())
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("FetchAccounts error = %v, want status 500 error", err)
	}
}
