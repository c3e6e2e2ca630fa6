// Package moneta provides an HTTP client for the moneta personal-finance API.
//
// # Overview
//
// This package defines the API client for communicating with the moneta
// backend. It handles HTTP communication, JSON serialization, and type-safe
// representation of accounts, transactions, holdings, goals, and the
// email-sync integration records.
//
// # Architecture
//
// The package is split into two files:
//
//   - client.go: HTTP client implementation and request/response handling
//   - types.go: Data structures mirroring the moneta API schema
//
// # API Endpoints
//
// Email-sync integration:
//
//   - GET /sync/status: connection status for the email integration
//   - GET /sync/google/auth: fresh third-party authorization URL
//   - POST /sync/google/callback: finalize a link with an authorization code
//   - DELETE /sync/disconnect: remove the integration
//   - POST /sync/manual: queue an asynchronous sync job
//   - GET /sync/history: past and running sync jobs
//
// Display data (read-only):
//
//   - GET /accounts, GET /transactions, GET /wealth/holdings, GET /goals
//
// # Request Handling
//
// All requests use context for cancellation, set Accept and User-Agent
// headers, and pace themselves through a token-bucket rate limiter so UI
// key-repeat cannot flood the backend. Errors are wrapped with context
// about what failed; non-2xx responses become *APIError values carrying
// the backend's {"detail": ...} message when the body contains one.
//
// # Money and Derived Values
//
// Monetary amounts decode into shopspring decimal.Decimal values so
// display-side arithmetic (gains, totals) stays exact. XIRR and forecast
// figures are backend-computed and treated as opaque display strings.
//
// # Thread Safety
//
// The Client struct is safe for concurrent use. The underlying http.Client
// handles connection pooling; the rate limiter is itself concurrency-safe.
package moneta
