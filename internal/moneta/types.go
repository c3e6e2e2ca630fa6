package moneta

import (
	"time"

	"github.com/shopspring/decimal"
)

const monetaTimestampLayout = "2006-01-02 15:04:05"

// ConnectionStatus mirrors the payload returned by /sync/status.
type ConnectionStatus struct {
	Connected   bool   `json:"connected"`
	Email       string `json:"email,omitempty"`
	LastSync    string `json:"last_sync,omitempty"`
	TotalSynced int    `json:"total_synced"`
}

// ParsedLastSync returns the last sync timestamp as time.Time when possible.
func (s ConnectionStatus) ParsedLastSync() time.Time {
	return parseTime(s.LastSync)
}

// Sync status values reported by the backend for history entries.
const (
	SyncRunning = "running"
	SyncSuccess = "success"
	SyncFailed  = "failed"
)

// SyncEntry describes one entry from /sync/history. Entries are
// backend-owned and append-only from the client's point of view.
type SyncEntry struct {
	ID               int64  `json:"id"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time,omitempty"`
	Status           string `json:"status"`
	RecordsProcessed int    `json:"records_processed"`
	TriggerSource    string `json:"trigger_source"`
	ErrorMessage     string `json:"error_message,omitempty"`
}

// ParsedStartTime returns the parsed StartTime timestamp.
func (e SyncEntry) ParsedStartTime() time.Time {
	return parseTime(e.StartTime)
}

// ParsedEndTime returns the parsed EndTime timestamp.
func (e SyncEntry) ParsedEndTime() time.Time {
	return parseTime(e.EndTime)
}

// Duration returns the elapsed time of a finished sync, or zero while the
// sync is still running or when timestamps are missing.
func (e SyncEntry) Duration() time.Duration {
	start, end := e.ParsedStartTime(), e.ParsedEndTime()
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	return end.Sub(start)
}

// SyncHistoryResponse mirrors /sync/history.
type SyncHistoryResponse struct {
	Syncs []SyncEntry `json:"syncs"`
}

// AuthURLResponse mirrors /sync/google/auth.
type AuthURLResponse struct {
	URL string `json:"url"`
}

// CallbackRequest is the body posted to /sync/google/callback.
type CallbackRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

// Account describes a tracked bank account or credit card.
type Account struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Institution string          `json:"institution"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	UpdatedAt   string          `json:"updated_at"`
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (a Account) ParsedUpdatedAt() time.Time {
	return parseTime(a.UpdatedAt)
}

// AccountListResponse mirrors /accounts.
type AccountListResponse struct {
	Accounts []Account `json:"accounts"`
}

// Transaction describes a single categorized transaction.
type Transaction struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Source      string          `json:"source,omitempty"`
}

// ParsedDate returns the parsed transaction date.
func (t Transaction) ParsedDate() time.Time {
	return parseTime(t.Date)
}

// TransactionListResponse mirrors /transactions.
type TransactionListResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
}

// Holding describes a tracked investment with backend-computed returns.
// XIRR is an opaque display value; the client never recomputes it.
type Holding struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Kind         string          `json:"kind"`
	Invested     decimal.Decimal `json:"invested"`
	CurrentValue decimal.Decimal `json:"current_value"`
	XIRR         string          `json:"xirr,omitempty"`
	SIPAmount    decimal.Decimal `json:"sip_amount"`
	SIPDate      int             `json:"sip_date,omitempty"`
}

// Gain returns the absolute gain over invested principal.
func (h Holding) Gain() decimal.Decimal {
	return h.CurrentValue.Sub(h.Invested)
}

// WealthSummary aggregates all holdings.
type WealthSummary struct {
	TotalInvested decimal.Decimal `json:"total_invested"`
	TotalValue    decimal.Decimal `json:"total_value"`
	XIRR          string          `json:"xirr,omitempty"`
}

// HoldingsResponse mirrors /wealth/holdings.
type HoldingsResponse struct {
	Holdings []Holding     `json:"holdings"`
	Summary  WealthSummary `json:"summary"`
}

// Goal describes a savings goal with backend-computed progress inputs.
type Goal struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedAmount  decimal.Decimal `json:"saved_amount"`
	TargetDate   string          `json:"target_date,omitempty"`
}

// Progress returns saved/target in the range [0, 1].
func (g Goal) Progress() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	ratio, _ := g.SavedAmount.Div(g.TargetAmount).Float64()
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// ParsedTargetDate returns the parsed target date.
func (g Goal) ParsedTargetDate() time.Time {
	return parseTime(g.TargetDate)
}

// GoalListResponse mirrors /goals.
type GoalListResponse struct {
	Goals []Goal `json:"goals"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(monetaTimestampLayout, value, time.Local); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return time.Time{}
}
