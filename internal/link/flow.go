package link

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// API is the slice of the backend the link flow needs.
type API interface {
	FetchAuthURL(ctx context.Context) (string, error)
	ExchangeCallback(ctx context.Context, code, redirectURI string) error
}

const (
	// DefaultPollInterval is how often the popup's location is inspected.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultCeiling bounds the whole attempt regardless of popup state.
	DefaultCeiling = 5 * time.Minute
	// RedirectURI is the marker the backend expects in the callback
	// exchange for popup-based authorization.
	RedirectURI = "postmessage"
)

// Terminal attempt errors. None are retried automatically; the caller
// offers the user a retry by starting a fresh attempt.
var (
	ErrAuthURLUnavailable = errors.New("authorization url unavailable")
	ErrUserCancelled      = errors.New("link cancelled: popup closed")
	ErrTimeout            = errors.New("link timed out")
)

// CallbackExchangeError reports that the backend rejected the extracted
// authorization code. The wrapped error carries the backend's detail.
type CallbackExchangeError struct {
	Err error
}

// Error implements error.
func (e *CallbackExchangeError) Error() string {
	return "callback exchange failed: " + e.Err.Error()
}

// Unwrap returns the underlying backend error.
func (e *CallbackExchangeError) Unwrap() error {
	return e.Err
}

// State identifies where an attempt is in its lifecycle.
type State int

// Attempt states, in rough lifecycle order.
const (
	StateIdle State = iota
	StateAwaitingAuthURL
	StatePopupOpen
	StatePolling
	StateProviderNavigation
	StateCodeReceived
	StateExchangingCallback
	StateLinked
	StateCancelled
	StateTimedOut
	StateFailed
)

// String returns a short display label for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAuthURL:
		return "requesting authorization"
	case StatePopupOpen:
		return "popup open"
	case StatePolling:
		return "waiting for approval"
	case StateProviderNavigation:
		return "waiting for approval"
	case StateCodeReceived:
		return "code received"
	case StateExchangingCallback:
		return "finalizing link"
	case StateLinked:
		return "linked"
	case StateCancelled:
		return "cancelled"
	case StateTimedOut:
		return "timed out"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the state ends the attempt.
func (s State) Terminal() bool {
	switch s {
	case StateLinked, StateCancelled, StateTimedOut, StateFailed:
		return true
	}
	return false
}

// Flow runs one account-link attempt: obtain an authorization URL, open a
// popup, poll its location for the authorization code, and exchange the
// code with the backend. A Flow is single-use; start a new one per attempt.
type Flow struct {
	api      API
	opener   Opener
	onLinked func() // runs after a successful exchange, before Run returns

	pollInterval time.Duration
	ceiling      time.Duration

	started atomic.Bool
	mu      sync.Mutex
	state   State
}

// NewFlow builds a Flow. onLinked may be nil; when set it is invoked after
// a successful link before Run returns, which is where cache invalidation
// for dependent queries belongs.
func NewFlow(api API, opener Opener, onLinked func()) *Flow {
	return &Flow{
		api:          api,
		opener:       opener,
		onLinked:     onLinked,
		pollInterval: DefaultPollInterval,
		ceiling:      DefaultCeiling,
		state:        StateIdle,
	}
}

// State returns the attempt's current state for display.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// Run executes the attempt until exactly one of linked, cancelled, timed
// out, or failed occurs. It blocks for the duration of the attempt.
func (f *Flow) Run(ctx context.Context) error {
	if f == nil {
		return fmt.Errorf("flow is nil")
	}
	if !f.started.CompareAndSwap(false, true) {
		return fmt.Errorf("link attempt already started")
	}

	f.setState(StateAwaitingAuthURL)
	authURL, err := f.api.FetchAuthURL(ctx)
	if err != nil {
		f.setState(StateFailed)
		return fmt.Errorf("%w: %v", ErrAuthURLUnavailable, err)
	}

	popup, err := f.opener.Open(authURL, DefaultWindow())
	if err != nil {
		f.setState(StateFailed)
		return fmt.Errorf("open popup: %w", err)
	}
	f.setState(StatePopupOpen)

	// Both attempt timers are acquired together and torn down together on
	// every exit path, so neither can fire after the attempt resolves.
	ticker := time.NewTicker(f.pollInterval)
	ceiling := time.NewTimer(f.ceiling)
	defer func() {
		ticker.Stop()
		ceiling.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			closePopup(popup)
			f.setState(StateCancelled)
			return ctx.Err()

		case <-ceiling.C:
			closePopup(popup)
			f.setState(StateTimedOut)
			return ErrTimeout

		case <-ticker.C:
			code, result := poll(popup)
			switch result {
			case pollClosed:
				f.setState(StateCancelled)
				return ErrUserCancelled
			case pollUnreadable:
				f.setState(StateProviderNavigation)
			case pollPending:
				f.setState(StatePolling)
			case pollCode:
				f.setState(StateCodeReceived)
				closePopup(popup)
				return f.exchange(ctx, code)
			}
		}
	}
}

type pollResult int

const (
	pollPending pollResult = iota
	pollUnreadable
	pollClosed
	pollCode
)

// poll inspects the popup once. Closure is checked before the location
// read so a closed popup is never misread as ongoing provider navigation.
// An unreadable location while the popup remains open is a transient
// result, not a failure.
func poll(p Popup) (string, pollResult) {
	if p.Closed() {
		return "", pollClosed
	}
	location, err := p.Location()
	if err != nil {
		return "", pollUnreadable
	}
	if code, ok := extractCode(location); ok {
		return code, pollCode
	}
	return "", pollPending
}

func (f *Flow) exchange(ctx context.Context, code string) error {
	f.setState(StateExchangingCallback)
	if err := f.api.ExchangeCallback(ctx, code, RedirectURI); err != nil {
		f.setState(StateFailed)
		return &CallbackExchangeError{Err: err}
	}
	if f.onLinked != nil {
		f.onLinked()
	}
	f.setState(StateLinked)
	return nil
}

// extractCode pulls the authorization code from a location's query string.
func extractCode(location string) (string, bool) {
	u, err := url.Parse(location)
	if err != nil {
		return "", false
	}
	code := u.Query().Get("code")
	if code == "" {
		return "", false
	}
	return code, true
}

func closePopup(p Popup) {
	if !p.Closed() {
		_ = p.Close()
	}
}
