package link

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeAPI struct {
	authURL     string
	authErr     error
	exchangeErr error

	mu            sync.Mutex
	gotCode       string
	gotRedirect   string
	exchangeCalls int
}

func (a *fakeAPI) FetchAuthURL(ctx context.Context) (string, error) {
	if a.authErr != nil {
		return "", a.authErr
	}
	return a.authURL, nil
}

func (a *fakeAPI) ExchangeCallback(ctx context.Context, code, redirectURI string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exchangeCalls++
	a.gotCode = code
	a.gotRedirect = redirectURI
	return a.exchangeErr
}

func (a *fakeAPI) exchanged() (string, string, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gotCode, a.gotRedirect, a.exchangeCalls
}

// fakePopup replays a script of location reads; the final step repeats
// once the script is exhausted.
type fakePopup struct {
	mu     sync.Mutex
	closed bool
	script []locationStep
	reads  int
}

type locationStep struct {
	location string
	err      error
}

func unreadable() locationStep { return locationStep{err: ErrLocationUnreadable} }

func (p *fakePopup) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePopup) Location() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.script) == 0 {
		return "", ErrLocationUnreadable
	}
	idx := p.reads
	if idx >= len(p.script) {
		idx = len(p.script) - 1
	}
	p.reads++
	step := p.script[idx]
	return step.location, step.err
}

func (p *fakePopup) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type fakeOpener struct {
	popup   *fakePopup
	err     error
	mu      sync.Mutex
	opened  int
	gotURL  string
	gotOpts WindowOptions
}

func (o *fakeOpener) Open(url string, opts WindowOptions) (Popup, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened++
	o.gotURL = url
	o.gotOpts = opts
	if o.err != nil {
		return nil, o.err
	}
	return o.popup, nil
}

func newTestFlow(api API, opener Opener, onLinked func()) *Flow {
	f := NewFlow(api, opener, onLinked)
	f.pollInterval = 5 * time.Millisecond
	f.ceiling = time.Second
	return f
}

func TestFlow_SuccessExtractsCodeAndInvalidatesBeforeReturn(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{authURL: "https://provider/auth?state=xyz"}
	popup := &fakePopup{script: []locationStep{
		unreadable(),
		unreadable(),
		{location: "https://app.example.com/redirect?code=ABC123&scope=email"},
	}}
	opener := &fakeOpener{popup: popup}

	invalidated := false
	flow := newTestFlow(api, opener, func() {
		// The exchange must have completed before invalidation runs.
		if _, _, calls := api.exchanged(); calls != 1 {
			t.Errorf("onLinked ran before exchange completed")
		}
		invalidated = true
	})

	if err := flow.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	code, redirect, calls := api.exchanged()
	if code != "ABC123" || redirect != RedirectURI || calls != 1 {
		t.Fatalf("exchange = (%q, %q, %d), want (ABC123, postmessage, 1)", code, redirect, calls)
	}
	if !invalidated {
		t.Fatalf("onLinked hook not invoked before Run returned")
	}
	if !popup.Closed() {
		t.Fatalf("popup left open after success")
	}
	if opener.gotURL != api.authURL {
		t.Fatalf("opener url = %q, want auth url", opener.gotURL)
	}
	if opener.gotOpts != DefaultWindow() {
		t.Fatalf("opener opts = %#v, want default 500x600 centered", opener.gotOpts)
	}
	if got := flow.State(); got != StateLinked {
		t.Fatalf("terminal state = %v, want StateLinked", got)
	}
}

func TestFlow_PopupClosedIsCancelledPromptly(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{authURL: "https://provider/auth"}
	popup := &fakePopup{script: []locationStep{unreadable()}}
	flow := newTestFlow(api, &fakeOpener{popup: popup}, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- flow.Run(context.Background()) }()

	// Let a few polls observe the open popup first.
	time.Sleep(30 * time.Millisecond)
	closedAt := time.Now()
	_ = popup.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrUserCancelled) {
			t.Fatalf("Run error = %v, want ErrUserCancelled", err)
		}
		if elapsed := time.Since(closedAt); elapsed > 200*time.Millisecond {
			t.Fatalf("cancellation detected after %v, want within a few poll intervals", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after popup closed")
	}
	if got := flow.State(); got != StateCancelled {
		t.Fatalf("terminal state = %v, want StateCancelled", got)
	}
	if _, _, calls := api.exchanged(); calls != 0 {
		t.Fatalf("exchange called %d times after cancellation, want 0", calls)
	}
}

func TestFlow_CeilingTimesOutAndForceCloses(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{authURL: "https://provider/auth"}
	popup := &fakePopup{script: []locationStep{unreadable()}}
	flow := newTestFlow(api, &fakeOpener{popup: popup}, nil)
	flow.ceiling = 50 * time.Millisecond
	flow.pollInterval = 10 * time.Millisecond

	err := flow.Run(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Run error = %v, want ErrTimeout", err)
	}
	if !popup.Closed() {
		t.Fatalf("popup left open after timeout")
	}
	if got := flow.State(); got != StateTimedOut {
		t.Fatalf("terminal state = %v, want StateTimedOut", got)
	}
}

func TestFlow_UnreadableLocationNeverTerminates(t *testing.T) {
	t.Parallel()

	// Twenty unreadable polls, then the redirect appears.
	script := make([]locationStep, 0, 21)
	for i := 0; i < 20; i++ {
		script = append(script, unreadable())
	}
	script = append(script, locationStep{location: "https://app/cb?code=LATE42"})

	api := &fakeAPI{authURL: "https://provider/auth"}
	popup := &fakePopup{script: script}
	flow := newTestFlow(api, &fakeOpener{popup: popup}, nil)

	if err := flow.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v, want success despite unreadable polls", err)
	}
	if code, _, _ := api.exchanged(); code != "LATE42" {
		t.Fatalf("exchanged code = %q, want LATE42", code)
	}
}

func TestFlow_AuthURLErrorFailsBeforePopup(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{authErr: errors.New("backend unreachable")}
	opener := &fakeOpener{popup: &fakePopup{}}
	flow := newTestFlow(api, opener, nil)

	err := flow.Run(context.Background())
	if !errors.Is(err, ErrAuthURLUnavailable) {
		t.Fatalf("Run error = %v, want ErrAuthURLUnavailable", err)
	}
	if opener.opened != 0 {
		t.Fatalf("opener invoked %d times after auth url failure, want 0", opener.opened)
	}
	if got := flow.State(); got != StateFailed {
		t.Fatalf("terminal state = %v, want StateFailed", got)
	}
}

func TestFlow_CallbackRejectionCarriesDetail(t *testing.T) {
	t.Parallel()

	backendErr := fmt.Errorf("api /sync/google/callback returned status 400: invalid grant")
	api := &fakeAPI{
		authURL:     "https://provider/auth",
		exchangeErr: backendErr,
	}
	popup := &fakePopup{script: []locationStep{{location: "https://app/cb?code=BAD"}}}

	invalidated := false
	flow := newTestFlow(api, &fakeOpener{popup: popup}, func() { invalidated = true })

	err := flow.Run(context.Background())
	var exchangeErr *CallbackExchangeError
	if !errors.As(err, &exchangeErr) {
		t.Fatalf("Run error = %v, want *CallbackExchangeError", err)
	}
	if !errors.Is(err, backendErr) {
		t.Fatalf("error chain %v does not wrap the backend error", err)
	}
	if invalidated {
		t.Fatalf("onLinked invoked after failed exchange")
	}
	if got := flow.State(); got != StateFailed {
		t.Fatalf("terminal state = %v, want StateFailed", got)
	}
}

func TestFlow_ContextCancellationClosesPopup(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{authURL: "https://provider/auth"}
	popup := &fakePopup{script: []locationStep{unreadable()}}
	flow := newTestFlow(api, &fakeOpener{popup: popup}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- flow.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after context cancellation")
	}
	if !popup.Closed() {
		t.Fatalf("popup left open after context cancellation")
	}
}

func TestFlow_SingleUse(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{authURL: "https://provider/auth"}
	popup := &fakePopup{script: []locationStep{{location: "https://app/cb?code=ONCE"}}}
	flow := newTestFlow(api, &fakeOpener{popup: popup}, nil)

	if err := flow.Run(context.Background()); err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	if err := flow.Run(context.Background()); err == nil {
		t.Fatalf("second Run returned nil error, want rejection")
	}
	if _, _, calls := api.exchanged(); calls != 1 {
		t.Fatalf("exchange calls = %d after rejected rerun, want 1", calls)
	}
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
		ok       bool
	}{
		{"plain", "https://app/cb?code=ABC123", "ABC123", true},
		{"among other params", "https://app/cb?scope=email&code=XYZ&state=1", "XYZ", true},
		{"no code", "https://app/cb?state=1", "", false},
		{"empty code", "https://app/cb?code=", "", false},
		{"provider page", "https://accounts.provider.com/signin", "", false},
		{"unparseable", "http://%zz", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractCode(tt.location)
			if got != tt.want || ok != tt.ok {
				t.Errorf("extractCode(%q) = (%q, %v), want (%q, %v)", tt.location, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestState_TerminalAndLabels(t *testing.T) {
	terminal := []State{StateLinked, StateCancelled, StateTimedOut, StateFailed}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("State %v not reported terminal", s)
		}
	}
	active := []State{StateIdle, StateAwaitingAuthURL, StatePopupOpen, StatePolling, StateProviderNavigation, StateCodeReceived, StateExchangingCallback}
	for _, s := range active {
		if s.Terminal() {
			t.Errorf("State %v reported terminal", s)
		}
		if s.String() == "unknown" {
			t.Errorf("State %v has no label", s)
		}
	}
}
