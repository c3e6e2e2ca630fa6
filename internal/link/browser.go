package link

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

const closeTimeout = 2 * time.Second

// BrowserOpener opens the system browser for the authorization URL and
// captures the provider's redirect on a loopback listener. The resulting
// Popup reports the redirect URL as its location once the provider sends
// the user back; until then the location is unreadable, exactly as a
// cross-origin popup would be.
//
// The system browser owns its own windows, so WindowOptions are advisory
// here and a user closing the browser tab is indistinguishable from
// ongoing provider navigation; such attempts end at the ceiling timer.
type BrowserOpener struct {
	launch func(url string) error
}

// NewBrowserOpener builds an opener that uses the platform's URL handler.
func NewBrowserOpener() *BrowserOpener {
	return &BrowserOpener{launch: launchBrowser}
}

// Open starts the loopback listener and hands the authorization URL to
// the system browser.
func (o *BrowserOpener) Open(authURL string, _ WindowOptions) (Popup, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen for redirect: %w", err)
	}

	popup := &browserPopup{ln: ln}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		popup.setLocation("http://" + r.Host + r.URL.String())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>Authorization received. You can close this tab and return to kosh.</body></html>")
	})
	popup.srv = &http.Server{Handler: mux}

	go func() { _ = popup.srv.Serve(ln) }()

	launch := o.launch
	if launch == nil {
		launch = launchBrowser
	}
	if err := launch(authURL); err != nil {
		_ = popup.Close()
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	return popup, nil
}

type browserPopup struct {
	mu       sync.Mutex
	location string
	closed   bool

	srv *http.Server
	ln  net.Listener
}

// Closed reports whether Close has been called. A browser tab closed by
// the user cannot be observed from here.
func (p *browserPopup) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Location returns the captured redirect URL once the provider has sent
// the user back to the loopback listener.
func (p *browserPopup) Location() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.location == "" {
		return "", ErrLocationUnreadable
	}
	return p.location, nil
}

// Close shuts down the loopback listener. Idempotent.
func (p *browserPopup) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	srv := p.srv
	p.mu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown redirect listener: %w", err)
	}
	return nil
}

// RedirectAddr returns the listener address, for callers that need to
// register the redirect target with the provider.
func (p *browserPopup) RedirectAddr() string {
	if p.ln == nil {
		return ""
	}
	return p.ln.Addr().String()
}

func (p *browserPopup) setLocation(location string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.location == "" {
		p.location = location
	}
}

func launchBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	// The launcher exits immediately; reap it in the background.
	go func() { _ = cmd.Wait() }()
	return nil
}
