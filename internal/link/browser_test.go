package link

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestBrowserOpener_CapturesRedirect(t *testing.T) {
	t.Parallel()

	var launchedURL string
	opener := &BrowserOpener{launch: func(url string) error {
		launchedURL = url
		return nil
	}}

	popup, err := opener.Open("https://provider/auth?state=1", DefaultWindow())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = popup.Close() })

	if launchedURL != "https://provider/auth?state=1" {
		t.Fatalf("launched url = %q, want auth url", launchedURL)
	}
	if popup.Closed() {
		t.Fatalf("popup reported closed immediately after open")
	}

	// Before the redirect arrives the location is unreadable.
	if _, err := popup.Location(); !errors.Is(err, ErrLocationUnreadable) {
		t.Fatalf("Location error = %v, want ErrLocationUnreadable", err)
	}

	addr := popup.(*browserPopup).RedirectAddr()
	resp, err := http.Get(fmt.Sprintf("http://%s/callback?code=ABC123", addr))
	if err != nil {
		t.Fatalf("redirect request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("redirect status = %d, want 200", resp.StatusCode)
	}

	deadline := time.Now().Add(time.Second)
	for {
		location, err := popup.Location()
		if err == nil {
			if !strings.Contains(location, "code=ABC123") {
				t.Fatalf("captured location = %q, want code=ABC123", location)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("location never became readable after redirect")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := popup.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !popup.Closed() {
		t.Fatalf("popup not reported closed after Close")
	}
	// Closing again is a no-op.
	if err := popup.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
}

func TestBrowserOpener_LaunchFailureClosesListener(t *testing.T) {
	t.Parallel()

	opener := &BrowserOpener{launch: func(url string) error {
		return errors.New("no browser available")
	}}
	if _, err := opener.Open("https://provider/auth", DefaultWindow()); err == nil {
		t.Fatalf("Open returned nil error, want launch failure")
	}
}
