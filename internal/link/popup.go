package link

import "errors"

// ErrLocationUnreadable reports that the popup's current location cannot
// be read. This is the expected condition while the popup is on the
// provider's own pages and is never a terminal failure.
var ErrLocationUnreadable = errors.New("popup location unreadable")

// Popup is a capability handle to a browser window owned by the browser,
// not by kosh. The application can ask whether it is closed, try to read
// its location, and request that it close; it can assume nothing else.
// The window may be closed, navigated, or blocked at any time.
type Popup interface {
	// Closed reports whether the window is known to be gone.
	Closed() bool
	// Location returns the window's current URL, or ErrLocationUnreadable
	// while the URL is not observable.
	Location() (string, error)
	// Close requests that the window close. Closing an already-closed
	// window is not an error.
	Close() error
}

// WindowOptions describe the requested popup geometry. Openers that
// cannot control window placement treat them as advisory.
type WindowOptions struct {
	Width    int
	Height   int
	Centered bool
}

// DefaultWindow returns the standard authorization popup geometry.
func DefaultWindow() WindowOptions {
	return WindowOptions{Width: 500, Height: 600, Centered: true}
}

// Opener opens a popup pointed at url.
type Opener interface {
	Open(url string, opts WindowOptions) (Popup, error)
}
