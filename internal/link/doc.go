// Package link implements the third-party account-link flow for the
// email-sync integration.
//
// # Overview
//
// One attempt proceeds through four steps:
//
//  1. Launcher: request an authorization URL from the backend and open a
//     popup pointed at it (500×600, centered, where the opener can honor
//     geometry).
//  2. Poll loop: every 500ms, inspect the popup. Closure is checked first;
//     then the location is read and searched for a code= query parameter.
//  3. Exchanger: forward the extracted code to the backend's callback
//     endpoint with the "postmessage" redirect marker.
//  4. On success, the caller-provided onLinked hook runs before Run
//     returns, which is where dependent query caches get invalidated.
//
// A five-minute ceiling timer runs alongside the poll loop. Whichever of
// success, cancellation, or timeout occurs first wins; both timers are
// torn down together on every exit path so nothing fires after the
// attempt resolves.
//
// # States
//
// Idle → AwaitingAuthURL → PopupOpen → (Polling ⇄ ProviderNavigation) →
// CodeReceived → ExchangingCallback → Linked, with exits to Cancelled
// (popup closed early), TimedOut (ceiling fired), and Failed (backend
// error before the popup opens or during the exchange).
//
// # Errors
//
// Every attempt ends in exactly one of:
//
//   - nil: linked
//   - ErrAuthURLUnavailable: backend errored before the popup opened
//   - ErrUserCancelled: popup closed before a code appeared
//   - ErrTimeout: ceiling elapsed; the popup is force-closed
//   - *CallbackExchangeError: backend rejected the code; wraps the
//     backend error including its detail message
//
// None are retried automatically. An unreadable popup location is the
// expected condition while the user is on the provider's own pages and is
// swallowed by the poll loop, never surfaced.
//
// # Popup ownership
//
// The popup is an externally owned resource modelled by the Popup
// capability interface: is-closed, read-location, close. BrowserOpener is
// the production implementation; it launches the system browser and
// captures the provider redirect on a loopback listener. Tests substitute
// scripted popups.
package link
