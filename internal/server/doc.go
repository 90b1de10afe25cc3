// Package server provides the loopback HTTP listener that receives the OAuth2 authorization redirect.
//
// # Router Infrastructure
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// [BasicRouter] uses [http.ServeMux] internally with method filtering. Redirect paths are
// registered for GET only.
//
// # Callback Handler
//
// [CallbackHandler] accepts exactly one redirect. It validates the state parameter, extracts the
// authorization code (or the error the authorization server sent back), replies with a static
// success page, and hands the result to whoever is waiting on [CallbackServer.Wait].
//
// The code exchange itself happens in the auth package so the PKCE verifier never leaves it.
//
// # Lifecycle
//
// [ListenCallback] binds the port before the browser is opened, so a bind failure is reported
// before the user is sent anywhere. [CallbackServer.Wait] shuts the listener down once a result
// arrives or the context ends.
package server
