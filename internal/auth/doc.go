// Package auth owns account credentials: the on-disk credential store and the OAuth2 token lifecycle.
//
// # Store
//
// [Store] maps user-chosen aliases to [Account] values and persists the whole document to
// config.json after every mutation, writing a temporary file and renaming it into place.
//
// # Token lifecycle
//
// [Manager] runs the PKCE authorization-code flow ([Manager.Authorize]), refreshes expired access
// tokens ([Manager.Refresh], [Manager.EnsureValid]) and saves the store after each refresh.
// A failed refresh is reported as an [Error]; the account has to be added again.
package auth
