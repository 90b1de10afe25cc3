package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration and local storage errors
	ErrConfigIO      = fmt.Errorf("config file I/O failed")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrUnknownAlias  = fmt.Errorf("unknown account")
	ErrAliasExists   = fmt.Errorf("account alias already exists")
	ErrNoAccounts    = fmt.Errorf("no accounts found")

	// Authentication errors
	ErrListenerBind   = fmt.Errorf("failed to bind callback listener")
	ErrBrowserLaunch  = fmt.Errorf("failed to open browser")
	ErrRedirectParse  = fmt.Errorf("failed to parse authorization redirect")
	ErrTokenExchange  = fmt.Errorf("authorization code exchange failed")
	ErrRefreshFailed  = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")
	ErrTimeout        = fmt.Errorf("operation timed out")

	// API errors
	ErrAPIRequest    = fmt.Errorf("API request failed")
	ErrUnauthorized  = fmt.Errorf("unauthorized")
	ErrForbidden     = fmt.Errorf("forbidden")
	ErrClientStatus  = fmt.Errorf("client error")
	ErrServerStatus  = fmt.Errorf("server error")
	ErrUnknownStatus = fmt.Errorf("unknown error")
	ErrInvalidJSON   = fmt.Errorf("response is not valid JSON")
	ErrNotFound      = fmt.Errorf("resource not found")

	// Decoding errors
	ErrParse = fmt.Errorf("failed to parse content")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrBatchTooLarge   = fmt.Errorf("batch exceeds API limit")
	ErrCancelled       = fmt.Errorf("cancelled by user")
)
