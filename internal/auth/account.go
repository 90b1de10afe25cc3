package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// legacyAbsoluteThreshold separates absolute epoch values from relative durations in old files.
const legacyAbsoluteThreshold = 100000

// Account is one authorized user's credentials.
type Account struct {
	AccessToken  string `json:"access_token"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	UserID       string `json:"id,omitempty"`
}

// IsExpired reports whether the access token must be refreshed before use.
// Accounts without a refresh token never expire from the client's point of view.
func (a *Account) IsExpired(now time.Time) bool {
	return a.RefreshToken != "" && now.Unix() > a.ExpiresAt
}

// UnmarshalJSON accepts files written with a relative or absolute expires_in instead of expires_at.
func (a *Account) UnmarshalJSON(data []byte) error {
	type plain Account
	var raw struct {
		plain
		ExpiresIn *int64 `json:"expires_in"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = Account(raw.plain)
	if a.ExpiresAt == 0 && raw.ExpiresIn != nil {
		if *raw.ExpiresIn > legacyAbsoluteThreshold {
			a.ExpiresAt = *raw.ExpiresIn
		} else {
			a.ExpiresAt = time.Now().Unix() + *raw.ExpiresIn
		}
	}
	return nil
}

// apply copies a token endpoint response onto a. An omitted refresh token or scope keeps the old one.
func (a *Account) apply(tok *oauth2.Token, now time.Time) {
	a.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		a.RefreshToken = tok.RefreshToken
	}
	if scope, ok := tok.Extra("scope").(string); ok && scope != "" {
		a.Scope = scope
	}
	a.ExpiresAt = expiresAt(tok, now)
}

func expiresAt(tok *oauth2.Token, now time.Time) int64 {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return now.Unix() + int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return now.Unix() + n
		}
	case string:
		var n int64
		if _, err := fmt.Sscan(v, &n); err == nil {
			return now.Unix() + n
		}
	}
	if !tok.Expiry.IsZero() {
		return tok.Expiry.Unix()
	}
	return now.Unix()
}

// Truncated renders the first n characters of the access token.
func (a *Account) Truncated(n int) string {
	if len(a.AccessToken) <= n {
		return a.AccessToken
	}
	return a.AccessToken[:n] + "..."
}
