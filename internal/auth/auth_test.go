package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestAccount(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("IsExpired", func(t *testing.T) {
		tc := []struct {
			name    string
			acc     Account
			expired bool
		}{
			{name: "past expiry", acc: Account{RefreshToken: "r", ExpiresAt: now.Unix() - 1}, expired: true},
			{name: "exact expiry", acc: Account{RefreshToken: "r", ExpiresAt: now.Unix()}, expired: false},
			{name: "future expiry", acc: Account{RefreshToken: "r", ExpiresAt: now.Unix() + 3600}, expired: false},
			{name: "no refresh token", acc: Account{ExpiresAt: 0}, expired: false},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				require.Equal(t, tt.expired, tt.acc.IsExpired(now))
			})
		}
	})

	t.Run("legacy expires_in", func(t *testing.T) {
		var absolute Account
		require.NoError(t, json.Unmarshal([]byte(`{"access_token":"a","expires_in":1700003600,"refresh_token":"r","scope":"s"}`), &absolute))
		require.Equal(t, int64(1700003600), absolute.ExpiresAt)

		before := time.Now().Unix()
		var relative Account
		require.NoError(t, json.Unmarshal([]byte(`{"access_token":"a","expires_in":3600,"refresh_token":"r","scope":"s"}`), &relative))
		require.GreaterOrEqual(t, relative.ExpiresAt, before+3600)
		require.LessOrEqual(t, relative.ExpiresAt, time.Now().Unix()+3600)

		out, err := json.Marshal(&absolute)
		require.NoError(t, err)
		require.Contains(t, string(out), `"expires_at":1700003600`)
		require.NotContains(t, string(out), "expires_in")
	})

	t.Run("expires_at wins over expires_in", func(t *testing.T) {
		var acc Account
		require.NoError(t, json.Unmarshal([]byte(`{"expires_at":42,"expires_in":3600}`), &acc))
		require.Equal(t, int64(42), acc.ExpiresAt)
	})

	t.Run("Truncated", func(t *testing.T) {
		acc := Account{AccessToken: "abcdefghij"}
		require.Equal(t, "abcd...", acc.Truncated(4))
		require.Equal(t, "abcdefghij", acc.Truncated(20))
	})
}

func TestStore(t *testing.T) {
	t.Run("creates missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", shared.CredentialsFile)

		store, err := LoadStore(path)
		require.NoError(t, err)
		require.Zero(t, store.Len())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.JSONEq(t, `{"accounts":{}}`, string(data))

		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), shared.CredentialsFile)
		store, err := LoadStore(path)
		require.NoError(t, err)

		acc := &Account{AccessToken: "at", ExpiresAt: 1700003600, RefreshToken: "rt", Scope: "user-read-private", UserID: "u1"}
		require.NoError(t, store.Add("main", acc))
		require.NoError(t, store.Add("alt", &Account{AccessToken: "x"}))

		reloaded, err := LoadStore(path)
		require.NoError(t, err)
		require.Equal(t, []string{"alt", "main"}, reloaded.Aliases())

		got, err := reloaded.Get("main")
		require.NoError(t, err)
		require.Equal(t, acc, got)
	})

	t.Run("alias rules", func(t *testing.T) {
		store, err := LoadStore(filepath.Join(t.TempDir(), shared.CredentialsFile))
		require.NoError(t, err)

		require.NoError(t, store.Add("main", &Account{}))
		require.ErrorIs(t, store.Add("main", &Account{}), shared.ErrAliasExists)
		require.ErrorIs(t, store.Add("", &Account{}), shared.ErrInvalidInput)

		_, err = store.Get("nobody")
		require.ErrorIs(t, err, shared.ErrUnknownAlias)
		require.ErrorIs(t, store.Remove("nobody"), shared.ErrUnknownAlias)

		require.NoError(t, store.Remove("main"))
		require.Zero(t, store.Len())

		require.NoError(t, store.Add("a", &Account{}))
		require.NoError(t, store.Add("b", &Account{}))
		require.NoError(t, store.Clear())

		reloaded, err := LoadStore(store.Path())
		require.NoError(t, err)
		require.Zero(t, reloaded.Len())
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), shared.CredentialsFile)
		require.NoError(t, os.WriteFile(path, []byte(`{"accounts":`), 0o600))

		_, err := LoadStore(path)
		require.ErrorIs(t, err, shared.ErrConfigIO)
	})
}

type countingSaver struct {
	saves int
	err   error
}

func (s *countingSaver) Save() error {
	s.saves++
	return s.err
}

func tokenServer(t *testing.T, handler func(w http.ResponseWriter, form url.Values)) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		handler(w, r.PostForm)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testSettings(tokenURL string) shared.SpotifySettings {
	settings := shared.DefaultSettings().Spotify
	settings.TokenURL = tokenURL
	return settings
}

func TestManagerRefresh(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }

	t.Run("updates account and saves", func(t *testing.T) {
		srv, calls := tokenServer(t, func(w http.ResponseWriter, form url.Values) {
			require.Equal(t, "refresh_token", form.Get("grant_type"))
			require.Equal(t, "old-refresh", form.Get("refresh_token"))
			require.NotEmpty(t, form.Get("client_id"))
			fmt.Fprint(w, `{"access_token":"new-access","token_type":"Bearer","expires_in":3600,"scope":"user-library-read"}`)
		})

		saver := &countingSaver{}
		m := NewManager(ManagerOpts{Settings: testSettings(srv.URL), Store: saver, HTTPClient: srv.Client(), Now: clock})

		acc := &Account{AccessToken: "old", RefreshToken: "old-refresh", ExpiresAt: now.Unix() - 10, Scope: "x"}
		require.NoError(t, m.EnsureValid(context.Background(), acc))

		require.Equal(t, "new-access", acc.AccessToken)
		require.Equal(t, "old-refresh", acc.RefreshToken)
		require.Equal(t, "user-library-read", acc.Scope)
		require.Equal(t, now.Unix()+3600, acc.ExpiresAt)
		require.Equal(t, 1, saver.saves)

		require.NoError(t, m.EnsureValid(context.Background(), acc))
		require.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("rotated refresh token is kept", func(t *testing.T) {
		srv, _ := tokenServer(t, func(w http.ResponseWriter, form url.Values) {
			fmt.Fprint(w, `{"access_token":"a2","token_type":"Bearer","expires_in":60,"refresh_token":"r2"}`)
		})
		m := NewManager(ManagerOpts{Settings: testSettings(srv.URL), HTTPClient: srv.Client(), Now: clock})

		acc := &Account{RefreshToken: "r1", Scope: "keep"}
		require.NoError(t, m.Refresh(context.Background(), acc))
		require.Equal(t, "r2", acc.RefreshToken)
		require.Equal(t, "keep", acc.Scope)
	})

	t.Run("valid token makes no call", func(t *testing.T) {
		srv, calls := tokenServer(t, func(w http.ResponseWriter, form url.Values) {
			fmt.Fprint(w, `{"access_token":"a","token_type":"Bearer","expires_in":60}`)
		})
		m := NewManager(ManagerOpts{Settings: testSettings(srv.URL), HTTPClient: srv.Client(), Now: clock})

		acc := &Account{AccessToken: "a", RefreshToken: "r", ExpiresAt: now.Unix() + 100}
		require.NoError(t, m.EnsureValid(context.Background(), acc))
		require.Equal(t, int32(0), atomic.LoadInt32(calls))
	})

	t.Run("failure carries server body", func(t *testing.T) {
		srv, _ := tokenServer(t, func(w http.ResponseWriter, form url.Values) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Refresh token revoked"}`)
		})
		saver := &countingSaver{}
		m := NewManager(ManagerOpts{Settings: testSettings(srv.URL), Store: saver, HTTPClient: srv.Client(), Now: clock})

		acc := &Account{AccessToken: "old", RefreshToken: "r", ExpiresAt: now.Unix() - 1}
		err := m.EnsureValid(context.Background(), acc)
		require.ErrorIs(t, err, shared.ErrRefreshFailed)

		var authErr *Error
		require.True(t, errors.As(err, &authErr))
		require.Contains(t, authErr.Body, "invalid_grant")
		require.Contains(t, err.Error(), "add it again")
		require.Equal(t, "old", acc.AccessToken)
		require.Zero(t, saver.saves)
	})

	t.Run("no refresh token", func(t *testing.T) {
		m := NewManager(ManagerOpts{Now: clock})
		require.ErrorIs(t, m.Refresh(context.Background(), &Account{}), shared.ErrNoRefreshToken)
	})
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestManagerAuthorize(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("pkce flow", func(t *testing.T) {
		var challenge string
		srv, _ := tokenServer(t, func(w http.ResponseWriter, form url.Values) {
			require.Equal(t, "authorization_code", form.Get("grant_type"))
			require.Equal(t, "the-code", form.Get("code"))
			require.Equal(t, challenge, oauth2.S256ChallengeFromVerifier(form.Get("code_verifier")))
			fmt.Fprint(w, `{"access_token":"at","token_type":"Bearer","expires_in":3600,"refresh_token":"rt","scope":"user-read-private"}`)
		})

		addr := freeAddr(t)
		settings := testSettings(srv.URL)
		settings.CallbackAddr = addr
		settings.RedirectURI = "http://" + addr + "/callback.html"

		browser := func(authURL string) error {
			u, err := url.Parse(authURL)
			if err != nil {
				return err
			}
			q := u.Query()
			if q.Get("code_challenge_method") != "S256" || q.Get("client_id") == "" {
				return fmt.Errorf("unexpected authorize url %s", authURL)
			}
			if !strings.Contains(q.Get("scope"), "playlist-modify-private") {
				return fmt.Errorf("missing scopes in %s", authURL)
			}
			challenge = q.Get("code_challenge")

			go func() {
				resp, err := http.Get(q.Get("redirect_uri") + "?code=the-code&state=" + url.QueryEscape(q.Get("state")))
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		}

		m := NewManager(ManagerOpts{
			Settings:    settings,
			HTTPClient:  srv.Client(),
			Now:         func() time.Time { return now },
			OpenBrowser: browser,
		})

		acc, err := m.Authorize(context.Background())
		require.NoError(t, err)
		require.Equal(t, "at", acc.AccessToken)
		require.Equal(t, "rt", acc.RefreshToken)
		require.Equal(t, "user-read-private", acc.Scope)
		require.Equal(t, now.Unix()+3600, acc.ExpiresAt)
	})

	t.Run("browser failure releases the port", func(t *testing.T) {
		addr := freeAddr(t)
		settings := testSettings("http://127.0.0.1:1/token")
		settings.CallbackAddr = addr

		m := NewManager(ManagerOpts{
			Settings:    settings,
			OpenBrowser: func(string) error { return errors.New("no display") },
		})

		_, err := m.Authorize(context.Background())
		require.ErrorIs(t, err, shared.ErrBrowserLaunch)

		ln, err := net.Listen("tcp", addr)
		require.NoError(t, err)
		ln.Close()
	})

	t.Run("exchange rejected", func(t *testing.T) {
		srv, _ := tokenServer(t, func(w http.ResponseWriter, form url.Values) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
		})

		addr := freeAddr(t)
		settings := testSettings(srv.URL)
		settings.CallbackAddr = addr
		settings.RedirectURI = "http://" + addr + "/callback.html"

		m := NewManager(ManagerOpts{
			Settings:   settings,
			HTTPClient: srv.Client(),
			OpenBrowser: func(authURL string) error {
				u, _ := url.Parse(authURL)
				go func() {
					resp, err := http.Get(settings.RedirectURI + "?code=c&state=" + u.Query().Get("state"))
					if err == nil {
						resp.Body.Close()
					}
				}()
				return nil
			},
		})

		_, err := m.Authorize(context.Background())
		require.ErrorIs(t, err, shared.ErrTokenExchange)
		var authErr *Error
		require.True(t, errors.As(err, &authErr))
		require.Contains(t, authErr.Body, "invalid_grant")
	})
}

func TestNewVerifier(t *testing.T) {
	a, err := NewVerifier()
	require.NoError(t, err)
	b, err := NewVerifier()
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.Len(t, a, 86)
	require.NotContains(t, a, "=")
	require.NotContains(t, a, "+")
	require.NotContains(t, a, "/")
}
