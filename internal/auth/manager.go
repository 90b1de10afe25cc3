package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotimine/internal/server"
	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Scopes requested for every account.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-read-recently-played",
	"user-library-read",
	"user-library-modify",
	"user-top-read",
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-public",
	"playlist-modify-private",
}

const verifierBytes = 64

// Error is an authentication failure. Body holds the token endpoint's response when there was one.
type Error struct {
	Op   string
	Body string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	if errors.Is(e.Err, shared.ErrRefreshFailed) || errors.Is(e.Err, shared.ErrNoRefreshToken) {
		b.WriteString(" (remove the account and add it again)")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Saver persists refreshed credentials. [*Store] implements it.
type Saver interface {
	Save() error
}

// ManagerOpts configures a [Manager]. Zero values fall back to the default settings.
type ManagerOpts struct {
	Settings    shared.SpotifySettings
	Store       Saver
	HTTPClient  *http.Client
	Logger      *log.Logger
	Now         func() time.Time
	OpenBrowser func(url string) error
}

// Manager authorizes accounts and keeps their access tokens fresh.
type Manager struct {
	config       *oauth2.Config
	store        Saver
	httpClient   *http.Client
	logger       *log.Logger
	now          func() time.Time
	openBrowser  func(string) error
	callbackAddr string
	callbackPath string
	timeout      time.Duration
}

// NewManager builds a Manager for a public (secret-less) PKCE client.
func NewManager(opts ManagerOpts) *Manager {
	if opts.Settings.ClientID == "" {
		opts.Settings = shared.DefaultSettings().Spotify
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewDiscardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	timeout := opts.Settings.AuthTimeout()
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Manager{
		config: &oauth2.Config{
			ClientID:    opts.Settings.ClientID,
			RedirectURL: opts.Settings.RedirectURI,
			Scopes:      Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   opts.Settings.AuthURL,
				TokenURL:  opts.Settings.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		store:        opts.Store,
		httpClient:   opts.HTTPClient,
		logger:       opts.Logger,
		now:          opts.Now,
		openBrowser:  opts.OpenBrowser,
		callbackAddr: opts.Settings.CallbackAddr,
		callbackPath: opts.Settings.CallbackPath(),
		timeout:      timeout,
	}
}

func (m *Manager) context(ctx context.Context) context.Context {
	if m.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

// EnsureValid refreshes acc only when its access token has expired.
func (m *Manager) EnsureValid(ctx context.Context, acc *Account) error {
	if !acc.IsExpired(m.now()) {
		return nil
	}
	return m.Refresh(ctx, acc)
}

// Refresh exchanges the refresh token for a new access token, updates acc in place and saves the store.
func (m *Manager) Refresh(ctx context.Context, acc *Account) error {
	if acc.RefreshToken == "" {
		return &Error{Op: "refresh", Err: shared.ErrNoRefreshToken}
	}

	src := m.config.TokenSource(m.context(ctx), &oauth2.Token{RefreshToken: acc.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return &Error{Op: "refresh", Body: retrieveBody(err), Err: fmt.Errorf("%w: %v", shared.ErrRefreshFailed, errorSummary(err))}
	}

	acc.apply(tok, m.now())
	m.logger.Debug("access token refreshed", "user", acc.UserID, "expires_at", acc.ExpiresAt)

	if m.store != nil {
		if err := m.store.Save(); err != nil {
			return err
		}
	}
	return nil
}

// Authorize runs the PKCE authorization-code flow in the user's browser and returns the new account.
// The caller decides the alias and adds the account to the store.
func (m *Manager) Authorize(ctx context.Context) (*Account, error) {
	verifier, err := NewVerifier()
	if err != nil {
		return nil, &Error{Op: "authorize", Err: err}
	}
	state := uuid.NewString()

	cb, err := server.ListenCallback(m.callbackAddr, m.callbackPath, state, m.logger)
	if err != nil {
		return nil, &Error{Op: "authorize", Err: err}
	}
	defer cb.Close()

	authURL := m.AuthCodeURL(state, verifier)
	m.logger.Info("opening browser for authorization", "url", authURL)
	if err := m.openBrowser(authURL); err != nil {
		return nil, &Error{Op: "authorize", Err: fmt.Errorf("%w: %v", shared.ErrBrowserLaunch, err)}
	}

	waitCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	code, err := cb.Wait(waitCtx)
	if err != nil {
		return nil, &Error{Op: "authorize", Err: err}
	}

	tok, err := m.config.Exchange(m.context(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, &Error{Op: "authorize", Body: retrieveBody(err), Err: fmt.Errorf("%w: %v", shared.ErrTokenExchange, errorSummary(err))}
	}

	acc := &Account{}
	acc.apply(tok, m.now())
	return acc, nil
}

// AuthCodeURL is the authorize endpoint URL with the S256 challenge derived from verifier.
func (m *Manager) AuthCodeURL(state, verifier string) string {
	return m.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// NewVerifier returns a PKCE code verifier: 64 random bytes, base64url without padding.
func NewVerifier() (string, error) {
	buf := make([]byte, verifierBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func retrieveBody(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return strings.TrimSpace(string(re.Body))
	}
	return ""
}

func errorSummary(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return re.Response.Status
	}
	return err.Error()
}
