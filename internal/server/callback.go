package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotimine/internal/shared"
)

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authorization Successful</h1>
        <p>You can close this window and return to spotimine.</p>
    </div>
</body>
</html>
`

// CallbackResult is what the authorization server redirected back with.
type CallbackResult struct {
	Code string
	Err  error
}

// CallbackHandler receives a single authorization redirect.
type CallbackHandler struct {
	path    string
	state   string
	results chan CallbackResult
	once    sync.Once
	mu      sync.Mutex
	hit     bool
}

// NewCallbackHandler creates a handler for path that expects the given state token.
func NewCallbackHandler(path, state string) *CallbackHandler {
	return &CallbackHandler{
		path:    path,
		state:   state,
		results: make(chan CallbackResult, 1),
	}
}

// Routes returns the redirect path.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP handles the redirect. Only the first request is processed.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.send(CallbackResult{Err: fmt.Errorf("%w: state parameter does not match", shared.ErrRedirectParse)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: no code in redirect (%s: %s)", shared.ErrRedirectParse, query.Get("error"), query.Get("error_description"))
		h.send(CallbackResult{Err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)

	h.send(CallbackResult{Code: code})
}

func (h *CallbackHandler) send(result CallbackResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result receives exactly one [CallbackResult] and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.results
}

// CallbackServer is a loopback HTTP server bound for the duration of one authorization.
type CallbackServer struct {
	listener net.Listener
	server   *http.Server
	handler  *CallbackHandler
	logger   *log.Logger
}

// ListenCallback binds addr and starts serving the redirect path in the background.
func ListenCallback(addr, path, state string, logger *log.Logger) (*CallbackServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrListenerBind, addr, err)
	}

	handler := NewCallbackHandler(path, state)
	router := NewBasicRouter()
	router.Use(RequestLogger(logger))
	router.Handler(handler)

	s := &CallbackServer{
		listener: ln,
		server:   &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		handler:  handler,
		logger:   logger,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("callback server stopped", "error", err)
		}
	}()

	logger.Debug("callback listener bound", "addr", ln.Addr().String(), "path", path)
	return s, nil
}

// Addr is the bound address, useful when addr was given with port 0.
func (s *CallbackServer) Addr() string {
	return s.listener.Addr().String()
}

// Wait blocks until the redirect arrives or ctx ends, then shuts the server down.
func (s *CallbackServer) Wait(ctx context.Context) (string, error) {
	defer s.Close()

	select {
	case result := <-s.handler.Result():
		return result.Code, result.Err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: no authorization redirect received", shared.ErrTimeout)
		}
		return "", ctx.Err()
	}
}

// Close shuts the server down, waiting briefly for the success page to be written.
// The port is free once Close returns, even if serving had not started yet.
func (s *CallbackServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if cerr := s.listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) && err == nil {
		err = cerr
	}
	return err
}
