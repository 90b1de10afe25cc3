package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/stretchr/testify/require"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Handle filters method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("GET", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "pong", rec.Body.String())

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/ping", nil))
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handler(NewCallbackHandler("/cb", "s"))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/cb?state=s&code=c", nil))
		require.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("Handler registers redirect paths for GET only", func(t *testing.T) {
		h := NewCallbackHandler("/cb", "s")
		router := NewBasicRouter()
		router.Handler(h)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/cb?state=s&code=c", nil))
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/cb?state=s&code=c", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "c", (<-h.Result()).Code)
	})
}

func TestCallbackHandler(t *testing.T) {
	t.Run("captures code", func(t *testing.T) {
		h := NewCallbackHandler("/callback.html", "xyz")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/callback.html?code=abc&state=xyz", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Authorization Successful")

		result := <-h.Result()
		require.NoError(t, result.Err)
		require.Equal(t, "abc", result.Code)
	})

	t.Run("rejects state mismatch", func(t *testing.T) {
		h := NewCallbackHandler("/callback.html", "xyz")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/callback.html?code=abc&state=other", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		result := <-h.Result()
		require.ErrorIs(t, result.Err, shared.ErrRedirectParse)
	})

	t.Run("reports authorization error", func(t *testing.T) {
		h := NewCallbackHandler("/callback.html", "xyz")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/callback.html?error=access_denied&state=xyz", nil))

		result := <-h.Result()
		require.ErrorIs(t, result.Err, shared.ErrRedirectParse)
		require.Contains(t, result.Err.Error(), "access_denied")
	})

	t.Run("only first request counts", func(t *testing.T) {
		h := NewCallbackHandler("/callback.html", "xyz")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/callback.html?code=one&state=xyz", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/callback.html?code=two&state=xyz", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		result := <-h.Result()
		require.Equal(t, "one", result.Code)
	})
}

func TestCallbackServer(t *testing.T) {
	logger := shared.NewDiscardLogger()

	t.Run("serves one redirect", func(t *testing.T) {
		srv, err := ListenCallback("127.0.0.1:0", "/callback.html", "st", logger)
		require.NoError(t, err)

		go func() {
			resp, err := http.Get("http://" + srv.Addr() + "/callback.html?code=the-code&state=st")
			if err == nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		code, err := srv.Wait(ctx)
		require.NoError(t, err)
		require.Equal(t, "the-code", code)
	})

	t.Run("bind failure", func(t *testing.T) {
		first, err := ListenCallback("127.0.0.1:0", "/cb", "st", logger)
		require.NoError(t, err)
		defer first.Close()

		_, err = ListenCallback(first.Addr(), "/cb", "st", logger)
		require.ErrorIs(t, err, shared.ErrListenerBind)
	})

	t.Run("close releases the port immediately", func(t *testing.T) {
		for range 20 {
			srv, err := ListenCallback("127.0.0.1:0", "/cb", "st", logger)
			require.NoError(t, err)
			addr := srv.Addr()

			require.NoError(t, srv.Close())

			ln, err := net.Listen("tcp", addr)
			require.NoError(t, err)
			ln.Close()
		}
	})

	t.Run("close after a redirect", func(t *testing.T) {
		srv, err := ListenCallback("127.0.0.1:0", "/cb", "st", logger)
		require.NoError(t, err)

		resp, err := http.Get("http://" + srv.Addr() + "/cb?code=c&state=st")
		require.NoError(t, err)
		resp.Body.Close()

		require.NoError(t, srv.Close())
		require.NoError(t, srv.Close())
	})

	t.Run("times out", func(t *testing.T) {
		srv, err := ListenCallback("127.0.0.1:0", "/cb", "st", logger)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err = srv.Wait(ctx)
		require.True(t, errors.Is(err, shared.ErrTimeout))
	})
}
