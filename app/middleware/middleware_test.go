package appMiddleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	m, err := NewSessionManager("middleware-test-secret", time.Hour, false)
	require.NoError(t, err)
	return m
}

func echoSession(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetSessionIDFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-New-Session", strconv.FormatBool(IsNewSession(r.Context())))
		_, _ = w.Write([]byte(id))
	})
}

func TestSession(t *testing.T) {
	m := newSessionManager(t)
	h := m.Session(echoSession(t))

	issue := func() *http.Cookie {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		return cookies[0]
	}

	t.Run("issues a signed cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, SessionCookieName, cookies[0].Name)
		assert.Equal(t, "true", w.Header().Get("X-New-Session"))
		_, err := uuid.Parse(w.Body.String())
		assert.NoError(t, err)
		assert.NotEqual(t, w.Body.String(), cookies[0].Value)
	})

	t.Run("reuses a valid cookie", func(t *testing.T) {
		c := issue()
		first := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(c)
		h.ServeHTTP(first, r)

		second := httptest.NewRecorder()
		r = httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(c)
		h.ServeHTTP(second, r)

		assert.Empty(t, first.Result().Cookies())
		assert.Equal(t, "false", first.Header().Get("X-New-Session"))
		assert.Equal(t, first.Body.String(), second.Body.String())
	})

	t.Run("replaces a made up id", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: uuid.NewString()})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		require.Len(t, w.Result().Cookies(), 1)
		assert.Equal(t, "true", w.Header().Get("X-New-Session"))
	})

	t.Run("rejects a cookie from another secret", func(t *testing.T) {
		other, err := NewSessionManager("a-different-session-secret", time.Hour, false)
		require.NoError(t, err)
		token, err := other.sign(uuid.NewString())
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, "true", w.Header().Get("X-New-Session"))
	})
}

func limitedRouter(t *testing.T, limiter *RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(newSessionManager(t).Session)
	r.With(limiter.Limit).Post("/weather/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func TestRateLimiterCookielessClients(t *testing.T) {
	h := limitedRouter(t, NewRateLimiter(0.001, 1, time.Minute, slog.Default()))

	var codes []int
	for i := 0; i < 5; i++ {
		r := httptest.NewRequest(http.MethodPost, "/weather/search", nil)
		r.RemoteAddr = "10.0.0.1:4000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{
		http.StatusNoContent,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestRateLimiterSessionsShareTheAddressBucket(t *testing.T) {
	m := newSessionManager(t)
	h := limitedRouter(t, NewRateLimiter(0.001, 2, time.Minute, slog.Default()))

	send := func(addr string) *httptest.ResponseRecorder {
		token, err := m.sign(uuid.NewString())
		require.NoError(t, err)
		r := httptest.NewRequest(http.MethodPost, "/weather/search", nil)
		r.RemoteAddr = addr
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1").Code)
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:2").Code)

	limited := send("10.0.0.2:3")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, send("10.0.0.3:1").Code, "buckets are per address")
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "addr:10.0.0.7", clientKey(r))

	r.RemoteAddr = "10.0.0.8"
	assert.Equal(t, "addr:10.0.0.8", clientKey(r))
}
