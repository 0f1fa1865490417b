package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/platemap/pkg/logging"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTeapot)
	_, _ = w.Write([]byte("ok"))
}

func TestChain(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(mw("m1"), mw("m2"), mw("m3"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"m1", "m2", "m3", "handler"}, order)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, "abc-123")
		h.ServeHTTP(w, r)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})

	t.Run("oversized replaced", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
		h.ServeHTTP(w, r)
		assert.Len(t, seen, 36)
	})
}

func TestLogger(t *testing.T) {
	logger := logging.NewTestLogger(t)

	var ctxLogged bool
	h := Chain(RequestID, Logger(logger.Logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Debug().Msg("inside handler")
		ctxLogged = true
		okHandler(w, r)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/v1/query", nil)
	r.Header.Set(RequestIDHeader, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), r)

	require.True(t, ctxLogged)
	logger.AssertContains(t, "inside handler")
	logger.AssertContains(t, `"status":418`)
	logger.AssertContains(t, `"bytes":2`)
	logger.AssertContains(t, `"request_id":"req-1"`)
	logger.AssertContains(t, `"path":"/api/v1/query"`)
}

func TestRecovery(t *testing.T) {
	logger := logging.NewTestLogger(t)
	h := Chain(RequestID, Recovery(logger.Logger))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	logger.AssertContains(t, "Panic recovered")
	logger.AssertContains(t, "kaboom")
}

type recorded struct {
	method, path string
	status       int
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []recorded
}

func (f *fakeRecorder) RecordHTTPRequest(method, path string, statusCode int, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, recorded{method, path, statusCode})
}

func TestMetrics(t *testing.T) {
	rec := &fakeRecorder{}
	label := func(*http.Request) string { return "/label" }
	h := Metrics(rec, label)(http.HandlerFunc(okHandler))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anything", nil))

	assert.Equal(t, []recorded{{http.MethodGet, "/label", http.StatusTeapot}}, rec.seen)
}

func TestResponseWriterFirstStatusWins(t *testing.T) {
	w := wrap(httptest.NewRecorder())
	_, _ = w.Write([]byte("body"))
	w.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusOK, w.statusCode)
	assert.Equal(t, 4, w.written)
}
