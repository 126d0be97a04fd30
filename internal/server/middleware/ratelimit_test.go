package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newRateLimitedHandler(t *testing.T, requestsPerSecond float64, burst int) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return RateLimitByIP(ctx, requestsPerSecond, burst)(next)
}

func TestRateLimitByIP_AllowsWithinBurst(t *testing.T) {
	handler := newRateLimitedHandler(t, 1, 3)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d within burst", i+1)
	}
}

func TestRateLimitByIP_RejectsBeyondBurst(t *testing.T) {
	handler := newRateLimitedHandler(t, 0.001, 2)

	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
		r.RemoteAddr = "10.0.0.2:5000"
		return r
	}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req())
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimitByIP_TracksIPsIndependently(t *testing.T) {
	handler := newRateLimitedHandler(t, 0.001, 1)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
	first.RemoteAddr = "10.0.0.3:5000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The first IP is now exhausted.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different IP still has its own budget.
	other := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
	other.RemoteAddr = "10.0.0.4:5000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}
