package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func send(h http.Handler, path, remote string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, nil)
	req.RemoteAddr = remote
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimiter_BlocksExcessRequests(t *testing.T) {
	rl := New(Config{Enabled: true, RequestsPerMin: 60, BurstSize: 2, CleanupMinutes: 1})
	defer rl.Stop()
	handler := rl.Middleware()(okHandler())

	for i := 0; i < 2; i++ {
		rr := send(handler, "/api/v1/deployments", "192.168.1.100:12345")
		assert.Equal(t, http.StatusOK, rr.Code, "request %d should succeed", i+1)
	}

	rr := send(handler, "/api/v1/deployments", "192.168.1.100:12345")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	retry, err := strconv.Atoi(rr.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retry, 1)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	errObj, ok := response["error"].(map[string]any)
	require.True(t, ok, "error should be an object")
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errObj["code"])
}

func TestRateLimiter_SeparateClients(t *testing.T) {
	rl := New(Config{Enabled: true, RequestsPerMin: 60, BurstSize: 1, CleanupMinutes: 1})
	defer rl.Stop()
	handler := rl.Middleware()(okHandler())

	assert.Equal(t, http.StatusOK, send(handler, "/", "192.168.1.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, send(handler, "/", "192.168.1.1:2").Code)
	assert.Equal(t, http.StatusOK, send(handler, "/", "192.168.1.2:1").Code)

	// The same API key shares a bucket across addresses
	assert.Equal(t, http.StatusOK, send(handler, "/", "10.0.0.1:1", "X-API-Key", "mf_key_a").Code)
	assert.Equal(t, http.StatusTooManyRequests, send(handler, "/", "10.0.0.2:1", "Authorization", "Bearer mf_key_a").Code)
	assert.Equal(t, http.StatusOK, send(handler, "/", "10.0.0.2:1", "X-API-Key", "mf_key_b").Code)
}

func TestRateLimiter_ExemptPaths(t *testing.T) {
	rl := New(Config{Enabled: true, RequestsPerMin: 1, BurstSize: 1, CleanupMinutes: 1})
	defer rl.Stop()
	handler := rl.Middleware()(okHandler())

	for _, path := range []string{"/health", "/healthz", "/readyz", "/metrics"} {
		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, send(handler, path, "192.168.1.1:1").Code, path)
		}
	}
	assert.Zero(t, rl.tracked())
}

func TestMiddleware_Disabled(t *testing.T) {
	handler := Middleware(Config{Enabled: false, RequestsPerMin: 1, BurstSize: 1})(okHandler())

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, send(handler, "/", "192.168.1.1:1").Code)
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := New(Config{Enabled: true, RequestsPerMin: 6000, BurstSize: 100, CleanupMinutes: 1})
	defer rl.Stop()
	handler := rl.Middleware()(okHandler())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			send(handler, "/", "192.168.1."+strconv.Itoa(i%5)+":1")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, rl.tracked())
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := New(Config{Enabled: true, RequestsPerMin: 60, BurstSize: 1, CleanupMinutes: 1})
	defer rl.Stop()

	rl.limiterFor("ip:192.168.1.1")
	require.Equal(t, 1, rl.tracked())

	rl.evictIdle(time.Now())
	assert.Equal(t, 1, rl.tracked())

	rl.evictIdle(time.Now().Add(2 * time.Minute))
	assert.Zero(t, rl.tracked())

	rl.Stop()
	rl.Stop()
}
