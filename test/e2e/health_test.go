//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHealth_Endpoints tests all health check endpoints
func TestHealth_Endpoints(t *testing.T) {
	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		t.Run(path+" returns 200", func(t *testing.T) {
			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, testCtx.TestServer.URL+path, nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		})
	}
}

// TestCORS_Headers tests that CORS headers are set correctly
func TestCORS_Headers(t *testing.T) {
	t.Run("OPTIONS request returns CORS headers", func(t *testing.T) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodOptions, testCtx.TestServer.URL+"/api/v1/deployments", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "X-API-Key")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
		assert.Contains(t, strings.ToLower(resp.Header.Get("Access-Control-Allow-Headers")), "x-api-key")
	})

	t.Run("GET request has CORS headers", func(t *testing.T) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, testCtx.TestServer.URL+"/api/v1/deployments", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://example.com")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

// TestChains lists the registered chains
func TestChains(t *testing.T) {
	resp, err := http.Get(testCtx.TestServer.URL + "/api/v1/chains")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data []struct {
			ChainID     int64    `json:"chainId"`
			DisplayName string   `json:"displayName"`
			Aliases     []string `json:"aliases"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	names := map[int64]string{}
	for _, c := range body.Data {
		names[c.ChainID] = c.DisplayName
	}
	assert.Equal(t, "BNB Smart Chain", names[56])
	assert.Equal(t, "Ethereum", names[1])
}
