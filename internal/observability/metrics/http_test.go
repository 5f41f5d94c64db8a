package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestRouteLabel(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req)
			got = routeLabel(req)
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})
	r.Route("/api/v1/deployments", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {})
		r.Get("/{chainId}/{address}", func(w http.ResponseWriter, r *http.Request) {})
	})

	tests := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/api/v1/deployments", "/api/v1/deployments"},
		{"/api/v1/deployments/56/0x1234567890abcdef1234567890abcdef12345678", "/api/v1/deployments/{chainId}/{address}"},
		{"/wp-login.php", unmatchedRoute},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got = ""
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouteLabel_NoRouter(t *testing.T) {
	assert.Equal(t, unmatchedRoute, routeLabel(httptest.NewRequest(http.MethodGet, "/x", nil)))
}

func TestStatusRecorder_FirstHeaderWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusTeapot, rw.status)
}

func TestMiddleware_DisabledPassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) })
	rec := httptest.NewRecorder()
	Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
