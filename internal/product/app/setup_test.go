package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/product-catalog/internal/config"
	"github.com/abgdnv/product-catalog/internal/product/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	var cfg config.Config
	cfg.HTTPServer.Port = 8081
	cfg.HTTPServer.MaxHeaderBytes = 1 << 20
	cfg.HTTPServer.Timeout.Read = 5 * time.Second
	cfg.HTTPServer.Timeout.Write = 10 * time.Second
	cfg.HTTPServer.Timeout.Idle = time.Minute
	cfg.HTTPServer.Timeout.ReadHeader = 2 * time.Second
	cfg.Database.Driver = config.DriverMemory
	return &cfg
}

func Test_SetupHttpHandler_Routes(t *testing.T) {
	testCases := []struct {
		name         string
		method       string
		path         string
		body         string
		expectedCode int
	}{
		{name: "Add product", method: http.MethodPost, path: "/api/products/add-product", body: `{"id":"p1","name":"Pen"}`, expectedCode: http.StatusOK},
		{name: "List products", method: http.MethodGet, path: "/api/products", expectedCode: http.StatusOK},
		{name: "Get product", method: http.MethodGet, path: "/api/products/p1", expectedCode: http.StatusOK},
		{name: "Healthz", method: http.MethodGet, path: "/healthz", expectedCode: http.StatusOK},
		{name: "Readyz", method: http.MethodGet, path: "/readyz", expectedCode: http.StatusOK},
		{name: "No update route", method: http.MethodPut, path: "/api/products/p1", expectedCode: http.StatusMethodNotAllowed},
		{name: "No delete route", method: http.MethodDelete, path: "/api/products/p1", expectedCode: http.StatusMethodNotAllowed},
		{name: "Metrics disabled", method: http.MethodGet, path: "/metrics", expectedCode: http.StatusNotFound},
	}

	h := SetupHttpHandler(SetupDependencies(store.NewInMemoryStore(), zap.NewNop()), testConfig())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
		})
	}
}

func Test_SetupHttpHandler_Metrics(t *testing.T) {
	// given
	cfg := testConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Token = "scrape-me"
	h := SetupHttpHandler(SetupDependencies(store.NewInMemoryStore(), zap.NewNop()), cfg)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/p1", nil))

	// when
	denied := httptest.NewRecorder()
	h.ServeHTTP(denied, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer scrape-me")
	allowed := httptest.NewRecorder()
	h.ServeHTTP(allowed, req)

	// then
	assert.Equal(t, http.StatusForbidden, denied.Code)
	require.Equal(t, http.StatusOK, allowed.Code)
	assert.Contains(t, allowed.Body.String(), `http_requests_total{method="GET",path="/api/products/{id}",service="catalog",status="200"} 1`)
}

func Test_SetupHttpServer(t *testing.T) {
	cfg := testConfig()

	server := SetupHttpServer(SetupDependencies(store.NewInMemoryStore(), zap.NewNop()), cfg)

	assert.Equal(t, ":8081", server.Addr)
	assert.Equal(t, cfg.HTTPServer.Timeout.Read, server.ReadTimeout)
	assert.Equal(t, cfg.HTTPServer.MaxHeaderBytes, server.MaxHeaderBytes)
}

func Test_NewStore(t *testing.T) {
	t.Run("memory driver", func(t *testing.T) {
		st, closeFn, err := NewStore(context.Background(), testConfig(), zap.NewNop())

		require.NoError(t, err)
		assert.NoError(t, st.Ping(context.Background()))
		assert.NoError(t, closeFn(context.Background()))
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := testConfig()
		cfg.Database.Driver = "cassandra"

		st, _, err := NewStore(context.Background(), cfg, zap.NewNop())

		assert.Error(t, err)
		assert.Nil(t, st)
	})
}
