package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Middleware_CountsByRoutePattern(t *testing.T) {
	// given
	reg := prometheus.NewRegistry()
	m := New(reg)
	r := chi.NewRouter()
	r.Use(m.Middleware("catalog", ChiRoutePatternOrPath))
	r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("null"))
	})

	// when
	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	// then
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Requests.WithLabelValues("catalog", "GET", "/api/products/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("catalog", "GET", "/nope", "404")))
	count, err := testutil.GatherAndCount(reg, "http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one histogram series per route")
}

func Test_BearerAuth(t *testing.T) {
	testCases := []struct {
		name         string
		token        string
		header       string
		expectedCode int
	}{
		{name: "Empty token denies", token: "", header: "Bearer ", expectedCode: http.StatusForbidden},
		{name: "Missing header", token: "secret", header: "", expectedCode: http.StatusForbidden},
		{name: "Wrong scheme", token: "secret", header: "Basic secret", expectedCode: http.StatusForbidden},
		{name: "Wrong token", token: "secret", header: "Bearer nope", expectedCode: http.StatusForbidden},
		{name: "Valid token", token: "secret", header: "Bearer secret", expectedCode: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			h := BearerAuth(tc.token)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			// when
			h.ServeHTTP(rr, req)
			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}
