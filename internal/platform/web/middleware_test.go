package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abgdnv/product-catalog/internal/platform/contextkeys"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func Test_RequestIDInjector(t *testing.T) {
	testCases := []struct {
		name       string
		handler    http.Handler
		expectedID string
	}{
		{
			name:    "Generates an id when chi did not set one",
			handler: RequestIDInjector(echoRequestID()),
		},
		{
			name:       "Reuses the chi request id",
			handler:    withChiRequestID("chi-123", RequestIDInjector(echoRequestID())),
			expectedID: "chi-123",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rr := httptest.NewRecorder()
			// when
			tc.handler.ServeHTTP(rr, req)
			// then
			got := rr.Body.String()
			assert.NotEmpty(t, got)
			assert.Equal(t, got, rr.Header().Get(RequestIDHeader))
			if tc.expectedID != "" {
				assert.Equal(t, tc.expectedID, got)
			}
		})
	}
}

func Test_StructuredLogger(t *testing.T) {
	// given
	core, logs := observer.New(zapcore.InfoLevel)
	h := RequestIDInjector(StructuredLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))
	req := httptest.NewRequest(http.MethodPost, "/api/products/add-product", nil)
	rr := httptest.NewRecorder()

	// when
	h.ServeHTTP(rr, req)

	// then
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Request completed", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/products/add-product", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, len("short and stout"), fields["bytes_written"])
	assert.Equal(t, rr.Header().Get(RequestIDHeader), fields["request_id"])
}

func Test_Recoverer(t *testing.T) {
	// given
	core, logs := observer.New(zapcore.ErrorLevel)
	h := Recoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	// when
	h.ServeHTTP(rr, req)

	// then
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
	require.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func Test_RespondJSON(t *testing.T) {
	testCases := []struct {
		name         string
		payload      any
		expectedBody string
		expectedType string
	}{
		{
			name:         "Object payload",
			payload:      map[string]any{"id": "p1"},
			expectedBody: `{"id":"p1"}`,
			expectedType: "application/json",
		},
		{
			name:         "Nil payload writes no body",
			payload:      nil,
			expectedBody: "",
			expectedType: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			RespondJSON(rr, zap.NewNop(), http.StatusOK, tc.payload)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.expectedType, rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_RespondNull(t *testing.T) {
	rr := httptest.NewRecorder()

	RespondNull(rr, http.StatusOK)

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "null", rr.Body.String())
}

func echoRequestID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := contextkeys.GetRequestID(r.Context())
		_, _ = w.Write([]byte(id))
	})
}

func withChiRequestID(id string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Set(middleware.RequestIDHeader, id)
		middleware.RequestID(next).ServeHTTP(w, r)
	})
}
