// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/ctxutil"
	"github.com/taibuivan/edura/internal/platform/metrics"
	"github.com/taibuivan/edura/internal/platform/middleware"
	"github.com/taibuivan/edura/internal/platform/sec"
)

// errorCode decodes the code of an error envelope.
func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	return envelope.Code
}

// protectedRouter mounts one handler behind Authenticate and an optional guard.
func protectedRouter(t *testing.T, guard func(http.Handler) http.Handler) (*chi.Mux, *sec.TokenService) {
	t.Helper()
	tokens, err := sec.NewEphemeralTokenService("edura.test")
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokens))
	router.With(guard).Get("/private", func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetAuthUser(request.Context())
		_, _ = writer.Write([]byte(claims.Email))
	})
	return router, tokens
}

/*
TestRequestID_PropagatesOrGenerates keeps an incoming id and mints one otherwise.
*/
func TestRequestID_PropagatesOrGenerates(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "trace-1")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "trace-1", seen)
	assert.Equal(t, "trace-1", recorder.Header().Get(constants.HeaderXRequestID))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "trace-1", seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))
}

/*
TestAuthenticate covers anonymous, malformed, invalid and valid credentials.
*/
func TestAuthenticate(t *testing.T) {
	router, tokens := protectedRouter(t, middleware.RequireAuth)

	token, err := tokens.GenerateAccessToken(1, "student@edura.dev", sec.RoleStudent, time.Minute)
	require.NoError(t, err)
	expired, err := tokens.GenerateAccessToken(1, "student@edura.dev", sec.RoleStudent, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"malformed", "Token " + token, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, apperr.CodeUnauthorized, errorCode(t, recorder))
			} else {
				assert.Equal(t, "student@edura.dev", recorder.Body.String())
			}
		})
	}
}

/*
TestRequireRole enforces the role hierarchy.
*/
func TestRequireRole(t *testing.T) {
	router, tokens := protectedRouter(t, middleware.RequireRole(sec.RoleInstructor))

	call := func(role sec.UserRole) int {
		token, err := tokens.GenerateAccessToken(2, "someone@edura.dev", role, time.Minute)
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodGet, "/private", nil)
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder.Code
	}

	assert.Equal(t, http.StatusForbidden, call(sec.RoleStudent))
	assert.Equal(t, http.StatusOK, call(sec.RoleInstructor))
	assert.Equal(t, http.StatusOK, call(sec.RoleAdmin))
}

/*
TestRateLimit rejects a client once its burst is spent, per IP.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 0.001, 2)(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	}))

	call := func(ip string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRealIP, ip)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1").Code)

	limited := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, apperr.CodeRateLimited, errorCode(t, limited))

	assert.Equal(t, http.StatusNoContent, call("10.0.0.2").Code)
}

/*
TestPanicRecovery turns a panic into a 500 envelope.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, apperr.CodeInternal, errorCode(t, recorder))
}

type environment bool

func (env environment) IsDevelopment() bool { return bool(env) }

/*
TestCORS answers preflight requests and filters origins outside development.
*/
func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	preflight := httptest.NewRequest(http.MethodOptions, "/courses", nil)
	preflight.Header.Set(constants.HeaderOrigin, "https://app.edura.dev")
	recorder := httptest.NewRecorder()
	middleware.CORS(environment(false))(next).ServeHTTP(recorder, preflight)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://app.edura.dev", recorder.Header().Get("Access-Control-Allow-Origin"))

	foreign := httptest.NewRequest(http.MethodGet, "/courses", nil)
	foreign.Header.Set(constants.HeaderOrigin, "https://evil.example")
	recorder = httptest.NewRecorder()
	middleware.CORS(environment(false))(next).ServeHTTP(recorder, foreign)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))

	recorder = httptest.NewRecorder()
	middleware.CORS(environment(true))(next).ServeHTTP(recorder, foreign)
	assert.Equal(t, "https://evil.example", recorder.Header().Get("Access-Control-Allow-Origin"))
}

/*
TestMeasure labels requests by route pattern rather than raw path.
*/
func TestMeasure(t *testing.T) {
	registry := prometheus.NewRegistry()
	collectors := metrics.NewServer(registry)

	router := chi.NewRouter()
	router.Use(middleware.Measure(collectors))
	router.Get("/courses/{id}", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/courses/1", "/courses/2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(collectors.Requests.WithLabelValues(http.MethodGet, "/courses/{id}", "200")))
}

/*
TestRealIP prefers proxy headers over the socket address.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:4000"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "198.51.100.2")
	assert.Equal(t, "198.51.100.2", middleware.RealIP(request))
}
