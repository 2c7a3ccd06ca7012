// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sandbox_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edura/internal/platform/config"
	"github.com/taibuivan/edura/internal/platform/sec"
	"github.com/taibuivan/edura/internal/sandbox"
)

// # Fixtures

type sandboxFixture struct {
	server *httptest.Server
	store  *sandbox.Store
}

func newSandbox(t *testing.T) *sandboxFixture {
	t.Helper()

	store := sandbox.NewStore()
	require.NoError(t, sandbox.Seed(store))

	tokens, err := sec.NewEphemeralTokenService("edura.test")
	require.NoError(t, err)

	cfg := &config.SandboxConfig{
		Environment:    "test",
		ServerPort:     "0",
		AccessTokenTTL: time.Minute,
		PublicURL:      "http://sandbox.test",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	server := sandbox.NewServer(t.Context(), cfg, logger, sandbox.Dependencies{
		Store:    store,
		Tokens:   tokens,
		Registry: prometheus.NewRegistry(),
	})

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	return &sandboxFixture{server: httpServer, store: store}
}

// envelope is a decoded response of either shape.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

func (fixture *sandboxFixture) call(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequest(method, fixture.server.URL+path, reader)
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := fixture.server.Client().Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	var decoded envelope
	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(response.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return response.StatusCode, decoded
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (fixture *sandboxFixture) login(t *testing.T, email string) tokenPair {
	t.Helper()

	status, body := fixture.call(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": sandbox.SeedPassword,
	})
	require.Equal(t, http.StatusOK, status, body.Error)

	var pair tokenPair
	require.NoError(t, json.Unmarshal(body.Data, &pair))
	return pair
}

// # Tests

/*
TestServer_Health verifies the infrastructure endpoints.
*/
func TestServer_Health(t *testing.T) {
	fixture := newSandbox(t)

	status, _ := fixture.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := fixture.call(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body.Data), `"ready"`)

	response, err := http.Get(fixture.server.URL + "/metrics")
	require.NoError(t, err)
	defer response.Body.Close()
	metrics, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "edura_sandbox_http_requests_total")
}

/*
TestServer_LoginAndRefresh covers credentials, refresh and logout revocation.
*/
func TestServer_LoginAndRefresh(t *testing.T) {
	fixture := newSandbox(t)

	status, body := fixture.call(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": sandbox.SeedStudentEmail, "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body.Code)

	pair := fixture.login(t, sandbox.SeedStudentEmail)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	status, body = fixture.call(t, http.MethodPost, "/auth/refresh-token", "", map[string]string{"refreshToken": pair.RefreshToken})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body.Data), "accessToken")

	status, _ = fixture.call(t, http.MethodPost, "/auth/logout", "", map[string]string{"refreshToken": pair.RefreshToken})
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = fixture.call(t, http.MethodPost, "/auth/refresh-token", "", map[string]string{"refreshToken": pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)
}

/*
TestServer_InvalidTokenIsRejected verifies a bad bearer yields 401 even on public routes.
*/
func TestServer_InvalidTokenIsRejected(t *testing.T) {
	fixture := newSandbox(t)

	status, _ := fixture.call(t, http.MethodGet, "/courses", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

/*
TestServer_CourseVisibility verifies inactive courses are hidden from students only.
*/
func TestServer_CourseVisibility(t *testing.T) {
	fixture := newSandbox(t)
	countCourses := func(token string) int {
		status, body := fixture.call(t, http.MethodGet, "/courses", token, nil)
		require.Equal(t, http.StatusOK, status)
		var courses []json.RawMessage
		require.NoError(t, json.Unmarshal(body.Data, &courses))
		return len(courses)
	}

	assert.Equal(t, 4, countCourses(""))
	assert.Equal(t, 4, countCourses(fixture.login(t, sandbox.SeedStudentEmail).AccessToken))
	assert.Equal(t, 5, countCourses(fixture.login(t, sandbox.SeedInstructorEmail).AccessToken))
}

/*
TestServer_RoleGuards verifies staff-only writes.
*/
func TestServer_RoleGuards(t *testing.T) {
	fixture := newSandbox(t)
	category := fixture.store.Categories()[0]
	input := map[string]any{"title": "Rust", "category_id": category.ID, "price": 100000, "is_active": true}

	status, _ := fixture.call(t, http.MethodPost, "/courses", "", input)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = fixture.call(t, http.MethodPost, "/courses", fixture.login(t, sandbox.SeedStudentEmail).AccessToken, input)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := fixture.call(t, http.MethodPost, "/courses", fixture.login(t, sandbox.SeedInstructorEmail).AccessToken, input)
	assert.Equal(t, http.StatusCreated, status)
	assert.Contains(t, string(body.Data), `"Rust"`)

	status, _ = fixture.call(t, http.MethodGet, "/payments/stats", fixture.login(t, sandbox.SeedInstructorEmail).AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

/*
TestServer_CheckoutThroughGateway buys a course through the simulated gateway.
*/
func TestServer_CheckoutThroughGateway(t *testing.T) {
	fixture := newSandbox(t)
	token := fixture.login(t, sandbox.SeedStudentEmail).AccessToken
	course := courseByTitle(t, fixture.store, "Khởi nghiệp tinh gọn")

	status, _ := fixture.call(t, http.MethodPost, "/cart/items", token, map[string]int64{"course_id": course.ID})
	require.Equal(t, http.StatusOK, status)

	status, body := fixture.call(t, http.MethodPost, "/payments/checkout", token, map[string]string{"method": "vnpay"})
	require.Equal(t, http.StatusCreated, status)

	var result struct {
		Payment struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"payment"`
		PaymentURL string `json:"payment_url"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &result))
	assert.Equal(t, "pending", result.Payment.Status)
	require.True(t, strings.HasPrefix(result.PaymentURL, "http://sandbox.test/payments/gateway/"))

	gatewayPath := strings.TrimPrefix(result.PaymentURL, "http://sandbox.test")
	status, body = fixture.call(t, http.MethodGet, gatewayPath, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body.Data), `"success"`)

	status, body = fixture.call(t, http.MethodPost, "/cart/items", token, map[string]int64{"course_id": course.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_ENROLLED", body.Code)
}

/*
TestServer_UserProfile covers self access, foreign access and role changes.
*/
func TestServer_UserProfile(t *testing.T) {
	fixture := newSandbox(t)
	student, _ := fixture.store.AccountByEmail(sandbox.SeedStudentEmail)
	admin, _ := fixture.store.AccountByEmail(sandbox.SeedAdminEmail)
	token := fixture.login(t, sandbox.SeedStudentEmail).AccessToken

	status, _ := fixture.call(t, http.MethodGet, "/users/"+itoa(admin.User.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = fixture.call(t, http.MethodPut, "/users/"+itoa(student.User.ID), token, map[string]string{
		"full_name": "Trần Học", "email": sandbox.SeedStudentEmail, "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := fixture.call(t, http.MethodPut, "/users/"+itoa(student.User.ID), token, map[string]string{
		"full_name": "Trần Học", "email": sandbox.SeedStudentEmail,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body.Data), "Trần Học")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
