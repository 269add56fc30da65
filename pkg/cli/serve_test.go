package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodgekeep/concierge/pkg/session"
)

// mintAccessToken builds an unsigned JWT-shaped token carrying the claims
// the session core reads. The signature segment is junk; nothing client
// side verifies it.
func mintAccessToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]interface{}{
		"sub":      "user-1",
		"email":    role + "@lodgekeep.test",
		"fullName": role + " user",
		"role":     role,
		"exp":      exp.Unix(),
	})
	require.NoError(t, err)

	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

// newFakeBackend serves the auth endpoints plus a bearer-guarded rooms
// resource. The role baked into issued tokens comes from the login email's
// local part, so "customer@lodgekeep.test" logs in as a customer.
func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
			return
		}

		role := strings.SplitN(req.Email, "@", 2)[0]
		access := mintAccessToken(t, role, time.Now().Add(time.Hour))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"accessToken":  access,
			"refreshToken": "refresh-" + role,
			"tokenType":    "Bearer",
			"expiresAt":    time.Now().Add(time.Hour),
			"user": map[string]interface{}{
				"id":       "user-1",
				"email":    req.Email,
				"fullName": role + " user",
				"role":     map[string]string{"name": role, "label": role},
			},
		})
	})

	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})

	mux.HandleFunc("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"rooms": []map[string]string{{"id": "101", "name": "Garden Suite"}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newServeApp(t *testing.T, backendURL string) *app {
	t.Helper()

	cfg := testConfig(t)
	cfg.Backend.BaseURL = backendURL

	a, err := buildAppWithConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.controller.Bootstrap(ctx))

	return a
}

func postLogin(t *testing.T, router http.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestServe_SessionEndpointReportsState(t *testing.T) {
	backend := newFakeBackend(t)
	a := newServeApp(t, backend.URL)
	router := a.newRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthenticated", body["status"])
	assert.NotContains(t, body, "principal")
}

func TestServe_UnauthenticatedProxyRedirectsToLogin(t *testing.T) {
	backend := newFakeBackend(t)
	a := newServeApp(t, backend.URL)
	router := a.newRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestServe_LoginThenProxiedRequest(t *testing.T) {
	backend := newFakeBackend(t)
	a := newServeApp(t, backend.URL)
	router := a.newRouter()

	rec := postLogin(t, router, "admin@lodgekeep.test", "secret")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var loginBody map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginBody))
	assert.Equal(t, "authenticated", loginBody["status"])
	assert.NotEmpty(t, loginBody["session_id"])

	// The proxied call reaches the backend with a bearer token attached.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Garden Suite")
}

func TestServe_LoginRejectionSurfacesBackendMessage(t *testing.T) {
	backend := newFakeBackend(t)
	a := newServeApp(t, backend.URL)
	router := a.newRouter()

	rec := postLogin(t, router, "admin@lodgekeep.test", "wrong")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestServe_MissingPermissionRedirectsToRoleLanding(t *testing.T) {
	backend := newFakeBackend(t)
	a := newServeApp(t, backend.URL)
	router := a.newRouter()

	rec := postLogin(t, router, "customer@lodgekeep.test", "secret")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Customers hold no user.view grant; they land back on their own page.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestServe_LogoutClearsSession(t *testing.T) {
	backend := newFakeBackend(t)
	a := newServeApp(t, backend.URL)
	router := a.newRouter()

	rec := postLogin(t, router, "admin@lodgekeep.test", "secret")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, session.StatusUnauthenticated, a.controller.Snapshot().Status)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestServe_LoginValidatesPayload(t *testing.T) {
	backend := newFakeBackend(t)
	a := newServeApp(t, backend.URL)
	router := a.newRouter()

	testCases := []struct {
		name string
		body string
	}{
		{"not json", "not json"},
		{"missing email", `{"password":"secret"}`},
		{"missing password", `{"email":"admin@lodgekeep.test"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServe_HealthzIsOpen(t *testing.T) {
	backend := newFakeBackend(t)
	a := newServeApp(t, backend.URL)
	router := a.newRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestServe_BackendDownReturnsBadGateway(t *testing.T) {
	backend := newFakeBackend(t)
	a := newServeApp(t, backend.URL)
	router := a.newRouter()

	rec := postLogin(t, router, "admin@lodgekeep.test", "secret")
	require.Equal(t, http.StatusOK, rec.Code)

	backend.Close()

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "backend unreachable")
}
