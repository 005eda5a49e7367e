package routes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-server/auth"
	"inventory-server/config"
	"inventory-server/database"
	"inventory-server/models"
	"inventory-server/store"
	"inventory-server/store/sqlitestore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type connected struct{}

func (connected) State() database.State { return database.StateConnected }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{MaxBodyBytes: 1 << 20},
		CORS:   config.CORSConfig{AllowedOrigins: config.DefaultAllowedOrigins},
		Auth:   config.AuthConfig{ResetTTL: time.Hour},
		Cache:  config.CacheConfig{TTL: time.Minute},
	}
}

func newTestEngine(t *testing.T) (*gin.Engine, *sqlitestore.Store, *auth.TokenIssuer) {
	t.Helper()
	st, err := sqlitestore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	tokens := auth.NewTokenIssuer([]byte("routes-test"), time.Hour)
	engine := NewRouter(Dependencies{
		Config:   testConfig(),
		Logger:   noopLogger(),
		Store:    store.Static(st),
		Database: connected{},
		Tokens:   tokens,
		Hasher:   auth.NewHasher(4),
	})
	return engine, st, tokens
}

func request(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_CORS(t *testing.T) {
	r, _, _ := newTestEngine(t)

	w := request(r, http.MethodGet, "/api/items", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = request(r, http.MethodGet, "/api/items", "", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = request(r, http.MethodGet, "/api/items", "", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_OptionsAnyPath(t *testing.T) {
	r, _, _ := newTestEngine(t)

	for _, path := range []string{"/api/items", "/api/auth/reset-password", "/not/a/route"} {
		w := request(r, http.MethodOptions, path, "", nil)
		assert.Equal(t, http.StatusNoContent, w.Code, path)
		assert.Equal(t, "GET,POST,PUT,DELETE,OPTIONS", w.Header().Get("Access-Control-Allow-Methods"), path)
		assert.Equal(t, "Content-Type,Authorization", w.Header().Get("Access-Control-Allow-Headers"), path)
		assert.Empty(t, w.Body.String())

		w = request(r, http.MethodOptions, path, "", map[string]string{
			"Origin":                        "https://inventory-management-system-pi-nine.vercel.app",
			"Access-Control-Request-Method": http.MethodPost,
		})
		assert.Equal(t, http.StatusNoContent, w.Code, path)
		assert.Equal(t, "https://inventory-management-system-pi-nine.vercel.app", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRouter_ResetPasswordHasDedicatedHandler(t *testing.T) {
	r, _, _ := newTestEngine(t)

	var handlers []string
	for _, ri := range r.Routes() {
		if ri.Method == http.MethodPost && ri.Path == "/api/auth/reset-password" {
			handlers = append(handlers, ri.Handler)
		}
	}
	require.Len(t, handlers, 1)
	assert.Contains(t, handlers[0], "PasswordResetController")

	w := request(r, http.MethodPost, "/api/auth/reset-password", `{"token":"nope","password":"hunter22a"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid or expired reset token"}`, w.Body.String())
}

func TestRouter_NotFound(t *testing.T) {
	r, _, _ := newTestEngine(t)

	for _, path := range []string{"/", "/api/unknown", "/API/items", "/api/items/x/y/z"} {
		w := request(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	w := request(r, http.MethodPatch, "/api/items", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_MalformedAndOversizeBodies(t *testing.T) {
	r, _, tokens := newTestEngine(t)
	token, _, err := tokens.Issue(models.User{ID: "u1", Role: models.RoleStaff})
	require.NoError(t, err)
	bearer := map[string]string{"Authorization": "Bearer " + token}

	w := request(r, http.MethodPost, "/api/items", `{"sku":`, bearer)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := `{"sku":"` + strings.Repeat("x", 2<<20) + `"}`
	w = request(r, http.MethodPost, "/api/items", big, bearer)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_WriteRoutesRequireAuth(t *testing.T) {
	r, _, tokens := newTestEngine(t)
	body := `{"sku":"S-1","name":"Spanner","quantity":3}`

	w := request(r, http.MethodPost, "/api/items", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	staff, _, err := tokens.Issue(models.User{ID: "s1", Role: models.RoleStaff})
	require.NoError(t, err)
	admin, _, err := tokens.Issue(models.User{ID: "a1", Role: models.RoleAdmin})
	require.NoError(t, err)

	w = request(r, http.MethodPost, "/api/items", body, map[string]string{"Authorization": "Bearer " + staff})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.ID

	w = request(r, http.MethodDelete, "/api/items/"+id, "", map[string]string{"Authorization": "Bearer " + staff})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = request(r, http.MethodDelete, "/api/items/"+id, "", map[string]string{"Authorization": "Bearer " + admin})
	assert.Equal(t, http.StatusOK, w.Code)

	// Reads stay public.
	w = request(r, http.MethodGet, "/api/warehouses", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = request(r, http.MethodGet, "/api/reorder/suggestions", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Health(t *testing.T) {
	r, _, _ := newTestEngine(t)

	w := request(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"connected"}`, w.Body.String())

	w = request(r, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouteTable_Prefixes(t *testing.T) {
	var prefixes []string
	for _, rg := range routeTable {
		prefixes = append(prefixes, rg.prefix)
	}
	assert.Equal(t, []string{
		"/api", "/api/auth", "/api/warehouses", "/api/forecast", "/api/reorder", "/api/analytics",
	}, prefixes)
}
