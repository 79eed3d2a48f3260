package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func validClaims(sub string, groups ...string) Claims {
	return Claims{
		Groups: groups,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "greenstamp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

// echoHandler writes the resolved identity back as JSON.
func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"found":  ok,
			"owner":  id.OwnerID,
			"groups": id.Groups,
		})
	})
}

func TestHeaderResolver(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUser, " owner-1 ")
	req.Header.Set(HeaderGroup, "a, b,,greenstamp-admins")

	id, err := HeaderResolver{}.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", id.OwnerID)
	assert.Equal(t, []string{"a", "b", "greenstamp-admins"}, id.Groups)
	assert.True(t, id.InGroup("greenstamp-admins"))
	assert.False(t, id.InGroup(""))
}

func TestHeaderResolver_NoUser(t *testing.T) {
	id, err := HeaderResolver{}.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, Identity{}, id)
}

func TestTokenResolver(t *testing.T) {
	resolver, err := NewTokenResolver(testSecret, "greenstamp")
	require.NoError(t, err)

	tests := []struct {
		name      string
		header    string
		wantOwner string
		wantErr   bool
	}{
		{name: "no header", header: ""},
		{name: "valid token", header: "Bearer " + signToken(t, testSecret, validClaims("owner-1", "admins")), wantOwner: "owner-1"},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "bad signature", header: "Bearer " + signToken(t, "other", validClaims("owner-1")), wantErr: true},
		{name: "missing subject", header: "Bearer " + signToken(t, testSecret, validClaims("")), wantErr: true},
		{name: "expired", header: "Bearer " + signToken(t, testSecret, Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "owner-1",
			Issuer:    "greenstamp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}}), wantErr: true},
		{name: "wrong issuer", header: "Bearer " + signToken(t, testSecret, Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "owner-1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			id, err := resolver.Resolve(req)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, carbon.ErrUnauthenticated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, id.OwnerID)
		})
	}
}

func TestNewResolver(t *testing.T) {
	r, err := NewResolver(nil)
	require.NoError(t, err)
	assert.IsType(t, HeaderResolver{}, r)

	_, err = NewResolver(&Config{Mode: ModeToken})
	assert.Error(t, err, "token mode without a secret must fail")

	r, err = NewResolver(&Config{Mode: ModeToken, JWTSecret: testSecret})
	require.NoError(t, err)
	assert.IsType(t, &TokenResolver{}, r)

	_, err = NewResolver(&Config{Mode: "kerberos"})
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	resolver, err := NewTokenResolver(testSecret, "")
	require.NoError(t, err)
	h := Middleware(resolver)(echoHandler())

	t.Run("valid token populates context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("owner-9", "g1")))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, true, body["found"])
		assert.Equal(t, "owner-9", body["owner"])
	})

	t.Run("anonymous passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, false, body["found"])
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, carbon.CodeUnauthenticated, body["error"])
	})
}

func TestRequireOwnerAndGroup(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name    string
		user    string
		groups  string
		handler http.Handler
		want    int
	}{
		{"owner required, anonymous", "", "", RequireOwner(ok), http.StatusUnauthorized},
		{"owner required, present", "o1", "", RequireOwner(ok), http.StatusNoContent},
		{"admin required, anonymous", "", "", RequireGroup("admins")(ok), http.StatusUnauthorized},
		{"admin required, not member", "o1", "users", RequireGroup("admins")(ok), http.StatusForbidden},
		{"admin required, member", "o1", "users,admins", RequireGroup("admins")(ok), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != "" {
				req.Header.Set(HeaderUser, tt.user)
			}
			if tt.groups != "" {
				req.Header.Set(HeaderGroup, tt.groups)
			}
			w := httptest.NewRecorder()
			Middleware(HeaderResolver{})(tt.handler).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GREENSTAMP_AUTH_MODE", "TOKEN")
	t.Setenv("GREENSTAMP_ADMIN_GROUP", "ops")
	t.Setenv("GREENSTAMP_JWT_SECRET", "s3cret")
	t.Setenv("GREENSTAMP_JWT_ISSUER", "issuer")

	cfg := ConfigFromEnv()
	assert.Equal(t, ModeToken, cfg.Mode)
	assert.Equal(t, "ops", cfg.AdminGroup)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "issuer", cfg.JWTIssuer)
}
