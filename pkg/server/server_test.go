package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
	"github.com/greenstamp/greenstamp-api/pkg/identity"
)

const adminGroup = "greenstamp-admins"

func newTestServer(t *testing.T) (*Server, chi.Router) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DatabaseDSN = ":memory:"

	db, err := OpenDatabase(cfg.DatabaseType, cfg.DatabaseDSN, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s, err := New(cfg, db, nil)
	require.NoError(t, err)
	return s, s.Router()
}

type caller struct {
	user   string
	groups string
}

var (
	anonymous = caller{}
	ownerA    = caller{user: "owner-a"}
	ownerB    = caller{user: "owner-b"}
	admin     = caller{user: "admin-1", groups: adminGroup}
)

func call(r http.Handler, c caller, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if c.user != "" {
		req.Header.Set(identity.HeaderUser, c.user)
	}
	if c.groups != "" {
		req.Header.Set(identity.HeaderGroup, c.groups)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func TestReadiness(t *testing.T) {
	s, r := newTestServer(t)

	w := call(r, anonymous, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(r, anonymous, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	require.NoError(t, s.Init(context.Background()))
	w = call(r, anonymous, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ready", body["status"])
}

func TestInit_IsIdempotent(t *testing.T) {
	s, r := newTestServer(t)
	require.NoError(t, s.Init(context.Background()))
	require.NoError(t, s.Init(context.Background()))

	w := call(r, anonymous, http.MethodGet, "/api/v1/factors", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		TotalSize int `json:"totalSize"`
	}](t, w)
	assert.Equal(t, 12, list.TotalSize)
}

func TestEndToEnd(t *testing.T) {
	s, r := newTestServer(t)
	require.NoError(t, s.Init(context.Background()))

	// Owner registration is admin-only.
	w := call(r, ownerA, http.MethodPost, "/api/v1/owners", `{"id": "owner-a", "email": "ops@acme.example", "organizationName": "Acme Corp"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = call(r, admin, http.MethodPost, "/api/v1/owners", `{"id": "owner-a", "email": "ops@acme.example", "organizationName": "Acme Corp"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(r, ownerA, http.MethodGet, "/api/v1/owners/me", "")
	require.Equal(t, http.StatusOK, w.Code)

	// Activities.
	w = call(r, ownerA, http.MethodPost, "/api/v1/activities/energy",
		`{"kwh": 1000, "energyType": "electricity", "region": "EU", "timestamp": "2024-01-15T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	energy := decode[map[string]any](t, w)

	w = call(r, ownerA, http.MethodPost, "/api/v1/activities/transport",
		`{"tkm": 100, "transportMode": "road", "region": "DE", "timestamp": "2024-02-01"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	transport := decode[map[string]any](t, w)

	e := energy["calculatedCO2e"].(float64)
	tr := transport["calculatedCO2e"].(float64)
	assert.InDelta(t, 233.0, e, 1e-9)
	assert.InDelta(t, 15.8, tr, 1e-9)

	w = call(r, ownerB, http.MethodGet, "/api/v1/activities/"+energy["id"].(string), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Report.
	w = call(r, ownerA, http.MethodGet, "/api/v1/reports/csrd?startDate=2024-01-01&endDate=2024-12-31", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[map[string]any](t, w)
	assert.InDelta(t, 2*e+2*tr, report["totalEmissions"].(float64), 1e-9)
	assert.True(t, strings.HasPrefix(report["reportId"].(string), "CSRD-Acme-Corp-"))

	w = call(r, ownerB, http.MethodGet, "/api/v1/reports/csrd?startDate=2024-01-01&endDate=2024-12-31", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, carbon.CodeOwnerNotFound, decode[map[string]string](t, w)["error"])

	// Passports.
	w = call(r, ownerA, http.MethodPost, "/api/v1/passports",
		`{"productId": "SKU-1", "productName": "Chair", "manufacturer": "Acme", "materialInputs": [{"material": "aluminum", "quantityKg": 2}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[map[string]any](t, w)
	assert.InDelta(t, 2*8.14, p["carbonFootprint"].(float64), 1e-9)

	// Audit trail of the caller only.
	w = call(r, ownerA, http.MethodGet, "/api/v1/audit/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	events := decode[struct {
		Events []struct {
			Actor  string `json:"actor"`
			Action string `json:"action"`
		} `json:"events"`
		TotalSize int `json:"totalSize"`
	}](t, w)
	// The rejected registration, two activities and the passport.
	assert.Equal(t, 4, events.TotalSize)
	for _, ev := range events.Events {
		assert.Equal(t, "owner-a", ev.Actor)
	}

	// Metrics.
	w = call(r, anonymous, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `greenstamp_activities_recorded_total{type="energy"} 1`)
	assert.Contains(t, w.Body.String(), `greenstamp_factor_lookups_total{outcome="fallback",type="transport"} 1`)
}

func TestFactorCacheInvalidation(t *testing.T) {
	s, r := newTestServer(t)
	require.NoError(t, s.Init(context.Background()))

	const listPath = "/api/v1/factors?type=energy&category=electricity"
	w := call(r, anonymous, http.MethodGet, listPath, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	list := decode[struct {
		Factors []struct {
			ID          string  `json:"id"`
			FactorValue float64 `json:"factorValue"`
		} `json:"factors"`
	}](t, w)
	require.Len(t, list.Factors, 1)
	id := list.Factors[0].ID

	w = call(r, anonymous, http.MethodGet, listPath, "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = call(r, ownerA, http.MethodPatch, "/api/v1/factors/"+id, `{"factorValue": 0.3}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = call(r, admin, http.MethodPatch, "/api/v1/factors/"+id, `{"factorValue": 0.3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(r, anonymous, http.MethodGet, listPath, "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Contains(t, w.Body.String(), `"factorValue":0.3`)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.DatabaseType = "oracle"
	assert.ErrorContains(t, cfg.Validate(), "unknown database type")

	cfg = DefaultConfig()
	cfg.DatabaseDSN = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Policy.ElectricityShare = 0.9
	assert.Error(t, cfg.Validate())
}

func TestNormalizeMySQLDSN(t *testing.T) {
	dsn, err := normalizeMySQLDSN("gs:secret@tcp(db:3306)/greenstamp")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "/greenstamp")

	_, err = normalizeMySQLDSN("not a dsn")
	assert.Error(t, err)
}

func TestOpenDatabase_UnknownType(t *testing.T) {
	_, err := OpenDatabase("oracle", "x", nil)
	assert.Error(t, err)
}
