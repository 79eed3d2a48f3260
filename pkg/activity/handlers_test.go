package activity

import (
	"encoding/json"
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

func setupRouter(t *testing.T) chi.Router {
	t.Helper()
	svc, _ := newTestService(t)
	r := chi.NewRouter()
	r.Use(identity.Middleware(identity.HeaderResolver{}))
	r.Mount("/activities", Router(svc, nil))
	return r
}

func do(r http.Handler, method, path, owner, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if owner != "" {
		req.Header.Set(identity.HeaderUser, owner)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitEnergyHandler(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodPost, "/activities/energy", "owner-a",
		`{"kwh": 1000, "energyType": "electricity", "region": "EU", "timestamp": "2024-01-15T10:00:00Z", "description": "Office"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp activityResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "energy", resp.Type)
	assert.Equal(t, mul(1000, 0.233), resp.CalculatedCO2e)
	assert.Equal(t, "kWh", resp.Unit)
	assert.Equal(t, "2024-01-15T10:00:00Z", resp.ActivityDate)

	w = do(r, http.MethodGet, "/activities/"+resp.ID, "owner-a", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/activities/"+resp.ID, "owner-b", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, carbon.CodeActivityNotFound, body["error"])
}

func TestSubmitTransportHandler_Errors(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		name     string
		owner    string
		body     string
		wantCode int
		wantErr  string
	}{
		{"unauthenticated", "", `{"tkm": 1, "transportMode": "road", "timestamp": "2024-01-15"}`, http.StatusUnauthorized, carbon.CodeUnauthenticated},
		{"malformed json", "owner-a", `{"tkm":`, http.StatusBadRequest, carbon.CodeInvalidInput},
		{"missing tkm", "owner-a", `{"transportMode": "road", "timestamp": "2024-01-15"}`, http.StatusBadRequest, carbon.CodeInvalidInput},
		{"negative tkm", "owner-a", `{"tkm": -1, "transportMode": "road", "timestamp": "2024-01-15"}`, http.StatusBadRequest, carbon.CodeInvalidInput},
		{"bad timestamp", "owner-a", `{"tkm": 1, "transportMode": "road", "timestamp": "yesterday"}`, http.StatusBadRequest, carbon.CodeInvalidInput},
		{"no factor", "owner-a", `{"tkm": 1, "transportMode": "rail", "timestamp": "2024-01-15"}`, http.StatusUnprocessableEntity, carbon.CodeFactorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/activities/transport", tt.owner, tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantErr, body["error"])
		})
	}
}

func TestListActivitiesHandler(t *testing.T) {
	r := setupRouter(t)

	for i := 0; i < 3; i++ {
		w := do(r, http.MethodPost, "/activities/transport", "owner-a",
			`{"tkm": 100, "transportMode": "air", "timestamp": "2024-02-01T00:00:00Z"}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := do(r, http.MethodGet, "/activities?pageSize=2", "owner-a", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Activities    []activityResponse `json:"activities"`
		NextPageToken string             `json:"nextPageToken"`
		TotalSize     int                `json:"totalSize"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Activities, 2)
	assert.Equal(t, 3, resp.TotalSize)
	assert.NotEmpty(t, resp.NextPageToken)
}
