package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstamp/greenstamp-api/pkg/identity"
)

func setupRouter(t *testing.T) (chi.Router, *Store) {
	t.Helper()
	store := NewStore(setupTestDB(t))
	r := chi.NewRouter()
	r.Use(identity.Middleware(identity.HeaderResolver{}))
	r.Mount("/audit", Router(store, nil))
	return r, store
}

func get(r http.Handler, path, owner string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if owner != "" {
		req.Header.Set(identity.HeaderUser, owner)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListEventsHandler(t *testing.T) {
	r, store := setupRouter(t)
	appendEvents(t, store, "owner-a", 3)
	appendEvents(t, store, "owner-b", 1)

	w := get(r, "/audit/events?pageSize=2", "owner-a")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Events        []eventResponse `json:"events"`
		NextPageToken string          `json:"nextPageToken"`
		TotalSize     int             `json:"totalSize"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Events, 2)
	assert.Equal(t, 3, resp.TotalSize)
	assert.NotEmpty(t, resp.NextPageToken)
	for _, e := range resp.Events {
		assert.Equal(t, "owner-a", e.Actor)
	}

	w = get(r, "/audit/events?pageToken=nope", "owner-a")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/audit/events", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetEventHandler(t *testing.T) {
	r, store := setupRouter(t)
	events := appendEvents(t, store, "owner-a", 1)

	w := get(r, "/audit/events/"+events[0].ID, "owner-a")
	require.Equal(t, http.StatusOK, w.Code)
	var resp eventResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, events[0].ID, resp.ID)

	w = get(r, "/audit/events/"+events[0].ID, "owner-b")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
