package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestManager(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T)
	}{
		{"DisabledReturnsNil", testManagerDisabled},
		{"NilManagerPassesThrough", testNilManagerPassesThrough},
		{"InvalidateFactorsClearsBothCaches", testInvalidateFactorsClearsBoth},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.fn)
	}
}

func testManagerDisabled(t *testing.T) {
	if m := NewManager(&CacheConfig{Enabled: false}, nil); m != nil {
		t.Fatal("expected nil manager when disabled")
	}
	if m := NewManager(nil, nil); m != nil {
		t.Fatal("expected nil manager for nil config")
	}
}

func testNilManagerPassesThrough(t *testing.T) {
	var m *Manager
	calls := 0
	h := m.ListingMiddleware()(jsonHandler(&calls, http.StatusOK))
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/factors", nil))
		if rec.Header().Get("X-Cache") != "" {
			t.Fatal("expected no X-Cache header from nil manager")
		}
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	m.InvalidateFactors()
}

func testInvalidateFactorsClearsBoth(t *testing.T) {
	m := NewManager(&CacheConfig{
		Enabled:    true,
		ListingTTL: 5 * time.Second,
		ResolveTTL: 5 * time.Second,
		MaxSize:    10,
	}, nil)

	m.listing.Set("/factors", []byte("a"))
	m.resolve.Set("/factors/resolve?type=energy", []byte("b"))
	m.InvalidateFactors()

	if m.listing.Size() != 0 || m.resolve.Size() != 0 {
		t.Fatalf("expected both caches empty, got %d/%d", m.listing.Size(), m.resolve.Size())
	}
}
