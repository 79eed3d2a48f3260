package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetURL(t *testing.T) {
	assert.Equal(t, "http://x/readyz", targetURL([]string{"http://x/readyz"}, "http://env"))
	assert.Equal(t, "http://env", targetURL(nil, "http://env"))
	assert.Equal(t, defaultURL, targetURL(nil, ""))
}

func TestCheck(t *testing.T) {
	ready := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	assert.NoError(t, check(srv.Client(), srv.URL))

	ready = false
	err := check(srv.Client(), srv.URL)
	assert.ErrorContains(t, err, "503")
}
