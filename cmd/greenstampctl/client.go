package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const apiPrefix = "/api/v1"

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newClient() *apiClient {
	return &apiClient{
		baseURL: serverURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError is the server's JSON error body.
type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Code)
	}
	return fmt.Sprintf("server returned %d %s: %s", e.Status, e.Code, e.Message)
}

func (c *apiClient) do(method, path string, query url.Values, body, v any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, u, rd)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		if user != "" {
			req.Header.Set("X-Remote-User", user)
		}
		if groups != "" {
			req.Header.Set("X-Remote-Group", groups)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &apiError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
			apiErr.Message = string(bytes.TrimSpace(raw))
		}
		return apiErr
	}

	if v != nil {
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return nil
}

// getJSON performs a GET request and decodes the response.
func (c *apiClient) getJSON(path string, query url.Values, v any) error {
	return c.do(http.MethodGet, path, query, nil, v)
}

// postJSON performs a POST request with a JSON body and decodes the response.
func (c *apiClient) postJSON(path string, body, v any) error {
	return c.do(http.MethodPost, path, nil, body, v)
}

// patchJSON performs a PATCH request with a JSON body and decodes the response.
func (c *apiClient) patchJSON(path string, body, v any) error {
	return c.do(http.MethodPatch, path, nil, body, v)
}
