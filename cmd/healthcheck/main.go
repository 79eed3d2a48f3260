// Package main provides a minimal HTTP healthcheck binary for container
// probes. It GETs the readiness endpoint and exits 0 on a 2xx response.
// Usage: healthcheck [url]
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultURL = "http://localhost:8080/readyz"

func main() {
	url := targetURL(os.Args[1:], os.Getenv("GREENSTAMP_HEALTHCHECK_URL"))
	if err := check(&http.Client{Timeout: 5 * time.Second}, url); err != nil {
		fmt.Fprintf(os.Stderr, "healthcheck failed: %v\n", err)
		os.Exit(1)
	}
}

// targetURL picks the first argument, then the environment, then the
// local readiness endpoint.
func targetURL(args []string, env string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if env != "" {
		return env
	}
	return defaultURL
}

func check(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
