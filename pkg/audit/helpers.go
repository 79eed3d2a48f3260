package audit

import (
	"net/http"
	"strings"
)

// Resource collections exposed under the API prefix.
var resourceTypes = map[string]bool{
	"activities": true,
	"factors":    true,
	"owners":     true,
	"passports":  true,
	"reports":    true,
}

// pathSegments returns the path segments after the API version prefix,
// e.g. /api/v1/factors/abc -> [factors abc].
func pathSegments(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if resourceTypes[p] {
			return parts[i:]
		}
	}
	return nil
}

// extractResourceType returns the collection a request targets, or "".
func extractResourceType(path string) string {
	segs := pathSegments(path)
	if len(segs) == 0 {
		return ""
	}
	return segs[0]
}

// extractResourceID returns the record ID addressed by the path. Fixed
// sub-routes such as /activities/energy carry no ID.
func extractResourceID(path string) string {
	segs := pathSegments(path)
	if len(segs) < 2 {
		return ""
	}
	switch segs[1] {
	case "energy", "transport", "csrd", "resolve", "me":
		return ""
	}
	return segs[1]
}

// extractActionVerb returns a human-readable action name for the request.
func extractActionVerb(method, path string) string {
	segs := pathSegments(path)
	if method == http.MethodPost && len(segs) == 2 && segs[0] == "activities" {
		switch segs[1] {
		case "energy":
			return "submit-energy"
		case "transport":
			return "submit-transport"
		}
	}
	if method == http.MethodPost && len(segs) == 1 && segs[0] == "owners" {
		return "register"
	}

	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut:
		return "update"
	case http.MethodPatch:
		return "patch"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

// isAuditedRequest reports whether the request mutates state. Reads and
// health probes are not audited.
func isAuditedRequest(method, path string) bool {
	if isHealthEndpoint(path) {
		return false
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func isHealthEndpoint(path string) bool {
	switch path {
	case "/livez", "/readyz", "/healthz":
		return true
	}
	return false
}

// outcomeFromStatus maps HTTP status codes to audit outcomes.
func outcomeFromStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return OutcomeSuccess
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return OutcomeDenied
	default:
		return OutcomeFailure
	}
}
