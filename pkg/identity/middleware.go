package identity

import (
	"encoding/json"
	"net/http"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// Middleware resolves the caller and stores it in the request context.
// Invalid credentials are rejected with 401; absent credentials pass
// through so public routes keep working.
func Middleware(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolver.Resolve(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, carbon.CodeUnauthenticated, err.Error())
				return
			}
			if id.OwnerID != "" {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner rejects requests without an authenticated caller.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if OwnerID(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, carbon.CodeUnauthenticated, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireGroup rejects callers outside group with 403.
func RequireGroup(group string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireOwner(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := FromContext(r.Context())
			if !id.InGroup(group) {
				writeError(w, http.StatusForbidden, carbon.CodeForbidden, "caller is not a member of "+group)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
