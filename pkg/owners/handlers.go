package owners

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
	"github.com/greenstamp/greenstamp-api/pkg/identity"
)

type ownerResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	OrganizationName string `json:"organizationName"`
	Active           bool   `json:"active"`
	CreatedAt        string `json:"createdAt"`
}

func ownerToResponse(o *carbon.Owner) ownerResponse {
	return ownerResponse{
		ID:               o.ID,
		Email:            o.Email,
		OrganizationName: o.OrganizationName,
		Active:           o.Active,
		CreatedAt:        o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type createOwnerRequest struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	OrganizationName string `json:"organizationName"`
}

// CreateOwnerHandler handles POST /owners
func CreateOwnerHandler(store *Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, logger, carbon.InvalidInputf("invalid request body: %v", err))
			return
		}

		owner, err := store.Create(r.Context(), CreateRequest(req))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		logger.Info("owner registered", "id", owner.ID, "organization", owner.OrganizationName, "by", identity.OwnerID(r.Context()))
		writeJSON(w, http.StatusCreated, ownerToResponse(owner))
	}
}

// GetCurrentOwnerHandler handles GET /owners/me
func GetCurrentOwnerHandler(store *Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := store.Get(r.Context(), identity.OwnerID(r.Context()))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if owner == nil {
			writeError(w, logger, carbon.ErrOwnerNotFound)
			return
		}
		writeJSON(w, http.StatusOK, ownerToResponse(owner))
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := carbon.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("owner request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error":   carbon.Code(err),
		"message": carbon.PublicMessage(err),
	})
}
