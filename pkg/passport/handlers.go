package passport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
	"github.com/greenstamp/greenstamp-api/pkg/identity"
)

type materialInput struct {
	Material   string  `json:"material"`
	QuantityKg float64 `json:"quantityKg"`
}

type createPassportRequest struct {
	ProductID         string          `json:"productId"`
	ProductName       string          `json:"productName"`
	Manufacturer      string          `json:"manufacturer"`
	Materials         []string        `json:"materials"`
	CarbonFootprint   *float64        `json:"carbonFootprint"`
	MaterialInputs    []materialInput `json:"materialInputs"`
	Region            string          `json:"region"`
	ManufacturingDate string          `json:"manufacturingDate"`
	ProductURL        string          `json:"productUrl"`
}

type passportResponse struct {
	ID                string   `json:"id"`
	ProductID         string   `json:"productId"`
	ProductName       string   `json:"productName"`
	Manufacturer      string   `json:"manufacturer"`
	Materials         []string `json:"materials"`
	CarbonFootprint   float64  `json:"carbonFootprint"`
	ManufacturingDate string   `json:"manufacturingDate,omitempty"`
	ProductURL        string   `json:"productUrl,omitempty"`
	CreatedAt         string   `json:"createdAt"`
}

func passportToResponse(p *carbon.Passport) passportResponse {
	materials := []string(p.Materials)
	if materials == nil {
		materials = []string{}
	}
	return passportResponse{
		ID:                p.ID,
		ProductID:         p.ProductID,
		ProductName:       p.ProductName,
		Manufacturer:      p.Manufacturer,
		Materials:         materials,
		CarbonFootprint:   p.CarbonFootprint,
		ManufacturingDate: p.ManufacturingDate,
		ProductURL:        p.ProductURL,
		CreatedAt:         p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreatePassportHandler handles POST /passports
func CreatePassportHandler(svc *Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPassportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, logger, carbon.InvalidInputf("invalid request body: %v", err))
			return
		}

		inputs := make([]MaterialInput, len(req.MaterialInputs))
		for i, in := range req.MaterialInputs {
			inputs[i] = MaterialInput(in)
		}

		p, err := svc.Create(r.Context(), identity.OwnerID(r.Context()), CreateRequest{
			ProductID:         req.ProductID,
			ProductName:       req.ProductName,
			Manufacturer:      req.Manufacturer,
			Materials:         req.Materials,
			CarbonFootprint:   req.CarbonFootprint,
			MaterialInputs:    inputs,
			Region:            req.Region,
			ManufacturingDate: req.ManufacturingDate,
			ProductURL:        req.ProductURL,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, passportToResponse(p))
	}
}

// ListPassportsHandler handles GET /passports
func ListPassportsHandler(svc *Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.List(r.Context(), identity.OwnerID(r.Context()))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		out := make([]passportResponse, len(records))
		for i := range records {
			out[i] = passportToResponse(&records[i])
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"passports": out,
			"totalSize": len(out),
		})
	}
}

// GetPassportHandler handles GET /passports/{id}
func GetPassportHandler(svc *Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context(), identity.OwnerID(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, passportToResponse(p))
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
		logger.Error("passport request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error":   carbon.Code(err),
		"message": carbon.PublicMessage(err),
	})
}
