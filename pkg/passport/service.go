package passport

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/greenstamp/greenstamp-api/pkg/calculation"
	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// MaterialCalculator computes the footprint of a material quantity.
// Satisfied by *calculation.Calculator.
type MaterialCalculator interface {
	ComputeMaterial(ctx context.Context, kg float64, material, region string, at time.Time) (float64, error)
}

// MaterialInput is a bill-of-materials line used to derive a footprint.
type MaterialInput struct {
	Material   string
	QuantityKg float64
}

// CreateRequest describes a passport to issue. Either CarbonFootprint or
// MaterialInputs must be given; an explicit footprint takes precedence.
type CreateRequest struct {
	ProductID         string
	ProductName       string
	Manufacturer      string
	Materials         []string
	CarbonFootprint   *float64
	MaterialInputs    []MaterialInput
	Region            string
	ManufacturingDate string
	ProductURL        string
}

// Service issues and reads passports on behalf of an owner.
type Service struct {
	store *Store
	calc  MaterialCalculator
	now   func() time.Time
}

// NewService creates a Service. calc may be nil, in which case requests
// without an explicit footprint are rejected.
func NewService(store *Store, calc MaterialCalculator) *Service {
	return &Service{store: store, calc: calc, now: time.Now}
}

// Create validates req and stores a new passport for ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (*carbon.Passport, error) {
	if ownerID == "" {
		return nil, carbon.ErrUnauthenticated
	}
	required := []struct{ field, value string }{
		{"productId", req.ProductID},
		{"productName", req.ProductName},
		{"manufacturer", req.Manufacturer},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, carbon.InvalidInputf("%s is required", f.field)
		}
	}
	if req.ProductURL != "" {
		u, err := url.ParseRequestURI(req.ProductURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, carbon.InvalidInputf("productUrl must be an absolute http(s) URL")
		}
	}
	at := s.now()
	if req.ManufacturingDate != "" {
		t, err := carbon.ParseInstant(req.ManufacturingDate)
		if err != nil {
			return nil, err
		}
		at = t
	}

	footprint, err := s.footprint(ctx, req, at)
	if err != nil {
		return nil, err
	}

	materials := req.Materials
	if len(materials) == 0 {
		for _, in := range req.MaterialInputs {
			materials = append(materials, carbon.NormalizeCategory(in.Material))
		}
	}

	p := &carbon.Passport{
		OwnerID:           ownerID,
		ProductID:         strings.TrimSpace(req.ProductID),
		ProductName:       strings.TrimSpace(req.ProductName),
		Manufacturer:      strings.TrimSpace(req.Manufacturer),
		Materials:         carbon.JSONStringSlice(materials),
		CarbonFootprint:   footprint,
		ManufacturingDate: req.ManufacturingDate,
		ProductURL:        req.ProductURL,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) footprint(ctx context.Context, req CreateRequest, at time.Time) (float64, error) {
	if req.CarbonFootprint != nil {
		if err := calculation.ValidateQuantity("carbonFootprint", *req.CarbonFootprint); err != nil {
			return 0, err
		}
		return *req.CarbonFootprint, nil
	}
	if len(req.MaterialInputs) == 0 {
		return 0, carbon.InvalidInputf("carbonFootprint or materialInputs is required")
	}
	if s.calc == nil {
		return 0, carbon.InvalidInputf("carbonFootprint is required")
	}

	var total float64
	for _, in := range req.MaterialInputs {
		kg, err := s.calc.ComputeMaterial(ctx, in.QuantityKg, in.Material, req.Region, at)
		if err != nil {
			return 0, err
		}
		total += kg
	}
	return total, nil
}

// Get returns one of the owner's passports.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*carbon.Passport, error) {
	return s.store.Get(ctx, ownerID, id)
}

// List returns the owner's passports, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]carbon.Passport, error) {
	return s.store.ListByOwner(ctx, ownerID)
}
