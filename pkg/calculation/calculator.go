// Package calculation converts activity quantities to kg CO2e using the
// emission factor valid at the activity's timestamp.
package calculation

import (
	"context"
	"math"
	"time"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// FactorResolver resolves the factor value for a key at an instant.
// Satisfied by *factors.Resolver.
type FactorResolver interface {
	Resolve(ctx context.Context, t carbon.FactorType, category, region string, at time.Time) (float64, error)
}

// Calculator computes CO2e masses. It holds no mutable state and is safe
// for concurrent use.
type Calculator struct {
	resolver FactorResolver
}

// NewCalculator creates a Calculator over resolver.
func NewCalculator(resolver FactorResolver) *Calculator {
	return &Calculator{resolver: resolver}
}

// ComputeEnergy returns kWh × the energy factor for energyType in region.
func (c *Calculator) ComputeEnergy(ctx context.Context, kwh float64, energyType, region string, at time.Time) (float64, error) {
	return c.compute(ctx, "kwh", kwh, carbon.FactorTypeEnergy, energyType, region, at)
}

// ComputeTransport returns tonne-km × the transport factor for mode in region.
func (c *Calculator) ComputeTransport(ctx context.Context, tkm float64, mode, region string, at time.Time) (float64, error) {
	return c.compute(ctx, "tkm", tkm, carbon.FactorTypeTransport, mode, region, at)
}

// ComputeMaterial returns kg × the material factor for material in region.
func (c *Calculator) ComputeMaterial(ctx context.Context, kg float64, material, region string, at time.Time) (float64, error) {
	return c.compute(ctx, "quantityKg", kg, carbon.FactorTypeMaterial, material, region, at)
}

func (c *Calculator) compute(ctx context.Context, field string, quantity float64, t carbon.FactorType, category, region string, at time.Time) (float64, error) {
	if err := ValidateQuantity(field, quantity); err != nil {
		return 0, err
	}
	factor, err := c.resolver.Resolve(ctx, t, category, region, at)
	if err != nil {
		return 0, err
	}
	return quantity * factor, nil
}

// ValidateQuantity rejects negative and non-finite quantities.
func ValidateQuantity(field string, q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return carbon.InvalidInputf("%s must be a finite number", field)
	}
	if q < 0 {
		return carbon.InvalidInputf("%s must be non-negative, got %v", field, q)
	}
	return nil
}
